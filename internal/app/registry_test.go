package app

import (
	"context"
	"errors"
	"testing"

	"github.com/dkeye/RoomChat/internal/core"
)

type nopSignal struct{}

func (nopSignal) TrySend(core.Frame) error { return nil }
func (nopSignal) Close()                   {}

func TestRegistryUnbindOnce(t *testing.T) {
	r := NewRegistry()
	sess := core.NewSession("s1")
	r.Bind("s1", sess, nopSignal{}, nil)

	if got, ok := r.Session("s1"); !ok || got != sess {
		t.Fatal("Session lookup failed")
	}
	if _, ok := r.Signal("s1"); !ok {
		t.Fatal("Signal lookup failed")
	}

	if got, ok := r.Unbind("s1"); !ok || got != sess {
		t.Fatal("first Unbind should return the session")
	}
	if _, ok := r.Unbind("s1"); ok {
		t.Fatal("second Unbind must report false")
	}
	if _, ok := r.Signal("s1"); ok {
		t.Fatal("Signal should be gone after Unbind")
	}
	if r.Count() != 0 {
		t.Fatalf("Count = %d", r.Count())
	}
}

func TestRegistryCancel(t *testing.T) {
	r := NewRegistry()
	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	r.Bind("s1", core.NewSession("s1"), nopSignal{}, cancel1)
	r.Bind("s2", core.NewSession("s2"), nopSignal{}, cancel2)

	if !r.Cancel("s1") {
		t.Fatal("Cancel(s1) = false")
	}
	if ctx1.Err() == nil {
		t.Fatal("s1 context not canceled")
	}
	if r.Cancel("missing") {
		t.Fatal("Cancel(missing) = true")
	}

	if n := r.CancelAll(); n != 2 {
		t.Fatalf("CancelAll = %d, want 2", n)
	}
	if ctx2.Err() == nil {
		t.Fatal("s2 context not canceled")
	}
}

func TestSimplePolicy(t *testing.T) {
	var p SimplePolicy
	if got := p.OnBackPressure("R", "s", core.ErrBackpressure); got != KickMember {
		t.Fatalf("backpressure -> %v, want KickMember", got)
	}
	if got := p.OnBackPressure("R", "s", core.ErrConnClosed); got != DropFrame {
		t.Fatalf("closed -> %v, want DropFrame", got)
	}
	if got := p.OnBackPressure("R", "s", errors.New("other")); got != DropFrame {
		t.Fatalf("other -> %v, want DropFrame", got)
	}
}
