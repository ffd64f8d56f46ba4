package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/RoomChat/internal/core"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRoomsGaugeFollowsCreateAndDelete(t *testing.T) {
	m := NewRoomManager(2)
	metrics := NewMetrics()
	metrics.ObserveRooms(m)

	if _, err := m.Join("one", "a", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Join("two", "b", 0); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(metrics.Rooms); got != 2 {
		t.Fatalf("rooms = %v, want 2", got)
	}

	m.Leave("one", "a")
	m.Leave("one", "a")
	if got := testutil.ToFloat64(metrics.Rooms); got != 1 {
		t.Fatalf("rooms = %v, want 1", got)
	}
	m.Leave("two", "b")
	if got := testutil.ToFloat64(metrics.Rooms); got != 0 {
		t.Fatalf("rooms = %v, want 0", got)
	}
}

// Joins racing with the last leave of the same room recreate it repeatedly;
// the gauge must settle on the real count.
func TestRoomsGaugeUnderCreateLeaveChurn(t *testing.T) {
	m := NewRoomManager(4)
	metrics := NewMetrics()
	metrics.ObserveRooms(m)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := core.ConnID(fmt.Sprintf("c%d", i))
			for j := 0; j < 200; j++ {
				res, err := m.Join("hot", sid, 0)
				if err != nil {
					t.Error(err)
					return
				}
				if res.Status == core.Joined {
					m.Leave("hot", sid)
				}
			}
		}(i)
	}
	wg.Wait()

	if n := len(m.List()); n != 0 {
		t.Fatalf("rooms left = %d, want 0", n)
	}
	if got := testutil.ToFloat64(metrics.Rooms); got != 0 {
		t.Fatalf("rooms gauge = %v, want 0", got)
	}

	if _, err := m.Join("hot", "x", 0); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(metrics.Rooms); got != 1 {
		t.Fatalf("rooms gauge = %v, want 1", got)
	}
}
