package app

import (
	"errors"

	"github.com/dkeye/RoomChat/internal/core"
	"github.com/dkeye/RoomChat/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what to do with a recipient whose TrySend failed.
type Policy interface {
	OnBackPressure(room domain.RoomCode, sid core.ConnID, err error) BackpressureAction
}

// SimplePolicy kicks members whose buffer is full and drops frames for
// connections that are already closing.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(_ domain.RoomCode, _ core.ConnID, err error) BackpressureAction {
	if errors.Is(err, core.ErrBackpressure) {
		return KickMember
	}
	return DropFrame
}
