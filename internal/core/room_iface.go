package core

import (
	"errors"

	"github.com/dkeye/RoomChat/internal/domain"
)

// ErrRoomClosed is returned by Admit once the room has been emptied and
// dropped from its manager. Callers retry against a fresh room.
var ErrRoomClosed = errors.New("room closed")

type JoinStatus int

const (
	Joined JoinStatus = iota
	AlreadyMember
	Full
)

func (s JoinStatus) String() string {
	switch s {
	case Joined:
		return "joined"
	case AlreadyMember:
		return "already_member"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

// JoinResult is the outcome of RoomManager.Join. Room is a snapshot taken
// under the room lock.
type JoinResult struct {
	Status  JoinStatus
	Room    domain.Room
	Created bool
}

// LeaveResult is the outcome of RoomManager.Leave.
type LeaveResult struct {
	Removed   bool
	Remaining int
	Deleted   bool
}

// RoomService is a single room. It owns the membership set but never
// touches transport resources.
type RoomService interface {
	Code() domain.RoomCode
	Capacity() int
	MemberCount() int
	Members() []ConnID
	Has(sid ConnID) bool
	Info() domain.Room

	// Admit inserts sid unless the room is full. The capacity check and the
	// insert happen under one lock.
	Admit(sid ConnID) (JoinStatus, error)
	// Remove deletes sid. When the room becomes empty it is closed and
	// onEmpty runs before the room lock is released.
	Remove(sid ConnID, onEmpty func()) (removed bool, remaining int)
}

// RoomManager is the process-wide room registry.
type RoomManager interface {
	CreateOrGet(code domain.RoomCode, requestedCapacity int) (RoomService, error)
	Join(code domain.RoomCode, sid ConnID, requestedCapacity int) (JoinResult, error)
	Leave(code domain.RoomCode, sid ConnID) LeaveResult
	MembersOf(code domain.RoomCode) []ConnID
	Get(code domain.RoomCode) (domain.Room, bool)
	List() []domain.Room
}
