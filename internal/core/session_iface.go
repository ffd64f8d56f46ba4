package core

import (
	"sync"

	"github.com/dkeye/RoomChat/internal/domain"
)

// ConnID identifies one live connection. It is assigned by the transport.
type ConnID string

// SessionState is a snapshot of a Session.
type SessionState struct {
	DisplayName string
	RoomCode    domain.RoomCode
}

// InRoom reports whether the connection currently belongs to a room.
func (s SessionState) InRoom() bool { return s.RoomCode != "" }

// Session is the per-connection state: display name and current room.
type Session struct {
	id ConnID

	mu    sync.RWMutex
	state SessionState
}

func NewSession(id ConnID) *Session {
	return &Session{id: id}
}

func (s *Session) ID() ConnID { return s.id }

func (s *Session) Set(displayName string, code domain.RoomCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionState{DisplayName: displayName, RoomCode: code}
}

func (s *Session) Get() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionState{}
}
