package app

import (
	"errors"
	"sort"
	"sync"

	"github.com/dkeye/RoomChat/internal/core"
	"github.com/dkeye/RoomChat/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomManagerImpl is the process-wide room registry. The map is guarded by mu;
// membership changes are serialised per room by the room's own lock.
type RoomManagerImpl struct {
	mu              sync.RWMutex
	rooms           map[domain.RoomCode]core.RoomService
	defaultCapacity int

	// onCount sees the room count after every insert or delete, under mu.
	onCount func(n int)
}

func NewRoomManager(defaultCapacity int) *RoomManagerImpl {
	return &RoomManagerImpl{
		rooms:           make(map[domain.RoomCode]core.RoomService),
		defaultCapacity: domain.CapacityOr(defaultCapacity, domain.DefaultCapacity),
	}
}

// OnRoomCount registers fn to receive the number of rooms whenever a room is
// created or deleted. Calls are serialised. Set it before the manager is shared.
func (m *RoomManagerImpl) OnRoomCount(fn func(n int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCount = fn
	if fn != nil {
		fn(len(m.rooms))
	}
}

func (m *RoomManagerImpl) countChangedLocked() {
	if m.onCount != nil {
		m.onCount(len(m.rooms))
	}
}

// CreateOrGet returns the room registered under code, creating it with the
// requested capacity (or the default) when absent. An existing room keeps the
// capacity it was created with.
func (m *RoomManagerImpl) CreateOrGet(code domain.RoomCode, requestedCapacity int) (core.RoomService, error) {
	code, err := domain.NormalizeRoomCode(string(code))
	if err != nil {
		return nil, err
	}
	room, _ := m.getOrCreate(code, requestedCapacity)
	return room, nil
}

func (m *RoomManagerImpl) getOrCreate(code domain.RoomCode, requestedCapacity int) (core.RoomService, bool) {
	m.mu.RLock()
	room, ok := m.rooms[code]
	m.mu.RUnlock()
	if ok {
		return room, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok = m.rooms[code]; ok {
		return room, false
	}
	room = core.NewRoomService(code, domain.CapacityOr(requestedCapacity, m.defaultCapacity))
	m.rooms[code] = room
	m.countChangedLocked()
	log.Info().Str("module", "app.rooms").Str("room", string(code)).Int("capacity", room.Capacity()).Msg("room created")
	return room, true
}

func (m *RoomManagerImpl) Join(code domain.RoomCode, sid core.ConnID, requestedCapacity int) (core.JoinResult, error) {
	code, err := domain.NormalizeRoomCode(string(code))
	if err != nil {
		return core.JoinResult{}, err
	}
	createdAny := false
	for {
		room, created := m.getOrCreate(code, requestedCapacity)
		createdAny = createdAny || created
		status, err := room.Admit(sid)
		if errors.Is(err, core.ErrRoomClosed) {
			// Emptied between lookup and admit; the map no longer holds it.
			continue
		}
		res := core.JoinResult{Status: status, Room: room.Info(), Created: createdAny}
		log.Info().
			Str("module", "app.rooms").
			Str("room", string(code)).
			Str("sid", string(sid)).
			Str("status", status.String()).
			Bool("created", createdAny).
			Int("members", res.Room.MemberCount).
			Int("capacity", res.Room.Capacity).
			Msg("join")
		return res, nil
	}
}

func (m *RoomManagerImpl) Leave(code domain.RoomCode, sid core.ConnID) core.LeaveResult {
	code, err := domain.NormalizeRoomCode(string(code))
	if err != nil {
		return core.LeaveResult{}
	}
	m.mu.RLock()
	room, ok := m.rooms[code]
	m.mu.RUnlock()
	if !ok {
		return core.LeaveResult{}
	}

	deleted := false
	removed, remaining := room.Remove(sid, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if cur, ok := m.rooms[code]; ok && cur == room {
			delete(m.rooms, code)
			deleted = true
			m.countChangedLocked()
		}
	})
	if !removed {
		return core.LeaveResult{Remaining: remaining}
	}
	if deleted {
		log.Info().Str("module", "app.rooms").Str("room", string(code)).Msg("room deleted (no members left)")
	} else {
		log.Info().Str("module", "app.rooms").Str("room", string(code)).Str("sid", string(sid)).Int("members", remaining).Msg("left room")
	}
	return core.LeaveResult{Removed: true, Remaining: remaining, Deleted: deleted}
}

func (m *RoomManagerImpl) MembersOf(code domain.RoomCode) []core.ConnID {
	code, err := domain.NormalizeRoomCode(string(code))
	if err != nil {
		return nil
	}
	m.mu.RLock()
	room, ok := m.rooms[code]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return room.Members()
}

func (m *RoomManagerImpl) Get(code domain.RoomCode) (domain.Room, bool) {
	code, err := domain.NormalizeRoomCode(string(code))
	if err != nil {
		return domain.Room{}, false
	}
	m.mu.RLock()
	room, ok := m.rooms[code]
	m.mu.RUnlock()
	if !ok {
		return domain.Room{}, false
	}
	return room.Info(), true
}

func (m *RoomManagerImpl) List() []domain.Room {
	// Rooms are snapshotted outside mu: Leave takes a room lock before mu.
	m.mu.RLock()
	rooms := make([]core.RoomService, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	out := make([]domain.Room, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
