package core

import (
	"sync"

	"github.com/dkeye/RoomChat/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	code     domain.RoomCode
	capacity int

	mu      sync.RWMutex
	members map[ConnID]struct{}
	closed  bool
}

func NewRoomService(code domain.RoomCode, capacity int) RoomService {
	return &roomImpl{
		code:     code,
		capacity: domain.CapacityOr(capacity, domain.DefaultCapacity),
		members:  make(map[ConnID]struct{}),
	}
}

func (r *roomImpl) Code() domain.RoomCode { return r.code }
func (r *roomImpl) Capacity() int         { return r.capacity }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) Members() []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ConnID, 0, len(r.members))
	for sid := range r.members {
		out = append(out, sid)
	}
	return out
}

func (r *roomImpl) Has(sid ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[sid]
	return ok
}

func (r *roomImpl) Info() domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.Room{Code: r.code, Capacity: r.capacity, MemberCount: len(r.members)}
}

func (r *roomImpl) Admit(sid ConnID) (JoinStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Full, ErrRoomClosed
	}
	if _, ok := r.members[sid]; ok {
		return AlreadyMember, nil
	}
	if len(r.members) >= r.capacity {
		log.Debug().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(sid)).Msg("room full")
		return Full, nil
	}
	r.members[sid] = struct{}{}
	log.Debug().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(sid)).Int("members", len(r.members)).Msg("member added")
	return Joined, nil
}

func (r *roomImpl) Remove(sid ConnID, onEmpty func()) (bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[sid]; !ok {
		return false, len(r.members)
	}
	delete(r.members, sid)
	log.Debug().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(sid)).Int("members", len(r.members)).Msg("member removed")
	if len(r.members) == 0 {
		r.closed = true
		if onEmpty != nil {
			onEmpty()
		}
	}
	return true, len(r.members)
}
