package orch

import (
	"github.com/dkeye/RoomChat/internal/core"
	"github.com/dkeye/RoomChat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join runs the join protocol for sid and returns the notices to send.
func (o *Orchestrator) Join(sid core.ConnID, sess *core.Session, req core.JoinRequest) []Effect {
	code, err := domain.NormalizeRoomCode(req.RoomCode)
	if err != nil {
		return []Effect{Direct(sid, core.NewSystemMessage(core.MsgRoomCodeRequired))}
	}
	name := domain.NormalizeDisplayName(req.Username)
	prev := sess.Get()

	res, err := o.Rooms.Join(code, sid, domain.ParseCapacity(req.MaxMembers))
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("join rejected")
		return []Effect{Direct(sid, core.NewSystemMessage(core.MsgRoomCodeRequired))}
	}
	o.countJoin(res)

	switch res.Status {
	case core.Full:
		return []Effect{Direct(sid, core.NewRoomFull(res.Room))}
	case core.AlreadyMember:
		// The name is fixed for the life of a membership.
		if prev.RoomCode != code {
			sess.Set(name, code)
		}
		return []Effect{Direct(sid, core.NewJoinedRoom(res.Room))}
	}

	var effects []Effect
	if prev.InRoom() && prev.RoomCode != code {
		effects = append(effects, o.depart(sid, prev)...)
	}
	sess.Set(name, code)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("username", name).Str("room", string(code)).Msg("joined room")

	return append(effects,
		Direct(sid, core.NewJoinedRoom(res.Room)),
		ToRoom(code, sid, core.NewJoinedNotice(name)),
	)
}

// Leave removes sid from its current room but keeps the connection open.
func (o *Orchestrator) Leave(sid core.ConnID, sess *core.Session) []Effect {
	st := sess.Get()
	effects := []Effect{Direct(sid, core.NewLeftRoom(st.RoomCode))}
	effects = append(effects, o.depart(sid, st)...)
	sess.Clear()
	return effects
}

// Disconnect releases the membership of a connection that is gone.
func (o *Orchestrator) Disconnect(sid core.ConnID, sess *core.Session) []Effect {
	st := sess.Get()
	effects := o.depart(sid, st)
	sess.Clear()
	return effects
}

func (o *Orchestrator) depart(sid core.ConnID, st core.SessionState) []Effect {
	if !st.InRoom() {
		return nil
	}
	lr := o.Rooms.Leave(st.RoomCode, sid)
	if !lr.Removed {
		return nil
	}
	if o.Metrics != nil {
		o.Metrics.Members.Dec()
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("username", st.DisplayName).Str("room", string(st.RoomCode)).Msg("left room")
	if lr.Deleted {
		return nil
	}
	return []Effect{ToRoom(st.RoomCode, "", core.NewLeftNotice(st.DisplayName))}
}

func (o *Orchestrator) countJoin(res core.JoinResult) {
	if o.Metrics == nil {
		return
	}
	o.Metrics.Joins.WithLabelValues(res.Status.String()).Inc()
	if res.Status == core.Joined {
		o.Metrics.Members.Inc()
	}
}

// HandleJoin looks up the session of sid, runs Join and delivers the result.
func (o *Orchestrator) HandleJoin(sid core.ConnID, req core.JoinRequest) {
	sess, ok := o.Registry.Session(sid)
	if !ok {
		return
	}
	o.Dispatch(o.Join(sid, sess, req))
}

func (o *Orchestrator) HandleLeave(sid core.ConnID) {
	sess, ok := o.Registry.Session(sid)
	if !ok {
		return
	}
	o.Dispatch(o.Leave(sid, sess))
}

// HandleDisconnect unbinds sid and releases its membership. Repeated calls
// for the same sid are no-ops.
func (o *Orchestrator) HandleDisconnect(sid core.ConnID) {
	sess, ok := o.Registry.Unbind(sid)
	if !ok {
		return
	}
	if o.Metrics != nil {
		o.Metrics.Connections.Dec()
	}
	o.Dispatch(o.Disconnect(sid, sess))
}
