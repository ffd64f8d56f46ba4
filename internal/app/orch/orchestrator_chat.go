package orch

import (
	"github.com/dkeye/RoomChat/internal/core"
	"github.com/dkeye/RoomChat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Chat stamps a message with the sender's name and routes it to every member
// of the sender's room, sender included. Invalid messages are dropped.
func (o *Orchestrator) Chat(sid core.ConnID, sess *core.Session, req core.ChatRequest) []Effect {
	st := sess.Get()
	if !st.InRoom() {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("chat dropped: no room")
		return nil
	}
	if req.RoomCode != "" {
		if code, err := domain.NormalizeRoomCode(req.RoomCode); err == nil && code != st.RoomCode {
			log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("room", string(code)).Msg("chat dropped: not a member")
			return nil
		}
	}
	text, err := domain.NormalizeMessage(req.Message)
	if err != nil {
		return nil
	}
	if o.Metrics != nil {
		o.Metrics.Messages.Inc()
	}
	return []Effect{ToRoom(st.RoomCode, "", core.NewChatMessage(st.DisplayName, text, o.now()))}
}

func (o *Orchestrator) HandleChat(sid core.ConnID, req core.ChatRequest) {
	sess, ok := o.Registry.Session(sid)
	if !ok {
		return
	}
	o.Dispatch(o.Chat(sid, sess, req))
}
