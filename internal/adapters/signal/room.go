package signal

import (
	"encoding/json"

	"github.com/dkeye/RoomChat/internal/app/orch"
	"github.com/dkeye/RoomChat/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(sid core.ConnID, data []byte) {
	var req core.JoinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad join payload")
		ctl.Orch.Dispatch([]orch.Effect{orch.Direct(sid, core.NewSystemMessage(core.MsgRoomCodeRequired))})
		return
	}
	ctl.Orch.HandleJoin(sid, req)
}

func (ctl *SignalWSController) handleChat(sid core.ConnID, data []byte) {
	var req core.ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad chat payload")
		return
	}
	ctl.Orch.HandleChat(sid, req)
}

// handleLeave drops the current room; the socket stays open.
func (ctl *SignalWSController) handleLeave(sid core.ConnID) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	ctl.Orch.HandleLeave(sid)
}
