package signal

import (
	"github.com/dkeye/RoomChat/internal/app/orch"
	"github.com/dkeye/RoomChat/internal/core"
)

func (ctl *SignalWSController) handlePing(sid core.ConnID) {
	ctl.Orch.Dispatch([]orch.Effect{orch.Direct(sid, core.NewPong())})
}
