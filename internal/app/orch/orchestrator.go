// Package orch implements the join/chat/leave/disconnect protocol on top of
// the room registry and routes the resulting notices to connections.
package orch

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/RoomChat/internal/app"
	"github.com/dkeye/RoomChat/internal/core"
	"github.com/dkeye/RoomChat/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultTimeFormat = "3:04:05 PM"

// Effect is a notice the protocol wants delivered. Exactly one of To or Room
// is set; Exclude only applies to room fan-out.
type Effect struct {
	To      core.ConnID
	Room    domain.RoomCode
	Exclude core.ConnID
	Event   any
}

func Direct(to core.ConnID, ev any) Effect {
	return Effect{To: to, Event: ev}
}

func ToRoom(code domain.RoomCode, exclude core.ConnID, ev any) Effect {
	return Effect{Room: code, Exclude: exclude, Event: ev}
}

// PublishResult reports delivery stats of a Dispatch call.
type PublishResult struct {
	SendTo  int
	Dropped []core.ConnID
}

type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Policy   app.Policy
	Metrics  *app.Metrics

	// Clock and TimeFormat stamp chat messages. Zero values mean time.Now
	// and DefaultTimeFormat.
	Clock      func() time.Time
	TimeFormat string
}

func (o *Orchestrator) now() string {
	clock := o.Clock
	if clock == nil {
		clock = time.Now
	}
	layout := o.TimeFormat
	if layout == "" {
		layout = DefaultTimeFormat
	}
	return clock().Format(layout)
}

// Dispatch delivers effects in order. Room recipients are resolved from a
// members snapshot at delivery time; a failing recipient never stops the
// remaining deliveries.
func (o *Orchestrator) Dispatch(effects []Effect) PublishResult {
	var res PublishResult
	for _, e := range effects {
		data, err := json.Marshal(e.Event)
		if err != nil {
			log.Error().Err(err).Str("module", "orch").Msg("marshal event")
			continue
		}
		for _, sid := range o.recipients(e) {
			sig, ok := o.Registry.Signal(sid)
			if !ok {
				continue
			}
			if err := sig.TrySend(data); err != nil {
				res.Dropped = append(res.Dropped, sid)
				o.onSendError(e.Room, sid, err)
				continue
			}
			res.SendTo++
		}
	}
	if len(res.Dropped) > 0 {
		log.Debug().Str("module", "orch").Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("dispatch result")
	}
	return res
}

func (o *Orchestrator) recipients(e Effect) []core.ConnID {
	if e.To != "" {
		return []core.ConnID{e.To}
	}
	members := o.Rooms.MembersOf(e.Room)
	out := members[:0]
	for _, sid := range members {
		if sid != e.Exclude {
			out = append(out, sid)
		}
	}
	return out
}

func (o *Orchestrator) onSendError(room domain.RoomCode, sid core.ConnID, err error) {
	log.Warn().Err(err).Str("module", "orch").Str("room", string(room)).Str("sid", string(sid)).Msg("delivery failed")
	if o.Metrics != nil {
		reason := "closed"
		if errors.Is(err, core.ErrBackpressure) {
			reason = "backpressure"
		}
		o.Metrics.Dropped.WithLabelValues(reason).Inc()
	}
	if o.Policy == nil {
		return
	}
	switch o.Policy.OnBackPressure(room, sid, err) {
	case app.KickMember:
		o.Registry.Cancel(sid)
	case app.DropFrame, app.NoAction:
	}
}
