// Package sink collects the subscriber implementations that consume
// the engine's high-level call events: a console writer for local
// inspection and a WebSocket hub for live dashboards.
package sink

import (
	"time"

	"github.com/rs/zerolog"

	"calltranslator/internal/core"
)

// Console is a core.Subscriber that writes each business event as one
// structured log line. It is the simplest possible sink; the daemon
// always runs it alongside the WebSocket hub.
type Console struct {
	log zerolog.Logger
}

// NewConsole wraps a zerolog.Logger as a Console sink.
func NewConsole(log zerolog.Logger) *Console {
	return &Console{log: log.With().Str("component", "sink").Logger()}
}

func (c *Console) OnBDial(callID string, caller core.CallerId, toNumber string, targets []core.CallerId) {
	c.log.Info().
		Str("kind", "b-dial").
		Str("call_id", callID).
		Str("caller", caller.Number).
		Str("to", toNumber).
		Int("targets", len(targets)).
		Msg("ringing")
}

func (c *Console) OnUp(callID string, caller core.CallerId, toNumber string, callee core.CallerId) {
	c.log.Info().
		Str("kind", "up").
		Str("call_id", callID).
		Str("caller", caller.Number).
		Str("to", toNumber).
		Str("callee", callee.Number).
		Msg("answered")
}

func (c *Console) OnAHangup(callID string, caller core.CallerId, toNumber string, reason string) {
	c.log.Info().
		Str("kind", "a-hangup").
		Str("call_id", callID).
		Str("caller", caller.Number).
		Str("to", toNumber).
		Str("reason", reason).
		Msg("call ended")
}

func (c *Console) OnWarmTransfer(callID, mergedID string, redirector, caller, destination core.CallerId) {
	c.log.Info().
		Str("kind", "warm-transfer").
		Str("call_id", callID).
		Str("merged_id", mergedID).
		Str("redirector", redirector.Number).
		Str("caller", caller.Number).
		Str("destination", destination.Number).
		Msg("attended transfer completed")
}

func (c *Console) OnColdTransfer(callID, mergedID string, redirector, caller core.CallerId, toNumber string, targets []core.CallerId) {
	c.log.Info().
		Str("kind", "cold-transfer").
		Str("call_id", callID).
		Str("merged_id", mergedID).
		Str("redirector", redirector.Number).
		Str("caller", caller.Number).
		Str("to", toNumber).
		Int("targets", len(targets)).
		Msg("blind/blonde transfer completed")
}

func (c *Console) OnUserEvent(event core.RawEvent) {
	c.log.Debug().Str("kind", "user-event").Str("user_event", event["UserEvent"]).Msg("user event")
}

// Recent is a bounded ring buffer of the last N business events,
// filled by the WebSocket hub and read by the API's /events/recent
// endpoint.
type Recent struct {
	max   int
	items []RecentEvent
}

// RecentEvent is the JSON-serializable shape stored in Recent.
type RecentEvent struct {
	At   time.Time   `json:"at"`
	Kind string      `json:"kind"`
	Data interface{} `json:"data"`
}

// NewRecent creates a ring buffer holding at most max events.
func NewRecent(max int) *Recent {
	return &Recent{max: max}
}

// Add appends one event, evicting the oldest if the buffer is full.
func (r *Recent) Add(kind string, data interface{}) {
	r.items = append(r.items, RecentEvent{At: time.Now(), Kind: kind, Data: data})
	if len(r.items) > r.max {
		r.items = r.items[len(r.items)-r.max:]
	}
}

// Snapshot returns a copy of the currently buffered events, oldest first.
func (r *Recent) Snapshot() []RecentEvent {
	out := make([]RecentEvent, len(r.items))
	copy(out, r.items)
	return out
}
