package sink

import "calltranslator/internal/core"

// Multi fans every hook out to a list of subscribers in order, so the
// engine (which takes exactly one core.Subscriber) can still feed a
// console log, a WebSocket hub, and a billing recorder at once.
type Multi struct {
	subs []core.Subscriber
}

// NewMulti combines subscribers into one, skipping any nil entries so
// callers can pass optional sinks without branching.
func NewMulti(subs ...core.Subscriber) *Multi {
	m := &Multi{}
	for _, s := range subs {
		if s != nil {
			m.subs = append(m.subs, s)
		}
	}
	return m
}

func (m *Multi) OnBDial(callID string, caller core.CallerId, toNumber string, targets []core.CallerId) {
	for _, s := range m.subs {
		s.OnBDial(callID, caller, toNumber, targets)
	}
}

func (m *Multi) OnUp(callID string, caller core.CallerId, toNumber string, callee core.CallerId) {
	for _, s := range m.subs {
		s.OnUp(callID, caller, toNumber, callee)
	}
}

func (m *Multi) OnAHangup(callID string, caller core.CallerId, toNumber string, reason string) {
	for _, s := range m.subs {
		s.OnAHangup(callID, caller, toNumber, reason)
	}
}

func (m *Multi) OnWarmTransfer(callID, mergedID string, redirector, caller, destination core.CallerId) {
	for _, s := range m.subs {
		s.OnWarmTransfer(callID, mergedID, redirector, caller, destination)
	}
}

func (m *Multi) OnColdTransfer(callID, mergedID string, redirector, caller core.CallerId, toNumber string, targets []core.CallerId) {
	for _, s := range m.subs {
		s.OnColdTransfer(callID, mergedID, redirector, caller, toNumber, targets)
	}
}

func (m *Multi) OnUserEvent(event core.RawEvent) {
	for _, s := range m.subs {
		s.OnUserEvent(event)
	}
}
