package core

import (
	"errors"
	"fmt"
)

// Engine is the single event loop: one entry point that routes a raw
// event by its Event field to the appropriate handler, mutates the
// channel/bridge registries and per-channel state, inspects the
// resulting topology, and delivers zero or more high-level events to
// the Subscriber.
//
// Engine is not safe for concurrent use: raw events are processed one
// at a time, synchronously, including subscriber callbacks, and there
// is no internal queue.
type Engine struct {
	channels *ChannelRegistry
	bridges  *BridgeRegistry

	subscriber Subscriber
	reporter   Reporter
}

// NewEngine creates an Engine with empty registries.
func NewEngine(subscriber Subscriber, reporter Reporter) *Engine {
	return &Engine{
		channels:   NewChannelRegistry(),
		bridges:    NewBridgeRegistry(),
		subscriber: subscriber,
		reporter:   reporter,
	}
}

// ChannelCount reports the number of channels currently tracked. Used
// by operational status surfaces and by the "both registries empty at
// end of trace" test property.
func (e *Engine) ChannelCount() int {
	return e.channels.Len()
}

// BridgeCount reports the number of bridges currently tracked.
func (e *Engine) BridgeCount() int {
	return e.bridges.Len()
}

// Dispatch routes one raw event to its handler. Unknown events are
// ignored. A handler reporting an expected-missing lookup (unknown
// channel or uniqueid) is logged via the reporter and otherwise
// swallowed — the triggering event is skipped and the loop continues,
// since events can legitimately arrive before the engine is aware of
// a channel (e.g. right after reconnecting).
//
// Invariant breaches surface as panics (see InvariantError) and are
// never recovered here: the in-memory model has lost integrity and
// continuing would produce silently wrong business events.
func (e *Engine) Dispatch(event RawEvent) {
	e.reporter.TraceAMI(event)

	if uid, ok := event["Uniqueid"]; ok {
		if ch, err := e.channels.GetByUniqueID(uid); err == nil {
			ch.SyncData(event)
		}
	}

	var err error

	switch event["Event"] {
	case "FullyBooted":
		e.reporter.TraceMsg("connected to Asterisk")
	case "Newchannel":
		e.handleNewchannel(event)
	case "Newstate":
		err = e.handleNewstate(event)
	case "NewCallerid":
		err = e.handleNewCallerid(event)
	case "NewAccountCode":
		err = e.handleNewAccountCode(event)
	case "NewConnectedLine":
		err = e.handleNewConnectedLine(event)
	case "LocalBridge":
		err = e.handleLocalBridge(event)
	case "DialBegin":
		err = e.handleDialBegin(event)
	case "DialEnd":
		err = e.handleDialEnd(event)
	case "Hangup":
		err = e.handleHangup(event)
	case "BridgeCreate":
		e.handleBridgeCreate(event)
	case "BridgeEnter":
		err = e.handleBridgeEnter(event)
	case "BridgeLeave":
		err = e.handleBridgeLeave(event)
	case "BridgeDestroy":
		err = e.handleBridgeDestroy(event)
	case "BlindTransfer":
		err = e.handleBlindTransfer(event)
	case "AttendedTransfer":
		err = e.handleAttendedTransfer(event)
	case "UserEvent":
		e.subscriber.OnUserEvent(event)
	default:
		// Not one of the interesting events; ignore.
	}

	if err != nil {
		e.logExpectedMiss(event, err)
	}
}

func (e *Engine) logExpectedMiss(event RawEvent, err error) {
	var missingChan *MissingChannelError
	var missingID *MissingUniqueIDError
	var missingBridge *MissingBridgeError

	switch {
	case errors.As(err, &missingChan):
		e.reporter.TraceMsg(fmt.Sprintf(
			"channel %q not in memory when processing event: %v", missingChan.Name, event))
	case errors.As(err, &missingID):
		e.reporter.TraceMsg(fmt.Sprintf(
			"uniqueid %q not in memory when processing event: %v", missingID.UniqueID, event))
	case errors.As(err, &missingBridge):
		e.reporter.TraceMsg(fmt.Sprintf(
			"bridge %q not in memory when processing event: %v", missingBridge.UniqueID, event))
	default:
		// Handlers only ever return one of the three Missing* errors.
		// Anything else means a handler was changed without updating
		// this switch — fail loudly instead of swallowing it.
		panic(err)
	}
}
