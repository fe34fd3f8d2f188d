package core

import "fmt"

// MissingChannelError is raised when a channel is looked up by name
// and is not registered. It is expected-missing per the dispatcher
// contract: callers log it via the reporter and move on.
type MissingChannelError struct {
	Name string
}

func (e *MissingChannelError) Error() string {
	return fmt.Sprintf("core: no channel named %q", e.Name)
}

// MissingUniqueIDError is raised when a channel is looked up by
// uniqueid and is not registered. Also expected-missing.
type MissingUniqueIDError struct {
	UniqueID string
}

func (e *MissingUniqueIDError) Error() string {
	return fmt.Sprintf("core: no channel with uniqueid %q", e.UniqueID)
}

// MissingBridgeError is raised when a bridge is looked up by
// uniqueid and is not registered. Also expected-missing.
type MissingBridgeError struct {
	UniqueID string
}

func (e *MissingBridgeError) Error() string {
	return fmt.Sprintf("core: no bridge with uniqueid %q", e.UniqueID)
}

// InvariantError marks a breach of the model's internal invariants —
// a bridge peer-count mismatch, a double local-bridge hop, a DialBegin
// against an already-dialed target, and so on. These are never
// recovered: the in-memory topology has lost integrity and any event
// built on top of it would be silently wrong, so the process is
// expected to crash with this error rather than continue.
type InvariantError struct {
	Msg   string
	Event RawEvent
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("core: invariant violated: %s (event=%v)", e.Msg, e.Event)
}

func panicInvariant(msg string, event RawEvent) {
	panic(&InvariantError{Msg: msg, Event: event})
}

// UnknownTransferTopologyError marks an AttendedTransfer whose
// DestType/DestApp combination the engine does not know how to
// translate. This is fatal: extend the handler rather than guess at
// the right business event.
type UnknownTransferTopologyError struct {
	Event RawEvent
}

func (e *UnknownTransferTopologyError) Error() string {
	return fmt.Sprintf("core: unknown attended transfer topology: %v", e.Event)
}
