package core

// Subscriber is the embedder's hook set for high-level call events.
// The engine invokes these synchronously, inline with raw-event
// processing: a slow or blocking hook blocks the whole event loop, and
// a panicking hook propagates out of Dispatch uncaught — the engine
// does not shield itself from subscriber errors.
//
// Subscribers receive only immutable CallerId values and opaque
// identifiers; they must never retain a *Channel or *Bridge, both of
// which remain exclusively owned by the engine.
type Subscriber interface {
	// OnBDial fires the first time the callee side of a call starts
	// ringing.
	OnBDial(callID string, caller CallerId, toNumber string, targets []CallerId)

	// OnUp fires when two sides have connected and are in
	// conversation.
	OnUp(callID string, caller CallerId, toNumber string, callee CallerId)

	// OnAHangup fires when a call has fully ended from the calling
	// party's perspective.
	OnAHangup(callID string, caller CallerId, toNumber string, reason string)

	// OnWarmTransfer fires when an attended transfer completes: the
	// redirector spoke to the destination before releasing.
	OnWarmTransfer(callID, mergedID string, redirector, caller, destination CallerId)

	// OnColdTransfer fires when a blind or blonde transfer completes:
	// the redirector released before the destination answered.
	OnColdTransfer(callID, mergedID string, redirector, caller CallerId, toNumber string, targets []CallerId)

	// OnUserEvent passes through a raw UserEvent unmodified.
	OnUserEvent(event RawEvent)
}

// Reporter is the one logging surface the engine uses. TraceAMI
// receives every raw event as it is dispatched; TraceMsg carries
// free-form diagnostic text, including the expected-missing warnings
// logged by logExpectedMiss.
type Reporter interface {
	TraceAMI(event RawEvent)
	TraceMsg(msg string)
}
