// Package transport defines the boundary between a raw AMI event
// source and the core engine, so the live AMI client and the file
// replay reader can be swapped without the engine knowing the
// difference.
package transport

import (
	"context"

	"calltranslator/internal/core"
)

// Dispatcher is satisfied by *core.Engine. Kept as an interface here,
// rather than importing core.Engine directly, so test doubles can
// stand in for the engine.
type Dispatcher interface {
	Dispatch(event core.RawEvent)
}

// Runner drives a source of raw AMI events into a Dispatcher, one
// event at a time, until ctx is cancelled or the source is exhausted.
type Runner interface {
	Run(ctx context.Context, dispatch Dispatcher) error
}
