package billing

import (
	"time"

	"calltranslator/internal/core"
)

const (
	// BatchSize es la cantidad máxima de eventos que se insertan de una vez.
	BatchSize = 200
	// FlushInterval es el intervalo máximo entre escrituras aunque el
	// lote no esté lleno.
	FlushInterval = 2 * time.Second
	// BufferSize es la capacidad del canal interno; si se llena, el
	// evento más antiguo se descarta para no bloquear al motor.
	BufferSize = 2000
)

// record is one row queued for insertion into call_events.
type record struct {
	callID     string
	kind       string
	caller     string
	toNumber   string
	counterpart string
	reason     string
	mergedID   string
	at         time.Time
}

// Recorder is a core.Subscriber that batches translated call events and
// writes them to the billing database on a ticker, so a slow or
// momentarily unavailable database never blocks the engine's
// synchronous dispatch loop.
type Recorder struct {
	conn   *Connection
	buffer chan record
	done   chan struct{}
}

// NewRecorder starts a Recorder's background worker. Call Stop to
// flush any remaining buffered events and release the goroutine.
func NewRecorder(conn *Connection) *Recorder {
	r := &Recorder{
		conn:   conn,
		buffer: make(chan record, BufferSize),
		done:   make(chan struct{}),
	}
	go r.worker()
	return r
}

func (r *Recorder) queue(rec record) {
	select {
	case r.buffer <- rec:
	default:
		// Buffer lleno: se descarta el evento más antiguo posible sin
		// bloquear; preferimos perder historial a bloquear el motor.
		select {
		case <-r.buffer:
		default:
		}
		select {
		case r.buffer <- rec:
		default:
		}
	}
}

func (r *Recorder) worker() {
	ticker := time.NewTicker(FlushInterval)
	defer ticker.Stop()

	batch := make([]record, 0, BatchSize)
	for {
		select {
		case rec := <-r.buffer:
			batch = append(batch, rec)
			if len(batch) >= BatchSize {
				r.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = batch[:0]
			}

		case <-r.done:
			for {
				select {
				case rec := <-r.buffer:
					batch = append(batch, rec)
					if len(batch) >= BatchSize {
						r.flush(batch)
						batch = batch[:0]
					}
				default:
					r.flush(batch)
					return
				}
			}
		}
	}
}

// flush inserts the batch as a single multi-row INSERT, since these
// are append-only call events rather than mutable status rows.
func (r *Recorder) flush(batch []record) {
	if len(batch) == 0 {
		return
	}

	query := `INSERT INTO call_events
		(call_id, kind, caller_number, to_number, counterpart_number, reason, merged_id, recorded_at)
		VALUES `
	args := make([]interface{}, 0, len(batch)*8)
	for i, rec := range batch {
		if i > 0 {
			query += ", "
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, rec.callID, rec.kind, rec.caller, rec.toNumber,
			rec.counterpart, rec.reason, rec.mergedID, rec.at)
	}

	// Errors are swallowed here deliberately: billing is a best-effort
	// historical sink, never a reason to interrupt live call handling.
	r.conn.DB.Exec(query, args...)
}

// Stop signals the worker to drain the buffer into one final flush and
// exit. It returns at once, without waiting for that flush to finish.
func (r *Recorder) Stop() {
	close(r.done)
}

// core.Subscriber implementation.

func (r *Recorder) OnBDial(callID string, caller core.CallerId, toNumber string, targets []core.CallerId) {
	r.queue(record{callID: callID, kind: "b_dial", caller: caller.Number, toNumber: toNumber, at: time.Now()})
}

func (r *Recorder) OnUp(callID string, caller core.CallerId, toNumber string, callee core.CallerId) {
	r.queue(record{callID: callID, kind: "up", caller: caller.Number, toNumber: toNumber, counterpart: callee.Number, at: time.Now()})
}

func (r *Recorder) OnAHangup(callID string, caller core.CallerId, toNumber string, reason string) {
	r.queue(record{callID: callID, kind: "a_hangup", caller: caller.Number, toNumber: toNumber, reason: reason, at: time.Now()})
}

func (r *Recorder) OnWarmTransfer(callID, mergedID string, redirector, caller, destination core.CallerId) {
	r.queue(record{
		callID: callID, kind: "warm_transfer", caller: caller.Number,
		toNumber: destination.Number, counterpart: redirector.Number, mergedID: mergedID, at: time.Now(),
	})
}

func (r *Recorder) OnColdTransfer(callID, mergedID string, redirector, caller core.CallerId, toNumber string, targets []core.CallerId) {
	r.queue(record{
		callID: callID, kind: "cold_transfer", caller: caller.Number,
		toNumber: toNumber, counterpart: redirector.Number, mergedID: mergedID, at: time.Now(),
	})
}

func (r *Recorder) OnUserEvent(event core.RawEvent) {
	// User events are not part of the billing record.
}
