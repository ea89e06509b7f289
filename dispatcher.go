package convlog

import (
	"sync"

	"go.uber.org/atomic"
)

// dispatcher owns the sink registry and performs the single
// serialization per record. The registry only grows; sinks live until
// Close.
type dispatcher struct {
	mu     sync.RWMutex
	sinks  []Sink
	diag   *diagnostics
	closed atomic.Bool
}

func newDispatcher(diag *diagnostics) *dispatcher {
	return &dispatcher{diag: diag}
}

func (d *dispatcher) register(s Sink) {
	d.mu.Lock()
	d.sinks = append(d.sinks, s)
	d.mu.Unlock()
}

// dispatch serializes rec once and hands the same bytes to every sink
// accepting its severity, in registration order. Sink failures go to the
// diagnostics channel and never interrupt delivery to the remaining
// sinks; only serialization failures reach the caller, before any sink
// is touched.
func (d *dispatcher) dispatch(rec Record) error {
	line, err := rec.encode()
	if err != nil {
		return err
	}

	// The snapshot is safe against concurrent registration: register
	// appends, so the slice header taken here never exposes a
	// half-registered sink.
	d.mu.RLock()
	sinks := d.sinks
	d.mu.RUnlock()

	for _, s := range sinks {
		if !s.Accepts(rec.Severity) {
			continue
		}
		if werr := s.Write(line); werr != nil {
			d.diag.report(&SinkWriteError{Sink: s.Name(), Err: werr})
		}
	}
	return nil
}

// close closes every registered sink once and keeps the first error.
func (d *dispatcher) close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	d.mu.RLock()
	sinks := d.sinks
	d.mu.RUnlock()

	var firstErr error
	for _, s := range sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
