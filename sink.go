package convlog

import (
	"io"
	"sync"
)

// Sink delivers serialized records to one destination. Write receives a
// complete newline-terminated line and must not retain it beyond the
// call. The dispatcher invokes sinks from arbitrary goroutines;
// implementations serialize their own writes.
type Sink interface {
	// Name identifies the sink on the diagnostics channel.
	Name() string
	// Accepts reports whether records at the given severity are written.
	Accepts(level Severity) bool
	Write(line []byte) error
	Close() error
}

// consoleSink writes every record to the process standard output,
// unbuffered, so records are visible as they happen.
type consoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{out: out}
}

func (s *consoleSink) Name() string { return "console" }

func (s *consoleSink) Accepts(Severity) bool { return true }

func (s *consoleSink) Write(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.out.Write(line)
	return err
}

// Close is a no-op; the process owns its standard output.
func (s *consoleSink) Close() error { return nil }
