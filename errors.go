package convlog

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage rejects a logging call with no message text. It is
// raised before any sink is touched.
var ErrEmptyMessage = errors.New("message is empty")

// InvalidSeverityError reports a severity outside the recognized set,
// either as a numeric level or as an unparseable name.
type InvalidSeverityError struct {
	Severity Severity
	Name     string
}

func (e *InvalidSeverityError) Error() string {
	if e.Name != emptyString {
		return fmt.Sprintf("unknown severity %q", e.Name)
	}
	return fmt.Sprintf("invalid severity %d", int(e.Severity))
}

// FieldSerializationError reports a field value that cannot be rendered
// as JSON. The whole record is rejected before any sink sees it.
type FieldSerializationError struct {
	Key string
	Err error
}

func (e *FieldSerializationError) Error() string {
	return fmt.Sprintf("field %q cannot be serialized: %v", e.Key, e.Err)
}

func (e *FieldSerializationError) Unwrap() error { return e.Err }

// SinkInitError reports a sink that could not be constructed or
// registered. It surfaces once, at registration time.
type SinkInitError struct {
	Path string
	Err  error
}

func (e *SinkInitError) Error() string {
	if e.Path == emptyString {
		return fmt.Sprintf("sink registration failed: %v", e.Err)
	}
	return fmt.Sprintf("sink registration failed for %q: %v", e.Path, e.Err)
}

func (e *SinkInitError) Unwrap() error { return e.Err }

// SinkWriteError reports a write or rotation failure in one registered
// sink. It never reaches the logging caller; the dispatcher sends it to
// the diagnostics channel and carries on with the remaining sinks.
type SinkWriteError struct {
	Sink string
	Err  error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("sink %q write failed: %v", e.Sink, e.Err)
}

func (e *SinkWriteError) Unwrap() error { return e.Err }
