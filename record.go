package convlog

import (
	"encoding/json"
	"time"
)

// Record is a single log entry, complete before any sink sees it. A
// record is immutable once built; exactly one is produced per logging
// call and exactly one serialized form of it is shared across sinks.
type Record struct {
	Severity Severity
	Scope    string
	Message  string
	Time     time.Time
	Fields   Fields

	// Call-site attributes, set only when enrichment ran and succeeded.
	Module   string
	Function string
	Line     int
}

// recordEnvelope fixes the serialized key order. encoding/json writes
// struct fields in declaration order, which is the wire contract here.
type recordEnvelope struct {
	Severity  string          `json:"severity"`
	Scope     string          `json:"scope"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
	Fields    json.RawMessage `json:"fields,omitempty"`
	Module    string          `json:"module,omitempty"`
	Function  string          `json:"function,omitempty"`
	Line      int             `json:"line,omitempty"`
}

// buildRecord validates the call and captures the record timestamp. The
// timestamp is taken here, at record creation, so slow sinks cannot skew
// it. Building is side-effect-free; field values are not vetted until
// serialization.
func buildRecord(severity Severity, scope, message string, fields Fields) (Record, error) {
	if !severity.valid() {
		return Record{}, &InvalidSeverityError{Severity: severity}
	}
	if message == emptyString {
		return Record{}, ErrEmptyMessage
	}
	return Record{
		Severity: severity,
		Scope:    scope,
		Message:  message,
		Time:     time.Now().UTC(),
		Fields:   fields.clone(),
	}, nil
}

// encode renders r as one newline-terminated JSON line, UTF-8, with the
// timestamp in microsecond-precision UTC.
func (r Record) encode() ([]byte, error) {
	env := recordEnvelope{
		Severity:  r.Severity.String(),
		Scope:     r.Scope,
		Message:   r.Message,
		Timestamp: r.Time.UTC().Format(timestampLayout),
		Module:    r.Module,
		Function:  r.Function,
		Line:      r.Line,
	}
	if len(r.Fields) > 0 {
		raw, err := r.Fields.MarshalJSON()
		if err != nil {
			return nil, err
		}
		env.Fields = raw
	}
	line, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}
