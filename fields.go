package convlog

import (
	"bytes"
	"encoding/json"
)

// Field is one key/value pair attached to a record. Values may be any
// JSON-representable Go value, including nested maps and slices.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
// Example: logger.Info("cache warmed", convlog.F("entries", 1024))
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Fields is an ordered field list. Serialization keeps the order the
// caller supplied; duplicate keys are written as given.
type Fields []Field

// MarshalJSON renders the fields as a JSON object in insertion order.
// The first value that cannot be represented fails the whole object with
// a FieldSerializationError naming the offending key.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, &FieldSerializationError{Key: field.Key, Err: err}
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(field.Value)
		if err != nil {
			return nil, &FieldSerializationError{Key: field.Key, Err: err}
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// clone copies f so later mutation by the caller cannot reach a record.
func (f Fields) clone() Fields {
	if len(f) == 0 {
		return nil
	}
	out := make(Fields, len(f))
	copy(out, f)
	return out
}
