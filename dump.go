package convlog

import (
	"fmt"
	"reflect"
)

// Maximum recursion depth and per-collection element cap for Dump.
const (
	maxDumpDepth    = 10
	maxDumpElements = 10
)

// Dump logs a snapshot of v as a single DEBUG record named by label,
// flattening nested structure into prefixed field keys. It handles
// structs (exported fields), maps, slices, and basic types; pointers are
// followed, cycles are cut, and large collections are truncated.
func (l *Logger) Dump(label string, v interface{}) {
	if l == nil || l.d == nil {
		return
	}

	var fields Fields
	if v == nil {
		fields = Fields{F("value", nil)}
	} else {
		visited := make(map[uintptr]bool)
		fields = dumpValue(fields, emptyString, reflect.ValueOf(v), visited, 0)
	}
	if err := l.emit(SeverityDebug, label, fields); err != nil {
		l.reject(err)
	}
}

// dumpValue is the recursive helper behind Dump. It appends flattened
// fields for val under prefix and returns the grown list.
func dumpValue(fields Fields, prefix string, val reflect.Value, visited map[uintptr]bool, depth int) Fields {
	if depth > maxDumpDepth {
		return append(fields, F(dumpKey(prefix), "<max depth reached>"))
	}
	if !val.IsValid() {
		return append(fields, F(dumpKey(prefix), nil))
	}

	// Unwrap interfaces and pointers, with cycle detection on pointers.
	for {
		switch val.Kind() {
		case reflect.Interface:
			if val.IsNil() {
				return append(fields, F(dumpKey(prefix), nil))
			}
			val = val.Elem()
			continue
		case reflect.Ptr:
			if val.IsNil() {
				return append(fields, F(dumpKey(prefix), nil))
			}
			ptr := val.Pointer()
			if visited[ptr] {
				return append(fields, F(dumpKey(prefix), "<circular reference>"))
			}
			visited[ptr] = true
			val = val.Elem()
		default:
		}
		break
	}

	typ := val.Type()

	switch val.Kind() {
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			fieldVal := val.Field(i)

			// Skip unexported fields.
			if !fieldVal.CanInterface() {
				continue
			}

			fieldPrefix := field.Name
			if prefix != emptyString {
				fieldPrefix = prefix + "." + field.Name
			}
			fields = dumpValue(fields, fieldPrefix, fieldVal, visited, depth+1)
		}
		return fields

	case reflect.Map:
		iter := val.MapRange()
		for iter.Next() {
			keyStr := fmt.Sprintf("%v", iter.Key().Interface())
			fields = dumpValue(fields, prefix+"["+keyStr+"]", iter.Value(), visited, depth+1)
		}
		return fields

	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len() && i < maxDumpElements; i++ {
			elemPrefix := fmt.Sprintf("%s[%d]", prefix, i)
			fields = dumpValue(fields, elemPrefix, val.Index(i), visited, depth+1)
		}
		if val.Len() > maxDumpElements {
			fields = append(fields, F(prefix+"[...]",
				fmt.Sprintf("%d more elements", val.Len()-maxDumpElements)))
		}
		return fields

	default:
		if !val.CanInterface() {
			return append(fields, F(dumpKey(prefix), "<opaque>"))
		}
		switch val.Kind() {
		case reflect.Bool, reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
			reflect.Float32, reflect.Float64:
			return append(fields, F(dumpKey(prefix), val.Interface()))
		default:
			// Channels, funcs, and the like have no JSON form.
			return append(fields, F(dumpKey(prefix), fmt.Sprintf("%v", val.Interface())))
		}
	}
}

// dumpKey never leaves a field key empty when the dumped value itself is
// a scalar.
func dumpKey(prefix string) string {
	if prefix == emptyString {
		return "value"
	}
	return prefix
}
