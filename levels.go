package convlog

import (
	"strconv"
	"strings"
)

// Severity is the level of a record. The numeric values take part in sink
// threshold comparisons; the names are what appears on the wire.
type Severity int

const (
	SeverityDebug    Severity = 10
	SeverityInfo     Severity = 20
	SeverityWarning  Severity = 30
	SeverityError    Severity = 40
	SeverityCritical Severity = 50
)

var severityNames = map[Severity]string{
	SeverityDebug:    "DEBUG",
	SeverityInfo:     "INFO",
	SeverityWarning:  "WARNING",
	SeverityError:    "ERROR",
	SeverityCritical: "CRITICAL",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "SEVERITY(" + strconv.Itoa(int(s)) + ")"
}

// valid reports whether s is one of the five recognized levels.
func (s Severity) valid() bool {
	_, ok := severityNames[s]
	return ok
}

// ParseSeverity maps a level name to its Severity, ignoring case and
// surrounding whitespace. Unrecognized names fail with an
// InvalidSeverityError.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return SeverityDebug, nil
	case "INFO":
		return SeverityInfo, nil
	case "WARNING":
		return SeverityWarning, nil
	case "ERROR":
		return SeverityError, nil
	case "CRITICAL":
		return SeverityCritical, nil
	}
	return 0, &InvalidSeverityError{Name: name}
}
