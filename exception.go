package convlog

import (
	"errors"
	"strings"
)

// Exception logs an ERROR record with the error's context merged into
// the fields: the error text under "error" and, when the error wraps
// others, the full unwrap chain (outermost to root) under "error_chain",
// a joined human-readable form under "error_history", and the root cause
// under "error_root". A nil err logs the message alone.
func (l *Logger) Exception(message string, err error, fields ...Field) {
	merged := make(Fields, 0, len(fields)+4)
	merged = append(merged, fields...)
	if err != nil {
		merged = append(merged, F("error", err.Error()))
		if chain := errorChain(err); len(chain) > 1 {
			merged = append(merged,
				F("error_chain", chain),
				F("error_history", joinChain(chain)),
				F("error_root", chain[len(chain)-1]),
			)
		}
	}
	if eerr := l.emit(SeverityError, message, merged); eerr != nil {
		l.reject(eerr)
	}
}

// errorChain walks err's unwrap chain and returns the messages from the
// outermost error to the root cause. It guards against excessive depth
// and repeated messages to avoid cycles.
func errorChain(err error) []string {
	const maxDepth = 50
	var chain []string
	seen := map[string]bool{}

	for err != nil && len(chain) < maxDepth {
		msg := err.Error()
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		err = errors.Unwrap(err)
	}
	return chain
}

// joinChain renders a chain as a single string separated by " -> ".
func joinChain(chain []string) string {
	if len(chain) == 0 {
		return emptyString
	}
	return strings.Join(chain, " -> ")
}
