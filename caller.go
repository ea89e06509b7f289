package convlog

import (
	"path/filepath"
	"runtime"
	"strings"
)

// callerSkip ascends past enrich, emit, and the public logging method to
// reach the frame that invoked the logger.
const callerSkip = 3

// enrich returns a copy of rec with module, function, and line filled in
// from the call site of the public logging method. When the frame cannot
// be resolved the record is returned unchanged; enrichment never fails a
// log call.
func enrich(rec Record) Record {
	pc, file, line, ok := runtime.Caller(callerSkip)
	if !ok || line <= 0 {
		return rec
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return rec
	}
	rec.Module = moduleName(file)
	rec.Function = functionName(fn.Name())
	rec.Line = line
	return rec
}

// moduleName reduces a source path to its file base without the .go
// suffix.
func moduleName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), ".go")
}

// functionName strips the package path and any receiver qualifier from a
// fully-qualified symbol, leaving the bare name of the enclosing
// callable.
func functionName(symbol string) string {
	if i := strings.LastIndex(symbol, "/"); i >= 0 {
		symbol = symbol[i+1:]
	}
	if i := strings.LastIndex(symbol, "."); i >= 0 {
		symbol = symbol[i+1:]
	}
	return symbol
}
