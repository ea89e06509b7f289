package convlog

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// diagnostics is the channel for the facility's own failures: sink
// writes that went wrong and calls rejected by a void severity method.
// It is kept strictly separate from the record path, so a broken sink
// can never feed back into the sinks.
type diagnostics struct {
	log zerolog.Logger
}

func newDiagnostics(opts Options) *diagnostics {
	var w io.Writer
	switch {
	case opts.DiagnosticOutput != nil:
		w = zerolog.ConsoleWriter{Out: opts.DiagnosticOutput, TimeFormat: time.RFC3339, NoColor: true}
	case opts.DiagnosticFile != emptyString:
		w = &lumberjack.Logger{
			Filename:   opts.DiagnosticFile,
			MaxSize:    opts.DiagnosticMaxSizeMB,
			MaxBackups: opts.DiagnosticMaxBackups,
			MaxAge:     opts.DiagnosticMaxAgeDays,
		}
	default:
		w = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !isTerminal(os.Stderr)}
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	return &diagnostics{log: logger}
}

// report notes a sink failure. The record is already gone for that sink;
// there is no retry.
func (d *diagnostics) report(err *SinkWriteError) {
	d.log.Error().Err(err).Str("sink", err.Sink).Msg("sink write failed")
}

// rejected notes a validation failure swallowed by a void severity
// method.
func (d *diagnostics) rejected(err error) {
	d.log.Error().Err(err).Msg("log call rejected")
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
