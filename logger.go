package convlog

import (
	"errors"
	"io"
	"os"
	"sync"

	"go.uber.org/atomic"
)

// Logger is the structured logging facade. All methods are safe for
// concurrent use; a logging call blocks until every accepting sink has
// taken the record or had its failure reported.
type Logger struct {
	scope string
	d     *dispatcher
}

// Options configures a Logger. The zero value gives scope "application",
// a console sink on standard output, and diagnostics on standard error.
type Options struct {
	// Scope labels records that do not override it through a scoped
	// view. Empty means DefaultScope.
	Scope string

	// DisableConsole skips registration of the console sink.
	DisableConsole bool

	// ConsoleOutput redirects the console sink. Tests use this; the
	// default is standard output.
	ConsoleOutput io.Writer

	// DiagnosticOutput redirects the diagnostics channel. Tests use
	// this; the default is standard error.
	DiagnosticOutput io.Writer

	// DiagnosticFile sends diagnostics to a self-rotating file instead
	// of standard error.
	DiagnosticFile       string
	DiagnosticMaxSizeMB  int `validate:"gte=0"`
	DiagnosticMaxBackups int `validate:"gte=0"`
	DiagnosticMaxAgeDays int `validate:"gte=0"`
}

// FileHandlerOptions describes one file sink registration. MaxBytes
// selects size rotation, RotateWhen selects time rotation; the two are
// mutually exclusive and leaving both unset registers a plain appending
// sink.
type FileHandlerOptions struct {
	Path string `validate:"required"`

	// Level is the minimum severity the sink accepts. Zero accepts
	// every severity.
	Level Severity `validate:"omitempty,oneof=10 20 30 40 50"`

	// MaxBytes rotates the file through numbered backups before a write
	// would push it past this many bytes.
	MaxBytes int64 `validate:"gte=0"`

	// BackupCount limits retained backups; zero retains none.
	BackupCount int `validate:"gte=0"`

	// RotateWhen rolls the file at UTC interval boundaries with
	// timestamp-suffixed backups.
	RotateWhen RotateWhen `validate:"omitempty,oneof=hourly daily midnight"`
}

// New returns an independent Logger. Most programs want Default instead;
// New exists so tests and embedded uses can build instances without
// touching process-wide state.
func New(opts Options) (*Logger, error) {
	if err := validateOptions(&opts); err != nil {
		return nil, err
	}
	if opts.Scope == emptyString {
		opts.Scope = DefaultScope
	}

	d := newDispatcher(newDiagnostics(opts))
	if !opts.DisableConsole {
		out := io.Writer(os.Stdout)
		if opts.ConsoleOutput != nil {
			out = opts.ConsoleOutput
		}
		d.register(newConsoleSink(out))
	}
	return &Logger{scope: opts.Scope, d: d}, nil
}

var (
	defaultMu     sync.Mutex
	defaultLogger atomic.Pointer[Logger]
)

// Default returns the process-wide Logger, creating it on first call.
// The first call wins: options passed by later callers are ignored, and
// every call site observes the configuration of the first. Use
// ResetDefault in tests to start over.
func Default(opts Options) (*Logger, error) {
	if l := defaultLogger.Load(); l != nil {
		return l, nil
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if l := defaultLogger.Load(); l != nil {
		return l, nil
	}
	l, err := New(opts)
	if err != nil {
		return nil, err
	}
	defaultLogger.Store(l)
	return l, nil
}

// ResetDefault closes and forgets the process-wide Logger so the next
// Default call builds a fresh one. It exists for tests.
func ResetDefault() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	l := defaultLogger.Load()
	if l == nil {
		return nil
	}
	defaultLogger.Store(nil)
	return l.Close()
}

// Scope returns a view of the logger that stamps records with the given
// scope. The view shares sinks, diagnostics, and lifecycle with its
// parent; an empty name returns the parent unchanged.
func (l *Logger) Scope(name string) *Logger {
	if l == nil || name == emptyString {
		return l
	}
	return &Logger{scope: name, d: l.d}
}

// Debug logs a DEBUG record.
func (l *Logger) Debug(message string, fields ...Field) {
	if err := l.emit(SeverityDebug, message, fields); err != nil {
		l.reject(err)
	}
}

// Info logs an INFO record.
// Example: logger.Info("User login successful", convlog.F("user_id", 123))
func (l *Logger) Info(message string, fields ...Field) {
	if err := l.emit(SeverityInfo, message, fields); err != nil {
		l.reject(err)
	}
}

// Warning logs a WARNING record.
func (l *Logger) Warning(message string, fields ...Field) {
	if err := l.emit(SeverityWarning, message, fields); err != nil {
		l.reject(err)
	}
}

// Error logs an ERROR record enriched with the call site.
func (l *Logger) Error(message string, fields ...Field) {
	if err := l.emit(SeverityError, message, fields); err != nil {
		l.reject(err)
	}
}

// Critical logs a CRITICAL record enriched with the call site.
func (l *Logger) Critical(message string, fields ...Field) {
	if err := l.emit(SeverityCritical, message, fields); err != nil {
		l.reject(err)
	}
}

// Log emits a record at an explicit severity and returns validation
// failures (InvalidSeverityError, ErrEmptyMessage,
// FieldSerializationError) to the caller instead of the diagnostics
// channel. Sink failures are isolated either way and never returned.
func (l *Logger) Log(severity Severity, message string, fields ...Field) error {
	return l.emit(severity, message, fields)
}

// emit is the single pipeline behind every logging method: build,
// enrich when the severity calls for it, dispatch. It sits exactly one
// frame below the public methods so call-site capture works from any of
// them.
func (l *Logger) emit(severity Severity, message string, fields Fields) error {
	if l == nil || l.d == nil || l.d.closed.Load() {
		return nil
	}
	rec, err := buildRecord(severity, l.scope, message, fields)
	if err != nil {
		return err
	}
	if rec.Severity >= SeverityError {
		rec = enrich(rec)
	}
	return l.d.dispatch(rec)
}

// reject routes a validation failure from a void severity method to the
// diagnostics channel.
func (l *Logger) reject(err error) {
	if l == nil || l.d == nil || err == nil {
		return
	}
	l.d.diag.rejected(err)
}

// AddFileHandler registers a file sink. The variant follows the options:
// MaxBytes > 0 gives size rotation, RotateWhen gives time rotation,
// neither gives a plain appending file. Registration failures surface
// here once, as SinkInitError; later write failures go to diagnostics.
func (l *Logger) AddFileHandler(opts FileHandlerOptions) error {
	if l == nil || l.d == nil {
		return errors.New(errMsgNilLogger)
	}
	if l.d.closed.Load() {
		return &SinkInitError{Path: opts.Path, Err: errors.New(errMsgClosed)}
	}
	if err := validateFileHandlerOptions(&opts); err != nil {
		return &SinkInitError{Path: opts.Path, Err: err}
	}
	if opts.MaxBytes > 0 && opts.RotateWhen != emptyString {
		return &SinkInitError{Path: opts.Path, Err: errors.New(errMsgBothRotations)}
	}

	var (
		s   Sink
		err error
	)
	switch {
	case opts.MaxBytes > 0:
		s, err = newSizeRotatingSink(opts.Path, opts.Level, opts.MaxBytes, opts.BackupCount)
	case opts.RotateWhen != emptyString:
		s, err = newTimeRotatingSink(opts.Path, opts.Level, opts.RotateWhen, opts.BackupCount)
	default:
		s, err = newFileSink(opts.Path, opts.Level)
	}
	if err != nil {
		return err
	}
	l.d.register(s)
	return nil
}

// AddSink registers a custom sink behind those already present. Like
// file handlers, custom sinks are never removed; they live until Close.
func (l *Logger) AddSink(s Sink) error {
	if l == nil || l.d == nil {
		return errors.New(errMsgNilLogger)
	}
	if s == nil {
		return &SinkInitError{Err: errors.New(errMsgNilSink)}
	}
	if l.d.closed.Load() {
		return &SinkInitError{Path: s.Name(), Err: errors.New(errMsgClosed)}
	}
	l.d.register(s)
	return nil
}

// Close closes every registered sink and makes further calls no-ops.
// It is safe to call more than once.
func (l *Logger) Close() error {
	if l == nil || l.d == nil {
		return nil
	}
	return l.d.close()
}
