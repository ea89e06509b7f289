package convlog

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry map[string]any

// newTestLogger builds a logger whose console sink writes into a buffer
// and whose diagnostics go to a second buffer instead of stderr.
func newTestLogger(t testing.TB, opts Options) (*Logger, *threadSafeBuffer, *threadSafeBuffer) {
	t.Helper()
	out := &threadSafeBuffer{}
	diag := &threadSafeBuffer{}
	if opts.ConsoleOutput == nil {
		opts.ConsoleOutput = out
	}
	if opts.DiagnosticOutput == nil {
		opts.DiagnosticOutput = diag
	}
	logger, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Close() })
	return logger, out, diag
}

// decodeLines parses captured output as one JSON record per line.
func decodeLines(t testing.TB, data string) []logEntry {
	t.Helper()
	var entries []logEntry
	for _, line := range strings.Split(data, "\n") {
		if line == "" {
			continue
		}
		var entry logEntry
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func readLogLines(t testing.TB, path string) []logEntry {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return decodeLines(t, string(data))
}

func TestNew_Defaults(t *testing.T) {
	logger, out, _ := newTestLogger(t, Options{})

	logger.Info("User login successful", F("user_id", 123), F("ip", "192.168.1.1"))

	entries := decodeLines(t, out.String())
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "INFO", entry["severity"])
	assert.Equal(t, DefaultScope, entry["scope"])
	assert.Equal(t, "User login successful", entry["message"])

	fields, ok := entry["fields"].(map[string]any)
	require.True(t, ok, "fields should decode as a JSON object")
	assert.Equal(t, float64(123), fields["user_id"])
	assert.Equal(t, "192.168.1.1", fields["ip"])

	// Records below ERROR carry no call-site keys.
	for _, key := range []string{"module", "function", "line"} {
		_, present := entry[key]
		assert.False(t, present, "unexpected key %q", key)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(Options{DiagnosticMaxSizeMB: -1})
	require.Error(t, err)
	require.Contains(t, err.Error(), errMsgOptionsInvalid)
}

func TestNew_DisableConsole(t *testing.T) {
	logger, out, _ := newTestLogger(t, Options{DisableConsole: true})

	logger.Info("nothing to see")

	assert.Empty(t, out.String())
}

func TestSeverityMethods(t *testing.T) {
	logger, out, _ := newTestLogger(t, Options{Scope: "svc"})

	logger.Debug("debug msg")
	logger.Info("info msg")
	logger.Warning("warning msg")
	logger.Error("error msg")
	logger.Critical("critical msg")

	entries := decodeLines(t, out.String())
	require.Len(t, entries, 5)

	want := []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}
	for i, entry := range entries {
		assert.Equal(t, want[i], entry["severity"])
		assert.Equal(t, "svc", entry["scope"])
		_, enriched := entry["module"]
		assert.Equal(t, want[i] == "ERROR" || want[i] == "CRITICAL", enriched,
			"call-site enrichment for %s", want[i])
	}
}

func TestEmittedRecords_KeySetAndTimestamps(t *testing.T) {
	logger, out, _ := newTestLogger(t, Options{Scope: "svc"})

	logger.Info("first", F("user_id", 1))
	logger.Warning("second")
	logger.Error("third")

	entries := decodeLines(t, out.String())
	require.Len(t, entries, 3)

	wantKeys := [][]string{
		{"severity", "scope", "message", "timestamp", "fields"},
		{"severity", "scope", "message", "timestamp"},
		{"severity", "scope", "message", "timestamp", "module", "function", "line"},
	}
	var prev time.Time
	for i, entry := range entries {
		keys := make([]string, 0, len(entry))
		for k := range entry {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, wantKeys[i], keys, "entry %d", i)

		raw, ok := entry["timestamp"].(string)
		require.True(t, ok, "entry %d", i)
		ts, err := time.Parse(timestampLayout, raw)
		require.NoError(t, err)
		assert.Equal(t, time.UTC, ts.Location())
		assert.False(t, ts.Before(prev), "timestamps must not go backwards")
		prev = ts
	}
}

func TestLog_ReturnsValidationErrors(t *testing.T) {
	logger, out, _ := newTestLogger(t, Options{})

	t.Run("unknown severity", func(t *testing.T) {
		err := logger.Log(Severity(7), "msg")
		var sevErr *InvalidSeverityError
		require.ErrorAs(t, err, &sevErr)
		assert.Equal(t, Severity(7), sevErr.Severity)
	})

	t.Run("empty message", func(t *testing.T) {
		err := logger.Log(SeverityInfo, "")
		require.ErrorIs(t, err, ErrEmptyMessage)
	})

	t.Run("unserializable field", func(t *testing.T) {
		err := logger.Log(SeverityInfo, "msg", F("ch", make(chan int)))
		var fieldErr *FieldSerializationError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "ch", fieldErr.Key)
	})

	t.Run("valid call", func(t *testing.T) {
		require.NoError(t, logger.Log(SeverityWarning, "watch out"))
	})

	// Only the valid call reached the console.
	entries := decodeLines(t, out.String())
	require.Len(t, entries, 1)
	assert.Equal(t, "WARNING", entries[0]["severity"])
}

func TestVoidMethodsReportRejections(t *testing.T) {
	logger, out, diag := newTestLogger(t, Options{})

	logger.Info("", F("user", 1))
	logger.Error("bad field", F("ch", make(chan int)))

	assert.Empty(t, out.String())
	text := diag.String()
	assert.Contains(t, text, "log call rejected")
	assert.Contains(t, text, "message is empty")
	assert.Contains(t, text, "ch")
}

func TestScope_Views(t *testing.T) {
	logger, out, _ := newTestLogger(t, Options{Scope: "web-app"})

	auth := logger.Scope("auth")
	require.NotNil(t, auth)
	auth.Info("login")
	logger.Info("page view")

	entries := decodeLines(t, out.String())
	require.Len(t, entries, 2)
	assert.Equal(t, "auth", entries[0]["scope"])
	assert.Equal(t, "web-app", entries[1]["scope"])

	// An empty name keeps the parent view.
	assert.Same(t, logger, logger.Scope(""))

	// Views share lifecycle with the parent.
	require.NoError(t, logger.Close())
	auth.Info("after close")
	assert.Len(t, decodeLines(t, out.String()), 2)
}

func TestDefault_FirstCallWins(t *testing.T) {
	require.NoError(t, ResetDefault())
	t.Cleanup(func() { _ = ResetDefault() })

	buf := &threadSafeBuffer{}
	first, err := Default(Options{Scope: "svc-a", ConsoleOutput: buf, DiagnosticOutput: io.Discard})
	require.NoError(t, err)

	// Later options are ignored; every caller sees the first instance.
	second, err := Default(Options{Scope: "svc-b"})
	require.NoError(t, err)
	assert.Same(t, first, second)

	second.Info("hello")
	entries := decodeLines(t, buf.String())
	require.Len(t, entries, 1)
	assert.Equal(t, "svc-a", entries[0]["scope"])

	require.NoError(t, ResetDefault())
	third, err := Default(Options{Scope: "svc-c", ConsoleOutput: buf, DiagnosticOutput: io.Discard})
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestClose_Idempotent(t *testing.T) {
	logger, out, _ := newTestLogger(t, Options{})

	logger.Info("before")
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	// Calls after Close are dropped silently, even through Log.
	logger.Info("after")
	require.NoError(t, logger.Log(SeverityError, "after too"))
	assert.Len(t, decodeLines(t, out.String()), 1)

	err := logger.AddFileHandler(FileHandlerOptions{Path: filepath.Join(t.TempDir(), "x.log")})
	var initErr *SinkInitError
	require.ErrorAs(t, err, &initErr)
}

func TestNilLogger_Safe(t *testing.T) {
	var logger *Logger

	logger.Info("no-op")
	logger.Error("no-op")
	require.NoError(t, logger.Log(SeverityInfo, "no-op"))
	require.NoError(t, logger.Close())
	assert.Nil(t, logger.Scope("x"))
	require.Error(t, logger.AddFileHandler(FileHandlerOptions{Path: "x.log"}))
	require.Error(t, logger.AddSink(&memorySink{}))
}

func TestAddFileHandler_LevelFiltering(t *testing.T) {
	dir := t.TempDir()
	errPath := filepath.Join(dir, "errors.log")
	allPath := filepath.Join(dir, "all.log")

	logger, _, _ := newTestLogger(t, Options{DisableConsole: true})
	require.NoError(t, logger.AddFileHandler(FileHandlerOptions{Path: errPath, Level: SeverityError}))
	require.NoError(t, logger.AddFileHandler(FileHandlerOptions{Path: allPath}))

	logger.Info("Process started")
	logger.Error("Process failed")

	errEntries := readLogLines(t, errPath)
	require.Len(t, errEntries, 1)
	assert.Equal(t, "ERROR", errEntries[0]["severity"])

	allEntries := readLogLines(t, allPath)
	require.Len(t, allEntries, 2)
	assert.Equal(t, "INFO", allEntries[0]["severity"])
	assert.Equal(t, "ERROR", allEntries[1]["severity"])
}

func TestAddFileHandler_Errors(t *testing.T) {
	logger, _, _ := newTestLogger(t, Options{DisableConsole: true})

	t.Run("missing path", func(t *testing.T) {
		err := logger.AddFileHandler(FileHandlerOptions{})
		var initErr *SinkInitError
		require.ErrorAs(t, err, &initErr)
	})

	t.Run("both rotation modes", func(t *testing.T) {
		err := logger.AddFileHandler(FileHandlerOptions{
			Path:       filepath.Join(t.TempDir(), "app.log"),
			MaxBytes:   1024,
			RotateWhen: RotateDaily,
		})
		var initErr *SinkInitError
		require.ErrorAs(t, err, &initErr)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("level outside the recognized set", func(t *testing.T) {
		err := logger.AddFileHandler(FileHandlerOptions{Path: "app.log", Level: Severity(15)})
		var initErr *SinkInitError
		require.ErrorAs(t, err, &initErr)
	})

	t.Run("unwritable path", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		// The parent "directory" is a regular file, so the sink cannot open.
		err := logger.AddFileHandler(FileHandlerOptions{Path: filepath.Join(blocker, "app.log")})
		var initErr *SinkInitError
		require.ErrorAs(t, err, &initErr)
	})
}

func TestConcurrentLogging(t *testing.T) {
	logger, out, _ := newTestLogger(t, Options{})

	const goroutines = 16
	const iterations = 50

	done := make(chan bool, goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			for j := 0; j < iterations; j++ {
				logger.Info("tick", F("goroutine", id), F("iteration", j))
			}
			done <- true
		}(i)
	}
	for i := 0; i < goroutines; i++ {
		<-done
	}

	// Every line must still be a complete JSON record.
	entries := decodeLines(t, out.String())
	assert.Len(t, entries, goroutines*iterations)
	for _, entry := range entries {
		assert.Equal(t, "INFO", entry["severity"])
		assert.Equal(t, "tick", entry["message"])
	}
}

func TestConcurrentScopesAndClose(t *testing.T) {
	logger, _, _ := newTestLogger(t, Options{DisableConsole: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			scoped := logger.Scope("worker")
			for j := 0; j < 100; j++ {
				scoped.Info("busy", F("n", j))
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, logger.Close())
}

// threadSafeBuffer is a simple thread-safe buffer for capturing log output.
type threadSafeBuffer struct {
	bytes.Buffer
	sync.Mutex
}

func (b *threadSafeBuffer) Write(p []byte) (n int, err error) {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.Write(p)
}

func (b *threadSafeBuffer) String() string {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.String()
}
