package archivist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestArchivist(logLevel int, debugLevel int) (*Archivist, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf)
	return New(&Config{
		Logger:     &logger,
		LogLevel:   logLevel,
		DebugLevel: debugLevel,
	}), buf
}

// Test 1.1: lines below the configured log level are suppressed, lines at
// or above it pass through to the backend
func Test_LogLevel_Filtering(t *testing.T) {
	a, buf := newTestArchivist(LEVEL_ERROR, 0)

	a.Info("info line")
	a.Warning("warning line")
	if buf.Len() != 0 {
		t.Fatalf("expected info and warning to be suppressed, got %q", buf.String())
	}

	a.Error("error line")
	if !strings.Contains(buf.String(), "error line") {
		t.Fatalf("expected error line to pass, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected zerolog error level, got %q", buf.String())
	}
}

// Test 1.2: an uninitialized log level defaults to warning
func Test_LogLevel_ZeroDefaultsToWarning(t *testing.T) {
	a, buf := newTestArchivist(0, 0)

	a.Info("info line")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be suppressed on default level, got %q", buf.String())
	}
	a.Warning("warning line")
	if !strings.Contains(buf.String(), "warning line") {
		t.Fatalf("expected warning to pass on default level, got %q", buf.String())
	}
}

// Test 1.3: an unknown log level falls back to warning and reports itself
func Test_LogLevel_UnknownFallsBack(t *testing.T) {
	a, buf := newTestArchivist(LEVEL_INFO, 0)
	a.SetLogLevel(42)
	if !strings.Contains(buf.String(), "LOG_LEVEL is unknown") {
		t.Fatalf("expected fallback notice, got %q", buf.String())
	}

	buf.Reset()
	a.Info("info line")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be suppressed after fallback, got %q", buf.String())
	}
	a.Warning("warning line")
	if !strings.Contains(buf.String(), "warning line") {
		t.Fatalf("expected warning to pass after fallback, got %q", buf.String())
	}
}

// Test 2.1: debug lines are double gated by log level and debug verbosity
func Test_Debug_VerbosityGate(t *testing.T) {
	a, buf := newTestArchivist(LEVEL_DEBUG, DEBUG_LEVEL_INFO)

	a.Debug(DEBUG_LEVEL_TRACE, "trace line")
	if !strings.Contains(buf.String(), "trace line") {
		t.Fatalf("expected trace line under higher verbosity, got %q", buf.String())
	}

	buf.Reset()
	a.Debug(DEBUG_LEVEL_MAX, "max line")
	if buf.Len() != 0 {
		t.Fatalf("expected max verbosity line to be suppressed, got %q", buf.String())
	}
}

// Test 2.2: outside of LEVEL_DEBUG the debug verbosity stays zero
func Test_Debug_SuppressedOnInfoLevel(t *testing.T) {
	a, buf := newTestArchivist(LEVEL_INFO, DEBUG_LEVEL_MAX)
	a.Debug(DEBUG_LEVEL_TRACE, "trace line")
	if buf.Len() != 0 {
		t.Fatalf("expected debug suppressed on info level, got %q", buf.String())
	}
}

// Test 3.1: lines carry the calling file and line, params get dumped
// behind the message
func Test_Store_LineFormat(t *testing.T) {
	a, buf := newTestArchivist(LEVEL_INFO, 0)

	a.Info("plain message")
	if !strings.Contains(buf.String(), "archivist_test.go#") {
		t.Fatalf("expected caller file in line, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "|plain message") {
		t.Fatalf("expected message behind caller prefix, got %q", buf.String())
	}

	buf.Reset()
	a.Info("with params", 1, "two")
	if !strings.Contains(buf.String(), "with params|") {
		t.Fatalf("expected param separator, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "two") {
		t.Fatalf("expected params dumped, got %q", buf.String())
	}
}

// Test 3.2: the F variants format instead of dumping
func Test_Store_Formatted(t *testing.T) {
	a, buf := newTestArchivist(LEVEL_INFO, 0)
	a.InfoF("count %d name %s", 7, "seven")
	if !strings.Contains(buf.String(), "count 7 name seven") {
		t.Fatalf("expected formatted message, got %q", buf.String())
	}
}

// Test 4.1: Fatal writes a fatal level line without terminating the
// process
func Test_Fatal_DoesNotExit(t *testing.T) {
	a, buf := newTestArchivist(LEVEL_INFO, 0)
	a.Fatal("fatal line")
	if !strings.Contains(buf.String(), `"level":"fatal"`) {
		t.Fatalf("expected fatal level line, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "fatal line") {
		t.Fatalf("expected fatal message, got %q", buf.String())
	}
}

// Test 4.2: a nil logger config falls back to the default console writer
// without panicking
func Test_SetLogger_NilDefaults(t *testing.T) {
	a := New(&Config{Logger: nil, LogLevel: LEVEL_FATAL})
	a.Fatal("still alive")
}

// Test 4.3: the backend level is forced open so archivist owns filtering
func Test_SetLogger_BackendPassesAllLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.ErrorLevel)
	a := New(&Config{Logger: &logger, LogLevel: LEVEL_DEBUG, DebugLevel: DEBUG_LEVEL_MAX})
	a.Debug(DEBUG_LEVEL_TRACE, "debug through strict backend")
	if !strings.Contains(buf.String(), "debug through strict backend") {
		t.Fatalf("expected archivist to override backend level, got %q", buf.String())
	}
}
