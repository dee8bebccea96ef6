package alog

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test returns a logger for unit tests, logging at debug level into memory.
// Its assertions mirror stretchr/testify and report whether they succeeded.
func Test(t *testing.T) *TestLogger {
	if t == nil {
		panic("alog: Test called with nil *testing.T")
	}

	rec := &lineRecorder{}

	return &TestLogger{
		Logger: slog.New(newHandler(
			WithLevel(LevelDebug),
			WithHandler(slog.NewTextHandler(rec, debugHandlerOptions())),
		)),
		t:   t,
		rec: rec,
	}
}

// TestLogger can be injected wherever a Logger is expected
// and asserts on the lines written to it.
type TestLogger struct {
	*slog.Logger

	t   *testing.T
	rec *lineRecorder
}

var (
	_ Logger  = (*TestLogger)(nil)
	_ Leveler = (*TestLogger)(nil)
)

func (l *TestLogger) SetLevel(level slog.Level) { Unwrap(l.Logger).SetLevel(level) }
func (l *TestLogger) Level() slog.Level         { return Unwrap(l.Logger).Level() }

// String returns all logged lines.
func (l *TestLogger) String() string {
	return strings.Join(l.Lines(), "")
}

// Lines returns a copy of the logged lines, each with its trailing newline.
func (l *TestLogger) Lines() []string {
	return l.rec.snapshot()
}

func (l *TestLogger) Empty(msgAndArgs ...any) bool {
	l.t.Helper()

	if n := len(l.Lines()); n > 0 {
		return assert.Fail(l.t, fmt.Sprintf("logger is not empty, it has %s", plural(n, "line")), msgAndArgs...)
	}

	return true
}

func (l *TestLogger) NotEmpty(msgAndArgs ...any) bool {
	l.t.Helper()

	if len(l.Lines()) == 0 {
		return assert.Fail(l.t, "logger is empty, should not be", msgAndArgs...)
	}

	return true
}

// Contains asserts that at least one line contains substr.
func (l *TestLogger) Contains(substr string, msgAndArgs ...any) bool {
	l.t.Helper()

	if l.count(substr) == 0 {
		return assert.Fail(l.t, "log output does not have a line which contains: "+substr, msgAndArgs...)
	}

	return true
}

// NotContains asserts that no line contains substr.
func (l *TestLogger) NotContains(substr string, msgAndArgs ...any) bool {
	l.t.Helper()

	if n := l.count(substr); n > 0 {
		return assert.Fail(l.t, fmt.Sprintf("log output contains %q in %s, should not", substr, plural(n, "line")), msgAndArgs...)
	}

	return true
}

// Total asserts the exact number of logged lines.
func (l *TestLogger) Total(total int, msgAndArgs ...any) bool {
	l.t.Helper()

	if n := len(l.Lines()); n != total {
		return assert.Fail(l.t, fmt.Sprintf("logger does not have %d lines, it has: %d", total, n), msgAndArgs...)
	}

	return true
}

func (l *TestLogger) count(substr string) int {
	n := 0

	for _, line := range l.Lines() {
		if strings.Contains(line, substr) {
			n++
		}
	}

	return n
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}

	return fmt.Sprintf("%d %ss", n, word)
}

// lineRecorder keeps every Write as one line.
// slog.TextHandler writes each record with a single call.
type lineRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *lineRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines = append(r.lines, string(p))

	return len(p), nil
}

func (r *lineRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.lines...)
}
