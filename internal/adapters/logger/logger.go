// Package logger implements the logging adapter on log/slog.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// messager is implemented by zerr errors, which can report their own message
// without the rest of the chain.
type messager interface {
	Message() string
}

var _ ports.Logger = (*Logger)(nil)

// Logger implements ports.Logger using log/slog. It writes to stderr so that
// stdout stays reserved for emitted directives.
type Logger struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	level    slog.Level
	jsonMode bool
	output   io.Writer
}

// New creates a Logger writing pretty lines to stderr at info level.
func New() *Logger {
	l := &Logger{output: os.Stderr, level: slog.LevelInfo}
	l.rebuild()
	return l
}

// SetOutput changes the destination, keeping the current mode. Nil means stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuild()
}

// SetLevel changes the minimum level that is written.
func (l *Logger) SetLevel(level domain.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = slog.Level(level)
	l.rebuild()
}

// rebuild must be called with mu held for writing.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: l.level}
	var handler slog.Handler
	if l.jsonMode {
		handler = slog.NewJSONHandler(l.output, opts)
	} else {
		handler = NewPrettyHandler(l.output, opts)
	}
	l.logger = slog.New(handler)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs err. In pretty mode the error chain is unrolled into a
// "Caused by" list and compiler diagnostics are printed below it.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		attrs := []any{"error", err.Error()}
		if ce, ok := domain.AsCompilationError(err); ok {
			attrs = append(attrs, "unit", ce.Unit, "exit_code", ce.ExitCode, "diagnostics", ce.Diagnostics)
		}
		l.logger.Error("build failed", attrs...)
		return
	}

	l.logger.Error(FormatError(err))
}

// FormatError renders err as a headline followed by its causes.
func FormatError(err error) string {
	var messages []string
	current := err
	for current != nil {
		if m, ok := current.(messager); ok {
			if msg := m.Message(); msg != "" {
				messages = append(messages, msg)
			}
			current = errors.Unwrap(current)
			continue
		}
		messages = append(messages, current.Error())
		break
	}

	var lines []string
	for i, msg := range messages {
		msgLines := strings.Split(msg, "\n")
		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
			for _, line := range msgLines[1:] {
				lines = append(lines, "       "+line)
			}
			continue
		}
		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, "      "+line)
		}
	}

	if ce, ok := domain.AsCompilationError(err); ok && strings.TrimSpace(ce.Diagnostics) != "" {
		lines = append(lines, "", "  Diagnostics:")
		for _, line := range strings.Split(strings.TrimRight(ce.Diagnostics, "\n"), "\n") {
			lines = append(lines, "    "+line)
		}
	}

	return strings.Join(lines, "\n")
}
