// Package logging provides leveled logging and trial event tracing for sweep.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - An EventLog of structured JSONL trial events (.sweep/trials.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/sweep/internal/constants"
)

// LevelTrace is a custom slog level below Debug for per-tick simulation output.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "warn", "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing text records to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Event is one line of the trial event log.
type Event struct {
	Time           time.Time `json:"time"`
	RunID          string    `json:"run_id"`
	Agents         int       `json:"agents"`
	Trial          int       `json:"trial"`
	Ticks          int       `json:"ticks"`
	CleanedPercent float64   `json:"cleaned_percent"`
	Moves          int       `json:"moves"`
	InitialDirty   int       `json:"initial_dirty"`
	Completed      bool      `json:"completed"`
}

// EventLog appends trial events to a JSONL file.
// It is safe for concurrent use. A nil EventLog is valid; every method is a
// no-op on a nil receiver.
type EventLog struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// NewEventLog opens dir/trials.jsonl for append when level is debug or
// trace. At info and above it returns nil and creates nothing, and it also
// returns nil if the file cannot be opened.
func NewEventLog(dir string, level string) *EventLog {
	if ParseLevel(level) > slog.LevelDebug {
		return nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, constants.EventLogFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}
	return &EventLog{file: f, now: time.Now}
}

// Write appends one event. A zero Time is filled with the current UTC time.
func (l *EventLog) Write(ev Event) {
	if l == nil || l.file == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = l.now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.file.Write(data)
}

// Close closes the underlying file.
func (l *EventLog) Close() {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}
