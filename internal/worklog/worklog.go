// SPDX-License-Identifier: Apache-2.0

// Package worklog is the append-only JSON-lines event log for tool activity.
package worklog

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level tags one log entry.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Entry is one JSON line.
type Entry struct {
	Time       time.Time      `json:"time"`
	Tool       string         `json:"tool"`
	Event      string         `json:"event"`
	Level      Level          `json:"level"`
	Data       map[string]any `json:"data,omitempty"`
	DurationMS int64          `json:"duration_ms,omitempty"`
}

// Logger writes entries as JSON lines. Safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// New opens a size-rotated log file at path.
func New(path string) *Logger {
	return NewWithWriter(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
	})
}

// NewWithWriter writes to an arbitrary writer; used by tests.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{out: w, now: time.Now}
}

// Log appends one entry. Write failures are swallowed: logging never fails a
// tool call.
func (l *Logger) Log(tool, event string, level Level, data map[string]any, duration time.Duration) {
	entry := Entry{
		Time:       l.now(),
		Tool:       tool,
		Event:      event,
		Level:      level,
		Data:       data,
		DurationMS: duration.Milliseconds(),
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(append(line, '\n'))
}

// ToolStart records the beginning of a tool invocation.
func (l *Logger) ToolStart(tool string, data map[string]any) {
	l.Log(tool, "tool_start", LevelInfo, data, 0)
}

// ToolEnd records a finished tool invocation with its duration.
func (l *Logger) ToolEnd(tool string, data map[string]any, duration time.Duration) {
	l.Log(tool, "tool_end", LevelInfo, data, duration)
}

// StageComplete records a methodology stage transition.
func (l *Logger) StageComplete(module, stage string) {
	l.Log("methodology", "stage_complete", LevelInfo, map[string]any{"module": module, "stage": stage}, 0)
}

// Error records a failed tool invocation.
func (l *Logger) Error(tool string, err error) {
	l.Log(tool, "error", LevelError, map[string]any{"error": err.Error()}, 0)
}
