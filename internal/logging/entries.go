// pattern: Functional Core

package logging

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// LogEntry is one diagnostics record as shown in the TUI.
type LogEntry struct {
	Timestamp time.Time
	Level     string // DEBUG, INFO, WARN or ERROR
	Scope     string // e.g. "channel.2", "transport.dir"
	Message   string
	Fields    map[string]any
}

// String renders the entry on one line.
func (e LogEntry) String() string {
	s := fmt.Sprintf("%s %s [%s] %s", e.Timestamp.Format("15:04:05"), e.Level, e.Scope, e.Message)
	if f := e.FieldsString(); f != "" {
		s += " " + f
	}
	return s
}

// FieldsString renders the fields as key=value pairs in key order.
func (e LogEntry) FieldsString() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, e.Fields[k])
	}
	return strings.Join(pairs, " ")
}

// IsProblem reports whether the entry is a warning or an error.
func (e LogEntry) IsProblem() bool {
	return e.Level == "WARN" || e.Level == "ERROR"
}

// levelName folds zap's levels onto the four the TUI shows.
func levelName(l zapcore.Level) string {
	switch {
	case l >= zapcore.ErrorLevel:
		return "ERROR"
	case l == zapcore.WarnLevel:
		return "WARN"
	case l == zapcore.InfoLevel:
		return "INFO"
	default:
		return "DEBUG"
	}
}
