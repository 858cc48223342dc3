// pattern: Imperative Shell

package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NopLogger returns a logger that discards all output.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{sugar: zap.NewNop().Sugar()}
}

// TestLogManager is a LoggerProvider for tests. Entries at every level go
// to an in-memory sink only.
type TestLogManager struct {
	sink *ChannelSink
	base *zap.Logger

	mu      sync.Mutex
	loggers map[string]*ScopedLogger
}

// NewTestLogManager creates a sink-only manager at DEBUG level.
func NewTestLogManager(bufferSize int) *TestLogManager {
	sink := NewChannelSink(bufferSize)
	return &TestLogManager{
		sink:    sink,
		base:    zap.New(newSinkCore(sink, zapcore.DebugLevel)),
		loggers: make(map[string]*ScopedLogger),
	}
}

// For returns a scoped logger for the given scope name.
func (m *TestLogManager) For(scope string) *ScopedLogger {
	m.mu.Lock()
	defer m.mu.Unlock()

	if logger, ok := m.loggers[scope]; ok {
		return logger
	}
	logger := newScopedLogger(m.base, scope)
	m.loggers[scope] = logger
	return logger
}

// Channel returns the channel for receiving log entries.
func (m *TestLogManager) Channel() <-chan LogEntry {
	return m.sink.Entries()
}

// Drain returns every buffered entry without blocking.
func (m *TestLogManager) Drain() []LogEntry {
	var out []LogEntry
	for {
		select {
		case entry, ok := <-m.sink.Entries():
			if !ok {
				return out
			}
			out = append(out, entry)
		default:
			return out
		}
	}
}

// Close closes the sink.
func (m *TestLogManager) Close() error {
	return m.sink.Close()
}
