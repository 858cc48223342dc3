// pattern: Imperative Shell

package logging

import (
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap/zapcore"
)

// ChannelSink buffers entries for the TUI, which drains it once per tick.
// Sends never block; when the buffer is full the oldest entry is dropped.
type ChannelSink struct {
	entries chan LogEntry
	mu      sync.Mutex
	closed  bool
}

// NewChannelSink creates a sink holding up to bufferSize entries.
func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{entries: make(chan LogEntry, max(bufferSize, 1))}
}

// Send delivers an entry. Entries sent after Close are dropped.
func (s *ChannelSink) Send(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for {
		select {
		case s.entries <- entry:
			return
		default:
		}
		select {
		case <-s.entries:
		default:
		}
	}
}

// Close closes the entries channel. Safe to call more than once.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	return nil
}

// Entries returns the channel the TUI drains.
func (s *ChannelSink) Entries() <-chan LogEntry {
	return s.entries
}

// sinkCore is a zapcore.Core that turns entries into LogEntry values
// without an encode/parse round trip.
type sinkCore struct {
	zapcore.LevelEnabler
	sink   *ChannelSink
	fields []zapcore.Field
}

func newSinkCore(sink *ChannelSink, level zapcore.LevelEnabler) *sinkCore {
	return &sinkCore{LevelEnabler: level, sink: sink}
}

func (c *sinkCore) With(fields []zapcore.Field) zapcore.Core {
	return &sinkCore{
		LevelEnabler: c.LevelEnabler,
		sink:         c.sink,
		fields:       append(slices.Clip(c.fields), fields...),
	}
}

func (c *sinkCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *sinkCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	scope := ent.LoggerName
	if scope == "" {
		scope = "app"
	}
	c.sink.Send(LogEntry{
		Timestamp: ent.Time,
		Level:     levelName(ent.Level),
		Scope:     scope,
		Message:   ent.Message,
		Fields:    maps.Clone(enc.Fields),
	})
	return nil
}

func (c *sinkCore) Sync() error { return nil }
