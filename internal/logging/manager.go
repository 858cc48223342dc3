// pattern: Imperative Shell

package logging

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds configuration for the diagnostics Manager.
type Config struct {
	FilePath       string // diagnostics log file, rotated by size
	MaxSizeMB      int
	MaxBackups     int
	MaxAgeDays     int
	Level          string // debug, info, warn or error
	ChannelBufSize int    // entries buffered for the TUI (default 1000)
}

// LoggerProvider hands out scoped loggers.
// Both Manager and TestLogManager implement this interface.
type LoggerProvider interface {
	For(scope string) *ScopedLogger
}

// ScopedLogger is a diagnostics logger bound to one scope
// (e.g. "dashboard", "channel.0", "transport.dir"). Arguments after the
// message are alternating keys and values.
type ScopedLogger struct {
	sugar *zap.SugaredLogger
	scope string
}

func newScopedLogger(z *zap.Logger, scope string) *ScopedLogger {
	return &ScopedLogger{sugar: z.Named(scope).Sugar(), scope: scope}
}

func (l *ScopedLogger) Debug(msg string, kv ...any) { l.sugar.Debugw(msg, kv...) }
func (l *ScopedLogger) Info(msg string, kv ...any)  { l.sugar.Infow(msg, kv...) }
func (l *ScopedLogger) Warn(msg string, kv ...any)  { l.sugar.Warnw(msg, kv...) }
func (l *ScopedLogger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, kv...) }

// With returns a logger that adds kv to every entry.
func (l *ScopedLogger) With(kv ...any) *ScopedLogger {
	return &ScopedLogger{sugar: l.sugar.With(kv...), scope: l.scope}
}

// Scope returns the logger's scope.
func (l *ScopedLogger) Scope() string {
	return l.scope
}

// Manager tees diagnostics into a rotated JSON file and the TUI sink.
type Manager struct {
	base       *zap.Logger
	sink       *ChannelSink
	fileWriter *lumberjack.Logger

	mu      sync.Mutex
	loggers map[string]*ScopedLogger
}

// NewManager creates the file and sink cores described by cfg.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("diagnostics log file path is required")
	}
	if cfg.ChannelBufSize == 0 {
		cfg.ChannelBufSize = 1000
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = 7
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	sink := NewChannelSink(cfg.ChannelBufSize)

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig()), zapcore.AddSync(fileWriter), level),
		newSinkCore(sink, level),
	)

	return &Manager{
		base:       zap.New(core),
		sink:       sink,
		fileWriter: fileWriter,
		loggers:    make(map[string]*ScopedLogger),
	}, nil
}

func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	return cfg
}

// For returns the cached logger for scope, creating it on first use.
func (m *Manager) For(scope string) *ScopedLogger {
	m.mu.Lock()
	defer m.mu.Unlock()

	if logger, ok := m.loggers[scope]; ok {
		return logger
	}
	logger := newScopedLogger(m.base, scope)
	m.loggers[scope] = logger
	return logger
}

// Entries returns the channel the TUI drains for diagnostics.
func (m *Manager) Entries() <-chan LogEntry {
	return m.sink.Entries()
}

// Sink returns the TUI sink so other producers can inject entries.
func (m *Manager) Sink() *ChannelSink {
	return m.sink
}

// Sync flushes the file core.
func (m *Manager) Sync() error {
	return m.base.Sync()
}

// Close flushes and releases the file and the sink.
func (m *Manager) Close() error {
	_ = m.Sync()
	_ = m.sink.Close()
	return m.fileWriter.Close()
}
