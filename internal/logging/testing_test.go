package logging

import "testing"

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Debug("test")
	logger.Info("test")
	logger.Warn("test")
	logger.Error("test", "error", "x")
	if logger.With("key", "value") == nil {
		t.Fatal("With() returned nil")
	}
}

func TestTestLogManager_Drain(t *testing.T) {
	lm := NewTestLogManager(10)
	defer func() { _ = lm.Close() }()

	lm.For("dashboard").Warn("skipped")
	lm.For("channel.0").Info("polled")

	entries := lm.Drain()
	if len(entries) != 2 {
		t.Fatalf("Drain() returned %d entries, want 2", len(entries))
	}
	if entries[0].Scope != "dashboard" || entries[0].Level != "WARN" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if len(lm.Drain()) != 0 {
		t.Error("second Drain() should be empty")
	}
}
