package logging

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSinkCore_Write(t *testing.T) {
	sink := NewChannelSink(10)
	defer sink.Close()

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	logger := zap.New(newSinkCore(sink, zapcore.DebugLevel)).Named("channel.1").With(zap.Int("channel", 1))
	if ce := logger.Check(zapcore.WarnLevel, "write failed"); ce != nil {
		ce.Time = at
		ce.Write(zap.Error(errors.New("pipe closed")))
	}

	select {
	case got := <-sink.Entries():
		if got.Message != "write failed" || got.Scope != "channel.1" || got.Level != "WARN" {
			t.Errorf("got %+v", got)
		}
		if !got.Timestamp.Equal(at) {
			t.Errorf("Timestamp = %v, want %v", got.Timestamp, at)
		}
		if got.Fields["error"] != "pipe closed" {
			t.Errorf("Fields[error] = %v, want pipe closed", got.Fields["error"])
		}
		if _, ok := got.Fields["channel"]; !ok {
			t.Error("context field 'channel' should be kept")
		}
	default:
		t.Fatal("no entry delivered")
	}
}

func TestSinkCore_LevelAndDefaultScope(t *testing.T) {
	sink := NewChannelSink(10)
	defer sink.Close()

	logger := zap.New(newSinkCore(sink, zapcore.InfoLevel))
	logger.Debug("hidden")
	logger.Info("shown")

	select {
	case got := <-sink.Entries():
		if got.Message != "shown" || got.Scope != "app" {
			t.Errorf("got %+v, want shown in scope app", got)
		}
	default:
		t.Fatal("info entry not delivered")
	}
	select {
	case got := <-sink.Entries():
		t.Errorf("unexpected entry %+v", got)
	default:
	}
}

func TestChannelSink_DropsOldestWhenFull(t *testing.T) {
	sink := NewChannelSink(2)
	defer sink.Close()

	for _, msg := range []string{"a", "b", "c"} {
		sink.Send(LogEntry{Message: msg})
	}

	var got []string
	for len(got) < 2 {
		select {
		case e := <-sink.Entries():
			got = append(got, e.Message)
		default:
			t.Fatalf("expected 2 buffered entries, got %v", got)
		}
	}
	if got[0] != "b" || got[1] != "c" {
		t.Errorf("entries = %v, want [b c]", got)
	}
}

func TestChannelSink_SendAfterClose(t *testing.T) {
	sink := NewChannelSink(10)
	_ = sink.Close()
	_ = sink.Close()

	sink.Send(LogEntry{Message: "ignored"})
	if _, ok := <-sink.Entries(); ok {
		t.Error("closed sink delivered an entry")
	}
}
