package channel

import (
	"bytes"
	"errors"
	"testing"

	"rttdash/internal/logframe"
)

func TestWriteLog(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		d := newTextDecoder(t)
		d.Feed([]byte("alpha\n\nbeta"))
		var buf bytes.Buffer
		if err := d.WriteLog(&buf); err != nil {
			t.Fatalf("WriteLog() error = %v", err)
		}
		if buf.String() != "alpha\n\nbeta\n" {
			t.Errorf("WriteLog() wrote %q", buf.String())
		}
	})

	t.Run("binary", func(t *testing.T) {
		d := newBinaryDecoder(t)
		data := leFloats(3.25, -7, 1e6)
		d.Feed(append(data, 0xAA))
		var buf bytes.Buffer
		if err := d.WriteLog(&buf); err != nil {
			t.Fatalf("WriteLog() error = %v", err)
		}
		if !bytes.Equal(buf.Bytes(), data) {
			t.Errorf("WriteLog() wrote % x, want % x", buf.Bytes(), data)
		}
	})

	t.Run("structured", func(t *testing.T) {
		d := newStructuredDecoder(t, logframe.DemoTable(), nil)
		if d.Serializable() {
			t.Error("Serializable() = true for structured channel")
		}
		if err := d.WriteLog(&bytes.Buffer{}); !errors.Is(err, ErrNotSerializable) {
			t.Errorf("WriteLog() error = %v, want ErrNotSerializable", err)
		}
	})
}
