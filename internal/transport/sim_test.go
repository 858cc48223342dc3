package transport

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"rttdash/internal/logframe"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func readAll(t *testing.T, c UpChannel) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, 256)
	for {
		n, err := c.Read(buf)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if n == 0 {
			return out
		}
		out = append(out, buf[:n]...)
	}
}

func TestSim_GeneratesFromClock(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	sim := OpenSim(clock.Now, nil)
	defer sim.Close()

	ups := sim.UpChannels()
	if len(ups) != 3 || len(sim.DownChannels()) != 1 {
		t.Fatalf("channels = %d up / %d down", len(ups), len(sim.DownChannels()))
	}

	banner := string(readAll(t, ups[0]))
	if !strings.Contains(banner, "simulated target") {
		t.Errorf("terminal banner = %q", banner)
	}
	if got := readAll(t, ups[1]); len(got) != 0 {
		t.Errorf("sensors produced %d bytes before time passed", len(got))
	}

	dec, err := logframe.NewDecoder(logframe.DemoTable())
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	boot := readAll(t, ups[2])
	frame, n, err := dec.Decode(boot)
	if err != nil || n != len(boot) {
		t.Fatalf("Decode(boot) = %d, %v", n, err)
	}
	if frame.Index != logframe.DemoBoot {
		t.Errorf("first frame index = %d", frame.Index)
	}

	clock.Advance(time.Second)

	if got := string(readAll(t, ups[0])); got != "uptime 1s\n" {
		t.Errorf("terminal = %q", got)
	}

	samples := readAll(t, ups[1])
	if len(samples) != 50*12 {
		t.Fatalf("sensors produced %d bytes, want %d", len(samples), 50*12)
	}
	for i := 0; i < len(samples); i += 4 {
		v := math.Float32frombits(binary.LittleEndian.Uint32(samples[i:]))
		if math.Abs(float64(v)) > 2000 {
			t.Fatalf("sample %d = %v out of chart range", i/4, v)
		}
	}

	frames := readAll(t, ups[2])
	var indices []uint64
	for len(frames) > 0 {
		frame, n, err := dec.Decode(frames)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		indices = append(indices, frame.Index)
		frames = frames[n:]
	}
	if len(indices) != 3 {
		t.Errorf("frame indices = %v, want two temperatures and a heartbeat", indices)
	}
}

func TestSim_EchoesDownChannel(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	sim := OpenSim(clock.Now, nil)
	readAll(t, sim.UpChannels()[0])

	if _, err := sim.DownChannels()[0].Write([]byte("ping\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := string(readAll(t, sim.UpChannels()[0])); got != "> ping\n" {
		t.Errorf("echo = %q", got)
	}

	_ = sim.Close()
	if _, err := sim.UpChannels()[0].Read(make([]byte, 8)); !errors.Is(err, ErrClosed) {
		t.Errorf("Read() after Close error = %v, want ErrClosed", err)
	}
	if _, err := sim.DownChannels()[0].Write([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("Write() after Close error = %v, want ErrClosed", err)
	}
}

func TestSim_CatchUpIsBounded(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	sim := OpenSim(clock.Now, nil)
	clock.Advance(time.Hour)

	if got := len(readAll(t, sim.UpChannels()[1])); got != simMaxCatchUp*12 {
		t.Errorf("sensors produced %d bytes after a stall, want %d", got, simMaxCatchUp*12)
	}
}
