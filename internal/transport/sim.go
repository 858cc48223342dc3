// pattern: Imperative Shell

package transport

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"rttdash/internal/logframe"
	"rttdash/internal/logging"
)

// Sim periods.
const (
	simSamplePeriod    = 20 * time.Millisecond
	simUptimePeriod    = time.Second
	simTempPeriod      = 500 * time.Millisecond
	simHeartbeatPeriod = time.Second
	simOverrunPeriod   = 7 * time.Second

	// simMaxCatchUp bounds how many periods are generated at once after the
	// host stalls, like a target ring buffer overwriting unread data.
	simMaxCatchUp = 250
)

// SimFirmwareVersion is reported by the simulated boot message.
const SimFirmwareVersion = "0.4.2"

// Sim is a synthetic target. Up 0 is a text terminal echoing down 0, up 1
// carries x/y/z float32 triples and up 2 carries CBOR log frames matching
// logframe.DemoTable. Output is generated lazily on Read from the elapsed
// time of the injected clock.
type Sim struct {
	clock  func() time.Time
	logger *logging.ScopedLogger

	mu       sync.Mutex
	start    time.Time
	ticks    map[time.Duration]int64
	beats    uint32
	closed   bool
	terminal *simUp
	sensors  *simUp
	frames   *simUp
	console  *simDown
}

type simUp struct {
	sim    *Sim
	number int
	name   string
	queue  *pending
}

func (c *simUp) Number() int  { return c.number }
func (c *simUp) Name() string { return c.name }

func (c *simUp) Read(p []byte) (int, error) {
	if err := c.sim.advance(); err != nil {
		return 0, err
	}
	return c.queue.read(p)
}

type simDown struct {
	sim    *Sim
	number int
	name   string
}

func (c *simDown) Number() int  { return c.number }
func (c *simDown) Name() string { return c.name }

// Write echoes p back on the terminal channel.
func (c *simDown) Write(p []byte) (int, error) {
	c.sim.mu.Lock()
	defer c.sim.mu.Unlock()
	if c.sim.closed {
		return 0, ErrClosed
	}
	c.sim.terminal.queue.push(append([]byte("> "), p...))
	return len(p), nil
}

// OpenSim starts a simulated target. clock may be nil to use time.Now.
func OpenSim(clock func() time.Time, logger *logging.ScopedLogger) *Sim {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &Sim{
		clock:  clock,
		logger: logger,
		start:  clock(),
		ticks:  make(map[time.Duration]int64),
	}
	s.terminal = &simUp{sim: s, number: 0, name: "Terminal", queue: newPending(0)}
	s.sensors = &simUp{sim: s, number: 1, name: "Sensors", queue: newPending(0)}
	s.frames = &simUp{sim: s, number: 2, name: "Log", queue: newPending(0)}
	s.console = &simDown{sim: s, number: 0, name: "Terminal"}

	s.terminal.queue.push([]byte("rttdash simulated target\ntype into this tab to get an echo\n"))
	s.emitFrame(logframe.DemoBoot, 0, SimFirmwareVersion)

	logger.Info("simulated target started")
	return s
}

func (s *Sim) ID() string { return "sim" }

func (s *Sim) UpChannels() []UpChannel {
	return []UpChannel{s.terminal, s.sensors, s.frames}
}

func (s *Sim) DownChannels() []DownChannel {
	return []DownChannel{s.console}
}

func (s *Sim) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// due returns how many periods elapsed since the last call for period,
// capped at simMaxCatchUp.
func (s *Sim) due(elapsed, period time.Duration) int64 {
	total := int64(elapsed / period)
	n := total - s.ticks[period]
	s.ticks[period] = total
	return min(n, simMaxCatchUp)
}

// advance generates everything the target would have produced up to now.
func (s *Sim) advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	elapsed := s.clock().Sub(s.start)
	if elapsed < 0 {
		return nil
	}
	now := int64(elapsed / simSamplePeriod)

	for i := s.due(elapsed, simSamplePeriod); i > 0; i-- {
		t := float64(now-i+1) * simSamplePeriod.Seconds()
		s.sensors.queue.push(sampleTriple(t))
	}
	for i := s.due(elapsed, simUptimePeriod); i > 0; i-- {
		sec := int64(elapsed/simUptimePeriod) - i + 1
		s.terminal.queue.push([]byte(fmt.Sprintf("uptime %ds\n", sec)))
	}
	for i := s.due(elapsed, simTempPeriod); i > 0; i-- {
		at := time.Duration(int64(elapsed/simTempPeriod)-i+1) * simTempPeriod
		temp := 36.5 + 2.5*math.Sin(at.Seconds()/10)
		s.emitFrame(logframe.DemoTemperature, uint64(at.Milliseconds()), float32(temp))
	}
	for i := s.due(elapsed, simHeartbeatPeriod); i > 0; i-- {
		s.beats++
		at := time.Duration(int64(elapsed/simHeartbeatPeriod)-i+1) * simHeartbeatPeriod
		s.emitFrame(logframe.DemoHeartbeat, uint64(at.Milliseconds()), s.beats)
	}
	for i := s.due(elapsed, simOverrunPeriod); i > 0; i-- {
		at := time.Duration(int64(elapsed/simOverrunPeriod)-i+1) * simOverrunPeriod
		s.emitFrame(logframe.DemoOverrun, uint64(at.Milliseconds()), 3)
	}
	return nil
}

func (s *Sim) emitFrame(index, ts uint64, args ...any) {
	frame, err := logframe.Encode(logframe.EncodingCBOR, index, ts, args...)
	if err != nil {
		s.logger.Error("failed to encode simulated frame", "index", index, "error", err)
		return
	}
	s.frames.queue.push(frame)
}

// sampleTriple is the x/y/z reading at t seconds.
func sampleTriple(t float64) []byte {
	out := make([]byte, 0, 12)
	for _, v := range [3]float64{
		1500 * math.Sin(2*math.Pi*0.5*t),
		1000 * math.Cos(2*math.Pi*0.25*t),
		400*math.Sin(2*math.Pi*2*t) + 200,
	} {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(float32(v)))
	}
	return out
}
