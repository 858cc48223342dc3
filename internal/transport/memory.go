// pattern: Imperative Shell

package transport

import "sync"

// MemoryUp is an in-process up channel. Bytes given to Feed are returned by
// later Read calls; a pending error set with FailNext is returned once.
type MemoryUp struct {
	number int
	name   string

	mu      sync.Mutex
	pending []byte
	failErr error
}

// NewMemoryUp creates an empty in-memory up channel.
func NewMemoryUp(number int, name string) *MemoryUp {
	return &MemoryUp{number: number, name: name}
}

func (c *MemoryUp) Number() int  { return c.number }
func (c *MemoryUp) Name() string { return c.name }

// Feed queues bytes for the next Read.
func (c *MemoryUp) Feed(p []byte) {
	c.mu.Lock()
	c.pending = append(c.pending, p...)
	c.mu.Unlock()
}

// FailNext makes the next Read return err without consuming data.
func (c *MemoryUp) FailNext(err error) {
	c.mu.Lock()
	c.failErr = err
	c.mu.Unlock()
}

// Pending returns the number of queued bytes.
func (c *MemoryUp) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *MemoryUp) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failErr != nil {
		err := c.failErr
		c.failErr = nil
		return 0, err
	}
	n := copy(p, c.pending)
	c.pending = c.pending[:copy(c.pending, c.pending[n:])]
	return n, nil
}

// MemoryDown is an in-process down channel recording every write.
type MemoryDown struct {
	number int
	name   string

	mu      sync.Mutex
	written []byte
	failErr error
}

// NewMemoryDown creates an in-memory down channel.
func NewMemoryDown(number int, name string) *MemoryDown {
	return &MemoryDown{number: number, name: name}
}

func (c *MemoryDown) Number() int  { return c.number }
func (c *MemoryDown) Name() string { return c.name }

// FailNext makes the next Write return err.
func (c *MemoryDown) FailNext(err error) {
	c.mu.Lock()
	c.failErr = err
	c.mu.Unlock()
}

// Written returns a copy of everything written so far.
func (c *MemoryDown) Written() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.written...)
}

func (c *MemoryDown) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failErr != nil {
		err := c.failErr
		c.failErr = nil
		return 0, err
	}
	c.written = append(c.written, p...)
	return len(p), nil
}

// Memory is a Target assembled from in-memory channels.
type Memory struct {
	Ups   []*MemoryUp
	Downs []*MemoryDown
}

func (m *Memory) ID() string { return "memory" }

func (m *Memory) UpChannels() []UpChannel {
	out := make([]UpChannel, len(m.Ups))
	for i, c := range m.Ups {
		out[i] = c
	}
	return out
}

func (m *Memory) DownChannels() []DownChannel {
	out := make([]DownChannel, len(m.Downs))
	for i, c := range m.Downs {
		out[i] = c
	}
	return out
}

func (m *Memory) Close() error { return nil }
