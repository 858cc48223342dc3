// pattern: Functional Core

package transport

import "sync"

// defaultPendingLimit bounds bytes held for an up channel between polls.
const defaultPendingLimit = 1 << 20

// pending is a bounded byte queue filled by a background reader and drained
// by non-blocking Read calls. When full, the oldest bytes are discarded, the
// same way a target-side ring buffer overwrites unread data.
type pending struct {
	mu    sync.Mutex
	buf   []byte
	limit int
	err   error
}

func newPending(limit int) *pending {
	if limit <= 0 {
		limit = defaultPendingLimit
	}
	return &pending{limit: limit}
}

// push appends p and returns how many bytes were discarded to make room.
func (q *pending) push(p []byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.buf = append(q.buf, p...)
	over := len(q.buf) - q.limit
	if over <= 0 {
		return 0
	}
	q.buf = q.buf[:copy(q.buf, q.buf[over:])]
	return over
}

// fail records an error returned by the next read.
func (q *pending) fail(err error) {
	q.mu.Lock()
	q.err = err
	q.mu.Unlock()
}

func (q *pending) read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.buf) == 0 && q.err != nil {
		err := q.err
		q.err = nil
		return 0, err
	}
	n := copy(p, q.buf)
	q.buf = q.buf[:copy(q.buf, q.buf[n:])]
	return n, nil
}

func (q *pending) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
