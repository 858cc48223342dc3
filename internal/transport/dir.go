// pattern: Imperative Shell

package transport

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"rttdash/internal/logging"
)

// channelFilePattern matches "up3", "up0_Terminal", "down1_Shell".
var channelFilePattern = regexp.MustCompile(`^(up|down)(\d+)(?:_(.+))?$`)

// pollSafeguard rescans up files in case a filesystem drops notifications.
const pollSafeguard = 500 * time.Millisecond

// Dir is a target whose channels are files in one directory, as written by
// RTT loggers that dump each up buffer to its own file. Up files are tailed;
// down files are appended to.
type Dir struct {
	path    string
	logger  *logging.ScopedLogger
	watcher *fsnotify.Watcher

	ups   []*fileUp
	downs []*fileDown

	cancel context.CancelFunc
	done   chan struct{}
}

// fileUp tails one up file. Reads run on the watch goroutine and land in
// the pending queue drained by Read.
type fileUp struct {
	number int
	name   string
	path   string
	queue  *pending

	mu     sync.Mutex
	file   *os.File
	offset int64
}

func (c *fileUp) Number() int                { return c.number }
func (c *fileUp) Name() string               { return c.name }
func (c *fileUp) Read(p []byte) (int, error) { return c.queue.read(p) }

type fileDown struct {
	number int
	name   string
	path   string

	mu   sync.Mutex
	file *os.File
}

func (c *fileDown) Number() int  { return c.number }
func (c *fileDown) Name() string { return c.name }

func (c *fileDown) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		f, err := os.OpenFile(c.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			return 0, fmt.Errorf("open down channel %d: %w", c.number, err)
		}
		c.file = f
	}
	return c.file.Write(p)
}

func (c *fileDown) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file != nil {
		_ = c.file.Close()
		c.file = nil
	}
}

// OpenDir scans path for channel files and starts tailing the up files.
// Existing up content is skipped; files created later are read from the start.
func OpenDir(ctx context.Context, path string, logger *logging.ScopedLogger) (*Dir, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read channel directory: %w", err)
	}

	d := &Dir{path: path, logger: logger, done: make(chan struct{})}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := channelFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		number, _ := strconv.Atoi(m[2])
		full := filepath.Join(path, entry.Name())
		if m[1] == "up" {
			d.ups = append(d.ups, &fileUp{number: number, name: m[3], path: full, queue: newPending(0)})
		} else {
			d.downs = append(d.downs, &fileDown{number: number, name: m[3], path: full})
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}
	d.watcher = watcher

	for _, up := range d.ups {
		if err := up.open(true); err != nil {
			logger.Warn("up channel file not readable yet", "channel", up.number, "error", err)
		}
	}

	ctx, d.cancel = context.WithCancel(ctx)
	go d.watch(ctx)

	logger.Info("attached to channel directory", "path", path, "up", len(d.ups), "down", len(d.downs))
	return d, nil
}

func (d *Dir) ID() string { return "dir:" + d.path }

func (d *Dir) UpChannels() []UpChannel {
	out := make([]UpChannel, len(d.ups))
	for i, c := range d.ups {
		out[i] = c
	}
	return out
}

func (d *Dir) DownChannels() []DownChannel {
	out := make([]DownChannel, len(d.downs))
	for i, c := range d.downs {
		out[i] = c
	}
	return out
}

// Close stops tailing and releases every file handle.
func (d *Dir) Close() error {
	d.cancel()
	<-d.done
	for _, up := range d.ups {
		up.close()
	}
	for _, down := range d.downs {
		down.close()
	}
	return d.watcher.Close()
}

func (d *Dir) watch(ctx context.Context) {
	defer close(d.done)

	ticker := time.NewTicker(pollSafeguard)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			up := d.upFor(event.Name)
			if up == nil {
				continue
			}
			if event.Has(fsnotify.Create) {
				_ = up.open(false)
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				d.drain(up)
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				up.close()
			}

		case <-ticker.C:
			for _, up := range d.ups {
				_ = up.open(false)
				d.drain(up)
			}

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (d *Dir) upFor(name string) *fileUp {
	name = filepath.Clean(name)
	for _, up := range d.ups {
		if filepath.Clean(up.path) == name {
			return up
		}
	}
	return nil
}

func (d *Dir) drain(up *fileUp) {
	dropped, err := up.readNew()
	if dropped > 0 {
		d.logger.Warn("up channel overflow, dropped bytes", "channel", up.number, "bytes", dropped)
	}
	if err != nil {
		up.queue.fail(err)
	}
}

// open opens the file if it is not open yet. seekToEnd skips existing content.
func (c *fileUp) open(seekToEnd bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file != nil {
		return nil
	}
	f, err := os.Open(c.path)
	if err != nil {
		return err
	}
	var offset int64
	if seekToEnd {
		if offset, err = f.Seek(0, io.SeekEnd); err != nil {
			_ = f.Close()
			return err
		}
	}
	c.file = f
	c.offset = offset
	return nil
}

func (c *fileUp) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file != nil {
		_ = c.file.Close()
		c.file = nil
		c.offset = 0
	}
}

// readNew copies everything appended since the last read into the queue
// and reports how many queued bytes were discarded for lack of room.
func (c *fileUp) readNew() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return 0, nil
	}
	if _, err := c.file.Seek(c.offset, io.SeekStart); err != nil {
		return 0, err
	}

	dropped := 0
	buf := make([]byte, 4096)
	for {
		n, err := c.file.Read(buf)
		if n > 0 {
			dropped += c.queue.push(buf[:n])
			c.offset += int64(n)
		}
		if err == io.EOF {
			return dropped, nil
		}
		if err != nil {
			return dropped, err
		}
	}
}
