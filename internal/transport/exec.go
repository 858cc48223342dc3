// pattern: Imperative Shell

package transport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"

	"rttdash/internal/logging"
)

// stopGrace is how long Close waits after SIGTERM before killing the child.
const stopGrace = 2 * time.Second

// Exec is a target backed by a child process attached to a PTY, such as a
// vendor RTT client. The process output is up channel 0 and its input is
// down channel 0.
type Exec struct {
	argv   []string
	logger *logging.ScopedLogger

	cmd  *exec.Cmd
	ptmx *os.File
	up   *ptyUp
	down *ptyDown

	closeOnce sync.Once
	exited    chan struct{}
}

type ptyUp struct {
	name  string
	queue *pending
}

func (c *ptyUp) Number() int                { return 0 }
func (c *ptyUp) Name() string               { return c.name }
func (c *ptyUp) Read(p []byte) (int, error) { return c.queue.read(p) }

type ptyDown struct {
	name string
	ptmx *os.File
}

func (c *ptyDown) Number() int  { return 0 }
func (c *ptyDown) Name() string { return c.name }

func (c *ptyDown) Write(p []byte) (int, error) {
	return c.ptmx.Write(p)
}

// OpenExec starts argv under a PTY and begins collecting its output.
func OpenExec(ctx context.Context, argv []string, logger *logging.ScopedLogger) (*Exec, error) {
	if len(argv) == 0 {
		return nil, errors.New("exec transport: empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), "TERM=dumb")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: 24, Cols: 200})
	if err != nil {
		return nil, fmt.Errorf("exec transport: start %s: %w", argv[0], err)
	}

	name := filepath.Base(argv[0])
	e := &Exec{
		argv:   argv,
		logger: logger,
		cmd:    cmd,
		ptmx:   ptmx,
		up:     &ptyUp{name: name, queue: newPending(0)},
		down:   &ptyDown{name: name, ptmx: ptmx},
		exited: make(chan struct{}),
	}
	go e.pump()

	logger.Info("child process started", "command", argv, "pid", cmd.Process.Pid)
	return e, nil
}

// pump copies PTY output into the up channel until the PTY closes.
func (e *Exec) pump() {
	defer close(e.exited)

	buf := make([]byte, 4096)
	for {
		n, err := e.ptmx.Read(buf)
		if n > 0 {
			if dropped := e.up.queue.push(buf[:n]); dropped > 0 {
				e.logger.Warn("up channel overflow, dropped bytes", "channel", 0, "bytes", dropped)
			}
		}
		if err != nil {
			// Linux reports EIO once the child side of the PTY is gone.
			if !errors.Is(err, os.ErrClosed) && !errors.Is(err, syscall.EIO) {
				e.up.queue.fail(err)
			}
			e.logger.Info("child process output closed")
			return
		}
	}
}

func (e *Exec) ID() string { return "exec:" + e.argv[0] }

func (e *Exec) UpChannels() []UpChannel { return []UpChannel{e.up} }

func (e *Exec) DownChannels() []DownChannel { return []DownChannel{e.down} }

// Close terminates the child: SIGTERM first, SIGKILL after stopGrace.
func (e *Exec) Close() error {
	var err error
	e.closeOnce.Do(func() {
		if e.cmd.Process != nil {
			_ = e.cmd.Process.Signal(syscall.SIGTERM)
			waited := make(chan error, 1)
			go func() { waited <- e.cmd.Wait() }()
			select {
			case <-waited:
			case <-time.After(stopGrace):
				_ = e.cmd.Process.Kill()
				<-waited
			}
		}
		err = e.ptmx.Close()
		<-e.exited
	})
	return err
}
