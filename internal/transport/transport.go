// Package transport defines the byte channels a target exposes to the
// dashboard and provides the targets rttdash can attach to.
package transport

import (
	"errors"
	"fmt"
	"sort"
)

// UpChannel is a target-to-host byte stream.
//
// Read must not block: it copies whatever is pending into p and returns 0
// with a nil error when nothing is available.
type UpChannel interface {
	Number() int
	Name() string
	Read(p []byte) (int, error)
}

// DownChannel is a host-to-target byte stream.
type DownChannel interface {
	Number() int
	Name() string
	Write(p []byte) (int, error)
}

// Target is an attached device exposing up and down channels.
type Target interface {
	// ID identifies the physical target; two dashboards must not share one.
	ID() string
	UpChannels() []UpChannel
	DownChannels() []DownChannel
	Close() error
}

// Kinds accepted by Open.
const (
	KindSim  = "sim"
	KindDir  = "dir"
	KindExec = "exec"
)

// ErrClosed is returned by channel operations after the target is closed.
var ErrClosed = errors.New("transport: target closed")

// Describe renders a one-line summary per channel, ordered by direction and number.
func Describe(t Target) []string {
	ups := t.UpChannels()
	downs := t.DownChannels()
	sort.Slice(ups, func(i, j int) bool { return ups[i].Number() < ups[j].Number() })
	sort.Slice(downs, func(i, j int) bool { return downs[i].Number() < downs[j].Number() })

	lines := make([]string, 0, len(ups)+len(downs))
	for _, c := range ups {
		lines = append(lines, fmt.Sprintf("up   %2d  %s", c.Number(), displayName(c.Name())))
	}
	for _, c := range downs {
		lines = append(lines, fmt.Sprintf("down %2d  %s", c.Number(), displayName(c.Name())))
	}
	return lines
}

func displayName(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return name
}
