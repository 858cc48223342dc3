// pattern: Functional Core

package dashboard

import (
	"rttdash/internal/channel"
	"rttdash/internal/config"
	"rttdash/internal/transport"
)

// Pairing is one tab to build: the endpoints it owns and how to decode them.
type Pairing struct {
	Up     transport.UpChannel   // nil for a write-only tab
	Down   transport.DownChannel // nil for a read-only tab
	Name   string
	Format channel.Format
}

// Pair assigns discovered endpoints to tabs.
//
// With configured entries, each entry pulls the up and down endpoints with
// its channel numbers, in config order. An entry that resolves to neither
// endpoint produces no tab; its index is returned in skipped.
//
// Without configuration every up endpoint becomes a text tab, paired with
// the down endpoint of the same number when there is one, and every
// remaining down endpoint becomes a write-only tab.
//
// Each endpoint is used by at most one tab.
func Pair(ups []transport.UpChannel, downs []transport.DownChannel, configured []config.ChannelConfig) (pairs []Pairing, skipped []int, err error) {
	ups = append([]transport.UpChannel(nil), ups...)
	downs = append([]transport.DownChannel(nil), downs...)

	if len(configured) > 0 {
		for i, entry := range configured {
			format, err := channel.ParseFormat(entry.Format)
			if err != nil {
				return nil, nil, err
			}
			p := Pairing{Name: entry.Name, Format: format}
			if entry.Up != nil {
				p.Up, ups = pull(ups, *entry.Up)
			}
			if entry.Down != nil {
				p.Down, downs = pull(downs, *entry.Down)
			}
			if p.Up == nil && p.Down == nil {
				skipped = append(skipped, i)
				continue
			}
			pairs = append(pairs, p)
		}
	} else {
		for _, up := range ups {
			var down transport.DownChannel
			down, downs = pull(downs, up.Number())
			pairs = append(pairs, Pairing{Up: up, Down: down, Format: channel.FormatText})
		}
		for _, down := range downs {
			pairs = append(pairs, Pairing{Down: down, Format: channel.FormatText})
		}
	}

	if len(pairs) == 0 {
		return nil, skipped, ErrNoChannels
	}
	return pairs, skipped, nil
}

type numbered interface{ Number() int }

// pull removes and returns the first endpoint numbered n.
func pull[T numbered](list []T, n int) (T, []T) {
	var zero T
	for i, c := range list {
		if c.Number() == n {
			return c, append(list[:i], list[i+1:]...)
		}
	}
	return zero, list
}
