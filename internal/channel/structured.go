// pattern: Functional Core

package channel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rttdash/internal/logframe"
)

// FrameAdapter feeds raw bytes to the frame decoder and turns frames into
// display lines. Bytes that do not yet form a whole frame stay in the arena.
type FrameAdapter struct {
	decoder logframe.Decoder
	table   *logframe.Table
	cwd     string
	arena   []byte
}

// NewFrameAdapter binds a decoder for table. Location paths are shown
// relative to the current working directory when they lie beneath it.
func NewFrameAdapter(table *logframe.Table) (*FrameAdapter, error) {
	dec, err := logframe.NewDecoder(table)
	if err != nil {
		return nil, err
	}
	cwd, _ := os.Getwd()
	return &FrameAdapter{decoder: dec, table: table, cwd: cwd}, nil
}

// Buffered returns the number of undecoded bytes in the arena.
func (a *FrameAdapter) Buffered() int {
	return len(a.arena)
}

// Feed appends chunk and decodes frames until the decoder needs more bytes.
// Each decoded frame produces one or two lines through emit. A malformed
// frame is reported and the arena dropped, since there is no way to find the
// next frame boundary.
func (a *FrameAdapter) Feed(chunk []byte, emit func(string), report func(error)) {
	a.arena = append(a.arena, chunk...)
	for len(a.arena) > 0 {
		frame, consumed, err := a.decoder.Decode(a.arena)
		if errors.Is(err, logframe.ErrInsufficient) {
			return
		}
		if consumed <= 0 {
			if err == nil {
				err = fmt.Errorf("%w: decoder consumed no bytes", logframe.ErrMalformed)
			}
			report(err)
			a.arena = a.arena[:0]
			return
		}

		a.arena = a.arena[:copy(a.arena, a.arena[consumed:])]
		if err != nil {
			report(err)
			continue
		}

		emit(frame.Display())
		if loc, ok := a.table.Location(frame.Index); ok {
			emit(fmt.Sprintf("└─ %s:%d", relativeTo(a.cwd, loc.File), loc.Line))
		}
	}
}

// relativeTo strips dir from an absolute path below it and returns any
// other path unchanged.
func relativeTo(dir, path string) string {
	if dir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func (d *Decoder) decodeStructured(chunk []byte) {
	d.frames.Feed(chunk, d.pushLine, func(err error) {
		d.logger.Error("error decoding structured log frame", "error", err)
	})
}
