// pattern: Imperative Shell

package channel

import (
	"errors"
	"time"

	"rttdash/internal/logframe"
	"rttdash/internal/logging"
	"rttdash/internal/transport"
)

// ReadChunk is the size of the scratch buffer used for each poll.
const ReadChunk = 1024

// unnamedChannel labels a channel when neither config nor target name it.
const unnamedChannel = "Unnamed channel"

var (
	// ErrNoEndpoint is returned when a decoder would have neither an up nor a down channel.
	ErrNoEndpoint = errors.New("channel has neither an up nor a down endpoint")
	// ErrNotSerializable is returned when writing a session log for a format that has none.
	ErrNotSerializable = errors.New("channel format cannot be written to a session log")
	// ErrMissingTable is returned when a structured channel is built without a frame table.
	ErrMissingTable = errors.New("structured channel requires a frame table")
)

// Options configure a Decoder.
type Options struct {
	Up     transport.UpChannel   // may be nil
	Down   transport.DownChannel // may be nil
	Name   string                // explicit display name; empty to use the endpoint's
	Format Format

	ShowTimestamps bool
	Table          *logframe.Table // required for FormatStructured

	Logger *logging.ScopedLogger
	Now    func() time.Time // defaults to time.Now
}

// Decoder owns one channel tab: its endpoints, everything decoded from the
// up channel so far, the pending operator input and the scroll position.
//
// A Decoder is not safe for concurrent use; the dashboard polls and mutates
// every decoder from a single goroutine.
type Decoder struct {
	up     transport.UpChannel
	down   transport.DownChannel
	name   string
	format Format

	showTimestamps bool
	now            func() time.Time
	logger         *logging.ScopedLogger

	lines        []string
	samples      []float32
	leftover     []byte
	lastLineDone bool
	frames       *FrameAdapter

	input        []rune
	scrollOffset int

	scratch [ReadChunk]byte
	wrap    wrapCache
}

// NewDecoder validates opts and returns an empty decoder.
func NewDecoder(opts Options) (*Decoder, error) {
	if opts.Up == nil && opts.Down == nil {
		return nil, ErrNoEndpoint
	}
	var frames *FrameAdapter
	if opts.Format == FormatStructured {
		if opts.Table == nil {
			return nil, ErrMissingTable
		}
		var err error
		if frames, err = NewFrameAdapter(opts.Table); err != nil {
			return nil, err
		}
	}

	d := &Decoder{
		up:             opts.Up,
		down:           opts.Down,
		name:           resolveName(opts),
		format:         opts.Format,
		showTimestamps: opts.ShowTimestamps,
		now:            opts.Now,
		logger:         opts.Logger,
		lastLineDone:   true,
		frames:         frames,
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.logger == nil {
		d.logger = logging.NopLogger()
	}
	return d, nil
}

func resolveName(opts Options) string {
	if opts.Name != "" {
		return opts.Name
	}
	if opts.Up != nil && opts.Up.Name() != "" {
		return opts.Up.Name()
	}
	if opts.Down != nil && opts.Down.Name() != "" {
		return opts.Down.Name()
	}
	return unnamedChannel
}

// Name is the tab label.
func (d *Decoder) Name() string { return d.name }

// Format is the decoder's data format.
func (d *Decoder) Format() Format { return d.format }

// HasDown reports whether operator input can be sent to the target.
func (d *Decoder) HasDown() bool { return d.down != nil }

// Lines returns the decoded display lines. The slice must not be modified.
func (d *Decoder) Lines() []string { return d.lines }

// Samples returns the decoded samples. The slice must not be modified.
func (d *Decoder) Samples() []float32 { return d.samples }

// Leftover returns the bytes held back from the last decode pass.
func (d *Decoder) Leftover() []byte { return d.leftover }

// LastLineDone reports whether the newest text line was newline-terminated.
func (d *Decoder) LastLineDone() bool { return d.lastLineDone }

// ScrollOffset is the number of visual rows hidden below the viewport.
func (d *Decoder) ScrollOffset() int { return d.scrollOffset }

// Poll reads whatever the up channel has pending and decodes it. Transport
// errors are reported and leave the decoder untouched.
func (d *Decoder) Poll() {
	if d.up == nil {
		return
	}
	n, err := d.up.Read(d.scratch[:])
	if err != nil {
		d.logger.Error("error reading from up channel", "channel", d.up.Number(), "error", err)
		return
	}
	if n == 0 {
		return
	}
	d.Feed(d.scratch[:n])
}

// Feed decodes chunk as if it had just been read from the up channel.
func (d *Decoder) Feed(chunk []byte) {
	switch d.format {
	case FormatText:
		d.decodeText(chunk)
	case FormatBinary:
		d.decodeBinary(chunk)
	case FormatStructured:
		d.decodeStructured(chunk)
	}
}

// pushLine appends a display line and keeps the viewport anchored when the
// operator has scrolled away from the newest line.
func (d *Decoder) pushLine(line string) {
	d.lines = append(d.lines, line)
	if d.scrollOffset != 0 {
		d.scrollOffset++
	}
}

// popLine removes the newest line so it can be re-pushed with more content.
// The scroll offset is left alone: the re-push is not new history.
func (d *Decoder) popLine() (string, bool) {
	if len(d.lines) == 0 {
		return "", false
	}
	last := d.lines[len(d.lines)-1]
	d.lines = d.lines[:len(d.lines)-1]
	d.wrap.invalidateFrom(len(d.lines))
	return last, true
}

// Input returns the pending operator input line.
func (d *Decoder) Input() string { return string(d.input) }

// TypeRune appends r to the pending input line.
func (d *Decoder) TypeRune(r rune) { d.input = append(d.input, r) }

// Backspace removes the last rune of the pending input line.
func (d *Decoder) Backspace() {
	if len(d.input) > 0 {
		d.input = d.input[:len(d.input)-1]
	}
}

// SubmitInput sends the pending input plus a newline to the down channel and
// clears it. A write failure is reported; the input is cleared regardless.
// Without a down channel this is a no-op.
func (d *Decoder) SubmitInput() {
	if d.down == nil {
		return
	}
	line := string(d.input) + "\n"
	d.input = d.input[:0]
	if _, err := d.down.Write([]byte(line)); err != nil {
		d.logger.Error("error writing to down channel", "channel", d.down.Number(), "error", err)
	}
}

// Scroll moves the viewport delta rows toward older content (delta > 0) or
// newer content (delta < 0). The offset never drops below zero; the upper
// bound is applied by VisibleLines.
func (d *Decoder) Scroll(delta int) {
	d.scrollOffset = max(0, d.scrollOffset+delta)
}

// ScrollUp shows one older row.
func (d *Decoder) ScrollUp() { d.Scroll(1) }

// ScrollDown shows one newer row.
func (d *Decoder) ScrollDown() { d.Scroll(-1) }

// ScrollToNewest resets the viewport to follow incoming lines.
func (d *Decoder) ScrollToNewest() { d.scrollOffset = 0 }

// VisibleLines wraps every display line to width, clamps the scroll offset
// for a viewport of height rows and returns the rows to paint, oldest first.
func (d *Decoder) VisibleLines(width, height int) []string {
	rows := d.wrap.wrapped(d.lines, width)
	d.scrollOffset = ClampOffset(len(rows), height, d.scrollOffset)
	lo, hi := Window(len(rows), height, d.scrollOffset)
	return rows[lo:hi]
}
