// pattern: Functional Core

package channel

import (
	"strings"
	"unicode/utf8"
)

// timestampLayout prefixes text lines when timestamps are enabled.
const timestampLayout = "15:04:05.000"

// decodeText appends chunk to the text history.
//
// A line left unterminated by the previous chunk is popped and completed
// with the new bytes, so a line split across reads shows up once. The
// done flag follows whether this chunk ended in a newline. A segment is
// timestamped when it starts a fresh line: every segment after the first,
// and the first one only when the previous line was complete.
func (d *Decoder) decodeText(chunk []byte) {
	data := make([]byte, 0, len(d.leftover)+len(chunk))
	data = append(append(data, d.leftover...), chunk...)

	// Hold back a multibyte character cut off by the read boundary.
	complete := len(data) - incompleteRuneSuffix(data)
	d.leftover = append([]byte(nil), data[complete:]...)
	if complete == 0 {
		return
	}
	incoming := lossyString(data[:complete])

	wasDone := d.lastLineDone
	continuing := false
	if !wasDone {
		if last, ok := d.popLine(); ok {
			incoming = last + incoming
			continuing = true
		}
	}
	d.lastLineDone = strings.HasSuffix(incoming, "\n")

	var stamp string
	if d.showTimestamps {
		stamp = d.now().Format(timestampLayout)
	}

	for i, segment := range splitTerminator(incoming) {
		if d.showTimestamps && (wasDone || i > 0) {
			segment = stamp + " " + segment
		}
		if i == 0 && continuing {
			d.lines = append(d.lines, segment)
			continue
		}
		d.pushLine(segment)
	}
}

// splitTerminator splits s on newlines, dropping one trailing empty
// segment when s ends in a newline.
func splitTerminator(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// incompleteRuneSuffix returns how many trailing bytes of b form the start
// of a UTF-8 sequence that needs more bytes.
func incompleteRuneSuffix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax+1; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return 0
			}
			return len(b) - i
		}
	}
	return 0
}

// lossyString decodes b as UTF-8, replacing every byte that is not part of
// a valid sequence with U+FFFD.
func lossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b) + 8)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
		} else {
			sb.Write(b[:size])
		}
		b = b[size:]
	}
	return sb.String()
}
