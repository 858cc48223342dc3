// pattern: Imperative Shell

package channel

import (
	"bufio"
	"encoding/binary"
	"io"
)

// Serializable reports whether WriteLog supports the decoder's format.
func (d *Decoder) Serializable() bool {
	_, ok := d.format.Extension()
	return ok
}

// WriteLog writes everything decoded so far: text lines newline-terminated,
// binary samples as raw little-endian float32. Structured channels return
// ErrNotSerializable.
func (d *Decoder) WriteLog(w io.Writer) error {
	switch d.format {
	case FormatText:
		bw := bufio.NewWriter(w)
		for _, line := range d.lines {
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		return bw.Flush()
	case FormatBinary:
		bw := bufio.NewWriter(w)
		if err := binary.Write(bw, binary.LittleEndian, d.samples); err != nil {
			return err
		}
		return bw.Flush()
	default:
		return ErrNotSerializable
	}
}
