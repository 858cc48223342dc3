// pattern: Functional Core

package channel

import (
	"fmt"
	"strings"
)

// Format selects how a channel's bytes are decoded. It is fixed for the
// lifetime of a Decoder.
type Format int

const (
	// FormatText is newline-delimited UTF-8.
	FormatText Format = iota
	// FormatBinary is little-endian float32 samples, grouped in triples.
	FormatBinary
	// FormatStructured is structured log frames decoded against a table.
	FormatStructured
)

// ParseFormat accepts the config spellings of a format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "string":
		return FormatText, nil
	case "binary", "binaryle", "binary_le":
		return FormatBinary, nil
	case "structured", "defmt", "log":
		return FormatStructured, nil
	default:
		return FormatText, fmt.Errorf("unknown channel format %q", s)
	}
}

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatBinary:
		return "binary"
	case FormatStructured:
		return "structured"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension is the session log file extension for the format. Structured
// channels have none because decoded frames cannot be re-encoded faithfully.
func (f Format) Extension() (string, bool) {
	switch f {
	case FormatText:
		return "txt", true
	case FormatBinary:
		return "dat", true
	default:
		return "", false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so config files can name formats.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
