// pattern: Functional Core

package logframe

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrInsufficient means the buffer ends inside a frame; retry with more bytes.
	ErrInsufficient = errors.New("logframe: insufficient data")
	// ErrMalformed means the buffer does not start with a decodable frame.
	ErrMalformed = errors.New("logframe: malformed frame")
	// ErrUnknownIndex means a complete frame referenced an index missing
	// from the table. The frame's bytes are still reported as consumed.
	ErrUnknownIndex = errors.New("logframe: unknown format index")
)

// wireFrame is the encoded form of a frame, a map with short keys.
type wireFrame struct {
	Index     uint64 `cbor:"i" msgpack:"i"`
	Timestamp uint64 `cbor:"t,omitempty" msgpack:"t,omitempty"`
	Args      []any  `cbor:"a,omitempty" msgpack:"a,omitempty"`
}

// Decoder decodes one frame from the start of a byte buffer.
//
// On success it returns the frame and the number of bytes it occupied.
// ErrInsufficient is returned when more bytes are needed.
type Decoder interface {
	Decode(data []byte) (Frame, int, error)
}

// NewDecoder returns the decoder for the table's encoding.
func NewDecoder(t *Table) (Decoder, error) {
	switch t.Encoding {
	case EncodingCBOR, "":
		dm, err := cbor.DecOptions{}.DecMode()
		if err != nil {
			return nil, err
		}
		return &cborDecoder{table: t, dm: dm}, nil
	case EncodingMsgpack:
		return &msgpackDecoder{table: t}, nil
	default:
		return nil, fmt.Errorf("unknown frame encoding %q", t.Encoding)
	}
}

type cborDecoder struct {
	table *Table
	dm    cbor.DecMode
}

func (d *cborDecoder) Decode(data []byte) (Frame, int, error) {
	var wf wireFrame
	rest, err := d.dm.UnmarshalFirst(data, &wf)
	if err != nil {
		return Frame{}, 0, classify(err)
	}
	return resolve(d.table, wf, len(data)-len(rest))
}

type msgpackDecoder struct {
	table *Table
	r     bytes.Reader
	dec   *msgpack.Decoder
}

func (d *msgpackDecoder) Decode(data []byte) (Frame, int, error) {
	d.r.Reset(data)
	if d.dec == nil {
		d.dec = msgpack.NewDecoder(&d.r)
	} else {
		d.dec.Reset(&d.r)
	}

	var wf wireFrame
	if err := d.dec.Decode(&wf); err != nil {
		return Frame{}, 0, classify(err)
	}
	return resolve(d.table, wf, len(data)-d.r.Len())
}

func classify(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrInsufficient
	}
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

func resolve(t *Table, wf wireFrame, consumed int) (Frame, int, error) {
	entry, ok := t.Entry(wf.Index)
	if !ok {
		return Frame{}, consumed, fmt.Errorf("%w %d", ErrUnknownIndex, wf.Index)
	}
	return Frame{
		Index:     wf.Index,
		Timestamp: wf.Timestamp,
		Level:     entry.Level,
		Message:   render(entry.Format, wf.Args),
	}, consumed, nil
}

// Encode produces the wire form of one frame. Used by the simulated target
// and by tests.
func Encode(enc Encoding, index, timestamp uint64, args ...any) ([]byte, error) {
	wf := wireFrame{Index: index, Timestamp: timestamp, Args: args}
	switch enc {
	case EncodingCBOR, "":
		return cbor.Marshal(wf)
	case EncodingMsgpack:
		return msgpack.Marshal(wf)
	default:
		return nil, fmt.Errorf("unknown frame encoding %q", enc)
	}
}
