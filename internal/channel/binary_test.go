package channel

import (
	"encoding/binary"
	"math"
	"slices"
	"testing"

	"rttdash/internal/transport"
)

func leFloats(values ...float32) []byte {
	out := make([]byte, 0, len(values)*4)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func newBinaryDecoder(t *testing.T) *Decoder {
	t.Helper()
	d, err := NewDecoder(Options{Up: transport.NewMemoryUp(1, ""), Format: FormatBinary})
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	return d
}

func TestDecodeBinary_CarriesPartialSample(t *testing.T) {
	d := newBinaryDecoder(t)
	data := leFloats(1.5, -2)

	d.Feed(data[:6])
	if !slices.Equal(d.Samples(), []float32{1.5}) {
		t.Fatalf("Samples() = %v after 6 bytes", d.Samples())
	}
	if len(d.Leftover()) != 2 {
		t.Fatalf("len(Leftover()) = %d, want 2", len(d.Leftover()))
	}

	d.Feed(data[6:])
	if !slices.Equal(d.Samples(), []float32{1.5, -2}) {
		t.Errorf("Samples() = %v", d.Samples())
	}
	if len(d.Leftover()) != 0 {
		t.Errorf("len(Leftover()) = %d, want 0", len(d.Leftover()))
	}
}

func TestDecodeBinary_ByteWise(t *testing.T) {
	d := newBinaryDecoder(t)
	values := []float32{0, 1, -1, 1999.5, float32(math.Inf(1))}
	for _, b := range leFloats(values...) {
		d.Feed([]byte{b})
		if len(d.Leftover()) >= 4 {
			t.Fatalf("len(Leftover()) = %d", len(d.Leftover()))
		}
	}
	if !slices.Equal(d.Samples(), values) {
		t.Errorf("Samples() = %v, want %v", d.Samples(), values)
	}
}

func TestSampleSeries(t *testing.T) {
	tests := []struct {
		name      string
		samples   []float32
		maxPoints int
		want      [3][]float64
	}{
		{
			name:      "empty",
			maxPoints: 4,
		},
		{
			name:      "partial triple",
			samples:   []float32{1, 2, 3, 4},
			maxPoints: 4,
			want:      [3][]float64{{1, 4}, {2}, {3}},
		},
		{
			name:      "window aligned to triples",
			samples:   []float32{0, 1, 2, 3, 4, 5, 6},
			maxPoints: 2,
			want:      [3][]float64{{3, 6}, {4}, {5}},
		},
		{
			name:      "exact window",
			samples:   []float32{0, 1, 2, 3, 4, 5, 6, 7, 8},
			maxPoints: 2,
			want:      [3][]float64{{3, 6}, {4, 7}, {5, 8}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SampleSeries(tt.samples, tt.maxPoints)
			for s := range 3 {
				ys := make([]float64, 0, len(got[s]))
				for i, p := range got[s] {
					if p.X != float64(i) {
						t.Errorf("series %d point %d X = %v", s, i, p.X)
					}
					ys = append(ys, p.Y)
				}
				if !slices.Equal(ys, tt.want[s]) {
					t.Errorf("series %d = %v, want %v", s, ys, tt.want[s])
				}
			}
		})
	}
}
