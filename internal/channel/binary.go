// pattern: Functional Core

package channel

import (
	"encoding/binary"
	"math"
)

// sampleSize is the width of one little-endian float32 sample.
const sampleSize = 4

// decodeBinary appends every complete sample in leftover+chunk and keeps
// the remaining 0-3 bytes for the next chunk.
func (d *Decoder) decodeBinary(chunk []byte) {
	data := append(d.leftover, chunk...)
	whole := len(data) / sampleSize * sampleSize
	for i := 0; i < whole; i += sampleSize {
		bits := binary.LittleEndian.Uint32(data[i : i+sampleSize])
		d.samples = append(d.samples, math.Float32frombits(bits))
	}
	d.leftover = append(d.leftover[:0], data[whole:]...)
}

// Chart geometry for binary channels.
const (
	ChartBound  = 2000.0 // y axis spans [-ChartBound, ChartBound]
	ChartPoints = 128    // points per series
	seriesCount = 3
)

// Point is one (index, value) pair of a chart series.
type Point struct {
	X, Y float64
}

// Series returns the chart series for the decoder's samples.
func (d *Decoder) Series() [seriesCount][]Point {
	return SampleSeries(d.samples, ChartPoints)
}

// SampleSeries splits the newest samples into x/y/z series of at most
// maxPoints points each. Samples are grouped in triples counted from the
// first sample received, so a trailing partial triple only feeds the
// series it reaches.
func SampleSeries(samples []float32, maxPoints int) [seriesCount][]Point {
	var out [seriesCount][]Point
	start := max(0, len(samples)-maxPoints*seriesCount)
	if rem := start % seriesCount; rem != 0 {
		start += seriesCount - rem
	}
	for i, v := range samples[start:] {
		s := i % seriesCount
		out[s] = append(out[s], Point{X: float64(len(out[s])), Y: float64(v)})
	}
	return out
}
