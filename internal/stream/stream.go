// Package stream holds per-second activity sample series where any second may
// carry no reading.
package stream

import (
	"github.com/aarondl/opt/null"
	"github.com/samber/lo"
)

// Sample is one reading; the zero value is a missing reading.
type Sample = null.Val[float64]

// Stream is a series of samples indexed by elapsed seconds
type Stream []Sample

// Names of the streams a ride can carry
const (
	Power     = "power"
	HeartRate = "heart_rate"
	Cadence   = "cadence"
	Speed     = "speed"
	Elevation = "elevation"
	Grade     = "grade"
	Distance  = "distance"
)

// Names lists the scalar stream names in storage order
var Names = []string{Power, HeartRate, Cadence, Speed, Elevation, Grade, Distance}

// Of returns a sample holding v
func Of(v float64) Sample {
	return null.From(v)
}

// Null returns a missing sample
func Null() Sample {
	return null.Val[float64]{}
}

// FromValues builds a stream where every sample is present
func FromValues(values ...float64) Stream {
	return lo.Map(values, func(v float64, _ int) Sample { return null.From(v) })
}

// FromPtrs builds a stream from pointer readings, nil meaning missing
func FromPtrs(values []*float64) Stream {
	return lo.Map(values, func(v *float64, _ int) Sample { return null.FromPtr(v) })
}

// Ptrs converts the stream back to pointer readings
func (s Stream) Ptrs() []*float64 {
	return lo.Map(s, func(v Sample, _ int) *float64 { return v.Ptr() })
}

// HasSignal reports whether at least one sample is present and non-zero.
// A stream of only zeros and gaps carries no usable data.
func (s Stream) HasSignal() bool {
	return lo.ContainsBy(s, func(v Sample) bool {
		f, ok := v.Get()
		return ok && f != 0
	})
}

// Present returns the present values in order
func (s Stream) Present() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if f, ok := v.Get(); ok {
			out = append(out, f)
		}
	}
	return out
}

// ZeroFilled returns the values with missing samples read as 0
func (s Stream) ZeroFilled() []float64 {
	return lo.Map(s, func(v Sample, _ int) float64 { return v.GetOr(0) })
}

// Slice returns the samples in [start, end] inclusive, clamped to the stream.
func (s Stream) Slice(start, end int) Stream {
	if s == nil {
		return nil
	}
	if start < 0 {
		start = 0
	}
	if end >= len(s) {
		end = len(s) - 1
	}
	if start > end {
		return Stream{}
	}
	out := make(Stream, end-start+1)
	copy(out, s[start:end+1])
	return out
}

// At returns the sample at i, missing when i is out of range
func (s Stream) At(i int) Sample {
	if i < 0 || i >= len(s) {
		return Null()
	}
	return s[i]
}
