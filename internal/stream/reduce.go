package stream

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean averages the present samples. ok is false when none are present.
func (s Stream) Mean() (mean float64, ok bool) {
	values := s.Present()
	if len(values) == 0 {
		return 0, false
	}
	return stat.Mean(values, nil), true
}

// Max returns the largest present sample. ok is false when none are present.
func (s Stream) Max() (max float64, ok bool) {
	values := s.Present()
	if len(values) == 0 {
		return 0, false
	}
	return floats.Max(values), true
}

// Count returns the number of present samples
func (s Stream) Count() int {
	n := 0
	for _, v := range s {
		if v.IsValue() {
			n++
		}
	}
	return n
}
