package analysis

import (
	"errors"
	"math"

	"ridelog/internal/store"
	"ridelog/internal/stream"
)

// NPWindowSeconds is the rolling window used for normalized power
const NPWindowSeconds = 30

// ErrInsufficientData is returned when a stream is too short for a metric
var ErrInsufficientData = errors.New("insufficient data")

// NormalizedPower computes the 30 s rolling-average normalized power.
// Missing samples count as zero watts. Every full window contributes its
// average raised to the 4th power; the 4th root of their mean is rounded once.
func NormalizedPower(s stream.Stream) (float64, error) {
	if len(s) < NPWindowSeconds {
		return 0, ErrInsufficientData
	}

	values := s.ZeroFilled()

	var windowSum float64
	for _, v := range values[:NPWindowSeconds] {
		windowSum += v
	}

	var total float64
	windows := 0
	for i := NPWindowSeconds - 1; i < len(values); i++ {
		if i >= NPWindowSeconds {
			windowSum += values[i] - values[i-NPWindowSeconds]
		}
		avg := windowSum / NPWindowSeconds
		total += math.Pow(avg, 4)
		windows++
	}

	return math.Round(math.Pow(total/float64(windows), 0.25)), nil
}

// CriticalCurve returns, for every duration from 1 s to the stream length,
// the best average over any contiguous window of that duration, rounded to
// the nearest integer. Missing samples count as zero.
//
// Each duration is an O(n) sliding sum, so the curve costs O(n²); a
// five-hour ride is about 160M additions.
func CriticalCurve(s stream.Stream) []store.CurvePoint {
	n := len(s)
	if n == 0 {
		return nil
	}

	values := s.ZeroFilled()
	curve := make([]store.CurvePoint, n)

	for d := 1; d <= n; d++ {
		var sum float64
		for _, v := range values[:d] {
			sum += v
		}
		best := sum
		for i := d; i < n; i++ {
			sum += values[i] - values[i-d]
			if sum > best {
				best = sum
			}
		}
		curve[d-1] = store.CurvePoint{Duration: d, Value: int(math.Round(best / float64(d)))}
	}

	return curve
}

// BestForDuration returns the curve value at duration seconds.
// ok is false when the curve is shorter than duration.
func BestForDuration(curve []store.CurvePoint, duration int) (value int, ok bool) {
	if duration < 1 || duration > len(curve) {
		return 0, false
	}
	return curve[duration-1].Value, true
}
