package segment

import (
	"math"

	"ridelog/internal/store"
	"ridelog/internal/stream"
)

// BuildResults turns confirmed matches into result records. Power, heart
// rate and cadence averages and maxima are rounded to whole numbers.
func BuildResults(seg *store.Segment, act *store.Activity, matches []Match) []store.SegmentResult {
	results := make([]store.SegmentResult, 0, len(matches))

	for _, m := range matches {
		r := store.SegmentResult{
			SegmentID:       seg.ID,
			ActivityID:      act.ID,
			Date:            act.Date,
			StartIndex:      m.StartIndex,
			EndIndex:        m.EndIndex,
			DurationSeconds: m.EndIndex - m.StartIndex,
			Power:           act.Power.Slice(m.StartIndex, m.EndIndex),
			HeartRate:       act.HeartRate.Slice(m.StartIndex, m.EndIndex),
			Cadence:         act.Cadence.Slice(m.StartIndex, m.EndIndex),
			Speed:           act.Speed.Slice(m.StartIndex, m.EndIndex),
		}

		r.AvgPower, r.MaxPower = reduce(r.Power, true)
		r.AvgHeartRate, r.MaxHeartRate = reduce(r.HeartRate, true)
		r.AvgCadence, r.MaxCadence = reduce(r.Cadence, true)
		r.AvgSpeed, r.MaxSpeed = reduce(r.Speed, false)

		if r.DurationSeconds > 0 {
			kmh := 3.6 * seg.DistanceMeters / float64(r.DurationSeconds)
			r.AverageSpeedKmh = &kmh
		}

		results = append(results, r)
	}

	return results
}

// reduce returns the mean and max of the present samples, nil when none are
func reduce(s stream.Stream, round bool) (avg, max *float64) {
	if mean, ok := s.Mean(); ok {
		if round {
			mean = math.Round(mean)
		}
		avg = &mean
	}
	if m, ok := s.Max(); ok {
		if round {
			m = math.Round(m)
		}
		max = &m
	}
	return avg, max
}
