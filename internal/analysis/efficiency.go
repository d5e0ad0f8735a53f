package analysis

import "ridelog/internal/stream"

// Heart rates outside this range are treated as sensor noise
const (
	minPlausibleHR = 80
	maxPlausibleHR = 220
)

// effort is one second with both power and heart rate recorded
type effort struct {
	power float64
	hr    float64
}

// efforts pairs the seconds where the rider is pedaling with a plausible
// heart rate
func efforts(power, hr stream.Stream) []effort {
	n := min(len(power), len(hr))
	out := make([]effort, 0, n)
	for i := 0; i < n; i++ {
		p, okPower := power[i].Get()
		h, okHR := hr[i].Get()
		if !okPower || !okHR || p <= 0 || h <= minPlausibleHR || h >= maxPlausibleHR {
			continue
		}
		out = append(out, effort{power: p, hr: h})
	}
	return out
}

// EfficiencyFactor is normalized power per heart beat over the paired
// seconds of a ride. Higher is better: more watts for the same heart rate.
// Typical values range from 1.0 to 2.0. Returns 0 without enough data.
func EfficiencyFactor(power, hr stream.Stream) float64 {
	pairs := efforts(power, hr)
	if len(pairs) == 0 {
		return 0
	}

	watts := make(stream.Stream, len(pairs))
	for i, e := range pairs {
		watts[i] = stream.Of(e.power)
	}
	np, err := NormalizedPower(watts)
	if err != nil {
		return 0
	}
	return np / averageHR(pairs)
}

// PowerAtHR is the average power while heart rate stays within tolerance
// of targetHR. Returns 0 with less than 30 such seconds.
func PowerAtHR(power, hr stream.Stream, targetHR, tolerance float64) float64 {
	var total float64
	var count int

	for _, e := range efforts(power, hr) {
		if e.hr >= targetHR-tolerance && e.hr <= targetHR+tolerance {
			total += e.power
			count++
		}
	}

	if count < 30 {
		return 0
	}
	return total / float64(count)
}
