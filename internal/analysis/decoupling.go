package analysis

import "ridelog/internal/stream"

// AerobicDecoupling is the Pw:HR drift between the first and second half
// of a ride, in percent. Positive means the second half took more heart
// rate per watt. Below 5% on long rides indicates a good aerobic base.
// Returns 0 with less than two minutes of paired data.
func AerobicDecoupling(power, hr stream.Stream) float64 {
	pairs := efforts(power, hr)
	if len(pairs) < 120 {
		return 0
	}

	mid := len(pairs) / 2
	firstEF := halfEF(pairs[:mid])
	secondEF := halfEF(pairs[mid:])
	if firstEF == 0 || secondEF == 0 {
		return 0
	}

	return ((firstEF / secondEF) - 1) * 100
}

// halfEF is average power per average heart rate
func halfEF(pairs []effort) float64 {
	hr := averageHR(pairs)
	if hr == 0 {
		return 0
	}
	var total float64
	for _, e := range pairs {
		total += e.power
	}
	return total / float64(len(pairs)) / hr
}

// CardiacDrift is the heart rate rise, in bpm, between the first and last
// quarter of the steady seconds of a ride: those within 10% of avgPower.
// Returns 0 with less than two minutes of steady riding.
func CardiacDrift(power, hr stream.Stream, avgPower float64) float64 {
	if avgPower <= 0 {
		return 0
	}

	var steady []effort
	for _, e := range efforts(power, hr) {
		if ratio := e.power / avgPower; ratio > 0.9 && ratio < 1.1 {
			steady = append(steady, e)
		}
	}
	if len(steady) < 120 {
		return 0
	}

	quarter := len(steady) / 4
	return averageHR(steady[len(steady)-quarter:]) - averageHR(steady[:quarter])
}

// SteadyStatePct is the share of recorded power samples within 10% of
// avgPower, in percent
func SteadyStatePct(power stream.Stream, avgPower float64) float64 {
	if avgPower <= 0 {
		return 0
	}

	var steady, valid int
	for _, v := range power {
		p, ok := v.Get()
		if !ok {
			continue
		}
		valid++
		if ratio := p / avgPower; ratio > 0.9 && ratio < 1.1 {
			steady++
		}
	}

	if valid == 0 {
		return 0
	}
	return float64(steady) / float64(valid) * 100
}

func averageHR(pairs []effort) float64 {
	if len(pairs) == 0 {
		return 0
	}
	var total float64
	for _, e := range pairs {
		total += e.hr
	}
	return total / float64(len(pairs))
}
