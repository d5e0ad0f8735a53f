package analysis

import (
	"math"
	"testing"

	"ridelog/internal/stream"
)

// rideStreams builds n seconds of power and heart rate from per-second
// functions
func rideStreams(n int, watts, bpm func(i int) float64) (power, hr stream.Stream) {
	power = make(stream.Stream, n)
	hr = make(stream.Stream, n)
	for i := 0; i < n; i++ {
		power[i] = stream.Of(watts(i))
		hr[i] = stream.Of(bpm(i))
	}
	return power, hr
}

func steady(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

func TestEfficiencyFactor(t *testing.T) {
	tests := []struct {
		name     string
		streams  func() (stream.Stream, stream.Stream)
		expected float64
		delta    float64
	}{
		{
			name:     "empty streams",
			streams:  func() (stream.Stream, stream.Stream) { return nil, nil },
			expected: 0,
		},
		{
			name: "no valid data points - HR too low",
			streams: func() (stream.Stream, stream.Stream) {
				return rideStreams(60, steady(200), steady(70))
			},
			expected: 0,
		},
		{
			name: "no valid data points - coasting",
			streams: func() (stream.Stream, stream.Stream) {
				return rideStreams(60, steady(0), steady(120))
			},
			expected: 0,
		},
		{
			name: "too short for normalized power",
			streams: func() (stream.Stream, stream.Stream) {
				return rideStreams(20, steady(200), steady(150))
			},
			expected: 0,
		},
		{
			name: "steady ride",
			streams: func() (stream.Stream, stream.Stream) {
				return rideStreams(60, steady(200), steady(150))
			},
			// 200 W / 150 bpm
			expected: 1.333,
			delta:    0.001,
		},
		{
			name: "missing heart rate samples are skipped",
			streams: func() (stream.Stream, stream.Stream) {
				power, hr := rideStreams(70, steady(200), steady(150))
				for i := 60; i < 70; i++ {
					hr[i] = stream.Null()
				}
				return power, hr
			},
			expected: 1.333,
			delta:    0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EfficiencyFactor(tt.streams())
			if math.Abs(result-tt.expected) > tt.delta {
				t.Errorf("EfficiencyFactor() = %v, want %v (±%v)", result, tt.expected, tt.delta)
			}
		})
	}
}

func TestPowerAtHR(t *testing.T) {
	// one minute at 200 W / 150 bpm, then one at 250 W / 170 bpm
	power, hr := rideStreams(120,
		func(i int) float64 {
			if i < 60 {
				return 200
			}
			return 250
		},
		func(i int) float64 {
			if i < 60 {
				return 150
			}
			return 170
		})

	tests := []struct {
		name     string
		targetHR float64
		expected float64
	}{
		{name: "endurance heart rate", targetHR: 150, expected: 200},
		{name: "threshold heart rate", targetHR: 170, expected: 250},
		{name: "never reached", targetHR: 120, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PowerAtHR(power, hr, tt.targetHR, 5)
			if result != tt.expected {
				t.Errorf("PowerAtHR() = %v, want %v", result, tt.expected)
			}
		})
	}

	short, shortHR := rideStreams(20, steady(200), steady(150))
	if got := PowerAtHR(short, shortHR, 150, 5); got != 0 {
		t.Errorf("PowerAtHR() with 20 s = %v, want 0", got)
	}
}
