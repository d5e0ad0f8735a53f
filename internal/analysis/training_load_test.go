package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFitnessTrend(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC) }

	loads := []DailyLoad{
		{Date: day(3).Add(18 * time.Hour), TSS: 70},
		{Date: day(1).Add(7 * time.Hour), TSS: 42},
		{Date: day(3).Add(7 * time.Hour), TSS: 14},
	}

	trend := CalculateFitnessTrend(loads, time.Time{})
	require.Len(t, trend, 3)

	// Day 1: 42 TSS
	assert.Equal(t, day(1), trend[0].Date)
	assert.InDelta(t, 1.0, trend[0].CTL, 1e-9)
	assert.InDelta(t, 6.0, trend[0].ATL, 1e-9)
	assert.Equal(t, 0.0, trend[0].TSB)

	// Day 2: rest, form reflects day 1
	assert.Equal(t, 0.0, trend[1].TSS)
	assert.InDelta(t, 1.0-6.0, trend[1].TSB, 1e-9)
	assert.InDelta(t, 1.0-1.0/42, trend[1].CTL, 1e-9)
	assert.InDelta(t, 6.0-6.0/7, trend[1].ATL, 1e-9)

	// Day 3: two rides summed
	assert.Equal(t, 84.0, trend[2].TSS)
	assert.InDelta(t, trend[1].CTL-trend[1].ATL, trend[2].TSB, 1e-9)
}

func TestCalculateFitnessTrendUntil(t *testing.T) {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	trend := CalculateFitnessTrend([]DailyLoad{{Date: start, TSS: 100}}, start.AddDate(0, 0, 9))
	require.Len(t, trend, 10)

	for i := 1; i < len(trend); i++ {
		assert.Less(t, trend[i].CTL, trend[i-1].CTL, "fitness decays without load")
	}

	current := GetCurrentFitness([]DailyLoad{{Date: start, TSS: 100}}, start.AddDate(0, 0, 9))
	assert.Equal(t, trend[9], current)

	assert.Nil(t, CalculateFitnessTrend(nil, start))
	assert.Equal(t, FitnessMetrics{}, GetCurrentFitness(nil, start))
}

func TestFormDescription(t *testing.T) {
	tests := []struct {
		tsb  float64
		want string
	}{
		{30, "Very fresh (possibly detrained)"},
		{15, "Fresh and ready to race"},
		{5, "Neutral - good for training"},
		{-5, "Slightly fatigued"},
		{-20, "Tired but building fitness"},
		{-30, "Very fatigued - rest needed"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormDescription(tt.tsb), "tsb %v", tt.tsb)
	}
}
