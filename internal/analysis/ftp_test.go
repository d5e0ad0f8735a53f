package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ridelog/internal/store"
)

func TestThresholdAt(t *testing.T) {
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }
	history := []store.ThresholdEntry{
		{Date: day(3, 1), Value: 260},
		{Date: day(1, 1), Value: 240},
		{Date: day(2, 1), Value: 250},
	}

	tests := []struct {
		name    string
		history []store.ThresholdEntry
		date    time.Time
		want    float64
		wantOK  bool
	}{
		{"most recent before", history, day(2, 15), 250, true},
		{"after all entries", history, day(6, 1), 260, true},
		{"same day as entry", history, day(2, 1).Add(8 * time.Hour), 250, true},
		{"before all entries uses earliest", history, day(1, 1).Add(-time.Hour), 240, true},
		{"entry at the exact date is skipped", history, day(2, 1), 240, true},
		{"only entry at the exact date", []store.ThresholdEntry{{Date: day(2, 1), Value: 300}}, day(2, 1), 0, false},
		{"empty history", nil, day(2, 1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ThresholdAt(tt.history, tt.date)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrainingStressScore(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		np, ftp  float64
		want     int
	}{
		{"hour at threshold", 3600, 250, 250, 100},
		{"two hours at IF 0.75", 7200, 150, 200, 113},
		{"no ftp", 3600, 250, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrainingStressScore(tt.duration, tt.np, tt.ftp))
		})
	}

	assert.InDelta(t, 0.8, IntensityFactor(200, 250), 1e-12)
}
