package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridelog/internal/source"
	"ridelog/internal/store"
)

func TestLapsFromSource(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	laps := []source.Lap{
		{Start: start.Add(-5 * time.Second), End: start.Add(10 * time.Second)},
		{Start: start.Add(10 * time.Second), End: start.Add(99 * time.Second)},
		{Start: start.Add(200 * time.Second), End: start.Add(300 * time.Second)},
	}

	got := LapsFromSource(laps, start, 60)
	assert.Equal(t, []store.Lap{{StartIndex: 0, EndIndex: 10}, {StartIndex: 10, EndIndex: 60}}, got)
	assert.Nil(t, LapsFromSource(nil, start, 60))
}

func TestAddLap(t *testing.T) {
	laps := []store.Lap{{StartIndex: 0, EndIndex: 10}, {StartIndex: 20, EndIndex: 30}}

	got, err := AddLap(laps, store.Lap{StartIndex: 5, EndIndex: 25}, 30)
	require.NoError(t, err)
	assert.Equal(t, []store.Lap{{StartIndex: 0, EndIndex: 10}, {StartIndex: 5, EndIndex: 25}, {StartIndex: 20, EndIndex: 30}}, got)
	assert.Len(t, laps, 2, "input is not modified")

	tests := []struct {
		name string
		lap  store.Lap
	}{
		{"empty", store.Lap{StartIndex: 5, EndIndex: 5}},
		{"reversed", store.Lap{StartIndex: 9, EndIndex: 2}},
		{"negative start", store.Lap{StartIndex: -1, EndIndex: 2}},
		{"past the end", store.Lap{StartIndex: 0, EndIndex: 31}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddLap(laps, tt.lap, 30)
			assert.ErrorIs(t, err, ErrInvalidLap)
		})
	}
}

func TestRemoveLap(t *testing.T) {
	laps := []store.Lap{{StartIndex: 0, EndIndex: 10}, {StartIndex: 10, EndIndex: 20}, {StartIndex: 20, EndIndex: 30}}

	got, err := RemoveLap(laps, 1)
	require.NoError(t, err)
	assert.Equal(t, []store.Lap{{StartIndex: 0, EndIndex: 10}, {StartIndex: 20, EndIndex: 30}}, got)
	assert.Equal(t, store.Lap{StartIndex: 10, EndIndex: 20}, laps[1], "input is not modified")

	_, err = RemoveLap(laps, 3)
	assert.ErrorIs(t, err, ErrInvalidLap)
}
