package segment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridelog/internal/store"
	"ridelog/internal/stream"
)

func TestBuildResults(t *testing.T) {
	seg := &store.Segment{ID: 7, DistanceMeters: 1000}
	act := &store.Activity{
		ID:        3,
		Date:      time.Date(2024, 6, 4, 7, 0, 0, 0, time.UTC),
		Power:     stream.Stream{stream.Of(90), stream.Of(95), stream.Of(200), stream.Of(201), stream.Null(), stream.Of(202), stream.Of(204), stream.Of(80)},
		HeartRate: stream.Stream{stream.Null(), stream.Null(), stream.Null(), stream.Null(), stream.Null(), stream.Null(), stream.Null(), stream.Null()},
		Speed:     stream.FromValues(20, 20, 30.5, 31, 31, 31, 30.5, 20),
	}

	results := BuildResults(seg, act, []Match{{StartIndex: 2, EndIndex: 6}})
	require.Len(t, results, 1)
	r := results[0]

	assert.Equal(t, int64(7), r.SegmentID)
	assert.Equal(t, int64(3), r.ActivityID)
	assert.Equal(t, act.Date, r.Date)
	assert.Equal(t, 4, r.DurationSeconds)
	assert.Len(t, r.Power, 5, "slice is inclusive of both ends")

	require.NotNil(t, r.AvgPower)
	assert.Equal(t, 202.0, *r.AvgPower) // 201.75
	assert.Equal(t, 204.0, *r.MaxPower)

	assert.Nil(t, r.AvgHeartRate, "all missing")
	assert.Nil(t, r.MaxHeartRate)
	assert.Nil(t, r.Cadence, "absent stream stays absent")
	assert.Nil(t, r.AvgCadence)

	require.NotNil(t, r.AvgSpeed)
	assert.InDelta(t, 30.8, *r.AvgSpeed, 1e-9, "speed is not rounded")
	assert.Equal(t, 31.0, *r.MaxSpeed)

	require.NotNil(t, r.AverageSpeedKmh)
	assert.InDelta(t, 900.0, *r.AverageSpeedKmh, 1e-9)
}

func TestBuildResultsZeroDuration(t *testing.T) {
	seg := &store.Segment{ID: 7, DistanceMeters: 1000}
	act := &store.Activity{ID: 3, Power: stream.FromValues(100, 200)}

	results := BuildResults(seg, act, []Match{{StartIndex: 1, EndIndex: 1}})
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].DurationSeconds)
	assert.Nil(t, results[0].AverageSpeedKmh)
	assert.Equal(t, 200.0, *results[0].AvgPower)

	assert.Empty(t, BuildResults(seg, act, nil))
}
