package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridelog/internal/geo"
	"ridelog/internal/source"
	"ridelog/internal/store"
	"ridelog/internal/stream"
)

var rideStart = time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC) // a Tuesday

func floatPtr(v float64) *float64 { return &v }

func steadyRide(n int, watts float64) *source.Ride {
	r := &source.Ride{Start: rideStart, Duration: n, Distance: 30000}
	r.SetStream(stream.Power, constant(watts, n))
	return r
}

func TestComputeActivityMetricsThresholdHour(t *testing.T) {
	ride := steadyRide(3600, 200)
	history := []store.ThresholdEntry{{Date: rideStart.AddDate(0, -1, 0), Value: 200}}

	a, err := ComputeActivityMetrics(context.Background(), ride, history, ComputeOptions{UserID: 7})
	require.NoError(t, err)

	require.NotNil(t, a.NormalizedPower)
	assert.Equal(t, 200.0, *a.NormalizedPower)
	require.NotNil(t, a.IntensityFactor)
	assert.InDelta(t, 1.0, *a.IntensityFactor, 1e-9)
	require.NotNil(t, a.TSS)
	assert.Equal(t, 100, *a.TSS)
	require.NotNil(t, a.FTP)
	assert.Equal(t, 200.0, *a.FTP)

	assert.Len(t, a.CriticalPower, 3600)
	assert.Equal(t, int64(7), a.UserID)
	assert.Equal(t, "Tuesday Ride", a.Title)
	assert.Nil(t, a.Bounds)
	assert.Nil(t, a.HeartRate)
	assert.Nil(t, a.CriticalHeartRate)
}

func TestComputeActivityMetricsWithoutFTP(t *testing.T) {
	a, err := ComputeActivityMetrics(context.Background(), steadyRide(120, 180), nil, ComputeOptions{})
	require.NoError(t, err)

	require.NotNil(t, a.NormalizedPower)
	assert.Nil(t, a.TSS)
	assert.Nil(t, a.IntensityFactor)
	assert.Nil(t, a.FTP)
	assert.Len(t, a.CriticalPower, 120)

	// an hour of power with an empty history still gets no load metrics
	a, err = ComputeActivityMetrics(context.Background(), steadyRide(3600, 200), nil, ComputeOptions{UserID: 1})
	require.NoError(t, err)
	require.NotNil(t, a.NormalizedPower)
	assert.Nil(t, a.TSS)
	assert.Nil(t, a.IntensityFactor)
	assert.Nil(t, a.FTP)

	// an entry dated exactly at the start resolves nothing
	history := []store.ThresholdEntry{{Date: rideStart, Value: 300}}
	a, err = ComputeActivityMetrics(context.Background(), steadyRide(3600, 200), history, ComputeOptions{})
	require.NoError(t, err)
	assert.Nil(t, a.TSS)
	assert.Nil(t, a.IntensityFactor)
}

func TestComputeActivityMetricsShortRide(t *testing.T) {
	history := []store.ThresholdEntry{{Date: rideStart.AddDate(0, 0, -1), Value: 250}}
	a, err := ComputeActivityMetrics(context.Background(), steadyRide(20, 300), history, ComputeOptions{})
	require.NoError(t, err)

	assert.Len(t, a.CriticalPower, 20)
	assert.Nil(t, a.NormalizedPower)
	assert.Nil(t, a.TSS)
}

func TestComputeActivityMetricsStreamPresence(t *testing.T) {
	n := 60
	ride := &source.Ride{Start: rideStart, Duration: n}
	ride.SetStream(stream.Power, constant(0, n))
	ride.SetStream(stream.HeartRate, make(stream.Stream, n)) // all missing
	ride.SetStream(stream.Cadence, constant(90, n))

	a, err := ComputeActivityMetrics(context.Background(), ride, nil, ComputeOptions{})
	require.NoError(t, err)

	assert.Nil(t, a.Power, "all-zero power is absent")
	assert.Nil(t, a.CriticalPower)
	assert.Nil(t, a.HeartRate, "all-null heart rate is absent")
	assert.Nil(t, a.CriticalHeartRate)
	assert.Len(t, a.Cadence, n)
}

func TestComputeActivityMetricsBoundsAndLaps(t *testing.T) {
	track := []geo.NullLatLng{{}, geo.Point(45.01, 7.02), geo.Point(45.03, 7.01), {}}
	ride := &source.Ride{
		Start:    rideStart,
		Duration: 4,
		Track:    track,
		LapList: []source.Lap{
			{Start: rideStart.Add(2 * time.Second), End: rideStart.Add(4 * time.Second)},
			{Start: rideStart, End: rideStart.Add(2 * time.Second)},
			{Start: rideStart.Add(3 * time.Second), End: rideStart.Add(3 * time.Second)},
		},
	}
	ride.SetStream(stream.Distance, stream.FromValues(0, 5, 10, 15))

	a, err := ComputeActivityMetrics(context.Background(), ride, nil, ComputeOptions{Title: "Commute"})
	require.NoError(t, err)

	require.NotNil(t, a.Bounds)
	assert.Equal(t, geo.BoundingBox{MinLat: 45.01, MaxLat: 45.03, MinLng: 7.01, MaxLng: 7.02}, *a.Bounds)
	assert.Equal(t, []store.Lap{{StartIndex: 0, EndIndex: 2}, {StartIndex: 2, EndIndex: 4}}, a.Laps)
	assert.Equal(t, "Commute", a.Title)
}

func TestComputeActivityMetricsNoFix(t *testing.T) {
	ride := &source.Ride{Start: rideStart, Track: []geo.NullLatLng{{}, {}}}
	a, err := ComputeActivityMetrics(context.Background(), ride, nil, ComputeOptions{})
	require.NoError(t, err)
	assert.Nil(t, a.LatLng)
	assert.Nil(t, a.Bounds)
}

func TestComputeActivityMetricsMalformed(t *testing.T) {
	ride := &source.Ride{Start: rideStart, Track: []geo.NullLatLng{geo.Point(1, 1), geo.Point(1, 2)}}
	ride.SetStream(stream.Power, constant(100, 3))

	_, err := ComputeActivityMetrics(context.Background(), ride, nil, ComputeOptions{})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestComputeActivityMetricsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ComputeActivityMetrics(ctx, steadyRide(60, 100), nil, ComputeOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeActivityMetricsSummaryStats(t *testing.T) {
	ride := steadyRide(60, 100)
	ride.SetStat(source.StatAvgPower, 100)
	ride.SetStat(source.StatMaxHeartRate, 0)
	ride.SetStat(source.StatMaxSpeed, 52.3)

	a, err := ComputeActivityMetrics(context.Background(), ride, nil, ComputeOptions{})
	require.NoError(t, err)

	assert.Equal(t, floatPtr(100), a.AvgPower)
	assert.Nil(t, a.MaxHeartRate, "zero statistic is absent")
	assert.Equal(t, floatPtr(52.3), a.MaxSpeed)
	assert.Nil(t, a.AvgCadence)
}

func TestDefaultTitle(t *testing.T) {
	assert.Equal(t, "Sunday Ride", DefaultTitle(time.Date(2024, 6, 2, 7, 0, 0, 0, time.UTC)))
}
