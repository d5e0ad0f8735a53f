package source

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridelog/internal/geo"
	"ridelog/internal/stream"
)

func TestRide(t *testing.T) {
	start := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	r := &Ride{Start: start, Distance: 1200, Duration: 3}
	r.SetStat(StatAvgPower, 180)
	r.SetStream(stream.Power, stream.FromValues(170, 180, 190))

	assert.Equal(t, start, r.StartTime())
	assert.Equal(t, 1200.0, r.DistanceMeters())
	assert.Equal(t, 3, r.DurationSeconds())

	v, ok := r.Stat(StatAvgPower)
	require.True(t, ok)
	assert.Equal(t, 180.0, v)
	_, ok = r.Stat(StatMaxPower)
	assert.False(t, ok)

	s, ok := r.Stream(stream.Power)
	require.True(t, ok)
	assert.Len(t, s, 3)
	_, ok = r.Stream(stream.HeartRate)
	assert.False(t, ok)

	_, ok = r.LatLng()
	assert.False(t, ok)
	r.Track = []geo.NullLatLng{geo.Point(1, 2)}
	track, ok := r.LatLng()
	require.True(t, ok)
	assert.Len(t, track, 1)
}

func TestDecodeFITRejectsGarbage(t *testing.T) {
	_, err := DecodeFIT(bytes.NewReader([]byte("definitely not a FIT file")))
	assert.Error(t, err)
}

func TestFinite(t *testing.T) {
	assert.True(t, finite(0))
	assert.False(t, finite(math.NaN()))
	assert.False(t, finite(math.Inf(1)))
}

func TestValidTime(t *testing.T) {
	assert.False(t, validTime(time.Time{}))
	assert.True(t, validTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}
