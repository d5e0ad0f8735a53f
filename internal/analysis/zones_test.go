package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridelog/internal/stream"
)

func TestCogganPowerZones(t *testing.T) {
	zones := PowerZones(200, ZoneSystemCoggan)
	require.Len(t, zones, 6)

	want := [][2]float64{{0, 110}, {111, 150}, {151, 180}, {181, 210}, {211, 240}, {241, math.Inf(1)}}
	for i, z := range zones {
		assert.Equal(t, want[i][0], z.Start, z.Name)
		assert.Equal(t, want[i][1], z.End, z.Name)
	}
	assert.Equal(t, "Zone 6 (Anaerobic Capacity): 241+", zones[5].String())
	assert.Equal(t, "Zone 1 (Active Recovery): 0-110", zones[0].String())
}

func TestPolarizedPowerZones(t *testing.T) {
	zones := PowerZones(250, "Polarized")
	require.Len(t, zones, 3)
	assert.Equal(t, Zone{Name: "Low", Start: 0, End: 200}, zones[0])
	assert.Equal(t, Zone{Name: "Moderate", Start: 201, End: 250}, zones[1])
	assert.Equal(t, 251.0, zones[2].Start)
	assert.True(t, math.IsInf(zones[2].End, 1))

	assert.Len(t, PowerZones(250, "unknown"), 6, "falls back to coggan")
}

func TestHeartRateZones(t *testing.T) {
	zones := HeartRateZones(170, ZoneSystemCoggan)
	require.Len(t, zones, 5)
	assert.Equal(t, 116.0, zones[0].End) // round(115.6)
	assert.Equal(t, 117.0, zones[1].Start)
	assert.Equal(t, 179.0, zones[3].End) // round(178.5)
}

func TestTimeInZones(t *testing.T) {
	zones := PolarizedPowerZones(250) // 0-200, 201-250, 251+
	s := stream.Stream{
		stream.Of(0), stream.Of(150), stream.Of(200), stream.Of(200.5),
		stream.Null(), stream.Of(201), stream.Of(250), stream.Of(251), stream.Of(900),
	}

	assert.Equal(t, []int{4, 2, 2}, TimeInZones(s, zones))
	assert.Equal(t, []int{0, 0, 0}, TimeInZones(nil, zones))
}
