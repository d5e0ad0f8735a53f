package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRadians(t *testing.T) {
	assert.InDelta(t, math.Pi, ToRadians(180), 1e-12)
	assert.InDelta(t, math.Pi/2, ToRadians(90), 1e-12)
	assert.Equal(t, 0.0, ToRadians(0))
}

func TestHaversineMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		delta                  float64
	}{
		{"identical points", 51.5, -0.12, 51.5, -0.12, 0, 0},
		{"one degree of latitude", 0, 0, 1, 0, 111195, 1},
		{"one degree of longitude at equator", 0, 0, 0, 1, 111195, 1},
		{"antipodal", 0, 0, 0, 180, math.Pi * EarthRadiusKm * 1000, 1},
		{"london to paris", 51.5074, -0.1278, 48.8566, 2.3522, 343556, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.False(t, math.IsNaN(got))
			assert.GreaterOrEqual(t, got, 0.0)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := LatLng{Lat: 45.1, Lng: 7.6}
	b := LatLng{Lat: 45.2, Lng: 7.7}
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
}

func TestBoundsOf(t *testing.T) {
	track := []NullLatLng{
		{},
		Point(45.0, 7.0),
		{},
		Point(45.2, 6.9),
		Point(44.9, 7.3),
	}

	box, ok := BoundsOf(track)
	require.True(t, ok)
	assert.Equal(t, BoundingBox{MinLat: 44.9, MaxLat: 45.2, MinLng: 6.9, MaxLng: 7.3}, box)

	_, ok = BoundsOf([]NullLatLng{{}, {}})
	assert.False(t, ok)

	_, ok = BoundsOf(nil)
	assert.False(t, ok)
}

func TestBoundingBoxContains(t *testing.T) {
	outer := BoundingBox{MinLat: 0, MaxLat: 10, MinLng: 0, MaxLng: 10}

	tests := []struct {
		name  string
		inner BoundingBox
		want  bool
	}{
		{"strictly inside", BoundingBox{1, 9, 1, 9}, true},
		{"shares edges", outer, true},
		{"overlaps", BoundingBox{5, 11, 5, 9}, false},
		{"disjoint", BoundingBox{20, 30, 20, 30}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outer.Contains(tt.inner))
		})
	}
}

func TestBoundingBoxExpand(t *testing.T) {
	box := NewBoundingBox(LatLng{Lat: 45, Lng: 7})
	grown := box.Expand(20)

	// every point within 20 m of the corner must land inside the grown box
	for _, bearing := range []float64{0, 45, 90, 135, 180, 225, 270, 315} {
		rad := ToRadians(bearing)
		p := LatLng{
			Lat: 45 + 19.9*math.Cos(rad)/MetersPerDegreeLat,
			Lng: 7 + 19.9*math.Sin(rad)/(MetersPerDegreeLat*math.Cos(ToRadians(45))),
		}
		require.Less(t, Distance(p, LatLng{Lat: 45, Lng: 7}), 20.0)
		assert.True(t, grown.ContainsPoint(p), "bearing %v", bearing)
	}
}
