package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances
const EarthRadiusKm = 6371.0

// LatLng is a position in decimal degrees
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NullLatLng is one GPS sample of an activity track. Valid is false when the
// device recorded no fix for that second.
type NullLatLng struct {
	LatLng
	Valid bool `json:"valid"`
}

// Point returns a valid track sample
func Point(lat, lng float64) NullLatLng {
	return NullLatLng{LatLng: LatLng{Lat: lat, Lng: lng}, Valid: true}
}

// ToRadians converts degrees to radians
func ToRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

// HaversineMeters returns the great-circle distance between two positions in meters.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	dLat := ToRadians(lat2 - lat1)
	dLon := ToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(ToRadians(lat1))*math.Cos(ToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push a marginally outside [0,1] for antipodal points
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c * 1000
}

func cosDegrees(degrees float64) float64 {
	return math.Cos(ToRadians(degrees))
}

// Distance returns the haversine distance between two positions in meters
func Distance(a, b LatLng) float64 {
	return HaversineMeters(a.Lat, a.Lng, b.Lat, b.Lng)
}
