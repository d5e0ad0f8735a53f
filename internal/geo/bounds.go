package geo

// MetersPerDegreeLat is the length of one degree of latitude on the mean sphere
const MetersPerDegreeLat = EarthRadiusKm * 1000 * 3.141592653589793 / 180

// BoundingBox is the smallest lat/lng rectangle containing a set of positions
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// NewBoundingBox returns a degenerate box around a single position
func NewBoundingBox(p LatLng) BoundingBox {
	return BoundingBox{MinLat: p.Lat, MaxLat: p.Lat, MinLng: p.Lng, MaxLng: p.Lng}
}

// Extend grows the box to include p
func (b *BoundingBox) Extend(p LatLng) {
	if p.Lat < b.MinLat {
		b.MinLat = p.Lat
	}
	if p.Lat > b.MaxLat {
		b.MaxLat = p.Lat
	}
	if p.Lng < b.MinLng {
		b.MinLng = p.Lng
	}
	if p.Lng > b.MaxLng {
		b.MaxLng = p.Lng
	}
}

// Contains reports whether other lies entirely inside b (edges inclusive)
func (b BoundingBox) Contains(other BoundingBox) bool {
	return b.MinLat <= other.MinLat &&
		b.MaxLat >= other.MaxLat &&
		b.MinLng <= other.MinLng &&
		b.MaxLng >= other.MaxLng
}

// ContainsPoint reports whether p lies inside b (edges inclusive)
func (b BoundingBox) ContainsPoint(p LatLng) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// Expand returns a copy of b grown by roughly meters on every side.
// The longitude margin uses the latitude furthest from the equator so the
// expanded box never under-covers.
func (b BoundingBox) Expand(meters float64) BoundingBox {
	dLat := meters / MetersPerDegreeLat

	lat := b.MaxLat
	if -b.MinLat > lat {
		lat = -b.MinLat
	}
	cos := cosDegrees(lat + dLat)
	dLng := 180.0
	if cos > 1e-9 {
		dLng = dLat / cos
	}

	return BoundingBox{
		MinLat: b.MinLat - dLat,
		MaxLat: b.MaxLat + dLat,
		MinLng: b.MinLng - dLng,
		MaxLng: b.MaxLng + dLng,
	}
}

// BoundsOf computes the bounding box of the valid samples in track.
// ok is false when track holds no valid sample.
func BoundsOf(track []NullLatLng) (box BoundingBox, ok bool) {
	for _, p := range track {
		if !p.Valid {
			continue
		}
		if !ok {
			box = NewBoundingBox(p.LatLng)
			ok = true
			continue
		}
		box.Extend(p.LatLng)
	}
	return box, ok
}

// BoundsOfPoints computes the bounding box of a polyline.
// ok is false for an empty polyline.
func BoundsOfPoints(points []LatLng) (box BoundingBox, ok bool) {
	if len(points) == 0 {
		return BoundingBox{}, false
	}
	box = NewBoundingBox(points[0])
	for _, p := range points[1:] {
		box.Extend(p)
	}
	return box, true
}
