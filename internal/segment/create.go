package segment

import (
	"fmt"
	"strings"

	"ridelog/internal/geo"
	"ridelog/internal/store"
	"ridelog/internal/stream"
)

// NewFromActivityRange cuts a segment out of act over indices [start, end).
// Missing fixes and samples are dropped, and the distance profile is
// rebased so it starts at zero.
func NewFromActivityRange(act *store.Activity, name string, start, end int) (*store.Segment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("segment name is empty: %w", ErrMalformedInput)
	}
	if start < 0 || end > len(act.LatLng) || start >= end {
		return nil, fmt.Errorf("range [%d, %d) outside activity %d with %d positions: %w",
			start, end, act.ID, len(act.LatLng), ErrMalformedInput)
	}

	var points []geo.LatLng
	for _, p := range act.LatLng[start:end] {
		if p.Valid {
			points = append(points, p.LatLng)
		}
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("range [%d, %d) has %d positions: %w", start, end, len(points), ErrMalformedInput)
	}
	bounds, _ := geo.BoundsOfPoints(points)

	seg := &store.Segment{
		UserID:    act.UserID,
		Name:      name,
		Bounds:    bounds,
		Points:    points,
		Elevation: presentValues(act.Elevation, start, end),
		Grade:     presentValues(act.Grade, start, end),
		Distance:  presentValues(act.Distance, start, end),
	}

	if n := len(seg.Distance); n > 0 {
		first := seg.Distance[0]
		for i := range seg.Distance {
			seg.Distance[i] -= first
		}
		seg.DistanceMeters = seg.Distance[n-1]
	}

	return seg, nil
}

// presentValues returns the non-null samples of s within [start, end)
func presentValues(s stream.Stream, start, end int) []float64 {
	if s == nil || start >= len(s) {
		return nil
	}
	if end > len(s) {
		end = len(s)
	}
	return s[start:end].Present()
}
