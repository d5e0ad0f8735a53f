// Package segment finds traversals of user-defined route segments within
// recorded rides and turns them into ranked results.
package segment

import (
	"context"
	"fmt"
	"math"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"ridelog/internal/analysis"
	"ridelog/internal/geo"
	"ridelog/internal/store"
)

// ErrMalformedInput is returned for segments or activities whose data
// cannot be matched at all.
var ErrMalformedInput = analysis.ErrMalformedInput

// Matching defaults
const (
	DefaultProximityMeters         = 20.0
	DefaultDistanceToleranceMeters = 100.0
)

// Match is a confirmed traversal over activity indices [StartIndex, EndIndex]
type Match struct {
	StartIndex int
	EndIndex   int
}

// MatchOptions tunes the matcher. Zero values select the defaults.
type MatchOptions struct {
	// ProximityMeters is how close the track must pass to a segment point
	ProximityMeters float64
	// DistanceToleranceMeters bounds the ridden distance against the
	// segment distance
	DistanceToleranceMeters float64
	// Stride picks the polyline sampling step for shape verification
	Stride func(points int) int
	Logger *zap.Logger
}

// DefaultStride samples every point of short polylines and progressively
// fewer of long ones.
func DefaultStride(points int) int {
	switch {
	case points < 100:
		return 1
	case points < 1000:
		return 10
	case points < 10000:
		return 100
	default:
		return 200
	}
}

func (o MatchOptions) withDefaults() MatchOptions {
	if o.ProximityMeters <= 0 {
		o.ProximityMeters = DefaultProximityMeters
	}
	if o.DistanceToleranceMeters <= 0 {
		o.DistanceToleranceMeters = DefaultDistanceToleranceMeters
	}
	if o.Stride == nil {
		o.Stride = DefaultStride
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// FindMatches returns every traversal of seg within act, ordered by start
// index. A ride that cannot contain the segment yields an empty slice and a
// nil error; only malformed input and cancellation are errors.
func FindMatches(ctx context.Context, seg *store.Segment, act *store.Activity, opts MatchOptions) ([]Match, error) {
	opts = opts.withDefaults()
	logger := opts.Logger.With(zap.Int64("segment_id", seg.ID), zap.Int64("activity_id", act.ID))

	if len(seg.Points) < 2 {
		return nil, fmt.Errorf("segment %d has %d points: %w", seg.ID, len(seg.Points), ErrMalformedInput)
	}
	if act.Distance != nil && act.LatLng != nil && len(act.Distance) != len(act.LatLng) {
		return nil, fmt.Errorf("activity %d has %d positions but %d distances: %w",
			act.ID, len(act.LatLng), len(act.Distance), ErrMalformedInput)
	}

	// Stage 0: eligibility
	if act.LatLng == nil || act.Bounds == nil {
		logger.Debug("no match: activity has no GPS track")
		return []Match{}, nil
	}
	if !act.Bounds.Contains(seg.Bounds) {
		logger.Debug("no match: segment outside activity bounds")
		return []Match{}, nil
	}

	// Stage 1: endpoint approaches
	starts, ends := endpointCandidates(act.LatLng, seg, opts.ProximityMeters)
	if len(starts) == 0 || len(ends) == 0 {
		logger.Debug("no match: endpoints not approached",
			zap.Int("starts", len(starts)), zap.Int("ends", len(ends)))
		return []Match{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: a start after every end, or an end before every start, is useless
	maxEnd := lo.Max(ends)
	starts = lo.Filter(starts, func(i int, _ int) bool { return i < maxEnd })
	if len(starts) == 0 {
		logger.Debug("no match: every start follows the last end")
		return []Match{}, nil
	}
	minStart := lo.Min(starts)
	ends = lo.Filter(ends, func(i int, _ int) bool { return i > minStart })
	if len(ends) == 0 {
		logger.Debug("no match: every end precedes the first start")
		return []Match{}, nil
	}

	// Stage 3: ridden distance must agree with the segment distance
	candidates := distanceConsistent(act, seg.DistanceMeters, starts, ends, opts.DistanceToleranceMeters)
	if len(candidates) == 0 {
		logger.Debug("no match: no range has the segment distance")
		return []Match{}, nil
	}

	// Stage 4: the polyline must be traced inside the range
	sampled := samplePolyline(seg.Points, opts.Stride(len(seg.Points)))
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if tracesPolyline(act.LatLng[c.StartIndex:c.EndIndex+1], sampled, opts.ProximityMeters) {
			matches = append(matches, c)
		}
	}

	if len(matches) == 0 {
		logger.Debug("no match: shape check failed", zap.Int("candidates", len(candidates)))
	}
	return matches, nil
}

// approach tracks one pass of the track near a target point
type approach struct {
	target    geo.LatLng
	inside    bool
	best      int
	bestDist  float64
	threshold float64
	found     []int
}

func (a *approach) visit(i int, p geo.LatLng) {
	d := geo.Distance(p, a.target)
	if !a.inside {
		if d <= a.threshold {
			a.inside = true
			a.best, a.bestDist = i, d
		}
		return
	}
	if d > a.threshold {
		a.exit()
		return
	}
	if d < a.bestDist {
		a.best, a.bestDist = i, d
	}
}

// exit records the closest index of the current approach, if any
func (a *approach) exit() {
	if a.inside {
		a.found = append(a.found, a.best)
		a.inside = false
	}
}

// endpointCandidates scans the track once and returns, for the segment's
// first and last point, the closest index of every approach within
// threshold. Missing fixes are skipped. Positions outside the segment box
// grown by threshold cannot be within threshold of either endpoint.
func endpointCandidates(track []geo.NullLatLng, seg *store.Segment, threshold float64) (starts, ends []int) {
	first := &approach{target: seg.Points[0], threshold: threshold}
	last := &approach{target: seg.Points[len(seg.Points)-1], threshold: threshold}
	window := seg.Bounds.Expand(threshold)

	for i, p := range track {
		if !p.Valid {
			continue
		}
		if !window.ContainsPoint(p.LatLng) {
			first.exit()
			last.exit()
			continue
		}
		first.visit(i, p.LatLng)
		last.visit(i, p.LatLng)
	}

	// A ride that ends inside the radius still passed its closest point
	first.exit()
	last.exit()

	return first.found, last.found
}

// distanceConsistent pairs every start with every later end whose
// cumulative distance delta is within tolerance of want.
func distanceConsistent(act *store.Activity, want float64, starts, ends []int, tolerance float64) []Match {
	var out []Match
	for _, s := range starts {
		from, ok := act.Distance.At(s).Get()
		if !ok {
			continue
		}
		for _, e := range ends {
			if e <= s {
				continue
			}
			to, ok := act.Distance.At(e).Get()
			if !ok {
				continue
			}
			if math.Abs(to-from-want) < tolerance {
				out = append(out, Match{StartIndex: s, EndIndex: e})
			}
		}
	}
	return out
}

// samplePolyline takes every stride-th point and always the last one
func samplePolyline(points []geo.LatLng, stride int) []geo.LatLng {
	if stride < 1 {
		stride = 1
	}
	out := make([]geo.LatLng, 0, len(points)/stride+2)
	for i := 0; i < len(points); i += stride {
		out = append(out, points[i])
	}
	if (len(points)-1)%stride != 0 {
		out = append(out, points[len(points)-1])
	}
	return out
}

// tracesPolyline reports whether every sampled point lies within threshold
// of some fix in the track range.
func tracesPolyline(track []geo.NullLatLng, sampled []geo.LatLng, threshold float64) bool {
	for _, sp := range sampled {
		onTrack := lo.ContainsBy(track, func(p geo.NullLatLng) bool {
			return p.Valid && geo.Distance(p.LatLng, sp) <= threshold
		})
		if !onTrack {
			return false
		}
	}
	return true
}
