package service

import (
	"context"

	"ridelog/internal/geo"
	"ridelog/internal/store"
)

// ActivityRepository stores computed activities
type ActivityRepository interface {
	SaveActivity(ctx context.Context, a *store.Activity) error
	GetActivity(ctx context.Context, id int64) (*store.Activity, error)
	ListActivitiesContaining(ctx context.Context, userID int64, box geo.BoundingBox) ([]int64, error)
}

// SegmentRepository stores segments
type SegmentRepository interface {
	CreateSegment(ctx context.Context, seg *store.Segment) error
	GetSegment(ctx context.Context, id int64) (*store.Segment, error)
	ListSegmentsWithin(ctx context.Context, userID int64, box geo.BoundingBox) ([]int64, error)
}

// ResultSink receives segment results. Each call is its own transaction.
type ResultSink interface {
	SaveSegmentResult(ctx context.Context, r *store.SegmentResult) error
	DeleteSegmentResults(ctx context.Context, segmentID int64) error
	DeleteActivitySegmentResults(ctx context.Context, activityID int64) error
}

// AthleteRepository provides the dated threshold histories of an athlete
type AthleteRepository interface {
	ThresholdHistory(ctx context.Context, userID int64, kind store.ThresholdKind) ([]store.ThresholdEntry, error)
}

var (
	_ ActivityRepository = (*store.Store)(nil)
	_ SegmentRepository  = (*store.Store)(nil)
	_ ResultSink         = (*store.Store)(nil)
	_ AthleteRepository  = (*store.Store)(nil)
)
