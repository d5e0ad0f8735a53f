package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ridelog/internal/segment"
	"ridelog/internal/store"
)

// ScanOptions configures segment scans
type ScanOptions struct {
	Match segment.MatchOptions
	// Workers bounds concurrent matcher runs; 0 means one per CPU
	Workers int
	Logger  *zap.Logger
}

// ScanResult summarizes a batch of segment/activity pairs
type ScanResult struct {
	Pairs   int // pairs that passed the bounding box query
	Matches int
	Saved   int
	Errors  []error
}

// SegmentService matches segments against activities and stores results
type SegmentService struct {
	activities ActivityRepository
	segments   SegmentRepository
	sink       ResultSink
	opts       ScanOptions
	logger     *zap.Logger
}

// NewSegmentService creates a segment service
func NewSegmentService(activities ActivityRepository, segments SegmentRepository, sink ResultSink, opts ScanOptions) *SegmentService {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Match.Logger == nil {
		opts.Match.Logger = opts.Logger
	}
	return &SegmentService{
		activities: activities,
		segments:   segments,
		sink:       sink,
		opts:       opts,
		logger:     opts.Logger,
	}
}

// CreateSegment stores a new segment and scans every activity for it
func (s *SegmentService) CreateSegment(ctx context.Context, seg *store.Segment) (*ScanResult, error) {
	if err := s.segments.CreateSegment(ctx, seg); err != nil {
		return nil, fmt.Errorf("creating segment: %w", err)
	}
	return s.ScanSegment(ctx, seg.ID)
}

// ScanSegment replaces the results of a segment by matching it against
// every activity of its owner whose bounds contain it.
func (s *SegmentService) ScanSegment(ctx context.Context, segmentID int64) (*ScanResult, error) {
	seg, err := s.segments.GetSegment(ctx, segmentID)
	if err != nil {
		return nil, fmt.Errorf("loading segment %d: %w", segmentID, err)
	}

	ids, err := s.activities.ListActivitiesContaining(ctx, seg.UserID, seg.Bounds)
	if err != nil {
		return nil, fmt.Errorf("finding activities for segment %d: %w", segmentID, err)
	}
	if err := s.sink.DeleteSegmentResults(ctx, segmentID); err != nil {
		return nil, fmt.Errorf("clearing results of segment %d: %w", segmentID, err)
	}

	result, err := s.run(ctx, len(ids), func(i int) (*store.Segment, *store.Activity, error) {
		act, err := s.activities.GetActivity(ctx, ids[i])
		if err != nil {
			return nil, nil, fmt.Errorf("loading activity %d: %w", ids[i], err)
		}
		return seg, act, nil
	})

	s.logger.Info("segment scanned",
		zap.Int64("segment_id", segmentID),
		zap.Int("activities", result.Pairs),
		zap.Int("matches", result.Matches),
		zap.Int("errors", len(result.Errors)))
	return result, err
}

// ScanActivity replaces the results of an activity by matching it against
// every segment of its owner inside its bounds.
func (s *SegmentService) ScanActivity(ctx context.Context, activityID int64) (*ScanResult, error) {
	act, err := s.activities.GetActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("loading activity %d: %w", activityID, err)
	}
	if err := s.sink.DeleteActivitySegmentResults(ctx, activityID); err != nil {
		return nil, fmt.Errorf("clearing results of activity %d: %w", activityID, err)
	}
	if act.Bounds == nil {
		s.logger.Debug("activity has no GPS track", zap.Int64("activity_id", activityID))
		return &ScanResult{}, nil
	}

	ids, err := s.segments.ListSegmentsWithin(ctx, act.UserID, *act.Bounds)
	if err != nil {
		return nil, fmt.Errorf("finding segments for activity %d: %w", activityID, err)
	}

	result, err := s.run(ctx, len(ids), func(i int) (*store.Segment, *store.Activity, error) {
		seg, err := s.segments.GetSegment(ctx, ids[i])
		if err != nil {
			return nil, nil, fmt.Errorf("loading segment %d: %w", ids[i], err)
		}
		return seg, act, nil
	})

	s.logger.Info("activity scanned",
		zap.Int64("activity_id", activityID),
		zap.Int("segments", result.Pairs),
		zap.Int("matches", result.Matches),
		zap.Int("errors", len(result.Errors)))
	return result, err
}

// outcome is what one pair sends to the writer
type outcome struct {
	results []store.SegmentResult
	err     error
}

// run matches n pairs on the worker pool. Results flow over a channel to a
// single writer so the store sees one writer at a time. Failed pairs are
// collected; only cancellation stops the batch.
func (s *SegmentService) run(ctx context.Context, n int, load func(i int) (*store.Segment, *store.Activity, error)) (*ScanResult, error) {
	result := &ScanResult{}
	outcomes := make(chan outcome)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for o := range outcomes {
			result.Pairs++
			if o.err != nil {
				result.Errors = append(result.Errors, o.err)
				continue
			}
			result.Matches += len(o.results)
			for i := range o.results {
				r := &o.results[i]
				if err := s.sink.SaveSegmentResult(ctx, r); err != nil {
					s.logger.Error("saving segment result", zap.Error(err),
						zap.Int64("segment_id", r.SegmentID), zap.Int64("activity_id", r.ActivityID))
					result.Errors = append(result.Errors, fmt.Errorf("saving result of segment %d on activity %d: %w",
						r.SegmentID, r.ActivityID, err))
					continue
				}
				result.Saved++
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			seg, act, err := load(i)
			if err != nil {
				outcomes <- outcome{err: err}
				return nil
			}

			matches, err := segment.FindMatches(gctx, seg, act, s.opts.Match)
			switch {
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			case err != nil:
				outcomes <- outcome{err: fmt.Errorf("segment %d on activity %d: %w", seg.ID, act.ID, err)}
				return nil
			}
			outcomes <- outcome{results: segment.BuildResults(seg, act, matches)}
			return nil
		})
	}

	err := g.Wait()
	close(outcomes)
	<-done

	if err == nil {
		err = ctx.Err()
	}
	return result, err
}
