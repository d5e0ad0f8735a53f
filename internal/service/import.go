package service

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"ridelog/internal/analysis"
	"ridelog/internal/source"
	"ridelog/internal/store"
	"ridelog/internal/stream"
)

// ImportOptions carries the athlete settings applied to every import
type ImportOptions struct {
	UserID int64
	Logger *zap.Logger
}

// ImportResult reports one imported activity
type ImportResult struct {
	Activity *store.Activity
	Scan     *ScanResult
}

// ImportService computes, stores and scans new activities
type ImportService struct {
	activities ActivityRepository
	athletes   AthleteRepository
	scanner    *SegmentService
	opts       ImportOptions
	logger     *zap.Logger
}

// NewImportService creates an import service. scanner may be nil to skip
// segment matching.
func NewImportService(activities ActivityRepository, athletes AthleteRepository, scanner *SegmentService, opts ImportOptions) *ImportService {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &ImportService{
		activities: activities,
		athletes:   athletes,
		scanner:    scanner,
		opts:       opts,
		logger:     opts.Logger,
	}
}

// ImportFIT decodes a FIT file and imports it
func (s *ImportService) ImportFIT(ctx context.Context, r io.Reader, title string) (*ImportResult, error) {
	ride, err := source.DecodeFIT(r)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, ride, title)
}

// Import computes the metrics of a decoded activity, stores it and matches
// it against the athlete's segments.
func (s *ImportService) Import(ctx context.Context, decoded source.Activity, title string) (*ImportResult, error) {
	history, err := s.athletes.ThresholdHistory(ctx, s.opts.UserID, store.ThresholdFTP)
	if err != nil {
		return nil, fmt.Errorf("loading FTP history: %w", err)
	}

	act, err := analysis.ComputeActivityMetrics(ctx, decoded, history, analysis.ComputeOptions{
		UserID: s.opts.UserID,
		Title:  title,
		Logger: s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("computing metrics: %w", err)
	}

	if err := s.activities.SaveActivity(ctx, act); err != nil {
		return nil, fmt.Errorf("saving activity: %w", err)
	}
	s.logger.Info("activity imported",
		zap.Int64("activity_id", act.ID),
		zap.String("title", act.Title),
		zap.Int("duration_seconds", act.DurationSeconds))

	result := &ImportResult{Activity: act}
	if s.scanner == nil {
		return result, nil
	}
	result.Scan, err = s.scanner.ScanActivity(ctx, act.ID)
	if err != nil {
		return result, fmt.Errorf("scanning segments: %w", err)
	}
	return result, nil
}

// Recompute rebuilds the metrics of a stored activity, e.g. after its FTP
// history changed. Streams and laps are kept.
func (s *ImportService) Recompute(ctx context.Context, activityID int64) (*store.Activity, error) {
	act, err := s.activities.GetActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("loading activity %d: %w", activityID, err)
	}

	history, err := s.athletes.ThresholdHistory(ctx, act.UserID, store.ThresholdFTP)
	if err != nil {
		return nil, fmt.Errorf("loading FTP history: %w", err)
	}

	fresh, err := analysis.ComputeActivityMetrics(ctx, storedRide(act), history, analysis.ComputeOptions{
		UserID: act.UserID,
		Title:  act.Title,
		Logger: s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("recomputing activity %d: %w", activityID, err)
	}

	act.CriticalPower = fresh.CriticalPower
	act.CriticalHeartRate = fresh.CriticalHeartRate
	act.NormalizedPower = fresh.NormalizedPower
	act.FTP = fresh.FTP
	act.IntensityFactor = fresh.IntensityFactor
	act.TSS = fresh.TSS

	if err := s.activities.SaveActivity(ctx, act); err != nil {
		return nil, fmt.Errorf("saving activity %d: %w", activityID, err)
	}
	return act, nil
}

// storedRide exposes a stored activity's streams as a decoded activity
func storedRide(act *store.Activity) *source.Ride {
	ride := &source.Ride{
		Start:    act.Date,
		Distance: act.DistanceMeters,
		Duration: act.DurationSeconds,
		Track:    act.LatLng,
	}
	for _, name := range stream.Names {
		if s := act.Stream(name); s != nil {
			ride.SetStream(name, s)
		}
	}
	return ride
}
