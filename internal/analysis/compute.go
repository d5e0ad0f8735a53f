package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ridelog/internal/geo"
	"ridelog/internal/source"
	"ridelog/internal/store"
	"ridelog/internal/stream"
)

// ErrMalformedInput is returned when the decoded streams disagree in length
var ErrMalformedInput = errors.New("malformed input")

// ComputeOptions carries the per-athlete context of a metrics run
type ComputeOptions struct {
	UserID int64
	Title  string // defaults to "<Weekday> Ride"
	Logger *zap.Logger
}

// summaryStats maps decoded statistics onto activity fields
var summaryStats = []struct {
	name  string
	field func(a *store.Activity) **float64
}{
	{source.StatAvgPower, func(a *store.Activity) **float64 { return &a.AvgPower }},
	{source.StatMaxPower, func(a *store.Activity) **float64 { return &a.MaxPower }},
	{source.StatAvgHeartRate, func(a *store.Activity) **float64 { return &a.AvgHeartRate }},
	{source.StatMaxHeartRate, func(a *store.Activity) **float64 { return &a.MaxHeartRate }},
	{source.StatAvgCadence, func(a *store.Activity) **float64 { return &a.AvgCadence }},
	{source.StatMaxCadence, func(a *store.Activity) **float64 { return &a.MaxCadence }},
	{source.StatAvgSpeed, func(a *store.Activity) **float64 { return &a.AvgSpeed }},
	{source.StatMaxSpeed, func(a *store.Activity) **float64 { return &a.MaxSpeed }},
}

// ComputeActivityMetrics turns a decoded recording into an activity record
// with curves, load metrics, bounds and laps. Metrics that cannot be computed
// are left nil; the call only fails on malformed input or cancellation.
func ComputeActivityMetrics(ctx context.Context, decoded source.Activity, ftpHistory []store.ThresholdEntry, opts ComputeOptions) (*store.Activity, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	start := decoded.StartTime()
	a := &store.Activity{
		UserID:          opts.UserID,
		Title:           opts.Title,
		Date:            start,
		DurationSeconds: decoded.DurationSeconds(),
		DistanceMeters:  decoded.DistanceMeters(),
	}
	if a.Title == "" {
		a.Title = DefaultTitle(start)
	}

	// Streams with no non-zero reading are treated as absent
	for _, name := range stream.Names {
		if s, ok := decoded.Stream(name); ok && s.HasSignal() {
			a.SetStream(name, s)
		}
	}
	if track, ok := decoded.LatLng(); ok && hasFix(track) {
		a.LatLng = track
	}
	if err := checkLengths(a); err != nil {
		return nil, err
	}

	if a.LatLng != nil {
		if box, ok := geo.BoundsOf(a.LatLng); ok {
			a.Bounds = &box
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if a.Power != nil {
		a.CriticalPower = CriticalCurve(a.Power)

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ftp, ok := ThresholdAt(ftpHistory, start)
		if ok {
			a.FTP = &ftp
		}

		np, err := NormalizedPower(a.Power)
		switch {
		case errors.Is(err, ErrInsufficientData):
			logger.Debug("skipping normalized power",
				zap.Int("samples", len(a.Power)), zap.Error(err))
		case err != nil:
			return nil, fmt.Errorf("computing normalized power: %w", err)
		default:
			a.NormalizedPower = &np
			if ok && ftp > 0 {
				intensity := IntensityFactor(np, ftp)
				tss := TrainingStressScore(a.DurationSeconds, np, ftp)
				a.IntensityFactor = &intensity
				a.TSS = &tss
			} else {
				logger.Debug("no FTP for activity date, skipping TSS", zap.Time("date", start))
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if a.HeartRate != nil {
		a.CriticalHeartRate = CriticalCurve(a.HeartRate)
	}

	a.Laps = LapsFromSource(decoded.Laps(), start, a.SampleCount())

	// Zero-valued device statistics carry no information
	for _, st := range summaryStats {
		if v, ok := decoded.Stat(st.name); ok && v != 0 {
			value := v
			*st.field(a) = &value
		}
	}

	return a, nil
}

// DefaultTitle names a ride after the weekday it started on
func DefaultTitle(start time.Time) string {
	return start.Weekday().String() + " Ride"
}

func hasFix(track []geo.NullLatLng) bool {
	for _, p := range track {
		if p.Valid && (p.Lat != 0 || p.Lng != 0) {
			return true
		}
	}
	return false
}

// checkLengths verifies that all present streams share one length
func checkLengths(a *store.Activity) error {
	n := -1
	if a.LatLng != nil {
		n = len(a.LatLng)
	}
	for _, name := range stream.Names {
		s := a.Stream(name)
		if s == nil {
			continue
		}
		if n == -1 {
			n = len(s)
			continue
		}
		if len(s) != n {
			return fmt.Errorf("%s stream has %d samples, expected %d: %w", name, len(s), n, ErrMalformedInput)
		}
	}
	return nil
}
