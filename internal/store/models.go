package store

import (
	"time"

	"ridelog/internal/geo"
	"ridelog/internal/stream"
)

// CurvePoint is the best average value sustained for Duration seconds
type CurvePoint struct {
	Duration int `json:"duration"` // seconds
	Value    int `json:"value"`
}

// Lap is a half-open range of stream indices [StartIndex, EndIndex)
type Lap struct {
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// ThresholdKind names a dated athlete threshold
type ThresholdKind string

const (
	ThresholdFTP  ThresholdKind = "ftp"
	ThresholdLTHR ThresholdKind = "lthr"
)

// ThresholdEntry is a threshold value that took effect on Date
type ThresholdEntry struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Activity is one recorded ride with its streams and derived metrics.
// Streams are either nil or the same length as every other present stream.
type Activity struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	Title           string    `db:"title"`
	Date            time.Time `db:"date"`
	DurationSeconds int       `db:"duration_seconds"`
	DistanceMeters  float64   `db:"distance_meters"`

	Power     stream.Stream
	HeartRate stream.Stream
	Cadence   stream.Stream
	Speed     stream.Stream // km/h
	Elevation stream.Stream // meters
	Grade     stream.Stream // percent
	Distance  stream.Stream // cumulative meters
	LatLng    []geo.NullLatLng

	AvgPower     *float64 `db:"avg_power"`
	MaxPower     *float64 `db:"max_power"`
	AvgHeartRate *float64 `db:"avg_heart_rate"`
	MaxHeartRate *float64 `db:"max_heart_rate"`
	AvgCadence   *float64 `db:"avg_cadence"`
	MaxCadence   *float64 `db:"max_cadence"`
	AvgSpeed     *float64 `db:"avg_speed"` // km/h
	MaxSpeed     *float64 `db:"max_speed"` // km/h

	Bounds *geo.BoundingBox // nil without GPS

	CriticalPower     []CurvePoint
	CriticalHeartRate []CurvePoint

	NormalizedPower *float64 `db:"normalized_power"`
	FTP             *float64 `db:"ftp"` // threshold in effect on Date
	IntensityFactor *float64 `db:"intensity_factor"`
	TSS             *int     `db:"tss"`

	Laps []Lap
}

// Stream returns the named scalar stream, nil when absent or unknown
func (a *Activity) Stream(name string) stream.Stream {
	switch name {
	case stream.Power:
		return a.Power
	case stream.HeartRate:
		return a.HeartRate
	case stream.Cadence:
		return a.Cadence
	case stream.Speed:
		return a.Speed
	case stream.Elevation:
		return a.Elevation
	case stream.Grade:
		return a.Grade
	case stream.Distance:
		return a.Distance
	}
	return nil
}

// SetStream assigns the named scalar stream
func (a *Activity) SetStream(name string, s stream.Stream) {
	switch name {
	case stream.Power:
		a.Power = s
	case stream.HeartRate:
		a.HeartRate = s
	case stream.Cadence:
		a.Cadence = s
	case stream.Speed:
		a.Speed = s
	case stream.Elevation:
		a.Elevation = s
	case stream.Grade:
		a.Grade = s
	case stream.Distance:
		a.Distance = s
	}
}

// SampleCount returns the length of the longest present stream
func (a *Activity) SampleCount() int {
	n := len(a.LatLng)
	for _, name := range stream.Names {
		if l := len(a.Stream(name)); l > n {
			n = l
		}
	}
	return n
}

// ActivitySummary is an activity row without streams or curves
type ActivitySummary struct {
	ID              int64
	UserID          int64
	Title           string
	Date            time.Time
	DurationSeconds int
	DistanceMeters  float64
	AvgPower        *float64
	NormalizedPower *float64
	TSS             *int
	HasGPS          bool
}

// Segment is a named route polyline. Only Name may change after creation.
type Segment struct {
	ID             int64
	UserID         int64
	Name           string
	Bounds         geo.BoundingBox
	DistanceMeters float64
	Points         []geo.LatLng
	Elevation      []float64 // nil when the source ride had none
	Grade          []float64
	Distance       []float64 // cumulative from 0
	CreatedAt      time.Time
}

// SegmentResult is one ride through a segment
type SegmentResult struct {
	ID              int64
	SegmentID       int64
	ActivityID      int64
	Date            time.Time
	StartIndex      int
	EndIndex        int
	DurationSeconds int

	AvgPower        *float64
	MaxPower        *float64
	AvgHeartRate    *float64
	MaxHeartRate    *float64
	AvgCadence      *float64
	MaxCadence      *float64
	AvgSpeed        *float64
	MaxSpeed        *float64
	AverageSpeedKmh *float64 // nil for zero duration

	Power     stream.Stream
	HeartRate stream.Stream
	Cadence   stream.Stream
	Speed     stream.Stream
}

// ActivitySegmentResult is a result placed on its segment's leaderboard
type ActivitySegmentResult struct {
	SegmentResult
	SegmentName   string
	Rank          int // 1 is fastest
	BehindSeconds int // gap to the fastest result
}
