// Package source defines the decoded activity contract consumed by the
// metrics engine and the adapters that produce it.
package source

import (
	"time"

	"ridelog/internal/geo"
	"ridelog/internal/stream"
)

// Summary statistic names
const (
	StatAvgPower     = "avg_power"
	StatMaxPower     = "max_power"
	StatAvgHeartRate = "avg_heart_rate"
	StatMaxHeartRate = "max_heart_rate"
	StatAvgCadence   = "avg_cadence"
	StatMaxCadence   = "max_cadence"
	StatAvgSpeed     = "avg_speed" // km/h
	StatMaxSpeed     = "max_speed" // km/h
)

// Lap is a lap boundary pair as recorded by the device
type Lap struct {
	Start time.Time
	End   time.Time
}

// Activity is a decoded recording. Stream indices are elapsed seconds from
// StartTime, and every returned stream has the same length.
type Activity interface {
	StartTime() time.Time
	DistanceMeters() float64
	DurationSeconds() int
	// Stat returns a device-computed summary value
	Stat(name string) (float64, bool)
	// Stream returns a per-second series by name (see stream.Names)
	Stream(name string) (stream.Stream, bool)
	LatLng() ([]geo.NullLatLng, bool)
	Laps() []Lap
}

// Ride is an in-memory Activity. Adapters fill it; tests build it directly.
type Ride struct {
	Start    time.Time
	Distance float64 // meters
	Duration int     // seconds
	Stats    map[string]float64
	Streams  map[string]stream.Stream
	Track    []geo.NullLatLng
	LapList  []Lap
}

var _ Activity = (*Ride)(nil)

func (r *Ride) StartTime() time.Time    { return r.Start }
func (r *Ride) DistanceMeters() float64 { return r.Distance }
func (r *Ride) DurationSeconds() int    { return r.Duration }
func (r *Ride) Laps() []Lap             { return r.LapList }

func (r *Ride) Stat(name string) (float64, bool) {
	v, ok := r.Stats[name]
	return v, ok
}

func (r *Ride) Stream(name string) (stream.Stream, bool) {
	s, ok := r.Streams[name]
	return s, ok && s != nil
}

func (r *Ride) LatLng() ([]geo.NullLatLng, bool) {
	return r.Track, r.Track != nil
}

// SetStat records a summary value
func (r *Ride) SetStat(name string, v float64) {
	if r.Stats == nil {
		r.Stats = make(map[string]float64)
	}
	r.Stats[name] = v
}

// SetStream records a per-second series
func (r *Ride) SetStream(name string, s stream.Stream) {
	if r.Streams == nil {
		r.Streams = make(map[string]stream.Stream)
	}
	r.Streams[name] = s
}
