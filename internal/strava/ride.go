package strava

import (
	"errors"
	"fmt"
	"time"

	"ridelog/internal/geo"
	"ridelog/internal/source"
	"ridelog/internal/stream"
)

// ErrNoStreams is returned for an activity without a time stream
var ErrNoStreams = errors.New("activity has no time stream")

// maxSpanSeconds bounds the resampled series
const maxSpanSeconds = 48 * 60 * 60

// NewRide converts an activity and its streams into a ride. Strava samples
// at irregular offsets, so each sample is placed at its time offset and
// the seconds in between are missing.
func NewRide(activity *Activity, streams *Streams) (*source.Ride, error) {
	if streams.Len() == 0 {
		return nil, ErrNoStreams
	}
	offsets := streams.Time.Data
	n := offsets[len(offsets)-1] + 1
	if n <= 0 || n > maxSpanSeconds {
		return nil, fmt.Errorf("activity %d spans %d seconds", activity.ID, n)
	}

	ride := &source.Ride{
		Start:    activity.StartDate,
		Distance: activity.Distance,
		Duration: activity.ElapsedTime,
	}

	place := func(data []*float64, scale float64) stream.Stream {
		if len(data) == 0 {
			return nil
		}
		out := make(stream.Stream, n)
		for i, v := range data {
			if i >= len(offsets) || v == nil {
				continue
			}
			if t := offsets[i]; t >= 0 && t < n {
				out[t] = stream.Of(*v * scale)
			}
		}
		return out
	}
	setStream := func(name string, data *StreamData[*float64], scale float64) {
		if data == nil {
			return
		}
		if s := place(data.Data, scale); s != nil {
			ride.SetStream(name, s)
		}
	}

	setStream(stream.Power, streams.Watts, 1)
	setStream(stream.HeartRate, streams.Heartrate, 1)
	setStream(stream.Cadence, streams.Cadence, 1)
	setStream(stream.Speed, streams.VelocitySmooth, 3.6)
	setStream(stream.Elevation, streams.Altitude, 1)
	setStream(stream.Grade, streams.GradeSmooth, 1)
	setStream(stream.Distance, streams.Distance, 1)

	if streams.LatLng != nil && len(streams.LatLng.Data) > 0 {
		track := make([]geo.NullLatLng, n)
		for i, p := range streams.LatLng.Data {
			if i >= len(offsets) || len(p) != 2 {
				continue
			}
			if t := offsets[i]; t >= 0 && t < n {
				track[t] = geo.Point(p[0], p[1])
			}
		}
		ride.Track = track
	}

	if ride.Duration == 0 {
		ride.Duration = n - 1
	}
	setStat(ride, source.StatAvgPower, activity.AverageWatts, 1)
	setStat(ride, source.StatMaxPower, activity.MaxWatts, 1)
	setStat(ride, source.StatAvgHeartRate, activity.AverageHeartrate, 1)
	setStat(ride, source.StatMaxHeartRate, activity.MaxHeartrate, 1)
	setStat(ride, source.StatAvgCadence, activity.AverageCadence, 1)
	setStat(ride, source.StatAvgSpeed, activity.AverageSpeed, 3.6)
	setStat(ride, source.StatMaxSpeed, activity.MaxSpeed, 3.6)

	for _, lap := range activity.Laps {
		ride.LapList = append(ride.LapList, source.Lap{
			Start: lap.StartDate,
			End:   lap.StartDate.Add(time.Duration(lap.ElapsedTime) * time.Second),
		})
	}

	return ride, nil
}

// setStat records non-zero summaries; Strava reports 0 for missing values
func setStat(ride *source.Ride, name string, v, scale float64) {
	if v != 0 {
		ride.SetStat(name, v*scale)
	}
}
