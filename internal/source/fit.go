package source

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/tormoder/fit"

	"ridelog/internal/geo"
	"ridelog/internal/stream"
)

// ErrNoRecords is returned for a FIT activity without timestamped records
var ErrNoRecords = errors.New("activity has no timestamped records")

// maxGapSeconds bounds the resampled series so a corrupt timestamp cannot
// allocate days of empty samples.
const maxGapSeconds = 48 * 60 * 60

// DecodeFIT reads a FIT activity file and resamples its records onto a
// one-second grid starting at the session start. Seconds without a record
// are missing samples.
func DecodeFIT(r io.Reader) (*Ride, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	records := make([]*fit.RecordMsg, 0, len(activity.Records))
	for _, rec := range activity.Records {
		if rec != nil && validTime(rec.Timestamp) {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	ride := &Ride{Start: records[0].Timestamp}
	var session *fit.SessionMsg
	if len(activity.Sessions) > 0 {
		session = activity.Sessions[0]
		if validTime(session.StartTime) && session.StartTime.Before(ride.Start) {
			ride.Start = session.StartTime
		}
	}

	n := int(records[len(records)-1].Timestamp.Sub(ride.Start).Seconds()) + 1
	if n > maxGapSeconds {
		return nil, fmt.Errorf("activity spans %d seconds, more than %d", n, maxGapSeconds)
	}

	power := make(stream.Stream, n)
	heartRate := make(stream.Stream, n)
	cadence := make(stream.Stream, n)
	speed := make(stream.Stream, n)
	elevation := make(stream.Stream, n)
	grade := make(stream.Stream, n)
	distance := make(stream.Stream, n)
	track := make([]geo.NullLatLng, n)

	// Later records at the same second overwrite earlier ones
	for _, rec := range records {
		i := int(rec.Timestamp.Sub(ride.Start).Seconds())
		if i < 0 || i >= n {
			continue
		}
		if rec.Power != math.MaxUint16 {
			power[i] = stream.Of(float64(rec.Power))
		}
		if rec.HeartRate != math.MaxUint8 {
			heartRate[i] = stream.Of(float64(rec.HeartRate))
		}
		if rec.Cadence != math.MaxUint8 {
			cadence[i] = stream.Of(float64(rec.Cadence))
		}
		if v, ok := recordSpeed(rec); ok {
			speed[i] = stream.Of(v * 3.6)
		}
		if v, ok := recordAltitude(rec); ok {
			elevation[i] = stream.Of(v)
		}
		if v := rec.GetGradeScaled(); finite(v) {
			grade[i] = stream.Of(v)
		}
		if v := rec.GetDistanceScaled(); finite(v) {
			distance[i] = stream.Of(v)
		}
		if !rec.PositionLat.Invalid() && !rec.PositionLong.Invalid() {
			track[i] = geo.Point(rec.PositionLat.Degrees(), rec.PositionLong.Degrees())
		}
	}

	ride.SetStream(stream.Power, power)
	ride.SetStream(stream.HeartRate, heartRate)
	ride.SetStream(stream.Cadence, cadence)
	ride.SetStream(stream.Speed, speed)
	ride.SetStream(stream.Elevation, elevation)
	ride.SetStream(stream.Grade, grade)
	ride.SetStream(stream.Distance, distance)
	ride.Track = track

	ride.Duration = n - 1
	if last, ok := distance.Max(); ok {
		ride.Distance = last
	}
	if session != nil {
		applySession(ride, session)
	}

	for _, lap := range activity.Laps {
		if lap == nil || !validTime(lap.StartTime) || !validTime(lap.Timestamp) {
			continue
		}
		ride.LapList = append(ride.LapList, Lap{Start: lap.StartTime, End: lap.Timestamp})
	}

	return ride, nil
}

func applySession(ride *Ride, session *fit.SessionMsg) {
	if v := session.GetTotalTimerTimeScaled(); finite(v) && v > 0 {
		ride.Duration = int(math.Round(v))
	}
	if v := session.GetTotalDistanceScaled(); finite(v) && v > 0 {
		ride.Distance = v
	}

	if session.AvgPower != math.MaxUint16 {
		ride.SetStat(StatAvgPower, float64(session.AvgPower))
	}
	if session.MaxPower != math.MaxUint16 {
		ride.SetStat(StatMaxPower, float64(session.MaxPower))
	}
	if session.AvgHeartRate != math.MaxUint8 {
		ride.SetStat(StatAvgHeartRate, float64(session.AvgHeartRate))
	}
	if session.MaxHeartRate != math.MaxUint8 {
		ride.SetStat(StatMaxHeartRate, float64(session.MaxHeartRate))
	}
	if session.AvgCadence != math.MaxUint8 {
		ride.SetStat(StatAvgCadence, float64(session.AvgCadence))
	}
	if session.MaxCadence != math.MaxUint8 {
		ride.SetStat(StatMaxCadence, float64(session.MaxCadence))
	}

	avg := session.GetEnhancedAvgSpeedScaled()
	if !finite(avg) {
		avg = session.GetAvgSpeedScaled()
	}
	if finite(avg) {
		ride.SetStat(StatAvgSpeed, avg*3.6)
	}
	top := session.GetEnhancedMaxSpeedScaled()
	if !finite(top) {
		top = session.GetMaxSpeedScaled()
	}
	if finite(top) {
		ride.SetStat(StatMaxSpeed, top*3.6)
	}
}

func recordSpeed(rec *fit.RecordMsg) (float64, bool) {
	if v := rec.GetEnhancedSpeedScaled(); finite(v) && v >= 0 {
		return v, true
	}
	if v := rec.GetSpeedScaled(); finite(v) && v >= 0 {
		return v, true
	}
	return 0, false
}

func recordAltitude(rec *fit.RecordMsg) (float64, bool) {
	if v := rec.GetEnhancedAltitudeScaled(); finite(v) {
		return v, true
	}
	if v := rec.GetAltitudeScaled(); finite(v) {
		return v, true
	}
	return 0, false
}

func validTime(t time.Time) bool {
	return !t.IsZero() && !fit.IsBaseTime(t)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
