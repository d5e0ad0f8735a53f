package analysis

import (
	"math"
	"time"

	"github.com/samber/lo"

	"ridelog/internal/store"
)

// ThresholdAt resolves the threshold in effect at date: the most recent
// entry dated strictly before date, else the earliest entry strictly after
// it. An entry dated exactly at date is never used. ok is false when
// nothing resolves.
func ThresholdAt(history []store.ThresholdEntry, date time.Time) (value float64, ok bool) {
	before := lo.Filter(history, func(e store.ThresholdEntry, _ int) bool {
		return e.Date.Before(date)
	})
	if len(before) > 0 {
		latest := lo.MaxBy(before, func(a, b store.ThresholdEntry) bool {
			return a.Date.After(b.Date)
		})
		return latest.Value, true
	}

	after := lo.Filter(history, func(e store.ThresholdEntry, _ int) bool {
		return e.Date.After(date)
	})
	if len(after) > 0 {
		earliest := lo.MinBy(after, func(a, b store.ThresholdEntry) bool {
			return a.Date.Before(b.Date)
		})
		return earliest.Value, true
	}

	return 0, false
}

// IntensityFactor is normalized power relative to FTP
func IntensityFactor(np, ftp float64) float64 {
	if ftp <= 0 {
		return 0
	}
	return np / ftp
}

// TrainingStressScore scores a ride relative to one hour at FTP (= 100)
func TrainingStressScore(durationSeconds int, np, ftp float64) int {
	if ftp <= 0 {
		return 0
	}
	intensity := IntensityFactor(np, ftp)
	return int(math.Round(float64(durationSeconds) * np * intensity / (ftp * 3600) * 100))
}
