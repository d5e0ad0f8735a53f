package analysis

import (
	"errors"
	"math"
	"sort"
	"time"

	"ridelog/internal/source"
	"ridelog/internal/store"
)

// ErrInvalidLap is returned for a lap that is empty or outside the activity
var ErrInvalidLap = errors.New("invalid lap")

// LapsFromSource converts device lap boundaries into stream index ranges.
// Laps that end up empty after clamping to [0, samples] are dropped.
func LapsFromSource(laps []source.Lap, start time.Time, samples int) []store.Lap {
	var out []store.Lap
	for _, lap := range laps {
		from := clamp(int(math.Round(lap.Start.Sub(start).Seconds())), 0, samples)
		to := clamp(int(math.Round(lap.End.Sub(start).Seconds())), 0, samples)
		if to <= from {
			continue
		}
		out = append(out, store.Lap{StartIndex: from, EndIndex: to})
	}
	sortLaps(out)
	return out
}

// AddLap inserts a manual lap and returns the list ordered by start index
func AddLap(laps []store.Lap, lap store.Lap, samples int) ([]store.Lap, error) {
	if lap.StartIndex < 0 || lap.EndIndex > samples || lap.EndIndex <= lap.StartIndex {
		return laps, ErrInvalidLap
	}
	out := append(append([]store.Lap(nil), laps...), lap)
	sortLaps(out)
	return out, nil
}

// RemoveLap drops the lap at index i of the ordered list
func RemoveLap(laps []store.Lap, i int) ([]store.Lap, error) {
	if i < 0 || i >= len(laps) {
		return laps, ErrInvalidLap
	}
	out := make([]store.Lap, 0, len(laps)-1)
	out = append(out, laps[:i]...)
	out = append(out, laps[i+1:]...)
	return out, nil
}

func sortLaps(laps []store.Lap) {
	sort.SliceStable(laps, func(i, j int) bool {
		if laps[i].StartIndex != laps[j].StartIndex {
			return laps[i].StartIndex < laps[j].StartIndex
		}
		return laps[i].EndIndex < laps[j].EndIndex
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
