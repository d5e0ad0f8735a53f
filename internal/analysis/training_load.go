package analysis

import (
	"sort"
	"time"
)

// Time constants of the fitness and fatigue averages, in days
const (
	CTLDays = 42
	ATLDays = 7
)

// DailyLoad represents training load for a single day
type DailyLoad struct {
	Date time.Time
	TSS  float64
}

// FitnessMetrics represents CTL/ATL/TSB for a day
type FitnessMetrics struct {
	Date time.Time
	TSS  float64 // load of the day itself
	CTL  float64 // Chronic Training Load (42-day) - "Fitness"
	ATL  float64 // Acute Training Load (7-day) - "Fatigue"
	TSB  float64 // Training Stress Balance (yesterday's CTL - ATL) - "Form"
}

// CalculateFitnessTrend computes CTL/ATL/TSB day by day from the first load
// through until (inclusive). Days without a ride carry zero load. A zero
// until ends the trend at the last load.
func CalculateFitnessTrend(dailyLoads []DailyLoad, until time.Time) []FitnessMetrics {
	if len(dailyLoads) == 0 {
		return nil
	}

	loads := append([]DailyLoad(nil), dailyLoads...)
	sort.Slice(loads, func(i, j int) bool {
		return loads[i].Date.Before(loads[j].Date)
	})

	// Sum multiple activities on same day
	loadMap := make(map[string]float64)
	for _, dl := range loads {
		loadMap[dayKey(dl.Date)] += dl.TSS
	}

	startDate := truncateDay(loads[0].Date)
	endDate := truncateDay(loads[len(loads)-1].Date)
	if !until.IsZero() && truncateDay(until).After(endDate) {
		endDate = truncateDay(until)
	}

	var metrics []FitnessMetrics
	var ctl, atl float64
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		tss := loadMap[dayKey(d)]

		// Form is measured going into the day
		tsb := ctl - atl
		ctl += (tss - ctl) / CTLDays
		atl += (tss - atl) / ATLDays

		metrics = append(metrics, FitnessMetrics{
			Date: d,
			TSS:  tss,
			CTL:  ctl,
			ATL:  atl,
			TSB:  tsb,
		})
	}

	return metrics
}

// GetCurrentFitness returns the most recent CTL/ATL/TSB values
func GetCurrentFitness(dailyLoads []DailyLoad, until time.Time) FitnessMetrics {
	metrics := CalculateFitnessTrend(dailyLoads, until)
	if len(metrics) == 0 {
		return FitnessMetrics{}
	}
	return metrics[len(metrics)-1]
}

// FormDescription returns a human-readable description of TSB
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
