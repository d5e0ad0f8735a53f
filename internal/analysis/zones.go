package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"ridelog/internal/stream"
)

// Zone systems
const (
	ZoneSystemCoggan    = "coggan"
	ZoneSystemPolarized = "polarized"
)

// Zone is an inclusive range of whole values; End is +Inf for the top zone
type Zone struct {
	Name  string
	Start float64
	End   float64
}

// PowerZones returns the power zones of a system for an FTP. Unknown
// systems fall back to Coggan.
func PowerZones(ftp float64, system string) []Zone {
	if strings.EqualFold(system, ZoneSystemPolarized) {
		return PolarizedPowerZones(ftp)
	}
	return CogganPowerZones(ftp)
}

// CogganPowerZones returns the six classic power zones
func CogganPowerZones(ftp float64) []Zone {
	return buildZones(ftp, []string{
		"Zone 1 (Active Recovery)",
		"Zone 2 (Endurance)",
		"Zone 3 (Tempo)",
		"Zone 4 (Lactate Threshold)",
		"Zone 5 (VO2 Max)",
		"Zone 6 (Anaerobic Capacity)",
	}, []float64{0.55, 0.75, 0.9, 1.05, 1.2})
}

// PolarizedPowerZones returns the three-zone model
func PolarizedPowerZones(ftp float64) []Zone {
	return buildZones(ftp, []string{"Low", "Moderate", "High"}, []float64{0.8, 1.0})
}

// HeartRateZones returns heart rate zones from lactate threshold heart rate.
// Coggan is the only heart rate system.
func HeartRateZones(lthr float64, system string) []Zone {
	return buildZones(lthr, []string{
		"Zone 1 (Active Recovery)",
		"Zone 2 (Endurance)",
		"Zone 3 (Tempo)",
		"Zone 4 (Lactate Threshold)",
		"Zone 5 (VO2 Max)",
	}, []float64{0.68, 0.83, 0.94, 1.05})
}

// buildZones turns upper-bound fractions of a threshold into contiguous
// whole-number zones.
func buildZones(threshold float64, names []string, fractions []float64) []Zone {
	zones := make([]Zone, len(names))
	start := 0.0
	for i, name := range names {
		end := math.Inf(1)
		if i < len(fractions) {
			end = math.Round(threshold * fractions[i])
		}
		zones[i] = Zone{Name: name, Start: start, End: end}
		start = end + 1
	}
	return zones
}

// TimeInZones counts the seconds of s spent in each zone. Missing samples
// are skipped; values between one zone's End and the next Start count
// toward the lower zone.
func TimeInZones(s stream.Stream, zones []Zone) []int {
	out := make([]int, len(zones))
	values := s.Present()
	if len(values) == 0 || len(zones) == 0 {
		return out
	}
	sort.Float64s(values)

	dividers := make([]float64, 0, len(zones)+1)
	dividers = append(dividers, math.Inf(-1))
	for _, z := range zones[1:] {
		dividers = append(dividers, z.Start)
	}
	dividers = append(dividers, math.Inf(1))

	counts := stat.Histogram(nil, dividers, values, nil)
	for i, c := range counts {
		out[i] = int(c)
	}
	return out
}

// String formats a zone as "name: start-end"
func (z Zone) String() string {
	if math.IsInf(z.End, 1) {
		return fmt.Sprintf("%s: %.0f+", z.Name, z.Start)
	}
	return fmt.Sprintf("%s: %.0f-%.0f", z.Name, z.Start, z.End)
}
