package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
)

// Colors
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB") // Light gray
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor).
			MarginTop(1)

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(20)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(textColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

const (
	metersPerKm = 1000.0
	chartWidth  = 60
	chartHeight = 8
)

// renderMetric renders a label: value pair
func renderMetric(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
	)
}

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Render(title))
}

func printSection(w io.Writer, title string) {
	fmt.Fprintln(w, sectionStyle.Render(title))
}

func printMetric(w io.Writer, label, value string) {
	fmt.Fprintln(w, renderMetric(label, value))
}

func printHeader(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, tableHeaderStyle.Render(fmt.Sprintf(format, a...)))
}

func printError(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf(format, a...)))
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatDistance(meters float64) string {
	return fmt.Sprintf("%.1f km", meters/metersPerKm)
}

// formatOptional formats a nullable metric, "-" when absent
func formatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return humanize.Comma(int64(*v))
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// chart plots data as an ASCII line chart, downsampled to the chart width.
// Series shorter than three points render as nothing.
func chart(data []float64, precision uint) string {
	data = downsample(data, chartWidth)
	if len(data) <= 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Precision(precision),
	)
}

// downsample averages data into targetLen buckets, ignoring zeros
func downsample(data []float64, targetLen int) []float64 {
	if len(data) <= targetLen {
		return data
	}

	result := make([]float64, targetLen)
	ratio := float64(len(data)) / float64(targetLen)

	for i := 0; i < targetLen; i++ {
		start := int(float64(i) * ratio)
		end := min(int(float64(i+1)*ratio), len(data))

		sum := 0.0
		count := 0
		for j := start; j < end; j++ {
			if data[j] > 0 {
				sum += data[j]
				count++
			}
		}
		if count > 0 {
			result[i] = sum / float64(count)
		}
	}
	return result
}

// zoneBar renders a share of total as a bar of up to width cells
func zoneBar(seconds, total, width int) string {
	if total <= 0 {
		return ""
	}
	n := seconds * width / total
	return lipgloss.NewStyle().Foreground(secondaryColor).Render(strings.Repeat("█", n))
}
