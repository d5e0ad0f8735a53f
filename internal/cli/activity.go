package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ridelog/internal/analysis"
	"ridelog/internal/segment"
	"ridelog/internal/store"
)

// curveDurations are the power and heart rate bests shown per activity
var curveDurations = []int{5, 60, 300, 1200, 3600}

func newActivityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"activities"},
		Short:   "List, inspect and edit activities",
	}
	cmd.AddCommand(
		newActivityListCmd(a),
		newActivityShowCmd(a),
		newActivityRenameCmd(a),
		newActivityDeleteCmd(a),
		newLapCmd(a),
	)
	return cmd
}

func newActivityListCmd(a *app) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activities, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			activities, err := s.ListActivities(cmd.Context(), a.cfg.Athlete.UserID, limit, offset)
			if err != nil {
				return fmt.Errorf("listing activities: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(activities) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No activities yet. Import one with `ridelog import <file.fit>`."))
				return nil
			}

			printHeader(out, "%6s  %-14s  %-24s  %8s  %8s  %6s  %5s",
				"ID", "Date", "Title", "Time", "Distance", "NP", "TSS")
			for _, act := range activities {
				fmt.Fprintf(out, "%6d  %-14s  %-24s  %8s  %8s  %6s  %5s\n",
					act.ID,
					humanize.Time(act.Date),
					truncateName(act.Title, 24),
					formatDuration(act.DurationSeconds),
					formatDistance(act.DistanceMeters),
					formatOptional(act.NormalizedPower, "%.0f W"),
					formatOptionalInt(act.TSS))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of activities to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of activities to skip")
	return cmd
}

func newActivityShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <activity-id>",
		Short: "Show an activity with curves, zones, laps and segment efforts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			act, err := s.GetActivity(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSummary(out, act)
			printCurves(out, act)
			if err := a.printZones(cmd.Context(), out, act); err != nil {
				return err
			}
			printAerobic(out, act)
			printLaps(out, act)
			if power := act.Power.ZeroFilled(); len(power) > 0 {
				if c := chart(power, 0); c != "" {
					printSection(out, "Power (W)")
					fmt.Fprintln(out, c)
				}
			}
			return a.printEfforts(cmd.Context(), out, act)
		},
	}
}

func printSummary(out io.Writer, act *store.Activity) {
	printTitle(out, fmt.Sprintf("%s  %s", act.Title, act.Date.Local().Format("Mon Jan 2 2006 15:04")))
	printMetric(out, "Duration", formatDuration(act.DurationSeconds))
	printMetric(out, "Distance", formatDistance(act.DistanceMeters))
	printMetric(out, "Avg / max speed", formatOptional(act.AvgSpeed, "%.1f")+" / "+formatOptional(act.MaxSpeed, "%.1f km/h"))
	printMetric(out, "Avg / max power", formatOptional(act.AvgPower, "%.0f")+" / "+formatOptional(act.MaxPower, "%.0f W"))
	printMetric(out, "Normalized power", formatOptional(act.NormalizedPower, "%.0f W"))
	printMetric(out, "FTP", formatOptional(act.FTP, "%.0f W"))
	printMetric(out, "Intensity factor", formatOptional(act.IntensityFactor, "%.2f"))
	printMetric(out, "TSS", formatOptionalInt(act.TSS))
	printMetric(out, "Avg / max HR", formatOptional(act.AvgHeartRate, "%.0f")+" / "+formatOptional(act.MaxHeartRate, "%.0f bpm"))
	printMetric(out, "Avg cadence", formatOptional(act.AvgCadence, "%.0f rpm"))
}

func printCurves(out io.Writer, act *store.Activity) {
	if len(act.CriticalPower) == 0 && len(act.CriticalHeartRate) == 0 {
		return
	}
	printSection(out, "Bests")
	for _, d := range curveDurations {
		power := curveValue(act.CriticalPower, d, "W")
		hr := curveValue(act.CriticalHeartRate, d, "bpm")
		if power == "" && hr == "" {
			continue
		}
		printMetric(out, formatDuration(d), fmt.Sprintf("%-8s %s", power, hr))
	}
}

func curveValue(curve []store.CurvePoint, duration int, unit string) string {
	v, ok := analysis.BestForDuration(curve, duration)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d %s", v, unit)
}

func (a *app) printZones(ctx context.Context, out io.Writer, act *store.Activity) error {
	if act.FTP != nil && act.Power.HasSignal() {
		zones := analysis.PowerZones(*act.FTP, a.cfg.Athlete.PowerZones)
		printZoneTable(out, "Power zones", zones, analysis.TimeInZones(act.Power, zones))
	}

	if !act.HeartRate.HasSignal() {
		return nil
	}
	lthr := a.cfg.Athlete.LTHR
	history, err := a.store.ThresholdHistory(ctx, act.UserID, store.ThresholdLTHR)
	if err != nil {
		return fmt.Errorf("loading LTHR history: %w", err)
	}
	if v, ok := analysis.ThresholdAt(history, act.Date); ok {
		lthr = v
	}
	if lthr > 0 {
		zones := analysis.HeartRateZones(lthr, a.cfg.Athlete.HRZones)
		printZoneTable(out, "Heart rate zones", zones, analysis.TimeInZones(act.HeartRate, zones))
	}
	return nil
}

// printAerobic reports heart rate response to power for rides with both
func printAerobic(out io.Writer, act *store.Activity) {
	if !act.Power.HasSignal() || !act.HeartRate.HasSignal() {
		return
	}
	ef := analysis.EfficiencyFactor(act.Power, act.HeartRate)
	if ef == 0 {
		return
	}
	printSection(out, "Aerobic")
	printMetric(out, "Efficiency factor", fmt.Sprintf("%.2f", ef))
	printMetric(out, "Pw:HR decoupling", fmt.Sprintf("%.1f%%", analysis.AerobicDecoupling(act.Power, act.HeartRate)))
	if act.AvgPower != nil {
		printMetric(out, "Cardiac drift", fmt.Sprintf("%+.0f bpm", analysis.CardiacDrift(act.Power, act.HeartRate, *act.AvgPower)))
		printMetric(out, "Steady riding", fmt.Sprintf("%.0f%%", analysis.SteadyStatePct(act.Power, *act.AvgPower)))
	}
	if act.AvgHeartRate != nil {
		if w := analysis.PowerAtHR(act.Power, act.HeartRate, *act.AvgHeartRate, 5); w > 0 {
			printMetric(out, "Power at avg HR", fmt.Sprintf("%.0f W", w))
		}
	}
}

func printZoneTable(out io.Writer, title string, zones []analysis.Zone, seconds []int) {
	total := 0
	for _, s := range seconds {
		total += s
	}
	printSection(out, title)
	for i, z := range zones {
		fmt.Fprintf(out, "%-36s %8s  %s\n", z.String(), formatDuration(seconds[i]), zoneBar(seconds[i], total, 30))
	}
}

func printLaps(out io.Writer, act *store.Activity) {
	if len(act.Laps) == 0 {
		return
	}
	printSection(out, "Laps")
	printHeader(out, "%3s  %8s  %8s  %8s  %8s", "#", "Start", "Time", "Avg W", "Avg HR")
	for i, lap := range act.Laps {
		power, _ := act.Power.Slice(lap.StartIndex, lap.EndIndex-1).Mean()
		hr, _ := act.HeartRate.Slice(lap.StartIndex, lap.EndIndex-1).Mean()
		fmt.Fprintf(out, "%3d  %8s  %8s  %8.0f  %8.0f\n",
			i, formatDuration(lap.StartIndex), formatDuration(lap.EndIndex-lap.StartIndex), power, hr)
	}
}

// printEfforts lists the activity's segment efforts with their rank on
// each segment's leaderboard
func (a *app) printEfforts(ctx context.Context, out io.Writer, act *store.Activity) error {
	results, err := a.store.ListActivityResults(ctx, act.ID)
	if err != nil {
		return fmt.Errorf("loading segment efforts: %w", err)
	}
	if len(results) == 0 {
		return nil
	}

	printSection(out, "Segments")
	printHeader(out, "%-28s  %8s  %7s  %6s  %8s", "Segment", "Time", "Avg W", "Rank", "Behind")
	for _, r := range results {
		seg, err := a.store.GetSegment(ctx, r.SegmentID)
		if err != nil {
			return err
		}
		all, err := a.store.ListSegmentResults(ctx, seg.ID)
		if err != nil {
			return err
		}
		ranked := segment.Rank(segment.Leaderboard(all), seg, r)
		fmt.Fprintf(out, "%-28s  %8s  %7s  %6s  %8s\n",
			truncateName(ranked.SegmentName, 28),
			formatDuration(ranked.DurationSeconds),
			formatOptional(ranked.AvgPower, "%.0f"),
			fmt.Sprintf("%d/%d", ranked.Rank, len(all)),
			"+"+formatDuration(ranked.BehindSeconds))
	}
	return nil
}

func newActivityRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <activity-id> <title>",
		Short: "Change an activity's title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			return s.RenameActivity(cmd.Context(), id, args[1])
		},
	}
}

func newActivityDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <activity-id>",
		Short: "Delete an activity with its streams and segment efforts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			if err := s.DeleteActivity(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted activity %d\n", id)
			return nil
		},
	}
}

func newLapCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lap",
		Short: "Add or remove manual laps",
	}

	add := &cobra.Command{
		Use:   "add <activity-id> <start-second> <end-second>",
		Short: "Add a lap over [start, end) seconds",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, errStart := strconv.Atoi(args[1])
			end, errEnd := strconv.Atoi(args[2])
			if errStart != nil || errEnd != nil {
				return fmt.Errorf("lap bounds must be whole seconds, got %q and %q", args[1], args[2])
			}
			return a.editLaps(cmd, args[0], func(act *store.Activity) ([]store.Lap, error) {
				return analysis.AddLap(act.Laps, store.Lap{StartIndex: start, EndIndex: end}, act.SampleCount())
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <activity-id> <lap-number>",
		Short: "Remove a lap by its number in `activity show`",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid lap number %q", args[1])
			}
			return a.editLaps(cmd, args[0], func(act *store.Activity) ([]store.Lap, error) {
				return analysis.RemoveLap(act.Laps, i)
			})
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func (a *app) editLaps(cmd *cobra.Command, arg string, edit func(*store.Activity) ([]store.Lap, error)) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	s, err := a.openStore()
	if err != nil {
		return err
	}
	act, err := s.GetActivity(cmd.Context(), id)
	if err != nil {
		return err
	}

	laps, err := edit(act)
	if err != nil {
		return err
	}
	if err := s.SaveLaps(cmd.Context(), id, laps); err != nil {
		return fmt.Errorf("saving laps: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Activity %d has %d laps\n", id, len(laps))
	return nil
}
