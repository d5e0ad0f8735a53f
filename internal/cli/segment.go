package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ridelog/internal/segment"
	"ridelog/internal/worker"
)

func newSegmentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "segment",
		Aliases: []string{"segments"},
		Short:   "Create segments and browse their leaderboards",
	}
	cmd.AddCommand(
		newSegmentCreateCmd(a),
		newSegmentListCmd(a),
		newSegmentRenameCmd(a),
		newSegmentDeleteCmd(a),
		newSegmentResultsCmd(a),
		newSegmentScanCmd(a),
	)
	return cmd
}

func newSegmentCreateCmd(a *app) *cobra.Command {
	var (
		activityID int64
		start, end int
		name       string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a segment from part of an activity and match it against every ride",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore()
			if err != nil {
				return err
			}
			act, err := s.GetActivity(ctx, activityID)
			if err != nil {
				return err
			}
			if end == 0 {
				end = act.SampleCount()
			}

			seg, err := segment.NewFromActivityRange(act, name, start, end)
			if err != nil {
				return fmt.Errorf("creating segment: %w", err)
			}
			if err := s.CreateSegment(ctx, seg); err != nil {
				return fmt.Errorf("saving segment: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created segment %d %q (%s)\n", seg.ID, seg.Name, formatDistance(seg.DistanceMeters))

			failed, err := a.runJobs(ctx, cmd.OutOrStdout(), []worker.Request{
				{Kind: worker.KindSegmentCreated, SegmentID: seg.ID},
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				return errors.New("segment saved but matching failed, retry with `ridelog segment scan`")
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&activityID, "activity", 0, "activity to take the route from")
	cmd.Flags().IntVar(&start, "start", 0, "first second of the segment")
	cmd.Flags().IntVar(&end, "end", 0, "second after the segment ends (default is the end of the ride)")
	cmd.Flags().StringVar(&name, "name", "", "segment name")
	_ = cmd.MarkFlagRequired("activity")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSegmentListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List segments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			segments, err := s.ListSegments(cmd.Context(), a.cfg.Athlete.UserID)
			if err != nil {
				return fmt.Errorf("listing segments: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(segments) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No segments yet. Create one with `ridelog segment create`."))
				return nil
			}
			printHeader(out, "%6s  %-28s  %8s  %6s  %-14s", "ID", "Name", "Distance", "Points", "Created")
			for _, seg := range segments {
				fmt.Fprintf(out, "%6d  %-28s  %8s  %6d  %-14s\n",
					seg.ID,
					truncateName(seg.Name, 28),
					formatDistance(seg.DistanceMeters),
					len(seg.Points),
					humanize.Time(seg.CreatedAt))
			}
			return nil
		},
	}
}

func newSegmentRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <segment-id> <name>",
		Short: "Change a segment's name",
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
			return s.RenameSegment(cmd.Context(), id, args[1])
		},
	}
}

func newSegmentDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <segment-id>",
		Short: "Delete a segment and its efforts",
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
			if err := s.DeleteSegment(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted segment %d\n", id)
			return nil
		},
	}
}

func newSegmentResultsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "results <segment-id>",
		Short: "Show a segment's leaderboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			seg, err := s.GetSegment(ctx, id)
			if err != nil {
				return err
			}
			results, err := s.ListSegmentResults(ctx, id)
			if err != nil {
				return fmt.Errorf("loading efforts: %w", err)
			}

			out := cmd.OutOrStdout()
			printTitle(out, fmt.Sprintf("%s  %s", seg.Name, formatDistance(seg.DistanceMeters)))
			board := segment.Leaderboard(results)
			if len(board) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No efforts yet."))
				return nil
			}
			printHeader(out, "%4s  %-12s  %8s  %8s  %7s  %7s  %8s", "Rank", "Date", "Activity", "Time", "Avg W", "Avg HR", "Speed")
			for i, r := range board {
				fmt.Fprintf(out, "%4d  %-12s  %8d  %8s  %7s  %7s  %8s\n",
					i+1,
					r.Date.UTC().Format(dateLayout),
					r.ActivityID,
					formatDuration(r.DurationSeconds),
					formatOptional(r.AvgPower, "%.0f"),
					formatOptional(r.AvgHeartRate, "%.0f"),
					formatOptional(r.AverageSpeedKmh, "%.1f"))
			}
			return nil
		},
	}
}

func newSegmentScanCmd(a *app) *cobra.Command {
	var activityID int64

	cmd := &cobra.Command{
		Use:   "scan [segment-id]",
		Short: "Rematch a segment against every ride, or every segment against one ride",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req worker.Request
			switch {
			case activityID != 0 && len(args) == 0:
				req = worker.Request{Kind: worker.KindFindSegmentsOnActivity, ActivityID: activityID}
			case activityID == 0 && len(args) == 1:
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				req = worker.Request{Kind: worker.KindSegmentCreated, SegmentID: id}
			default:
				return errors.New("pass either a segment id or --activity")
			}

			failed, err := a.runJobs(cmd.Context(), cmd.OutOrStdout(), []worker.Request{req})
			if err != nil {
				return err
			}
			if failed > 0 {
				return errors.New("scan failed")
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&activityID, "activity", 0, "match every segment against this activity")
	return cmd
}
