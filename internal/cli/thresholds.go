package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ridelog/internal/store"
)

const dateLayout = "2006-01-02"

// newThresholdCmd builds the add/list/remove commands of a dated
// threshold history
func newThresholdCmd(a *app, kind store.ThresholdKind, use, unit string) *cobra.Command {
	label := strings.ToUpper(use)
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Manage your %s history", label),
	}

	var (
		date      string
		recompute bool
	)
	add := &cobra.Command{
		Use:   "add <value>",
		Short: fmt.Sprintf("Record a %s in %s taking effect on --date", label, unit),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil || value <= 0 {
				return fmt.Errorf("invalid %s %q", label, args[0])
			}
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			entry := store.ThresholdEntry{Date: day, Value: value}
			if err := s.SaveThreshold(cmd.Context(), a.cfg.Athlete.UserID, kind, entry); err != nil {
				return fmt.Errorf("saving %s: %w", label, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %.0f %s from %s\n", label, value, unit, day.Format(dateLayout))
			return a.recomputeAfter(cmd, kind, recompute)
		},
	}
	add.Flags().StringVar(&date, "date", "", "effective date YYYY-MM-DD (default is today)")
	add.Flags().BoolVar(&recompute, "recompute", true, "recompute training load of every activity")

	list := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List your %s history", label),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			history, err := s.ThresholdHistory(cmd.Context(), a.cfg.Athlete.UserID, kind)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(history) == 0 {
				fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("No %s recorded.", label)))
				return nil
			}
			printHeader(out, "%-10s  %8s", "Date", label)
			for _, e := range history {
				fmt.Fprintf(out, "%-10s  %5.0f %s\n", e.Date.Format(dateLayout), e.Value, unit)
			}
			return nil
		},
	}

	var removeRecompute bool
	remove := &cobra.Command{
		Use:   "remove <YYYY-MM-DD>",
		Short: fmt.Sprintf("Remove the %s entry of a date", label),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			if err := s.DeleteThreshold(cmd.Context(), a.cfg.Athlete.UserID, kind, day); err != nil {
				return fmt.Errorf("removing %s: %w", label, err)
			}
			return a.recomputeAfter(cmd, kind, removeRecompute)
		},
	}
	remove.Flags().BoolVar(&removeRecompute, "recompute", true, "recompute training load of every activity")

	cmd.AddCommand(add, list, remove)
	return cmd
}

// recomputeAfter refreshes FTP-derived metrics once the FTP history changed
func (a *app) recomputeAfter(cmd *cobra.Command, kind store.ThresholdKind, enabled bool) error {
	if kind != store.ThresholdFTP || !enabled {
		return nil
	}
	ctx := cmd.Context()
	importer, _, err := a.services()
	if err != nil {
		return err
	}
	ids, err := a.store.ListActivityIDs(ctx, a.cfg.Athlete.UserID)
	if err != nil {
		return fmt.Errorf("listing activities: %w", err)
	}
	for _, id := range ids {
		if _, err := importer.Recompute(ctx, id); err != nil {
			return err
		}
	}
	a.logger.Info("recomputed activities", zap.Int("count", len(ids)))
	fmt.Fprintf(cmd.OutOrStdout(), "Recomputed %d activities\n", len(ids))
	return nil
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return day, nil
}
