package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ridelog/internal/store"
)

// recordDurations extend the per-activity curve durations with the short
// efforts sprinters care about
var recordDurations = []int{1, 5, 15, 30, 60, 300, 600, 1200, 3600}

func newRecordsCmd(a *app) *cobra.Command {
	var since string
	var heartRate bool

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Show best power or heart rate per duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var from time.Time
			if since != "" {
				var err error
				if from, err = parseDay(since); err != nil {
					return err
				}
			}

			kind, unit := store.CurvePower, "W"
			if heartRate {
				kind, unit = store.CurveHeartRate, "bpm"
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			records, err := s.Records(cmd.Context(), a.cfg.Athlete.UserID, kind, recordDurations, from)
			if err != nil {
				return fmt.Errorf("loading records: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No records yet."))
				return nil
			}

			printHeader(out, "%8s  %8s  %-12s  %8s  %-28s", "Duration", "Best", "Date", "Activity", "Title")
			for _, r := range records {
				fmt.Fprintf(out, "%8s  %8s  %-12s  %8d  %-28s\n",
					formatDuration(r.Duration),
					fmt.Sprintf("%d %s", r.Value, unit),
					r.Date.UTC().Format(dateLayout),
					r.ActivityID,
					truncateName(r.Title, 28))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "only rides on or after this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&heartRate, "heart-rate", false, "show heart rate instead of power")
	return cmd
}
