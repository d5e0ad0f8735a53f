package cli

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"ridelog/internal/analysis"
)

func newFitnessCmd(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "fitness",
		Short: "Show fitness (CTL), fatigue (ATL) and form (TSB)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			daily, err := s.DailyTSS(cmd.Context(), a.cfg.Athlete.UserID)
			if err != nil {
				return fmt.Errorf("loading training load: %w", err)
			}

			out := cmd.OutOrStdout()
			loads, err := dailyLoads(daily)
			if err != nil {
				return err
			}
			trend := analysis.CalculateFitnessTrend(loads, time.Now())
			if len(trend) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No scored activities yet. Set an FTP to get TSS."))
				return nil
			}

			current := trend[len(trend)-1]
			printTitle(out, "Training load")
			printMetric(out, "Fitness (CTL)", fmt.Sprintf("%.1f", current.CTL))
			printMetric(out, "Fatigue (ATL)", fmt.Sprintf("%.1f", current.ATL))
			printMetric(out, "Form (TSB)", fmt.Sprintf("%+.1f  %s", current.TSB, analysis.FormDescription(current.TSB)))

			if days > 0 && len(trend) > days {
				trend = trend[len(trend)-days:]
			}
			ctl := lo.Map(trend, func(m analysis.FitnessMetrics, _ int) float64 { return m.CTL })
			if c := chart(ctl, 1); c != "" {
				printSection(out, fmt.Sprintf("Fitness, last %d days", len(trend)))
				fmt.Fprintln(out, c)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 90, "days of history to chart")
	return cmd
}

func dailyLoads(daily map[string]int) ([]analysis.DailyLoad, error) {
	loads := make([]analysis.DailyLoad, 0, len(daily))
	for day, tss := range daily {
		date, err := time.Parse(dateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("parsing day %q: %w", day, err)
		}
		loads = append(loads, analysis.DailyLoad{Date: date, TSS: float64(tss)})
	}
	return loads, nil
}
