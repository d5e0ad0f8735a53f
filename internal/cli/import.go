package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ridelog/internal/config"
	"ridelog/internal/worker"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write an example config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateExample(a.cfgPath); err != nil {
				return fmt.Errorf("creating example config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n\n", a.cfgPath)
			fmt.Fprintln(out, "Record your FTP with `ridelog ftp add <watts> --date YYYY-MM-DD` to get TSS and IF.")
			fmt.Fprintln(out, "Set athlete.lthr, and add Strava API credentials")
			fmt.Fprintln(out, "from https://www.strava.com/settings/api to import from Strava.")
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "import <file.fit>...",
		Short: "Import FIT files and match them against saved segments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requests := make([]worker.Request, len(args))
			for i, path := range args {
				requests[i] = worker.Request{Kind: worker.KindImportActivity, Path: path, Title: title}
			}

			failed, err := a.runJobs(cmd.Context(), cmd.OutOrStdout(), requests)
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed to import", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "activity title (default is the weekday of the ride)")
	return cmd
}
