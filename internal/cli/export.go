package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ridelog/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <activity-id>",
		Short: "Write an activity's per-second samples as Parquet",
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
			act, err := s.GetActivity(ctx, id)
			if err != nil {
				return err
			}
			results, err := s.ListActivityResults(ctx, id)
			if err != nil {
				return fmt.Errorf("loading segment efforts: %w", err)
			}

			if out == "" {
				out = fmt.Sprintf("activity-%d.parquet", id)
			}
			if err := export.WriteActivity(out, act, results); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d samples to %s\n", act.SampleCount(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default is activity-<id>.parquet)")
	return cmd
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// opening the store applies every pending migration
			s, err := a.openStore()
			if err != nil {
				return err
			}
			version, dirty, err := s.MigrationVersion()
			if err != nil {
				return fmt.Errorf("reading schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s at schema version %d", a.cfg.Storage.Database, version)
			if dirty {
				fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}
