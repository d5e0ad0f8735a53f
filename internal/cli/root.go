// Package cli implements the ridelog command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"ridelog/internal/config"
	rlog "ridelog/internal/log"
	"ridelog/internal/segment"
	"ridelog/internal/service"
	"ridelog/internal/store"
)

// flagKeys maps persistent flags onto config keys
var flagKeys = map[string]string{
	"db":         "storage.database",
	"log-level":  "log.level",
	"log-format": "log.format",
	"user":       "athlete.user_id",
	"workers":    "matching.workers",
}

// app carries the state shared by every command of one invocation
type app struct {
	cfgFile string
	cfgPath string
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
}

// newRootCmd builds the ridelog command tree. The returned app must be
// closed once the command has run.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "ridelog",
		Short:         "Cycling activity log with power metrics and segment matching",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.ridelog/config.yaml)")
	flags.String("db", "", "path of the SQLite database")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console or json)")
	flags.Int64("user", 0, "athlete user id")
	flags.Int("workers", 0, "concurrent segment matcher runs")

	cmd.AddCommand(
		newInitCmd(a),
		newImportCmd(a),
		newStravaCmd(a),
		newActivityCmd(a),
		newSegmentCmd(a),
		newThresholdCmd(a, store.ThresholdFTP, "ftp", "W"),
		newThresholdCmd(a, store.ThresholdLTHR, "lthr", "bpm"),
		newFitnessCmd(a),
		newRecordsCmd(a),
		newExportCmd(a),
		newMigrateCmd(a),
	)
	return cmd, a
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	cmd, a := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	stop()
	if err != nil {
		printError(cmd.ErrOrStderr(), "Error: %v", err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfgPath = v.ConfigFileUsed()
	if err := bindFlags(cmd.Root().PersistentFlags(), v); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	missing := errors.Is(err, config.ErrNoConfig)
	if err != nil && !missing {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", a.cfgPath, err)
	}
	a.cfg = cfg

	logger, err := rlog.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.logger = logger
	if missing {
		logger.Debug("no config file, using defaults", zap.String("path", a.cfgPath))
	}
	return nil
}

func (a *app) close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

// bindFlags binds each mapped flag to its config key. Viper only prefers
// a flag over file and environment values once it has been set.
func bindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil {
			err = fmt.Errorf("binding flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

// openStore opens the database once per invocation
func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := store.Open(a.cfg.Storage.Database, a.logger)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// services wires the import and segment services over the store
func (a *app) services() (*service.ImportService, *service.SegmentService, error) {
	s, err := a.openStore()
	if err != nil {
		return nil, nil, err
	}

	scanner := service.NewSegmentService(s, s, s, service.ScanOptions{
		Match: segment.MatchOptions{
			ProximityMeters:         a.cfg.Matching.ProximityMeters,
			DistanceToleranceMeters: a.cfg.Matching.DistanceToleranceMeters,
			Logger:                  a.logger,
		},
		Workers: a.cfg.Matching.Workers,
		Logger:  a.logger,
	})
	importer := service.NewImportService(s, s, scanner, service.ImportOptions{
		UserID: a.cfg.Athlete.UserID,
		Logger: a.logger,
	})
	return importer, scanner, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
