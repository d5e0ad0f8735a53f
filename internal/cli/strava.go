package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ridelog/internal/auth"
	"ridelog/internal/config"
	"ridelog/internal/strava"
)

func newStravaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strava",
		Short: "Import rides from Strava",
	}
	cmd.AddCommand(newStravaLoginCmd(a), newStravaImportCmd(a))
	return cmd
}

func (a *app) oauthConfig() (*auth.Config, error) {
	if err := a.cfg.ValidateStrava(); err != nil {
		return nil, err
	}
	return &auth.Config{
		ClientID:     a.cfg.Strava.ClientID,
		ClientSecret: a.cfg.Strava.ClientSecret,
		RedirectURL:  auth.CallbackURL(a.cfg.Strava.CallbackPort),
	}, nil
}

func newStravaLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize ridelog to read your Strava rides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.oauthConfig()
			if err != nil {
				return err
			}

			result, err := auth.Login(cmd.Context(), auth.NewOAuthConfig(*cfg), a.cfg.Strava.CallbackPort, cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("strava login: %w", err)
			}
			if err := config.SaveRefreshToken(a.cfgPath, result.Token.RefreshToken); err != nil {
				return fmt.Errorf("saving refresh token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nAuthenticated as athlete %d (scope %s)\n", result.AthleteID, result.Scope)
			return nil
		},
	}
}

func newStravaImportCmd(a *app) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "import <activity-id>...",
		Short: "Import Strava activities by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ids := make([]int64, len(args))
			for i, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids[i] = id
			}

			cfg, err := a.oauthConfig()
			if err != nil {
				return err
			}
			tokens, err := auth.NewTokenSource(ctx, auth.NewOAuthConfig(*cfg), a.cfg.Strava.RefreshToken, func(refreshToken string) error {
				a.logger.Debug("strava refresh token rotated")
				return config.SaveRefreshToken(a.cfgPath, refreshToken)
			})
			if err != nil {
				return err
			}

			importer, _, err := a.services()
			if err != nil {
				return err
			}
			client := strava.NewClient(tokens, a.logger)

			out := cmd.OutOrStdout()
			for _, id := range ids {
				ride, err := client.FetchRide(ctx, id)
				if err != nil {
					return fmt.Errorf("fetching strava activity %d: %w", id, err)
				}
				result, err := importer.Import(ctx, ride, title)
				if err != nil {
					return fmt.Errorf("importing strava activity %d: %w", id, err)
				}
				fmt.Fprintf(out, "strava %d: imported as activity %d, %d segment efforts\n",
					id, result.Activity.ID, result.Scan.Saved)
			}

			short, daily := client.RateLimitStatus()
			a.logger.Info("strava rate limit", zap.Int("short_remaining", short), zap.Int("daily_remaining", daily))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "activity title (default is the weekday of the ride)")
	return cmd
}
