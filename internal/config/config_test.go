package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, int64(1), cfg.Athlete.UserID)
	assert.Zero(t, cfg.Athlete.LTHR)
	assert.Equal(t, "coggan", cfg.Athlete.PowerZones)
	assert.Equal(t, 20.0, cfg.Matching.ProximityMeters)
	assert.Equal(t, 100.0, cfg.Matching.DistanceToleranceMeters)
	assert.GreaterOrEqual(t, cfg.Matching.Workers, 1)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Strava.ClientID)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(c *Config)
		errContains string
	}{
		{"valid", func(c *Config) {}, ""},
		{"user id", func(c *Config) { c.Athlete.UserID = 0 }, "athlete.user_id"},
		{"zone system", func(c *Config) { c.Athlete.HRZones = "karvonen" }, "athlete.hr_zones"},
		{"proximity", func(c *Config) { c.Matching.ProximityMeters = 0 }, "matching.proximity_meters"},
		{"tolerance", func(c *Config) { c.Matching.DistanceToleranceMeters = -5 }, "matching.distance_tolerance_meters"},
		{"workers", func(c *Config) { c.Matching.Workers = 0 }, "matching.workers"},
		{"database", func(c *Config) { c.Storage.Database = "" }, "storage.database"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Storage.Database = "/tmp/ridelog.db"
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidateStrava(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorContains(t, cfg.ValidateStrava(), "strava.client_id")

	cfg.Strava.ClientID = "12345"
	cfg.Strava.ClientSecret = "YOUR_CLIENT_SECRET"
	assert.ErrorContains(t, cfg.ValidateStrava(), "strava.client_secret")

	cfg.Strava.ClientSecret = "abc123secret"
	assert.NoError(t, cfg.ValidateStrava())
}

func TestLoadMissingFile(t *testing.T) {
	v, err := NewViper(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	cfg, err := Load(v)
	assert.ErrorIs(t, err, ErrNoConfig)
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultConfig().Matching, cfg.Matching)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
athlete:
  user_id: 7
  lthr: 168
matching:
  proximity_meters: 25
log:
  level: debug
`), 0600))
	t.Setenv("RIDELOG_MATCHING_WORKERS", "3")

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Athlete.UserID)
	assert.Equal(t, 168.0, cfg.Athlete.LTHR)
	assert.Equal(t, 25.0, cfg.Matching.ProximityMeters)
	assert.Equal(t, 100.0, cfg.Matching.DistanceToleranceMeters, "default kept")
	assert.Equal(t, 3, cfg.Matching.Workers, "environment override")
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestCreateExampleAndSaveRefreshToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, CreateExample(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// FTP only comes from the dated history
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "ftp")

	require.NoError(t, SaveRefreshToken(path, "rotated"))

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "rotated", cfg.Strava.RefreshToken)
	assert.Equal(t, "YOUR_CLIENT_ID", cfg.Strava.ClientID, "other settings kept")
	assert.Equal(t, 165.0, cfg.Athlete.LTHR)

	// existing files are not overwritten
	require.NoError(t, CreateExample(path))
	cfg, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, "rotated", cfg.Strava.RefreshToken)
}
