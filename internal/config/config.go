// Package config loads ridelog settings from ~/.ridelog/config.yaml and
// RIDELOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes environment overrides, e.g. RIDELOG_ATHLETE_FALLBACK_FTP
const EnvPrefix = "RIDELOG"

// Config represents the application configuration
type Config struct {
	Athlete  AthleteConfig  `mapstructure:"athlete"`
	Matching MatchingConfig `mapstructure:"matching"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Strava   StravaConfig   `mapstructure:"strava"`
	Log      LogConfig      `mapstructure:"log"`
}

// AthleteConfig holds athlete-specific settings
type AthleteConfig struct {
	UserID     int64   `mapstructure:"user_id"`
	LTHR       float64 `mapstructure:"lthr"` // bpm, 0 when unknown
	PowerZones string  `mapstructure:"power_zones"`
	HRZones    string  `mapstructure:"hr_zones"`
}

// MatchingConfig tunes the segment matcher
type MatchingConfig struct {
	ProximityMeters         float64 `mapstructure:"proximity_meters"`
	DistanceToleranceMeters float64 `mapstructure:"distance_tolerance_meters"`
	Workers                 int     `mapstructure:"workers"`
}

// StorageConfig locates the database
type StorageConfig struct {
	Database string `mapstructure:"database"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	CallbackPort int    `mapstructure:"callback_port"`
}

// LogConfig selects the logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	db := ""
	if dir, err := Dir(); err == nil {
		db = filepath.Join(dir, "data.db")
	}
	return Config{
		Athlete: AthleteConfig{
			UserID:     1,
			PowerZones: "coggan",
			HRZones:    "coggan",
		},
		Matching: MatchingConfig{
			ProximityMeters:         20,
			DistanceToleranceMeters: 100,
			Workers:                 runtime.NumCPU(),
		},
		Storage: StorageConfig{Database: db},
		Strava:  StravaConfig{CallbackPort: 8089},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}

// settings flattens c into viper keys
func (c *Config) settings() map[string]interface{} {
	return map[string]interface{}{
		"athlete.user_id":                    c.Athlete.UserID,
		"athlete.lthr":                       c.Athlete.LTHR,
		"athlete.power_zones":                c.Athlete.PowerZones,
		"athlete.hr_zones":                   c.Athlete.HRZones,
		"matching.proximity_meters":          c.Matching.ProximityMeters,
		"matching.distance_tolerance_meters": c.Matching.DistanceToleranceMeters,
		"matching.workers":                   c.Matching.Workers,
		"storage.database":                   c.Storage.Database,
		"strava.client_id":                   c.Strava.ClientID,
		"strava.client_secret":               c.Strava.ClientSecret,
		"strava.refresh_token":               c.Strava.RefreshToken,
		"strava.callback_port":               c.Strava.CallbackPort,
		"log.level":                          c.Log.Level,
		"log.format":                         c.Log.Format,
	}
}

// NewViper returns a viper instance with the defaults and environment
// bindings applied. path selects the config file; empty means the default.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()

	defaults := DefaultConfig()
	for k, val := range defaults.settings() {
		v.SetDefault(k, val)
	}

	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

// Load reads the config file into v and decodes the result. A missing
// file returns the defaults together with ErrNoConfig.
func Load(v *viper.Viper) (*Config, error) {
	var missing bool
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		missing = true
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if missing {
		return &cfg, ErrNoConfig
	}
	return &cfg, nil
}

// Save writes cfg as YAML to path
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	for k, val := range cfg.settings() {
		v.Set(k, val)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return os.Chmod(path, 0600)
}

// SaveRefreshToken stores a rotated Strava refresh token in the config
// file at path, keeping every other setting.
func SaveRefreshToken(path, token string) error {
	v, err := NewViper(path)
	if err != nil {
		return err
	}
	cfg, err := Load(v)
	if err != nil && !errors.Is(err, ErrNoConfig) {
		return err
	}
	cfg.Strava.RefreshToken = token
	return Save(cfg, path)
}

// CreateExample writes an example config file to path unless one exists
func CreateExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	example := DefaultConfig()
	example.Athlete.LTHR = 165
	example.Strava.ClientID = "YOUR_CLIENT_ID"
	example.Strava.ClientSecret = "YOUR_CLIENT_SECRET"
	return Save(&example, path)
}

// Validate checks the settings every command relies on
func (c *Config) Validate() error {
	if c.Athlete.UserID <= 0 {
		return fmt.Errorf("athlete.user_id must be positive, got %d", c.Athlete.UserID)
	}
	for key, system := range map[string]string{"athlete.power_zones": c.Athlete.PowerZones, "athlete.hr_zones": c.Athlete.HRZones} {
		if system != "coggan" && system != "polarized" {
			return fmt.Errorf("%s must be \"coggan\" or \"polarized\", got %q", key, system)
		}
	}

	if c.Matching.ProximityMeters <= 0 {
		return fmt.Errorf("matching.proximity_meters must be positive, got %v", c.Matching.ProximityMeters)
	}
	if c.Matching.DistanceToleranceMeters <= 0 {
		return fmt.Errorf("matching.distance_tolerance_meters must be positive, got %v", c.Matching.DistanceToleranceMeters)
	}
	if c.Matching.Workers < 1 {
		return fmt.Errorf("matching.workers must be at least 1, got %d", c.Matching.Workers)
	}

	if c.Storage.Database == "" {
		return errors.New("storage.database is required")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be \"console\" or \"json\", got %q", c.Log.Format)
	}

	return nil
}

// ValidateStrava checks the credentials needed for Strava commands
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return nil
}

// Dir returns the path to the config directory
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ridelog"), nil
}

// Path returns the default config file path
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
