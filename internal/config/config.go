// Package config reads the JSON settings file under the loadwatch home
// directory, with LOADWATCH_* environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"loadwatch/internal/load"
)

// HomeEnv overrides the home directory, mainly for tests and containers
const HomeEnv = "LOADWATCH_HOME"

// EnvPrefix prefixes setting overrides: LOADWATCH_STRAVA_CLIENT_SECRET
// replaces strava.client_secret
const EnvPrefix = "LOADWATCH"

const (
	dirName         = ".loadwatch"
	configFileName  = "config.json"
	summaryFileName = "latest_physio.json"
	logFileName     = "loadwatch.log"
)

// Placeholders written into a fresh config; they count as unset.
const (
	placeholderClientID     = "YOUR_CLIENT_ID"
	placeholderClientSecret = "YOUR_CLIENT_SECRET"
)

const stravaSettingsURL = "https://www.strava.com/settings/api"

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

type Config struct {
	Strava  StravaConfig  `json:"strava" mapstructure:"strava"`
	Load    LoadConfig    `json:"load" mapstructure:"load"`
	Sync    SyncConfig    `json:"sync" mapstructure:"sync"`
	Paths   PathsConfig   `json:"paths" mapstructure:"paths"`
	Coach   CoachConfig   `json:"coach" mapstructure:"coach"`
	Log     LogConfig     `json:"log" mapstructure:"log"`
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`
}

type StravaConfig struct {
	ClientID     string `json:"client_id" mapstructure:"client_id"`
	ClientSecret string `json:"client_secret" mapstructure:"client_secret"`
}

type LoadConfig struct {
	Mode string `json:"mode" mapstructure:"mode"` // "batch" or "per_record"
}

type SyncConfig struct {
	LookbackDays int `json:"lookback_days" mapstructure:"lookback_days"`
}

// PathsConfig holds file locations. Empty values resolve under Dir().
type PathsConfig struct {
	DataDir     string `json:"data_dir" mapstructure:"data_dir"`
	SummaryFile string `json:"summary_file" mapstructure:"summary_file"`
}

// CoachConfig holds free-form athlete notes for the coaching context
type CoachConfig struct {
	Notes []string `json:"notes" mapstructure:"notes"`
}

// MetricsConfig enables the Prometheus textfile export of the latest risk
type MetricsConfig struct {
	Textfile string `json:"textfile" mapstructure:"textfile"` // e.g. /var/lib/node_exporter/textfile/loadwatch.prom
}

type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
	File  string `json:"file" mapstructure:"file"` // dashboard log; defaults to <data_dir>/loadwatch.log
	JSON  bool   `json:"json" mapstructure:"json"`
}

// DefaultConfig returns the settings used for anything the file omits
func DefaultConfig() Config {
	return Config{
		Load: LoadConfig{Mode: string(load.ModeBatch)},
		Sync: SyncConfig{LookbackDays: 30},
		Log:  LogConfig{Level: "info"},
	}
}

// Dir is $LOADWATCH_HOME, or ~/.loadwatch when that is unset
func Dir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Path is the location of the config file
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file at Path()
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path on top of DefaultConfig. Every
// setting can be overridden from the environment.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoConfig
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// setDefaults registers every scalar key so AutomaticEnv can see it even
// when the file omits it
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("strava.client_id", d.Strava.ClientID)
	v.SetDefault("strava.client_secret", d.Strava.ClientSecret)
	v.SetDefault("load.mode", d.Load.Mode)
	v.SetDefault("sync.lookback_days", d.Sync.LookbackDays)
	v.SetDefault("paths.data_dir", d.Paths.DataDir)
	v.SetDefault("paths.summary_file", d.Paths.SummaryFile)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
}

// SaveFile writes cfg to path, creating the directory. The file holds the
// Strava secret, so it is private to the user.
func SaveFile(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// CreateExample writes a starter config to Path() unless one exists, and
// returns where it lives
func CreateExample() (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{ClientID: placeholderClientID, ClientSecret: placeholderClientSecret}
	example.Coach.Notes = []string{
		"Recent Issues: Recovering from Groin Strain (Sept 2025).",
		"Shoes Available: Saucony Speed 3 (Good for low risk), Stability Shoes (Good for recovery).",
	}
	return path, SaveFile(path, &example)
}

// Validate checks the settings every command depends on
func (c *Config) Validate() error {
	if _, err := load.ParseMode(c.Load.Mode); err != nil {
		return fmt.Errorf("load.mode: %w", err)
	}
	if c.Sync.LookbackDays < 0 {
		return fmt.Errorf("sync.lookback_days must not be negative, got %d", c.Sync.LookbackDays)
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

// ValidateStrava checks that Strava credentials are configured
func (c *Config) ValidateStrava() error {
	if unset(c.Strava.ClientID, placeholderClientID) {
		return fmt.Errorf("strava.client_id is required - get it from %s", stravaSettingsURL)
	}
	if unset(c.Strava.ClientSecret, placeholderClientSecret) {
		return fmt.Errorf("strava.client_secret is required - get it from %s", stravaSettingsURL)
	}
	return nil
}

func unset(v, placeholder string) bool {
	return v == "" || v == placeholder
}

// LoadMode returns the configured load mode, batch when invalid
func (c *Config) LoadMode() load.Mode {
	if mode, err := load.ParseMode(c.Load.Mode); err == nil {
		return mode
	}
	return load.ModeBatch
}

// DataDir returns the directory holding the database
func (c *Config) DataDir() (string, error) {
	if c.Paths.DataDir != "" {
		return c.Paths.DataDir, nil
	}
	return Dir()
}

// SummaryPath returns the location of the risk summary file
func (c *Config) SummaryPath() (string, error) {
	return c.inDataDir(c.Paths.SummaryFile, summaryFileName)
}

// LogPath returns the log file used while the dashboard owns the terminal
func (c *Config) LogPath() (string, error) {
	return c.inDataDir(c.Log.File, logFileName)
}

// inDataDir returns override when set, otherwise name inside the data dir
func (c *Config) inDataDir(override, name string) (string, error) {
	if override != "" {
		return override, nil
	}
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
