package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loadwatch/internal/load"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "batch", cfg.Load.Mode)
	assert.Equal(t, 30, cfg.Sync.LookbackDays)
	assert.Equal(t, "info", cfg.Log.Level)

	// Strava config should be empty by default
	assert.Empty(t, cfg.Strava.ClientID)
	assert.Empty(t, cfg.Strava.ClientSecret)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		errContains string
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name:   "per record mode",
			mutate: func(c *Config) { c.Load.Mode = "per_record" },
		},
		{
			name:        "unknown mode",
			mutate:      func(c *Config) { c.Load.Mode = "weekly" },
			errContains: "load.mode",
		},
		{
			name:        "negative lookback",
			mutate:      func(c *Config) { c.Sync.LookbackDays = -1 },
			errContains: "lookback_days",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.Log.Level = "chatty" },
			errContains: "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
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
	tests := []struct {
		name        string
		config      StravaConfig
		errContains string
	}{
		{"valid", StravaConfig{ClientID: "12345", ClientSecret: "abc123secret"}, ""},
		{"empty client ID", StravaConfig{ClientSecret: "abc123secret"}, "client_id"},
		{"placeholder client ID", StravaConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "abc123secret"}, "client_id"},
		{"empty client secret", StravaConfig{ClientID: "12345"}, "client_secret"},
		{"both placeholders", StravaConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "YOUR_CLIENT_SECRET"}, "client_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Strava: tt.config}
			err := cfg.ValidateStrava()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, ErrNoConfig))

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"load":{"mode":"per_record"},"coach":{"notes":["sore calf"]}}`), 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, load.ModePerRecord, cfg.LoadMode())
	assert.Equal(t, 30, cfg.Sync.LookbackDays, "missing values take defaults")
	assert.Equal(t, []string{"sore calf"}, cfg.Coach.Notes)

	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0600))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := DefaultConfig()
	cfg.Paths.DataDir = "/var/lib/loadwatch"
	require.NoError(t, SaveFile(path, &cfg))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, *loaded)

	summaryPath, err := loaded.SummaryPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/lib/loadwatch", "latest_physio.json"), summaryPath)
}

func TestSummaryPathOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Paths.SummaryFile = "/tmp/physio.json"

	path, err := cfg.SummaryPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/physio.json", path)
}

func TestLogPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Paths.DataDir = "/var/lib/loadwatch"

	path, err := cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/lib/loadwatch", "loadwatch.log"), path)

	cfg.Log.File = "/tmp/lw.log"
	path, err = cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/lw.log", path)
}

func TestHomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.json"), path)

	_, err = Load()
	assert.ErrorIs(t, err, ErrNoConfig)

	created, err := CreateExample()
	require.NoError(t, err)
	assert.Equal(t, path, created)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.ValidateStrava(), "placeholders are not credentials")
	assert.NotEmpty(t, cfg.Coach.Notes)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// an existing file is left alone
	cfg.Coach.Notes = []string{"custom"}
	require.NoError(t, SaveFile(path, cfg))
	_, err = CreateExample()
	require.NoError(t, err)
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"custom"}, cfg.Coach.Notes)

	dataDir, err := cfg.DataDir()
	require.NoError(t, err)
	assert.Equal(t, dir, dataDir)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"strava":{"client_id":"123","client_secret":"from-file"}}`), 0600))

	t.Setenv("LOADWATCH_STRAVA_CLIENT_SECRET", "from-env")
	t.Setenv("LOADWATCH_SYNC_LOOKBACK_DAYS", "14")
	t.Setenv("LOADWATCH_METRICS_TEXTFILE", "/tmp/loadwatch.prom")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "123", cfg.Strava.ClientID)
	assert.Equal(t, "from-env", cfg.Strava.ClientSecret)
	assert.Equal(t, 14, cfg.Sync.LookbackDays)
	assert.Equal(t, "/tmp/loadwatch.prom", cfg.Metrics.Textfile)
	assert.Equal(t, "info", cfg.Log.Level)
}
