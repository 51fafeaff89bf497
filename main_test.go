package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loadwatch/internal/config"
)

// execute runs the CLI with args and returns what it printed
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeConfig creates a config keeping all state inside a temp dir
func writeConfig(t *testing.T) (path, dir string) {
	t.Helper()

	dir = t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Paths.DataDir = dir
	cfg.Metrics.Textfile = filepath.Join(dir, "loadwatch.prom")
	cfg.Coach.Notes = []string{"Recent Issues: tight calf."}

	path = filepath.Join(dir, "config.json")
	require.NoError(t, config.SaveFile(path, &cfg))
	return path, dir
}

func writeExport(t *testing.T, dir string, days int, tss float64) string {
	t.Helper()

	start := time.Date(2025, 8, 1, 6, 30, 0, 0, time.UTC)
	entries := make([]map[string]any, days)
	for i := range entries {
		entries[i] = map[string]any{
			"activityId":          1000 + i,
			"activityName":        "Easy run",
			"startTimeLocal":      start.AddDate(0, 0, i).Format("2006-01-02 15:04:05"),
			"duration":            3600,
			"averageHR":           140,
			"trainingStressScore": tss,
		}
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)

	path := filepath.Join(dir, "garmin_raw_data.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestFirstRunWritesExampleConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.HomeEnv, home)

	out, err := execute(t, "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote an example config")
	assert.FileExists(t, filepath.Join(home, "config.json"))
}

func TestImportThenContext(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	export := writeExport(t, dir, 35, 100)

	out, err := execute(t, "--config", cfgPath, "import", export)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 35 activities (0 skipped)")
	assert.Contains(t, out, "--- Physio Report (2025-09-04) ---")
	assert.Contains(t, out, "Load Source: Provider TSS")
	assert.Contains(t, out, "ACWR: 1.00")
	assert.Contains(t, out, "Status: GREEN LIGHT")

	assert.FileExists(t, filepath.Join(dir, "latest_physio.json"))
	assert.FileExists(t, filepath.Join(dir, "loadwatch.prom"))

	out, err = execute(t, "--config", cfgPath, "context")
	require.NoError(t, err)
	assert.Contains(t, out, "ACWR (Acute Chronic Workload Ratio): 1.00")
	assert.Contains(t, out, "Recent Issues: tight calf.")
	assert.Contains(t, out, "If ACWR > 1.3, be conservative")
}

func TestAnalyzeWithoutHistory(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	out, err := execute(t, "--config", cfgPath, "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "Insufficient data")
	assert.NoFileExists(t, filepath.Join(dir, "latest_physio.json"))

	// the coach falls back to the default context
	out, err = execute(t, "--config", cfgPath, "context")
	require.NoError(t, err)
	assert.Contains(t, out, "0.99 (default, not measured)")
}

func TestCommandErrors(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown command", []string{"--config", cfgPath, "plan"}, `unknown command "plan"`},
		{"import without file", []string{"--config", cfgPath, "import"}, "accepts 1 arg"},
		{"missing import file", []string{"--config", cfgPath, "import", "/nonexistent/export.json"}, "not found"},
		{"explicit config missing", []string{"--config", "/nonexistent/config.json", "analyze"}, "config file not found"},
		{"sync without credentials", []string{"--config", cfgPath, "sync"}, "strava.client_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want) || strings.Contains(out, tt.want),
				fmt.Sprintf("error %q / output %q should mention %q", err, out, tt.want))
		})
	}
}

func TestLogout(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	out, err := execute(t, "--config", cfgPath, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Strava tokens removed.")
}
