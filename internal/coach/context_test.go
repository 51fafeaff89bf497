package coach

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loadwatch/internal/acwr"
	"loadwatch/internal/summary"
)

var today = time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

func ratio(v float64) *float64 {
	return &v
}

func TestLoadContextMissingUsesMarkedDefault(t *testing.T) {
	c := LoadContext(filepath.Join(t.TempDir(), "latest_physio.json"), today, []string{"note"})

	assert.True(t, c.Default)
	assert.False(t, c.Insufficient)
	assert.Equal(t, DefaultACWR, c.ACWR)
	assert.Equal(t, acwr.StatusGreen, c.Status)
	assert.Equal(t, today, c.Date)
	assert.Contains(t, c.Render(), "0.99 (default, not measured)")
}

func TestLoadContextCorruptUsesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest_physio.json")
	require.NoError(t, os.WriteFile(path, []byte("]["), 0644))

	c := LoadContext(path, today, nil)
	assert.True(t, c.Default)
}

func TestLoadContextFromSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest_physio.json")
	require.NoError(t, summary.Write(path, acwr.Summary{
		Date:        time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
		ACWR:        ratio(1.42),
		AcuteLoad:   142,
		ChronicLoad: 100,
		Status:      acwr.StatusHigh,
	}))

	c := LoadContext(path, today, []string{"Recent Issues: Recovering from Groin Strain (Sept 2025)."})
	assert.False(t, c.Default)
	assert.Equal(t, 1.42, c.ACWR)
	assert.Equal(t, acwr.StatusHigh, c.Status)

	out := c.Render()
	assert.Contains(t, out, "Current Date: 2025-09-30")
	assert.Contains(t, out, "ACWR (Acute Chronic Workload Ratio): 1.42\n")
	assert.Contains(t, out, "Status: HIGH RISK (Groin Guard Active)")
	assert.Contains(t, out, "Groin Strain")
}

func TestFromSummaryWithoutRatio(t *testing.T) {
	c := FromSummary(acwr.Summary{Date: today}, nil)

	assert.True(t, c.Insufficient)
	assert.False(t, c.Default)
	assert.Contains(t, c.Render(), "n/a (insufficient data)")
}

func TestAdvice(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want string
	}{
		{"high", Context{ACWR: 1.31}, "conservative"},
		{"elevated", Context{ACWR: 1.3}, "hold volume"},
		{"sweet spot", Context{ACWR: 1.0}, "productive range"},
		{"boundary 0.8", Context{ACWR: 0.8}, "productive range"},
		{"undertrained", Context{ACWR: 0.6}, "consistency"},
		{"insufficient", Context{Insufficient: true}, "Not enough"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.ctx.Advice(), tt.want)
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	c := DefaultContext(today, []string{"Shoes Available: Saucony Speed 3"})
	prompt := c.SystemPrompt()

	assert.Contains(t, prompt, "If ACWR > 1.3, be conservative. If < 0.8, encourage consistency.")
	assert.Contains(t, prompt, "Shoes Available: Saucony Speed 3")
	assert.Contains(t, prompt, "Status: GREEN LIGHT")
}
