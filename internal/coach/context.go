// Package coach builds the athlete context handed to the coaching
// assistant from the persisted risk summary.
package coach

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"loadwatch/internal/acwr"
	"loadwatch/internal/summary"
)

// DefaultACWR is substituted when no summary is available. Context.Default
// marks it so it is never mistaken for a measurement.
const DefaultACWR = 0.99

// Ratio below which the athlete is encouraged to train more consistently
const UndertrainingThreshold = 0.8

// Context is the risk information the coach works from
type Context struct {
	Date   time.Time
	ACWR   float64
	Status acwr.Status
	// Default is set when no summary could be read and the documented
	// default ratio is used instead.
	Default bool
	// Insufficient is set when a summary exists but carries no ratio.
	Insufficient bool
	AcuteLoad    float64
	ChronicLoad  float64
	Notes        []string
}

// DefaultContext returns the documented fallback context for today
func DefaultContext(now time.Time, notes []string) Context {
	return Context{
		Date:    now,
		ACWR:    DefaultACWR,
		Status:  acwr.StatusGreen,
		Default: true,
		Notes:   notes,
	}
}

// FromSummary builds a context from a computed summary
func FromSummary(s acwr.Summary, notes []string) Context {
	c := Context{
		Date:        s.Date,
		AcuteLoad:   s.AcuteLoad,
		ChronicLoad: s.ChronicLoad,
		Notes:       notes,
	}
	if s.ACWR == nil {
		c.Insufficient = true
		c.Status = acwr.StatusGreen
		return c
	}
	c.ACWR = *s.ACWR
	c.Status = acwr.Classify(*s.ACWR)
	return c
}

// LoadContext reads the summary at path. A missing or unreadable summary
// falls back to DefaultContext; only the log records why.
func LoadContext(path string, now time.Time, notes []string) Context {
	s, err := summary.Read(path)
	if err != nil {
		entry := log.WithField("path", path)
		if errors.Is(err, summary.ErrNoSummary) {
			entry.Info("no risk summary yet, using default context")
		} else {
			entry.WithError(err).Warn("unreadable risk summary, using default context")
		}
		return DefaultContext(now, notes)
	}
	return FromSummary(s, notes)
}

// Advice returns the coaching rule that applies to the context
func (c Context) Advice() string {
	switch {
	case c.Insufficient:
		return "Not enough training history for a ratio yet; build volume gradually."
	case c.ACWR > acwr.HighThreshold:
		return "Be conservative: reduce intensity and volume until the ratio drops."
	case c.ACWR > acwr.ElevatedThreshold:
		return "Load is climbing: hold volume steady and avoid adding intensity."
	case c.ACWR < UndertrainingThreshold:
		return "Load is below your usual level: encourage consistency."
	default:
		return "Load is in the productive range: keep training as planned."
	}
}

// Render formats the context block for the assistant's system prompt
func (c Context) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Current Date: %s\n", c.Date.Format(time.DateOnly))
	switch {
	case c.Insufficient:
		b.WriteString("ACWR (Acute Chronic Workload Ratio): n/a (insufficient data)\n")
	case c.Default:
		fmt.Fprintf(&b, "ACWR (Acute Chronic Workload Ratio): %.2f (default, not measured)\n", c.ACWR)
	default:
		fmt.Fprintf(&b, "ACWR (Acute Chronic Workload Ratio): %.2f\n", c.ACWR)
		fmt.Fprintf(&b, "Acute Load (7d): %.0f / Chronic Load (28d): %.0f\n", c.AcuteLoad, c.ChronicLoad)
	}
	fmt.Fprintf(&b, "Status: %s\n", c.Status.Label())
	for _, note := range c.Notes {
		b.WriteString(note)
		b.WriteString("\n")
	}

	return b.String()
}

// SystemPrompt wraps the context with the coaching rules
func (c Context) SystemPrompt() string {
	return fmt.Sprintf(`You are an expert running coach and physiologist.
Your athlete has the following current stats:
%s
RULES:
1. Always base advice on the ACWR and injury history provided above.
2. If ACWR > %.1f, be conservative. If < %.1f, encourage consistency.
3. Keep responses concise and actionable.
4. Current guidance: %s
`, c.Render(), acwr.HighThreshold, UndertrainingThreshold, c.Advice())
}
