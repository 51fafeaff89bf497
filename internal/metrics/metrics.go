// Package metrics exports the latest risk figures as Prometheus gauges,
// written to a node_exporter textfile after each analysis.
package metrics

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"loadwatch/internal/acwr"
)

// Namespace prefixes every exported metric
const Namespace = "loadwatch"

var statuses = []acwr.Status{acwr.StatusGreen, acwr.StatusElevated, acwr.StatusHigh}

// Manager owns the gauges and the registry they are gathered from
type Manager struct {
	registry *prometheus.Registry

	GaugeACWR         prometheus.Gauge
	GaugeAcuteLoad    prometheus.Gauge
	GaugeChronicLoad  prometheus.Gauge
	GaugeRiskStatus   *prometheus.GaugeVec
	GaugeInsufficient prometheus.Gauge
	GaugeSkipped      prometheus.Gauge
	GaugeLastRun      prometheus.Gauge
}

// Observation is the outcome of one analysis run
type Observation struct {
	Summary      acwr.Summary
	Insufficient bool
	Skipped      int
	At           time.Time
}

func NewManager(namespace string) *Manager {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Manager{
		registry: reg,
		GaugeACWR: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "acwr",
			Help:      "Latest acute:chronic workload ratio, NaN when it is undefined",
		}),
		GaugeAcuteLoad: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "acute_load",
			Help:      "Mean daily load over the last 7 days",
		}),
		GaugeChronicLoad: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chronic_load",
			Help:      "Mean daily load over the last 28 days",
		}),
		GaugeRiskStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "risk_status",
			Help:      "1 for the current risk band, 0 for the others",
		}, []string{"status"}),
		GaugeInsufficient: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "insufficient_data",
			Help:      "1 when the chronic load is zero and no ratio exists",
		}),
		GaugeSkipped: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "skipped_activities",
			Help:      "Malformed activities left out of the last analysis",
		}),
		GaugeLastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_analysis_timestamp_seconds",
			Help:      "Unix time of the last analysis run",
		}),
	}
}

// Observe sets every gauge from one analysis
func (m *Manager) Observe(o Observation) {
	s := o.Summary

	ratio := math.NaN()
	if s.ACWR != nil && !o.Insufficient {
		ratio = *s.ACWR
	}
	m.GaugeACWR.Set(ratio)
	m.GaugeAcuteLoad.Set(s.AcuteLoad)
	m.GaugeChronicLoad.Set(s.ChronicLoad)

	for _, st := range statuses {
		v := 0.0
		if !o.Insufficient && st == s.Status {
			v = 1
		}
		m.GaugeRiskStatus.WithLabelValues(st.String()).Set(v)
	}

	insufficient := 0.0
	if o.Insufficient {
		insufficient = 1
	}
	m.GaugeInsufficient.Set(insufficient)
	m.GaugeSkipped.Set(float64(o.Skipped))
	m.GaugeLastRun.Set(float64(o.At.Unix()))
}

// WriteTextfile atomically replaces path with the current gauge values
func (m *Manager) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// Gatherer exposes the registry
func (m *Manager) Gatherer() prometheus.Gatherer {
	return m.registry
}
