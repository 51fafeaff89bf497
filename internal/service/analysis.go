package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"loadwatch/internal/acwr"
	"loadwatch/internal/load"
	"loadwatch/internal/metrics"
	"loadwatch/internal/store"
	"loadwatch/internal/summary"
)

// AnalysisService turns stored activities into rolling risk statistics
type AnalysisService struct {
	store       *store.DB
	mode        load.Mode
	summaryPath string
	log         log.FieldLogger
	now         func() time.Time

	metrics     *metrics.Manager
	metricsPath string
}

// NewAnalysisService creates an analysis service writing its summary to
// summaryPath
func NewAnalysisService(db *store.DB, mode load.Mode, summaryPath string, logger log.FieldLogger) *AnalysisService {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &AnalysisService{
		store:       db,
		mode:        mode,
		summaryPath: summaryPath,
		log:         logger.WithField("component", "analysis"),
		now:         time.Now,
	}
}

// ExportMetrics makes every run also write its gauges to a Prometheus
// textfile at path
func (s *AnalysisService) ExportMetrics(m *metrics.Manager, path string) {
	s.metrics = m
	s.metricsPath = path
}

// AnalysisResult is the outcome of one analysis run
type AnalysisResult struct {
	RunID   string
	Load    load.Result
	Rows    []acwr.Row
	Summary acwr.Summary
	// Written is false when no summary file was produced
	Written bool
}

// Run normalizes every stored activity, computes the rolling statistics,
// records them in the risk history and writes the latest summary.
// When the latest chronic load is zero the summary is written with a null
// ratio and the returned error wraps acwr.ErrInsufficientData. Nothing is
// written when there are no activities at all.
func (s *AnalysisService) Run() (*AnalysisResult, error) {
	activities, err := s.store.ListActivitiesSince(time.Time{})
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	records := make([]load.ActivityRecord, len(activities))
	for i, a := range activities {
		records[i] = a.Record()
	}

	result := &AnalysisResult{RunID: uuid.NewString()}
	logger := s.log.WithField("run", result.RunID)

	result.Load = load.Normalize(records, s.mode)
	for _, sk := range result.Load.Skipped {
		logger.WithFields(log.Fields{"activity": sk.ID, "reason": sk.Reason}).Warn("skipped record")
	}
	logger.WithFields(log.Fields{
		"activities": len(records),
		"days":       len(result.Load.Series),
		"metric":     result.Load.Metric.Description(),
		"mode":       result.Load.Mode,
	}).Info("normalized load")

	result.Rows = acwr.Compute(result.Load.Series)
	if err := s.store.SaveRiskHistory(riskEntries(result.Rows, result.RunID)); err != nil {
		return result, fmt.Errorf("saving risk history: %w", err)
	}

	result.Summary, err = acwr.Latest(result.Rows)
	s.export(result, err != nil, logger)
	if err != nil {
		// a null ratio replaces the previous summary
		if len(result.Rows) > 0 {
			if werr := summary.Write(s.summaryPath, result.Summary); werr != nil {
				return result, werr
			}
			result.Written = true
		}
		logger.WithError(err).WithField("written", result.Written).Warn("no ratio for the latest day")
		return result, fmt.Errorf("computing risk: %w", err)
	}

	if err := summary.Write(s.summaryPath, result.Summary); err != nil {
		return result, err
	}
	result.Written = true

	if err := s.store.SetSyncTime(store.KeyLastAnalysis, s.now()); err != nil {
		logger.WithError(err).Warn("recording analysis time")
	}

	logger.WithFields(log.Fields{
		"date":   result.Summary.Date.Format(time.DateOnly),
		"acwr":   *result.Summary.ACWR,
		"status": result.Summary.Status,
	}).Info("risk summary written")

	return result, nil
}

// export failures are logged; the summary file stays the primary output
func (s *AnalysisService) export(r *AnalysisResult, insufficient bool, logger log.FieldLogger) {
	if s.metrics == nil {
		return
	}
	s.metrics.Observe(metrics.Observation{
		Summary:      r.Summary,
		Insufficient: insufficient,
		Skipped:      len(r.Load.Skipped),
		At:           s.now(),
	})
	if err := s.metrics.WriteTextfile(s.metricsPath); err != nil {
		logger.WithError(err).Warn("exporting metrics")
	}
}

// IsInsufficient reports whether err means there was too little data
func IsInsufficient(err error) bool {
	return errors.Is(err, acwr.ErrInsufficientData)
}

func riskEntries(rows []acwr.Row, runID string) []store.RiskEntry {
	entries := make([]store.RiskEntry, len(rows))
	for i, r := range rows {
		entries[i] = store.RiskEntry{
			Date:      r.Date,
			DailyLoad: r.DailyLoad,
			Acute:     r.Acute,
			Chronic:   r.Chronic,
			ACWR:      r.ACWR,
			RunID:     runID,
		}
		if status, ok := r.Status(); ok {
			s := status.String()
			entries[i].Status = &s
		}
	}
	return entries
}
