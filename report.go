package main

import (
	"fmt"
	"io"
	"time"

	"loadwatch/internal/service"
)

// printReport writes the analysis summary the way the coach reads it
func printReport(w io.Writer, result *service.AnalysisResult) {
	s := result.Summary

	fmt.Fprintf(w, "--- Physio Report (%s) ---\n", s.Date.Format(time.DateOnly))
	fmt.Fprintf(w, "Load Source: %s\n", result.Load.SourceLabel())
	fmt.Fprintf(w, "Acute Load (7d): %.0f\n", s.AcuteLoad)
	fmt.Fprintf(w, "Chronic Load (28d): %.0f\n", s.ChronicLoad)
	fmt.Fprintf(w, "ACWR: %.2f\n", *s.ACWR)
	fmt.Fprintf(w, "Status: %s\n", s.Status.Label())

	if n := len(result.Load.Skipped); n > 0 {
		fmt.Fprintf(w, "Skipped %d malformed activities\n", n)
	}
}
