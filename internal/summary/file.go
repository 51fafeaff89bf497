// Package summary persists the latest risk summary as a JSON file shared
// with downstream consumers.
package summary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"loadwatch/internal/acwr"
)

// ErrNoSummary is returned when no summary file exists yet
var ErrNoSummary = errors.New("risk summary not found")

// Write replaces the summary file atomically: readers see either the old
// file or the new one, never a partial write.
func Write(path string, s acwr.Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating summary directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("replacing summary: %w", err)
	}
	return nil
}

// Read loads the summary file
func Read(path string) (acwr.Summary, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return acwr.Summary{}, ErrNoSummary
	}
	if err != nil {
		return acwr.Summary{}, fmt.Errorf("reading summary: %w", err)
	}

	var s acwr.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return acwr.Summary{}, fmt.Errorf("parsing summary: %w", err)
	}
	return s, nil
}
