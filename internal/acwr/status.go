package acwr

import (
	"fmt"
	"strings"
)

// Risk thresholds. A ratio strictly above HighThreshold is HIGH, strictly
// above ElevatedThreshold is ELEVATED; equality falls into the lower band.
const (
	HighThreshold     = 1.3
	ElevatedThreshold = 1.1
)

// Status is the discrete risk band derived from the ACWR
type Status int

const (
	StatusGreen Status = iota
	StatusElevated
	StatusHigh
)

// Classify maps an ACWR value to its risk band
func Classify(acwr float64) Status {
	switch {
	case acwr > HighThreshold:
		return StatusHigh
	case acwr > ElevatedThreshold:
		return StatusElevated
	default:
		return StatusGreen
	}
}

// String returns the wire name of the status
func (s Status) String() string {
	switch s {
	case StatusHigh:
		return "HIGH"
	case StatusElevated:
		return "ELEVATED"
	default:
		return "GREEN"
	}
}

// Label returns the human-readable status line
func (s Status) Label() string {
	switch s {
	case StatusHigh:
		return "HIGH RISK (Groin Guard Active)"
	case StatusElevated:
		return "ELEVATED RISK"
	default:
		return "GREEN LIGHT"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The long labels are
// accepted too.
func (s *Status) UnmarshalText(b []byte) error {
	v := strings.ToUpper(strings.TrimSpace(string(b)))
	switch {
	case v == "GREEN" || strings.HasPrefix(v, "GREEN "):
		*s = StatusGreen
	case v == "ELEVATED" || strings.HasPrefix(v, "ELEVATED "):
		*s = StatusElevated
	case v == "HIGH" || strings.HasPrefix(v, "HIGH "):
		*s = StatusHigh
	default:
		return fmt.Errorf("unknown risk status %q", string(b))
	}
	return nil
}
