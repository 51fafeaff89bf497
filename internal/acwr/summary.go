package acwr

import (
	"encoding/json"
	"fmt"
	"time"
)

// Summary is the latest-day risk report handed to downstream consumers
type Summary struct {
	Date        time.Time
	ACWR        *float64
	AcuteLoad   float64
	ChronicLoad float64
	Status      Status
}

type summaryJSON struct {
	Date        string   `json:"date"`
	ACWR        *float64 `json:"acwr"`
	AcuteLoad   float64  `json:"acute_load"`
	ChronicLoad float64  `json:"chronic_load"`
	Status      *Status  `json:"status,omitempty"`
}

// MarshalJSON encodes the date as YYYY-MM-DD and a nil ratio as null
func (s Summary) MarshalJSON() ([]byte, error) {
	out := summaryJSON{
		Date:        s.Date.Format(time.DateOnly),
		ACWR:        s.ACWR,
		AcuteLoad:   s.AcuteLoad,
		ChronicLoad: s.ChronicLoad,
	}
	if s.ACWR != nil {
		status := s.Status
		out.Status = &status
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a summary. When the status field is absent it is
// derived from the ratio.
func (s *Summary) UnmarshalJSON(b []byte) error {
	var in summaryJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	date, err := time.Parse(time.DateOnly, in.Date)
	if err != nil {
		return fmt.Errorf("parsing summary date %q: %w", in.Date, err)
	}

	*s = Summary{
		Date:        date,
		ACWR:        in.ACWR,
		AcuteLoad:   in.AcuteLoad,
		ChronicLoad: in.ChronicLoad,
	}
	switch {
	case in.ACWR != nil:
		s.Status = Classify(*in.ACWR)
	case in.Status != nil:
		s.Status = *in.Status
	}
	return nil
}

// HasRatio reports whether the summary carries a computed ratio
func (s Summary) HasRatio() bool {
	return s.ACWR != nil
}
