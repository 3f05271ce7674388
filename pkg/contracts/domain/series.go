package domain

import (
	"fmt"
	"time"

	"github.com/guregu/null/v6"
)

// Observation is a single dated datum of a series. A missing upstream value
// is carried as an invalid null.Float, never as zero.
type Observation struct {
	Date  time.Time  `json:"date"`
	Value null.Float `json:"value"`
}

// Series is the normalized representation of one upstream indicator: an
// identifier, provider metadata and a date-ordered sequence of observations.
//
// Invariant: observation dates are strictly increasing with no duplicates.
// Adapters must only hand out series that satisfy Validate.
type Series struct {
	ID           string        `json:"id"`
	Title        string        `json:"title,omitempty"`
	Unit         string        `json:"unit,omitempty"`
	Frequency    Frequency     `json:"frequency,omitempty"`
	Source       string        `json:"source,omitempty"`
	Observations []Observation `json:"observations"`
}

// Validate checks the series invariant: a non-empty identifier and strictly
// increasing observation dates.
func (s *Series) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("series has no identifier")
	}
	for i := 1; i < len(s.Observations); i++ {
		prev, cur := s.Observations[i-1].Date, s.Observations[i].Date
		if !cur.After(prev) {
			return fmt.Errorf("series %s: observation dates not strictly increasing at index %d (%s then %s)",
				s.ID, i, prev.Format("2006-01-02"), cur.Format("2006-01-02"))
		}
	}
	return nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Observations)
}

// Dates returns the observation dates in order.
func (s *Series) Dates() []time.Time {
	dates := make([]time.Time, len(s.Observations))
	for i, obs := range s.Observations {
		dates[i] = obs.Date
	}
	return dates
}

// Values returns the observation values in date order, missing data included
// as invalid entries.
func (s *Series) Values() []null.Float {
	values := make([]null.Float, len(s.Observations))
	for i, obs := range s.Observations {
		values[i] = obs.Value
	}
	return values
}

// At returns the value at the given date and whether the series has an
// observation there at all. A present but missing datum returns an invalid
// null.Float with ok == true.
func (s *Series) At(date time.Time) (null.Float, bool) {
	for _, obs := range s.Observations {
		if obs.Date.Equal(date) {
			return obs.Value, true
		}
	}
	return null.Float{}, false
}

// Day normalizes a timestamp to UTC midnight. Adapters use it so that dates
// from different providers align on the merge axis.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
