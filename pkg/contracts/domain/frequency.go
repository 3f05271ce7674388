package domain

import "strings"

// Frequency describes the native resolution of a series as reported by the
// upstream provider.
type Frequency string

const (
	FrequencyUnknown   Frequency = ""
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
)

// String returns the lowercase name of the frequency, or "unknown".
func (f Frequency) String() string {
	if f == FrequencyUnknown {
		return "unknown"
	}
	return string(f)
}

// ParseFrequency maps provider frequency labels onto a Frequency. It accepts
// both the long form FRED uses ("Quarterly", "Annual") and the single-letter
// codes ("Q", "A"). Unrecognized labels map to FrequencyUnknown rather than
// failing; frequency is metadata, not part of the series invariant.
func ParseFrequency(s string) Frequency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "daily", "daily, 7-day":
		return FrequencyDaily
	case "w", "weekly":
		return FrequencyWeekly
	case "m", "monthly":
		return FrequencyMonthly
	case "q", "quarterly":
		return FrequencyQuarterly
	case "a", "annual", "yearly":
		return FrequencyAnnual
	default:
		return FrequencyUnknown
	}
}
