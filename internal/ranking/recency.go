package ranking

import "time"

// RecencyConfig controls the boost applied to recently published sources.
type RecencyConfig struct {
	RecentDays  int // Sources at most this many days old get RecentBoost
	RecentBoost float64
	FreshDays   int // Sources at most this many days old get FreshBoost
	FreshBoost  float64
}

// DefaultRecency returns the standard recency tunables: x1.2 within a week,
// x1.1 within a month.
func DefaultRecency() RecencyConfig {
	return RecencyConfig{
		RecentDays:  7,
		RecentBoost: 1.2,
		FreshDays:   30,
		FreshBoost:  1.1,
	}
}

// Multiplier returns the score multiplier for a source published at
// published, as seen at now. Age is counted in whole days. Future-dated
// sources count as recent.
func (c RecencyConfig) Multiplier(published, now time.Time) float64 {
	days := int(now.Sub(published) / (24 * time.Hour))
	switch {
	case days <= c.RecentDays:
		return c.RecentBoost
	case days <= c.FreshDays:
		return c.FreshBoost
	default:
		return 1.0
	}
}
