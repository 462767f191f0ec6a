package inventory

import (
	"time"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
)

// Rotation windows. Logs rotate hourly, so each window carries one extra hour.
const (
	ErrorLogWindow = 30*24*time.Hour + time.Hour
	DailyLogWindow = 24*time.Hour + time.Hour
)

// StalenessPolicy is the maximum age a log file of each category may reach.
type StalenessPolicy map[entity.Category]time.Duration

// DefaultPolicy returns the fixed rotation policy of Aurora MySQL logs.
func DefaultPolicy() StalenessPolicy {
	return StalenessPolicy{
		entity.CategoryError:     ErrorLogWindow,
		entity.CategoryGeneral:   DailyLogWindow,
		entity.CategoryAudit:     DailyLogWindow,
		entity.CategorySlowQuery: DailyLogWindow,
	}
}

// Cutoffs are the per-category instants, in epoch millis, derived from one now.
type Cutoffs struct {
	now    time.Time
	millis map[entity.Category]int64
}

// Cutoffs snapshots the policy against now. The result is shared by every
// instance of a run so all files are judged against the same instants.
func (p StalenessPolicy) Cutoffs(now time.Time) Cutoffs {
	c := Cutoffs{now: now, millis: make(map[entity.Category]int64, len(p))}
	for category, window := range p {
		c.millis[category] = now.Add(-window).UnixMilli()
	}
	return c
}

// Now is the snapshot the cutoffs were computed from.
func (c Cutoffs) Now() time.Time {
	return c.now
}

// For returns the cutoff of a category; unclassified files have none.
func (c Cutoffs) For(category entity.Category) (int64, bool) {
	cutoff, ok := c.millis[category]
	return cutoff, ok
}

// IsStale classifies d and reports whether it was last written strictly
// before its category cutoff.
func (c Cutoffs) IsStale(d entity.LogFileDescriptor) (entity.Category, bool) {
	category := Classify(d.Name)
	cutoff, ok := c.For(category)
	if !ok {
		return category, false
	}
	return category, d.LastWritten < cutoff
}
