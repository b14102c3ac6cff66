package models

import (
	"slices"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// FilterSpec holds the deletion criteria of a single run
type FilterSpec struct {
	Types      []string
	MinSize    int64
	HasMinSize bool
	MaxAgeDays int
	HasMaxAge  bool
	DryRun     bool
}

// Active reports whether at least one deletion criterion is configured
func (f FilterSpec) Active() bool {
	return len(f.Types) > 0 || f.HasMinSize || f.HasMaxAge
}

// HasType reports whether filetype is in the configured set (case-sensitive)
func (f FilterSpec) HasType(filetype string) bool {
	return slices.Contains(f.Types, filetype)
}

// DeletionStats summarizes one deletion pass
type DeletionStats struct {
	DeletedCount int64
	DeletedBytes int64
	Failed       int64
}

// UpperTimestamp returns the newest creation time (epoch seconds) a file may
// have to fall inside the age window, or nil when no age filter is set.
// Windows reaching back before the epoch are clamped to zero.
func (f FilterSpec) UpperTimestamp(now time.Time) *int64 {
	if !f.HasMaxAge {
		return nil
	}

	var bound int64
	if days := int64(f.MaxAgeDays); days <= now.Unix()/secondsPerDay {
		bound = now.Unix() - days*secondsPerDay
	}
	return &bound
}
