package domain

import (
	"fmt"
	"time"
)

// ListStatus is the watching status of a list entry on the remote service.
type ListStatus string

// Valid list statuses.
const (
	StatusCurrent   ListStatus = "CURRENT"
	StatusPlanning  ListStatus = "PLANNING"
	StatusCompleted ListStatus = "COMPLETED"
	StatusDropped   ListStatus = "DROPPED"
	StatusPaused    ListStatus = "PAUSED"
	StatusRepeating ListStatus = "REPEATING"
)

// IsValid reports whether s is one of the known list statuses.
func (s ListStatus) IsValid() bool {
	switch s {
	case StatusCurrent, StatusPlanning, StatusCompleted, StatusDropped, StatusPaused, StatusRepeating:
		return true
	}
	return false
}

// FuzzyDate is a partial calendar date as the remote service reports it.
// A zero Year means the date is unknown.
type FuzzyDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Time converts a fuzzy date to a concrete date, defaulting missing
// month and day to 1. Returns nil when the year is absent.
func (d FuzzyDate) Time() *time.Time {
	if d.Year == 0 {
		return nil
	}
	month := d.Month
	if month == 0 {
		month = 1
	}
	day := d.Day
	if day == 0 {
		day = 1
	}
	t := time.Date(d.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

// String renders the date as YYYY-MM-DD, or "" when unknown.
func (d FuzzyDate) String() string {
	t := d.Time()
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// ListEntry is one entry in a user's remote media list.
// The ID is assigned by the remote service and is globally unique.
type ListEntry struct {
	ID          int        `json:"id"`
	Username    string     `json:"username"`
	MediaID     int        `json:"media_id"`
	ListName    string     `json:"list_name"`
	Status      ListStatus `json:"status"`
	Score       float64    `json:"score"`
	Progress    int        `json:"progress"`
	Repeat      int        `json:"repeat_count"`
	StartedAt   FuzzyDate  `json:"started_at"`
	CompletedAt FuzzyDate  `json:"completed_at"`
	// UpdatedAt and CreatedAt are remote-side epoch seconds.
	UpdatedAt int64 `json:"updated_at"`
	CreatedAt int64 `json:"created_at"`
	// SyncedAt is set locally when the entry is persisted.
	SyncedAt time.Time `json:"synced_at"`

	Media *Media `json:"media,omitempty"`
}

// List is one named list from the remote collection, e.g. "Watching".
type List struct {
	Name    string      `json:"name"`
	Entries []*ListEntry `json:"entries"`
}

// EntryCount returns the total number of entries across lists.
func EntryCount(lists []List) int {
	n := 0
	for _, l := range lists {
		n += len(l.Entries)
	}
	return n
}

// EntrySummary is the projection of a list entry the change detector
// compares: the four mutable fields keyed by entry ID.
type EntrySummary struct {
	ID        int
	Status    ListStatus
	Score     float64
	Progress  int
	UpdatedAt int64
}

// Summary returns the change-detection projection of the entry.
func (e *ListEntry) Summary() EntrySummary {
	return EntrySummary{
		ID:        e.ID,
		Status:    e.Status,
		Score:     e.Score,
		Progress:  e.Progress,
		UpdatedAt: e.UpdatedAt,
	}
}

// Validate checks remote-supplied invariants before persistence.
func (e *ListEntry) Validate() error {
	if e.ID == 0 {
		return fmt.Errorf("entry has no id")
	}
	if e.MediaID == 0 {
		return fmt.Errorf("entry %d has no media id", e.ID)
	}
	if e.Progress < 0 {
		return fmt.Errorf("entry %d has negative progress", e.ID)
	}
	if e.Status != "" && !e.Status.IsValid() {
		return fmt.Errorf("entry %d has unknown status %q", e.ID, e.Status)
	}
	return nil
}
