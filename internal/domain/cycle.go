package domain

import "time"

// CycleStats holds counters for one poll cycle.
type CycleStats struct {
	SourceID string
	Scanned  int
	Skipped  int
	Approved int
	Rejected int
	Notified int
	Errors   int
	Duration time.Duration
}

// WatchState is the per-source running total, updated after every cycle.
type WatchState struct {
	ID            int64     `db:"id"`
	SourceID      string    `db:"source_id"`
	LastCycleAt   time.Time `db:"last_cycle_at"`
	TotalScanned  int64     `db:"total_scanned"`
	TotalApproved int64     `db:"total_approved"`
}
