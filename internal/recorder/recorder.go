package recorder

import "time"

// Run records one optimization. Spend amounts are never stored.
type Run struct {
	Timestamp      time.Time
	Source         string // "bot" or "cli"
	CardCount      int
	Cards          []string
	Memberships    []string
	Score          float64
	Annual         float64
	Multiplier     float64
	Evaluated      int
	Duration       time.Duration
	CatalogVersion uint64
}

// RefreshEvent records a catalog refresh attempt.
type RefreshEvent struct {
	Timestamp time.Time
	Source    string
	Version   uint64
	Cards     int
	OK        bool
	Err       string
}

// Recorder persists run history for the digest and for analysis.
type Recorder interface {
	RecordRun(run *Run) error
	RecordRefresh(evt *RefreshEvent) error
	RecentRuns(limit int) ([]Run, error)
	RunsSince(since time.Time) ([]Run, error)
	Close() error
}
