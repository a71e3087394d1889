package recorder

import "time"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *Run) error               { return nil }
func (n *NoopRecorder) RecordRefresh(_ *RefreshEvent) error  { return nil }
func (n *NoopRecorder) RecentRuns(_ int) ([]Run, error)      { return nil, nil }
func (n *NoopRecorder) RunsSince(_ time.Time) ([]Run, error) { return nil, nil }
func (n *NoopRecorder) Close() error                         { return nil }
