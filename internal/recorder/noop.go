package recorder

import "GoldSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(_ *model.CycleResult) error { return nil }
func (n *NoopRecorder) RecentAlerts(_ int) ([]AlertRow, error) { return nil, nil }
func (n *NoopRecorder) Close() error                           { return nil }
