package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRanking(_ *RankingRun) error     { return nil }
func (n *NoopRecorder) RecordFinancial(_ *FinancialRun) error { return nil }
func (n *NoopRecorder) Close() error                          { return nil }
