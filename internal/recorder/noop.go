package recorder

import "WolfDesk/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ *model.Analysis) error             { return nil }
func (n *NoopRecorder) RecordScreen(_ *model.ScreenReport) error           { return nil }
func (n *NoopRecorder) RecordPortfolioCheck(_ []model.Quote) error         { return nil }
func (n *NoopRecorder) RecentAnalyses(string, int) ([]AnalysisRow, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                       { return nil }
