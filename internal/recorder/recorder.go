package recorder

// RunRecord captures the outcome of one completed simulation for later
// analysis. The engine itself never writes these; recording is glue-layer
// behavior.
type RunRecord struct {
	KeyHash        string
	MarketKey      string
	Liquidated     bool
	SharpeRatio    *float64
	Days           int
	FinalTimestamp int64
	DurationMs     int64
}

// Recorder persists simulation run history.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	Close() error
}

// NoopRecorder drops all records. Used when no recorder storage is
// configured.
type NoopRecorder struct{}

func (NoopRecorder) RecordRun(*RunRecord) error { return nil }
func (NoopRecorder) Close() error               { return nil }
