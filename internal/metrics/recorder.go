package metrics

import "time"

// AssetOutcome enumerates per-asset results for counters.
type AssetOutcome string

const (
	AssetCompleted AssetOutcome = "completed"
	AssetDeferred  AssetOutcome = "deferred"
	AssetErrored   AssetOutcome = "errored"
	AssetCycled    AssetOutcome = "cycled"
)

// Build outcome labels.
const (
	BuildOutcomeSuccess = "success"
	BuildOutcomeFailed  = "failed"
)

// Recorder defines the build observability hooks.
type Recorder interface {
	ObservePassDuration(d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncAssetOutcome(outcome AssetOutcome)
	IncProcessorWarning(processor string)
	SetPending(n int)
	IncBuildOutcome(outcome string) // outcome: success|failed
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePassDuration(time.Duration)  {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncAssetOutcome(AssetOutcome)       {}
func (NoopRecorder) IncProcessorWarning(string)         {}
func (NoopRecorder) SetPending(int)                     {}
func (NoopRecorder) IncBuildOutcome(string)             {}
