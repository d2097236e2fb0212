package app

import "fmt"

// Stage names one step of the pipeline state machine. A run moves strictly
// forward: Idle → Fetching → Extracting → Normalizing → Summarizing →
// Sinking → Done, with a direct edge from any stage to failure. No stage is
// re-entered; a failed run is not resumed.
type Stage int

const (
	StageIdle Stage = iota
	StageFetching
	StageExtracting
	StageNormalizing
	StageSummarizing
	StageSinking
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageFetching:
		return "fetching"
	case StageExtracting:
		return "extracting"
	case StageNormalizing:
		return "normalizing"
	case StageSummarizing:
		return "summarizing"
	case StageSinking:
		return "sinking"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// StageError carries the stage a run failed in along with the original cause.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }
