package pipeline

import (
	"errors"
	"fmt"
)

// Failure modes the pipeline itself can produce. Failures of the external
// boundaries surface as engine.ErrUnreachable, search.ErrUnavailable and
// search.ErrQuota, wrapped in a StageError like everything else.
var (
	// ErrMalformedPlan means the planner response could not be parsed into
	// at least one sub-question.
	ErrMalformedPlan = errors.New("planner response could not be parsed into sub-questions")
	// ErrSynthesis means the engine returned an empty or blank summary.
	ErrSynthesis = errors.New("synthesizer returned an empty response")
)

// StageError wraps a stage failure with the name of the stage that failed,
// so the run's abort message can say which step broke.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
