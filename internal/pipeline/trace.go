package pipeline

import (
	"iter"
	"sync"
	"time"

	"github.com/tanmayd/research-hub/internal/models"
)

// Recorder is an append-only log of reasoning steps. Appends are serialized
// so stages could run concurrently without losing step ordering.
type Recorder struct {
	mu    sync.Mutex
	steps []models.ReasoningStep
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append records one step with the current time.
func (r *Recorder) Append(stage, input, output string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, models.ReasoningStep{
		Stage:     stage,
		Input:     input,
		Output:    output,
		Timestamp: time.Now(),
	})
}

// All returns a restartable sequence of steps in insertion order. The
// sequence iterates over a snapshot, so appends during iteration are safe.
func (r *Recorder) All() iter.Seq[models.ReasoningStep] {
	return func(yield func(models.ReasoningStep) bool) {
		for _, s := range r.Steps() {
			if !yield(s) {
				return
			}
		}
	}
}

// Steps returns a copy of the recorded steps.
func (r *Recorder) Steps() []models.ReasoningStep {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ReasoningStep, len(r.steps))
	copy(out, r.steps)
	return out
}

// Len reports the number of recorded steps.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps)
}
