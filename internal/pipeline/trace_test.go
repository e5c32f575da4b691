package pipeline

import (
	"testing"
)

func TestRecorderAppendOrder(t *testing.T) {
	rec := NewRecorder()
	rec.Append(StagePlan, "topic", "questions")
	rec.Append(StageSearch, "queries", "results")
	rec.Append(StageSynthesize, "context", "summary")

	steps := rec.Steps()
	if len(steps) != 3 {
		t.Fatalf("len = %d, want 3", len(steps))
	}
	for i, stage := range []string{StagePlan, StageSearch, StageSynthesize} {
		if steps[i].Stage != stage {
			t.Errorf("steps[%d].Stage = %q, want %q", i, steps[i].Stage, stage)
		}
	}
	if steps[0].Timestamp.After(steps[2].Timestamp) {
		t.Error("timestamps out of order")
	}
}

func TestRecorderAllIsRestartable(t *testing.T) {
	rec := NewRecorder()
	rec.Append(StagePlan, "a", "b")
	rec.Append(StageSearch, "c", "d")

	seq := rec.All()
	for range 2 {
		var stages []string
		for step := range seq {
			stages = append(stages, step.Stage)
		}
		if len(stages) != 2 || stages[0] != StagePlan || stages[1] != StageSearch {
			t.Fatalf("iteration yielded %v", stages)
		}
	}

	// Early break must not poison later iterations.
	for range seq {
		break
	}
	n := 0
	for range seq {
		n++
	}
	if n != 2 {
		t.Fatalf("after early break, iteration yielded %d steps, want 2", n)
	}
}

func TestRecorderStepsIsACopy(t *testing.T) {
	rec := NewRecorder()
	rec.Append(StagePlan, "a", "b")

	steps := rec.Steps()
	steps[0].Output = "mutated"

	if rec.Steps()[0].Output != "b" {
		t.Error("mutating the snapshot changed the recorder")
	}
}
