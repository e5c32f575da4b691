// Package pipeline runs the plan -> search -> synthesize research flow and
// records a user-visible reasoning trace for every stage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tanmayd/research-hub/internal/graph"
	"github.com/tanmayd/research-hub/internal/models"
)

// Stage names, used in trace steps and failure messages.
const (
	StagePlan       = "plan"
	StageSearch     = "search"
	StageSynthesize = "synthesize"
)

// DepthConfig maps depth names to {max sub-questions, results per question}.
var DepthConfig = map[string][2]int{
	"Quick":    {2, 3},
	"Standard": {4, 5},
	"Deep":     {6, 7},
}

// Engine generates text from a prompt. Production implementation lives in
// internal/engine; tests use scripted fakes.
type Engine interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Searcher returns ranked web results for a query, at most maxResults.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
}

// Result is the outcome of one research run. On failure it still carries
// everything produced before the failing stage.
type Result struct {
	Topic        string
	SubQuestions []models.SubQuestion
	Summary      string
	Trace        []models.ReasoningStep
}

type runState struct {
	topic           string
	maxQuestions    int
	resultsPerQuery int

	subQuestions []models.SubQuestion
	summary      string
	trace        *Recorder
}

// Runner sequences the research stages over an engine and a searcher.
type Runner struct {
	engine   Engine
	searcher Searcher
	flow     *graph.Runnable[*runState]
}

func NewRunner(engine Engine, searcher Searcher) (*Runner, error) {
	r := &Runner{engine: engine, searcher: searcher}

	g := graph.New[*runState]()
	g.AddNode(StagePlan, r.planNode)
	g.AddNode(StageSearch, r.searchNode)
	g.AddNode(StageSynthesize, r.synthesizeNode)
	g.SetEntryPoint(StagePlan)
	g.AddEdge(StagePlan, StageSearch)
	g.AddEdge(StageSearch, StageSynthesize)
	g.AddEdge(StageSynthesize, graph.End)

	flow, err := g.Compile()
	if err != nil {
		return nil, err
	}
	r.flow = flow
	return r, nil
}

// Run executes the full pipeline for a topic. Any stage failure aborts the
// run; the returned Result then holds the trace accumulated so far,
// including a final step describing the failure, and the error is a
// *StageError naming the stage.
func (r *Runner) Run(ctx context.Context, topic, depth string) (*Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.New("topic must not be empty")
	}

	cfg, ok := DepthConfig[depth]
	if !ok {
		cfg = DepthConfig["Standard"]
	}

	state := &runState{
		topic:           topic,
		maxQuestions:    cfg[0],
		resultsPerQuery: cfg[1],
		trace:           NewRecorder(),
	}

	state, err := r.flow.Invoke(ctx, state)
	res := &Result{
		Topic:        state.topic,
		SubQuestions: state.subQuestions,
		Summary:      state.summary,
		Trace:        state.trace.Steps(),
	}
	return res, err
}

func (r *Runner) planNode(ctx context.Context, s *runState) (*runState, error) {
	prompt := buildPlannerPrompt(s.topic, s.maxQuestions)

	questions, err := r.plan(ctx, prompt)
	if errors.Is(err, ErrMalformedPlan) {
		// One retry on parse failure; a fresh completion often lists properly.
		questions, err = r.plan(ctx, prompt)
	}
	if err != nil {
		return s, r.fail(s, StagePlan, s.topic, err)
	}

	if len(questions) > s.maxQuestions {
		questions = questions[:s.maxQuestions]
	}
	for _, q := range questions {
		s.subQuestions = append(s.subQuestions, models.SubQuestion{Question: q})
	}

	var out strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&out, "%d. %s\n", i+1, q)
	}
	s.trace.Append(StagePlan, s.topic, out.String())
	return s, nil
}

func (r *Runner) plan(ctx context.Context, prompt string) ([]string, error) {
	resp, err := r.engine.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseSubQuestions(resp)
}

func (r *Runner) searchNode(ctx context.Context, s *runState) (*runState, error) {
	var queries, outcomes []string
	for i := range s.subQuestions {
		q := s.subQuestions[i].Question
		queries = append(queries, q)

		results, err := r.searcher.Search(ctx, q, s.resultsPerQuery)
		if err != nil {
			return s, r.fail(s, StageSearch, q, err)
		}
		if len(results) > s.resultsPerQuery {
			results = results[:s.resultsPerQuery]
		}
		s.subQuestions[i].Results = results
		outcomes = append(outcomes, fmt.Sprintf("%q: %d results", q, len(results)))
	}
	s.trace.Append(StageSearch, strings.Join(queries, "\n"), strings.Join(outcomes, "\n"))
	return s, nil
}

func (r *Runner) synthesizeNode(ctx context.Context, s *runState) (*runState, error) {
	prompt := buildSynthesizerPrompt(s.topic, s.subQuestions)

	resp, err := r.engine.Complete(ctx, prompt)
	if err != nil {
		return s, r.fail(s, StageSynthesize, s.topic, err)
	}
	summary := stripThinkBlocks(resp)
	if summary == "" {
		return s, r.fail(s, StageSynthesize, s.topic, ErrSynthesis)
	}

	s.summary = summary
	input := fmt.Sprintf("%d sub-questions, %d sources", len(s.subQuestions), sourceCount(s.subQuestions))
	s.trace.Append(StageSynthesize, input, summary)
	return s, nil
}

// fail records the failure as a trace step so earlier steps stay visible,
// then wraps the error with the stage name.
func (r *Runner) fail(s *runState, stage, input string, err error) error {
	s.trace.Append(stage, input, "error: "+err.Error())
	return &StageError{Stage: stage, Err: err}
}

func sourceCount(subQuestions []models.SubQuestion) int {
	n := 0
	for _, sq := range subQuestions {
		n += len(sq.Results)
	}
	return n
}
