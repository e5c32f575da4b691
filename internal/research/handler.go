package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tanmayd/research-hub/internal/engine"
	"github.com/tanmayd/research-hub/internal/metrics"
	"github.com/tanmayd/research-hub/internal/models"
	"github.com/tanmayd/research-hub/internal/pipeline"
	"github.com/tanmayd/research-hub/internal/search"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RunStore defines the interface for run persistence.
type RunStore interface {
	Insert(ctx context.Context, run *models.Run) (string, error)
	ListByUser(ctx context.Context, userID string) ([]models.Run, error)
	GetByID(ctx context.Context, id string) (*models.Run, error)
	Delete(ctx context.Context, id string) error
}

// ReportStore defines the interface for rendered report storage.
type ReportStore interface {
	Put(ctx context.Context, key, report string) error
	Get(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

// Runner executes the research pipeline for one topic.
type Runner interface {
	Run(ctx context.Context, topic, depth string) (*pipeline.Result, error)
}

// Handler holds research HTTP handlers.
type Handler struct {
	runs    RunStore
	reports ReportStore
	runner  Runner
	model   string
}

func NewHandler(runs RunStore, reports ReportStore, runner Runner, model string) *Handler {
	return &Handler{runs: runs, reports: reports, runner: runner, model: model}
}

// Create executes the full plan -> search -> synthesize pipeline and stores
// the run. Failed runs are stored too, with the trace accumulated before the
// failing stage, and answered with 502 naming the stage.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var req models.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Topic == "" {
		http.Error(w, `{"error":"topic is required"}`, http.StatusBadRequest)
		return
	}
	if req.Depth == "" {
		req.Depth = "Standard"
	}

	started := time.Now()
	result, runErr := h.runner.Run(r.Context(), req.Topic, req.Depth)
	if result == nil {
		// Rejected before any stage ran (empty topic after trimming).
		http.Error(w, `{"error":"topic is required"}`, http.StatusBadRequest)
		return
	}

	run := &models.Run{
		UserID:       userID,
		Topic:        result.Topic,
		Depth:        req.Depth,
		SubQuestions: result.SubQuestions,
		Summary:      result.Summary,
		Trace:        result.Trace,
		Status:       models.StatusCompleted,
		ModelUsed:    h.model,
	}

	if runErr != nil {
		run.Status = models.StatusFailed
		run.FailedStage, run.Error = describeFailure(runErr)
	} else {
		run.ReportKey = reportKey(userID, result.Topic)
		if err := h.reports.Put(r.Context(), run.ReportKey, RenderReport(run)); err != nil {
			log.Printf("report upload error (non-fatal): %v", err)
			run.ReportKey = ""
		}
	}

	metrics.RunsTotal.WithLabelValues(run.Status).Inc()
	metrics.RunDuration.WithLabelValues(run.Status).Observe(time.Since(started).Seconds())

	runID, err := h.runs.Insert(r.Context(), run)
	if err != nil {
		log.Printf("run insert error: %v", err)
		http.Error(w, `{"error":"failed to save research run"}`, http.StatusInternalServerError)
		return
	}

	if runErr != nil {
		log.Printf("research run failed at %s: %v", run.FailedStage, runErr)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":  run.Error,
			"stage":  run.FailedStage,
			"run_id": runID,
		})
		return
	}

	saved, err := h.runs.GetByID(r.Context(), runID)
	if err != nil {
		log.Printf("run re-fetch error: %v", err)
		writeJSON(w, http.StatusCreated, run)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// List returns all runs for the current user.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	runs, err := h.runs.ListByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []models.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// Get returns a single run with its full trace.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	run, ok := h.ownedRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Trace returns just the ordered reasoning steps of a run.
func (h *Handler) Trace(w http.ResponseWriter, r *http.Request) {
	run, ok := h.ownedRun(w, r)
	if !ok {
		return
	}
	steps := run.Trace
	if steps == nil {
		steps = []models.ReasoningStep{}
	}
	writeJSON(w, http.StatusOK, steps)
}

// DownloadReport streams the rendered markdown report.
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	run, ok := h.ownedRun(w, r)
	if !ok {
		return
	}
	if run.ReportKey == "" {
		http.Error(w, `{"error":"report not available"}`, http.StatusNotFound)
		return
	}

	report, err := h.reports.Get(r.Context(), run.ReportKey)
	if err != nil {
		http.Error(w, `{"error":"download failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=report.md")
	w.Write([]byte(report))
}

// Delete removes a run and its stored report.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	run, ok := h.ownedRun(w, r)
	if !ok {
		return
	}

	if run.ReportKey != "" {
		h.reports.Remove(r.Context(), run.ReportKey)
	}
	if err := h.runs.Delete(r.Context(), run.ID.Hex()); err != nil {
		http.Error(w, `{"error":"delete failed"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// ownedRun loads the run from the URL and checks it belongs to the session
// user. Writes the error response itself when the run is unavailable.
func (h *Handler) ownedRun(w http.ResponseWriter, r *http.Request) (*models.Run, bool) {
	userID := r.Context().Value("user_id").(string)
	run, err := h.runs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil || run.UserID != userID {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return nil, false
	}
	return run, true
}

// describeFailure maps a pipeline error to the failing stage name and a
// user-visible message.
func describeFailure(err error) (stage, msg string) {
	stage = "unknown"
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		stage = stageErr.Stage
	}

	switch {
	case errors.Is(err, engine.ErrUnreachable):
		msg = "The reasoning engine could not be reached. Check that the model server is running."
	case errors.Is(err, pipeline.ErrMalformedPlan):
		msg = "The planner could not produce any sub-questions for this topic."
	case errors.Is(err, search.ErrQuota):
		msg = "The search provider rate limit was exceeded. Try again later."
	case errors.Is(err, search.ErrUnavailable):
		msg = "The web search service was unavailable or timed out."
	case errors.Is(err, pipeline.ErrSynthesis):
		msg = "The reasoning engine returned an empty summary. Try again or use a different model."
	default:
		msg = fmt.Sprintf("Research failed at the %s stage: %v", stage, err)
	}
	return stage, msg
}

func reportKey(userID, topic string) string {
	slug := topic
	if len(slug) > 20 {
		slug = slug[:20]
	}
	return fmt.Sprintf("%s/%s.md", userID, slug)
}
