package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Run lifecycle states.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// SearchResult is one ranked hit returned by the search provider for a
// sub-question.
type SearchResult struct {
	URL         string    `json:"url"          bson:"url"`
	Title       string    `json:"title"        bson:"title"`
	Snippet     string    `json:"snippet"      bson:"snippet"`
	RetrievedAt time.Time `json:"retrieved_at" bson:"retrieved_at"`
}

// SubQuestion is one planner-generated angle on the topic, together with
// whatever the retriever found for it. Order reflects planning priority.
type SubQuestion struct {
	Question string         `json:"question" bson:"question"`
	Results  []SearchResult `json:"results"  bson:"results"`
}

// ReasoningStep records one pipeline stage for the user-visible trace.
type ReasoningStep struct {
	Stage     string    `json:"stage"     bson:"stage"`
	Input     string    `json:"input"     bson:"input"`
	Output    string    `json:"output"    bson:"output"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Run is one end-to-end research execution stored in MongoDB. Failed runs
// are stored too, with whatever trace they accumulated before aborting.
type Run struct {
	ID           primitive.ObjectID `json:"id"             bson:"_id,omitempty"`
	UserID       string             `json:"user_id"        bson:"user_id"`
	Topic        string             `json:"topic"          bson:"topic"`
	Depth        string             `json:"depth"          bson:"depth"`
	SubQuestions []SubQuestion      `json:"sub_questions"  bson:"sub_questions"`
	Summary      string             `json:"summary"        bson:"summary"`
	Trace        []ReasoningStep    `json:"trace"          bson:"trace"`
	Status       string             `json:"status"         bson:"status"`
	FailedStage  string             `json:"failed_stage,omitempty" bson:"failed_stage,omitempty"`
	Error        string             `json:"error,omitempty"        bson:"error,omitempty"`
	ModelUsed    string             `json:"model_used"     bson:"model_used"`
	ReportKey    string             `json:"report_key"     bson:"report_key"`
	CreatedAt    time.Time          `json:"created_at"     bson:"created_at"`
}

// CreateRunRequest is the JSON body for POST /api/research.
type CreateRunRequest struct {
	Topic string `json:"topic"`
	Depth string `json:"depth"`
}
