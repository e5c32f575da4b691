package pipeline

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tanmayd/research-hub/internal/models"
)

func TestParseSubQuestions(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     []string
	}{
		{
			name:     "numbered list",
			response: "1. First question?\n2. Second question?",
			want:     []string{"First question?", "Second question?"},
		},
		{
			name:     "numbered with parens",
			response: "1) alpha\n2) beta",
			want:     []string{"alpha", "beta"},
		},
		{
			name:     "bulleted list",
			response: "- one thing\n* another thing",
			want:     []string{"one thing", "another thing"},
		},
		{
			name:     "preamble before list",
			response: "Here is a plan:\n\n1. What changed recently?\n2. Who disagrees?",
			want:     []string{"What changed recently?", "Who disagrees?"},
		},
		{
			name:     "bare question lines fallback",
			response: "What changed recently?\nWho disagrees?",
			want:     []string{"What changed recently?", "Who disagrees?"},
		},
		{
			name:     "think block stripped",
			response: "<think>let me plan</think>\n1. real question",
			want:     []string{"real question"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseSubQuestions(tc.response)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseSubQuestionsMalformed(t *testing.T) {
	for _, response := range []string{"", "    ", "No plan available.", "<think>only thoughts</think>"} {
		if _, err := parseSubQuestions(response); !errors.Is(err, ErrMalformedPlan) {
			t.Errorf("parseSubQuestions(%q) error = %v, want ErrMalformedPlan", response, err)
		}
	}
}

func TestUnknownCitations(t *testing.T) {
	subQuestions := []models.SubQuestion{
		{Question: "q", Results: []models.SearchResult{
			{URL: "https://example.com/a"},
			{URL: "https://example.com/b/"},
		}},
	}

	summary := "Claim one (https://example.com/a). Claim two (https://example.com/b). Made up (https://nowhere.test/x)."
	unknown := UnknownCitations(summary, subQuestions)
	if len(unknown) != 1 || unknown[0] != "https://nowhere.test/x" {
		t.Errorf("unknown citations = %v, want only the fabricated URL", unknown)
	}

	if unknown := UnknownCitations("no links at all", subQuestions); len(unknown) != 0 {
		t.Errorf("expected no unknown citations, got %v", unknown)
	}
}
