package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tanmayd/research-hub/internal/models"
)

func buildPlannerPrompt(topic string, maxQuestions int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As a research methodology expert, decompose this topic into focused sub-questions: %q\n\n", topic)
	fmt.Fprintf(&b, "Produce at most %d sub-questions, ordered from most to least important.\n", maxQuestions)
	b.WriteString("Each sub-question should cover a distinct angle: current evidence, expert analysis, counterarguments, recent developments.\n\n")
	b.WriteString("Output ONLY a numbered list, one sub-question per line:\n")
	b.WriteString("1. <first sub-question>\n")
	b.WriteString("2. <second sub-question>\n")
	return b.String()
}

func buildSynthesizerPrompt(topic string, subQuestions []models.SubQuestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a themed research summary for the topic: %q\n\n", topic)
	b.WriteString("Use ONLY the search results below. Attribute every claim inline with its source URL in parentheses.\n")
	b.WriteString("Never cite a URL that does not appear below. For any sub-question with no results, state exactly: no sources found for this angle.\n")
	for i, sq := range subQuestions {
		fmt.Fprintf(&b, "\n### Sub-question %d: %s\n", i+1, sq.Question)
		if len(sq.Results) == 0 {
			b.WriteString("(no results)\n")
			continue
		}
		for _, r := range sq.Results {
			fmt.Fprintf(&b, "- %s | %s | %s\n", strings.TrimSpace(r.Title), r.URL, strings.TrimSpace(r.Snippet))
		}
	}
	b.WriteString("\nOrganize the summary by theme rather than by sub-question, and end with a short conclusion.")
	return b.String()
}

var (
	listItemRe = regexp.MustCompile(`^\s*(?:\d+[.)]\s+|[-*]\s+)(.+?)\s*$`)
	thinkRe    = regexp.MustCompile(`(?s)<think>.*?</think>`)
	urlRe      = regexp.MustCompile(`https?://[^\s()<>"']+`)
)

// stripThinkBlocks removes <think>...</think> blocks that some local
// reasoning models emit before their answer.
func stripThinkBlocks(s string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(s, ""))
}

// parseSubQuestions extracts an ordered list of sub-questions from the
// planner's response. It accepts numbered or bulleted list items and falls
// back to bare lines ending in a question mark.
func parseSubQuestions(response string) ([]string, error) {
	response = stripThinkBlocks(response)

	var questions []string
	for _, line := range strings.Split(response, "\n") {
		if m := listItemRe.FindStringSubmatch(line); m != nil {
			questions = append(questions, strings.TrimSpace(m[1]))
		}
	}
	if len(questions) == 0 {
		for _, line := range strings.Split(response, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasSuffix(line, "?") {
				questions = append(questions, line)
			}
		}
	}
	if len(questions) == 0 {
		return nil, ErrMalformedPlan
	}
	return questions, nil
}

// UnknownCitations returns the URLs cited in summary that do not appear
// among the supplied search results.
func UnknownCitations(summary string, subQuestions []models.SubQuestion) []string {
	known := make(map[string]bool)
	for _, sq := range subQuestions {
		for _, r := range sq.Results {
			known[strings.TrimRight(r.URL, "/")] = true
		}
	}
	var unknown []string
	seen := make(map[string]bool)
	for _, u := range urlRe.FindAllString(summary, -1) {
		u = strings.TrimRight(strings.TrimRight(u, ".,;"), "/")
		if !known[u] && !seen[u] {
			unknown = append(unknown, u)
			seen[u] = true
		}
	}
	return unknown
}
