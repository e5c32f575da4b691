package research

import (
	"fmt"
	"strings"

	"github.com/tanmayd/research-hub/internal/models"
)

// RenderReport produces the downloadable markdown report for a completed run.
func RenderReport(run *models.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Research Report: %s\n\n", run.Topic)
	b.WriteString(run.Summary)
	b.WriteString("\n\n## Sub-questions\n")
	for i, sq := range run.SubQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, sq.Question)
	}

	b.WriteString("\n## Sources\n")
	n := 0
	for _, sq := range run.SubQuestions {
		for _, r := range sq.Results {
			n++
			fmt.Fprintf(&b, "%d. [%s](%s)\n", n, strings.TrimSpace(r.Title), r.URL)
		}
	}
	if n == 0 {
		b.WriteString("No web sources were retrieved for this topic.\n")
	}
	return b.String()
}
