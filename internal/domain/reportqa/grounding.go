package reportqa

import (
	"fmt"
	"strings"

	"github.com/yanqian/swing-coach/internal/domain/report"
)

// BuildGroundingContext serializes every structured field of the report into
// the text block placed ahead of the question, so the answer is computed with
// full visibility into this specific report. No field is dropped.
func BuildGroundingContext(rep *report.SwingReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Player: %s\n", rep.PlayerName)
	fmt.Fprintf(&b, "Hand: %s\n", rep.Hand)
	fmt.Fprintf(&b, "Eye: %s\n", rep.Eye)
	fmt.Fprintf(&b, "Handicap: %s\n", rep.Handicap)

	b.WriteString("\nSUMMARY:\n")
	b.WriteString(strings.Join(rep.Summary, " "))
	b.WriteString("\n")

	b.WriteString("\nSTRENGTHS:\n")
	b.WriteString(strings.Join(rep.Strengths, " | "))
	b.WriteString("\n")

	b.WriteString("\nTOP PRIORITY FIXES:\n")
	b.WriteString(strings.Join(rep.PriorityFixes, " | "))
	b.WriteString("\n")

	b.WriteString("\nPOWER LEAKS:\n")
	b.WriteString(strings.Join(rep.PowerLeaks, " | "))
	b.WriteString("\n")

	b.WriteString("\nCHECKPOINTS (P1-P9):\n")
	for _, cp := range rep.Checkpoints {
		fmt.Fprintf(&b, "%s (%s) [%s]: %s\n", cp.Label, cp.Phase, cp.Status, checkpointNote(cp))
	}

	b.WriteString("\n14-DAY PRACTICE PLAN:\n")
	for _, block := range rep.PlanBlocks {
		fmt.Fprintf(&b, "%s: %s\n", block.Title, block.Text)
	}

	return b.String()
}

// checkpointNote resolves the coaching text of a checkpoint: the note when
// present, otherwise the paired short/long description.
func checkpointNote(cp report.Checkpoint) string {
	if cp.Note != "" {
		return cp.Note
	}
	return strings.TrimSpace(strings.Join(strings.Fields(cp.Short+" "+cp.Long), " "))
}

func buildQuestionPrompt(grounding, question string) string {
	return fmt.Sprintf(
		"Here is the swing report:\n%s\n\nThe golfer's question about this report is:\n%s\n\nAnswer directly, in a few short paragraphs, and if helpful, include 1-2 simple range feels or checkpoints.",
		grounding, question)
}
