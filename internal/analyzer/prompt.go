package analyzer

import (
	"fmt"
	"strings"

	"github.com/revloop/pkg/models"
)

const maxDiffContextChars = 24000

// buildPrompt assembles the classification prompt for one reviewer note.
func buildPrompt(note *models.Note, mrCtx MRContext) string {
	var b strings.Builder

	b.WriteString("You are a merge request review triage assistant. Analyze the reviewer comment below ")
	b.WriteString("and respond with a single JSON object, no prose.\n\n")

	fmt.Fprintf(&b, "Merge request: %s\n", mrCtx.Title)
	if mrCtx.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", mrCtx.Description)
	}
	fmt.Fprintf(&b, "Source branch: %s\nTarget branch: %s\n\n", mrCtx.SourceBranch, mrCtx.TargetBranch)

	if len(mrCtx.Thread) > 0 {
		b.WriteString("Earlier notes in this thread:\n")
		for _, prior := range mrCtx.Thread {
			fmt.Fprintf(&b, "- %s: %s\n", prior.Author, prior.Body)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Reviewer comment by %s:\n%s\n\n", note.Author, note.Body)

	if mrCtx.DiffContext != "" {
		diff := mrCtx.DiffContext
		if len(diff) > maxDiffContextChars {
			diff = diff[:maxDiffContextChars]
		}
		fmt.Fprintf(&b, "Merge request diff:\n%s\n\n", diff)
	}

	b.WriteString(`Respond with JSON in exactly this shape:
{
  "category": "critical|major|minor|question|praise|style",
  "severity": 1,
  "confidence": 0.0,
  "is_valid": true,
  "reasoning": "...",
  "suggested_response": "...",
  "auto_response_decision": {"should_respond": false, "response_text": "", "reason": ""},
  "auto_fix_decision": {
    "should_fix": false,
    "fix_type": "simple_refactor|bug_fix|style_fix|documentation",
    "fix_reason": "...",
    "confidence": 0.0,
    "estimated_risk": "very_low|low|medium|high|very_high",
    "affected_files": [],
    "code_changes": [
      {"file_path": "...", "change_type": "replace|insert|delete", "start_line": 1, "end_line": 1, "original_code": "...", "new_code": "..."}
    ],
    "requires_approval": false,
    "prerequisites": []
  },
  "risk_assessment": {"risk_score": 1}
}
Severity runs 1 (trivial) to 10 (blocking). Line numbers are 1-indexed and inclusive.
Omit auto_fix_decision entirely unless a safe, mechanical fix exists.`)

	return b.String()
}
