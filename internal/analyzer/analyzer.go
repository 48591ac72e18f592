package analyzer

import (
	"context"

	"github.com/revloop/pkg/models"
)

// MRContext is the merge-request context handed to the classifier alongside
// each note. DiffContext may be empty when the diff fetch degraded.
type MRContext struct {
	Title        string
	Description  string
	SourceBranch string
	TargetBranch string
	DiffContext  string
	Thread       []*models.Note // earlier notes in the same discussion
}

// Analyzer classifies a single reviewer note. Its internal reasoning is opaque
// to the pipeline; only the CommentAnalysis schema matters. An error return is
// treated as a per-note failure by the scheduler, never as a run failure.
type Analyzer interface {
	AnalyzeComment(ctx context.Context, note *models.Note, mrCtx MRContext) (*models.CommentAnalysis, error)
}
