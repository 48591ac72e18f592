package autoresponse

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/revloop/pkg/models"
)

// NotePoster posts a reply into an existing discussion thread.
type NotePoster interface {
	PostDiscussionReply(ctx context.Context, projectID string, iid int, discussionID, body string) error
}

// Responder is the sibling pipeline that posts suggested replies for the
// filtered analysis set. Its failures are logged and counted but never affect
// the fix pipeline's result.
type Responder struct {
	poster NotePoster
	logger zerolog.Logger
}

func NewResponder(poster NotePoster, logger zerolog.Logger) *Responder {
	return &Responder{poster: poster, logger: logger}
}

// Respond posts one reply per analysis that asked for one. Resolved threads
// and analyses without a response decision are skipped.
func (r *Responder) Respond(ctx context.Context, projectID string, iid int, analyses []*models.CommentAnalysis) *models.AutoResponseResults {
	results := &models.AutoResponseResults{}

	for _, analysis := range analyses {
		decision := analysis.AutoResponse
		if decision == nil || !decision.ShouldRespond {
			results.Skipped++
			continue
		}
		if analysis.ThreadMetadata == nil || analysis.ThreadMetadata.IsResolved {
			results.Skipped++
			continue
		}

		body := decision.ResponseText
		if body == "" {
			body = analysis.SuggestedResponse
		}
		if body == "" {
			results.Skipped++
			continue
		}

		if err := r.poster.PostDiscussionReply(ctx, projectID, iid, analysis.ThreadMetadata.DiscussionID, body); err != nil {
			results.Failed++
			r.logger.Warn().
				Err(err).
				Str("discussion_id", analysis.ThreadMetadata.DiscussionID).
				Msg("Failed to post auto-response")
			continue
		}
		results.Posted++
	}

	r.logger.Info().
		Int("posted", results.Posted).
		Int("skipped", results.Skipped).
		Int("failed", results.Failed).
		Msg("Auto-response pass complete")
	return results
}
