package gitlab

import (
	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/revloop/pkg/models"
)

// convertMergeRequest maps an API merge request to the internal model.
func convertMergeRequest(mr *gitlab.MergeRequest, projectID string) *models.MergeRequest {
	out := &models.MergeRequest{
		IID:          mr.IID,
		ProjectID:    projectID,
		Title:        mr.Title,
		Description:  mr.Description,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		WebURL:       mr.WebURL,
	}
	if mr.Author != nil {
		out.Author = mr.Author.Username
	}
	return out
}

// convertDiscussion maps an API discussion to the internal model. The thread
// counts as resolved when it has at least one resolvable note and every
// resolvable note is resolved.
func convertDiscussion(d *gitlab.Discussion) *models.Discussion {
	out := &models.Discussion{
		ID:    d.ID,
		Notes: make([]*models.Note, 0, len(d.Notes)),
	}

	resolvable := 0
	resolved := 0
	for _, n := range d.Notes {
		out.Notes = append(out.Notes, &models.Note{
			ID:     n.ID,
			Body:   n.Body,
			Author: n.Author.Username,
			System: n.System,
		})
		if n.Resolvable {
			resolvable++
			if n.Resolved {
				resolved++
			}
		}
	}
	out.Resolved = resolvable > 0 && resolvable == resolved

	return out
}
