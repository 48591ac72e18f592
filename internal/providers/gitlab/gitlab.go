package gitlab

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/revloop/pkg/models"
)

// Config contains configuration for the GitLab provider.
type Config struct {
	URL       string `koanf:"url"`
	Token     string `koanf:"token"`
	ProjectID string `koanf:"project_id"`
}

// Provider is the discussion/diff/merge-request source backed by the GitLab
// API. Transport-level retries and timeouts are the client's concern, not the
// pipeline's.
type Provider struct {
	client *gitlab.Client
	config Config
}

// New creates a new GitLab provider.
func New(config Config) (*Provider, error) {
	opts := []gitlab.ClientOptionFunc{}
	if config.URL != "" {
		opts = append(opts, gitlab.WithBaseURL(fmt.Sprintf("%s/api/v4", config.URL)))
	}

	client, err := gitlab.NewClient(config.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating GitLab client: %w", err)
	}

	log.Debug().Str("url", config.URL).Msg("Initialized GitLab client")

	return &Provider{client: client, config: config}, nil
}

// GetMergeRequest fetches one merge request by IID.
func (p *Provider) GetMergeRequest(ctx context.Context, projectID string, iid int) (*models.MergeRequest, error) {
	mr, _, err := p.client.MergeRequests.GetMergeRequest(projectID, iid, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching merge request !%d: %w", iid, err)
	}
	return convertMergeRequest(mr, projectID), nil
}

// FindMergeRequestByBranch resolves the open merge request whose source
// branch matches branchName.
func (p *Provider) FindMergeRequestByBranch(ctx context.Context, projectID, branchName string) (*models.MergeRequest, error) {
	mrs, _, err := p.client.MergeRequests.ListProjectMergeRequests(projectID, &gitlab.ListProjectMergeRequestsOptions{
		SourceBranch: gitlab.Ptr(branchName),
		State:        gitlab.Ptr("opened"),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing merge requests for branch %q: %w", branchName, err)
	}
	if len(mrs) == 0 {
		return nil, fmt.Errorf("no open merge request found for branch %q", branchName)
	}
	// BasicMergeRequest from the list endpoint lacks fields we need; refetch.
	return p.GetMergeRequest(ctx, projectID, mrs[0].IID)
}

// ListDiscussions fetches every discussion of a merge request, following
// pagination to the end.
func (p *Provider) ListDiscussions(ctx context.Context, projectID string, iid int) ([]*models.Discussion, error) {
	var all []*models.Discussion

	opt := &gitlab.ListMergeRequestDiscussionsOptions{PerPage: 100, Page: 1}
	for {
		discussions, resp, err := p.client.Discussions.ListMergeRequestDiscussions(projectID, iid, opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing discussions for !%d: %w", iid, err)
		}
		for _, d := range discussions {
			all = append(all, convertDiscussion(d))
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	log.Debug().Int("discussions", len(all)).Int("mr_iid", iid).Msg("Fetched merge request discussions")
	return all, nil
}

// GetDiffContext fetches the merge request diffs and flattens them into a
// single text block for the classifier. Failures here are recoverable: the
// orchestrator degrades to an empty diff context.
func (p *Provider) GetDiffContext(ctx context.Context, projectID string, iid int) (string, error) {
	diffs, _, err := p.client.MergeRequests.ListMergeRequestDiffs(projectID, iid, &gitlab.ListMergeRequestDiffsOptions{}, gitlab.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("listing diffs for !%d: %w", iid, err)
	}

	var out string
	for _, d := range diffs {
		out += fmt.Sprintf("--- %s\n+++ %s\n%s\n", d.OldPath, d.NewPath, d.Diff)
	}
	return out, nil
}

// PostDiscussionReply adds a note to an existing discussion thread.
func (p *Provider) PostDiscussionReply(ctx context.Context, projectID string, iid int, discussionID, body string) error {
	_, _, err := p.client.Discussions.AddMergeRequestDiscussionNote(projectID, iid, discussionID, &gitlab.AddMergeRequestDiscussionNoteOptions{
		Body: gitlab.Ptr(body),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("posting reply to discussion %s: %w", discussionID, err)
	}
	return nil
}
