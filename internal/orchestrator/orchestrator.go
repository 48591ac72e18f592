package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/revloop/internal/analysis"
	"github.com/revloop/internal/analyzer"
	"github.com/revloop/internal/threads"
	"github.com/revloop/pkg/models"
)

// DefaultMaxComments caps one run's analysis window when the caller does not
// set a limit.
const DefaultMaxComments = 20

// Source supplies merge request, discussion, and diff data.
type Source interface {
	GetMergeRequest(ctx context.Context, projectID string, iid int) (*models.MergeRequest, error)
	FindMergeRequestByBranch(ctx context.Context, projectID, branchName string) (*models.MergeRequest, error)
	ListDiscussions(ctx context.Context, projectID string, iid int) ([]*models.Discussion, error)
	GetDiffContext(ctx context.Context, projectID string, iid int) (string, error)
}

// AutoFixer runs the fix phase over the filtered analysis set.
type AutoFixer interface {
	ProcessCommentAnalyses(analyses []*models.CommentAnalysis, sourceBranch string) *models.AutoFixResults
}

// AutoResponder is the optional sibling reply pipeline.
type AutoResponder interface {
	Respond(ctx context.Context, projectID string, iid int, analyses []*models.CommentAnalysis) *models.AutoResponseResults
}

// Request selects the merge request and tunes one feedback-triage run. Either
// MergeRequestIID or BranchName must identify the merge request.
type Request struct {
	ProjectID       string
	MergeRequestIID int
	BranchName      string
	MaxComments     int
	Offset          int
	CategoryFilter  []string
	MinSeverity     int
	RiskThreshold   models.RiskLevel
	SummaryOnly     bool
	IncludeResolved bool
}

// Service orchestrates the feedback pipeline: fetch, classify threads,
// schedule analysis, filter, then hand off to the optional auto-response and
// auto-fix phases. Responder and fixer may be nil, which disables those
// phases.
type Service struct {
	source    Source
	scheduler *analysis.Scheduler
	responder AutoResponder
	fixer     AutoFixer
	logger    zerolog.Logger
}

// NewService creates the orchestration service.
func NewService(source Source, scheduler *analysis.Scheduler, responder AutoResponder, fixer AutoFixer, logger zerolog.Logger) *Service {
	return &Service{
		source:    source,
		scheduler: scheduler,
		responder: responder,
		fixer:     fixer,
		logger:    logger,
	}
}

// ReviewFeedback runs one full triage pass. It returns an error only for
// conditions that make the whole run meaningless: a missing project
// identifier, an unresolvable merge request, or a discussion fetch failure.
// Everything else degrades into structured result fields.
func (s *Service) ReviewFeedback(ctx context.Context, req Request) (*models.FeedbackResult, error) {
	if req.ProjectID == "" {
		return nil, fmt.Errorf("project identifier is required")
	}
	if req.MaxComments <= 0 {
		req.MaxComments = DefaultMaxComments
	}

	mr, err := s.resolveMergeRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int("mr_iid", mr.IID).
		Str("source_branch", mr.SourceBranch).
		Str("title", mr.Title).
		Msg("Resolved merge request")

	discussions, err := s.source.ListDiscussions(ctx, req.ProjectID, mr.IID)
	if err != nil {
		return nil, fmt.Errorf("fetching discussions: %w", err)
	}

	// Diff context is optional input for the classifier; a fetch failure
	// degrades to no context rather than failing the run.
	diffContext, err := s.source.GetDiffContext(ctx, req.ProjectID, mr.IID)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Diff fetch failed, continuing without diff context")
		diffContext = ""
	}

	partition := threads.PartitionDiscussions(discussions, req.IncludeResolved)
	s.logger.Info().
		Int("total_notes", partition.Stats.TotalNotes).
		Int("actionable", partition.Stats.Actionable).
		Int("context_only", partition.Stats.ContextOnly).
		Int("system", partition.Stats.SystemNotes).
		Msg("Classified discussion threads")

	window := analysis.Window(partition.Actionable, req.Offset, req.MaxComments)
	mrCtx := analyzer.MRContext{
		Title:        mr.Title,
		Description:  mr.Description,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		DiffContext:  diffContext,
	}
	analyses := s.scheduler.Analyze(ctx, window, mrCtx)

	filtered := analysis.Filter(analyses, analysis.FilterOptions{
		Categories:  req.CategoryFilter,
		MinSeverity: req.MinSeverity,
		MaxRisk:     req.RiskThreshold,
	})

	result := &models.FeedbackResult{
		MergeRequest: mr,
		Summary:      buildSummary(partition.Stats, filtered),
		Pagination: models.Pagination{
			Offset:         req.Offset,
			MaxComments:    req.MaxComments,
			TotalAvailable: len(partition.Actionable),
			HasMore:        req.Offset+len(window) < len(partition.Actionable),
		},
	}
	if !req.SummaryOnly {
		result.Analyses = filtered
	}

	if s.responder != nil {
		result.AutoResponse = s.responder.Respond(ctx, req.ProjectID, mr.IID, filtered)
	}

	if s.fixer != nil {
		result.AutoFix = s.fixer.ProcessCommentAnalyses(filtered, mr.SourceBranch)
	}

	return result, nil
}

func (s *Service) resolveMergeRequest(ctx context.Context, req Request) (*models.MergeRequest, error) {
	if req.MergeRequestIID > 0 {
		mr, err := s.source.GetMergeRequest(ctx, req.ProjectID, req.MergeRequestIID)
		if err != nil {
			return nil, fmt.Errorf("resolving merge request !%d: %w", req.MergeRequestIID, err)
		}
		return mr, nil
	}
	if req.BranchName != "" {
		mr, err := s.source.FindMergeRequestByBranch(ctx, req.ProjectID, req.BranchName)
		if err != nil {
			return nil, fmt.Errorf("resolving merge request for branch %q: %w", req.BranchName, err)
		}
		return mr, nil
	}
	return nil, fmt.Errorf("either a merge request IID or a branch name is required")
}

// buildSummary aggregates statistics over the run.
func buildSummary(stats threads.Stats, analyses []*models.CommentAnalysis) *models.Summary {
	summary := &models.Summary{
		TotalNotes:  stats.TotalNotes,
		Actionable:  stats.Actionable,
		ContextOnly: stats.ContextOnly,
		SystemNotes: stats.SystemNotes,
		Analyzed:    len(analyses),
		ByCategory:  map[string]int{},
		BySeverity:  map[int]int{},
	}
	for _, a := range analyses {
		summary.ByCategory[a.Category]++
		summary.BySeverity[a.Severity]++
		if a.IsValid {
			summary.ValidCount++
		} else {
			summary.InvalidCount++
		}
	}
	return summary
}
