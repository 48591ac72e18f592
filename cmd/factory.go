package cmd

import (
	"context"
	"fmt"

	"github.com/revloop/internal/analysis"
	"github.com/revloop/internal/analyzer"
	"github.com/revloop/internal/autofix"
	"github.com/revloop/internal/autoresponse"
	"github.com/revloop/internal/config"
	"github.com/revloop/internal/gitcheck"
	"github.com/revloop/internal/logging"
	"github.com/revloop/internal/orchestrator"
	gitlab "github.com/revloop/internal/providers/gitlab"
)

// buildOrchestrator wires the full pipeline from configuration: GitLab
// source, LLM classifier, batch scheduler, and the optional auto-response and
// auto-fix phases.
func buildOrchestrator(ctx context.Context, cfg *config.Config) (*orchestrator.Service, error) {
	logger := logging.NewRunLogger()

	source, err := gitlab.New(cfg.GitLab)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab provider: %w", err)
	}

	classifier, err := analyzer.NewLangchainAnalyzer(ctx, cfg.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	scheduler := analysis.NewScheduler(classifier, analysis.SchedulerConfig{
		BatchSize:  cfg.Analysis.BatchSize,
		BatchDelay: cfg.Analysis.BatchDelay,
	}, logger)

	var responder orchestrator.AutoResponder
	if cfg.Response.Enabled {
		responder = autoresponse.NewResponder(source, logger)
	}

	// The fix service is always constructed; when autofix is disabled it
	// no-ops and still reports the git status.
	fixer := autofix.NewService(cfg.AutoFix, gitcheck.NewInspector(), logger)

	return orchestrator.NewService(source, scheduler, responder, fixer, logger), nil
}
