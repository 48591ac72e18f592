package autofix

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/revloop/internal/gitcheck"
	"github.com/revloop/pkg/models"
)

// Skip reasons recorded by the decision gates. The first failing gate wins.
const (
	ReasonSessionLimit   = "session limit reached"
	ReasonThreadResolved = "thread is resolved"
	ReasonRiskTooHigh    = "risk too high"
	ReasonLowConfidence  = "confidence too low"
	ReasonFileScope      = "restricted file types or excluded paths"
	ReasonNeedsApproval  = "requires human approval"
)

// Config is set once at construction and read-only thereafter.
type Config struct {
	Enabled                     bool             `koanf:"enabled"`
	DryRun                      bool             `koanf:"dry_run"`
	MaxFixesPerSession          int              `koanf:"max_fixes_per_session"`
	RiskThreshold               models.RiskLevel `koanf:"risk_threshold"`
	ConfidenceThreshold         float64          `koanf:"confidence_threshold"`
	AllowedFileTypes            []string         `koanf:"allowed_file_types"`
	ExcludedPaths               []string         `koanf:"excluded_paths"`
	RequireApprovalForRefactors bool             `koanf:"require_approval_for_refactors"`
	RequireApprovalForBugFixes  bool             `koanf:"require_approval_for_bug_fixes"`
	WorkingDirectory            string           `koanf:"working_directory"`
}

// DefaultConfig errs on the safe side: disabled, dry-run, low risk tolerance.
func DefaultConfig() Config {
	return Config{
		Enabled:             false,
		DryRun:              true,
		MaxFixesPerSession:  5,
		RiskThreshold:       models.RiskLow,
		ConfidenceThreshold: 0.8,
	}
}

// Service evaluates auto-fix candidates against the policy gates and applies
// the accepted ones. The session counter lives on the instance: it increments
// only on successful application, never decrements, and resets only when a new
// Service is constructed.
type Service struct {
	config    Config
	inspector gitcheck.Inspector
	executor  *Executor
	logger    zerolog.Logger

	fixesAppliedThisSession int
}

// NewService creates an auto-fix service for one session.
func NewService(config Config, inspector gitcheck.Inspector, logger zerolog.Logger) *Service {
	return &Service{
		config:    config,
		inspector: inspector,
		executor:  NewExecutor(config.WorkingDirectory),
		logger:    logger,
	}
}

// FixesApplied reports the session counter.
func (s *Service) FixesApplied() int {
	return s.fixesAppliedThisSession
}

// ProcessCommentAnalyses runs the full fix phase for one set of analyses. The
// git safety check runs exactly once; a branch mismatch (or a detection error,
// which fails safe) disables the whole phase. Per-fix failures are isolated:
// a failed application is recorded and processing continues.
func (s *Service) ProcessCommentAnalyses(analyses []*models.CommentAnalysis, sourceBranch string) *models.AutoFixResults {
	results := &models.AutoFixResults{
		PlannedFixes: []*models.CommentAnalysis{},
		AppliedFixes: []*models.FixExecutionResult{},
		SkippedFixes: []models.SkippedFix{},
	}

	results.GitStatus = gitcheck.Check(s.inspector, s.config.WorkingDirectory, sourceBranch)

	if !s.config.Enabled {
		s.logger.Debug().Msg("Auto-fix disabled, skipping fix phase")
		return results
	}

	if !results.GitStatus.IsOnCorrectBranch {
		s.logger.Warn().
			Str("current", results.GitStatus.CurrentBranch).
			Str("expected", sourceBranch).
			Msg("Working tree is not on the merge request source branch, skipping all fixes")
		return results
	}

	for _, analysis := range analyses {
		decision := analysis.AutoFix
		if decision == nil || !decision.ShouldFix {
			// Not a candidate; no skip reason is stored.
			continue
		}

		if reason := s.evaluateGates(analysis, decision); reason != "" {
			results.SkippedFixes = append(results.SkippedFixes, models.SkippedFix{
				Analysis: analysis,
				Reason:   reason,
			})
			s.logger.Info().
				Str("analysis_id", analysis.ID).
				Str("reason", reason).
				Msg("Fix candidate skipped")
			continue
		}

		results.PlannedFixes = append(results.PlannedFixes, analysis)

		if s.config.DryRun {
			s.logger.Info().Str("analysis_id", analysis.ID).Msg("Dry run: fix planned but not applied")
			continue
		}

		files, err := s.executor.ApplyFix(decision)
		if err != nil {
			results.AppliedFixes = append(results.AppliedFixes, &models.FixExecutionResult{
				Analysis: analysis,
				Success:  false,
				Error:    err.Error(),
				Files:    files,
			})
			s.logger.Warn().Err(err).Str("analysis_id", analysis.ID).Msg("Fix application failed")
			continue
		}

		s.fixesAppliedThisSession++
		results.AppliedFixes = append(results.AppliedFixes, &models.FixExecutionResult{
			Analysis: analysis,
			Success:  true,
			Files:    files,
		})
		s.logger.Info().
			Str("analysis_id", analysis.ID).
			Strs("files", files).
			Int("session_total", s.fixesAppliedThisSession).
			Msg("Fix applied")
	}

	return results
}

// evaluateGates walks the policy gates in their fixed order and returns the
// first failing gate's reason, or "" when the candidate passes all gates.
func (s *Service) evaluateGates(analysis *models.CommentAnalysis, decision *models.AutoFixDecision) string {
	if s.fixesAppliedThisSession >= s.config.MaxFixesPerSession {
		return ReasonSessionLimit
	}

	if analysis.ThreadMetadata != nil && analysis.ThreadMetadata.IsResolved {
		return ReasonThreadResolved
	}

	// An unknown risk level is treated as above every threshold.
	if !decision.EstimatedRisk.Valid() || decision.EstimatedRisk.Index() > s.config.RiskThreshold.Index() {
		return ReasonRiskTooHigh
	}

	if decision.Confidence < s.config.ConfidenceThreshold {
		return ReasonLowConfidence
	}

	for _, file := range decision.AffectedFiles {
		if !s.fileTypeAllowed(file) || s.pathExcluded(file) {
			return ReasonFileScope
		}
	}

	if decision.RequiresApproval ||
		(decision.FixType == models.FixSimpleRefactor && s.config.RequireApprovalForRefactors) ||
		(decision.FixType == models.FixBugFix && s.config.RequireApprovalForBugFixes) {
		return ReasonNeedsApproval
	}

	return ""
}

// fileTypeAllowed checks the extension against the allow-list; an empty list
// allows everything.
func (s *Service) fileTypeAllowed(path string) bool {
	if len(s.config.AllowedFileTypes) == 0 {
		return true
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, allowed := range s.config.AllowedFileTypes {
		if strings.EqualFold(ext, strings.TrimPrefix(allowed, ".")) {
			return true
		}
	}
	return false
}

// pathExcluded reports whether the path is, or resolves under, any excluded
// path. Paths are compared in cleaned form so "./vendor/x" matches "vendor".
func (s *Service) pathExcluded(path string) bool {
	clean := filepath.Clean(path)
	for _, excluded := range s.config.ExcludedPaths {
		prefix := filepath.Clean(excluded)
		if clean == prefix || strings.HasPrefix(clean, prefix+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
