package gitcheck

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/revloop/pkg/models"
)

// Inspector reports on the state of a git working tree.
type Inspector interface {
	DetectCurrentBranch(workingDirectory string) (string, error)
	HasUncommittedChanges(workingDirectory string) (bool, error)
}

// GitInspector drives the git binary against a working directory.
type GitInspector struct{}

// NewInspector returns the subprocess-backed inspector.
func NewInspector() *GitInspector {
	return &GitInspector{}
}

// DetectCurrentBranch resolves the branch the working tree is on.
func (g *GitInspector) DetectCurrentBranch(workingDirectory string) (string, error) {
	out, err := runGit(workingDirectory, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("detecting current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// HasUncommittedChanges reports whether the working tree is dirty.
func (g *GitInspector) HasUncommittedChanges(workingDirectory string) (bool, error) {
	out, err := runGit(workingDirectory, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("checking working tree status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// Check validates the working tree against the merge request's source branch.
// It runs once per fix run, not per fix. Detection errors fail safe: the
// status comes back with IsOnCorrectBranch=false, which disables the entire
// fix phase. A dirty working tree is reported but does not block fixing.
func Check(inspector Inspector, workingDirectory, expectedBranch string) *models.GitStatus {
	status := &models.GitStatus{
		ExpectedBranch: expectedBranch,
	}

	branch, err := inspector.DetectCurrentBranch(workingDirectory)
	if err != nil {
		log.Warn().Err(err).Str("dir", workingDirectory).Msg("Branch detection failed, treating as wrong branch")
		return status
	}
	status.CurrentBranch = branch
	status.IsOnCorrectBranch = branch == expectedBranch

	dirty, err := inspector.HasUncommittedChanges(workingDirectory)
	if err != nil {
		log.Warn().Err(err).Str("dir", workingDirectory).Msg("Working tree status check failed")
	} else {
		status.HasUncommittedChanges = dirty
	}

	return status
}
