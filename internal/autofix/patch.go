package autofix

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/revloop/pkg/models"
)

// Executor applies accepted code changes to files on disk. Changes within one
// fix are applied strictly in the order listed; the file is rewritten after
// each change. There is no rollback: if a later change in the sequence fails,
// changes already written stay on disk. Pre-image verification is the only
// safeguard against editing moved code.
type Executor struct {
	workingDirectory string
}

// NewExecutor creates an executor rooted at the given working directory.
func NewExecutor(workingDirectory string) *Executor {
	return &Executor{workingDirectory: workingDirectory}
}

// ApplyFix applies every code change of a decision and returns the list of
// files touched. The first failing change aborts the sequence with an error;
// earlier changes are not rolled back.
func (e *Executor) ApplyFix(decision *models.AutoFixDecision) ([]string, error) {
	var touched []string
	seen := make(map[string]bool)

	for i, change := range decision.CodeChanges {
		path, err := e.applyChange(change)
		if err != nil {
			return touched, fmt.Errorf("change %d (%s): %w", i+1, change.FilePath, err)
		}
		if !seen[path] {
			seen[path] = true
			touched = append(touched, path)
		}
	}

	return touched, nil
}

// applyChange performs a single line-based edit and rewrites the file.
func (e *Executor) applyChange(change models.CodeChange) (string, error) {
	path := change.FilePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.workingDirectory, path)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("file does not exist: %s", change.FilePath)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", change.FilePath, err)
	}
	// Newline-delimited split with no normalization: a trailing newline yields
	// a final empty element, and Join restores the byte-exact layout.
	lines := strings.Split(string(raw), "\n")

	switch change.ChangeType {
	case models.ChangeReplace:
		lines, err = applyReplace(lines, change)
	case models.ChangeInsert:
		lines, err = applyInsert(lines, change)
	case models.ChangeDelete:
		lines, err = applyDelete(lines, change)
	default:
		return "", fmt.Errorf("unsupported change type: %q", change.ChangeType)
	}
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("writing %s: %w", change.FilePath, err)
	}
	return path, nil
}

func applyReplace(lines []string, change models.CodeChange) ([]string, error) {
	if err := checkRange(lines, change.StartLine, change.EndLine); err != nil {
		return nil, err
	}
	if change.NewCode == "" {
		return nil, fmt.Errorf("replace requires new code")
	}

	if change.OriginalCode != "" {
		current := strings.Join(lines[change.StartLine-1:change.EndLine], "\n")
		if strings.TrimSpace(current) != strings.TrimSpace(change.OriginalCode) {
			return nil, fmt.Errorf("original code mismatch at lines %d-%d", change.StartLine, change.EndLine)
		}
	}

	replacement := strings.Split(change.NewCode, "\n")
	out := make([]string, 0, len(lines)-(change.EndLine-change.StartLine+1)+len(replacement))
	out = append(out, lines[:change.StartLine-1]...)
	out = append(out, replacement...)
	out = append(out, lines[change.EndLine:]...)
	return out, nil
}

func applyInsert(lines []string, change models.CodeChange) ([]string, error) {
	// Insert splices new lines in before StartLine; StartLine may be one past
	// the last line to append.
	if change.StartLine < 1 || change.StartLine > len(lines)+1 {
		return nil, fmt.Errorf("insert position %d out of range (file has %d lines)", change.StartLine, len(lines))
	}
	if change.NewCode == "" {
		return nil, fmt.Errorf("insert requires new code")
	}

	inserted := strings.Split(change.NewCode, "\n")
	out := make([]string, 0, len(lines)+len(inserted))
	out = append(out, lines[:change.StartLine-1]...)
	out = append(out, inserted...)
	out = append(out, lines[change.StartLine-1:]...)
	return out, nil
}

func applyDelete(lines []string, change models.CodeChange) ([]string, error) {
	if err := checkRange(lines, change.StartLine, change.EndLine); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(lines)-(change.EndLine-change.StartLine+1))
	out = append(out, lines[:change.StartLine-1]...)
	out = append(out, lines[change.EndLine:]...)
	return out, nil
}

func checkRange(lines []string, start, end int) error {
	if start < 1 || end < start {
		return fmt.Errorf("invalid line range %d-%d", start, end)
	}
	if end > len(lines) {
		return fmt.Errorf("line range %d-%d out of range (file has %d lines)", start, end, len(lines))
	}
	return nil
}
