package autofix

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/revloop/pkg/models"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	return path
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading test file: %v", err)
	}
	return string(data)
}

func TestApplyReplace(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "main.go", "line one\nline two\nline three\n")
	e := NewExecutor(dir)

	files, err := e.ApplyFix(&models.AutoFixDecision{
		CodeChanges: []models.CodeChange{{
			FilePath:     "main.go",
			ChangeType:   models.ChangeReplace,
			StartLine:    2,
			EndLine:      2,
			OriginalCode: "line two",
			NewCode:      "line 2a\nline 2b",
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 touched file, got %d", len(files))
	}

	got := readTestFile(t, filepath.Join(dir, "main.go"))
	want := "line one\nline 2a\nline 2b\nline three\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestApplyReplaceTrimsPreImage(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.go", "  indented content  \nrest\n")
	e := NewExecutor(dir)

	_, err := e.ApplyFix(&models.AutoFixDecision{
		CodeChanges: []models.CodeChange{{
			FilePath:     "a.go",
			ChangeType:   models.ChangeReplace,
			StartLine:    1,
			EndLine:      1,
			OriginalCode: "indented content",
			NewCode:      "replaced",
		}},
	})
	if err != nil {
		t.Fatalf("expected trim-compared pre-image to match, got %v", err)
	}
}

func TestApplyReplaceMismatchLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	original := "alpha\nbeta\ngamma\n"
	path := writeTestFile(t, dir, "a.go", original)
	e := NewExecutor(dir)

	_, err := e.ApplyFix(&models.AutoFixDecision{
		CodeChanges: []models.CodeChange{{
			FilePath:     "a.go",
			ChangeType:   models.ChangeReplace,
			StartLine:    2,
			EndLine:      2,
			OriginalCode: "something else",
			NewCode:      "replaced",
		}},
	})
	if err == nil {
		t.Fatal("expected a pre-image mismatch error")
	}
	if !strings.Contains(err.Error(), "original code mismatch at lines 2-2") {
		t.Errorf("unexpected error: %v", err)
	}
	if got := readTestFile(t, path); got != original {
		t.Errorf("file mutated despite mismatch: %q", got)
	}
}

func TestApplyInsert(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.txt", "one\ntwo\nthree")
	e := NewExecutor(dir)

	_, err := e.ApplyFix(&models.AutoFixDecision{
		CodeChanges: []models.CodeChange{{
			FilePath:   "a.txt",
			ChangeType: models.ChangeInsert,
			StartLine:  2,
			NewCode:    "one and a half",
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "one\none and a half\ntwo\nthree"
	if got := readTestFile(t, path); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestApplyInsertAppendsPastLastLine(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.txt", "one\ntwo")
	e := NewExecutor(dir)

	_, err := e.ApplyFix(&models.AutoFixDecision{
		CodeChanges: []models.CodeChange{{
			FilePath:   "a.txt",
			ChangeType: models.ChangeInsert,
			StartLine:  3,
			NewCode:    "three",
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readTestFile(t, path); got != "one\ntwo\nthree" {
		t.Errorf("got %q", got)
	}
}

func TestApplyDelete(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.txt", "one\ntwo\nthree\nfour\n")
	e := NewExecutor(dir)

	_, err := e.ApplyFix(&models.AutoFixDecision{
		CodeChanges: []models.CodeChange{{
			FilePath:   "a.txt",
			ChangeType: models.ChangeDelete,
			StartLine:  2,
			EndLine:    3,
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readTestFile(t, path); got != "one\nfour\n" {
		t.Errorf("got %q", got)
	}
}

func TestApplyChangeErrors(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "one\ntwo\n")
	e := NewExecutor(dir)

	tests := []struct {
		name    string
		change  models.CodeChange
		wantErr string
	}{
		{
			name: "missing file",
			change: models.CodeChange{
				FilePath: "absent.txt", ChangeType: models.ChangeReplace,
				StartLine: 1, EndLine: 1, NewCode: "x",
			},
			wantErr: "file does not exist",
		},
		{
			name: "unsupported change type",
			change: models.CodeChange{
				FilePath: "a.txt", ChangeType: "rewrite", StartLine: 1, EndLine: 1,
			},
			wantErr: "unsupported change type",
		},
		{
			name: "range past end of file",
			change: models.CodeChange{
				FilePath: "a.txt", ChangeType: models.ChangeDelete, StartLine: 1, EndLine: 99,
			},
			wantErr: "out of range",
		},
		{
			name: "inverted range",
			change: models.CodeChange{
				FilePath: "a.txt", ChangeType: models.ChangeDelete, StartLine: 2, EndLine: 1,
			},
			wantErr: "invalid line range",
		},
		{
			name: "replace without new code",
			change: models.CodeChange{
				FilePath: "a.txt", ChangeType: models.ChangeReplace, StartLine: 1, EndLine: 1,
			},
			wantErr: "replace requires new code",
		},
		{
			name: "insert without new code",
			change: models.CodeChange{
				FilePath: "a.txt", ChangeType: models.ChangeInsert, StartLine: 1,
			},
			wantErr: "insert requires new code",
		},
		{
			name: "insert position out of range",
			change: models.CodeChange{
				FilePath: "a.txt", ChangeType: models.ChangeInsert, StartLine: 99, NewCode: "x",
			},
			wantErr: "out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ApplyFix(&models.AutoFixDecision{CodeChanges: []models.CodeChange{tt.change}})
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyFixStopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.txt", "one\ntwo\n")
	e := NewExecutor(dir)

	files, err := e.ApplyFix(&models.AutoFixDecision{
		CodeChanges: []models.CodeChange{
			{
				FilePath: "a.txt", ChangeType: models.ChangeReplace,
				StartLine: 1, EndLine: 1, NewCode: "ONE",
			},
			{
				FilePath: "missing.txt", ChangeType: models.ChangeReplace,
				StartLine: 1, EndLine: 1, NewCode: "x",
			},
			{
				FilePath: "a.txt", ChangeType: models.ChangeReplace,
				StartLine: 2, EndLine: 2, NewCode: "TWO",
			},
		},
	})
	if err == nil {
		t.Fatal("expected an error from the second change")
	}
	if !strings.Contains(err.Error(), "change 2 (missing.txt)") {
		t.Errorf("expected error to name change 2, got %v", err)
	}

	// The first change stays applied, the third never ran.
	if got := readTestFile(t, path); got != "ONE\ntwo\n" {
		t.Errorf("got %q", got)
	}
	if len(files) != 1 {
		t.Errorf("expected 1 touched file before the failure, got %d", len(files))
	}
}

func TestApplyFixAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "abs.txt", "x\n")
	e := NewExecutor("/somewhere/else")

	_, err := e.ApplyFix(&models.AutoFixDecision{
		CodeChanges: []models.CodeChange{{
			FilePath: path, ChangeType: models.ChangeReplace,
			StartLine: 1, EndLine: 1, NewCode: "y",
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readTestFile(t, path); got != "y\n" {
		t.Errorf("got %q", got)
	}
}
