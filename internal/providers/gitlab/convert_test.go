package gitlab

import (
	"testing"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/google/go-cmp/cmp"

	"github.com/revloop/pkg/models"
)

func apiNote(id int, body, author string, resolvable, resolved bool) *gitlab.Note {
	n := &gitlab.Note{
		ID:         id,
		Body:       body,
		Resolvable: resolvable,
		Resolved:   resolved,
	}
	n.Author.Username = author
	return n
}

func TestConvertMergeRequest(t *testing.T) {
	mr := &gitlab.MergeRequest{}
	mr.IID = 42
	mr.Title = "Add retries"
	mr.Description = "adds retry handling"
	mr.SourceBranch = "feature/retries"
	mr.TargetBranch = "main"
	mr.WebURL = "https://gitlab.example.com/g/p/-/merge_requests/42"
	mr.Author = &gitlab.BasicUser{Username: "dev"}

	got := convertMergeRequest(mr, "group/project")
	want := &models.MergeRequest{
		IID:          42,
		ProjectID:    "group/project",
		Title:        "Add retries",
		Description:  "adds retry handling",
		SourceBranch: "feature/retries",
		TargetBranch: "main",
		Author:       "dev",
		WebURL:       "https://gitlab.example.com/g/p/-/merge_requests/42",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merge request mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertDiscussionResolution(t *testing.T) {
	tests := []struct {
		name         string
		notes        []*gitlab.Note
		wantResolved bool
	}{
		{
			name: "all resolvable notes resolved",
			notes: []*gitlab.Note{
				apiNote(1, "fix this", "reviewer", true, true),
				apiNote(2, "done", "author", true, true),
			},
			wantResolved: true,
		},
		{
			name: "one resolvable note still open",
			notes: []*gitlab.Note{
				apiNote(1, "fix this", "reviewer", true, true),
				apiNote(2, "and this", "reviewer", true, false),
			},
			wantResolved: false,
		},
		{
			name: "no resolvable notes",
			notes: []*gitlab.Note{
				apiNote(1, "nice work", "reviewer", false, false),
			},
			wantResolved: false,
		},
		{
			name: "non-resolvable notes do not affect resolution",
			notes: []*gitlab.Note{
				apiNote(1, "fix this", "reviewer", true, true),
				apiNote(2, "added 1 commit", "bot", false, false),
			},
			wantResolved: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertDiscussion(&gitlab.Discussion{ID: "d1", Notes: tt.notes})
			if got.Resolved != tt.wantResolved {
				t.Errorf("expected resolved=%v, got %v", tt.wantResolved, got.Resolved)
			}
			if len(got.Notes) != len(tt.notes) {
				t.Errorf("expected %d notes, got %d", len(tt.notes), len(got.Notes))
			}
		})
	}
}

func TestConvertDiscussionNoteFields(t *testing.T) {
	n := apiNote(7, "please add a test", "reviewer", true, false)
	n.System = true

	got := convertDiscussion(&gitlab.Discussion{ID: "d1", Notes: []*gitlab.Note{n}})
	note := got.Notes[0]

	if note.ID != 7 || note.Body != "please add a test" || note.Author != "reviewer" || !note.System {
		t.Errorf("unexpected note conversion: %+v", note)
	}
}
