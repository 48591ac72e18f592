package analysis

import (
	"testing"

	"github.com/revloop/pkg/models"
)

func sampleAnalyses() []*models.CommentAnalysis {
	return []*models.CommentAnalysis{
		{ID: "1", Category: "bug", Severity: 8, Risk: &models.RiskAssessment{RiskScore: 7}},
		{ID: "2", Category: "style", Severity: 2, Risk: &models.RiskAssessment{RiskScore: 1}},
		{ID: "3", Category: "bug", Severity: 5, Risk: &models.RiskAssessment{RiskScore: 3}},
		{ID: "4", Category: "question", Severity: 4},
	}
}

func TestFilterNoOptionsKeepsEverything(t *testing.T) {
	got := Filter(sampleAnalyses(), FilterOptions{})
	if len(got) != 4 {
		t.Fatalf("expected all 4 analyses, got %d", len(got))
	}
}

func TestFilterByCategory(t *testing.T) {
	got := Filter(sampleAnalyses(), FilterOptions{Categories: []string{"bug"}})
	if len(got) != 2 {
		t.Fatalf("expected 2 bug analyses, got %d", len(got))
	}
	for _, a := range got {
		if a.Category != "bug" {
			t.Errorf("unexpected category %s", a.Category)
		}
	}
}

func TestFilterByMinSeverity(t *testing.T) {
	got := Filter(sampleAnalyses(), FilterOptions{MinSeverity: 5})
	if len(got) != 2 {
		t.Fatalf("expected 2 analyses at severity >= 5, got %d", len(got))
	}
	for _, a := range got {
		if a.Severity < 5 {
			t.Errorf("severity %d below threshold", a.Severity)
		}
	}
}

func TestFilterByMaxRisk(t *testing.T) {
	// Score 7 buckets to high, 3 to low, 1 to very_low. The analysis without a
	// risk assessment is always kept.
	got := Filter(sampleAnalyses(), FilterOptions{MaxRisk: models.RiskLow})
	ids := map[string]bool{}
	for _, a := range got {
		ids[a.ID] = true
	}
	if len(got) != 3 || !ids["2"] || !ids["3"] || !ids["4"] {
		t.Fatalf("expected ids 2,3,4 to survive max risk low, got %v", ids)
	}
}

func TestFilterComposesWithAND(t *testing.T) {
	got := Filter(sampleAnalyses(), FilterOptions{
		Categories:  []string{"bug"},
		MinSeverity: 5,
		MaxRisk:     models.RiskMedium,
	})
	if len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("expected only analysis 3, got %d results", len(got))
	}
}

func TestFilterEmptyInput(t *testing.T) {
	got := Filter(nil, FilterOptions{Categories: []string{"bug"}})
	if len(got) != 0 {
		t.Fatalf("expected empty output, got %d", len(got))
	}
}
