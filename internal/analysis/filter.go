package analysis

import (
	"github.com/revloop/pkg/models"
)

// FilterOptions narrows the aggregated analysis set. Zero values disable the
// corresponding filter. Filters compose with AND semantics in the fixed order
// category, severity, risk.
type FilterOptions struct {
	Categories  []string         // allow-list; empty keeps every category
	MinSeverity int              // keep severity >= MinSeverity; 0 disables
	MaxRisk     models.RiskLevel // keep risk bucket <= MaxRisk; empty disables
}

// Filter is a pure function over the analysis list.
func Filter(analyses []*models.CommentAnalysis, opts FilterOptions) []*models.CommentAnalysis {
	out := make([]*models.CommentAnalysis, 0, len(analyses))
	for _, a := range analyses {
		if !matchesCategory(a, opts.Categories) {
			continue
		}
		if opts.MinSeverity > 0 && a.Severity < opts.MinSeverity {
			continue
		}
		if !withinRisk(a, opts.MaxRisk) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func matchesCategory(a *models.CommentAnalysis, categories []string) bool {
	if len(categories) == 0 {
		return true
	}
	for _, c := range categories {
		if a.Category == c {
			return true
		}
	}
	return false
}

// withinRisk buckets the 1-10 risk score onto the five-level scale and keeps
// analyses at or below the requested level. Analyses without a risk assessment
// are always retained.
func withinRisk(a *models.CommentAnalysis, max models.RiskLevel) bool {
	if max == "" || a.Risk == nil {
		return true
	}
	bucket := models.RiskLevelForScore(a.Risk.RiskScore)
	return bucket.Index() <= max.Index()
}
