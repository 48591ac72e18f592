package models

// Merge request and discussion models

// MergeRequest holds the subset of merge request data the feedback pipeline needs.
type MergeRequest struct {
	IID          int    `json:"iid"`
	ProjectID    string `json:"project_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	SourceBranch string `json:"source_branch"`
	TargetBranch string `json:"target_branch"`
	Author       string `json:"author"`
	WebURL       string `json:"web_url"`
}

// Note is a single comment inside a discussion thread.
type Note struct {
	ID     int    `json:"id"`
	Body   string `json:"body"`
	Author string `json:"author"`
	System bool   `json:"system"` // bot-authored status note
}

// Discussion is an ordered thread of notes with an overall resolution state.
type Discussion struct {
	ID       string  `json:"id"`
	Resolved bool    `json:"resolved"`
	Notes    []*Note `json:"notes"`
}

// ConversationFlow classifies the role a note plays within its thread.
type ConversationFlow string

const (
	FlowOpening    ConversationFlow = "opening"
	FlowReply      ConversationFlow = "reply"
	FlowResolution ConversationFlow = "resolution"
)

// ThreadMetadata is computed once per discussion when discussions are fetched
// and is immutable afterward.
type ThreadMetadata struct {
	DiscussionID     string           `json:"discussion_id"`
	IsResolved       bool             `json:"is_resolved"`
	ThreadPosition   int              `json:"thread_position"` // ordinal of the note within its discussion
	ConversationFlow ConversationFlow `json:"conversation_flow"`
}

// Analysis models

// RiskAssessment carries the classifier's 1-10 risk score for a comment.
type RiskAssessment struct {
	RiskScore int `json:"risk_score"`
}

// CommentAnalysis is the classifier's verdict on one reviewer note. When
// classification fails the scheduler substitutes a degraded record with
// IsValid=false and Confidence=0.1 so a single bad note never sinks a run.
type CommentAnalysis struct {
	ID                string                `json:"id"`
	Body              string                `json:"body"`
	Author            string                `json:"author"`
	Category          string                `json:"category"`
	Severity          int                   `json:"severity"`
	Confidence        float64               `json:"confidence"`
	IsValid           bool                  `json:"is_valid"`
	Reasoning         string                `json:"reasoning"`
	SuggestedResponse string                `json:"suggested_response"`
	ThreadMetadata    *ThreadMetadata       `json:"thread_metadata,omitempty"`
	AutoResponse      *AutoResponseDecision `json:"auto_response_decision,omitempty"`
	AutoFix           *AutoFixDecision      `json:"auto_fix_decision,omitempty"`
	Risk              *RiskAssessment       `json:"risk_assessment,omitempty"`
}

// AutoResponseDecision is the classifier's call on whether to post a reply.
type AutoResponseDecision struct {
	ShouldRespond bool   `json:"should_respond"`
	ResponseText  string `json:"response_text"`
	Reason        string `json:"reason"`
}

// Auto-fix models

// RiskLevel is an ordered scale; comparisons go through Index.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "very_low"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

var riskOrder = []RiskLevel{RiskVeryLow, RiskLow, RiskMedium, RiskHigh, RiskVeryHigh}

// Index returns the position of the level in the ordered scale, or -1 for an
// unknown level.
func (r RiskLevel) Index() int {
	for i, level := range riskOrder {
		if level == r {
			return i
		}
	}
	return -1
}

// Valid reports whether the level is one of the five known values.
func (r RiskLevel) Valid() bool {
	return r.Index() >= 0
}

// RiskLevelForScore maps a 1-10 risk score onto the five-level scale.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score <= 2:
		return RiskVeryLow
	case score <= 4:
		return RiskLow
	case score <= 6:
		return RiskMedium
	case score <= 8:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// FixType categorizes the kind of change an auto-fix performs.
type FixType string

const (
	FixSimpleRefactor FixType = "simple_refactor"
	FixBugFix         FixType = "bug_fix"
	FixStyle          FixType = "style_fix"
	FixDocumentation  FixType = "documentation"
)

// ChangeType selects the patch operation for one CodeChange.
type ChangeType string

const (
	ChangeReplace ChangeType = "replace"
	ChangeInsert  ChangeType = "insert"
	ChangeDelete  ChangeType = "delete"
)

// CodeChange is a single line-based edit. Lines are 1-indexed and ranges are
// inclusive. Replace/delete require StartLine and EndLine; insert requires
// StartLine and NewCode. OriginalCode, when set, is the expected pre-image for
// a replace and is compared trim-to-trim before anything is written.
type CodeChange struct {
	FilePath     string     `json:"file_path"`
	ChangeType   ChangeType `json:"change_type"`
	StartLine    int        `json:"start_line"`
	EndLine      int        `json:"end_line,omitempty"`
	OriginalCode string     `json:"original_code,omitempty"`
	NewCode      string     `json:"new_code,omitempty"`
}

// AutoFixDecision is the classifier's proposal for fixing a comment
// automatically. ShouldFix=false means the decision is never evaluated for
// application.
type AutoFixDecision struct {
	ShouldFix        bool         `json:"should_fix"`
	FixType          FixType      `json:"fix_type"`
	FixReason        string       `json:"fix_reason"`
	Confidence       float64      `json:"confidence"`
	EstimatedRisk    RiskLevel    `json:"estimated_risk"`
	AffectedFiles    []string     `json:"affected_files"`
	CodeChanges      []CodeChange `json:"code_changes"`
	RequiresApproval bool         `json:"requires_approval"`
	Prerequisites    []string     `json:"prerequisites,omitempty"`
}

// GitStatus reports the working tree check performed once per fix run.
type GitStatus struct {
	IsOnCorrectBranch     bool   `json:"is_on_correct_branch"`
	CurrentBranch         string `json:"current_branch"`
	ExpectedBranch        string `json:"expected_branch"`
	HasUncommittedChanges bool   `json:"has_uncommitted_changes"`
}

// FixExecutionResult records the outcome of applying one planned fix.
type FixExecutionResult struct {
	Analysis *CommentAnalysis `json:"analysis"`
	Success  bool             `json:"success"`
	Error    string           `json:"error,omitempty"`
	Files    []string         `json:"files,omitempty"`
}

// SkippedFix pairs an analysis with the first gate that rejected it.
type SkippedFix struct {
	Analysis *CommentAnalysis `json:"analysis"`
	Reason   string           `json:"reason"`
}

// AutoFixResults is built incrementally during one fix run and returned, never
// persisted.
type AutoFixResults struct {
	PlannedFixes []*CommentAnalysis    `json:"planned_fixes"`
	AppliedFixes []*FixExecutionResult `json:"applied_fixes"`
	SkippedFixes []SkippedFix          `json:"skipped_fixes"`
	GitStatus    *GitStatus            `json:"git_status"`
}

// Orchestration result models

// AutoResponseResults summarizes the sibling reply pipeline.
type AutoResponseResults struct {
	Posted  int `json:"posted"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Pagination is computed against the count of actionable notes, not all notes.
type Pagination struct {
	Offset         int  `json:"offset"`
	MaxComments    int  `json:"max_comments"`
	TotalAvailable int  `json:"total_available"`
	HasMore        bool `json:"has_more"`
}

// Summary aggregates note and analysis statistics for one run.
type Summary struct {
	TotalNotes   int            `json:"total_notes"`
	Actionable   int            `json:"actionable"`
	ContextOnly  int            `json:"context_only"`
	SystemNotes  int            `json:"system_notes"`
	Analyzed     int            `json:"analyzed"`
	ValidCount   int            `json:"valid_count"`
	InvalidCount int            `json:"invalid_count"`
	ByCategory   map[string]int `json:"by_category"`
	BySeverity   map[int]int    `json:"by_severity"`
}

// FeedbackResult is the full output of one feedback-triage run.
type FeedbackResult struct {
	MergeRequest *MergeRequest        `json:"merge_request"`
	Analyses     []*CommentAnalysis   `json:"comment_analysis"`
	Summary      *Summary             `json:"summary"`
	Pagination   Pagination           `json:"pagination"`
	AutoResponse *AutoResponseResults `json:"auto_response_results,omitempty"`
	AutoFix      *AutoFixResults      `json:"auto_fix_results,omitempty"`
}
