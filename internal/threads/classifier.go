package threads

import (
	"github.com/revloop/pkg/models"
)

// ActionableNote pairs a reviewer note with its computed thread metadata plus
// the discussion it came from, so downstream stages never re-derive either.
type ActionableNote struct {
	Note       *models.Note
	Discussion *models.Discussion
	Meta       *models.ThreadMetadata
}

// Stats counts every note seen during classification, including system notes
// that are excluded from both the actionable and context-only sets.
type Stats struct {
	TotalNotes  int
	Actionable  int
	ContextOnly int
	SystemNotes int
}

// Partition holds one classification pass over a merge request's discussions.
type Partition struct {
	Actionable  []*ActionableNote
	ContextOnly []*ActionableNote
	Stats       Stats
}

// Classify derives one ThreadMetadata per note of a discussion, indexed by
// position. The metadata is computed once and treated as immutable afterward.
func Classify(d *models.Discussion) []*models.ThreadMetadata {
	metas := make([]*models.ThreadMetadata, len(d.Notes))
	for i := range d.Notes {
		metas[i] = &models.ThreadMetadata{
			DiscussionID:     d.ID,
			IsResolved:       d.Resolved,
			ThreadPosition:   i,
			ConversationFlow: flowFor(d, i),
		}
	}
	return metas
}

// flowFor tags a note as the thread opening, a reply, or the resolution note.
// The last note of a resolved thread is the resolution.
func flowFor(d *models.Discussion, position int) models.ConversationFlow {
	if position == 0 {
		return models.FlowOpening
	}
	if d.Resolved && position == len(d.Notes)-1 {
		return models.FlowResolution
	}
	return models.FlowReply
}

// PartitionDiscussions splits all notes into actionable and context-only sets.
// A note is actionable when it opens a thread (it warrants a new action item);
// replies and resolution notes only provide context. Resolved threads are
// excluded from the actionable set unless includeResolved is set. System notes
// land in neither set but are counted in Stats.
func PartitionDiscussions(discussions []*models.Discussion, includeResolved bool) *Partition {
	p := &Partition{}
	for _, d := range discussions {
		metas := Classify(d)
		for i, note := range d.Notes {
			p.Stats.TotalNotes++
			if note.System {
				p.Stats.SystemNotes++
				continue
			}
			entry := &ActionableNote{Note: note, Discussion: d, Meta: metas[i]}
			if isActionable(metas[i], includeResolved) {
				p.Actionable = append(p.Actionable, entry)
				p.Stats.Actionable++
			} else {
				p.ContextOnly = append(p.ContextOnly, entry)
				p.Stats.ContextOnly++
			}
		}
	}
	return p
}

func isActionable(meta *models.ThreadMetadata, includeResolved bool) bool {
	if meta.ConversationFlow != models.FlowOpening {
		return false
	}
	if meta.IsResolved && !includeResolved {
		return false
	}
	return true
}
