package analysis

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/revloop/internal/analyzer"
	"github.com/revloop/internal/threads"
	"github.com/revloop/pkg/models"
)

// SchedulerConfig controls batching of classifier calls.
type SchedulerConfig struct {
	BatchSize  int           `koanf:"batch_size"`
	BatchDelay time.Duration `koanf:"batch_delay"`
}

// DefaultSchedulerConfig returns the stock batching parameters: batches of 10
// with one second between batch starts, load-shedding for the classifier.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		BatchSize:  10,
		BatchDelay: 1 * time.Second,
	}
}

// Scheduler paginates actionable notes and fans classifier calls out in
// fixed-size batches. Batches run strictly in order; within a batch all calls
// run concurrently and the scheduler waits for the whole batch before starting
// the next one.
type Scheduler struct {
	analyzer analyzer.Analyzer
	config   SchedulerConfig
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

// NewScheduler creates a scheduler. Zero or negative config values fall back
// to the defaults.
func NewScheduler(a analyzer.Analyzer, config SchedulerConfig, logger zerolog.Logger) *Scheduler {
	defaults := DefaultSchedulerConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.BatchDelay <= 0 {
		config.BatchDelay = defaults.BatchDelay
	}
	return &Scheduler{
		analyzer: a,
		config:   config,
		// Burst of 1: the first batch starts immediately, each later batch
		// waits out the configured delay.
		limiter: rate.NewLimiter(rate.Every(config.BatchDelay), 1),
		logger:  logger,
	}
}

// Window selects [offset, offset+max) from the actionable notes, clamped to
// the available range.
func Window(notes []*threads.ActionableNote, offset, max int) []*threads.ActionableNote {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(notes) {
		return nil
	}
	end := offset + max
	if max <= 0 || end > len(notes) {
		end = len(notes)
	}
	return notes[offset:end]
}

// Analyze runs the classifier over a window of actionable notes and returns
// one analysis per note, in input order. A failed classification is replaced
// by a degraded analysis record; it never aborts the batch or later batches.
func (s *Scheduler) Analyze(
	ctx context.Context,
	window []*threads.ActionableNote,
	mrCtx analyzer.MRContext,
) []*models.CommentAnalysis {

	// Indexed result slots: batch and intra-batch order are structural, not an
	// artifact of goroutine scheduling.
	results := make([]*models.CommentAnalysis, len(window))

	batches := (len(window) + s.config.BatchSize - 1) / s.config.BatchSize
	s.logger.Info().
		Int("notes", len(window)).
		Int("batches", batches).
		Int("batch_size", s.config.BatchSize).
		Msg("Starting batched comment analysis")

	for start := 0; start < len(window); start += s.config.BatchSize {
		if err := s.limiter.Wait(ctx); err != nil {
			// Context died between batches; degrade the rest instead of
			// returning a short slice.
			for i := start; i < len(window); i++ {
				results[i] = DegradedAnalysis(window[i])
			}
			break
		}

		end := start + s.config.BatchSize
		if end > len(window) {
			end = len(window)
		}
		s.runBatch(ctx, window, results, start, end, mrCtx)
		s.logger.Debug().
			Int("batch_start", start).
			Int("batch_end", end).
			Msg("Batch complete")
	}

	return results
}

// runBatch fans out one batch of classifier calls and waits for all of them.
func (s *Scheduler) runBatch(
	ctx context.Context,
	window []*threads.ActionableNote,
	results []*models.CommentAnalysis,
	start, end int,
	mrCtx analyzer.MRContext,
) {
	done := make(chan struct{})
	pending := end - start

	for i := start; i < end; i++ {
		go func(slot int, entry *threads.ActionableNote) {
			defer func() { done <- struct{}{} }()
			results[slot] = s.analyzeOne(ctx, entry, mrCtx)
		}(i, window[i])
	}

	for ; pending > 0; pending-- {
		<-done
	}
}

func (s *Scheduler) analyzeOne(ctx context.Context, entry *threads.ActionableNote, mrCtx analyzer.MRContext) *models.CommentAnalysis {
	noteCtx := mrCtx
	noteCtx.Thread = threadContext(entry)

	result, err := s.analyzer.AnalyzeComment(ctx, entry.Note, noteCtx)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int("note_id", entry.Note.ID).
			Str("discussion_id", entry.Meta.DiscussionID).
			Msg("Comment analysis failed, substituting degraded record")
		return DegradedAnalysis(entry)
	}

	result.ThreadMetadata = entry.Meta
	if result.ID == "" {
		result.ID = strconv.Itoa(entry.Note.ID)
	}
	return result
}

// threadContext collects the notes that precede this one in its discussion.
func threadContext(entry *threads.ActionableNote) []*models.Note {
	var prior []*models.Note
	for _, note := range entry.Discussion.Notes {
		if note.ID == entry.Note.ID {
			break
		}
		prior = append(prior, note)
	}
	return prior
}

// DegradedAnalysis is the stand-in record for a note whose classification
// failed: minor category, severity 1, confidence 0.1, marked invalid, with the
// original thread metadata preserved.
func DegradedAnalysis(entry *threads.ActionableNote) *models.CommentAnalysis {
	return &models.CommentAnalysis{
		ID:             strconv.Itoa(entry.Note.ID),
		Body:           entry.Note.Body,
		Author:         entry.Note.Author,
		Category:       "minor",
		Severity:       1,
		Confidence:     0.1,
		IsValid:        false,
		Reasoning:      "analysis failed; degraded placeholder",
		ThreadMetadata: entry.Meta,
	}
}
