package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/revloop/internal/retry"
	"github.com/revloop/pkg/models"
)

// LLMConfig selects and configures the model behind the classifier.
type LLMConfig struct {
	Provider    string  `koanf:"provider"` // openai | gemini | claude | ollama
	APIKey      string  `koanf:"api_key"`
	BaseURL     string  `koanf:"base_url"`
	Model       string  `koanf:"model"`
	Temperature float64 `koanf:"temperature"`
}

// LangchainAnalyzer implements Analyzer on top of langchain model
// abstractions. Model output is repaired before parsing because LLMs
// routinely emit slightly malformed JSON.
type LangchainAnalyzer struct {
	llm         llms.Model
	config      LLMConfig
	retryConfig retry.Config
	logger      zerolog.Logger
}

// NewLangchainAnalyzer creates the classifier for the configured provider.
func NewLangchainAnalyzer(ctx context.Context, config LLMConfig, logger zerolog.Logger) (*LangchainAnalyzer, error) {
	var model llms.Model
	var err error

	switch config.Provider {
	case "openai":
		opts := []openai.Option{openai.WithToken(config.APIKey), openai.WithModel(config.Model)}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		model, err = openai.New(opts...)
	case "gemini":
		model, err = googleai.New(ctx, googleai.WithAPIKey(config.APIKey), googleai.WithDefaultModel(config.Model))
	case "claude":
		model, err = anthropic.New(anthropic.WithToken(config.APIKey), anthropic.WithModel(config.Model))
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(config.Model)}
		if config.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(config.BaseURL))
		}
		model, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s model: %w", config.Provider, err)
	}

	return &LangchainAnalyzer{
		llm:         model,
		config:      config,
		retryConfig: retry.LLMConfig(),
		logger:      logger,
	}, nil
}

// AnalyzeComment classifies one reviewer note. The returned analysis carries
// no thread metadata; the scheduler attaches it.
func (a *LangchainAnalyzer) AnalyzeComment(ctx context.Context, note *models.Note, mrCtx MRContext) (*models.CommentAnalysis, error) {
	prompt := buildPrompt(note, mrCtx)

	var response string
	err := retry.Do(ctx, a.retryConfig, a.logger, func() error {
		out, genErr := llms.GenerateFromSinglePrompt(ctx, a.llm, prompt,
			llms.WithTemperature(a.config.Temperature))
		if genErr != nil {
			return genErr
		}
		response = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("classifier call failed: %w", err)
	}

	analysis, err := parseAnalysis(response)
	if err != nil {
		a.logger.Warn().Err(err).Int("note_id", note.ID).Msg("Failed to parse classifier response")
		return nil, err
	}

	analysis.ID = strconv.Itoa(note.ID)
	analysis.Body = note.Body
	analysis.Author = note.Author
	return analysis, nil
}

// parseAnalysis extracts the JSON object from a model response, repairs it if
// needed, and unmarshals it into a CommentAnalysis.
func parseAnalysis(response string) (*models.CommentAnalysis, error) {
	raw := extractJSON(response)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object found in classifier response")
	}

	var analysis models.CommentAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return nil, fmt.Errorf("unparseable classifier response: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &analysis); err != nil {
			return nil, fmt.Errorf("classifier response invalid after repair: %w", err)
		}
	}

	if analysis.Category == "" {
		return nil, fmt.Errorf("classifier response is missing a category")
	}
	return &analysis, nil
}

// extractJSON strips markdown fences and surrounding prose, returning the
// outermost JSON object.
func extractJSON(response string) string {
	s := strings.TrimSpace(response)
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
	} else if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
