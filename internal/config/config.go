package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/revloop/internal/analyzer"
	"github.com/revloop/internal/autofix"
	gitlab "github.com/revloop/internal/providers/gitlab"
)

// AnalysisConfig tunes the batch analysis scheduler and the default window.
type AnalysisConfig struct {
	BatchSize   int           `koanf:"batch_size"`
	BatchDelay  time.Duration `koanf:"batch_delay"`
	MaxComments int           `koanf:"max_comments"`
}

// ResponseConfig controls the auto-response sibling pipeline.
type ResponseConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Config represents the application configuration.
type Config struct {
	GitLab   gitlab.Config      `koanf:"gitlab"`
	AI       analyzer.LLMConfig `koanf:"ai"`
	Analysis AnalysisConfig     `koanf:"analysis"`
	Response ResponseConfig     `koanf:"response"`
	AutoFix  autofix.Config     `koanf:"autofix"`
}

// LoadConfig loads the configuration from a file, layered over defaults, with
// REVLOOP_ environment variables on top.
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Defaults; safety-relevant autofix settings default to off/dry-run.
	k.Load(confmap.Provider(map[string]interface{}{
		"ai.provider":                   "openai",
		"ai.temperature":                0.2,
		"analysis.batch_size":           10,
		"analysis.batch_delay":          "1s",
		"analysis.max_comments":         20,
		"autofix.enabled":               false,
		"autofix.dry_run":               true,
		"autofix.max_fixes_per_session": 5,
		"autofix.risk_threshold":        "low",
		"autofix.confidence_threshold":  0.8,
		"autofix.working_directory":     ".",
		"response.enabled":              false,
	}, "."), nil)

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		defaultPaths := []string{"./revloop.toml", "$HOME/.revloop.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// REVLOOP_GITLAB_TOKEN -> gitlab.token. Only the first underscore becomes a
	// section separator so multi-word keys like autofix.max_fixes_per_session
	// stay addressable.
	k.Load(env.Provider("REVLOOP_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "REVLOOP_"))
		return strings.Replace(s, "_", ".", 1)
	}), nil)

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig writes a sample configuration file.
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# Revloop Configuration

[gitlab]
url = "https://gitlab.example.com"
token = "your-gitlab-token"
project_id = "group/project"

[ai]
provider = "openai"
api_key = "your-api-key"
model = "gpt-4o-mini"
temperature = 0.2

[analysis]
batch_size = 10
batch_delay = "1s"
max_comments = 20

[response]
enabled = false

[autofix]
enabled = false
dry_run = true
max_fixes_per_session = 5
risk_threshold = "low"
confidence_threshold = 0.8
allowed_file_types = []
excluded_paths = ["vendor", ".git"]
require_approval_for_refactors = true
require_approval_for_bug_fixes = true
working_directory = "."
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration.
func Validate(config *Config) error {
	if config.GitLab.URL == "" {
		return fmt.Errorf("gitlab url is required")
	}
	if config.GitLab.Token == "" {
		return fmt.Errorf("gitlab token is required")
	}
	if config.GitLab.ProjectID == "" {
		return fmt.Errorf("gitlab project_id is required")
	}

	if config.AI.Provider == "" {
		return fmt.Errorf("ai provider is required")
	}
	if config.AI.Provider != "ollama" && config.AI.APIKey == "" {
		return fmt.Errorf("ai api_key is required for provider %s", config.AI.Provider)
	}

	if !config.AutoFix.RiskThreshold.Valid() {
		return fmt.Errorf("autofix risk_threshold %q is not one of very_low, low, medium, high, very_high", config.AutoFix.RiskThreshold)
	}
	if config.AutoFix.ConfidenceThreshold < 0 || config.AutoFix.ConfidenceThreshold > 1 {
		return fmt.Errorf("autofix confidence_threshold must be between 0 and 1")
	}
	if config.AutoFix.MaxFixesPerSession < 0 {
		return fmt.Errorf("autofix max_fixes_per_session must not be negative")
	}

	if config.Analysis.BatchSize < 0 {
		return fmt.Errorf("analysis batch_size must not be negative")
	}

	return nil
}
