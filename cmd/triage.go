package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/revloop/internal/config"
	"github.com/revloop/internal/logging"
	"github.com/revloop/internal/orchestrator"
	"github.com/revloop/pkg/models"
)

// TriageCommand returns the triage command.
func TriageCommand() *cli.Command {
	return &cli.Command{
		Name:  "triage",
		Usage: "Triage review feedback on a merge request and optionally apply auto-fixes",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "mr",
				Aliases: []string{"m"},
				Usage:   "Merge request IID",
			},
			&cli.StringFlag{
				Name:    "branch",
				Aliases: []string{"b"},
				Usage:   "Source branch name (alternative to --mr)",
			},
			&cli.IntFlag{
				Name:  "max-comments",
				Usage: "Maximum number of comments to analyze",
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Zero-based offset into the actionable comment list",
			},
			&cli.StringSliceFlag{
				Name:  "category",
				Usage: "Only keep analyses in these categories",
			},
			&cli.IntFlag{
				Name:  "min-severity",
				Usage: "Minimum severity to keep (1-10)",
			},
			&cli.StringFlag{
				Name:  "risk-threshold",
				Usage: "Maximum risk bucket to keep (very_low, low, medium, high, very_high)",
			},
			&cli.BoolFlag{
				Name:  "summary-only",
				Usage: "Return the summary without per-comment analyses",
			},
			&cli.BoolFlag{
				Name:  "include-resolved",
				Usage: "Also analyze comments from resolved threads",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable verbose output",
			},
		},
		Action: runTriage,
	}
}

func runTriage(c *cli.Context) error {
	logging.Setup(c.Bool("verbose"))

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	risk := models.RiskLevel(c.String("risk-threshold"))
	if c.String("risk-threshold") != "" && !risk.Valid() {
		return fmt.Errorf("unknown risk threshold %q", c.String("risk-threshold"))
	}

	maxComments := c.Int("max-comments")
	if maxComments == 0 {
		maxComments = cfg.Analysis.MaxComments
	}

	orc, err := buildOrchestrator(c.Context, cfg)
	if err != nil {
		return err
	}

	result, err := orc.ReviewFeedback(c.Context, orchestrator.Request{
		ProjectID:       cfg.GitLab.ProjectID,
		MergeRequestIID: c.Int("mr"),
		BranchName:      c.String("branch"),
		MaxComments:     maxComments,
		Offset:          c.Int("offset"),
		CategoryFilter:  c.StringSlice("category"),
		MinSeverity:     c.Int("min-severity"),
		RiskThreshold:   risk,
		SummaryOnly:     c.Bool("summary-only"),
		IncludeResolved: c.Bool("include-resolved"),
	})
	if err != nil {
		return fmt.Errorf("triage failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
