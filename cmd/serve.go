package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revloop/internal/api"
	"github.com/revloop/internal/config"
	"github.com/revloop/internal/logging"
)

// ServeCommand returns the serve command.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the feedback-triage HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
				Value:   8080,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable verbose output",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	logging.Setup(c.Bool("verbose"))

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	orc, err := buildOrchestrator(c.Context, cfg)
	if err != nil {
		return err
	}

	server := api.NewServer(orc, cfg.GitLab.ProjectID, c.Int("port"))
	return server.Start()
}
