package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/revloop/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	app := &cli.App{
		Name:    "revloop",
		Usage:   "Review-feedback triage and auto-fix tool for GitLab merge requests",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE` (defaults to ./revloop.toml, then $HOME/.revloop.toml)",
			},
		},
		Commands: []*cli.Command{
			cmd.TriageCommand(),
			cmd.ServeCommand(),
			cmd.ConfigCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
