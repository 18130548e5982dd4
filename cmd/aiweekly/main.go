package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jatayu/aiweekly/internal/app"
	"github.com/jatayu/aiweekly/internal/config"
	"github.com/jatayu/aiweekly/internal/logger"
)

func main() {
	logger.Init()

	root := &cobra.Command{
		Use:           "aiweekly",
		Short:         "Rank and select candidate articles into a weekly digest shortlist",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		stageCommand("collect", "Fetch candidates from RSS feeds and arXiv", (*app.App).Collect),
		stageCommand("rank", "Dedup, score and select the global top-N shortlist", (*app.App).Rank),
		stageCommand("select", "Pick top items per section via the LLM chooser", (*app.App).Select),
		stageCommand("summarize", "Generate long-form summaries for selected items", (*app.App).Summarize),
		stageCommand("run", "Run collect, rank, select and summarize in order", (*app.App).Run),
	)

	if err := root.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func stageCommand(name, short string, fn func(*app.App, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return fn(a, cmd.Context())
		},
	}
}
