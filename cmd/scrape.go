package cmd

import (
	"context"
	"log"

	"github.com/vetworks/vetmatch/internal/ingest"
	"github.com/vetworks/vetmatch/internal/logger"
	"github.com/vetworks/vetmatch/internal/matching"
	"github.com/vetworks/vetmatch/internal/scheduler"
	"github.com/vetworks/vetmatch/internal/scraper"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one scrape cycle and update the job feed without starting the server",
	Run: func(cmd *cobra.Command, _ []string) {
		scrape(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().Bool("regenerate", false, "also regenerate recommendations for all active profiles")
	scrapeCmd.Flags().Bool("include-civilian", false, "keep postings without veteran keywords in the feed")
}

func scrape(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Scrape == nil || config.Scrape.Command == "" {
		logger.Fatal("scraper command is required under scrape.command")
	}

	st, rdb, cleanup := connect(ctx, config, logger)
	defer cleanup()

	matcher := matching.New(config.weights())
	runner := scraper.NewRunner(config.Scrape.Command, config.Scrape.Args, config.Scrape.MaxJobs, logger)

	filters := prepareFilters(config)
	if cmd.Flag("include-civilian").Value.String() == "true" {
		ingest.DisableByName(filters, "veteran_keyword", "include-civilian flag set")
	}

	sched := scheduler.New(st, rdb, runner, filters, matcher, config.limit(), 1, logger)

	if cmd.Flag("regenerate").Value.String() == "true" {
		sched.RunCycle(ctx)
		return
	}

	if err := sched.Scrape(ctx); err != nil {
		logger.Fatal("scrape failed", zap.Error(err))
	}
}
