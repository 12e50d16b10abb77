// Package scheduler wires up the cron job that periodically scrapes the job
// boards and regenerates recommendations for every active profile.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vetworks/vetmatch/internal/ingest"
	"github.com/vetworks/vetmatch/internal/matching"
	"github.com/vetworks/vetmatch/internal/scraper"
	"github.com/vetworks/vetmatch/internal/store"
	"github.com/vetworks/vetmatch/internal/utils"
)

// startupDelay gives the rest of the process time to come up before the
// first scrape cycle hits the database.
const startupDelay = 5 * time.Second

// Scheduler wraps robfig/cron and manages the scrape-and-match loop.
type Scheduler struct {
	cron    *cron.Cron
	store   *store.Store
	rdb     *redis.Client
	runner  *scraper.Runner
	filters []ingest.Filter
	matcher *matching.Matcher
	limit   int
	logger  *zap.Logger
	spec    string
}

// New creates a Scheduler that fires every intervalHours hours.
func New(st *store.Store, rdb *redis.Client, runner *scraper.Runner, filters []ingest.Filter,
	matcher *matching.Matcher, limit, intervalHours int, logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		store:   st,
		rdb:     rdb,
		runner:  runner,
		filters: filters,
		matcher: matcher,
		limit:   limit,
		logger:  logger,
		spec:    fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. One cycle also runs
// immediately so the feed is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	go func() {
		if err := utils.WaitFor(ctx, startupDelay); err != nil {
			return
		}
		s.RunCycle(ctx)
	}()

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

// RunCycle executes one full scrape-and-match cycle: run the scraper, filter
// and ingest its output, then regenerate recommendations for every active
// profile against the refreshed feed.
func (s *Scheduler) RunCycle(ctx context.Context) {
	s.logger.Info("scrape cycle started")

	if err := s.Scrape(ctx); err != nil {
		s.logger.Error("scrape failed", zap.Error(err))
		// The feed may be stale but regeneration is still worthwhile.
	}

	if err := s.regenerate(ctx); err != nil {
		s.logger.Error("regeneration failed", zap.Error(err))
		return
	}

	s.logger.Info("scrape cycle complete")
}

// Scrape runs the scraper subprocess once and ingests the surviving
// postings into the feed.
func (s *Scheduler) Scrape(ctx context.Context) error {
	feed, err := s.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("running scraper: %w", err)
	}

	feed, err = ingest.Run(ctx, s.logger, s.filters, feed)
	if err != nil {
		return fmt.Errorf("filtering scraped postings: %w", err)
	}

	inserted, duplicates, err := s.store.InsertJobs(ctx, feed)
	if err != nil {
		return fmt.Errorf("inserting postings: %w", err)
	}

	s.logger.Info("feed updated",
		zap.Int("inserted", inserted),
		zap.Int("duplicates", duplicates),
	)
	return nil
}

func (s *Scheduler) regenerate(ctx context.Context) error {
	profiles, err := s.store.ListActiveProfiles(ctx)
	if err != nil {
		return fmt.Errorf("listing profiles: %w", err)
	}
	if len(profiles) == 0 {
		s.logger.Info("no active profiles, skipping regeneration")
		return nil
	}

	feed, err := s.store.ListActiveJobs(ctx)
	if err != nil {
		return fmt.Errorf("loading job feed: %w", err)
	}

	for _, profile := range profiles {
		recs := s.matcher.Generate(profile, feed, s.limit)
		saved, err := s.store.SaveRecommendations(ctx, recs)
		if err != nil {
			s.logger.Error("saving recommendations",
				zap.String("user_id", profile.ID),
				zap.Error(err),
			)
			continue
		}

		s.logger.Info("recommendations regenerated",
			zap.String("user_id", profile.ID),
			zap.Int("count", len(saved)),
		)

		s.publish(ctx, profile.ID, len(saved))
	}

	return nil
}

func (s *Scheduler) publish(ctx context.Context, userID string, count int) {
	if s.rdb == nil {
		return
	}
	event := fmt.Sprintf(`{"userId":%q,"count":%d}`, userID, count)
	if err := s.rdb.Publish(ctx, "EVENT_RECOMMENDATIONS_GENERATED", event).Err(); err != nil {
		s.logger.Warn("publish event failed", zap.Error(err))
	}
}
