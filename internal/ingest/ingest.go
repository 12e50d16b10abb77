// Package ingest filters freshly scraped postings before they reach the job
// feed. Filters run sequentially; each one reports how many postings it
// dropped so a full ingest cycle can be audited from the logs.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vetworks/vetmatch/internal/jobs"
)

// Filter represents a single filtering step applied to scraped postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, feed *jobs.Jobs) (*jobs.Jobs, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// DisableByName marks a filter with the provided name as disabled while
// keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the surviving
// postings.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, feed *jobs.Jobs) (*jobs.Jobs, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			if logger != nil {
				logger.Info("ingest filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, feed)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if logger != nil {
			logger.Info("ingest filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		feed = next
	}

	return feed, nil
}
