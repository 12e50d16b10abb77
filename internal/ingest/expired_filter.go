package ingest

import (
	"context"
	"time"

	"github.com/vetworks/vetmatch/internal/jobs"
)

type expiredFilter struct {
	now func() time.Time
}

// NewExpired creates a filter that drops postings whose expiry date has
// already passed at ingest time.
func NewExpired() Filter {
	return &expiredFilter{now: time.Now}
}

func (f *expiredFilter) Name() string { return "expired" }

func (f *expiredFilter) Disable(string) {}

func (f *expiredFilter) IsEnabled() bool { return true }

func (f *expiredFilter) Apply(_ context.Context, feed *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := feed.Len()
	now := f.now().UTC()
	dropped := feed.Keep(func(j *jobs.JobPosting) bool {
		return !j.Expired(now)
	})

	return feed, Step{Initial: initial, Dropped: len(dropped), Left: feed.Len()}, nil
}
