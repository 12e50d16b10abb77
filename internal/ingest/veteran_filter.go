package ingest

import (
	"context"

	"github.com/vetworks/vetmatch/internal/jobs"
)

type veteranKeywordFilter struct {
	disabled bool
	reason   string
}

// NewVeteranKeyword creates a filter that drops postings without a single
// veteran keyword. The feed only carries veteran-relevant offers.
func NewVeteranKeyword() Filter {
	return &veteranKeywordFilter{}
}

func (f *veteranKeywordFilter) Name() string { return "veteran_keyword" }

func (f *veteranKeywordFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *veteranKeywordFilter) IsEnabled() bool { return !f.disabled }

func (f *veteranKeywordFilter) Apply(_ context.Context, feed *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := feed.Len()
	dropped := feed.Keep(func(j *jobs.JobPosting) bool {
		return len(j.VeteranKeywords) > 0
	})

	return feed, Step{Initial: initial, Dropped: len(dropped), Left: feed.Len()}, nil
}
