package ingest

import (
	"context"
	"strings"

	"github.com/vetworks/vetmatch/internal/jobs"
)

type redFlagFilter struct {
	terms []string
}

// NewRedFlag creates a filter that drops postings mentioning any of the
// configured exclusion terms in title, company or description.
func NewRedFlag(terms []string) Filter {
	return &redFlagFilter{terms: terms}
}

func (f *redFlagFilter) Name() string { return "red_flag" }

func (f *redFlagFilter) Disable(string) {}

func (f *redFlagFilter) IsEnabled() bool { return true }

func (f *redFlagFilter) Apply(_ context.Context, feed *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := feed.Len()
	if len(f.terms) == 0 {
		return feed, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	dropped := feed.Keep(func(j *jobs.JobPosting) bool {
		return !containsRedFlag(j, f.terms)
	})

	return feed, Step{Initial: initial, Dropped: len(dropped), Left: feed.Len()}, nil
}

func containsRedFlag(j *jobs.JobPosting, terms []string) bool {
	combined := strings.ToLower(j.Title + " " + j.Company + " " + j.Description)
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
