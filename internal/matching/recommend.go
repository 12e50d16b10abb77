package matching

import (
	"sort"
	"sync"

	"github.com/vetworks/vetmatch/internal/jobs"
)

const (
	// Postings scoring below this are too weak a match to surface.
	ScoreThreshold = 40
	// DefaultLimit caps a recommendation batch when the caller passes no
	// explicit limit.
	DefaultLimit = 20

	generateWorkers = 8
)

// Generate scores every posting in the feed against the profile, drops
// sub-threshold matches, and returns up to limit recommendations ordered by
// score descending. Ties keep the feed order. Postings are scored on a small
// worker pool; each evaluation is independent, so only the final sort is
// sequential.
func (m *Matcher) Generate(profile *jobs.Profile, feed *jobs.Jobs, limit int) []*jobs.Recommendation {
	if limit <= 0 {
		limit = DefaultLimit
	}

	results := make([]*jobs.MatchResult, len(feed.Items))

	var wg sync.WaitGroup
	sem := make(chan struct{}, generateWorkers)
	for i, job := range feed.Items {
		wg.Add(1)
		go func(i int, job *jobs.JobPosting) {
			defer wg.Done()
			sem <- struct{}{}
			results[i] = m.ScoreJob(job, profile)
			<-sem
		}(i, job)
	}
	wg.Wait()

	recs := make([]*jobs.Recommendation, 0, len(results))
	for i, result := range results {
		if result.Score < ScoreThreshold {
			continue
		}
		recs = append(recs, &jobs.Recommendation{
			UserID:      profile.ID,
			JobID:       feed.Items[i].ID,
			MatchResult: *result,
		})
	}

	sort.SliceStable(recs, func(a, b int) bool {
		return recs[a].Score > recs[b].Score
	})

	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
