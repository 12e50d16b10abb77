package jobs

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

// JobPosting is a normalised job offer produced by the scraper and stored in
// the job feed. Optional fields stay nil/empty when the source did not
// provide them; the matching core degrades gracefully for all of them.
type JobPosting struct {
	ID              string            `json:"id,omitempty"`
	Title           string            `json:"title"`
	Company         string            `json:"company"`
	Location        string            `json:"location,omitempty"`
	JobType         string            `json:"job_type,omitempty"`
	SalaryMin       *int              `json:"salary_min,omitempty"`
	SalaryMax       *int              `json:"salary_max,omitempty"`
	Description     string            `json:"description,omitempty"`
	URL             string            `json:"url,omitempty"`
	Source          string            `json:"source,omitempty"`
	VeteranKeywords []string          `json:"veteran_keywords,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	ScrapedAt       time.Time         `json:"scraped_at,omitempty"`
	ExpiresAt       time.Time         `json:"expires_at,omitempty"`
}

// SearchableText returns the lowercased title + description used for all
// substring containment checks in the matching core.
func (j *JobPosting) SearchableText() string {
	return strings.ToLower(j.Title + " " + j.Description)
}

// Expired reports whether the posting's expiry date has passed. Postings
// without an expiry date never expire.
func (j *JobPosting) Expired(now time.Time) bool {
	return !j.ExpiresAt.IsZero() && j.ExpiresAt.Before(now)
}

// Jobs is a mutable collection of postings flowing through the ingest
// pipeline and into the matching core.
type Jobs struct {
	Items []*JobPosting
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *JobPosting {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (j *Jobs) FindByURL(url string) *JobPosting {
	for _, job := range j.Items {
		if job.URL == url {
			return job
		}
	}
	return nil
}

// Keep retains only postings for which the predicate returns true and
// returns the titles of the dropped ones. Relative order is preserved.
func (j *Jobs) Keep(pred func(*JobPosting) bool) []string {
	kept := make([]*JobPosting, 0, len(j.Items))
	var dropped []string
	for _, job := range j.Items {
		if pred(job) {
			kept = append(kept, job)
			continue
		}
		dropped = append(dropped, job.Title)
	}
	j.Items = kept
	return dropped
}

func (j *Jobs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "job_feed_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(j); err != nil {
		return "", err
	}
	return file.Name(), nil
}
