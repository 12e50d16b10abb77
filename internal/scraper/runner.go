package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/vetworks/vetmatch/internal/jobs"
	"github.com/vetworks/vetmatch/internal/utils"
)

const (
	// Descriptions are truncated at ingest to keep feed rows bounded.
	descriptionLimit = 1000
	// Postings without an explicit expiry live for 30 days after scraping.
	defaultTTL = 30 * 24 * time.Hour

	defaultMaxJobs = 50
	defaultTimeout = 10 * time.Minute

	rawOutputLogLimit = 500
)

// Runner executes the scraper subprocess and decodes the JSON array it
// prints to stdout. The subprocess owns site selection, rate limiting and
// retries; the runner only consumes its output.
type Runner struct {
	Command string
	Args    []string
	MaxJobs int
	Timeout time.Duration

	logger *zap.Logger
}

func NewRunner(command string, args []string, maxJobs int, logger *zap.Logger) *Runner {
	if maxJobs <= 0 {
		maxJobs = defaultMaxJobs
	}
	return &Runner{
		Command: command,
		Args:    args,
		MaxJobs: maxJobs,
		Timeout: defaultTimeout,
		logger:  logger,
	}
}

// Run launches the subprocess and returns the scraped postings. Stderr is
// logged but non-fatal; the subprocess signals failure via its exit code.
func (r *Runner) Run(ctx context.Context) (*jobs.Jobs, error) {
	if r.Command == "" {
		return nil, fmt.Errorf("scraper command is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	args := append(append([]string{}, r.Args...), "--max-jobs", strconv.Itoa(r.MaxJobs))
	cmd := exec.CommandContext(ctx, r.Command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Info("running scraper subprocess",
		zap.String("command", r.Command),
		zap.Strings("args", args),
	)

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("scraper subprocess: %w (stderr: %s)", err, stderr.String())
	}

	if stderr.Len() > 0 {
		r.logger.Debug("scraper subprocess stderr", zap.String("stderr", stderr.String()))
	}

	feed, err := DecodeFeed(stdout.Bytes(), time.Now().UTC())
	if err != nil {
		r.logger.Debug("undecodable scraper output",
			zap.String("stdout", utils.TruncateForLog(stdout.String(), rawOutputLogLimit)),
		)
		return nil, err
	}

	r.logger.Info("scraper subprocess finished", zap.Int("postings", feed.Len()))
	return feed, nil
}

// rawRecord mirrors one element of the subprocess JSON output.
type rawRecord struct {
	Title           string         `json:"title"`
	Company         string         `json:"company"`
	Location        string         `json:"location"`
	JobType         string         `json:"job_type"`
	SalaryMin       *float64       `json:"salary_min"`
	SalaryMax       *float64       `json:"salary_max"`
	Description     string         `json:"description"`
	URL             string         `json:"url"`
	Source          string         `json:"source"`
	VeteranKeywords []string       `json:"veteran_keywords"`
	ScrapedDate     string         `json:"scraped_date"`
	ExpiresOn       string         `json:"expires_on"`
	Metadata        map[string]any `json:"metadata"`
}

// DecodeFeed parses the subprocess JSON output into postings, normalising
// optional fields: descriptions are truncated, missing veteran keywords are
// extracted from the text, and missing timestamps default to now / now+TTL.
func DecodeFeed(data []byte, now time.Time) (*jobs.Jobs, error) {
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing scraper output: %w", err)
	}

	feed := &jobs.Jobs{}
	for _, item := range items {
		var record rawRecord
		cfg := &mapstructure.DecoderConfig{
			Result:           &record,
			TagName:          "json",
			WeaklyTypedInput: true,
		}
		decoder, _ := mapstructure.NewDecoder(cfg)
		if err := decoder.Decode(item); err != nil {
			return nil, fmt.Errorf("decoding scraper record: %w", err)
		}

		if record.Title == "" && record.URL == "" {
			continue
		}

		// Scrapers covering overlapping boards can emit the same posting twice.
		if record.URL != "" && feed.FindByURL(record.URL) != nil {
			continue
		}

		feed.Items = append(feed.Items, record.toPosting(now))
	}

	return feed, nil
}

func (r *rawRecord) toPosting(now time.Time) *jobs.JobPosting {
	scrapedAt := parseTime(r.ScrapedDate)
	if scrapedAt.IsZero() {
		scrapedAt = now
	}
	expiresAt := parseTime(r.ExpiresOn)
	if expiresAt.IsZero() {
		expiresAt = scrapedAt.Add(defaultTTL)
	}

	keywords := r.VeteranKeywords
	if len(keywords) == 0 {
		keywords = ExtractVeteranKeywords(r.Title, r.Description)
	}

	metadata := make(map[string]string, len(r.Metadata))
	for k, v := range r.Metadata {
		if v == nil {
			continue
		}
		metadata[k] = fmt.Sprintf("%v", v)
	}
	if len(metadata) == 0 {
		metadata = nil
	}

	return &jobs.JobPosting{
		Title:           r.Title,
		Company:         r.Company,
		Location:        r.Location,
		JobType:         r.JobType,
		SalaryMin:       toIntPtr(r.SalaryMin),
		SalaryMax:       toIntPtr(r.SalaryMax),
		Description:     truncate(r.Description, descriptionLimit),
		URL:             r.URL,
		Source:          r.Source,
		VeteranKeywords: keywords,
		Metadata:        metadata,
		ScrapedAt:       scrapedAt,
		ExpiresAt:       expiresAt,
	}
}

// parseTime accepts RFC3339 and the zone-less isoformat the scraper emits.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func toIntPtr(v *float64) *int {
	if v == nil {
		return nil
	}
	i := int(math.Round(*v))
	return &i
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
