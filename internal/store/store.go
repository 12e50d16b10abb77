package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vetworks/vetmatch/internal/jobs"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the PostgreSQL repository for profiles, the job feed and
// recommendations.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// GetProfile loads one user's matching criteria.
func (s *Store) GetProfile(ctx context.Context, userID string) (*jobs.Profile, error) {
	var p jobs.Profile
	err := s.pool.QueryRow(ctx,
		`SELECT id, skills, locations, job_types, min_salary, clearance_level, service_branch
		 FROM profiles
		 WHERE id = $1`,
		userID,
	).Scan(&p.ID, &p.Skills, &p.Locations, &p.JobTypes, &p.MinSalary, &p.ClearanceLevel, &p.ServiceBranch)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

// ListActiveProfiles returns every profile with matching enabled, for the
// scheduled regeneration cycle.
func (s *Store) ListActiveProfiles(ctx context.Context) ([]*jobs.Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, skills, locations, job_types, min_salary, clearance_level, service_branch
		 FROM profiles
		 WHERE is_active = true`,
	)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*jobs.Profile
	for rows.Next() {
		var p jobs.Profile
		if err := rows.Scan(&p.ID, &p.Skills, &p.Locations, &p.JobTypes,
			&p.MinSalary, &p.ClearanceLevel, &p.ServiceBranch); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, &p)
	}

	return profiles, rows.Err()
}

// ListActiveJobs returns all non-expired postings in the feed.
func (s *Store) ListActiveJobs(ctx context.Context) (*jobs.Jobs, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, company, location, job_type, salary_min, salary_max,
		        description, url, source, veteran_keywords, scraped_at, expires_at
		 FROM job_feed
		 WHERE expires_at > NOW()
		 ORDER BY scraped_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query job feed: %w", err)
	}
	defer rows.Close()

	feed := &jobs.Jobs{}
	for rows.Next() {
		var j jobs.JobPosting
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.JobType,
			&j.SalaryMin, &j.SalaryMax, &j.Description, &j.URL, &j.Source,
			&j.VeteranKeywords, &j.ScrapedAt, &j.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		feed.Items = append(feed.Items, &j)
	}

	return feed, rows.Err()
}

// InsertJobs adds scraped postings to the feed, skipping duplicates by URL.
func (s *Store) InsertJobs(ctx context.Context, feed *jobs.Jobs) (inserted, duplicates int, err error) {
	for _, j := range feed.Items {
		url := j.URL
		if url == "" {
			url = fmt.Sprintf("%s:%s/%s", j.Source, j.Company, j.Title)
		}

		tag, err := s.pool.Exec(ctx,
			`INSERT INTO job_feed (title, company, location, job_type, salary_min, salary_max,
			                       description, url, source, veteran_keywords, scraped_at, expires_at)
			 SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
			 WHERE NOT EXISTS (
			   SELECT 1 FROM job_feed WHERE url = $8
			 )`,
			j.Title, j.Company, j.Location, j.JobType, j.SalaryMin, j.SalaryMax,
			j.Description, url, j.Source, j.VeteranKeywords, j.ScrapedAt, j.ExpiresAt,
		)
		if err != nil {
			return inserted, duplicates, fmt.Errorf("insert posting %q: %w", j.Title, err)
		}

		if tag.RowsAffected() == 0 {
			duplicates++
		} else {
			inserted++
		}
	}

	return inserted, duplicates, nil
}

// SaveRecommendations upserts a generated batch keyed by (user_id, job_id).
// Regeneration supersedes the previous match result for the same pair but
// never resurrects a dismissed recommendation.
func (s *Store) SaveRecommendations(ctx context.Context, recs []*jobs.Recommendation) ([]*jobs.Recommendation, error) {
	saved := make([]*jobs.Recommendation, 0, len(recs))
	for _, rec := range recs {
		breakdown, err := json.Marshal(rec.Breakdown)
		if err != nil {
			return nil, fmt.Errorf("marshal breakdown: %w", err)
		}

		out := *rec
		err = s.pool.QueryRow(ctx,
			`INSERT INTO recommendations (user_id, job_id, score, reasons, skill_matches,
			                              location_match, salary_match, veteran_match,
			                              breakdown, dismissed)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, false)
			 ON CONFLICT (user_id, job_id) DO UPDATE
			 SET score          = EXCLUDED.score,
			     reasons        = EXCLUDED.reasons,
			     skill_matches  = EXCLUDED.skill_matches,
			     location_match = EXCLUDED.location_match,
			     salary_match   = EXCLUDED.salary_match,
			     veteran_match  = EXCLUDED.veteran_match,
			     breakdown      = EXCLUDED.breakdown
			 RETURNING id, dismissed, created_at`,
			rec.UserID, rec.JobID, rec.Score, rec.Reasons, rec.SkillMatches,
			rec.LocationMatch, rec.SalaryMatch, rec.VeteranMatch, string(breakdown),
		).Scan(&out.ID, &out.Dismissed, &out.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("upsert recommendation (%s, %s): %w", rec.UserID, rec.JobID, err)
		}

		saved = append(saved, &out)
	}

	return saved, nil
}

// ListRecommendations returns a user's non-dismissed recommendations, best
// match first.
func (s *Store) ListRecommendations(ctx context.Context, userID string) ([]*jobs.Recommendation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, job_id, score, reasons, skill_matches,
		        location_match, salary_match, veteran_match, breakdown,
		        dismissed, created_at
		 FROM recommendations
		 WHERE user_id = $1 AND dismissed = false
		 ORDER BY score DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	var recs []*jobs.Recommendation
	for rows.Next() {
		var rec jobs.Recommendation
		var breakdown []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.JobID, &rec.Score,
			&rec.Reasons, &rec.SkillMatches, &rec.LocationMatch, &rec.SalaryMatch,
			&rec.VeteranMatch, &breakdown, &rec.Dismissed, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		if err := json.Unmarshal(breakdown, &rec.Breakdown); err != nil {
			return nil, fmt.Errorf("unmarshal breakdown: %w", err)
		}
		recs = append(recs, &rec)
	}

	return recs, rows.Err()
}

// DismissRecommendation flips the dismissed flag. The operation is
// irreversible; dismissing twice is a no-op reported as not found.
func (s *Store) DismissRecommendation(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE recommendations
		 SET dismissed = true
		 WHERE id = $1 AND dismissed = false`,
		id,
	)
	if err != nil {
		return fmt.Errorf("dismiss recommendation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
