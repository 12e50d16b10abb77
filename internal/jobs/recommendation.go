package jobs

import (
	"fmt"
	"time"
)

// CategoryPoints reports a single scoring dimension: the weighted points a
// posting earned out of the dimension's maximum, next to the raw unweighted
// sub-score in [0,100].
type CategoryPoints struct {
	Earned   int     `json:"earned"`
	Possible int     `json:"possible"`
	Raw      float64 `json:"raw"`
}

func (c CategoryPoints) String() string {
	return fmt.Sprintf("%d/%d", c.Earned, c.Possible)
}

// Breakdown exposes the weighted contribution of every dimension so a match
// score can be explained and debugged.
type Breakdown struct {
	Skills   CategoryPoints `json:"skills"`
	Veteran  CategoryPoints `json:"veteran"`
	Location CategoryPoints `json:"location"`
	Salary   CategoryPoints `json:"salary"`
	JobType  CategoryPoints `json:"job_type"`
}

// MatchResult is the outcome of scoring one posting against one profile.
// It is ephemeral: it lives inside a Recommendation and is never persisted
// on its own.
type MatchResult struct {
	Score         int       `json:"score"`
	Reasons       []string  `json:"reasons"`
	SkillMatches  []string  `json:"skill_matches,omitempty"`
	LocationMatch bool      `json:"location_match"`
	SalaryMatch   bool      `json:"salary_match"`
	VeteranMatch  bool      `json:"veteran_match"`
	Breakdown     Breakdown `json:"breakdown"`
}

// Recommendation pairs a user with a posting and the match result that
// justified surfacing it. ID and CreatedAt are assigned by the store on
// insert; Dismissed starts false and flips true at most once.
type Recommendation struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"user_id"`
	JobID       string    `json:"job_id"`
	MatchResult           // embedded score, reasons and breakdown
	Dismissed   bool      `json:"dismissed"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
