package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/vetworks/vetmatch/internal/jobs"
)

const (
	// Sub-score levels above which a dimension counts as matched for the
	// derived booleans and the attached reasons.
	matchedLevel = 50
	// Veteran affinity needs a stronger signal than a bare keyword hit.
	veteranMatchedLevel = 60

	clearanceBonus = 10
)

// clearanceTerms mark postings that require or mention a security clearance.
// The bonus fires on any of them as long as the profile states a clearance
// level; it does not compare levels.
var clearanceTerms = []string{"secret", "top secret", "clearance", "confidential"}

// Matcher scores job postings against a user profile. It is stateless apart
// from its weights and safe for concurrent use.
type Matcher struct {
	weights Weights
}

func New(weights Weights) *Matcher {
	return &Matcher{weights: weights}
}

func (m *Matcher) Weights() Weights {
	return m.weights
}

// ScoreJob computes the composite 0-100 match score for one posting and one
// profile, with reasons, matched-skill evidence and a per-dimension
// breakdown. It never fails: missing fields degrade to the documented
// neutral or penalty sub-scores.
func (m *Matcher) ScoreJob(job *jobs.JobPosting, profile *jobs.Profile) *jobs.MatchResult {
	searchable := job.SearchableText()

	skills, skillMatches := skillScore(searchable, profile.Skills)
	veteran := veteranScore(job.VeteranKeywords, searchable, profile.ServiceBranch)
	location := locationScore(job.Location, profile.Locations)
	salary := salaryScore(job.SalaryMin, job.SalaryMax, profile.MinSalary)
	jobType := jobTypeScore(job.JobType, profile.JobTypes)

	weighted := skills/100*float64(m.weights.Skills) +
		veteran/100*float64(m.weights.Veteran) +
		location/100*float64(m.weights.Location) +
		salary/100*float64(m.weights.Salary) +
		jobType/100*float64(m.weights.JobType)

	score := int(math.Round(weighted))

	result := &jobs.MatchResult{
		SkillMatches:  skillMatches,
		LocationMatch: location > matchedLevel,
		SalaryMatch:   salary > matchedLevel,
		VeteranMatch:  veteran > veteranMatchedLevel,
		Breakdown: jobs.Breakdown{
			Skills:   categoryPoints(skills, m.weights.Skills),
			Veteran:  categoryPoints(veteran, m.weights.Veteran),
			Location: categoryPoints(location, m.weights.Location),
			Salary:   categoryPoints(salary, m.weights.Salary),
			JobType:  categoryPoints(jobType, m.weights.JobType),
		},
	}

	if len(skillMatches) > 0 {
		result.Reasons = append(result.Reasons, fmt.Sprintf(
			"Matches %d of your %d skills: %s",
			len(skillMatches), len(profile.Skills), strings.Join(skillMatches, ", "),
		))
	}
	if result.VeteranMatch {
		result.Reasons = append(result.Reasons, "Strong veteran-friendly signals in this posting")
	}
	if result.LocationMatch {
		result.Reasons = append(result.Reasons, "Location fits your preferences")
	}
	if result.SalaryMatch {
		result.Reasons = append(result.Reasons, "Salary meets your stated minimum")
	}
	if jobType > matchedLevel {
		result.Reasons = append(result.Reasons, "Employment type matches what you are looking for")
	}

	if profile.ClearanceLevel != "" && containsAny(searchable, clearanceTerms) {
		score += clearanceBonus
		result.Reasons = append(result.Reasons, "Your security clearance is valuable for this role")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	result.Score = score

	return result
}

func categoryPoints(raw float64, weight int) jobs.CategoryPoints {
	return jobs.CategoryPoints{
		Earned:   int(math.Round(raw / 100 * float64(weight))),
		Possible: weight,
		Raw:      raw,
	}
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
