package matching

import (
	"strings"
	"testing"

	"github.com/vetworks/vetmatch/internal/jobs"
)

func TestScoreJobWeightedComposition(t *testing.T) {
	t.Parallel()

	m := New(DefaultWeights())

	job := &jobs.JobPosting{
		ID:          "j1",
		Title:       "Cloud Engineer",
		Description: "Python, AWS, Docker environment. Veteran friendly employer.",
		Location:    "Seattle, WA",
		JobType:     "full-time",
		SalaryMin:   intPtr(90000),
		VeteranKeywords: []string{
			"veteran friendly",
		},
	}
	profile := &jobs.Profile{
		ID:        "u1",
		Skills:    []string{"python", "aws"},
		Locations: []string{"Seattle"},
		JobTypes:  []string{"full-time"},
		MinSalary: intPtr(80000),
	}

	result := m.ScoreJob(job, profile)

	// skills 100 -> 35, veteran 60 -> 15, location 100 -> 15,
	// salary 76.25 -> 11.4375, job type 100 -> 10. Sum 86.4375 -> 86.
	if result.Score != 86 {
		t.Fatalf("expected composite score 86, got %d", result.Score)
	}

	if len(result.SkillMatches) != 2 {
		t.Fatalf("expected 2 skill matches, got %v", result.SkillMatches)
	}
	if !result.LocationMatch || !result.SalaryMatch {
		t.Fatalf("expected location and salary matches, got %+v", result)
	}
	if result.VeteranMatch {
		t.Fatalf("veteran sub-score 60 must not set the veteran match flag")
	}

	if result.Breakdown.Skills.String() != "35/35" {
		t.Fatalf("unexpected skills breakdown: %s", result.Breakdown.Skills)
	}
	if result.Breakdown.Skills.Raw != 100 {
		t.Fatalf("expected raw skills sub-score 100, got %v", result.Breakdown.Skills.Raw)
	}
	if result.Breakdown.Veteran.String() != "15/25" {
		t.Fatalf("unexpected veteran breakdown: %s", result.Breakdown.Veteran)
	}
}

func TestScoreJobReasonsOrder(t *testing.T) {
	t.Parallel()

	m := New(DefaultWeights())

	job := &jobs.JobPosting{
		Title:           "Security Analyst",
		Description:     "python and aws work. Top Secret clearance required. Veteran preferred, military background valued.",
		Location:        "Remote",
		JobType:         "full-time",
		SalaryMin:       intPtr(120000),
		VeteranKeywords: []string{"veteran preferred", "military background", "clearance"},
	}
	profile := &jobs.Profile{
		Skills:         []string{"python", "aws"},
		Locations:      []string{"Denver"},
		JobTypes:       []string{"full-time"},
		MinSalary:      intPtr(90000),
		ClearanceLevel: "TS/SCI",
	}

	result := m.ScoreJob(job, profile)

	if len(result.Reasons) != 6 {
		t.Fatalf("expected 6 reasons, got %d: %v", len(result.Reasons), result.Reasons)
	}

	order := []string{"skills", "veteran", "Location", "Salary", "Employment type", "clearance"}
	for i, marker := range order {
		if !strings.Contains(result.Reasons[i], marker) {
			t.Fatalf("reason %d should mention %q, got %q", i, marker, result.Reasons[i])
		}
	}
}

func TestScoreJobClearanceBonus(t *testing.T) {
	t.Parallel()

	m := New(DefaultWeights())

	job := &jobs.JobPosting{
		Title:       "Systems Administrator",
		Description: "active secret clearance required",
	}

	base := m.ScoreJob(job, &jobs.Profile{})
	cleared := m.ScoreJob(job, &jobs.Profile{ClearanceLevel: "Secret"})

	if cleared.Score != base.Score+clearanceBonus {
		t.Fatalf("expected clearance bonus of %d, got base=%d cleared=%d",
			clearanceBonus, base.Score, cleared.Score)
	}

	// No bonus when the posting never mentions a clearance.
	plain := &jobs.JobPosting{Title: "Warehouse Associate"}
	without := m.ScoreJob(plain, &jobs.Profile{ClearanceLevel: "Secret"})
	with := m.ScoreJob(plain, &jobs.Profile{})
	if without.Score != with.Score {
		t.Fatalf("bonus applied without clearance terms: %d vs %d", without.Score, with.Score)
	}
}

func TestScoreJobNeutralDefaults(t *testing.T) {
	t.Parallel()

	m := New(DefaultWeights())

	// Empty preferences: location, salary and job type all neutral at 50.
	result := m.ScoreJob(&jobs.JobPosting{
		Title:     "Forklift Operator",
		Location:  "Reno, NV",
		JobType:   "part-time",
		SalaryMin: intPtr(40000),
	}, &jobs.Profile{})

	for name, cat := range map[string]jobs.CategoryPoints{
		"location": result.Breakdown.Location,
		"salary":   result.Breakdown.Salary,
		"job type": result.Breakdown.JobType,
	} {
		if cat.Raw != 50 {
			t.Fatalf("expected neutral %s sub-score 50, got %v", name, cat.Raw)
		}
	}

	// 50/100*15 + 50/100*15 + 50/100*10 = 20
	if result.Score != 20 {
		t.Fatalf("expected neutral composite 20, got %d", result.Score)
	}
	if len(result.Reasons) != 0 {
		t.Fatalf("neutral result should carry no reasons, got %v", result.Reasons)
	}
}

func TestScoreJobRangeUnderDegenerateInputs(t *testing.T) {
	t.Parallel()

	m := New(DefaultWeights())

	postings := []*jobs.JobPosting{
		{},
		{Title: "x", VeteranKeywords: []string{"veteran", "military", "clearance"}},
		{Location: "Remote", SalaryMax: intPtr(1000000), Description: "top secret clearance python aws docker go"},
	}
	profiles := []*jobs.Profile{
		{},
		{Skills: []string{"python", "aws", "docker", "go"}, MinSalary: intPtr(1), ClearanceLevel: "TS", Locations: []string{"anywhere"}, JobTypes: []string{"full-time"}},
	}

	for _, job := range postings {
		for _, profile := range profiles {
			result := m.ScoreJob(job, profile)
			if result.Score < 0 || result.Score > 100 {
				t.Fatalf("composite score out of range: %d (job=%+v profile=%+v)", result.Score, job, profile)
			}
		}
	}
}

func TestScoreJobNoVeteranSignal(t *testing.T) {
	t.Parallel()

	m := New(DefaultWeights())

	result := m.ScoreJob(&jobs.JobPosting{
		Title:       "Barista",
		Description: "espresso experience required",
	}, &jobs.Profile{ServiceBranch: "Army"})

	if result.Breakdown.Veteran.Raw != 0 {
		t.Fatalf("expected veteran sub-score 0, got %v", result.Breakdown.Veteran.Raw)
	}
	if result.VeteranMatch {
		t.Fatalf("veteran match flag should be false")
	}
	for _, reason := range result.Reasons {
		if strings.Contains(reason, "veteran") {
			t.Fatalf("unexpected veteran reason: %q", reason)
		}
	}
}
