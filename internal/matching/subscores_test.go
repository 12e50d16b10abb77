package matching

import (
	"math"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestSkillScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		searchable  string
		skills      []string
		wantScore   float64
		wantMatched []string
	}{
		{
			name:       "no skills yields zero",
			searchable: "python aws docker",
			skills:     nil,
			wantScore:  0,
		},
		{
			name:        "two of two matched without bonus",
			searchable:  "we need python, aws, docker experience",
			skills:      []string{"python", "aws"},
			wantScore:   100,
			wantMatched: []string{"python", "aws"},
		},
		{
			name:        "half matched",
			searchable:  "looking for a golang engineer",
			skills:      []string{"golang", "rust"},
			wantScore:   50,
			wantMatched: []string{"golang"},
		},
		{
			name:        "three matches add bonus capped at 100",
			searchable:  "python aws docker kubernetes",
			skills:      []string{"python", "aws", "docker", "terraform"},
			wantScore:   95, // 3/4*100 + 20
			wantMatched: []string{"python", "aws", "docker"},
		},
		{
			name:       "blank skills are skipped",
			searchable: "python shop",
			skills:     []string{"  ", "java"},
			wantScore:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			score, matched := skillScore(tt.searchable, tt.skills)
			if score != tt.wantScore {
				t.Fatalf("expected score %v, got %v", tt.wantScore, score)
			}
			if len(matched) != len(tt.wantMatched) {
				t.Fatalf("expected matched %v, got %v", tt.wantMatched, matched)
			}
			for i := range matched {
				if matched[i] != tt.wantMatched[i] {
					t.Fatalf("expected matched %v, got %v", tt.wantMatched, matched)
				}
			}
		})
	}
}

func TestSkillScoreMonotonicity(t *testing.T) {
	t.Parallel()

	// Fixed skill-list length, growing number of matches.
	skills := []string{"python", "aws", "docker", "terraform", "kubernetes"}
	texts := []string{
		"",
		"python",
		"python aws",
		"python aws docker",
		"python aws docker terraform",
		"python aws docker terraform kubernetes",
	}

	prev := -1.0
	for _, text := range texts {
		score, _ := skillScore(text, skills)
		if score < prev {
			t.Fatalf("score decreased from %v to %v for text %q", prev, score, text)
		}
		prev = score
	}
}

func TestVeteranScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		keywords   []string
		searchable string
		branch     string
		want       float64
	}{
		{
			name: "no keywords no branch",
			want: 0,
		},
		{
			name:     "generic keyword only",
			keywords: []string{"veteran owned"},
			want:     60, // 40 base + 20 veteran term
		},
		{
			name:     "military and clearance keywords",
			keywords: []string{"military experience", "security clearance"},
			want:     70, // 40 + 15 + 15
		},
		{
			name:     "all keyword tiers capped",
			keywords: []string{"veteran friendly", "ex-military", "clearance"},
			want:     90, // 40 + 20 + 15 + 15
		},
		{
			name:       "branch mention adds ten",
			keywords:   []string{"veteran preferred"},
			searchable: "former army personnel encouraged to apply",
			branch:     "Army",
			want:       70, // 40 + 20 + 10
		},
		{
			name:       "branch alone scores nothing without keywords",
			searchable: "navy base contractor",
			branch:     "Navy",
			want:       10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := veteranScore(tt.keywords, tt.searchable, tt.branch); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLocationScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		location string
		desired  []string
		want     float64
	}{
		{name: "no preference is neutral", location: "Austin, TX", want: 50},
		{name: "unknown location penalised", location: "", desired: []string{"Seattle"}, want: 30},
		{name: "remote overrides preference", location: "Remote (US)", desired: []string{"Seattle"}, want: 90},
		{name: "hybrid overrides preference", location: "Hybrid - Denver", desired: []string{"Seattle"}, want: 90},
		{name: "desired contained in job location", location: "Seattle, WA", desired: []string{"Seattle"}, want: 100},
		{name: "job location contained in desired", location: "Tacoma", desired: []string{"Greater Tacoma Area"}, want: 100},
		{name: "no overlap", location: "Austin, TX", desired: []string{"Seattle"}, want: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := locationScore(tt.location, tt.desired); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSalaryScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		salaryMin *int
		salaryMax *int
		userMin   *int
		want      float64
	}{
		{name: "no user minimum is neutral", salaryMin: intPtr(120000), want: 50},
		{name: "zero minimum treated as unset", salaryMin: intPtr(120000), userMin: intPtr(0), want: 50},
		{name: "no salary data is neutral", userMin: intPtr(80000), want: 50},
		{name: "floor exceeds minimum", salaryMin: intPtr(90000), userMin: intPtr(80000), want: 76.25},
		{name: "floor equals minimum", salaryMin: intPtr(80000), userMin: intPtr(80000), want: 70},
		{name: "bonus capped at thirty", salaryMin: intPtr(400000), userMin: intPtr(80000), want: 100},
		{name: "falls back to max when min absent", salaryMax: intPtr(90000), userMin: intPtr(80000), want: 76.25},
		{name: "shortfall penalised linearly", salaryMin: intPtr(60000), userMin: intPtr(80000), want: 25},
		{name: "penalty floors at zero", salaryMin: intPtr(10000), userMin: intPtr(80000), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := salaryScore(tt.salaryMin, tt.salaryMax, tt.userMin)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestJobTypeScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		jobType string
		desired []string
		want    float64
	}{
		{name: "no preference is neutral", jobType: "full-time", want: 50},
		{name: "unknown type penalised", jobType: "", desired: []string{"full-time"}, want: 40},
		{name: "exact match", jobType: "full-time", desired: []string{"full-time"}, want: 100},
		{name: "bidirectional containment", jobType: "Full-Time Permanent", desired: []string{"full-time"}, want: 100},
		{name: "no match", jobType: "contract", desired: []string{"full-time"}, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := jobTypeScore(tt.jobType, tt.desired); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSubScoresStayInRange(t *testing.T) {
	t.Parallel()

	locations := []string{"", "Remote", "Austin, TX", "Hybrid - NYC"}
	desires := [][]string{nil, {}, {"Seattle"}, {"remote"}, {"Austin"}}
	salaries := []*int{nil, intPtr(0), intPtr(40000), intPtr(90000), intPtr(1000000)}
	mins := []*int{nil, intPtr(80000)}

	for _, loc := range locations {
		for _, want := range desires {
			if got := locationScore(loc, want); got < 0 || got > 100 {
				t.Fatalf("location score out of range: %v (loc=%q desired=%v)", got, loc, want)
			}
			if got := jobTypeScore(loc, want); got < 0 || got > 100 {
				t.Fatalf("job type score out of range: %v", got)
			}
		}
	}

	for _, sMin := range salaries {
		for _, sMax := range salaries {
			for _, uMin := range mins {
				got := salaryScore(sMin, sMax, uMin)
				if got < 0 || got > 100 {
					t.Fatalf("salary score out of range: %v (min=%v max=%v want=%v)", got, sMin, sMax, uMin)
				}
			}
		}
	}
}
