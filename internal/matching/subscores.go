package matching

import (
	"math"
	"strings"
)

// Sub-score calculators. Each one is a pure function returning a value in
// [0,100]. Missing optional fields degrade to a neutral or documented
// penalty score, never an error.

const (
	neutralScore = 50

	// Penalty for a posting without a location. Location is often simply
	// not published, so the penalty is mild.
	unknownLocationScore = 30
	// Remote and hybrid postings satisfy most location constraints, so
	// they are rewarded regardless of the stated preference list.
	remoteLocationScore = 90
	matchedLocationScore = 100
	missedLocationScore  = 20

	// Employment type is knowable, so its absence is penalised slightly
	// harder than neutral but softer than an unknown location miss.
	unknownJobTypeScore = 40
	matchedJobTypeScore = 100
	missedJobTypeScore  = 25

	skillBonusThreshold = 3
	skillBonus          = 20
)

// skillScore reports how many of the user's skills appear in the posting's
// searchable text. Matched skills are returned in the order they appear in
// the profile's skill list.
func skillScore(searchable string, skills []string) (float64, []string) {
	if len(skills) == 0 {
		return 0, nil
	}

	var matched []string
	for _, skill := range skills {
		s := strings.ToLower(strings.TrimSpace(skill))
		if s == "" {
			continue
		}
		if strings.Contains(searchable, s) {
			matched = append(matched, skill)
		}
	}

	score := float64(len(matched)) / float64(len(skills)) * 100
	if len(matched) >= skillBonusThreshold {
		score += skillBonus
	}
	return math.Min(score, 100), matched
}

// veteranScore grades a posting's veteran affinity from its pre-extracted
// keywords and searchable text. The profile's service branch adds a small
// boost when it is mentioned in the posting.
func veteranScore(keywords []string, searchable, serviceBranch string) float64 {
	var score float64

	if len(keywords) > 0 {
		score += 40
		if keywordsContain(keywords, "veteran") {
			score += 20
		}
		if keywordsContain(keywords, "military") {
			score += 15
		}
		if keywordsContain(keywords, "clearance") {
			score += 15
		}
	}

	branch := strings.ToLower(strings.TrimSpace(serviceBranch))
	if branch != "" && strings.Contains(searchable, branch) {
		score += 10
	}

	return math.Min(score, 100)
}

func keywordsContain(keywords []string, term string) bool {
	for _, kw := range keywords {
		if strings.Contains(strings.ToLower(kw), term) {
			return true
		}
	}
	return false
}

// locationScore compares the posting's location with the user's desired
// locations using bidirectional substring containment.
func locationScore(jobLocation string, desired []string) float64 {
	if len(desired) == 0 {
		return neutralScore
	}

	loc := strings.ToLower(strings.TrimSpace(jobLocation))
	if loc == "" {
		return unknownLocationScore
	}

	if strings.Contains(loc, "remote") || strings.Contains(loc, "hybrid") {
		return remoteLocationScore
	}

	for _, want := range desired {
		w := strings.ToLower(strings.TrimSpace(want))
		if w == "" {
			continue
		}
		if strings.Contains(loc, w) || strings.Contains(w, loc) {
			return matchedLocationScore
		}
	}

	return missedLocationScore
}

// salaryScore compares the posting's effective salary floor against the
// user's minimum. Exceeding the minimum earns up to 30 bonus points with
// diminishing returns; a shortfall is penalised linearly down to 0 once the
// gap equals the minimum itself.
func salaryScore(salaryMin, salaryMax, userMin *int) float64 {
	if userMin == nil || *userMin <= 0 {
		return neutralScore
	}
	if salaryMin == nil && salaryMax == nil {
		return neutralScore
	}

	floor := 0
	switch {
	case salaryMin != nil:
		floor = *salaryMin
	case salaryMax != nil:
		floor = *salaryMax
	}

	want := float64(*userMin)
	if float64(floor) >= want {
		excess := float64(floor) - want
		bonus := math.Min(30, excess/want*100/2)
		return 70 + bonus
	}

	shortfall := want - float64(floor)
	return math.Max(0, 50-shortfall/want*100)
}

// jobTypeScore compares the posting's employment type with the user's
// desired types using bidirectional substring containment.
func jobTypeScore(jobType string, desired []string) float64 {
	if len(desired) == 0 {
		return neutralScore
	}

	jt := strings.ToLower(strings.TrimSpace(jobType))
	if jt == "" {
		return unknownJobTypeScore
	}

	for _, want := range desired {
		w := strings.ToLower(strings.TrimSpace(want))
		if w == "" {
			continue
		}
		if strings.Contains(jt, w) || strings.Contains(w, jt) {
			return matchedJobTypeScore
		}
	}

	return missedJobTypeScore
}
