package scraper

import (
	"strings"
	"testing"
	"time"
)

var decodeNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestDecodeFeed(t *testing.T) {
	t.Parallel()

	payload := `[
	  {
	    "title": "Field Service Technician",
	    "company": "Acme Defense",
	    "location": "Norfolk, VA",
	    "job_type": "full-time",
	    "salary_min": 55000.0,
	    "salary_max": 70000.5,
	    "description": "Veteran preferred. Maintain field equipment.",
	    "url": "https://jobs.example/1",
	    "source": "indeed",
	    "veteran_keywords": ["veteran preferred"],
	    "scraped_date": "2025-05-30T08:15:00.123456",
	    "expires_on": "2025-06-29T08:15:00.123456",
	    "metadata": {"date_posted": "2025-05-29", "benefits": null}
	  },
	  {
	    "title": "Security Analyst",
	    "company": "Beta Corp",
	    "url": "https://jobs.example/2",
	    "description": "Requires active security clearance."
	  }
	]`

	feed, err := DecodeFeed([]byte(payload), decodeNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feed.Len() != 2 {
		t.Fatalf("expected 2 postings, got %d", feed.Len())
	}

	first := feed.Items[0]
	if first.Title != "Field Service Technician" || first.Company != "Acme Defense" {
		t.Fatalf("unexpected posting: %+v", first)
	}
	if first.SalaryMin == nil || *first.SalaryMin != 55000 {
		t.Fatalf("expected salary min 55000, got %v", first.SalaryMin)
	}
	if first.SalaryMax == nil || *first.SalaryMax != 70001 {
		t.Fatalf("expected salary max rounded to 70001, got %v", first.SalaryMax)
	}
	if len(first.VeteranKeywords) != 1 || first.VeteranKeywords[0] != "veteran preferred" {
		t.Fatalf("pre-tagged keywords must be preserved, got %v", first.VeteranKeywords)
	}
	if first.ScrapedAt.IsZero() || first.ScrapedAt.Day() != 30 {
		t.Fatalf("scraped date not parsed: %v", first.ScrapedAt)
	}
	if first.Metadata["date_posted"] != "2025-05-29" {
		t.Fatalf("metadata not carried: %v", first.Metadata)
	}
	if _, ok := first.Metadata["benefits"]; ok {
		t.Fatalf("null metadata values must be dropped: %v", first.Metadata)
	}

	second := feed.Items[1]
	if len(second.VeteranKeywords) == 0 {
		t.Fatalf("untagged record should get extracted keywords, got none")
	}
	if !second.ScrapedAt.Equal(decodeNow) {
		t.Fatalf("missing scraped date should default to now, got %v", second.ScrapedAt)
	}
	if want := decodeNow.Add(defaultTTL); !second.ExpiresAt.Equal(want) {
		t.Fatalf("missing expiry should default to now+TTL, got %v", second.ExpiresAt)
	}
}

func TestDecodeFeedTruncatesDescription(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", descriptionLimit+200)
	payload := `[{"title": "Long", "url": "https://jobs.example/long", "description": "` + long + `"}]`

	feed, err := DecodeFeed([]byte(payload), decodeNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len([]rune(feed.Items[0].Description)); got != descriptionLimit {
		t.Fatalf("expected description truncated to %d runes, got %d", descriptionLimit, got)
	}
}

func TestDecodeFeedSkipsEmptyRecords(t *testing.T) {
	t.Parallel()

	payload := `[{"company": "Ghost Inc"}, {"title": "Real", "url": "https://jobs.example/3"}]`

	feed, err := DecodeFeed([]byte(payload), decodeNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feed.Len() != 1 || feed.Items[0].Title != "Real" {
		t.Fatalf("expected only the real record, got %+v", feed.Items)
	}
}

func TestDecodeFeedDropsDuplicateURLs(t *testing.T) {
	t.Parallel()

	payload := `[
	  {"title": "Logistics Coordinator", "url": "https://jobs.example/dup", "source": "indeed"},
	  {"title": "Logistics Coordinator (repost)", "url": "https://jobs.example/dup", "source": "linkedin"},
	  {"title": "Dispatcher", "url": "https://jobs.example/other"}
	]`

	feed, err := DecodeFeed([]byte(payload), decodeNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feed.Len() != 2 {
		t.Fatalf("expected duplicate url to be dropped, got %d postings", feed.Len())
	}
	if feed.Items[0].Title != "Logistics Coordinator" {
		t.Fatalf("first occurrence must win, got %q", feed.Items[0].Title)
	}
}

func TestDecodeFeedRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	if _, err := DecodeFeed([]byte(`{"not": "an array"}`), decodeNow); err == nil {
		t.Fatalf("expected error for non-array payload")
	}
}
