// Package scraper runs the external job-acquisition subprocess and turns its
// JSON output into job postings ready for ingestion.
package scraper

import "strings"

// veteranKeywords are the terms marking a posting as veteran-relevant. The
// scraper subprocess tags postings with the same list; extraction here is a
// fallback for records that arrive untagged.
var veteranKeywords = []string{
	"veteran", "military", "clearance", "security clearance",
	"veteran friendly", "military experience", "veteran preferred",
	"former military", "ex-military", "military background",
	"veteran hiring", "military transition", "veteran owned",
}

// ExtractVeteranKeywords scans the provided texts case-insensitively and
// returns every matching veteran keyword in canonical list order.
func ExtractVeteranKeywords(texts ...string) []string {
	combined := strings.ToLower(strings.Join(texts, " "))
	if strings.TrimSpace(combined) == "" {
		return nil
	}

	var found []string
	for _, kw := range veteranKeywords {
		if strings.Contains(combined, kw) {
			found = append(found, kw)
		}
	}
	return found
}
