package medharvest

import (
	"strconv"
	"strings"
	"time"
)

// FilterArticles keeps the records published in the given year that carry
// every one of the required categories. Matching is conjunctive: a record
// satisfying only some of the required categories is dropped. Relative order
// of surviving records is preserved.
//
// Category matching is case-insensitive and treats hyphens, underscores, and
// spaces as equivalent, and accepts a substring match in either direction
// ("ux" matches "ux design" and vice versa).
//
// The year test requires the published date to already be in canonical
// YYYY-MM-DD form; a raw date string that failed normalization never matches,
// even if it happens to begin with the year digits.
func FilterArticles(articles []Article, requiredCategories []string, year int) []Article {
	required := make([]string, 0, len(requiredCategories))
	for _, cat := range requiredCategories {
		required = append(required, normalizeCategory(cat))
	}

	yearPrefix := strconv.Itoa(year)

	var kept []Article
	for _, article := range articles {
		if !publishedIn(article.PublishedDate, yearPrefix) {
			continue
		}
		if !hasAllCategories(article.Categories, required) {
			continue
		}
		kept = append(kept, article)
	}

	return kept
}

// publishedIn reports whether a canonical date falls in the target year.
func publishedIn(date, yearPrefix string) bool {
	if date == "" {
		return false
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return false
	}
	return strings.HasPrefix(date, yearPrefix)
}

// hasAllCategories checks that every required category has at least one
// matching entry in the record's category set.
func hasAllCategories(actual, required []string) bool {
	normalized := make([]string, 0, len(actual))
	for _, cat := range actual {
		normalized = append(normalized, normalizeCategory(cat))
	}

	for _, req := range required {
		matched := false
		for _, cat := range normalized {
			if strings.Contains(cat, req) || strings.Contains(req, cat) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// normalizeCategory lowers case and collapses hyphen/underscore spelling
// variants so "ux-design", "ux_design", and "UX Design" compare equal.
func normalizeCategory(cat string) string {
	cat = strings.ToLower(strings.TrimSpace(cat))
	cat = strings.ReplaceAll(cat, "-", " ")
	cat = strings.ReplaceAll(cat, "_", " ")
	return cat
}
