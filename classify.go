package medharvest

import (
	"regexp"
	"strings"
)

// Path markers that identify non-article utility pages. A URL containing any
// of these is rejected before the accept patterns are consulted, so an
// exclusion always wins over an accept.
var nonArticleMarkers = []string{
	"/tag/",
	"/search",
	"/me/",
	"/about",
	"/followers",
	"/lists",
	"/topics",
	"?source=",
	"/archive",
	"signin",
	"signup",
}

// articleSuffixPattern matches Medium's canonical article ID suffix: a hyphen
// followed by 8-12 lowercase hex characters at the end of the path.
var articleSuffixPattern = regexp.MustCompile(`-[a-f0-9]{8,12}$`)

// minUserPostURLLen filters out bare profile URLs, which carry the /@user
// marker but are too short to be a post.
const minUserPostURLLen = 40

// IsArticleURL reports whether a raw href denotes an article worth keeping.
// It never errors: empty strings and junk input are simply rejected.
func IsArticleURL(raw string) bool {
	if raw == "" {
		return false
	}

	lower := strings.ToLower(raw)
	for _, marker := range nonArticleMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}

	if strings.Contains(raw, "/@") && len(raw) > minUserPostURLLen {
		return true
	}
	if articleSuffixPattern.MatchString(raw) {
		return true
	}

	return false
}

// Canonicalize strips the query string and fragment from a URL so that two
// references differing only in tracking parameters compare equal. The result
// is the form stored in link sets and compared for deduplication.
func Canonicalize(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
