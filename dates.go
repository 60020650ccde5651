package medharvest

import (
	"strings"
	"time"
)

// dateLayouts are tried in order against a cleaned date string. ISO calendar
// dates come first since that is what structured data almost always carries;
// the rest cover the localized formats Medium renders in page markup.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// NormalizeDate converts a heterogeneous date string to canonical YYYY-MM-DD
// form. Time-of-day components (after a "T") and timezone offsets (after a
// "+") are discarded before parsing. If no known layout matches, the input is
// returned unchanged -- callers must treat a non-canonical result as
// unparseable rather than assume format compliance. Empty input yields empty
// output. Never errors.
func NormalizeDate(raw string) string {
	if raw == "" {
		return ""
	}

	cleaned := raw
	if i := strings.IndexByte(cleaned, 'T'); i >= 0 {
		cleaned = cleaned[:i]
	}
	if i := strings.IndexByte(cleaned, '+'); i >= 0 {
		cleaned = cleaned[:i]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "Z")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return raw
}
