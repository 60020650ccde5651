// Package medharvest harvests article references from Medium tag feeds and
// extracts normalized metadata for each referenced article.
package medharvest

// SourceTag identifies the origin platform on every extracted record.
const SourceTag = "medium"

// Article is the canonical metadata record extracted for one article
// reference. Any field except Reference and Source may be empty when the
// corresponding data could not be extracted; a record with an empty Title is
// considered unusable and is dropped by the batch orchestrator, not by the
// extractor itself.
type Article struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	PublishedDate string   `json:"publishedDate"`
	Categories    []string `json:"categories"`
	ReadingTime   string   `json:"readingTime"`
	Summary       string   `json:"summary"`
	Source        string   `json:"source"`
	Reference     string   `json:"reference"`
}

// Usable reports whether the record carries enough data to be worth keeping.
func (a *Article) Usable() bool {
	return a.Title != ""
}
