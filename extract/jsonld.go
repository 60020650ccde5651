package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/medharvest"
)

// articleTypes are the schema.org types recognized as article-like.
var articleTypes = []string{"Article", "NewsArticle", "BlogPosting"}

// fromJSONLD scans every JSON-LD block in the document for an article-like
// object and maps the first match to a record. Returns nil when no recognized
// block exists -- a valid outcome, not an error, and the cue to fall back to
// the markup tier. Malformed blocks are skipped, not fatal.
func fromJSONLD(doc *goquery.Document) *medharvest.Article {
	var article *medharvest.Article

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return true // skip malformed block, keep scanning
		}

		for _, obj := range candidateObjects(data) {
			if !isArticleType(obj) {
				continue
			}
			article = mapArticleObject(obj)
			return false
		}
		return true
	})

	return article
}

// candidateObjects flattens the three JSON-LD shapes -- a single typed
// object, a list of typed objects, or a typed-object graph under "@graph" --
// into one uniform list of candidate objects.
func candidateObjects(data any) []map[string]any {
	switch v := data.(type) {
	case []any:
		var objs []map[string]any
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				objs = append(objs, obj)
			}
		}
		return objs
	case map[string]any:
		// The root object is a candidate itself, and checked before anything
		// nested under a @graph wrapper.
		objs := []map[string]any{v}
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if obj, ok := item.(map[string]any); ok {
					objs = append(objs, obj)
				}
			}
		}
		return objs
	default:
		return nil
	}
}

// isArticleType reports whether the object's declared @type is article-like.
func isArticleType(obj map[string]any) bool {
	typ, ok := obj["@type"].(string)
	if !ok {
		return false
	}
	for _, want := range articleTypes {
		if typ == want {
			return true
		}
	}
	return false
}

// mapArticleObject maps a recognized JSON-LD article object onto the
// canonical record shape. Every field is best effort.
func mapArticleObject(obj map[string]any) *medharvest.Article {
	article := &medharvest.Article{}

	if headline, ok := obj["headline"].(string); ok && headline != "" {
		article.Title = headline
	} else if name, ok := obj["name"].(string); ok {
		article.Title = name
	}

	article.Author = authorName(obj["author"])

	if date, ok := obj["datePublished"].(string); ok && date != "" {
		article.PublishedDate = medharvest.NormalizeDate(date)
	}

	if desc, ok := obj["description"].(string); ok {
		article.Summary = desc
	}

	article.Categories = keywordList(obj["keywords"])

	if required, ok := obj["timeRequired"].(string); ok {
		article.ReadingTime = required
	}

	return article
}

// authorName extracts an author name from the shapes schema.org allows: a
// person object, a list of objects or strings, or a bare string.
func authorName(v any) string {
	switch author := v.(type) {
	case map[string]any:
		if name, ok := author["name"].(string); ok {
			return name
		}
	case []any:
		if len(author) == 0 {
			return ""
		}
		switch first := author[0].(type) {
		case map[string]any:
			if name, ok := first["name"].(string); ok {
				return name
			}
		case string:
			return first
		}
	case string:
		return author
	}
	return ""
}

// keywordList normalizes keywords, which arrive either as a list or as one
// comma-separated string.
func keywordList(v any) []string {
	switch kw := v.(type) {
	case []any:
		var out []string
		for _, item := range kw {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for part := range strings.SplitSeq(kw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return nil
	}
}
