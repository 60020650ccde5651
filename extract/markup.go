package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/medharvest"
)

// fieldStrategy yields a candidate value for one field, or "" when its
// location is absent.
type fieldStrategy func(doc *goquery.Document) string

// firstNonEmpty walks an ordered strategy list and returns the first hit.
// Representing the fallback chain as data keeps adding or reordering
// locations a one-line change.
func firstNonEmpty(doc *goquery.Document, strategies []fieldStrategy) string {
	for _, strategy := range strategies {
		if value := strings.TrimSpace(strategy(doc)); value != "" {
			return value
		}
	}
	return ""
}

func elementText(selector string) fieldStrategy {
	return func(doc *goquery.Document) string {
		return doc.Find(selector).First().Text()
	}
}

func attrValue(selector, attr string) fieldStrategy {
	return func(doc *goquery.Document) string {
		value, _ := doc.Find(selector).First().Attr(attr)
		return value
	}
}

func metaContent(selector string) fieldStrategy {
	return attrValue(selector, "content")
}

// Ordered candidate locations per field, most specific first.
var (
	titleStrategies = []fieldStrategy{
		elementText("h1"),
		metaContent(`meta[property="og:title"]`),
		metaContent(`meta[name="twitter:title"]`),
		elementText("title"),
	}

	authorStrategies = []fieldStrategy{
		elementText(`a[data-testid="authorName"]`),
		elementText(`a[rel="author"]`),
		metaContent(`meta[name="author"]`),
		metaContent(`meta[property="article:author"]`),
	}

	dateStrategies = []fieldStrategy{
		metaContent(`meta[property="article:published_time"]`),
		attrValue("time[datetime]", "datetime"),
		metaContent(`meta[name="date"]`),
	}
)

// fromMarkup extracts a record from the rendered markup directly. It is the
// fallback tier, used when no structured data yields a titled record. Each
// field is independently best-effort; a missing field never blocks the
// others.
func fromMarkup(doc *goquery.Document) *medharvest.Article {
	article := &medharvest.Article{}

	article.Title = firstNonEmpty(doc, titleStrategies)
	article.Author = firstNonEmpty(doc, authorStrategies)

	if raw := firstNonEmpty(doc, dateStrategies); raw != "" {
		article.PublishedDate = medharvest.NormalizeDate(raw)
	}

	if desc, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		article.Summary = desc
	}

	article.Categories = tagLinkTexts(doc)
	article.ReadingTime = readingTimeText(doc)

	return article
}

// tagLinkTexts collects the text of every anchor pointing at a tag listing
// page, lower-cased, trimmed, and deduplicated.
func tagLinkTexts(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	var tags []string
	doc.Find(`a[href*="/tag/"]`).Each(func(_ int, sel *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		if text == "" {
			return
		}
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = struct{}{}
		tags = append(tags, text)
	})
	return tags
}

// readingTimeText finds the " min read" marker Medium renders near the
// byline. Selection text concatenates descendants, so an ancestor span of the
// marker matches too, with surrounding byline text mixed in; the shortest
// match is the innermost element carrying just the marker.
func readingTimeText(doc *goquery.Document) string {
	var found string
	doc.Find("span").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if !strings.Contains(text, " min read") {
			return
		}
		if found == "" || len(text) < len(found) {
			found = text
		}
	})
	return found
}
