package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMarkup_fullPage(t *testing.T) {
	doc := parseHTML(t, `<html><head>
		<meta property="og:title" content="Meta Title">
		<meta property="og:description" content="A short summary.">
		<meta property="article:published_time" content="2024-11-01T09:00:00Z">
	</head><body>
		<h1>Visible Headline</h1>
		<a data-testid="authorName" href="/@writer">Jordan Park</a>
		<span>6 min read</span>
		<a href="/tag/ux-design">UX Design</a>
		<a href="/tag/research">Research</a>
		<a href="/tag/ux-design">UX Design</a>
	</body></html>`)

	article := fromMarkup(doc)
	require.NotNil(t, article)

	// The h1 outranks the og:title meta.
	assert.Equal(t, "Visible Headline", article.Title)
	assert.Equal(t, "Jordan Park", article.Author)
	assert.Equal(t, "2024-11-01", article.PublishedDate)
	assert.Equal(t, "A short summary.", article.Summary)
	assert.Equal(t, []string{"ux design", "research"}, article.Categories)
	assert.Equal(t, "6 min read", article.ReadingTime)
}

func TestFromMarkup_titleFallbackChain(t *testing.T) {
	doc := parseHTML(t, `<html><head>
		<meta name="twitter:title" content="Twitter Title">
		<title>Document Title</title>
	</head><body></body></html>`)

	article := fromMarkup(doc)
	assert.Equal(t, "Twitter Title", article.Title,
		"twitter:title outranks the document title when no h1 or og:title exists")
}

func TestFromMarkup_authorFallbackChain(t *testing.T) {
	doc := parseHTML(t, `<html><head>
		<meta name="author" content="Meta Author">
	</head><body>
		<a rel="author" href="/@writer">Rel Author</a>
	</body></html>`)

	article := fromMarkup(doc)
	assert.Equal(t, "Rel Author", article.Author)
}

func TestFromMarkup_dateFromTimeElement(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<time datetime="2025-05-20T10:00:00Z">May 20</time>
	</body></html>`)

	article := fromMarkup(doc)
	assert.Equal(t, "2025-05-20", article.PublishedDate)
}

func TestReadingTimeText_nestedSpansYieldInnermost(t *testing.T) {
	// Medium nests the marker inside byline wrapper spans whose concatenated
	// text also contains it; the bare marker must win over its ancestors.
	doc := parseHTML(t, `<html><body>
		<span>Jordan Park · <span>Feb 10 · <span>6 min read</span></span> · Member-only</span>
	</body></html>`)

	assert.Equal(t, "6 min read", readingTimeText(doc))
}

func TestFromMarkup_emptyPage(t *testing.T) {
	article := fromMarkup(parseHTML(t, `<html><body></body></html>`))
	require.NotNil(t, article)
	assert.Empty(t, article.Title)
	assert.Empty(t, article.Categories)
}
