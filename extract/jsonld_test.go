package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func jsonldDoc(t *testing.T, block string) *goquery.Document {
	t.Helper()
	return parseHTML(t, `<html><head><script type="application/ld+json">`+block+`</script></head><body></body></html>`)
}

func TestFromJSONLD_singleObject(t *testing.T) {
	doc := jsonldDoc(t, `{
		"@type": "NewsArticle",
		"headline": "Designing for Trust",
		"author": {"@type": "Person", "name": "Avery Chen"},
		"datePublished": "2025-02-10T14:00:00Z",
		"description": "How interfaces earn user confidence.",
		"keywords": ["UX Design", "Psychology"],
		"timeRequired": "PT7M"
	}`)

	article := fromJSONLD(doc)
	require.NotNil(t, article)

	assert.Equal(t, "Designing for Trust", article.Title)
	assert.Equal(t, "Avery Chen", article.Author)
	assert.Equal(t, "2025-02-10", article.PublishedDate)
	assert.Equal(t, "How interfaces earn user confidence.", article.Summary)
	assert.Equal(t, []string{"UX Design", "Psychology"}, article.Categories)
	assert.Equal(t, "PT7M", article.ReadingTime)
}

func TestFromJSONLD_objectList(t *testing.T) {
	doc := jsonldDoc(t, `[
		{"@type": "Organization", "name": "Medium"},
		{"@type": "BlogPosting", "headline": "From a List"}
	]`)

	article := fromJSONLD(doc)
	require.NotNil(t, article)
	assert.Equal(t, "From a List", article.Title)
}

func TestFromJSONLD_graphWrapper(t *testing.T) {
	doc := jsonldDoc(t, `{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "WebPage", "name": "wrapper"},
			{"@type": "Article", "headline": "Inside the Graph"}
		]
	}`)

	article := fromJSONLD(doc)
	require.NotNil(t, article)
	assert.Equal(t, "Inside the Graph", article.Title)
}

func TestFromJSONLD_rootObjectBeatsGraph(t *testing.T) {
	// When the root itself is an article, nothing nested should shadow it.
	doc := jsonldDoc(t, `{
		"@type": "Article",
		"headline": "Root Article",
		"@graph": [{"@type": "Article", "headline": "Nested Article"}]
	}`)

	article := fromJSONLD(doc)
	require.NotNil(t, article)
	assert.Equal(t, "Root Article", article.Title)
}

func TestFromJSONLD_nameFallsBackForHeadline(t *testing.T) {
	doc := jsonldDoc(t, `{"@type": "Article", "name": "Named Only"}`)

	article := fromJSONLD(doc)
	require.NotNil(t, article)
	assert.Equal(t, "Named Only", article.Title)
}

func TestFromJSONLD_skipsMalformedBlocks(t *testing.T) {
	doc := parseHTML(t, `<html><head>
		<script type="application/ld+json">{not valid json</script>
		<script type="application/ld+json">{"@type": "Article", "headline": "Second Block"}</script>
	</head><body></body></html>`)

	article := fromJSONLD(doc)
	require.NotNil(t, article)
	assert.Equal(t, "Second Block", article.Title)
}

func TestFromJSONLD_noArticleBlock(t *testing.T) {
	doc := jsonldDoc(t, `{"@type": "WebSite", "name": "Medium"}`)
	assert.Nil(t, fromJSONLD(doc))
}

func TestAuthorName_shapes(t *testing.T) {
	assert.Equal(t, "Avery Chen", authorName(map[string]any{"name": "Avery Chen"}))
	assert.Equal(t, "Avery Chen", authorName([]any{map[string]any{"name": "Avery Chen"}}))
	assert.Equal(t, "Avery Chen", authorName([]any{"Avery Chen", "Second Author"}))
	assert.Equal(t, "Avery Chen", authorName("Avery Chen"))
	assert.Equal(t, "", authorName(nil))
	assert.Equal(t, "", authorName([]any{}))
	assert.Equal(t, "", authorName(42))
}

func TestKeywordList_shapes(t *testing.T) {
	assert.Equal(t, []string{"ux", "ai"}, keywordList([]any{"ux", "ai"}))
	assert.Equal(t, []string{"ux", "ai"}, keywordList("ux, ai"))
	assert.Equal(t, []string{"ux"}, keywordList("ux,  , "))
	assert.Nil(t, keywordList(nil))
	assert.Nil(t, keywordList(7))
}
