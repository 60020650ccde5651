package collector

import (
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
)

func feedItem(link string) *gofeed.Item {
	return &gofeed.Item{Link: link}
}

func TestFeedURL(t *testing.T) {
	assert.Equal(t, "https://medium.com/feed/tag/ux-design", FeedURL("ux-design"))
}

func TestFeedLinks(t *testing.T) {
	feed := &gofeed.Feed{
		Items: []*gofeed.Item{
			feedItem("https://medium.com/@writer/a-thorough-post-about-design-a1b2c3d4?source=rss"),
			feedItem("https://medium.com/tag/design"),
			feedItem("https://medium.com/@writer/a-thorough-post-about-design-a1b2c3d4#top"),
			nil,
			feedItem("https://medium.com/p/another-post-b2c3d4e5"),
		},
	}

	links := feedLinks(feed)

	assert.Equal(t, []string{
		"https://medium.com/@writer/a-thorough-post-about-design-a1b2c3d4",
		"https://medium.com/p/another-post-b2c3d4e5",
	}, links, "non-articles are dropped and duplicates collapse after canonicalization")
}

func TestFeedLinks_trackedLinksSurviveClassification(t *testing.T) {
	// Medium feed items carry a ?source=rss tracking parameter on every
	// link, and the bare query string is a utility-page marker to the
	// classifier. Stripping must happen before classification or the feed
	// yields nothing at all.
	feed := &gofeed.Feed{
		Items: []*gofeed.Item{
			feedItem("https://medium.com/@writer/fresh-off-the-feed-a1b2c3d4?source=rss-deadbeef------2"),
		},
	}

	assert.Equal(t, []string{
		"https://medium.com/@writer/fresh-off-the-feed-a1b2c3d4",
	}, feedLinks(feed))
}

func TestFeedLinks_emptyFeed(t *testing.T) {
	assert.Empty(t, feedLinks(&gofeed.Feed{}))
}
