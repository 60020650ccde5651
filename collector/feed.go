package collector

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/pevans/medharvest"
)

// FeedURL returns the RSS feed endpoint for a tag. The feed only carries the
// newest handful of posts, but it is cheap to fetch and gives a run its
// freshest references up front, even if scrolling is later cut short.
func FeedURL(tag string) string {
	return fmt.Sprintf("https://medium.com/feed/tag/%s", tag)
}

// SeedFromFeed fetches the tag's RSS feed and returns the canonicalized
// article references it carries. The gofeed library detects and handles both
// RSS and Atom formats. A feed failure is not fatal to collection; callers
// should log it and proceed with an empty seed.
func SeedFromFeed(ctx context.Context, tag string) ([]string, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(FeedURL(tag), ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tag feed: %w", err)
	}
	return feedLinks(feed), nil
}

// feedLinks canonicalizes and classifies the item links of a parsed feed,
// preserving feed order and dropping duplicates. Canonicalization comes
// first: feed links carry a ?source= tracking parameter, which the classifier
// treats as a utility-page marker, so the raw form would never pass it.
func feedLinks(feed *gofeed.Feed) []string {
	seen := make(map[string]struct{}, len(feed.Items))
	var links []string
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		ref := medharvest.Canonicalize(item.Link)
		if !medharvest.IsArticleURL(ref) {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		links = append(links, ref)
	}
	return links
}
