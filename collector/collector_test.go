package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns bounds with all waits zeroed so tests run instantly.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialWait = 0
	cfg.ScrollPause = 0
	cfg.ChallengeWait = 0
	return cfg
}

func articleRef(n int) string {
	return fmt.Sprintf("https://medium.com/@writer/a-long-enough-post-title-%d-a1b2c3d4", n)
}

func TestAdvance_stopsAfterStallLimit(t *testing.T) {
	cfg := testConfig()
	cfg.StallLimit = 6
	acc := newAccumulator()

	// Three scrolls with fresh content, then nothing new. The stall counter
	// starts at scroll 4 and reaches the limit at scroll 9.
	for i := 1; i <= 3; i++ {
		view := pageView{url: TagURL("design"), hrefs: []string{articleRef(i)}}
		stop, _ := advance(acc, view, i, cfg)
		require.False(t, stop, "fresh content at scroll %d should not stop", i)
	}

	empty := pageView{url: TagURL("design")}
	for i := 4; i <= 8; i++ {
		stop, _ := advance(acc, empty, i, cfg)
		require.False(t, stop, "stall %d of 6 should not stop yet", i-3)
	}

	stop, reason := advance(acc, empty, 9, cfg)
	assert.True(t, stop)
	assert.Equal(t, StopExhausted, reason)
	assert.Equal(t, 3, acc.size())
}

func TestAdvance_freshContentResetsStallCounter(t *testing.T) {
	cfg := testConfig()
	cfg.StallLimit = 3
	acc := newAccumulator()

	empty := pageView{url: TagURL("design")}
	advance(acc, empty, 1, cfg)
	advance(acc, empty, 2, cfg)

	// New content on the brink of exhaustion resets the counter.
	fresh := pageView{url: TagURL("design"), hrefs: []string{articleRef(1)}}
	stop, _ := advance(acc, fresh, 3, cfg)
	require.False(t, stop)
	assert.Equal(t, 0, acc.stalls)
}

func TestAdvance_staleOnlyOnChronologicalFeed(t *testing.T) {
	cfg := testConfig()
	cfg.CutoffYear = 2025

	// On the /latest listing an old dateline means everything further down
	// is older still.
	acc := newAccumulator()
	view := pageView{
		url:        "https://medium.com/tag/design/latest",
		hrefs:      []string{articleRef(1)},
		oldestYear: 2023,
	}
	stop, reason := advance(acc, view, 1, cfg)
	assert.True(t, stop)
	assert.Equal(t, StopStale, reason)

	// After a redirect to the recommended feed the same dateline proves
	// nothing, old items interleave with new there.
	acc = newAccumulator()
	view.url = "https://medium.com/tag/design/recommended"
	stop, _ = advance(acc, view, 1, cfg)
	assert.False(t, stop)
}

func TestAdvance_unknownYearNeverStale(t *testing.T) {
	cfg := testConfig()
	acc := newAccumulator()

	view := pageView{url: "https://medium.com/tag/design/latest", oldestYear: 0}
	stop, reason := advance(acc, view, 1, cfg)
	assert.False(t, stop, "missing datelines must not trigger the stale stop")
	assert.NotEqual(t, StopStale, reason)
}

func TestAdvance_scrollBudget(t *testing.T) {
	cfg := testConfig()
	cfg.MaxScrolls = 10
	acc := newAccumulator()

	view := pageView{url: TagURL("design"), hrefs: []string{articleRef(1)}}
	stop, reason := advance(acc, view, 10, cfg)
	assert.True(t, stop)
	assert.Equal(t, StopBudget, reason)
}

func TestAccumulator_mergeDeduplicatesAcrossQueryStrings(t *testing.T) {
	acc := newAccumulator()

	added := acc.merge([]string{
		"https://medium.com/p/x-a1b2c3d4?source=tag_feed",
		"https://medium.com/p/x-a1b2c3d4#responses",
		"https://medium.com/p/y-b2c3d4e5",
	})

	assert.Equal(t, 2, added)
	assert.Equal(t, []string{
		"https://medium.com/p/x-a1b2c3d4",
		"https://medium.com/p/y-b2c3d4e5",
	}, acc.links())
}

func TestOldestDatelineYear(t *testing.T) {
	html := `<html><body>
		<time datetime="2025-06-01T10:00:00Z">Jun 1</time>
		<time datetime="2024-11-20T10:00:00Z">Nov 20, 2024</time>
		<time datetime="garbage">?</time>
	</body></html>`

	assert.Equal(t, 2024, oldestDatelineYear(html))
}

func TestOldestDatelineYear_noDatelines(t *testing.T) {
	assert.Equal(t, 0, oldestDatelineYear("<html><body><p>hi</p></body></html>"))
}

// fakePage is one observation served by the fake session.
type fakePage struct {
	hrefs []string
	html  string
}

// fakeSession serves a scripted sequence of pages, one per scroll. The last
// page repeats once the script runs out.
type fakeSession struct {
	pages    []fakePage
	location string
	title    string
	loadErr  error
	scrolls  int
	closed   bool
}

func (s *fakeSession) Load(ctx context.Context, url string) error {
	if s.loadErr != nil {
		return s.loadErr
	}
	if s.location == "" {
		s.location = url
	}
	return nil
}

func (s *fakeSession) Evaluate(ctx context.Context, script string, out any) error {
	if out == nil {
		// Scroll request.
		s.scrolls++
		return nil
	}
	hrefs := out.(*[]string)
	*hrefs = s.currentPage().hrefs
	return nil
}

func (s *fakeSession) HTML(ctx context.Context) (string, error) {
	return s.currentPage().html, nil
}

func (s *fakeSession) Title(ctx context.Context) (string, error) {
	return s.title, nil
}

func (s *fakeSession) Location(ctx context.Context) (string, error) {
	return s.location, nil
}

func (s *fakeSession) Close() { s.closed = true }

func (s *fakeSession) currentPage() fakePage {
	if len(s.pages) == 0 {
		return fakePage{}
	}
	i := s.scrolls - 1
	if i >= len(s.pages) {
		i = len(s.pages) - 1
	}
	if i < 0 {
		i = 0
	}
	return s.pages[i]
}

func TestCollector_Collect_exhaustsAndReturnsLinks(t *testing.T) {
	cfg := testConfig()
	cfg.StallLimit = 2
	cfg.MaxScrolls = 20

	session := &fakeSession{
		pages: []fakePage{
			{hrefs: []string{
				articleRef(1),
				"https://medium.com/tag/design", // non-article, filtered out
			}},
			{hrefs: []string{articleRef(1), articleRef(2)}},
			// From here the page stops growing.
			{hrefs: []string{articleRef(1), articleRef(2)}},
		},
	}

	result := New(session, cfg).Collect(context.Background(), "design", nil)

	assert.Equal(t, "design", result.Tag)
	assert.Equal(t, StopExhausted, result.StopReason)
	assert.Equal(t, []string{articleRef(1), articleRef(2)}, result.Links)
}

func TestCollector_Collect_seedLinksSurviveLoadFault(t *testing.T) {
	cfg := testConfig()
	session := &fakeSession{loadErr: errors.New("net::ERR_CONNECTION_REFUSED")}

	seed := []string{articleRef(1) + "?source=rss"}
	result := New(session, cfg).Collect(context.Background(), "design", seed)

	assert.Equal(t, StopFault, result.StopReason)
	assert.Equal(t, []string{articleRef(1)}, result.Links,
		"seed links should survive, canonicalized, when the feed never loads")
}

func TestCollector_Collect_staleStopOnLatestFeed(t *testing.T) {
	cfg := testConfig()
	cfg.CutoffYear = 2025

	session := &fakeSession{
		pages: []fakePage{
			{
				hrefs: []string{articleRef(1)},
				html:  `<time datetime="2024-03-01T00:00:00Z">old</time>`,
			},
		},
	}

	result := New(session, cfg).Collect(context.Background(), "design", nil)

	assert.Equal(t, StopStale, result.StopReason)
	assert.Equal(t, 1, result.Scrolls)
	assert.Equal(t, []string{articleRef(1)}, result.Links)
}

func TestCollector_Collect_honorsScrollBudget(t *testing.T) {
	cfg := testConfig()
	cfg.MaxScrolls = 3
	cfg.StallLimit = 100

	// Every scroll yields something new, so only the budget can stop it.
	session := &fakeSession{}
	for i := 1; i <= 10; i++ {
		var hrefs []string
		for j := 1; j <= i; j++ {
			hrefs = append(hrefs, articleRef(j))
		}
		session.pages = append(session.pages, fakePage{hrefs: hrefs})
	}

	result := New(session, cfg).Collect(context.Background(), "design", nil)

	assert.Equal(t, StopBudget, result.StopReason)
	assert.Equal(t, 3, result.Scrolls)
	assert.Len(t, result.Links, 3)
}

func TestCollector_Collect_canceledContext(t *testing.T) {
	cfg := DefaultConfig()
	session := &fakeSession{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(session, cfg).Collect(ctx, "design", nil)
	assert.Equal(t, StopCanceled, result.StopReason)
}
