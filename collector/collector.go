// Package collector drives the incremental harvesting of article references
// from a Medium tag feed. It scrolls the rendered page, harvests anchor
// hrefs, and accumulates a deduplicated reference set until one of the
// stopping conditions fires. Collection is best-effort: a renderer fault
// truncates the run to whatever was gathered so far instead of failing it.
package collector

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/medharvest"
	"github.com/pevans/medharvest/render"
)

// Stop reasons reported in a Result. A run that exhausts its scroll budget is
// not an error; partial collection is an accepted outcome.
const (
	StopStale     = "stale-content"   // chronological feed served an item older than the cutoff year
	StopExhausted = "no-new-content"  // six consecutive scrolls added nothing
	StopBudget    = "scroll-budget"   // iteration cap reached
	StopFault     = "render-fault"    // renderer failed; run truncated to partial result
	StopCanceled  = "canceled"        // caller's context was canceled
)

// Config bounds a collection run.
type Config struct {
	MaxScrolls    int           // Scroll iteration cap
	ScrollPause   time.Duration // Pause after each scroll to let lazy content render
	StallLimit    int           // Consecutive empty harvests before giving up
	CutoffYear    int           // Items older than this year signal a stale chronological feed
	InitialWait   time.Duration // Settle time after the first paint
	ChallengeWait time.Duration // Single longer pause when a challenge page is detected
}

// DefaultConfig returns the collection bounds used in production runs.
func DefaultConfig() Config {
	return Config{
		MaxScrolls:    150,
		ScrollPause:   2500 * time.Millisecond,
		StallLimit:    6,
		CutoffYear:    2025,
		InitialWait:   5 * time.Second,
		ChallengeWait: 15 * time.Second,
	}
}

// TagURL returns the chronological listing endpoint for a tag. Medium may
// redirect tags that have no /latest feed; the collector detects that from the
// final location and suppresses the stale-content signal accordingly.
func TagURL(tag string) string {
	return fmt.Sprintf("https://medium.com/tag/%s/latest", tag)
}

// Result is the outcome of one collection run.
type Result struct {
	Tag        string
	Links      []string // Canonicalized, deduplicated, in first-seen order
	Scrolls    int
	StopReason string
}

// Collector runs the scroll loop against a single render session.
type Collector struct {
	session render.Session
	cfg     Config
}

// New creates a collector bound to a session. The caller retains ownership of
// the session and is responsible for closing it.
func New(session render.Session, cfg Config) *Collector {
	return &Collector{session: session, cfg: cfg}
}

// linkHarvestScript returns every anchor href on the rendered page. Going
// through the DOM rather than the HTML source picks up hrefs resolved against
// the document base.
const linkHarvestScript = `Array.from(document.querySelectorAll('a')).map(a => a.href)`

// scrollScript advances the viewport by 80% of its height, smoothly, to look
// like a reading user.
const scrollScript = `window.scrollBy({top: window.innerHeight * 0.8, behavior: 'smooth'});`

// Collect harvests article references from the tag's feed. Seed links (for
// example from the tag's RSS feed) are merged into the accumulator before
// scrolling starts. Collect never returns an error: renderer faults truncate
// the run and are reflected in the result's StopReason.
func (c *Collector) Collect(ctx context.Context, tag string, seed []string) Result {
	acc := newAccumulator()
	acc.merge(seed)

	result := Result{Tag: tag}
	finish := func(reason string, scrolls int) Result {
		result.Links = acc.links()
		result.Scrolls = scrolls
		result.StopReason = reason
		return result
	}

	url := TagURL(tag)
	log.Printf("INFO: Collecting tag %q from %s", tag, url)

	if err := c.session.Load(ctx, url); err != nil {
		log.Printf("WARN: Failed to load tag feed %q: %v", tag, err)
		return finish(StopFault, 0)
	}

	if err := sleepCtx(ctx, c.cfg.InitialWait); err != nil {
		return finish(StopCanceled, 0)
	}

	// A challenge interstitial gets one longer wait, then we proceed against
	// whatever content is present. No retry loop.
	if title, err := c.session.Title(ctx); err == nil && render.IsChallengeTitle(title) {
		log.Printf("WARN: Challenge page detected for tag %q, waiting %s", tag, c.cfg.ChallengeWait)
		if err := sleepCtx(ctx, c.cfg.ChallengeWait); err != nil {
			return finish(StopCanceled, 0)
		}
	}

	for i := 1; i <= c.cfg.MaxScrolls; i++ {
		if err := c.session.Evaluate(ctx, scrollScript, nil); err != nil {
			log.Printf("WARN: Scroll failed for tag %q, truncating run: %v", tag, err)
			return finish(StopFault, i)
		}

		view, err := c.observe(ctx)
		if err != nil {
			log.Printf("WARN: Harvest failed for tag %q, truncating run: %v", tag, err)
			return finish(StopFault, i)
		}

		stop, reason := advance(acc, view, i, c.cfg)
		log.Printf("INFO: Scroll %d: %d articles collected", i, acc.size())
		if stop {
			return finish(reason, i)
		}

		if err := sleepCtx(ctx, c.cfg.ScrollPause); err != nil {
			return finish(StopCanceled, i)
		}
	}

	return finish(StopBudget, c.cfg.MaxScrolls)
}

// pageView is one observation of the rendered feed: where we are, every href
// on the page, and the oldest dateline year visible (0 when unknown).
type pageView struct {
	url        string
	hrefs      []string
	oldestYear int
}

// observe reads the current page state from the session.
func (c *Collector) observe(ctx context.Context) (pageView, error) {
	var view pageView

	loc, err := c.session.Location(ctx)
	if err != nil {
		return view, err
	}
	view.url = loc

	if err := c.session.Evaluate(ctx, linkHarvestScript, &view.hrefs); err != nil {
		return view, err
	}

	html, err := c.session.HTML(ctx)
	if err != nil {
		return view, err
	}
	view.oldestYear = oldestDatelineYear(html)

	return view, nil
}

// advance folds one page observation into the accumulator and evaluates the
// stopping conditions, first match wins. It is a pure step over explicit
// state, which keeps the stopping logic testable without a renderer.
func advance(acc *accumulator, view pageView, iteration int, cfg Config) (bool, string) {
	var classified []string
	for _, href := range view.hrefs {
		if medharvest.IsArticleURL(href) {
			classified = append(classified, href)
		}
	}

	if added := acc.merge(classified); added > 0 {
		acc.stalls = 0
	} else {
		acc.stalls++
	}

	// The stale signal only holds on a chronological listing. A recommended
	// feed can interleave old items with new, so stopping on it there would
	// cut the run short.
	if isChronological(view.url) && view.oldestYear > 0 && view.oldestYear < cfg.CutoffYear {
		return true, StopStale
	}

	if acc.stalls >= cfg.StallLimit {
		return true, StopExhausted
	}

	if iteration >= cfg.MaxScrolls {
		return true, StopBudget
	}

	return false, ""
}

// isChronological reports whether the URL denotes the strictly
// recency-ordered variant of a tag feed.
func isChronological(url string) bool {
	return strings.Contains(url, "/latest")
}

// oldestDatelineYear scans the rendered page for time elements and returns
// the oldest publication year visible, or 0 if none parse.
func oldestDatelineYear(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}

	oldest := 0
	doc.Find("time[datetime]").Each(func(_ int, sel *goquery.Selection) {
		raw, _ := sel.Attr("datetime")
		date := medharvest.NormalizeDate(raw)
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return
		}
		if oldest == 0 || t.Year() < oldest {
			oldest = t.Year()
		}
	})

	return oldest
}

// accumulator is the deduplicated reference set threaded through the scroll
// loop, plus the consecutive-stall counter.
type accumulator struct {
	seen    map[string]struct{}
	ordered []string
	stalls  int
}

func newAccumulator() *accumulator {
	return &accumulator{seen: make(map[string]struct{})}
}

// merge canonicalizes and inserts links, returning how many were new.
func (a *accumulator) merge(links []string) int {
	added := 0
	for _, link := range links {
		ref := medharvest.Canonicalize(link)
		if ref == "" {
			continue
		}
		if _, ok := a.seen[ref]; ok {
			continue
		}
		a.seen[ref] = struct{}{}
		a.ordered = append(a.ordered, ref)
		added++
	}
	return added
}

func (a *accumulator) size() int { return len(a.ordered) }

// links returns the accumulated references in first-seen order.
func (a *accumulator) links() []string {
	out := make([]string, len(a.ordered))
	copy(out, a.ordered)
	return out
}

// sleepCtx pauses for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
