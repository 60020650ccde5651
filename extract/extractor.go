// Package extract turns one article reference into a canonical metadata
// record. Extraction is two-tiered: embedded JSON-LD structured data is
// preferred, and rendered markup is the fallback when no structured block
// yields a titled record. Both tiers are best-effort per field.
package extract

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/medharvest"
	"github.com/pevans/medharvest/render"
)

// SessionFactory acquires a fresh render session. The extractor opens one
// session per reference and tears it down before returning, so a failure on
// one article never poisons the next.
type SessionFactory func() (render.Session, error)

// Config bounds a single extraction.
type Config struct {
	SettleWait time.Duration // Time to let client-side rendering finish after load
}

// DefaultConfig returns the per-article extraction settings.
func DefaultConfig() Config {
	return Config{SettleWait: 2 * time.Second}
}

// Extractor extracts metadata records, one reference at a time.
type Extractor struct {
	sessions SessionFactory
	cfg      Config
}

// New creates an extractor that acquires sessions from the factory.
func New(sessions SessionFactory, cfg Config) *Extractor {
	return &Extractor{sessions: sessions, cfg: cfg}
}

// Extract loads the referenced article and extracts its metadata. A renderer
// fault yields (nil, err) for this reference only; callers processing batches
// must absorb the error and continue (see RunBatch). A successfully rendered
// page always yields a record, though possibly one without a title -- the
// caller decides usability.
func (e *Extractor) Extract(ctx context.Context, reference string) (*medharvest.Article, error) {
	session, err := e.sessions()
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if err := session.Load(ctx, reference); err != nil {
		return nil, err
	}

	if err := sleepCtx(ctx, e.cfg.SettleWait); err != nil {
		return nil, err
	}

	html, err := session.HTML(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	return FromDocument(doc, reference), nil
}

// FromDocument runs both extraction tiers over a parsed document and stamps
// the record's source tag and originating reference. Exposed separately from
// Extract so the tier logic is testable without a renderer.
func FromDocument(doc *goquery.Document, reference string) *medharvest.Article {
	article := fromJSONLD(doc)
	if article == nil || article.Title == "" {
		article = fromMarkup(doc)
	}

	article.Source = medharvest.SourceTag
	article.Reference = reference
	return article
}

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
