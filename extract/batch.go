package extract

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pevans/medharvest"
)

// ExtractFunc extracts one reference. It matches (*Extractor).Extract and
// lets batch behavior be tested without a renderer.
type ExtractFunc func(ctx context.Context, reference string) (*medharvest.Article, error)

// BatchConfig controls pacing and parallelism of a batch run.
type BatchConfig struct {
	// Pacing is the delay between consecutive extractions. Not applied after
	// the last reference. Ignored when Workers > 1.
	Pacing time.Duration
	// Workers bounds parallel extraction. Zero or one means strictly
	// sequential, which is the polite default against a rendered source.
	Workers int
}

// DefaultBatchConfig returns the sequential production pacing.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{Pacing: 2500 * time.Millisecond, Workers: 1}
}

// BatchResult aggregates a batch run. Dropped counts references whose
// extraction failed or produced a title-less record; those are absorbed,
// never raised.
type BatchResult struct {
	Articles  []medharvest.Article
	Attempted int
	Extracted int
	Dropped   int
}

// Batch extracts every reference through this extractor. See RunBatch.
func (e *Extractor) Batch(ctx context.Context, references []string, cfg BatchConfig) BatchResult {
	return RunBatch(ctx, references, cfg, e.Extract)
}

// RunBatch invokes fn once per reference and aggregates the usable records.
// A single reference's failure never aborts the batch. Output preserves input
// order regardless of worker count, so downstream filtering sees a stable
// ordering either way.
func RunBatch(ctx context.Context, references []string, cfg BatchConfig, fn ExtractFunc) BatchResult {
	if cfg.Workers > 1 {
		return runParallel(ctx, references, cfg.Workers, fn)
	}
	return runSequential(ctx, references, cfg.Pacing, fn)
}

func runSequential(ctx context.Context, references []string, pacing time.Duration, fn ExtractFunc) BatchResult {
	result := BatchResult{Attempted: len(references)}

	for i, ref := range references {
		log.Printf("INFO: [%d/%d] Extracting %s", i+1, len(references), ref)

		article, err := fn(ctx, ref)
		keepIfUsable(&result, ref, article, err)

		if i < len(references)-1 {
			if err := sleepCtx(ctx, pacing); err != nil {
				log.Printf("WARN: Batch canceled after %d of %d references", i+1, len(references))
				break
			}
		}
	}

	log.Printf("INFO: Extracted %d of %d references (%d dropped)",
		result.Extracted, result.Attempted, result.Dropped)
	return result
}

// runParallel fans references out to a bounded worker pool. Each reference is
// an independent unit of work; results land in an indexed slice and are
// compacted afterwards to preserve input order.
func runParallel(ctx context.Context, references []string, workers int, fn ExtractFunc) BatchResult {
	result := BatchResult{Attempted: len(references)}

	type outcome struct {
		article *medharvest.Article
		err     error
	}
	outcomes := make([]outcome, len(references))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, ref := range references {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			defer func() { <-sem }()
			article, err := fn(ctx, ref)
			outcomes[i] = outcome{article: article, err: err}
		}(i, ref)
	}
	wg.Wait()

	for i, out := range outcomes {
		keepIfUsable(&result, references[i], out.article, out.err)
	}

	log.Printf("INFO: Extracted %d of %d references (%d dropped, %d workers)",
		result.Extracted, result.Attempted, result.Dropped, workers)
	return result
}

// keepIfUsable retains the record only when extraction succeeded and the
// title is non-empty; every other outcome is counted and dropped.
func keepIfUsable(result *BatchResult, ref string, article *medharvest.Article, err error) {
	if err != nil {
		log.Printf("WARN: Failed to extract %s: %v", ref, err)
		result.Dropped++
		return
	}
	if article == nil || !article.Usable() {
		log.Printf("WARN: No usable metadata for %s", ref)
		result.Dropped++
		return
	}
	result.Articles = append(result.Articles, *article)
	result.Extracted++
}
