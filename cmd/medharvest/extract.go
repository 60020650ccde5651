package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pevans/medharvest/config"
	"github.com/pevans/medharvest/extract"
	"github.com/pevans/medharvest/render"
	"github.com/pevans/medharvest/storage"
)

func handleExtract(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	tagList := fs.String("tags", "", "Comma-separated tags whose link sets to extract (default: config)")
	workers := fs.Int("workers", cfg.Extractor.Workers, "Parallel extraction workers")
	pacing := fs.Float64("pacing", cfg.Extractor.PacingSecs, "Seconds between sequential extractions")
	out := fs.String("out", "articles", "Base name for the exported record files")
	headed := fs.Bool("headed", false, "Run the browser with a visible window")
	fs.Parse(args)

	names := cfg.Tags
	if *tagList != "" {
		names = splitTags(*tagList)
	}
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no tags configured")
		os.Exit(1)
	}

	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open data directory: %v\n", err)
		os.Exit(1)
	}

	if err := extractLinks(context.Background(), cfg, names, *workers, *pacing, *out, *headed, store); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// extractLinks merges the saved link sets for the given tags and extracts a
// metadata record for every reference, exporting whatever survived.
func extractLinks(ctx context.Context, cfg *config.Config, names []string, workers int, pacing float64, out string, headed bool, store *storage.Store) error {
	references, err := store.MergeLinks(names)
	if err != nil {
		return fmt.Errorf("failed to load link sets: %w", err)
	}
	if len(references) == 0 {
		return fmt.Errorf("no links collected for tags %s; run collect first", strings.Join(names, ", "))
	}

	sessions := func() (render.Session, error) {
		return render.NewChromeSession(browserOptions(cfg, headed))
	}
	extractor := extract.New(sessions, extract.DefaultConfig())

	batchCfg := extract.DefaultBatchConfig()
	batchCfg.Workers = workers
	if pacing > 0 {
		batchCfg.Pacing = time.Duration(pacing * float64(time.Second))
	}

	result := extractor.Batch(ctx, references, batchCfg)

	jsonPath, csvPath, err := store.SaveArticles(out, result.Articles)
	if err != nil {
		return fmt.Errorf("failed to export records: %w", err)
	}

	fmt.Printf("extracted %d of %d references (%d dropped)\n",
		result.Extracted, result.Attempted, result.Dropped)
	fmt.Printf("wrote %s and %s\n", jsonPath, csvPath)
	return nil
}

func splitTags(value string) []string {
	var names []string
	for _, name := range strings.Split(value, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
