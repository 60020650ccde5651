package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pevans/medharvest/config"
	"github.com/pevans/medharvest/storage"
	"github.com/pevans/medharvest/tags"
)

func handleRun(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	tagList := fs.String("tags", "", "Comma-separated tags to harvest (default: registry or config)")
	headed := fs.Bool("headed", false, "Run the browser with a visible window")
	fs.Parse(args)

	if err := runPipeline(context.Background(), cfg, *tagList, *headed); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runPipeline performs a full harvest: collect links for every tag, extract
// metadata for the merged set, then filter on year and categories. The tag
// list is resolved here, against the pipeline's own registry connection.
func runPipeline(ctx context.Context, cfg *config.Config, tagList string, headed bool) error {
	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data directory: %w", err)
	}

	registry, err := tags.NewStore(cfg.Registry)
	if err != nil {
		return fmt.Errorf("failed to open tag registry: %w", err)
	}
	defer registry.Close()

	names, err := resolveTags(cfg, registry, tagList)
	if err != nil {
		return err
	}

	if err := collectTags(ctx, cfg, names, cfg.Collector.MaxScrolls, headed, store, registry); err != nil {
		return err
	}

	pacing := cfg.Extractor.PacingSecs
	if err := extractLinks(ctx, cfg, names, cfg.Extractor.Workers, pacing, "articles", headed, store); err != nil {
		return err
	}

	return filterRecords(store, "articles", "filtered_articles", names, cfg.Year)
}
