package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pevans/medharvest"
	"github.com/pevans/medharvest/config"
	"github.com/pevans/medharvest/storage"
)

func handleFilter(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	categories := fs.String("categories", "", "Comma-separated categories every record must carry (default: config tags)")
	year := fs.Int("year", cfg.Year, "Publication year records must match")
	in := fs.String("in", "articles", "Base name of the record set to filter")
	out := fs.String("out", "filtered_articles", "Base name for the filtered record files")
	fs.Parse(args)

	required := cfg.Tags
	if *categories != "" {
		required = splitTags(*categories)
	}

	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open data directory: %v\n", err)
		os.Exit(1)
	}

	if err := filterRecords(store, *in, *out, required, *year); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func filterRecords(store *storage.Store, in, out string, required []string, year int) error {
	articles, err := store.LoadArticles(in)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	if len(articles) == 0 {
		return fmt.Errorf("no records in %s; run extract first", in)
	}

	kept := medharvest.FilterArticles(articles, required, year)

	jsonPath, csvPath, err := store.SaveArticles(out, kept)
	if err != nil {
		return fmt.Errorf("failed to export filtered records: %w", err)
	}

	fmt.Printf("kept %d of %d records\n", len(kept), len(articles))
	fmt.Printf("wrote %s and %s\n", jsonPath, csvPath)
	return nil
}
