package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/medharvest/collector"
	"github.com/pevans/medharvest/config"
	"github.com/pevans/medharvest/render"
	"github.com/pevans/medharvest/storage"
	"github.com/pevans/medharvest/tags"
)

func handleCollect(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("collect", flag.ExitOnError)
	tagList := fs.String("tags", "", "Comma-separated tags to collect (default: registry or config)")
	maxScrolls := fs.Int("max-scrolls", cfg.Collector.MaxScrolls, "Scroll iteration cap per tag")
	headed := fs.Bool("headed", false, "Run the browser with a visible window")
	fs.Parse(args)

	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open data directory: %v\n", err)
		os.Exit(1)
	}

	registry, err := tags.NewStore(cfg.Registry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open tag registry: %v\n", err)
		os.Exit(1)
	}
	defer registry.Close()

	names, err := resolveTags(cfg, registry, *tagList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := collectTags(context.Background(), cfg, names, *maxScrolls, *headed, store, registry); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// collectTags runs one collection pass over the given tags. Each tag gets a
// fresh browser session so one crashed tab cannot poison the rest of the run.
func collectTags(ctx context.Context, cfg *config.Config, names []string, maxScrolls int, headed bool, store *storage.Store, registry *tags.Store) error {
	colCfg := collectorConfig(cfg)
	if maxScrolls > 0 {
		colCfg.MaxScrolls = maxScrolls
	}

	for _, name := range names {
		started := time.Now().UTC()

		var seed []string
		if cfg.Collector.SeedFromFeed {
			links, err := collector.SeedFromFeed(ctx, name)
			if err != nil {
				log.Printf("WARN: feed seed for %s failed: %v", name, err)
			} else {
				seed = links
			}
		}

		session, err := render.NewChromeSession(browserOptions(cfg, headed))
		if err != nil {
			log.Printf("ERROR: failed to start browser for %s: %v", name, err)
			if rerr := registry.RecordRunError(name, err); rerr != nil {
				log.Printf("WARN: failed to record run error for %s: %v", name, rerr)
			}
			continue
		}

		result := collector.New(session, colCfg).Collect(ctx, name, seed)
		session.Close()

		path, err := store.SaveLinks(name, result.Links)
		if err != nil {
			log.Printf("ERROR: failed to save links for %s: %v", name, err)
			if rerr := registry.RecordRunError(name, err); rerr != nil {
				log.Printf("WARN: failed to record run error for %s: %v", name, rerr)
			}
			continue
		}

		run := tags.Run{
			RunID:          uuid.New(),
			Tag:            name,
			StartedAt:      started,
			FinishedAt:     time.Now().UTC(),
			LinksCollected: len(result.Links),
			StopReason:     result.StopReason,
		}
		if err := registry.RecordRun(run); err != nil {
			log.Printf("WARN: failed to record run for %s: %v", name, err)
		}

		fmt.Printf("%s: %d links (%d scrolls, %s) -> %s\n",
			name, len(result.Links), result.Scrolls, result.StopReason, path)
	}

	return nil
}

// resolveTags picks the tag list for a run: an explicit -tags flag wins, then
// enabled registry tags, then the configured defaults. The caller's open
// registry is reused rather than opening a second connection on the same
// database file.
func resolveTags(cfg *config.Config, registry *tags.Store, flagValue string) ([]string, error) {
	if flagValue != "" {
		names := splitTags(flagValue)
		if len(names) == 0 {
			return nil, fmt.Errorf("no usable tags in %q", flagValue)
		}
		return names, nil
	}

	enabled, err := registry.EnabledTags()
	if err == nil && len(enabled) > 0 {
		return enabled, nil
	}

	if len(cfg.Tags) == 0 {
		return nil, fmt.Errorf("no tags configured")
	}
	return cfg.Tags, nil
}

func browserOptions(cfg *config.Config, headed bool) render.Options {
	opts := render.DefaultOptions()
	opts.Headless = cfg.Browser.Headless && !headed
	if cfg.Browser.ChromePath != "" {
		opts.ChromePath = cfg.Browser.ChromePath
	}
	if cfg.Browser.UserAgent != "" {
		opts.UserAgent = cfg.Browser.UserAgent
	}
	return opts
}

func collectorConfig(cfg *config.Config) collector.Config {
	colCfg := collector.DefaultConfig()
	if cfg.Collector.MaxScrolls > 0 {
		colCfg.MaxScrolls = cfg.Collector.MaxScrolls
	}
	if cfg.Collector.ScrollPauseSecs > 0 {
		colCfg.ScrollPause = time.Duration(cfg.Collector.ScrollPauseSecs * float64(time.Second))
	}
	if cfg.Collector.StallLimit > 0 {
		colCfg.StallLimit = cfg.Collector.StallLimit
	}
	if cfg.Year > 0 {
		colCfg.CutoffYear = cfg.Year
	}
	return colCfg
}
