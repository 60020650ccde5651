package main

import (
	"fmt"
	"os"

	"github.com/pevans/medharvest/config"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Environment overrides, applied before per-command flags.
	cfg.DataDir = getEnv("MEDHARVEST_DATA_DIR", cfg.DataDir)
	cfg.Registry = getEnv("MEDHARVEST_REGISTRY", cfg.Registry)

	subcommand := os.Args[1]
	args := os.Args[2:]

	switch subcommand {
	case "collect":
		handleCollect(cfg, args)
	case "extract":
		handleExtract(cfg, args)
	case "filter":
		handleFilter(cfg, args)
	case "run":
		handleRun(cfg, args)
	case "tags":
		handleTags(cfg, args)
	case "watch":
		handleWatch(cfg, args)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("medharvest - Medium article metadata harvester")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  medharvest <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  collect    Collect article links from tag feeds")
	fmt.Println("  extract    Extract metadata for collected links")
	fmt.Println("  filter     Filter extracted records by year and categories")
	fmt.Println("  run        Run the full pipeline (collect, extract, filter)")
	fmt.Println("  tags       Manage the tag registry")
	fmt.Println("  watch      Run the pipeline on a cron schedule")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  MEDHARVEST_DATA_DIR  Data directory (default: data)")
	fmt.Println("  MEDHARVEST_REGISTRY  Tag registry database (default: medharvest.db)")
	fmt.Println()
	fmt.Println("Configuration is read from ~/.medharvest/config.yaml when present.")
}
