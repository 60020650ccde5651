package main

import (
	"fmt"
	"os"

	"github.com/pevans/medharvest/config"
	"github.com/pevans/medharvest/tags"
)

func handleTags(cfg *config.Config, args []string) {
	if len(args) < 1 {
		printTagsUsage()
		os.Exit(1)
	}

	registry, err := tags.NewStore(cfg.Registry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open tag registry: %v\n", err)
		os.Exit(1)
	}
	defer registry.Close()

	action := args[0]
	switch action {
	case "list":
		listTags(registry)
	case "add":
		requireTagName(args, "add")
		addTag(registry, args[1])
	case "enable":
		requireTagName(args, "enable")
		setTagEnabled(registry, args[1], true)
	case "disable":
		requireTagName(args, "disable")
		setTagEnabled(registry, args[1], false)
	case "delete":
		requireTagName(args, "delete")
		deleteTag(registry, args[1])
	case "runs":
		requireTagName(args, "runs")
		listRuns(registry, args[1])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown tags action: %s\n\n", action)
		printTagsUsage()
		os.Exit(1)
	}
}

func requireTagName(args []string, action string) {
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Error: tags %s requires a tag name\n", action)
		os.Exit(1)
	}
}

func listTags(registry *tags.Store) {
	all, err := registry.ListTags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list tags: %v\n", err)
		os.Exit(1)
	}
	if len(all) == 0 {
		fmt.Println("No tags registered.")
		return
	}

	for _, tag := range all {
		state := "disabled"
		if tag.IsEnabled() {
			state = "enabled"
		}
		line := fmt.Sprintf("%-30s %-8s %d links", tag.Name, state, tag.LastLinkCount)
		if tag.LastRunAt != nil {
			line += fmt.Sprintf(" (last run %s)", tag.LastRunAt.Format("2006-01-02 15:04"))
		}
		if tag.RunErrorCount > 0 {
			line += fmt.Sprintf(" [%d consecutive errors]", tag.RunErrorCount)
		}
		fmt.Println(line)
	}
}

func addTag(registry *tags.Store, name string) {
	if _, err := registry.CreateTag(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to add tag: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Added tag %s (enabled)\n", name)
}

func setTagEnabled(registry *tags.Store, name string, enabled bool) {
	if err := registry.SetEnabled(name, enabled); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to update tag: %v\n", err)
		os.Exit(1)
	}
	if enabled {
		fmt.Printf("Enabled tag %s\n", name)
	} else {
		fmt.Printf("Disabled tag %s\n", name)
	}
}

func deleteTag(registry *tags.Store, name string) {
	if err := registry.DeleteTag(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to delete tag: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted tag %s\n", name)
}

func listRuns(registry *tags.Store, name string) {
	runs, err := registry.ListRuns(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list runs: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Printf("No runs recorded for %s.\n", name)
		return
	}

	for _, run := range runs {
		fmt.Printf("%s  %s  %4d links  %s\n",
			run.RunID, run.StartedAt.Format("2006-01-02 15:04"),
			run.LinksCollected, run.StopReason)
	}
}

func printTagsUsage() {
	fmt.Println("Usage: medharvest tags <action> [tag]")
	fmt.Println()
	fmt.Println("Actions:")
	fmt.Println("  list           List registered tags")
	fmt.Println("  add <tag>      Register a tag for harvesting")
	fmt.Println("  enable <tag>   Enable a tag")
	fmt.Println("  disable <tag>  Disable a tag")
	fmt.Println("  delete <tag>   Remove a tag and its run history")
	fmt.Println("  runs <tag>     List recorded runs for a tag")
}
