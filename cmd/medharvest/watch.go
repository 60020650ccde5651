package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pevans/medharvest/config"
	"github.com/robfig/cron/v3"
)

func handleWatch(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	schedule := fs.String("schedule", cfg.Schedule, "Cron expression for scheduled harvests")
	tagList := fs.String("tags", "", "Comma-separated tags to harvest (default: registry or config)")
	immediate := fs.Bool("now", false, "Run one harvest immediately before scheduling")
	fs.Parse(args)

	harvest := func() {
		log.Printf("INFO: starting scheduled harvest")
		if err := runPipeline(context.Background(), cfg, *tagList, false); err != nil {
			log.Printf("ERROR: scheduled harvest failed: %v", err)
			return
		}
		log.Printf("INFO: scheduled harvest finished")
	}

	if *immediate {
		harvest()
	}

	c := cron.New()
	if _, err := c.AddFunc(*schedule, harvest); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid schedule %q: %v\n", *schedule, err)
		os.Exit(1)
	}
	c.Start()
	log.Printf("INFO: watching on schedule %q", *schedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("INFO: shutting down")
	<-c.Stop().Done()
}
