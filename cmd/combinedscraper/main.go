package main

import (
	"context"
	"flag"

	"bizbuysell-scraper/config"
	"bizbuysell-scraper/internal/app"
	"bizbuysell-scraper/logger"
)

func main() {
	pages := flag.Int("pages", 0, "number of index pages to fetch (overrides MAX_PAGES)")
	maxListings := flag.Int("max-listings", 0, "cap on listings to process (overrides MAX_LISTINGS)")
	flag.Parse()

	a, err := app.Setup(context.Background(), func(cfg *config.Config) {
		if *pages > 0 {
			cfg.MaxPages = *pages
		}
		if *maxListings > 0 {
			cfg.MaxListings = *maxListings
		}
	})
	if err != nil {
		logger.Fatal("Setup failed: %v", err)
	}
	defer a.Close()

	if err := a.Worker.RunCombined(); err != nil {
		logger.Fatal("Combined run failed: %v", err)
	}
}
