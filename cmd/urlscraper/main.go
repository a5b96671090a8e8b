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
	flag.Parse()

	a, err := app.Setup(context.Background(), func(cfg *config.Config) {
		if *pages > 0 {
			cfg.MaxPages = *pages
		}
	})
	if err != nil {
		logger.Fatal("Setup failed: %v", err)
	}
	defer a.Close()

	result, err := a.Worker.RunURLs()
	if err != nil {
		logger.Fatal("URL scraping failed: %v", err)
	}

	logger.Info("Collected %d new listings (%d duplicates) into %s",
		result.Written, result.Duplicates, result.OutputPath)
}
