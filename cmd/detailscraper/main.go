package main

import (
	"context"
	"flag"

	"bizbuysell-scraper/config"
	"bizbuysell-scraper/internal/app"
	"bizbuysell-scraper/logger"
)

func main() {
	input := flag.String("input", "", "listing URLs CSV to process (defaults to the latest file)")
	maxListings := flag.Int("max-listings", 0, "cap on listings to process (overrides MAX_LISTINGS)")
	flag.Parse()

	a, err := app.Setup(context.Background(), func(cfg *config.Config) {
		if *maxListings > 0 {
			cfg.MaxListings = *maxListings
		}
	})
	if err != nil {
		logger.Fatal("Setup failed: %v", err)
	}
	defer a.Close()

	result, err := a.Worker.RunDetails(*input)
	if err != nil {
		logger.Fatal("Detail scraping failed: %v", err)
	}

	logger.Info("Wrote %d detail records (%d real, %d mock) into %s",
		result.Written, result.Real, result.Mock, result.OutputPath)
}
