package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"bizbuysell-scraper/config"
	"bizbuysell-scraper/internal/dedup"
	"bizbuysell-scraper/internal/scraper"
	"bizbuysell-scraper/logger"
	apperr "bizbuysell-scraper/pkg/errors"
	"bizbuysell-scraper/services/cache"
	"bizbuysell-scraper/services/proxy"
	"bizbuysell-scraper/services/publisher"
	"bizbuysell-scraper/services/worker"
)

// App holds the wired pipeline and its services.
type App struct {
	Config    *config.Config
	Worker    *worker.Worker
	publisher publisher.Publisher
}

// Setup loads configuration, initializes logging and wires every service.
// override runs after loading so commands can apply their flags before the
// stages are built.
func Setup(ctx context.Context, override func(*config.Config)) (*App, error) {
	godotenv.Load()

	cfg := config.LoadConfig()
	if override != nil {
		override(cfg)
	}

	if err := logger.InitWithDir(cfg.LogDir); err != nil {
		logger.Warn("Logging to console only: %v", err)
	}
	log := logger.Default

	if err := cfg.Validate(); err != nil {
		return nil, apperr.NewConfiguration("invalid configuration", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, apperr.NewIO("setup", "failed to create output directory", err)
	}

	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		log.Info().Str("addr", cfg.MemcacheAddr).Msg("Using memcache for the fetch block window")
	} else {
		cacheSvc = cache.NewMemoryService()
	}

	pool := proxy.NewPool(cfg.ProxyListURL, cfg.ProxyAPIToken)
	var client *http.Client
	if pool.Enabled() {
		if err := pool.Refresh(); err != nil {
			log.Warn().Err(err).Msg("Proxy pool refresh failed, continuing with direct connections")
		} else {
			client = pool.Client(15 * time.Second)
		}
	}

	fetcher := scraper.NewFetcher(client, cacheSvc, cfg.FetchBlock)

	app := &App{
		Config: cfg,
	}

	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		pub = publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB,
			cfg.RedisStream, cfg.RedisStreamCount, cfg.RedisStreamMax)
		app.publisher = pub
		log.Info().
			Str("addr", cfg.RedisAddr).
			Str("stream", cfg.RedisStream).
			Msg("Publishing records to Redis")
	}

	// Each stage owns its dedup set, seeded from its own output file. A
	// shared set would make the detail stage skip every stub the URL stage
	// just wrote in a combined run.
	app.Worker = worker.NewWorker(
		scraper.NewURLStage(cfg, fetcher, dedup.NewSet()),
		scraper.NewDetailStage(cfg, fetcher, dedup.NewSet()),
		pub,
		cfg.ReportDir,
	)

	log.Info().
		Str("environment", cfg.Environment).
		Str("index_url", cfg.ListingIndexURL).
		Int("max_pages", cfg.MaxPages).
		Msg("Application configured")

	return app, nil
}

// Close releases held connections.
func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
}
