package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Output directories
	OutputDir string
	ReportDir string
	LogDir    string

	// Scrape targets and limits
	ListingIndexURL string
	MaxPages        int
	MaxListings     int

	// Politeness delays
	PageDelay    time.Duration
	ListingDelay time.Duration

	// Block window applied after a rate-limit response
	FetchBlock time.Duration

	// Memcache configuration (optional; in-memory cache when empty)
	MemcacheAddr string

	// Redis configuration (optional; publishing disabled when empty)
	RedisAddr        string
	RedisDB          int
	RedisStream      string
	RedisStreamCount int
	RedisStreamMax   int64

	// Proxy list API (optional; direct connections when empty)
	ProxyListURL  string
	ProxyAPIToken string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	maxPages, _ := strconv.Atoi(getEnv("MAX_PAGES", "10"))
	maxListings, _ := strconv.Atoi(getEnv("MAX_LISTINGS", "0"))
	pageDelay, _ := strconv.Atoi(getEnv("PAGE_DELAY_SECONDS", "10"))
	listingDelay, _ := strconv.Atoi(getEnv("LISTING_DELAY_SECONDS", "2"))
	fetchBlock, _ := strconv.Atoi(getEnv("FETCH_BLOCK_SECONDS", "300"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMax, _ := strconv.ParseInt(getEnv("REDIS_STREAM_MAXLEN", "500"), 10, 64)

	return &Config{
		OutputDir:        getEnv("OUTPUT_DIR", "data"),
		ReportDir:        getEnv("REPORT_DIR", "reports"),
		LogDir:           getEnv("LOG_DIR", "logs"),
		ListingIndexURL:  getEnv("LISTING_INDEX_URL", "https://www.bizbuysell.com/businesses-for-sale/"),
		MaxPages:         maxPages,
		MaxListings:      maxListings,
		PageDelay:        time.Duration(pageDelay) * time.Second,
		ListingDelay:     time.Duration(listingDelay) * time.Second,
		FetchBlock:       time.Duration(fetchBlock) * time.Second,
		MemcacheAddr:     getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisDB:          redisDB,
		RedisStream:      getEnv("REDIS_STREAM", "listings"),
		RedisStreamCount: streamCount,
		RedisStreamMax:   streamMax,
		ProxyListURL:     getEnv("PROXY_LIST_URL", ""),
		ProxyAPIToken:    getEnv("PROXY_API_TOKEN", ""),
		Environment:      getEnv("ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if c.ListingIndexURL == "" {
		return fmt.Errorf("listing index URL must not be empty")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("MAX_PAGES must be at least 1, got %d", c.MaxPages)
	}
	if c.MaxListings < 0 {
		return fmt.Errorf("MAX_LISTINGS must not be negative, got %d", c.MaxListings)
	}
	if c.RedisStreamCount < 1 {
		return fmt.Errorf("REDIS_STREAM_COUNT must be at least 1, got %d", c.RedisStreamCount)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
