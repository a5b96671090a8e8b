package scraper

import (
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"bizbuysell-scraper/helpers"
	"bizbuysell-scraper/logger"
	apperr "bizbuysell-scraper/pkg/errors"
	"bizbuysell-scraper/services/cache"
)

// blockKey marks a rate-limit block window in the cache. While the key is
// set every fetch short-circuits instead of hammering the site.
const blockKey = "fetch_blocked"

// Fetcher wraps page fetching with politeness delays and a shared block
// window after rate-limit responses.
type Fetcher struct {
	client *http.Client
	cache  cache.CacheService
	block  time.Duration
	log    *logger.Logger
}

// NewFetcher creates a fetcher. client may be nil to use the default; the
// cache records the block window, which memcached makes visible across
// concurrent runs.
func NewFetcher(client *http.Client, cacheSvc cache.CacheService, block time.Duration) *Fetcher {
	if client == nil {
		client = helpers.DefaultClient
	}
	return &Fetcher{
		client: client,
		cache:  cacheSvc,
		block:  block,
		log:    logger.ForComponent("fetcher"),
	}
}

// Fetch sleeps for the politeness delay, then performs a single GET attempt.
// There are no retries; failures surface as network errors and the caller
// decides whether to substitute mock data.
func (f *Fetcher) Fetch(stage, url string, delay time.Duration) (io.Reader, error) {
	if f.blocked() {
		return nil, apperr.NewNetwork(stage, "fetching is blocked after a rate-limit response", nil)
	}

	if delay > 0 {
		time.Sleep(delay)
	}

	body, err := helpers.FetchWithClient(f.client, url)
	if err != nil {
		if stderrors.Is(err, helpers.ErrRateLimited) {
			f.setBlock()
		}
		return nil, apperr.NewNetwork(stage, "failed to fetch "+url, err)
	}
	return body, nil
}

func (f *Fetcher) blocked() bool {
	if f.cache == nil {
		return false
	}
	_, err := f.cache.Get(blockKey)
	if err == nil {
		return true
	}
	if !stderrors.Is(err, cache.ErrCacheMiss) {
		f.log.Warn().Err(err).Msg("Cache lookup failed, assuming not blocked")
	}
	return false
}

func (f *Fetcher) setBlock() {
	if f.cache == nil || f.block <= 0 {
		return
	}
	if err := f.cache.Set(blockKey, []byte("1"), f.block); err != nil {
		f.log.Warn().Err(err).Msg("Failed to set fetch block")
		return
	}
	f.log.Warn().
		Dur("block", f.block).
		Msg("Rate limited, blocking further fetches")
}
