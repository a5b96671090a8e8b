package scraper

import (
	"strconv"
	"time"

	"bizbuysell-scraper/config"
	"bizbuysell-scraper/internal/dedup"
	"bizbuysell-scraper/internal/extract"
	"bizbuysell-scraper/internal/listing"
	"bizbuysell-scraper/internal/mockdata"
	"bizbuysell-scraper/logger"
	apperr "bizbuysell-scraper/pkg/errors"
	"bizbuysell-scraper/services/storage"
)

// mockStubCount is how many generated records stand in for a failed index
// run, enough for downstream development without flooding the output.
const mockStubCount = 10

// URLStageResult summarizes one URL-stage run.
type URLStageResult struct {
	OutputPath   string
	PagesFetched int
	Extracted    int
	Written      int
	Duplicates   int
	MockUsed     bool

	// Errors holds the fetch/parse failures the run recovered from, for the
	// daily report.
	Errors []string
}

// URLStage walks the paginated index and collects listing stubs into the
// day's CSV file.
type URLStage struct {
	cfg       *config.Config
	fetcher   *Fetcher
	selectors extract.Selectors
	set       *dedup.Set
	now       func() time.Time
	log       *logger.Logger
}

// NewURLStage creates the URL collection stage. The dedup set is owned by
// this stage alone; it is seeded from the stage's own output file.
func NewURLStage(cfg *config.Config, fetcher *Fetcher, set *dedup.Set) *URLStage {
	return &URLStage{
		cfg:       cfg,
		fetcher:   fetcher,
		selectors: extract.DefaultSelectors(),
		set:       set,
		now:       time.Now,
		log:       logger.ForStage("urls"),
	}
}

// Run fetches up to MaxPages index pages and appends new stubs to the dated
// CSV. Pagination stops at the first failed or empty page. When no stubs
// could be extracted at all, generated records are written instead so the
// run still produces output.
func (s *URLStage) Run() (URLStageResult, error) {
	now := s.now()
	result := URLStageResult{
		OutputPath: storage.DatedPath(s.cfg.OutputDir, "listing_urls", now),
	}

	if err := s.set.Seed(result.OutputPath); err != nil {
		s.log.Warn().Err(err).Msg("Failed to seed dedup set from prior run, continuing")
	}

	var stubs []listing.Stub
	for page := 1; page <= s.cfg.MaxPages; page++ {
		pageURL := s.cfg.ListingIndexURL + strconv.Itoa(page)

		body, err := s.fetcher.Fetch("urls", pageURL, s.cfg.PageDelay)
		if err != nil {
			s.log.Warn().Err(err).Int("page", page).Msg("Index fetch failed, stopping pagination")
			result.Errors = append(result.Errors, err.Error())
			break
		}
		result.PagesFetched++

		pageStubs, err := extract.ParseIndex(body, s.selectors, now)
		if err != nil {
			s.log.Warn().Err(err).Int("page", page).Msg("Index parse failed, stopping pagination")
			result.Errors = append(result.Errors, err.Error())
			break
		}
		if len(pageStubs) == 0 {
			s.log.Info().Int("page", page).Msg("No listings on page, stopping pagination")
			break
		}

		s.log.Info().
			Int("page", page).
			Int("count", len(pageStubs)).
			Msg("Extracted listings from index page")
		stubs = append(stubs, pageStubs...)
	}
	result.Extracted = len(stubs)

	// The fallback triggers only when nothing was extracted. A run where
	// every stub is a duplicate is a successful run with nothing new.
	if len(stubs) == 0 {
		s.log.Warn().Msg("No listings extracted, falling back to generated data")
		stubs = mockdata.Stubs(mockStubCount, now)
		result.MockUsed = true
	}

	writer, err := storage.NewWriter(result.OutputPath, listing.StubHeader)
	if err != nil {
		return result, apperr.NewIO("urls", "failed to open output file", err)
	}
	defer writer.Close()

	for _, stub := range stubs {
		if !s.set.Mark(stub.Key()) {
			result.Duplicates++
			continue
		}
		if err := writer.Write(stub.Record()); err != nil {
			return result, apperr.NewIO("urls", "failed to write listing row", err)
		}
		result.Written++
	}

	s.log.Info().
		Int("pages", result.PagesFetched).
		Int("extracted", result.Extracted).
		Int("written", result.Written).
		Int("duplicates", result.Duplicates).
		Bool("mock", result.MockUsed).
		Str("output", result.OutputPath).
		Msg("URL stage completed")

	return result, nil
}
