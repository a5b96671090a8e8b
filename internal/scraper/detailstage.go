package scraper

import (
	"fmt"
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

// DetailStageResult summarizes one detail-stage run.
type DetailStageResult struct {
	InputPath  string
	OutputPath string
	Processed  int
	Written    int
	Duplicates int
	Real       int
	Mock       int

	// Details holds the records written this run, in order, for publishing.
	Details []listing.Detail

	// Errors holds the per-listing failures the run recovered from, for the
	// daily report.
	Errors []string
}

// DetailStage visits each collected listing URL and writes the full record
// to the day's CSV file.
type DetailStage struct {
	cfg       *config.Config
	fetcher   *Fetcher
	selectors extract.Selectors
	set       *dedup.Set
	now       func() time.Time
	log       *logger.Logger
}

// NewDetailStage creates the detail collection stage.
func NewDetailStage(cfg *config.Config, fetcher *Fetcher, set *dedup.Set) *DetailStage {
	return &DetailStage{
		cfg:       cfg,
		fetcher:   fetcher,
		selectors: extract.DefaultSelectors(),
		set:       set,
		now:       time.Now,
		log:       logger.ForStage("details"),
	}
}

// Run processes the stubs from input (the latest URL-stage file when empty)
// and appends one detail row per new listing. Each row is flushed as it is
// written, so an interrupted run leaves only complete rows. Failed listings
// fall back to a generated record that keeps the stub's identity.
func (s *DetailStage) Run(input string) (DetailStageResult, error) {
	var result DetailStageResult

	if input == "" {
		latest, err := storage.LatestFile(s.cfg.OutputDir, "listing_urls")
		if err != nil {
			return result, apperr.NewIO("details", "no input file available", err)
		}
		input = latest
	}
	result.InputPath = input

	stubs, err := storage.ReadStubs(input)
	if err != nil {
		return result, apperr.NewIO("details", "failed to read input file", err)
	}
	if len(stubs) == 0 {
		return result, apperr.NewIO("details", fmt.Sprintf("input file %s has no listings", input), nil)
	}

	now := s.now()
	result.OutputPath = storage.DatedPath(s.cfg.OutputDir, "listing_details", now)

	if err := s.set.Seed(result.OutputPath); err != nil {
		s.log.Warn().Err(err).Msg("Failed to seed dedup set from prior run, continuing")
	}

	writer, err := storage.NewWriter(result.OutputPath, listing.DetailHeader)
	if err != nil {
		return result, apperr.NewIO("details", "failed to open output file", err)
	}
	defer writer.Close()

	for _, stub := range stubs {
		if s.cfg.MaxListings > 0 && result.Processed >= s.cfg.MaxListings {
			s.log.Info().Int("max", s.cfg.MaxListings).Msg("Reached listing limit, stopping")
			break
		}

		if s.set.Seen(stub.Key()) {
			result.Duplicates++
			continue
		}
		result.Processed++

		detail, err := s.resolve(stub, &result)
		if err != nil {
			return result, err
		}

		// Two stubs can extract to the same productId; the write is gated
		// on the extracted key, not the stub key.
		if !s.set.Mark(detail.Key()) {
			result.Duplicates++
			continue
		}
		if err := writer.Write(detail.Record()); err != nil {
			return result, apperr.NewIO("details", "failed to write detail row", err)
		}
		result.Written++
		result.Details = append(result.Details, detail)

		if detail.Source == listing.SourceMock {
			result.Mock++
		} else {
			result.Real++
		}
	}

	s.log.Info().
		Int("processed", result.Processed).
		Int("written", result.Written).
		Int("duplicates", result.Duplicates).
		Int("real", result.Real).
		Int("mock", result.Mock).
		Str("output", result.OutputPath).
		Msg("Detail stage completed")

	return result, nil
}

// resolve is the single decision point for the mock fallback: a recoverable
// failure is recorded on the result and yields a generated record carrying
// the stub's identity, anything else aborts the stage.
func (s *DetailStage) resolve(stub listing.Stub, result *DetailStageResult) (listing.Detail, error) {
	detail, err := s.scrapeOne(stub)
	if err == nil {
		return detail, nil
	}
	if apperr.IsRecoverable(err) {
		s.log.Warn().
			Err(err).
			Str("url", stub.URL).
			Msg("Listing failed, substituting generated record")
		result.Errors = append(result.Errors, err.Error())
		return mockdata.DetailFromStub(stub, s.now()), nil
	}
	return listing.Detail{}, err
}

func (s *DetailStage) scrapeOne(stub listing.Stub) (listing.Detail, error) {
	body, err := s.fetcher.Fetch("details", stub.URL, s.cfg.ListingDelay)
	if err != nil {
		return listing.Detail{}, err
	}

	detail, err := extract.ParseDetail(body, s.selectors, stub, s.now())
	if err != nil {
		return listing.Detail{}, apperr.NewParsing("details", "failed to extract listing", err)
	}
	return detail, nil
}
