package worker

import (
	"time"

	"bizbuysell-scraper/internal/scraper"
	"bizbuysell-scraper/logger"
	"bizbuysell-scraper/services/publisher"
)

// URLStage collects listing stubs into the day's URL file.
type URLStage interface {
	Run() (scraper.URLStageResult, error)
}

// DetailStage turns collected stubs into full records. An empty input path
// means "use the latest URL file".
type DetailStage interface {
	Run(input string) (scraper.DetailStageResult, error)
}

// Worker orchestrates the pipeline stages, publishes the resulting records
// and writes the daily report.
type Worker struct {
	urls      URLStage
	details   DetailStage
	publisher publisher.Publisher
	reportDir string
	log       *logger.Logger
}

// NewWorker creates a worker. publisher may be nil when no stream is
// configured; reportDir may be empty to skip report writing.
func NewWorker(urls URLStage, details DetailStage, pub publisher.Publisher, reportDir string) *Worker {
	return &Worker{
		urls:      urls,
		details:   details,
		publisher: pub,
		reportDir: reportDir,
		log:       logger.ForComponent("worker"),
	}
}

// RunURLs runs only the URL stage.
func (w *Worker) RunURLs() (scraper.URLStageResult, error) {
	return w.urls.Run()
}

// RunDetails runs only the detail stage and publishes its records.
func (w *Worker) RunDetails(input string) (scraper.DetailStageResult, error) {
	result, err := w.details.Run(input)
	if err != nil {
		return result, err
	}
	w.publish(result)
	return result, nil
}

// RunCombined runs both stages back to back, feeding the URL stage output
// straight into the detail stage, then writes the daily report.
func (w *Worker) RunCombined() error {
	start := time.Now()

	urlResult, err := w.urls.Run()
	if err != nil {
		return err
	}

	detailResult, err := w.details.Run(urlResult.OutputPath)
	if err != nil {
		return err
	}
	w.publish(detailResult)

	duration := time.Since(start)
	w.log.Info().
		Int("urls_written", urlResult.Written).
		Int("details_written", detailResult.Written).
		Dur("duration", duration).
		Msg("Combined run completed")

	if w.reportDir != "" {
		if err := WriteReport(w.reportDir, urlResult, detailResult, duration, time.Now()); err != nil {
			w.log.Warn().Err(err).Msg("Failed to write daily report")
		}
	}

	return nil
}

// publish sends each record to the stream and trims afterwards. Publishing
// failures are logged and skipped; the CSV already holds the data.
func (w *Worker) publish(result scraper.DetailStageResult) {
	if w.publisher == nil || len(result.Details) == 0 {
		return
	}

	published := 0
	for _, detail := range result.Details {
		if err := w.publisher.Publish(detail); err != nil {
			w.log.Error().Err(err).Str("listing_id", detail.ListingID).Msg("Failed to publish record")
			continue
		}
		published++
	}

	if err := w.publisher.TrimStreams(); err != nil {
		w.log.Error().Err(err).Msg("Failed to trim streams")
	}

	w.log.Info().
		Int("published", published).
		Int("total", len(result.Details)).
		Msg("Published records")
}
