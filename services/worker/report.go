package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bizbuysell-scraper/internal/scraper"
)

// WriteReport writes the daily summary file (daily_report_YYYYMMDD.txt).
// Rerunning the same day overwrites the file with the latest run.
func WriteReport(dir string, urls scraper.URLStageResult, details scraper.DetailStageResult, duration time.Duration, now time.Time) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	day := now.Format("20060102")
	path := filepath.Join(dir, fmt.Sprintf("daily_report_%s.txt", day))

	errLine := "none"
	if all := append(append([]string{}, urls.Errors...), details.Errors...); len(all) > 0 {
		errLine = fmt.Sprintf("%d recovered\n  - %s", len(all), strings.Join(all, "\n  - "))
	}

	content := fmt.Sprintf(
		"Daily report %s\n"+
			"URL stage: pages=%d extracted=%d written=%d duplicates=%d mock=%t\n"+
			"Detail stage: processed=%d written=%d duplicates=%d real=%d mock=%d\n"+
			"Duration: %s\n"+
			"Output: %s\n"+
			"Errors: %s\n",
		day,
		urls.PagesFetched, urls.Extracted, urls.Written, urls.Duplicates, urls.MockUsed,
		details.Processed, details.Written, details.Duplicates, details.Real, details.Mock,
		duration.Round(time.Second),
		details.OutputPath,
		errLine,
	)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
