package worker

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizbuysell-scraper/config"
	"bizbuysell-scraper/internal/dedup"
	"bizbuysell-scraper/internal/listing"
	"bizbuysell-scraper/internal/scraper"
	"bizbuysell-scraper/services/cache"
	"bizbuysell-scraper/services/storage"
)

type fakeURLStage struct {
	result scraper.URLStageResult
	err    error
	runs   int
}

func (f *fakeURLStage) Run() (scraper.URLStageResult, error) {
	f.runs++
	return f.result, f.err
}

type fakeDetailStage struct {
	result scraper.DetailStageResult
	err    error
	input  string
}

func (f *fakeDetailStage) Run(input string) (scraper.DetailStageResult, error) {
	f.input = input
	return f.result, f.err
}

type fakePublisher struct {
	published []listing.Detail
	trimmed   int
	pubErr    error
}

func (f *fakePublisher) Publish(d listing.Detail) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.published = append(f.published, d)
	return nil
}

func (f *fakePublisher) TrimStreams() error {
	f.trimmed++
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func TestRunCombined(t *testing.T) {
	reportDir := t.TempDir()

	urls := &fakeURLStage{result: scraper.URLStageResult{
		OutputPath: "data/listing_urls_20250301.csv",
		Written:    3,
	}}
	details := &fakeDetailStage{result: scraper.DetailStageResult{
		OutputPath: "data/listing_details_20250301.csv",
		Written:    3,
		Details: []listing.Detail{
			{ListingID: "1", Source: listing.SourceReal},
			{ListingID: "2", Source: listing.SourceMock},
		},
	}}
	pub := &fakePublisher{}

	w := NewWorker(urls, details, pub, reportDir)
	require.NoError(t, w.RunCombined())

	// Detail stage consumed the URL stage output directly
	assert.Equal(t, "data/listing_urls_20250301.csv", details.input)
	assert.Len(t, pub.published, 2)
	assert.Equal(t, 1, pub.trimmed)

	// Daily report exists
	day := time.Now().Format("20060102")
	content, err := os.ReadFile(filepath.Join(reportDir, "daily_report_"+day+".txt"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "URL stage")
	assert.Contains(t, string(content), "Detail stage")
}

// TestRunCombinedWithRealStages drives the combined run through real stages
// wired the way the application wires them (one dedup set per stage), so the
// freshly written URL file actually yields detail rows.
func TestRunCombinedWithRealStages(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/index/page1":
			fmt.Fprint(w, `<html><head><script type="application/ld+json">{"@type": "SearchResultsPage", "about": [`+
				`{"@type": "ListItem", "item": {"@type": "Product", "name": "Coffee Shop", "url": "`+server.URL+`/listing/1111111/", "productId": "1111111"}},`+
				`{"@type": "ListItem", "item": {"@type": "Product", "name": "Laundromat", "url": "`+server.URL+`/listing/2222222/", "productId": "2222222"}}`+
				`]}</script></head><body></body></html>`)
		case "/listing/1111111/", "/listing/2222222/":
			fmt.Fprint(w, `<html><head><script type="application/ld+json">
				{"@type": "Product", "name": "Scraped Listing", "offers": {"price": 150000}}
				</script></head><body><span class="f-l">Austin, TX</span></body></html>`)
		default:
			fmt.Fprint(w, `<html><body></body></html>`)
		}
	}))
	defer server.Close()

	cfg := &config.Config{
		OutputDir:       t.TempDir(),
		ListingIndexURL: server.URL + "/index/page",
		MaxPages:        2,
		FetchBlock:      time.Minute,
	}
	fetcher := scraper.NewFetcher(nil, cache.NewMemoryService(), time.Minute)

	w := NewWorker(
		scraper.NewURLStage(cfg, fetcher, dedup.NewSet()),
		scraper.NewDetailStage(cfg, fetcher, dedup.NewSet()),
		nil,
		t.TempDir(),
	)
	require.NoError(t, w.RunCombined())

	urlsPath := storage.DatedPath(cfg.OutputDir, "listing_urls", time.Now())
	stubs, err := storage.ReadStubs(urlsPath)
	require.NoError(t, err)
	require.Len(t, stubs, 2)

	// The detail CSV holds the fetched rows, not just the header
	detailsPath := storage.DatedPath(cfg.OutputDir, "listing_details", time.Now())
	ids, err := storage.ReadColumn(detailsPath, "listing_id")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1111111", "2222222"}, ids)

	sources, err := storage.ReadColumn(detailsPath, "data_source")
	require.NoError(t, err)
	assert.Equal(t, []string{"real_scraping", "real_scraping"}, sources)
}

func TestRunCombinedURLStageFailure(t *testing.T) {
	urls := &fakeURLStage{err: errors.New("disk full")}
	details := &fakeDetailStage{}

	w := NewWorker(urls, details, nil, "")
	err := w.RunCombined()
	assert.Error(t, err)
	assert.Empty(t, details.input)
}

func TestRunDetailsPublishes(t *testing.T) {
	details := &fakeDetailStage{result: scraper.DetailStageResult{
		Details: []listing.Detail{{ListingID: "1"}},
	}}
	pub := &fakePublisher{}

	w := NewWorker(&fakeURLStage{}, details, pub, "")
	result, err := w.RunDetails("some_input.csv")
	require.NoError(t, err)
	assert.Equal(t, "some_input.csv", details.input)
	assert.Len(t, result.Details, 1)
	assert.Len(t, pub.published, 1)
}

func TestRunDetailsWithoutPublisher(t *testing.T) {
	details := &fakeDetailStage{result: scraper.DetailStageResult{
		Details: []listing.Detail{{ListingID: "1"}},
	}}

	w := NewWorker(&fakeURLStage{}, details, nil, "")
	_, err := w.RunDetails("")
	assert.NoError(t, err)
}

func TestPublishFailureDoesNotAbort(t *testing.T) {
	details := &fakeDetailStage{result: scraper.DetailStageResult{
		Details: []listing.Detail{{ListingID: "1"}, {ListingID: "2"}},
	}}
	pub := &fakePublisher{pubErr: errors.New("stream unavailable")}

	w := NewWorker(&fakeURLStage{}, details, pub, "")
	_, err := w.RunDetails("")
	assert.NoError(t, err)
	assert.Empty(t, pub.published)
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	err := WriteReport(dir,
		scraper.URLStageResult{PagesFetched: 2, Extracted: 40, Written: 35, Duplicates: 5},
		scraper.DetailStageResult{
			Processed: 35, Written: 35, Real: 30, Mock: 5,
			OutputPath: "data/listing_details_20250301.csv",
			Errors:     []string{"failed to fetch https://example.com/listing/9/: timeout"},
		},
		90*time.Second, now)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "daily_report_20250301.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "pages=2 extracted=40 written=35 duplicates=5")
	assert.Contains(t, string(content), "real=30 mock=5")
	assert.Contains(t, string(content), "1m30s")
	assert.Contains(t, string(content), "Errors: 1 recovered")
	assert.Contains(t, string(content), "timeout")
}

func TestWriteReportNoErrors(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 2, 18, 0, 0, 0, time.UTC)

	err := WriteReport(dir, scraper.URLStageResult{}, scraper.DetailStageResult{}, time.Second, now)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "daily_report_20250302.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Errors: none")
}
