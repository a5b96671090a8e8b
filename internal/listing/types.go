package listing

import (
	"strings"
	"time"
)

// TimeFormat is the timestamp layout used in every CSV file. Prior runs are
// re-read with the same layout when seeding the dedup set.
const TimeFormat = "2006-01-02 15:04:05"

// Source marks whether a record came from a live fetch or the mock generator.
type Source string

const (
	SourceReal Source = "real_scraping"
	SourceMock Source = "mock_data"
)

// StubHeader is the column order of the URL-stage CSV.
var StubHeader = []string{"title", "url", "listing_id", "scraped_date"}

// DetailHeader is the column order of the detail-stage CSV.
var DetailHeader = []string{
	"title", "location", "asking_price", "gross_revenue", "established",
	"cashflow", "description", "url", "business_type", "listing_id",
	"broker_name", "broker_number", "scraped_date", "data_source",
}

// Stub is the minimal identifying record collected from an index page.
type Stub struct {
	Title     string
	URL       string
	ListingID string
	ScrapedAt time.Time
}

// Key returns the identity used for deduplication: the listing id, or the
// URL when the source page carried no id.
func (s Stub) Key() string {
	if s.ListingID != "" {
		return s.ListingID
	}
	return s.URL
}

// Record returns the stub as a CSV row in StubHeader order.
func (s Stub) Record() []string {
	return []string{
		clean(s.Title),
		clean(s.URL),
		clean(s.ListingID),
		s.ScrapedAt.Format(TimeFormat),
	}
}

// StubFromRecord rebuilds a stub from a CSV row in StubHeader order.
// The scraped_date column is tolerated if unparseable since only the
// identity fields matter downstream.
func StubFromRecord(rec []string) (Stub, bool) {
	if len(rec) < len(StubHeader) {
		return Stub{}, false
	}
	stub := Stub{
		Title:     rec[0],
		URL:       rec[1],
		ListingID: rec[2],
	}
	if t, err := time.Parse(TimeFormat, rec[3]); err == nil {
		stub.ScrapedAt = t
	}
	if stub.URL == "" && stub.ListingID == "" {
		return Stub{}, false
	}
	return stub, true
}

// Detail is the full record collected from an individual listing page.
// Fields that the page did not provide stay empty; a partial record is
// still written.
type Detail struct {
	Title        string
	Location     string
	AskingPrice  string
	GrossRevenue string
	Established  string
	Cashflow     string
	Description  string
	URL          string
	BusinessType string
	ListingID    string
	BrokerName   string
	BrokerNumber string
	ScrapedAt    time.Time
	Source       Source
}

// Key returns the identity used for deduplication.
func (d Detail) Key() string {
	if d.ListingID != "" {
		return d.ListingID
	}
	return d.URL
}

// Record returns the detail as a CSV row in DetailHeader order.
func (d Detail) Record() []string {
	return []string{
		clean(d.Title),
		clean(d.Location),
		clean(d.AskingPrice),
		clean(d.GrossRevenue),
		clean(d.Established),
		clean(d.Cashflow),
		clean(d.Description),
		clean(d.URL),
		clean(d.BusinessType),
		clean(d.ListingID),
		clean(d.BrokerName),
		clean(d.BrokerNumber),
		d.ScrapedAt.Format(TimeFormat),
		string(d.Source),
	}
}

// clean flattens newlines so a record always occupies one CSV row.
func clean(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.TrimSpace(value)
}
