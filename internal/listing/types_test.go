package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStubKey(t *testing.T) {
	assert.Equal(t, "123", Stub{ListingID: "123", URL: "https://example.com/x/"}.Key())
	assert.Equal(t, "https://example.com/x/", Stub{URL: "https://example.com/x/"}.Key())
}

func TestStubRecordRoundTrip(t *testing.T) {
	stub := Stub{
		Title:     "Coffee Shop\nwith newline",
		URL:       "https://example.com/listing/123/",
		ListingID: "123",
		ScrapedAt: time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	rec := stub.Record()
	assert.Equal(t, "Coffee Shop with newline", rec[0])
	assert.Equal(t, "2025-03-01 10:30:00", rec[3])

	got, ok := StubFromRecord(rec)
	assert.True(t, ok)
	assert.Equal(t, stub.URL, got.URL)
	assert.Equal(t, stub.ListingID, got.ListingID)
	assert.Equal(t, stub.ScrapedAt, got.ScrapedAt)
}

func TestStubFromRecordRejectsMalformed(t *testing.T) {
	_, ok := StubFromRecord([]string{"too", "short"})
	assert.False(t, ok)

	_, ok = StubFromRecord([]string{"title only", "", "", "2025-03-01 10:30:00"})
	assert.False(t, ok)
}

func TestDetailRecord(t *testing.T) {
	d := Detail{
		Title:       "Bakery",
		Description: "Line one\r\nLine two",
		URL:         "https://example.com/listing/9/",
		ListingID:   "9",
		ScrapedAt:   time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
		Source:      SourceMock,
	}

	rec := d.Record()
	assert.Len(t, rec, len(DetailHeader))
	assert.Equal(t, "Line one  Line two", rec[6])
	assert.Equal(t, "mock_data", rec[len(rec)-1])
}
