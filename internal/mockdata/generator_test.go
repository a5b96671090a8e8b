package mockdata

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bizbuysell-scraper/internal/listing"
)

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestStubs(t *testing.T) {
	stubs := Stubs(5, testTime)
	assert.Len(t, stubs, 5)

	for _, stub := range stubs {
		assert.NotEmpty(t, stub.Title)
		assert.NotEmpty(t, stub.ListingID)
		assert.True(t, strings.HasPrefix(stub.URL, "https://www.bizbuysell.com/"))
		assert.Contains(t, stub.URL, stub.ListingID)
		assert.Equal(t, testTime, stub.ScrapedAt)
	}
}

func TestDetails(t *testing.T) {
	details := Details(5, testTime)
	assert.Len(t, details, 5)

	for _, d := range details {
		assert.NotEmpty(t, d.Title)
		assert.NotEmpty(t, d.Location)
		assert.NotEmpty(t, d.BusinessType)
		assert.NotEmpty(t, d.BrokerName)
		assert.True(t, strings.HasPrefix(d.AskingPrice, "$"))
		assert.True(t, strings.HasPrefix(d.Cashflow, "$"))
		assert.True(t, strings.HasPrefix(d.GrossRevenue, "$"))
		assert.Equal(t, listing.SourceMock, d.Source)
		assert.Equal(t, testTime, d.ScrapedAt)
	}
}

func TestDetailFromStubPreservesIdentity(t *testing.T) {
	stub := listing.Stub{
		Title:     "Profitable Coffee Shop",
		URL:       "https://example.com/Business-Opportunity/coffee/1111111/",
		ListingID: "1111111",
	}

	detail := DetailFromStub(stub, testTime)
	assert.Equal(t, stub.Title, detail.Title)
	assert.Equal(t, stub.URL, detail.URL)
	assert.Equal(t, stub.ListingID, detail.ListingID)
	assert.Equal(t, listing.SourceMock, detail.Source)
	assert.NotEmpty(t, detail.AskingPrice)
	assert.NotEmpty(t, detail.Description)
}

func TestDetailFromStubFillsMissingIdentity(t *testing.T) {
	detail := DetailFromStub(listing.Stub{}, testTime)
	assert.NotEmpty(t, detail.Title)
	assert.NotEmpty(t, detail.URL)
	assert.NotEmpty(t, detail.ListingID)
	assert.Contains(t, detail.URL, detail.ListingID)
}
