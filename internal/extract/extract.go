package extract

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"bizbuysell-scraper/internal/listing"
)

// Selectors configures the CSS selectors and row indices used for the
// structural parts of a listing page. Site markup changes land here instead
// of in code.
type Selectors struct {
	// IndexBlock matches one listing block on an index page. Used only as a
	// fallback when the page carries no structured data.
	IndexBlock string

	// Location matches the listing location text.
	Location string

	// BrokerNumber matches the broker phone number text.
	BrokerNumber string

	// BrokerNameFallback matches the broker name when the structured data
	// omits it.
	BrokerNameFallback string

	// FinancialRow matches the financial summary values. CashflowIndex and
	// GrossRevenueIndex select which matched element holds each figure.
	FinancialRow      string
	CashflowIndex     int
	GrossRevenueIndex int
}

// DefaultSelectors returns the selector set for the current site markup.
func DefaultSelectors() Selectors {
	return Selectors{
		IndexBlock:         "div.listing",
		Location:           "span.f-l",
		BrokerNumber:       "span.ctc_phone a span",
		BrokerNameFallback: ".broker-card > div",
		FinancialRow:       "p.help span.g4",
		CashflowIndex:      1,
		GrossRevenueIndex:  2,
	}
}

// indexPage mirrors the structured data block on a search results page.
type indexPage struct {
	Type  string `json:"@type"`
	About []struct {
		Type string `json:"@type"`
		Item struct {
			Type      string          `json:"@type"`
			Name      string          `json:"name"`
			URL       string          `json:"url"`
			ProductID json.RawMessage `json:"productId"`
		} `json:"item"`
	} `json:"about"`
}

// ParseIndex extracts listing stubs from an index page. Structured JSON-LD
// data is preferred; when absent, the structural fallback scans listing
// blocks directly. An empty result with a nil error means the page parsed
// but held no listings.
func ParseIndex(r io.Reader, sel Selectors, now time.Time) ([]listing.Stub, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index page: %w", err)
	}

	stubs := parseIndexJSONLD(doc, now)
	if len(stubs) == 0 {
		stubs = parseIndexBlocks(doc, sel, now)
	}
	return stubs, nil
}

func parseIndexJSONLD(doc *goquery.Document, now time.Time) []listing.Stub {
	var stubs []listing.Stub

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var page indexPage
		if err := json.Unmarshal([]byte(s.Text()), &page); err != nil {
			return
		}
		if page.Type != "SearchResultsPage" {
			return
		}

		for _, entry := range page.About {
			if entry.Type != "ListItem" || entry.Item.Type != "Product" {
				continue
			}
			title := strings.TrimSpace(entry.Item.Name)
			url := strings.TrimSpace(entry.Item.URL)
			if title == "" || url == "" {
				continue
			}
			id := rawToString(entry.Item.ProductID)
			if id == "" {
				id = IDFromURL(url)
			}
			stubs = append(stubs, listing.Stub{
				Title:     title,
				URL:       url,
				ListingID: id,
				ScrapedAt: now,
			})
		}
	})

	return stubs
}

func parseIndexBlocks(doc *goquery.Document, sel Selectors, now time.Time) []listing.Stub {
	var stubs []listing.Stub

	doc.Find(sel.IndexBlock).Each(func(_ int, s *goquery.Selection) {
		anchor := s.Find("a").First()
		url, ok := anchor.Attr("href")
		if !ok || strings.TrimSpace(url) == "" {
			return
		}
		url = strings.TrimSpace(url)

		title := strings.TrimSpace(anchor.Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("h3").First().Text())
		}
		if title == "" {
			return
		}

		stubs = append(stubs, listing.Stub{
			Title:     title,
			URL:       url,
			ListingID: IDFromURL(url),
			ScrapedAt: now,
		})
	})

	return stubs
}

// ParseDetail extracts a full record from a listing page. Structured JSON-LD
// fields are merged with the structural selector fields; anything the page
// does not provide stays empty. An error is returned only when the page
// shows none of the expected structure.
func ParseDetail(r io.Reader, sel Selectors, stub listing.Stub, now time.Time) (listing.Detail, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return listing.Detail{}, fmt.Errorf("failed to parse detail page: %w", err)
	}

	detail := listing.Detail{
		Title:     stub.Title,
		URL:       stub.URL,
		ListingID: stub.ListingID,
		ScrapedAt: now,
		Source:    listing.SourceReal,
	}

	hasProduct := applyDetailJSONLD(doc, &detail)

	location := firstText(doc, sel.Location)
	if location.Found {
		detail.Location = location.Value
	}
	if number := firstText(doc, sel.BrokerNumber); number.Found {
		detail.BrokerNumber = number.Value
	}
	if detail.BrokerName == "" {
		if name := firstText(doc, sel.BrokerNameFallback); name.Found {
			detail.BrokerName = stripBrokerPrefix(name.Value)
		}
	}

	rows := doc.Find(sel.FinancialRow)
	if v := nthText(rows, sel.CashflowIndex); v.Found {
		detail.Cashflow = v.Value
	}
	if v := nthText(rows, sel.GrossRevenueIndex); v.Found {
		detail.GrossRevenue = v.Value
	}

	if detail.ListingID == "" {
		detail.ListingID = IDFromURL(detail.URL)
	}

	if !hasProduct && !location.Found {
		return listing.Detail{}, fmt.Errorf("page for %s has no recognizable listing structure", stub.URL)
	}

	return detail, nil
}

// applyDetailJSONLD merges the Product structured data block into detail and
// reports whether one was found. The block is decoded loosely since the site
// mixes string and numeric values for the same keys.
func applyDetailJSONLD(doc *goquery.Document, detail *listing.Detail) bool {
	found := false

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		if asString(data["@type"]) != "Product" {
			return true
		}
		found = true

		if v := asString(data["name"]); v != "" {
			detail.Title = v
		}
		if v := asString(data["description"]); v != "" {
			detail.Description = v
		}
		if v := asString(data["category"]); v != "" {
			detail.BusinessType = v
		}
		if v := asString(data["productId"]); v != "" {
			detail.ListingID = v
		}
		if v := asString(data["established"]); v != "" {
			detail.Established = v
		}

		if offers, ok := data["offers"].(map[string]any); ok {
			if v := asString(offers["price"]); v != "" {
				detail.AskingPrice = v
			}
			if broker, ok := offers["offeredBy"].(map[string]any); ok {
				if v := asString(broker["name"]); v != "" {
					detail.BrokerName = stripBrokerPrefix(v)
				}
			}
		}

		return false
	})

	return found
}

// Field is a selector result with an explicit presence flag so callers can
// tell an empty value from a missing element.
type Field struct {
	Value string
	Found bool
}

func firstText(doc *goquery.Document, selector string) Field {
	s := doc.Find(selector).First()
	if s.Length() == 0 {
		return Field{}
	}
	return Field{Value: strings.TrimSpace(s.Text()), Found: true}
}

func nthText(s *goquery.Selection, index int) Field {
	if index < 0 || index >= s.Length() {
		return Field{}
	}
	return Field{Value: strings.TrimSpace(s.Eq(index).Text()), Found: true}
}

func stripBrokerPrefix(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "Business Listed By:", ""))
}

// IDFromURL extracts the numeric listing id segment from a listing URL.
// Returns an empty string when no segment is numeric.
func IDFromURL(url string) string {
	url = strings.TrimSuffix(url, "/")
	segments := strings.Split(url, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" {
			continue
		}
		if _, err := strconv.ParseUint(seg, 10, 64); err == nil {
			return seg
		}
	}
	return ""
}

// asString renders a loosely typed JSON value as a string. Numbers drop the
// float formatting artifacts (e.g. 250000 not 250000.000000).
func asString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// rawToString renders a raw JSON scalar (string or number) as a string.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return asString(v)
}
