package mockdata

import (
	"fmt"
	"math/rand"
	"time"

	"bizbuysell-scraper/internal/listing"
)

// Vocabularies for generated records. Values are plausible for the target
// site so downstream consumers exercise realistic shapes.
var (
	cities = []struct {
		City  string
		State string
	}{
		{"Austin", "TX"}, {"Dallas", "TX"}, {"Houston", "TX"},
		{"Miami", "FL"}, {"Orlando", "FL"}, {"Tampa", "FL"},
		{"Phoenix", "AZ"}, {"Denver", "CO"}, {"Atlanta", "GA"},
		{"Charlotte", "NC"}, {"Nashville", "TN"}, {"Las Vegas", "NV"},
		{"San Diego", "CA"}, {"Sacramento", "CA"}, {"Portland", "OR"},
		{"Seattle", "WA"}, {"Chicago", "IL"}, {"Columbus", "OH"},
	}

	businessTypes = []struct {
		Type     string
		Names    []string
		MinPrice int
		MaxPrice int
	}{
		{"Food & Restaurants", []string{"Coffee Shop", "Pizza Restaurant", "Sandwich Franchise", "Bakery"}, 85000, 650000},
		{"Retail", []string{"Convenience Store", "Liquor Store", "Gift Boutique", "Smoke Shop"}, 60000, 900000},
		{"Service Businesses", []string{"Dry Cleaner", "Laundromat", "Nail Salon", "Landscaping Company"}, 50000, 450000},
		{"Automotive", []string{"Auto Repair Shop", "Car Wash", "Tire Center"}, 120000, 1200000},
		{"Health Care & Fitness", []string{"Dental Practice", "Fitness Studio", "Home Care Agency"}, 150000, 1500000},
		{"Online & Technology", []string{"E-commerce Store", "IT Services Firm", "Digital Marketing Agency"}, 40000, 800000},
	}

	brokerFirst = []string{"James", "Maria", "Robert", "Linda", "Michael", "Susan", "David", "Karen", "Carlos", "Angela"}
	brokerLast  = []string{"Smith", "Johnson", "Garcia", "Miller", "Davis", "Rodriguez", "Wilson", "Anderson", "Thomas", "Moore"}
)

// Stubs generates n mock URL-stage records stamped with now.
func Stubs(n int, now time.Time) []listing.Stub {
	stubs := make([]listing.Stub, 0, n)
	for i := 0; i < n; i++ {
		bt := businessTypes[rand.Intn(len(businessTypes))]
		name := bt.Names[rand.Intn(len(bt.Names))]
		loc := cities[rand.Intn(len(cities))]
		id := mockID()

		stubs = append(stubs, listing.Stub{
			Title:     fmt.Sprintf("%s in %s, %s", name, loc.City, loc.State),
			URL:       fmt.Sprintf("https://www.bizbuysell.com/Business-Opportunity/mock-%s/%s/", slug(name), id),
			ListingID: id,
			ScrapedAt: now,
		})
	}
	return stubs
}

// Details generates n complete mock detail records stamped with now.
func Details(n int, now time.Time) []listing.Detail {
	details := make([]listing.Detail, 0, n)
	for i := 0; i < n; i++ {
		details = append(details, DetailFromStub(listing.Stub{ScrapedAt: now}, now))
	}
	return details
}

// DetailFromStub generates a mock detail record. Identity fields present on
// the stub (title, url, listing id) are preserved so a fallback record still
// lines up with its URL-stage row.
func DetailFromStub(stub listing.Stub, now time.Time) listing.Detail {
	bt := businessTypes[rand.Intn(len(businessTypes))]
	name := bt.Names[rand.Intn(len(bt.Names))]
	loc := cities[rand.Intn(len(cities))]

	price := bt.MinPrice + rand.Intn(bt.MaxPrice-bt.MinPrice+1)
	cashflow := price * (15 + rand.Intn(25)) / 100
	revenue := price * (80 + rand.Intn(170)) / 100
	established := now.Year() - (2 + rand.Intn(28))

	detail := listing.Detail{
		Title:        stub.Title,
		URL:          stub.URL,
		ListingID:    stub.ListingID,
		Location:     fmt.Sprintf("%s, %s", loc.City, loc.State),
		AskingPrice:  fmt.Sprintf("$%d", price),
		GrossRevenue: fmt.Sprintf("$%d", revenue),
		Cashflow:     fmt.Sprintf("$%d", cashflow),
		Established:  fmt.Sprintf("%d", established),
		Description:  fmt.Sprintf("Well established %s serving the %s area. Strong repeat customer base with room to grow.", name, loc.City),
		BusinessType: bt.Type,
		BrokerName:   fmt.Sprintf("%s %s", brokerFirst[rand.Intn(len(brokerFirst))], brokerLast[rand.Intn(len(brokerLast))]),
		BrokerNumber: fmt.Sprintf("(%d) 555-%04d", 200+rand.Intn(700), rand.Intn(10000)),
		ScrapedAt:    now,
		Source:       listing.SourceMock,
	}

	if detail.ListingID == "" {
		detail.ListingID = mockID()
	}
	if detail.Title == "" {
		detail.Title = fmt.Sprintf("%s in %s, %s", name, loc.City, loc.State)
	}
	if detail.URL == "" {
		detail.URL = fmt.Sprintf("https://www.bizbuysell.com/Business-Opportunity/mock-%s/%s/", slug(name), detail.ListingID)
	}

	return detail
}

// mockID returns a 7-digit id in a range far above real listing ids to avoid
// collisions with previously scraped records.
func mockID() string {
	return fmt.Sprintf("%d", 9000000+rand.Intn(1000000))
}

func slug(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ', r == '-':
			out = append(out, '-')
		}
	}
	return string(out)
}
