package publisher

import "bizbuysell-scraper/internal/listing"

// Publisher represents a service for publishing scraped records
type Publisher interface {
	// Publish publishes a detail record to a stream
	Publish(detail listing.Detail) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
