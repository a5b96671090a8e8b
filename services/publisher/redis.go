package publisher

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"math/rand"
	"strconv"

	"github.com/redis/go-redis/v9"

	"bizbuysell-scraper/internal/listing"
)

// payload is the wire form of a published detail record.
type payload struct {
	Title        string `json:"title"`
	Location     string `json:"location"`
	AskingPrice  string `json:"asking_price"`
	GrossRevenue string `json:"gross_revenue"`
	Established  string `json:"established"`
	Cashflow     string `json:"cashflow"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	BusinessType string `json:"business_type"`
	ListingID    string `json:"listing_id"`
	BrokerName   string `json:"broker_name"`
	BrokerNumber string `json:"broker_number"`
	ScrapedDate  string `json:"scraped_date"`
	DataSource   string `json:"data_source"`
}

// RedisPublisher implements Publisher using Redis streams
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	streamPrefix    string
	streamCount     int
	streamMaxLength int64
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, streamPrefix string, streamCount int, streamMaxLength int64) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		streamPrefix:    streamPrefix,
		streamCount:     streamCount,
		streamMaxLength: streamMaxLength,
	}
}

// Publish publishes a detail record to a Redis stream.
// The JSON payload is base64 encoded before publishing.
func (p *RedisPublisher) Publish(detail listing.Detail) error {
	message, err := json.Marshal(payload{
		Title:        detail.Title,
		Location:     detail.Location,
		AskingPrice:  detail.AskingPrice,
		GrossRevenue: detail.GrossRevenue,
		Established:  detail.Established,
		Cashflow:     detail.Cashflow,
		Description:  detail.Description,
		URL:          detail.URL,
		BusinessType: detail.BusinessType,
		ListingID:    detail.ListingID,
		BrokerName:   detail.BrokerName,
		BrokerNumber: detail.BrokerNumber,
		ScrapedDate:  detail.ScrapedAt.Format(listing.TimeFormat),
		DataSource:   string(detail.Source),
	})
	if err != nil {
		return err
	}

	encodedMessage := base64.StdEncoding.EncodeToString(message)

	// random stream name by streamCount
	// if streamCount is 10, stream name will be stream:0 ~ stream:9
	stream := p.streamPrefix + ":" + strconv.Itoa(rand.Intn(p.streamCount))

	return p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"b64_listing": encodedMessage,
		},
	}).Err()
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams() error {
	pattern := p.streamPrefix + ":*"
	streams, err := p.client.Keys(p.ctx, pattern).Result()
	if err != nil {
		return err
	}

	for _, stream := range streams {
		err := p.client.XTrimMaxLen(p.ctx, stream, p.streamMaxLength).Err()
		if err != nil {
			return err
		}
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
