// Package streaming feeds the ingestion path from a message stream. The only
// implemented source is Redis Streams; each stream entry carries one feature
// row as a JSON object in its "row" field.
package streaming

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/datalane/featurestore-go/utils"
)

// Ingester is the sink for decoded rows, satisfied by *featurestore.Client.
type Ingester interface {
	Ingest(ctx context.Context, viewName string, rows []map[string]interface{}) (int, error)
}

// Logger is the minimal logging surface the consumer reports through.
type Logger interface {
	Printf(format string, v ...interface{})
}

// RowField is the stream entry field holding the JSON-encoded row.
const RowField = "row"

type ConsumerOption func(c *RedisStreamConsumer)

// WithBatchSize bounds how many entries one read pulls (default 100).
func WithBatchSize(n int) ConsumerOption {
	return func(c *RedisStreamConsumer) {
		c.batchSize = n
	}
}

// WithBlockTimeout sets how long a read blocks waiting for entries.
func WithBlockTimeout(d time.Duration) ConsumerOption {
	return func(c *RedisStreamConsumer) {
		c.blockTimeout = d
	}
}

// WithStartID overrides the stream position to start from (default "0").
func WithStartID(id string) ConsumerOption {
	return func(c *RedisStreamConsumer) {
		c.lastID = id
	}
}

// WithLogger sets the consumer's logger.
func WithLogger(l Logger) ConsumerOption {
	return func(c *RedisStreamConsumer) {
		c.logger = l
	}
}

// RedisStreamConsumer reads one redis stream and ingests its rows into one
// feature view. Each batch goes through the same atomic ingestion path as
// direct calls; a failed batch is logged and skipped, the stream position
// still advances so one bad entry cannot wedge the consumer.
type RedisStreamConsumer struct {
	client   *redis.Client
	stream   string
	viewName string
	ingester Ingester

	batchSize    int
	blockTimeout time.Duration
	lastID       string
	logger       Logger
}

func NewRedisStreamConsumer(client *redis.Client, stream, viewName string, ingester Ingester, opts ...ConsumerOption) *RedisStreamConsumer {
	c := &RedisStreamConsumer{
		client:       client,
		stream:       stream,
		viewName:     viewName,
		ingester:     ingester,
		batchSize:    100,
		blockTimeout: time.Second,
		lastID:       "0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes until the context is canceled.
func (c *RedisStreamConsumer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.ReadBatch(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			c.logf("stream read error, stream=%s, err=%v", c.stream, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.blockTimeout):
			}
		}
	}
}

// ReadBatch pulls at most one batch from the stream and ingests it. A read
// that times out with no entries is a normal outcome.
func (c *RedisStreamConsumer) ReadBatch(ctx context.Context) error {
	streams, err := c.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{c.stream, c.lastID},
		Count:   int64(c.batchSize),
		Block:   c.blockTimeout,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	for _, stream := range streams {
		if len(stream.Messages) == 0 {
			continue
		}

		rows := make([]map[string]interface{}, 0, len(stream.Messages))
		for _, msg := range stream.Messages {
			row, err := decodeRow(msg)
			if err != nil {
				c.logf("skip malformed stream entry, stream=%s, id=%s, err=%v", c.stream, msg.ID, err)
				continue
			}
			rows = append(rows, row)
		}
		c.lastID = stream.Messages[len(stream.Messages)-1].ID

		if len(rows) == 0 {
			continue
		}
		if _, err := c.ingester.Ingest(ctx, c.viewName, rows); err != nil {
			c.logf("ingest batch failed, stream=%s, rows=%d, err=%v", c.stream, len(rows), err)
		}
	}
	return nil
}

// LastID returns the stream position after the most recent batch.
func (c *RedisStreamConsumer) LastID() string { return c.lastID }

func decodeRow(msg redis.XMessage) (map[string]interface{}, error) {
	raw, ok := msg.Values[RowField]
	if !ok {
		// Fall back to treating the entry fields themselves as the row.
		row := make(map[string]interface{}, len(msg.Values))
		for k, v := range msg.Values {
			row[k] = utils.ToString(v, "")
		}
		return row, nil
	}

	dec := json.NewDecoder(strings.NewReader(utils.ToString(raw, "")))
	dec.UseNumber()
	var row map[string]interface{}
	if err := dec.Decode(&row); err != nil {
		return nil, err
	}
	return row, nil
}

func (c *RedisStreamConsumer) logf(format string, v ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, v...)
	}
}
