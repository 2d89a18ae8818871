// Package cache holds the quote and configuration caches backing the rating
// engine.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carrier-rate-engine/internal/config"
	"carrier-rate-engine/internal/domain/shipping"

	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	quoteKeyPattern = "rates:*"
	flushBatch      = 500
)

// RedisQuoteCache keeps quote lists in Redis so every engine instance shares them.
type RedisQuoteCache struct {
	client *redis.Client
}

func NewRedisQuoteCache(ctx context.Context, cfg config.RedisConfig) (*RedisQuoteCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	return &RedisQuoteCache{client: client}, nil
}

func (c *RedisQuoteCache) Get(ctx context.Context, key string) ([]shipping.RateQuote, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	quotes, err := decodeQuotes(data)
	if err != nil {
		// a corrupt entry is a miss; the next Set overwrites it
		return nil, false, nil
	}
	return quotes, true, nil
}

func (c *RedisQuoteCache) Set(ctx context.Context, key string, quotes []shipping.RateQuote, ttl time.Duration) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Flush removes every cached quote list. Other keys in the database are left alone.
func (c *RedisQuoteCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, quoteKeyPattern, flushBatch).Iterator()
	batch := make([]string, 0, flushBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == flushBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (c *RedisQuoteCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisQuoteCache) Close() error {
	return c.client.Close()
}

func decodeQuotes(data []byte) ([]shipping.RateQuote, error) {
	var quotes []shipping.RateQuote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}
