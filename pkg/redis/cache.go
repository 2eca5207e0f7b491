package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/dropscout/internal/contracts"
)

// Cache provides JSON caching under "{prefix}:cache:{key}"
// ⭐ SSOT: cache helpers live here only
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get decodes a cached value into dest. A missing key is a miss, not an error.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return true, nil
}

// Set stores a value with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// MGet returns the raw JSON for every key that is present
func (c *Cache) MGet(ctx context.Context, keys ...string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(keys))
	if !c.client.Enabled() || len(keys) == 0 {
		return out, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}

	vals, err := c.client.Redis().MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("cache mget failed: %w", err)
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = json.RawMessage(s)
		}
	}
	return out, nil
}

// GetOrSet retrieves from cache or calls fn to populate it.
// A failed Set is ignored; fn's value is still returned through dest.
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	found, err := c.Get(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	value, err := fn()
	if err != nil {
		return err
	}

	_ = c.Set(ctx, key, value, ttl)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// Predefined TTLs
const (
	TTLShort  = 1 * time.Minute  // upstream lookups
	TTLMedium = 10 * time.Minute // competitor scrapes
	TTLLong   = 1 * time.Hour
	TTLDaily  = 24 * time.Hour // validation results
)

// ValidationKey builds "validation:{name}:{id|unknown}:{yyyymmdd}"
func ValidationKey(ref contracts.ProductRef, day time.Time) string {
	return fmt.Sprintf("validation:%s:%s", ref.Key(), day.UTC().Format("20060102"))
}

// PricingKey builds "pricing:{category}:{buyPrice}:{adCost}"
func PricingKey(category string, buyPrice, adCost float64) string {
	return fmt.Sprintf("pricing:%s:%.2f:%.2f", strings.ToLower(strings.TrimSpace(category)), buyPrice, adCost)
}

// ResultCache adapts Cache to contracts.ResultCache
type ResultCache struct {
	cache *Cache
}

// NewResultCache creates a validation result cache
func NewResultCache(cache *Cache) *ResultCache {
	return &ResultCache{cache: cache}
}

// Get returns a cached result
func (r *ResultCache) Get(ctx context.Context, key string) (contracts.ValidationResult, bool, error) {
	var res contracts.ValidationResult
	found, err := r.cache.Get(ctx, key, &res)
	if err != nil || !found {
		return contracts.ValidationResult{}, false, err
	}
	return res, true, nil
}

// Put caches a result for ttl
func (r *ResultCache) Put(ctx context.Context, key string, value contracts.ValidationResult, ttl time.Duration) error {
	return r.cache.Set(ctx, key, value, ttl)
}

// GetMany reads every key with one MGET. Entries that fail to decode count as misses.
func (r *ResultCache) GetMany(ctx context.Context, keys []string) (map[string]contracts.ValidationResult, error) {
	raw, err := r.cache.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]contracts.ValidationResult, len(raw))
	for k, data := range raw {
		var res contracts.ValidationResult
		if err := json.Unmarshal(data, &res); err != nil {
			continue
		}
		out[k] = res
	}
	return out, nil
}
