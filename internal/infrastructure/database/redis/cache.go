package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key namespaces.  Prefixes are chosen so patterns never collide across
// consumers sharing the backend.
const (
	KeyDrug        = "drug:%s"             // drug:{drug_id}
	KeyPredictions = "drug:%s:predictions" // drug:{drug_id}:predictions
	KeyCancer      = "cancer:%s"           // cancer:{cancer_id}
	KeySearch      = "search:%s"           // search:{fingerprint}
	KeyPaper       = "paper:%s:summary"    // paper:{pmid}:summary
	KeyMarket      = "analysis:market:%s:%s"
	KeyRefresh     = "refresh:%s"          // refresh:{jti}
	KeyRateLimit   = "ratelimit:%s:%s"     // ratelimit:{tier}:{identity}
)

// Cache is the general-purpose TTL'd key-value layer.  All operations are
// nil-safe: a Cache over a disconnected Client answers every read as a miss
// and every write as a no-op, so callers degrade without branching.
type Cache struct {
	client *Client
}

// NewCache wraps a Client.  client may be nil.
func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

// Connected reports whether the cache has a live backend.
func (c *Cache) Connected() bool {
	return c != nil && c.client.Connected()
}

// Set stores value under key with the given TTL.  Structured values are
// JSON-encoded; strings and byte slices are stored verbatim.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Connected() {
		return nil
	}
	payload, err := encode(value)
	if err != nil {
		return err
	}
	return c.client.rdb.Set(ctx, key, payload, ttl).Err()
}

// Get retrieves the raw stored bytes.  Returns (nil, false, nil) on a miss or
// when disconnected.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if !c.Connected() {
		return nil, false, nil
	}
	val, err := c.client.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// GetJSON retrieves and decodes a JSON value into out.  The boolean reports
// whether the key was present and decodable.
func (c *Cache) GetJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, hit, err := c.Get(ctx, key)
	if err != nil || !hit {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes one or more keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Connected() || len(keys) == 0 {
		return nil
	}
	return c.client.rdb.Del(ctx, keys...).Err()
}

// Exists reports whether the key is present.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if !c.Connected() {
		return false, nil
	}
	n, err := c.client.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// Keys returns a best-effort snapshot of keys matching the glob pattern.
// Never use the result for correctness-critical iteration.
func (c *Cache) Keys(ctx context.Context, pattern string) ([]string, error) {
	if !c.Connected() {
		return nil, nil
	}
	var out []string
	iter := c.client.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	return out, iter.Err()
}

// ClearPattern deletes all keys matching the glob pattern and returns the
// number removed.
func (c *Cache) ClearPattern(ctx context.Context, pattern string) (int, error) {
	keys, err := c.Keys(ctx, pattern)
	if err != nil || len(keys) == 0 {
		return 0, err
	}
	if err := c.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// IncrBy atomically increments an integer value.
func (c *Cache) IncrBy(ctx context.Context, key string, amount int64) (int64, error) {
	if !c.Connected() {
		return 0, nil
	}
	return c.client.rdb.IncrBy(ctx, key, amount).Result()
}

// Expire resets the TTL on an existing key.
func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if !c.Connected() {
		return nil
	}
	return c.client.rdb.Expire(ctx, key, ttl).Err()
}

// Ping probes backend liveness.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

// encode serializes a value for storage: strings and byte slices pass
// through, everything else is JSON-encoded.
func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(v)
	}
}
