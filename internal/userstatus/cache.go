package userstatus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/gamegate/core/logger"
)

// DefaultCacheTTL bounds how long a cached status may outlive a write that
// failed to invalidate it.
const DefaultCacheTTL = 10 * time.Minute

// CacheObserver receives "hit", "miss" and "error" for every cached read.
type CacheObserver func(result string)

// CachedStore serves GetStatus from Redis and delegates everything else.
// Writes go to the inner store first and then drop the cached entry.
// Redis failures degrade to the inner store and are only logged.
type CachedStore struct {
	inner   Store
	rdb     redis.UniversalClient
	ttl     time.Duration
	prefix  string
	observe CacheObserver
}

var _ Store = (*CachedStore)(nil)

// CacheOption customizes a CachedStore.
type CacheOption func(*CachedStore)

// WithTTL overrides DefaultCacheTTL.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedStore) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix overrides the "gamegate:status:" key prefix.
func WithKeyPrefix(prefix string) CacheOption {
	return func(c *CachedStore) { c.prefix = prefix }
}

// WithObserver reports cache results, e.g. to Prometheus.
func WithObserver(fn CacheObserver) CacheOption {
	return func(c *CachedStore) { c.observe = fn }
}

// NewCachedStore wraps inner with a Redis read-through cache.
func NewCachedStore(inner Store, rdb redis.UniversalClient, opts ...CacheOption) *CachedStore {
	c := &CachedStore{
		inner:  inner,
		rdb:    rdb,
		ttl:    DefaultCacheTTL,
		prefix: "gamegate:status:",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedStore) key(userID int64) string {
	return c.prefix + strconv.FormatInt(userID, 10)
}

func (c *CachedStore) report(result string) {
	if c.observe != nil {
		c.observe(result)
	}
}

// Ensure does not touch the cache: an existing entry already reflects the record.
func (c *CachedStore) Ensure(ctx context.Context, userID int64) error {
	return c.inner.Ensure(ctx, userID)
}

// SetSubscribed writes through and invalidates.
func (c *CachedStore) SetSubscribed(ctx context.Context, userID int64, v bool) error {
	if err := c.inner.SetSubscribed(ctx, userID, v); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// SetVerified writes through and invalidates.
func (c *CachedStore) SetVerified(ctx context.Context, userID int64, v bool) error {
	if err := c.inner.SetVerified(ctx, userID, v); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// MarkRegistered writes through and invalidates.
func (c *CachedStore) MarkRegistered(ctx context.Context, userID int64) error {
	if err := c.inner.MarkRegistered(ctx, userID); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// GetStatus returns the cached record or loads and caches it.
func (c *CachedStore) GetStatus(ctx context.Context, userID int64) (Status, error) {
	key := c.key(userID)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var st Status
		if jsonErr := json.Unmarshal(raw, &st); jsonErr == nil && st.UserID == userID {
			c.report("hit")
			return st, nil
		}
		c.report("error")
		c.logFailure(ctx, "cache.decode", userID, errors.New("malformed cache entry"))
	case errors.Is(err, redis.Nil):
		c.report("miss")
	default:
		c.report("error")
		c.logFailure(ctx, "cache.get", userID, err)
	}

	st, err := c.inner.GetStatus(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	if data, jsonErr := json.Marshal(st); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
			c.logFailure(ctx, "cache.set", userID, setErr)
		}
	}
	return st, nil
}

func (c *CachedStore) invalidate(ctx context.Context, userID int64) {
	if err := c.rdb.Del(ctx, c.key(userID)).Err(); err != nil {
		c.logFailure(ctx, "cache.del", userID, err)
	}
}

func (c *CachedStore) logFailure(ctx context.Context, event string, userID int64, err error) {
	logger.LogEvent(ctx, logger.Store, slog.LevelWarn, event,
		slog.String("cache", "redis"),
		slog.Int64("target_id", userID),
		slog.String("err", err.Error()),
	)
}
