package p2p

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisCache stores entries in Redis, msgpack-encoded. Backend errors are
// treated as misses on read and dropped on write: the cache contract forbids
// raising for anything the dispatcher could not act on, and a flaky cache
// must never fail an otherwise healthy API call. Corrupt values are deleted
// so the next fetch repopulates them.
type RedisCache struct {
	rdb       goredis.UniversalClient
	ttl       time.Duration
	opTimeout time.Duration
	logger    Logger
}

// RedisCacheConfig configures a RedisCache. Client is required. TTL of zero
// means entries never expire, matching the in-memory backend.
type RedisCacheConfig struct {
	Client    goredis.UniversalClient
	TTL       time.Duration
	OpTimeout time.Duration // per-operation bound; 0 => 250ms
	Logger    Logger
}

// NewRedisCache creates a Redis-backed Cache.
func NewRedisCache(cfg RedisCacheConfig) *RedisCache {
	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = 250 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	return &RedisCache{
		rdb:       cfg.Client,
		ttl:       cfg.TTL,
		opTimeout: opTimeout,
		logger:    logger,
	}
}

// Get retrieves a cached entry. Misses, backend errors and undecodable
// values all report a miss.
func (c *RedisCache) Get(sig Signature) (*Entry, bool) {
	ctx, cancel := c.opContext()
	defer cancel()

	raw, err := c.rdb.Get(ctx, string(sig)).Bytes()
	if err == goredis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache get failed", "signature", string(sig), "error", err)
		return nil, false
	}

	var entry Entry
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		// self-heal corrupt value
		c.logger.Warn("cache entry corrupt, deleting", "signature", string(sig), "error", err)
		_ = c.rdb.Del(ctx, string(sig)).Err()
		return nil, false
	}
	return &entry, true
}

// Set stores an entry, best effort.
func (c *RedisCache) Set(sig Signature, entry *Entry) {
	raw, err := msgpack.Marshal(entry)
	if err != nil {
		c.logger.Warn("cache encode failed", "signature", string(sig), "error", err)
		return
	}

	ctx, cancel := c.opContext()
	defer cancel()
	if err := c.rdb.Set(ctx, string(sig), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "signature", string(sig), "error", err)
	}
}

// Delete removes an entry, best effort.
func (c *RedisCache) Delete(sig Signature) {
	ctx, cancel := c.opContext()
	defer cancel()
	if err := c.rdb.Del(ctx, string(sig)).Err(); err != nil {
		c.logger.Warn("cache delete failed", "signature", string(sig), "error", err)
	}
}

// Clear removes every entry under the p2p key prefix. Scans rather than
// flushing so a shared Redis database is left alone.
func (c *RedisCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*c.opTimeout)
	defer cancel()

	iter := c.rdb.Scan(ctx, 0, "p2p:*", 0).Iterator()
	for iter.Next(ctx) {
		_ = c.rdb.Del(ctx, iter.Val()).Err()
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache clear failed", "error", err)
	}
}

func (c *RedisCache) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.opTimeout)
}
