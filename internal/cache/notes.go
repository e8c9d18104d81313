// Package cache keeps each owner's note listing in Redis so repeated
// reads skip the database. Writes invalidate the owner's entry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/notebook-api/internal/config"
	"github.com/iliyamo/notebook-api/internal/model"
)

// NoteListCache stores JSON-encoded []model.Note under
// "<prefix>:user:<owner>:notes:<gen>", where gen is the owner's counter at
// "<prefix>:user:<owner>:gen". Invalidate bumps the counter, so a listing
// read before a write and stored after it lands under a key nobody reads.
type NoteListCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewNoteListCache returns nil when caching is disabled or no client is
// available, so callers can skip wiring it.
func NewNoteListCache(rdb *redis.Client, cfg config.CacheConfig) *NoteListCache {
	if rdb == nil || !cfg.Enabled {
		return nil
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &NoteListCache{rdb: rdb, prefix: cfg.Prefix, ttl: ttl}
}

func (c *NoteListCache) key(ownerID string, gen int64) string {
	return fmt.Sprintf("%s:user:%s:notes:%d", c.prefix, ownerID, gen)
}

func (c *NoteListCache) genKey(ownerID string) string {
	return fmt.Sprintf("%s:user:%s:gen", c.prefix, ownerID)
}

// genTTL outlives every listing stored under it, so a counter that expires
// and restarts at zero cannot revive an old entry.
func (c *NoteListCache) genTTL() time.Duration {
	return c.ttl + 24*time.Hour
}

// Generation returns the owner's current counter; an owner with no writes
// yet is at zero.
func (c *NoteListCache) Generation(ctx context.Context, ownerID string) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

// Get returns the listing cached for gen. A miss is (nil, false, nil).
func (c *NoteListCache) Get(ctx context.Context, ownerID string, gen int64) ([]model.Note, bool, error) {
	key := c.key(ownerID, gen)
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var notes []model.Note
	if err := json.Unmarshal(b, &notes); err != nil {
		// drop the corrupt entry so the next read repopulates it
		_ = c.rdb.Del(ctx, key).Err()
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return notes, true, nil
}

// Set stores notes as the listing for gen. gen must be the value read from
// Generation before the store was queried.
func (c *NoteListCache) Set(ctx context.Context, ownerID string, gen int64, notes []model.Note) error {
	b, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key(ownerID, gen), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate bumps the owner's generation, orphaning every listing stored
// so far. Orphans expire with their TTL.
func (c *NoteListCache) Invalidate(ctx context.Context, ownerID string) error {
	key := c.genKey(ownerID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, c.genTTL())
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
