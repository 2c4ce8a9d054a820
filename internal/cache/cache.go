// Package cache implements the read-through cache over the post store.
//
// Entries carry the fetch timestamp alongside the value, so every read
// reports how stale the served data is instead of hiding it. There is no
// TTL eviction: entries live until a mutation invalidates them, which is
// acceptable because every write path invalidates deterministically.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/prakhar1989/blag/internal/blog"
	"github.com/prakhar1989/blag/internal/metrics"
	"github.com/prakhar1989/blag/internal/store"
	"github.com/prakhar1989/blag/pkg/kv"
	memkv "github.com/prakhar1989/blag/pkg/kv/memory"
	redkv "github.com/prakhar1989/blag/pkg/kv/redis"
)

// Cache key spaces. Listing and per-post entries are independent so a
// single-post read never churns because an unrelated post was edited.
const (
	keyPublished = "blag:posts:published"
	keyDrafts    = "blag:posts:drafts"
)

func postKey(id int64) string {
	return fmt.Sprintf("blag:post:%d", id)
}

// Cache serves the published listing and single-post lookups through the
// kv backend, falling back to the post store on miss.
type Cache struct {
	kv      kv.Store
	posts   store.PostStore
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics

	// cacheDrafts opts the draft listing into the cache; off by default
	// since drafts are low-traffic.
	cacheDrafts bool

	// keys written by this cache, for FlushAll. A single process owns the
	// cache; horizontally scaled instances would each hold an independent,
	// possibly divergent cache. Known limitation, not solved here.
	mu   sync.Mutex
	keys map[string]struct{}

	// sf collapses concurrent misses for the same key into one store
	// fetch.
	sf singleflight.Group

	now func() time.Time
}

func New(kvStore kv.Store, posts store.PostStore, cacheDrafts bool, logger *zap.SugaredLogger, m *metrics.Metrics) *Cache {
	return &Cache{
		kv:          kvStore,
		posts:       posts,
		cacheDrafts: cacheDrafts,
		logger:      logger,
		metrics:     m,
		keys:        make(map[string]struct{}),
		now:         time.Now,
	}
}

// NewBackend connects to Redis at addr, falling back to an in-memory store
// when Redis is unavailable.
func NewBackend(addr string, logger *zap.SugaredLogger) kv.Store {
	redisStore := redkv.New(addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := redisStore.Ping(ctx); err != nil {
		redisStore.Close()
		if logger != nil {
			logger.Warnw("Redis unavailable; using in-memory cache", "addr", addr, "error", err)
		}
		return memkv.New(30 * time.Second)
	}

	return redisStore
}

type listingEntry struct {
	Posts     []blog.Post `json:"posts"`
	FetchedAt time.Time   `json:"fetched_at"`
}

type postEntry struct {
	Post      blog.Post `json:"post"`
	FetchedAt time.Time `json:"fetched_at"`
}

// PublishedListing returns the published posts, newest first, plus the age
// of the served data. A miss or forceRefresh repopulates from the store
// and resets the age to zero.
func (c *Cache) PublishedListing(ctx context.Context, forceRefresh bool) ([]blog.Post, time.Duration, error) {
	if !forceRefresh {
		if entry, ok := c.getListing(ctx, keyPublished); ok {
			return entry.Posts, c.age(entry.FetchedAt), nil
		}
	}

	v, err, _ := c.sf.Do(keyPublished, func() (any, error) {
		posts, err := c.posts.ListPublished(ctx)
		if err != nil {
			return nil, err
		}
		c.putListing(ctx, keyPublished, posts)
		return posts, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list published posts: %w", err)
	}

	return v.([]blog.Post), 0, nil
}

// DraftListing behaves like PublishedListing for drafts when draft caching
// is enabled; otherwise it queries the store directly.
func (c *Cache) DraftListing(ctx context.Context) ([]blog.Post, time.Duration, error) {
	if c.cacheDrafts {
		if entry, ok := c.getListing(ctx, keyDrafts); ok {
			return entry.Posts, c.age(entry.FetchedAt), nil
		}
	}

	v, err, _ := c.sf.Do(keyDrafts, func() (any, error) {
		posts, err := c.posts.ListDrafts(ctx)
		if err != nil {
			return nil, err
		}
		if c.cacheDrafts {
			c.putListing(ctx, keyDrafts, posts)
		}
		return posts, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list drafts: %w", err)
	}

	return v.([]blog.Post), 0, nil
}

// Post returns the post with the given id plus the age of the served
// data, fetching from the store and populating the cache on miss. A
// missing post is reported as store.ErrNotFound and never cached.
func (c *Cache) Post(ctx context.Context, id int64) (*blog.Post, time.Duration, error) {
	key := postKey(id)

	if data, err := c.kv.Get(ctx, key); err == nil {
		var entry postEntry
		if err := json.Unmarshal(data, &entry); err == nil {
			c.recordHit(ctx, key)
			return &entry.Post, c.age(entry.FetchedAt), nil
		}
		c.logger.Warnw("Dropping undecodable cache entry", "key", key, "error", err)
		_, _ = c.kv.Del(ctx, key)
	} else if !errors.Is(err, kv.ErrNotFound) {
		c.logger.Warnw("Cache get failed; falling through to store", "key", key, "error", err)
	}
	c.recordMiss(ctx, key)

	v, err, _ := c.sf.Do(key, func() (any, error) {
		post, err := c.posts.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		c.put(ctx, key, postEntry{Post: *post, FetchedAt: c.now()})
		return post, nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("failed to get post %d: %w", id, err)
	}

	return v.(*blog.Post), 0, nil
}

// Invalidate removes the entry for id along with both listing entries,
// since any mutation to a post changes the listings too.
func (c *Cache) Invalidate(ctx context.Context, id int64) error {
	return c.drop(ctx, postKey(id), keyPublished, keyDrafts)
}

// FlushAll removes every entry this cache has written.
func (c *Cache) FlushAll(ctx context.Context) error {
	c.mu.Lock()
	keys := make([]string, 0, len(c.keys))
	for key := range c.keys {
		keys = append(keys, key)
	}
	c.mu.Unlock()

	if err := c.drop(ctx, keys...); err != nil {
		return err
	}

	c.logger.Infow("Cache flushed", "keys", len(keys))
	return nil
}

func (c *Cache) getListing(ctx context.Context, key string) (*listingEntry, bool) {
	data, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			c.logger.Warnw("Cache get failed; falling through to store", "key", key, "error", err)
		}
		c.recordMiss(ctx, key)
		return nil, false
	}

	var entry listingEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warnw("Dropping undecodable cache entry", "key", key, "error", err)
		_, _ = c.kv.Del(ctx, key)
		c.recordMiss(ctx, key)
		return nil, false
	}

	c.recordHit(ctx, key)
	return &entry, true
}

func (c *Cache) putListing(ctx context.Context, key string, posts []blog.Post) {
	c.put(ctx, key, listingEntry{Posts: posts, FetchedAt: c.now()})
}

// put stores an entry and tracks its key. A write failure only costs the
// next read a store round trip, so it is logged rather than propagated.
func (c *Cache) put(ctx context.Context, key string, entry any) {
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Errorw("Cache marshal failed", "key", key, "error", err)
		return
	}

	if err := c.kv.Set(ctx, key, data); err != nil {
		c.logger.Warnw("Cache set failed", "key", key, "error", err)
		return
	}

	c.mu.Lock()
	c.keys[key] = struct{}{}
	c.mu.Unlock()
}

func (c *Cache) drop(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if _, err := c.kv.Del(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate cache keys: %w", err)
	}

	c.mu.Lock()
	for _, key := range keys {
		delete(c.keys, key)
	}
	c.mu.Unlock()

	return nil
}

// Ping checks the cache backend, for readiness probes.
func (c *Cache) Ping(ctx context.Context) error {
	return c.kv.Ping(ctx)
}

// age clamps to zero so clock skew between the writer and reader never
// reports a negative staleness.
func (c *Cache) age(fetchedAt time.Time) time.Duration {
	age := c.now().Sub(fetchedAt)
	if age < 0 {
		return 0
	}
	return age
}

func (c *Cache) recordHit(ctx context.Context, key string) {
	if c.metrics != nil {
		c.metrics.RecordCacheHit(ctx, key)
	}
}

func (c *Cache) recordMiss(ctx context.Context, key string) {
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(ctx, key)
	}
}
