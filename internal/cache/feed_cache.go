// Package cache keeps rendered announcement feeds so the student dashboard
// does not hit Postgres on every load.
package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	feedKeyPrefix = "announcements:feed:"
	feedGenKey    = "announcements:feed:gen"
)

// Generation identifies the feed contents a page was rendered from. Every
// Invalidate starts a new generation, and a Set carrying an older one never
// becomes visible. A negative generation means the cache could not be read
// and the page must not be stored.
type Generation int64

// FeedCache stores serialized feed responses keyed by page size.
//
// Callers pass the generation returned by Get back to Set, so a page queried
// before an Invalidate cannot overwrite the fresh feed.
type FeedCache interface {
	Get(ctx context.Context, limit int) ([]byte, Generation, bool)
	Set(ctx context.Context, gen Generation, limit int, payload []byte)
	Invalidate(ctx context.Context)
}

// RedisFeedCache keeps every cached page size of one generation in a hash.
// Invalidate bumps the generation counter; hashes of older generations are
// dropped or left to expire.
type RedisFeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFeedCache(client *redis.Client, ttl time.Duration) *RedisFeedCache {
	return &RedisFeedCache{client: client, ttl: ttl}
}

func feedKey(gen Generation) string {
	return feedKeyPrefix + strconv.FormatInt(int64(gen), 10)
}

func (c *RedisFeedCache) generation(ctx context.Context) (Generation, error) {
	gen, err := c.client.Get(ctx, feedGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return -1, err
	}
	return Generation(gen), nil
}

func (c *RedisFeedCache) Get(ctx context.Context, limit int) ([]byte, Generation, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		logrus.WithError(err).Warn("feed cache: read failed")
		return nil, -1, false
	}
	payload, err := c.client.HGet(ctx, feedKey(gen), strconv.Itoa(limit)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).Warn("feed cache: read failed")
		}
		return nil, gen, false
	}
	return payload, gen, true
}

func (c *RedisFeedCache) Set(ctx context.Context, gen Generation, limit int, payload []byte) {
	if gen < 0 {
		return
	}
	key := feedKey(gen)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(limit), payload)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logrus.WithError(err).Warn("feed cache: write failed")
	}
}

func (c *RedisFeedCache) Invalidate(ctx context.Context) {
	gen, err := c.client.Incr(ctx, feedGenKey).Result()
	if err != nil {
		logrus.WithError(err).Warn("feed cache: invalidate failed")
		return
	}
	if err := c.client.Del(ctx, feedKey(Generation(gen-1))).Err(); err != nil {
		logrus.WithError(err).Debug("feed cache: dropping previous generation failed")
	}
}

// MemoryFeedCache is an in-process FeedCache for a single instance.
type MemoryFeedCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	gen     Generation
	pages   map[int]memoryPage
	nowFunc func() time.Time
}

type memoryPage struct {
	payload []byte
	expires time.Time
}

func NewMemoryFeedCache(ttl time.Duration) *MemoryFeedCache {
	return &MemoryFeedCache{ttl: ttl, pages: map[int]memoryPage{}, nowFunc: time.Now}
}

func (m *MemoryFeedCache) Get(_ context.Context, limit int) ([]byte, Generation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[limit]
	if !ok || !m.nowFunc().Before(p.expires) {
		return nil, m.gen, false
	}
	return p.payload, m.gen, true
}

func (m *MemoryFeedCache) Set(_ context.Context, gen Generation, limit int, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	m.pages[limit] = memoryPage{payload: payload, expires: m.nowFunc().Add(m.ttl)}
}

func (m *MemoryFeedCache) Invalidate(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.pages = map[int]memoryPage{}
}

// NoopFeedCache is used when no cache is configured.
type NoopFeedCache struct{}

func (NoopFeedCache) Get(context.Context, int) ([]byte, Generation, bool) { return nil, -1, false }
func (NoopFeedCache) Set(context.Context, Generation, int, []byte) {}
func (NoopFeedCache) Invalidate(context.Context) {}
