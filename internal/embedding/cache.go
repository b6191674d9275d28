package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/jengzang/layover-backend-go/internal/logger"
)

// NewRedisClient connects and pings a redis server
func NewRedisClient(addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Cache memoizes activity-text embeddings per hub. Entries are keyed by hub id
// plus a fingerprint of the texts, so a changed activity list never serves
// stale vectors. Concurrent misses for the same key share one Embed call.
type Cache struct {
	embedder Embedder
	log      *logger.Logger

	mu  sync.RWMutex
	mem map[string][][]float32

	group singleflight.Group

	rdb *goredis.Client // optional second tier
	ttl time.Duration
}

// NewCache wraps an embedder. rdb may be nil.
func NewCache(embedder Embedder, rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		embedder: embedder,
		log:      log.With("service", "EmbeddingCache"),
		mem:      make(map[string][][]float32),
		rdb:      rdb,
		ttl:      ttl,
	}
}

// Embed passes through to the underlying embedder without caching
func (c *Cache) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embedder.Embed(ctx, texts)
}

// HubVectors returns one vector per text for the given hub
func (c *Cache) HubVectors(ctx context.Context, hubID string, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	key := CacheKey(hubID, texts)

	c.mu.RLock()
	vecs, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		return vecs, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if vecs := c.fromRedis(ctx, key); vecs != nil && len(vecs) == len(texts) {
			c.store(key, vecs)
			return vecs, nil
		}
		vecs, err := c.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, err
		}
		c.store(key, vecs)
		c.toRedis(ctx, key, vecs)
		return vecs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([][]float32), nil
}

// Invalidate drops every in-memory entry of a hub
func (c *Cache) Invalidate(hubID string) {
	prefix := cachePrefix(hubID)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.mem {
		if strings.HasPrefix(k, prefix) {
			delete(c.mem, k)
		}
	}
}

// Len is the number of in-memory entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.mem)
}

func (c *Cache) store(key string, vecs [][]float32) {
	c.mu.Lock()
	c.mem[key] = vecs
	c.mu.Unlock()
}

func (c *Cache) fromRedis(ctx context.Context, key string) [][]float32 {
	if c.rdb == nil {
		return nil
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("redis get failed", "key", key, "error", err)
		}
		return nil
	}
	var vecs [][]float32
	if err := json.Unmarshal(raw, &vecs); err != nil {
		c.log.Warn("redis entry corrupt", "key", key, "error", err)
		return nil
	}
	return vecs
}

func (c *Cache) toRedis(ctx context.Context, key string, vecs [][]float32) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(vecs)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("redis set failed", "key", key, "error", err)
	}
}

func cachePrefix(hubID string) string {
	return "layover:emb:" + strings.ToLower(strings.TrimSpace(hubID)) + ":"
}

// CacheKey is the cache key of a hub's activity texts
func CacheKey(hubID string, texts []string) string {
	h := sha256.New()
	for _, t := range texts {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	return cachePrefix(hubID) + hex.EncodeToString(h.Sum(nil))[:16]
}
