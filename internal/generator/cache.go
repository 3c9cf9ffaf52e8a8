package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores raw model output keyed by a hash of the prompts. A nil
// client disables caching, so the generator works without Redis.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

const defaultCacheTTL = 30 * 24 * time.Hour

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb, ttl: defaultCacheTTL}
}

func cacheKey(systemPrompt, userPrompt string) string {
	h := sha256.New()
	h.Write([]byte(systemPrompt))
	h.Write([]byte{0})
	h.Write([]byte(userPrompt))
	return "llm:quiz:" + hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) Get(ctx context.Context, systemPrompt, userPrompt string) (string, bool) {
	if c == nil || c.rdb == nil {
		return "", false
	}
	val, err := c.rdb.Get(ctx, cacheKey(systemPrompt, userPrompt)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		log.Printf("[generator] cache read failed: %v", err)
		return "", false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, systemPrompt, userPrompt, content string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(systemPrompt, userPrompt), content, c.ttl).Err(); err != nil {
		log.Printf("[generator] cache write failed: %v", err)
	}
}
