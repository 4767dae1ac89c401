package search

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/enso-app/enso/internal/models"
)

// Cache stores search responses in memory.
type Cache struct {
	data    map[string]*cachedResult
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int
}

type cachedResult struct {
	response  *models.SearchResponse
	timestamp time.Time
}

func NewCache(ttl time.Duration, maxSize int) *Cache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if maxSize <= 0 {
		maxSize = 500
	}
	return &Cache{
		data:    make(map[string]*cachedResult),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

func (c *Cache) Get(key string) *models.SearchResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cached, ok := c.data[key]; ok {
		if time.Since(cached.timestamp) < c.ttl {
			return cached.response
		}
	}
	return nil
}

func (c *Cache) Set(key string, response *models.SearchResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.data) >= c.maxSize {
		c.cleanup()
	}

	c.data[key] = &cachedResult{
		response:  response,
		timestamp: time.Now(),
	}
}

// GenerateKey derives a stable key for a query/limit pair.
func (c *Cache) GenerateKey(query string, limit int) string {
	keyData := fmt.Sprintf("%s|%d", query, limit)
	hash := sha256.Sum256([]byte(keyData))
	return hex.EncodeToString(hash[:16])
}

// cleanup removes expired entries, then the oldest entry if still full.
func (c *Cache) cleanup() {
	now := time.Now()
	for key, cached := range c.data {
		if now.Sub(cached.timestamp) > c.ttl {
			delete(c.data, key)
		}
	}

	if len(c.data) >= c.maxSize {
		oldest := time.Now()
		oldestKey := ""
		for key, cached := range c.data {
			if cached.timestamp.Before(oldest) {
				oldest = cached.timestamp
				oldestKey = key
			}
		}
		if oldestKey != "" {
			delete(c.data, oldestKey)
		}
	}
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*cachedResult)
}

// Stats reports the cache size and how many entries are past their TTL.
func (c *Cache) Stats() (size int, expired int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	size = len(c.data)
	now := time.Now()
	for _, cached := range c.data {
		if now.Sub(cached.timestamp) > c.ttl {
			expired++
		}
	}
	return
}
