// Package search implements model search: hosted Typesense queries with a
// response cache, degrading to an in-memory substring scan when the backend
// is unreachable or unconfigured.
package search

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/enso-app/enso/internal/config"
	"github.com/enso-app/enso/internal/feed"
	"github.com/enso-app/enso/internal/models"
)

// RemoteSearcher is the hosted backend. Satisfied by typesense.Client.
type RemoteSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.RawRecord, int, error)
}

type Engine struct {
	remote RemoteSearcher
	cache  *Cache

	mu     sync.RWMutex
	corpus []models.Item

	defaultLimit int
}

// NewEngine creates a search engine. remote may be nil, in which case every
// query runs against the local corpus.
func NewEngine(remote RemoteSearcher, cfg config.SearchConfig) *Engine {
	return &Engine{
		remote:       remote,
		cache:        NewCache(cfg.CacheTTL, cfg.CacheMaxSize),
		defaultLimit: cfg.DefaultLimit,
	}
}

// SetCorpus replaces the fallback corpus, typically after a dataset reload.
// The response cache is invalidated along with it.
func (e *Engine) SetCorpus(items []models.Item) {
	e.mu.Lock()
	e.corpus = items
	e.mu.Unlock()
	e.cache.Clear()
}

// Search resolves a query remotely when possible and locally otherwise. The
// response says which mode served it; a degraded remote query additionally
// carries the reason.
func (e *Engine) Search(ctx context.Context, query string, limit int) (*models.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = e.defaultLimit
	}

	cacheKey := e.cache.GenerateKey(query, limit)
	if cached := e.cache.Get(cacheKey); cached != nil {
		return cached, nil
	}

	var response *models.SearchResponse
	if e.remote != nil {
		remoteResp, err := e.searchRemote(ctx, query, limit)
		if err != nil {
			log.Printf("remote search failed, falling back to local: %v", err)
			response = e.searchLocal(query, limit)
			response.DegradedReason = err.Error()
		} else {
			response = remoteResp
		}
	} else {
		response = e.searchLocal(query, limit)
	}

	e.cache.Set(cacheKey, response)
	return response, nil
}

func (e *Engine) searchRemote(ctx context.Context, query string, limit int) (*models.SearchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	docs, found, err := e.remote.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]models.Item, 0, len(docs))
	for _, doc := range docs {
		hits = append(hits, feed.Normalize(doc))
	}
	return &models.SearchResponse{
		Query: query,
		Mode:  models.SearchModeRemote,
		Hits:  hits,
		Found: found,
	}, nil
}

func (e *Engine) searchLocal(query string, limit int) *models.SearchResponse {
	e.mu.RLock()
	corpus := e.corpus
	e.mu.RUnlock()

	hits := localMatch(corpus, query, limit)
	if hits == nil {
		hits = []models.Item{}
	}
	return &models.SearchResponse{
		Query: query,
		Mode:  models.SearchModeLocal,
		Hits:  hits,
		Found: len(hits),
	}
}

// CacheStats exposes cache occupancy for the health endpoint.
func (e *Engine) CacheStats() (size int, expired int) {
	return e.cache.Stats()
}
