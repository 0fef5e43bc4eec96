package provider

import (
	"context"
	"log/slog"
)

// SuggestionCache is the storage hook the caching wrapper reads through.
// Implementations decide TTL and eviction; a miss is (nil, false, nil).
type SuggestionCache interface {
	GetSuggestions(key string) ([]Suggestion, bool, error)
	PutSuggestions(key string, suggestions []Suggestion) error
}

// Cached wraps a Provider with read-through caching keyed by the stable
// tail key. Requests without a TailKey pass straight through. Cache errors
// are logged and otherwise ignored; the wrapped provider always wins.
type Cached struct {
	inner  Provider
	cache  SuggestionCache
	logger *slog.Logger
}

// NewCached builds the caching wrapper. A nil cache disables it.
func NewCached(inner Provider, cache SuggestionCache, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{inner: inner, cache: cache, logger: logger}
}

// Name returns the wrapped provider's name.
func (c *Cached) Name() string { return c.inner.Name() }

// Available reports the wrapped provider's availability.
func (c *Cached) Available() bool { return c.inner.Available() }

// Suggest serves from cache when the stable key hits, otherwise fetches
// and stores.
func (c *Cached) Suggest(ctx context.Context, req *SuggestRequest) (*SuggestResponse, error) {
	if c.cache == nil || req.TailKey == "" {
		return c.inner.Suggest(ctx, req)
	}

	if cached, ok, err := c.cache.GetSuggestions(req.TailKey); err != nil {
		c.logger.Debug("suggestion cache read failed", "error", err)
	} else if ok {
		c.logger.Debug("suggestion cache hit", "key_words", req.TailKey)
		return &SuggestResponse{
			ProviderName: c.inner.Name(),
			Suggestions:  cached,
			LatencyMs:    0,
		}, nil
	}

	resp, err := c.inner.Suggest(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Suggestions) > 0 {
		if err := c.cache.PutSuggestions(req.TailKey, resp.Suggestions); err != nil {
			c.logger.Debug("suggestion cache write failed", "error", err)
		}
	}
	return resp, nil
}
