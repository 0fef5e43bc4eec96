package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inkwell-sh/inkwell/internal/provider"
)

// SuggestionStore adapts the suggestion cache table to the read-through
// interface the provider layer consumes. Entries are stored as JSON under
// the stable tail key and expire after the configured TTL.
type SuggestionStore struct {
	store        *SQLiteStore
	providerName string
	ttl          time.Duration
}

// NewSuggestionStore builds the adapter. A non-positive TTL falls back to
// 24 hours; callers that want caching off pass a nil cache to the provider
// wrapper instead.
func NewSuggestionStore(store *SQLiteStore, providerName string, ttl time.Duration) *SuggestionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SuggestionStore{
		store:        store,
		providerName: providerName,
		ttl:          ttl,
	}
}

// GetSuggestions returns the cached candidate list for a stable tail key.
// A miss, including an expired entry, is (nil, false, nil).
func (s *SuggestionStore) GetSuggestions(key string) ([]provider.Suggestion, bool, error) {
	entry, err := s.store.GetCached(context.Background(), key)
	if err != nil {
		if errors.Is(err, ErrCacheNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var suggestions []provider.Suggestion
	if err := json.Unmarshal([]byte(entry.ResponseJSON), &suggestions); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return suggestions, true, nil
}

// PutSuggestions stores a candidate list under a stable tail key.
func (s *SuggestionStore) PutSuggestions(key string, suggestions []provider.Suggestion) error {
	payload, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("failed to encode suggestions: %w", err)
	}

	now := time.Now().UnixMilli()
	return s.store.SetCached(context.Background(), &CacheEntry{
		CacheKey:        key,
		ResponseJSON:    string(payload),
		Provider:        s.providerName,
		CreatedAtUnixMs: now,
		ExpiresAtUnixMs: now + s.ttl.Milliseconds(),
	})
}
