package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inkwell-sh/inkwell/internal/provider"
)

func TestSQLiteStore_GetCached_Hit(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UnixMilli()

	entry := &CacheEntry{
		CacheKey:        "tail-key-1",
		ResponseJSON:    `[{"text":"and so it goes"}]`,
		Provider:        "gemini",
		CreatedAtUnixMs: now,
		ExpiresAtUnixMs: now + 60_000,
	}
	if err := store.SetCached(ctx, entry); err != nil {
		t.Fatalf("SetCached() error = %v", err)
	}

	got, err := store.GetCached(ctx, "tail-key-1")
	if err != nil {
		t.Fatalf("GetCached() error = %v", err)
	}
	if got.ResponseJSON != entry.ResponseJSON {
		t.Errorf("ResponseJSON = %q, want %q", got.ResponseJSON, entry.ResponseJSON)
	}
	if got.Provider != "gemini" {
		t.Errorf("Provider = %s, want gemini", got.Provider)
	}
}

func TestSQLiteStore_GetCached_Miss(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	_, err := store.GetCached(context.Background(), "never-stored")
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Error = %v, want ErrCacheNotFound", err)
	}
}

func TestSQLiteStore_GetCached_Expired(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UnixMilli()

	entry := &CacheEntry{
		CacheKey:        "expired-key",
		ResponseJSON:    `[]`,
		Provider:        "gemini",
		CreatedAtUnixMs: now - 120_000,
		ExpiresAtUnixMs: now - 60_000,
	}
	if err := store.SetCached(ctx, entry); err != nil {
		t.Fatalf("SetCached() error = %v", err)
	}

	_, err := store.GetCached(ctx, "expired-key")
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Error = %v, want ErrCacheNotFound for expired entry", err)
	}
}

func TestSQLiteStore_GetCached_EmptyKey(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	_, err := store.GetCached(context.Background(), "")
	if err == nil {
		t.Error("Expected error for empty key, got nil")
	}
}

func TestSQLiteStore_GetCached_IncrementsHitCount(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UnixMilli()

	entry := &CacheEntry{
		CacheKey:        "hot-key",
		ResponseJSON:    `[]`,
		Provider:        "gemini",
		CreatedAtUnixMs: now,
		ExpiresAtUnixMs: now + 60_000,
	}
	if err := store.SetCached(ctx, entry); err != nil {
		t.Fatalf("SetCached() error = %v", err)
	}

	// Hit it three times
	for i := 0; i < 3; i++ {
		if _, err := store.GetCached(ctx, "hot-key"); err != nil {
			t.Fatalf("GetCached() error = %v", err)
		}
	}

	var hits int64
	err := store.DB().QueryRowContext(ctx,
		"SELECT hit_count FROM suggestion_cache WHERE cache_key = ?", "hot-key").Scan(&hits)
	if err != nil {
		t.Fatalf("Failed to read hit_count: %v", err)
	}
	if hits != 3 {
		t.Errorf("hit_count = %d, want 3", hits)
	}
}

func TestSQLiteStore_SetCached_DefaultTTL(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()

	entry := &CacheEntry{
		CacheKey:     "default-ttl",
		ResponseJSON: `[]`,
		Provider:     "gemini",
	}
	if err := store.SetCached(ctx, entry); err != nil {
		t.Fatalf("SetCached() error = %v", err)
	}

	if entry.CreatedAtUnixMs == 0 {
		t.Error("CreatedAtUnixMs was not defaulted")
	}
	want := entry.CreatedAtUnixMs + (24 * time.Hour).Milliseconds()
	if entry.ExpiresAtUnixMs != want {
		t.Errorf("ExpiresAtUnixMs = %d, want %d", entry.ExpiresAtUnixMs, want)
	}
}

func TestSQLiteStore_SetCached_Upsert(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UnixMilli()

	first := &CacheEntry{
		CacheKey:        "upsert-key",
		ResponseJSON:    `[{"text":"first"}]`,
		Provider:        "gemini",
		CreatedAtUnixMs: now,
		ExpiresAtUnixMs: now + 60_000,
	}
	if err := store.SetCached(ctx, first); err != nil {
		t.Fatalf("SetCached() error = %v", err)
	}

	second := &CacheEntry{
		CacheKey:        "upsert-key",
		ResponseJSON:    `[{"text":"second"}]`,
		Provider:        "gemini",
		CreatedAtUnixMs: now,
		ExpiresAtUnixMs: now + 60_000,
	}
	if err := store.SetCached(ctx, second); err != nil {
		t.Fatalf("SetCached() upsert error = %v", err)
	}

	got, err := store.GetCached(ctx, "upsert-key")
	if err != nil {
		t.Fatalf("GetCached() error = %v", err)
	}
	if got.ResponseJSON != `[{"text":"second"}]` {
		t.Errorf("ResponseJSON = %q, want the second write", got.ResponseJSON)
	}
}

func TestSQLiteStore_SetCached_Validation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	tests := []struct {
		name    string
		entry   *CacheEntry
		wantErr string
	}{
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: "cache entry cannot be nil",
		},
		{
			name:    "missing cache_key",
			entry:   &CacheEntry{ResponseJSON: "[]", Provider: "gemini"},
			wantErr: "cache_key is required",
		},
		{
			name:    "missing response_json",
			entry:   &CacheEntry{CacheKey: "k", Provider: "gemini"},
			wantErr: "response_json is required",
		},
		{
			name:    "missing provider",
			entry:   &CacheEntry{CacheKey: "k", ResponseJSON: "[]"},
			wantErr: "provider is required",
		},
	}

	for _, tt := range tests {
		tt := tt // rebind loop variable for parallel safety
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := store.SetCached(context.Background(), tt.entry)
			if err == nil {
				t.Error("Expected error, got nil")
				return
			}
			if !contains(err.Error(), tt.wantErr) {
				t.Errorf("Error = %v, want containing %s", err, tt.wantErr)
			}
		})
	}
}

func TestSQLiteStore_PruneExpiredCache_RemovesExpired(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UnixMilli()

	expired := &CacheEntry{
		CacheKey:        "stale",
		ResponseJSON:    `[]`,
		Provider:        "gemini",
		CreatedAtUnixMs: now - 120_000,
		ExpiresAtUnixMs: now - 60_000,
	}
	live := &CacheEntry{
		CacheKey:        "live",
		ResponseJSON:    `[]`,
		Provider:        "gemini",
		CreatedAtUnixMs: now,
		ExpiresAtUnixMs: now + 60_000,
	}
	for _, e := range []*CacheEntry{expired, live} {
		if err := store.SetCached(ctx, e); err != nil {
			t.Fatalf("SetCached() error = %v", err)
		}
	}

	pruned, err := store.PruneExpiredCache(ctx)
	if err != nil {
		t.Fatalf("PruneExpiredCache() error = %v", err)
	}
	if pruned != 1 {
		t.Errorf("Pruned %d entries, want 1", pruned)
	}

	if _, err := store.GetCached(ctx, "live"); err != nil {
		t.Errorf("Live entry should survive pruning: %v", err)
	}
}

func TestSQLiteStore_GetCacheStats(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UnixMilli()

	entries := []*CacheEntry{
		{CacheKey: "a", ResponseJSON: "[]", Provider: "gemini", CreatedAtUnixMs: now, ExpiresAtUnixMs: now + 60_000},
		{CacheKey: "b", ResponseJSON: "[]", Provider: "gemini", CreatedAtUnixMs: now, ExpiresAtUnixMs: now - 60_000},
	}
	for _, e := range entries {
		if err := store.SetCached(ctx, e); err != nil {
			t.Fatalf("SetCached() error = %v", err)
		}
	}

	// One hit on the live entry
	if _, err := store.GetCached(ctx, "a"); err != nil {
		t.Fatalf("GetCached() error = %v", err)
	}

	stats, err := store.GetCacheStats(ctx)
	if err != nil {
		t.Fatalf("GetCacheStats() error = %v", err)
	}
	if stats.TotalEntries != 2 {
		t.Errorf("TotalEntries = %d, want 2", stats.TotalEntries)
	}
	if stats.ExpiredEntries != 1 {
		t.Errorf("ExpiredEntries = %d, want 1", stats.ExpiredEntries)
	}
	if stats.TotalHits != 1 {
		t.Errorf("TotalHits = %d, want 1", stats.TotalHits)
	}
}

func TestSuggestionStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	cache := NewSuggestionStore(store, "gemini", time.Hour)

	suggestions := []provider.Suggestion{
		{Text: "and the rain kept falling", Score: 0.9},
		{Text: "and the sky cleared", Score: 0.4, Sources: []provider.Source{
			{Title: "Weather notes", URL: "https://example.com/weather"},
		}},
	}
	if err := cache.PutSuggestions("stable-key", suggestions); err != nil {
		t.Fatalf("PutSuggestions() error = %v", err)
	}

	got, ok, err := cache.GetSuggestions("stable-key")
	if err != nil {
		t.Fatalf("GetSuggestions() error = %v", err)
	}
	if !ok {
		t.Fatal("Expected a cache hit")
	}
	if len(got) != 2 {
		t.Fatalf("Got %d suggestions, want 2", len(got))
	}
	if got[0].Text != "and the rain kept falling" {
		t.Errorf("Text = %q", got[0].Text)
	}
	if got[1].Sources[0].URL != "https://example.com/weather" {
		t.Errorf("Source URL = %q", got[1].Sources[0].URL)
	}
}

func TestSuggestionStore_MissIsNotError(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	cache := NewSuggestionStore(store, "gemini", time.Hour)

	got, ok, err := cache.GetSuggestions("never-stored")
	if err != nil {
		t.Errorf("Miss should not error: %v", err)
	}
	if ok {
		t.Error("Expected a miss")
	}
	if got != nil {
		t.Errorf("Got %v, want nil", got)
	}
}

func TestSuggestionStore_ExpiredEntryIsMiss(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UnixMilli()

	// Write directly with an expiry in the past
	entry := &CacheEntry{
		CacheKey:        "gone-key",
		ResponseJSON:    `[{"text":"too late"}]`,
		Provider:        "gemini",
		CreatedAtUnixMs: now - 120_000,
		ExpiresAtUnixMs: now - 60_000,
	}
	if err := store.SetCached(ctx, entry); err != nil {
		t.Fatalf("SetCached() error = %v", err)
	}

	cache := NewSuggestionStore(store, "gemini", time.Hour)
	_, ok, err := cache.GetSuggestions("gone-key")
	if err != nil {
		t.Errorf("Expired entry should be a clean miss: %v", err)
	}
	if ok {
		t.Error("Expected a miss for the expired entry")
	}
}

func TestSuggestionStore_CorruptEntry(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UnixMilli()

	entry := &CacheEntry{
		CacheKey:        "corrupt-key",
		ResponseJSON:    `{not json`,
		Provider:        "gemini",
		CreatedAtUnixMs: now,
		ExpiresAtUnixMs: now + 60_000,
	}
	if err := store.SetCached(ctx, entry); err != nil {
		t.Fatalf("SetCached() error = %v", err)
	}

	cache := NewSuggestionStore(store, "gemini", time.Hour)
	_, ok, err := cache.GetSuggestions("corrupt-key")
	if err == nil {
		t.Error("Expected error for corrupt entry")
	}
	if ok {
		t.Error("Corrupt entry must not count as a hit")
	}
}
