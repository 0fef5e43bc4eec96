// Package storage provides SQLite-based persistent storage for inkwell.
// It handles drafts, revision history, and suggestion caching.
package storage

import (
	"context"
)

// Store defines the interface for all storage operations.
// The editor process is the single writer; companion commands open the
// same database read-mostly.
type Store interface {
	// Drafts
	CreateDraft(ctx context.Context, d *Draft) error
	GetDraft(ctx context.Context, draftID string) (*Draft, error)
	GetDraftByPrefix(ctx context.Context, prefix string) (*Draft, error)
	ListDrafts(ctx context.Context, q DraftQuery) ([]Draft, error)
	SaveDraftText(ctx context.Context, draftID, text string, savedAt int64) error
	RenameDraft(ctx context.Context, draftID, title string) error
	DeleteDraft(ctx context.Context, draftID string) error

	// Revisions
	AddRevision(ctx context.Context, r *Revision) error
	GetRevision(ctx context.Context, draftID string, seq int64) (*Revision, error)
	ListRevisions(ctx context.Context, draftID string, limit int) ([]Revision, error)
	PruneRevisions(ctx context.Context, retentionDays, maxPerDraft int) (int64, error)

	// Suggestion cache
	GetCached(ctx context.Context, key string) (*CacheEntry, error)
	SetCached(ctx context.Context, entry *CacheEntry) error
	PruneExpiredCache(ctx context.Context) (int64, error)

	// Lifecycle
	Close() error
}

// Draft is a persisted writing draft. Text is the live body; revisions
// hold the labeled snapshots.
type Draft struct {
	DraftID         string
	Title           string
	Text            string
	WordCount       int
	CreatedAtUnixMs int64
	UpdatedAtUnixMs int64
}

// Revision origins label what produced a saved snapshot.
const (
	OriginManual = "manual"
	OriginAssist = "assist"
	OriginRevise = "revise"
)

// Revision is one immutable snapshot of a draft's text. Seq is assigned
// by the store and increases per draft.
type Revision struct {
	DraftID         string
	Seq             int64
	Origin          string // "manual", "assist", "revise"
	Text            string
	WordCount       int
	CreatedAtUnixMs int64
}

// DraftQuery defines parameters for listing drafts.
type DraftQuery struct {
	TitleSubstring string // Substring match on the title (case-insensitive)
	Limit          int
	Offset         int // Skip this many results (for pagination)
}

// CacheEntry represents a cached provider response.
type CacheEntry struct {
	CacheKey        string
	ResponseJSON    string
	Provider        string
	CreatedAtUnixMs int64
	ExpiresAtUnixMs int64
	HitCount        int64
}
