package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/inkwell-sh/inkwell/internal/textwin"
)

// ErrDraftNotFound is returned when a draft is not found.
var ErrDraftNotFound = errors.New("draft not found")

// ErrRevisionNotFound is returned when a revision is not found.
var ErrRevisionNotFound = errors.New("revision not found")

// ErrAmbiguousDraft is returned when a prefix matches multiple drafts.
var ErrAmbiguousDraft = errors.New("ambiguous draft prefix")

// errDraftIDRequired is the validation message for a missing draft_id.
const errDraftIDRequired = "draft_id is required"

// msPerDay is one day in milliseconds, for retention cutoffs.
const msPerDay = int64(24 * time.Hour / time.Millisecond)

// CreateDraft creates a new draft record.
// It derives the word count from the text when not already set.
func (s *SQLiteStore) CreateDraft(ctx context.Context, d *Draft) error {
	if d == nil {
		return errors.New("draft cannot be nil")
	}
	if d.DraftID == "" {
		return errors.New(errDraftIDRequired)
	}

	if d.CreatedAtUnixMs == 0 {
		d.CreatedAtUnixMs = time.Now().UnixMilli()
	}
	if d.UpdatedAtUnixMs == 0 {
		d.UpdatedAtUnixMs = d.CreatedAtUnixMs
	}
	if d.WordCount == 0 {
		d.WordCount = textwin.Words(d.Text)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drafts (
			draft_id, title, body, word_count,
			created_at_unix_ms, updated_at_unix_ms
		) VALUES (?, ?, ?, ?, ?, ?)
	`,
		d.DraftID,
		d.Title,
		d.Text,
		d.WordCount,
		d.CreatedAtUnixMs,
		d.UpdatedAtUnixMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("draft with id %s already exists", d.DraftID)
		}
		return fmt.Errorf("failed to create draft: %w", err)
	}
	return nil
}

// GetDraft retrieves a draft by ID.
func (s *SQLiteStore) GetDraft(ctx context.Context, draftID string) (*Draft, error) {
	if draftID == "" {
		return nil, errors.New(errDraftIDRequired)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT draft_id, title, body, word_count,
		       created_at_unix_ms, updated_at_unix_ms
		FROM drafts WHERE draft_id = ?
	`, draftID)

	var d Draft
	err := row.Scan(
		&d.DraftID,
		&d.Title,
		&d.Text,
		&d.WordCount,
		&d.CreatedAtUnixMs,
		&d.UpdatedAtUnixMs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	return &d, nil
}

// GetDraftByPrefix retrieves a draft by ID prefix.
// Returns ErrDraftNotFound if no draft matches.
// Returns ErrAmbiguousDraft if multiple drafts match.
func (s *SQLiteStore) GetDraftByPrefix(ctx context.Context, prefix string) (*Draft, error) {
	if prefix == "" {
		return nil, errors.New("prefix is required")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT draft_id, title, body, word_count,
		       created_at_unix_ms, updated_at_unix_ms
		FROM drafts WHERE draft_id LIKE ? || '%'
		ORDER BY updated_at_unix_ms DESC
		LIMIT 2
	`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		err := rows.Scan(
			&d.DraftID,
			&d.Title,
			&d.Text,
			&d.WordCount,
			&d.CreatedAtUnixMs,
			&d.UpdatedAtUnixMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drafts: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrDraftNotFound
	}

	if len(drafts) > 1 {
		return nil, ErrAmbiguousDraft
	}

	return &drafts[0], nil
}

// ListDrafts queries drafts based on the given criteria, most recently
// updated first. Bodies are omitted to keep listings cheap; load a single
// draft with GetDraft.
func (s *SQLiteStore) ListDrafts(ctx context.Context, q DraftQuery) ([]Draft, error) {
	query := `
		SELECT draft_id, title, word_count,
		       created_at_unix_ms, updated_at_unix_ms
		FROM drafts
		WHERE 1=1
	`
	args := make([]interface{}, 0)

	if q.TitleSubstring != "" {
		query += " AND LOWER(title) LIKE '%' || LOWER(?) || '%'"
		args = append(args, q.TitleSubstring)
	}

	query += " ORDER BY updated_at_unix_ms DESC"

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	} else {
		// Default limit to prevent unbounded queries
		query += " LIMIT 100"
	}

	if q.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		err := rows.Scan(
			&d.DraftID,
			&d.Title,
			&d.WordCount,
			&d.CreatedAtUnixMs,
			&d.UpdatedAtUnixMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drafts: %w", err)
	}

	return drafts, nil
}

// SaveDraftText replaces a draft's body and bumps its updated timestamp.
// A zero savedAt means now.
func (s *SQLiteStore) SaveDraftText(ctx context.Context, draftID, text string, savedAt int64) error {
	if draftID == "" {
		return errors.New(errDraftIDRequired)
	}
	if savedAt == 0 {
		savedAt = time.Now().UnixMilli()
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE drafts
		SET body = ?, word_count = ?, updated_at_unix_ms = ?
		WHERE draft_id = ?
	`, text, textwin.Words(text), savedAt, draftID)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// RenameDraft updates a draft's title without touching the body or the
// updated timestamp.
func (s *SQLiteStore) RenameDraft(ctx context.Context, draftID, title string) error {
	if draftID == "" {
		return errors.New(errDraftIDRequired)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE drafts SET title = ? WHERE draft_id = ?
	`, title, draftID)
	if err != nil {
		return fmt.Errorf("failed to rename draft: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// DeleteDraft removes a draft and all of its revisions.
func (s *SQLiteStore) DeleteDraft(ctx context.Context, draftID string) error {
	if draftID == "" {
		return errors.New(errDraftIDRequired)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM revisions WHERE draft_id = ?`, draftID); err != nil {
		return fmt.Errorf("failed to delete revisions: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM drafts WHERE draft_id = ?`, draftID)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrDraftNotFound
	}

	return tx.Commit()
}

// AddRevision appends a snapshot to a draft's revision history.
// The sequence number is assigned by the store and written back to r.
func (s *SQLiteStore) AddRevision(ctx context.Context, r *Revision) error {
	if r == nil {
		return errors.New("revision cannot be nil")
	}
	if r.DraftID == "" {
		return errors.New(errDraftIDRequired)
	}
	if r.Origin == "" {
		return errors.New("origin is required")
	}

	if r.CreatedAtUnixMs == 0 {
		r.CreatedAtUnixMs = time.Now().UnixMilli()
	}
	if r.WordCount == 0 {
		r.WordCount = textwin.Words(r.Text)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Next sequence number for this draft
	var seq int64
	row := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM revisions WHERE draft_id = ?
	`, r.DraftID)
	if err := row.Scan(&seq); err != nil {
		return fmt.Errorf("failed to allocate revision seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO revisions (
			draft_id, seq, origin, body, word_count, created_at_unix_ms
		) VALUES (?, ?, ?, ?, ?, ?)
	`,
		r.DraftID,
		seq,
		r.Origin,
		r.Text,
		r.WordCount,
		r.CreatedAtUnixMs,
	)
	if err != nil {
		// Check for foreign key violation (unknown draft_id)
		if isForeignKeyError(err) {
			return fmt.Errorf("draft_id %s does not exist", r.DraftID)
		}
		return fmt.Errorf("failed to add revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit revision: %w", err)
	}

	r.Seq = seq
	return nil
}

// GetRevision retrieves one revision, including its body.
func (s *SQLiteStore) GetRevision(ctx context.Context, draftID string, seq int64) (*Revision, error) {
	if draftID == "" {
		return nil, errors.New(errDraftIDRequired)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT draft_id, seq, origin, body, word_count, created_at_unix_ms
		FROM revisions WHERE draft_id = ? AND seq = ?
	`, draftID, seq)

	var r Revision
	err := row.Scan(
		&r.DraftID,
		&r.Seq,
		&r.Origin,
		&r.Text,
		&r.WordCount,
		&r.CreatedAtUnixMs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRevisionNotFound
		}
		return nil, fmt.Errorf("failed to get revision: %w", err)
	}

	return &r, nil
}

// ListRevisions lists a draft's revision metadata, newest first.
// Bodies are omitted; load a single revision with GetRevision.
func (s *SQLiteStore) ListRevisions(ctx context.Context, draftID string, limit int) ([]Revision, error) {
	if draftID == "" {
		return nil, errors.New(errDraftIDRequired)
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT draft_id, seq, origin, word_count, created_at_unix_ms
		FROM revisions WHERE draft_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`, draftID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query revisions: %w", err)
	}
	defer rows.Close()

	var revisions []Revision
	for rows.Next() {
		var r Revision
		err := rows.Scan(
			&r.DraftID,
			&r.Seq,
			&r.Origin,
			&r.WordCount,
			&r.CreatedAtUnixMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		revisions = append(revisions, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revisions: %w", err)
	}

	return revisions, nil
}

// PruneRevisions enforces the retention policy: revisions older than
// retentionDays are removed, then each draft is capped to maxPerDraft
// newest revisions. A zero or negative value disables that half of the
// policy. Returns the number of revisions removed.
func (s *SQLiteStore) PruneRevisions(ctx context.Context, retentionDays, maxPerDraft int) (int64, error) {
	var pruned int64

	if retentionDays > 0 {
		cutoff := time.Now().UnixMilli() - int64(retentionDays)*msPerDay
		result, err := s.db.ExecContext(ctx, `
			DELETE FROM revisions WHERE created_at_unix_ms < ?
		`, cutoff)
		if err != nil {
			return 0, fmt.Errorf("failed to prune old revisions: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		pruned += rows
	}

	if maxPerDraft > 0 {
		result, err := s.db.ExecContext(ctx, `
			DELETE FROM revisions WHERE (draft_id, seq) IN (
				SELECT draft_id, seq FROM (
					SELECT draft_id, seq,
					       ROW_NUMBER() OVER (PARTITION BY draft_id ORDER BY seq DESC) AS rn
					FROM revisions
				) WHERE rn > ?
			)
		`, maxPerDraft)
		if err != nil {
			return 0, fmt.Errorf("failed to cap revisions per draft: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		pruned += rows
	}

	return pruned, nil
}

// isDuplicateKeyError checks if the error is a duplicate key constraint violation.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return contains(errStr, "UNIQUE constraint failed") ||
		contains(errStr, "duplicate key") ||
		contains(errStr, "already exists")
}

// isForeignKeyError checks if the error is a foreign key constraint violation.
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return contains(errStr, "FOREIGN KEY constraint failed") ||
		contains(errStr, "foreign key constraint")
}
