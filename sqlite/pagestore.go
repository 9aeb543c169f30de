package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/archlens/archlens"
)

var _ archlens.PageStore = (*PageStore)(nil)

// PageStore persists fetched catalog pages keyed by query key hash.
type PageStore struct {
	db *DB
}

// NewPageStore creates a PageStore backed by db.
func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

// keyHash renders a query key hash as a fixed-width hex string, the
// storage key.
func keyHash(key archlens.QueryKey) string {
	return fmt.Sprintf("%016x", key.Hash())
}

// LoadPages returns all stored pages for a key in page order.
func (s *PageStore) LoadPages(ctx context.Context, key archlens.QueryKey) ([]archlens.PageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT page, items, has_next, fetched_at
		FROM pages
		WHERE key_hash = ?
		ORDER BY page`,
		keyHash(key),
	)
	if err != nil {
		return nil, archlens.Errorf(archlens.EINTERNAL, "load pages for %s: %v", key, err)
	}
	defer rows.Close()

	var records []archlens.PageRecord
	for rows.Next() {
		var rec archlens.PageRecord
		var hasNext int
		var fetchedAt string
		if err := rows.Scan(&rec.Page, &rec.Items, &hasNext, &fetchedAt); err != nil {
			return nil, archlens.Errorf(archlens.EINTERNAL, "scan page for %s: %v", key, err)
		}
		rec.HasNext = hasNext != 0
		ts, err := time.Parse(time.RFC3339Nano, fetchedAt)
		if err != nil {
			return nil, archlens.Errorf(archlens.EINTERNAL, "parse fetched_at for %s: %v", key, err)
		}
		rec.FetchedAt = ts
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, archlens.Errorf(archlens.EINTERNAL, "iterate pages for %s: %v", key, err)
	}
	return records, nil
}

// SavePage stores one page for a key, replacing any existing record for
// the same page number.
func (s *PageStore) SavePage(ctx context.Context, key archlens.QueryKey, rec archlens.PageRecord) error {
	hasNext := 0
	if rec.HasNext {
		hasNext = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (key_hash, key, page, items, has_next, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (key_hash, page) DO UPDATE SET
			items = excluded.items,
			has_next = excluded.has_next,
			fetched_at = excluded.fetched_at`,
		keyHash(key), key.String(), rec.Page, []byte(rec.Items), hasNext,
		rec.FetchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return archlens.Errorf(archlens.EINTERNAL, "save page %d for %s: %v", rec.Page, key, err)
	}
	return nil
}

// DeleteKey removes all stored pages for a key.
func (s *PageStore) DeleteKey(ctx context.Context, key archlens.QueryKey) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE key_hash = ?`, keyHash(key)); err != nil {
		return archlens.Errorf(archlens.EINTERNAL, "delete pages for %s: %v", key, err)
	}
	return nil
}

// Purge removes all pages fetched before the given time.
func (s *PageStore) Purge(ctx context.Context, before time.Time) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE fetched_at < ?`,
		before.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return archlens.Errorf(archlens.EINTERNAL, "purge pages: %v", err)
	}
	return nil
}
