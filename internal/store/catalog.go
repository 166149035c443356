package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/bouttime/internal/catalog"
)

// ImportCatalog replaces the stored catalog with cat in one transaction
// and returns the number of events written. Catalog order is kept as the
// row position.
func (s *Store) ImportCatalog(ctx context.Context, cat *catalog.Catalog) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("import catalog: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return 0, fmt.Errorf("import catalog: clear events: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (position, name, detail, ord)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("import catalog: %w", err)
	}
	defer stmt.Close()

	for i, ev := range cat.Events() {
		if _, err := stmt.ExecContext(ctx, i, ev.Name, ev.Detail, ev.Order); err != nil {
			return 0, fmt.Errorf("import catalog: entry %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO catalog_meta (key, value) VALUES ('event_count', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, fmt.Sprint(cat.Len())); err != nil {
		return 0, fmt.Errorf("import catalog: meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("import catalog: commit: %w", err)
	}
	return cat.Len(), nil
}

// SetMeta records a catalog_meta value, replacing any previous one.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("write meta %s: %w", key, err)
	}
	return nil
}

// LoadCatalog reads the stored events in catalog order.
//
// A row that cannot be decoded into an Event is a *catalog.FormatError
// naming the row position; so is any row that fails catalog validation.
func (s *Store) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, name, detail, ord
		FROM events
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, &catalog.ResourceError{Source: s.path, Err: err}
	}
	defer rows.Close()

	var events []catalog.Event
	for i := 0; rows.Next(); i++ {
		var (
			position int
			ev       catalog.Event
		)
		if err := rows.Scan(&position, &ev.Name, &ev.Detail, &ev.Order); err != nil {
			return nil, &catalog.FormatError{
				Source:  s.path,
				Index:   i,
				Message: "row does not decode as an event",
				Err:     err,
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, &catalog.ResourceError{Source: s.path, Err: err}
	}

	cat, err := catalog.New(events)
	if err != nil {
		var fe *catalog.FormatError
		if errors.As(err, &fe) && fe.Source == "" {
			fe.Source = s.path
		}
		return nil, err
	}
	return cat, nil
}

// Count returns the number of stored events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
