package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/player/pkg/types"
)

// Read returns the record stored under key.
func (b *Backend) Read(ctx context.Context, key types.Key) (types.Record, error) {
	if key == "" {
		return types.Record{}, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.Record{}, types.ErrStoreDetached
	}

	row := b.db.QueryRowContext(ctx,
		"SELECT record_key, kind, parent_key, data FROM records WHERE record_key = ?", string(key))
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Record{}, fmt.Errorf("record %s: %w", key, types.ErrRecordNotFound)
		}
		return types.Record{}, fmt.Errorf("reading record %s: %w", key, err)
	}
	return rec, nil
}

// Write creates or replaces the record under rec.Key.
func (b *Backend) Write(ctx context.Context, rec types.Record) error {
	if rec.Key == "" {
		return types.ErrInvalidID
	}
	if !rec.Kind.Valid() || rec.Data == nil {
		return types.ErrInvalidData
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	_, err := b.db.ExecContext(ctx,
		`INSERT INTO records (record_key, kind, parent_key, data, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(record_key) DO UPDATE SET
		   kind = excluded.kind,
		   parent_key = excluded.parent_key,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		string(rec.Key), string(rec.Kind), string(rec.Parent), rec.Data, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing record %s: %w", rec.Key, err)
	}
	return nil
}

// Exists reports whether a record is stored under key.
func (b *Backend) Exists(ctx context.Context, key types.Key) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return false, types.ErrStoreDetached
	}

	var one int
	err := b.db.QueryRowContext(ctx, "SELECT 1 FROM records WHERE record_key = ?", string(key)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking record %s: %w", key, err)
	}
	return true, nil
}

// Delete removes the record under key.
func (b *Backend) Delete(ctx context.Context, key types.Key) error {
	if key == "" {
		return types.ErrInvalidID
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	res, err := b.db.ExecContext(ctx, "DELETE FROM records WHERE record_key = ?", string(key))
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", key, types.ErrRecordNotFound)
	}
	return nil
}

// Dependents returns the records of kind whose parent is parent.
func (b *Backend) Dependents(ctx context.Context, parent types.Key, kind types.Kind) ([]types.Record, error) {
	if parent == "" {
		return nil, types.ErrInvalidID
	}
	return b.query(ctx,
		"SELECT record_key, kind, parent_key, data FROM records WHERE parent_key = ? AND kind = ? ORDER BY record_key",
		string(parent), string(kind))
}

// List returns every record of kind.
func (b *Backend) List(ctx context.Context, kind types.Kind) ([]types.Record, error) {
	return b.query(ctx,
		"SELECT record_key, kind, parent_key, data FROM records WHERE kind = ? ORDER BY record_key",
		string(kind))
}

func (b *Backend) query(ctx context.Context, query string, args ...any) ([]types.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return out, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (types.Record, error) {
	var key, kind, parent string
	var data []byte
	if err := s.Scan(&key, &kind, &parent, &data); err != nil {
		return types.Record{}, err
	}
	k, err := types.ParseKind(kind)
	if err != nil {
		return types.Record{}, err
	}
	return types.Record{Key: types.Key(key), Kind: k, Parent: types.Key(parent), Data: data}, nil
}
