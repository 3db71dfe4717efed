package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/player/pkg/types"
)

// HoldsToken reports whether actor holds the token minted as mint.
func (b *Backend) HoldsToken(ctx context.Context, actor, mint types.ID) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return false, types.ErrStoreDetached
	}

	var one int
	err := b.db.QueryRowContext(ctx,
		"SELECT 1 FROM holdings WHERE actor = ? AND mint = ?", actor.String(), mint.String(),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking holding: %w", err)
	}
	return true, nil
}

// Grant records that actor holds mint. Granting an existing holding is a
// no-op.
func (b *Backend) Grant(ctx context.Context, actor, mint types.ID) error {
	if actor.IsZero() || mint.IsZero() {
		return types.ErrInvalidID
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	_, err := b.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO holdings (actor, mint, granted_at) VALUES (?, ?, ?)",
		actor.String(), mint.String(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("granting holding: %w", err)
	}
	return nil
}

// Revoke removes a holding. Revoking a holding that does not exist is a
// no-op.
func (b *Backend) Revoke(ctx context.Context, actor, mint types.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	if _, err := b.db.ExecContext(ctx,
		"DELETE FROM holdings WHERE actor = ? AND mint = ?", actor.String(), mint.String(),
	); err != nil {
		return fmt.Errorf("revoking holding: %w", err)
	}
	return nil
}
