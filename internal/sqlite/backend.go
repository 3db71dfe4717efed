// Package sqlite implements the SQLite record store for players and player
// classes. Records are opaque encoded blobs keyed by derived keys; the
// backend also keeps a holdings table so it can answer token ownership
// questions.
//
// A database belongs to the program it was first attached with. Keys are
// derived from the program, so attaching it under another program fails
// with types.ErrProgramMismatch instead of silently hiding its records.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/player/pkg/types"
)

// DBFile is the database file created in DataDir.
const DBFile = "player.db"

const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

const metaProgram = "program_id"

// Backend implements types.Backend using SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens (or creates) the database in config.DataDir, applies the
// schema and claims the database for config's program. Returns
// ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendSQLite {
		return fmt.Errorf("sqlite backend given %q: %w", config.Backend, types.ErrBackendUnknown)
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DBFile)+dsnPragmas)
	if err != nil {
		return err
	}
	// SQLite admits one writer at a time.
	db.SetMaxOpenConns(1)

	for _, ddl := range slices.Concat(schemaDDL, indexDDL) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	if err := claimProgram(db, config.ProgramID); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// claimProgram records program on a fresh database and checks it on an
// existing one.
func claimProgram(db *sql.DB, program string) error {
	if _, err := db.Exec(`INSERT OR IGNORE INTO meta (name, value) VALUES (?, ?)`, metaProgram, program); err != nil {
		return fmt.Errorf("recording program: %w", err)
	}
	var owner string
	err := db.QueryRow(`SELECT value FROM meta WHERE name = ?`, metaProgram).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("program not recorded: %w", types.ErrInvalidData)
	}
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}
	if owner != program {
		return fmt.Errorf("database program %q, attaching as %q: %w", owner, program, types.ErrProgramMismatch)
	}
	return nil
}

// Detach closes the database. Detach is idempotent. After Detach, all
// operations return ErrStoreDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// Program returns the program id the backend is attached with.
func (b *Backend) Program() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.ProgramID
}

var _ types.Backend = (*Backend)(nil)
