package sqlite

// Schema DDL. Statements are idempotent so an existing database file is
// reused across attaches.
const (
	createRecords = `CREATE TABLE IF NOT EXISTS records (
    record_key TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    parent_key TEXT NOT NULL DEFAULT '',
    data BLOB NOT NULL,
    updated_at TEXT NOT NULL
);`

	createHoldings = `CREATE TABLE IF NOT EXISTS holdings (
    actor TEXT NOT NULL,
    mint TEXT NOT NULL,
    granted_at TEXT NOT NULL,
    PRIMARY KEY (actor, mint)
);`

	createMeta = `CREATE TABLE IF NOT EXISTS meta (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxRecordsKind   = `CREATE INDEX IF NOT EXISTS idx_records_kind ON records(kind);`
	idxRecordsParent = `CREATE INDEX IF NOT EXISTS idx_records_parent ON records(parent_key, kind);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createRecords,
	createHoldings,
	createMeta,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxRecordsKind,
	idxRecordsParent,
}
