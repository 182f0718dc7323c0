package vector

import (
	"context"
	"database/sql"
)

const recordsSchema = `
CREATE TABLE IF NOT EXISTS records (
    seq  INTEGER PRIMARY KEY AUTOINCREMENT,
    id   TEXT NOT NULL UNIQUE,
    meta TEXT NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS record_vectors (
    record_id TEXT NOT NULL,
    kind      TEXT NOT NULL,
    embedding BLOB NOT NULL,
    PRIMARY KEY(record_id, kind)
);
CREATE INDEX IF NOT EXISTS record_vectors_kind ON record_vectors(kind);
`

// EnsureSchema creates the records and record_vectors tables in the provided
// database if they do not already exist. Records keep their insertion
// sequence in seq, which defines the iteration order of FetchAll.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, recordsSchema)
	return err
}
