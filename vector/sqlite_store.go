package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// SQLiteStore is a Store backed by a SQLite database opened through
// engine.Open. The *sql.DB is a connection pool; every operation acquires a
// connection for its own duration, and FetchAll reads inside a single
// transaction so it sees a consistent snapshot.
type SQLiteStore struct {
	db       *sql.DB
	revision atomic.Uint64
}

// NewSQLiteStore creates a new SQLite-backed Store. It ensures the records
// schema exists in the provided database.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("vector: db is nil")
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("vector: ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Insert upserts the record and replaces all of its vectors in one
// transaction. An existing record keeps its sequence position.
func (s *SQLiteStore) Insert(ctx context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	meta, err := encodeMetadata(rec.Metadata)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO records(id, meta) VALUES(?, ?)
ON CONFLICT(id) DO UPDATE SET meta = excluded.meta`, rec.ID, meta); err != nil {
		return fmt.Errorf("vector: upsert record %s: %w", rec.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM record_vectors WHERE record_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("vector: clear vectors %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO record_vectors(record_id, kind, embedding) VALUES(?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for kind, vec := range rec.Vectors {
		if len(vec) == 0 {
			continue
		}
		emb, err := EncodeEmbedding(vec)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, string(kind), emb); err != nil {
			return fmt.Errorf("vector: insert %s vector %s: %w", kind, rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.revision.Add(1)
	return nil
}

// FetchAll loads every record with its vectors in insertion order.
func (s *SQLiteStore) FetchAll(ctx context.Context) ([]Record, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out, err := queryRecords(ctx, tx, `SELECT id, meta FROM records ORDER BY seq`)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	if err := loadVectors(ctx, tx, out, `SELECT record_id, kind, embedding FROM record_vectors`); err != nil {
		return nil, err
	}
	return out, nil
}

// Nearest ranks kind vectors against query inside SQLite with vec_cosine and
// returns the limit best records in insertion order; limit <= 0 returns
// every scorable record. Vectors that cannot be scored (zero norm) are left
// out. When any stored kind vector differs in dimensionality from query it
// returns ErrDimensionDrift, since such vectors cannot be ranked in SQL.
func (s *SQLiteStore) Nearest(ctx context.Context, query Vector, kind Kind, limit int) ([]Record, error) {
	blob, err := EncodeEmbedding(query)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var drift int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM record_vectors
WHERE kind = ? AND vec_dim(embedding) <> ?`, string(kind), len(query)).Scan(&drift); err != nil {
		return nil, fmt.Errorf("vector: nearest %s: %w", kind, err)
	}
	if drift > 0 {
		return nil, fmt.Errorf("%w: %d %s vectors differ from dim %d", ErrDimensionDrift, drift, kind, len(query))
	}

	out, err := queryRecords(ctx, tx, `WITH scored AS (
    SELECT r.seq, r.id, r.meta, vec_cosine(v.embedding, ?) AS score
    FROM record_vectors v
    JOIN records r ON r.id = v.record_id
    WHERE v.kind = ?
), top AS (
    SELECT seq, id, meta FROM scored
    WHERE score IS NOT NULL
    ORDER BY score DESC, seq
    LIMIT ?
)
SELECT id, meta FROM top ORDER BY seq`, blob, string(kind), limit)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	ids := make([]string, len(out))
	for i, rec := range out {
		ids[i] = rec.ID
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	if err := loadVectors(ctx, tx, out, `SELECT record_id, kind, embedding FROM record_vectors
WHERE record_id IN (SELECT value FROM json_each(?))`, string(idsJSON)); err != nil {
		return nil, err
	}
	return out, nil
}

func queryRecords(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]Record, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector: query records: %w", err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var id, meta string
		if err := rows.Scan(&id, &meta); err != nil {
			return nil, err
		}
		md, err := decodeMetadata(meta)
		if err != nil {
			return nil, fmt.Errorf("vector: record %s: %w", id, err)
		}
		out = append(out, Record{ID: id, Metadata: md, Vectors: map[Kind]Vector{}})
	}
	return out, rows.Err()
}

// loadVectors attaches the (record_id, kind, embedding) rows of query to the
// matching records of out.
func loadVectors(ctx context.Context, tx *sql.Tx, out []Record, query string, args ...any) error {
	pos := make(map[string]int, len(out))
	for i, rec := range out {
		pos[rec.ID] = i
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("vector: query vectors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, kind string
		var blob []byte
		if err := rows.Scan(&id, &kind, &blob); err != nil {
			return err
		}
		i, ok := pos[id]
		if !ok {
			continue
		}
		vec, err := DecodeEmbedding(blob)
		if err != nil {
			return fmt.Errorf("vector: record %s kind %s: %w", id, kind, err)
		}
		out[i].Vectors[Kind(kind)] = vec
	}
	return rows.Err()
}

// Delete removes a record and its vectors by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("vector: Delete called with empty id")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM record_vectors WHERE record_id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.revision.Add(1)
	return nil
}

// Inspect computes a Report for kind in SQL using the vec_dim and vec_norm
// functions registered by engine.Open.
func (s *SQLiteStore) Inspect(ctx context.Context, kind Kind) (Report, error) {
	rep := Report{Kind: kind, Dimensions: map[int]int{}}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&rep.Records); err != nil {
		return Report{}, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT vec_dim(v.embedding) AS dim,
       COUNT(*),
       SUM(CASE WHEN vec_norm(v.embedding) = 0 THEN 1 ELSE 0 END)
FROM record_vectors v
JOIN records r ON r.id = v.record_id
WHERE v.kind = ? AND length(v.embedding) > 0
GROUP BY dim`, string(kind))
	if err != nil {
		return Report{}, fmt.Errorf("vector: inspect %s: %w", kind, err)
	}
	defer rows.Close()
	present := 0
	for rows.Next() {
		var dim, count, degenerate int
		if err := rows.Scan(&dim, &count, &degenerate); err != nil {
			return Report{}, err
		}
		rep.Dimensions[dim] = count
		rep.Degenerate += degenerate
		present += count
	}
	if err := rows.Err(); err != nil {
		return Report{}, err
	}
	rep.Missing = rep.Records - present
	return rep, nil
}

// Revision implements Revisioned for mutations made through this store.
func (s *SQLiteStore) Revision() uint64 { return s.revision.Load() }

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func encodeMetadata(md Metadata) (string, error) {
	if len(md) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(md)
	if err != nil {
		return "", fmt.Errorf("vector: marshal metadata: %w", err)
	}
	return string(b), nil
}

func decodeMetadata(s string) (Metadata, error) {
	if s == "" || s == "{}" {
		return Metadata{}, nil
	}
	var md Metadata
	if err := json.Unmarshal([]byte(s), &md); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return md, nil
}

var (
	_ Store      = (*SQLiteStore)(nil)
	_ Revisioned = (*SQLiteStore)(nil)
	_ Inspector  = (*SQLiteStore)(nil)
)
