package vector

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Vector is a fixed-length embedding. Stores persist it as IEEE-754 float32;
// similarity is always accumulated in float64.
type Vector []float32

// Kind names the embedding modality a vector belongs to.
type Kind string

const (
	KindImage Kind = "image"
	KindText  Kind = "text"
)

// Metadata is an arbitrary payload attached to a record. It is opaque to the
// search core and must be JSON/msgpack encodable for the durable stores.
type Metadata map[string]any

// Record is a stored item with a stable identifier, metadata and one vector
// per kind.
type Record struct {
	ID       string
	Metadata Metadata
	Vectors  map[Kind]Vector
}

// Vector returns the record's vector for kind. ok is false when the vector is
// absent or empty; such records are not ranked for that kind.
func (r Record) Vector(kind Kind) (Vector, bool) {
	v, ok := r.Vectors[kind]
	if !ok || len(v) == 0 {
		return nil, false
	}
	return v, true
}

// Clone returns a deep copy of the record's vectors and a shallow copy of its
// metadata map.
func (r Record) Clone() Record {
	out := Record{ID: r.ID, Metadata: maps.Clone(r.Metadata)}
	if r.Vectors != nil {
		out.Vectors = make(map[Kind]Vector, len(r.Vectors))
		for k, v := range r.Vectors {
			out.Vectors[k] = slices.Clone(v)
		}
	}
	return out
}

var (
	// ErrNotFound is returned when a record id does not exist in the store.
	ErrNotFound = errors.New("vector: record not found")

	// ErrInvalidRecord is returned when a record cannot be stored, e.g. it
	// has no id.
	ErrInvalidRecord = errors.New("vector: invalid record")

	// ErrDimensionDrift is returned by NearestReader implementations when
	// stored vectors of the queried kind differ in dimensionality from the
	// query and so cannot be ranked by the store.
	ErrDimensionDrift = errors.New("vector: stored dimensionality differs from query")
)

// Reader supplies a snapshot of every stored record. It is the only
// capability the search core requires. The returned slice is owned by the
// caller; implementations must not mutate it afterwards. Iteration order is
// stable for a given store state and is used as the tie-break order when
// ranking.
type Reader interface {
	FetchAll(ctx context.Context) ([]Record, error)
}

// Store is the durable record store used by the application around the
// search core.
type Store interface {
	Reader

	// Insert stores the record, replacing any record with the same ID.
	// A replaced record keeps its original position in iteration order.
	Insert(ctx context.Context, rec Record) error

	// Delete removes the record with the given ID. It returns ErrNotFound
	// when no such record exists.
	Delete(ctx context.Context, id string) error

	// Close releases resources held by the store.
	Close() error
}

// Revisioned is implemented by stores that can report a counter which
// changes on every mutation. Index-backed candidate sources use it to decide
// when a cached index is stale.
type Revisioned interface {
	Revision() uint64
}

// NearestReader is implemented by stores that can pre-rank records
// themselves. Nearest returns the limit records most similar to query in
// store order.
type NearestReader interface {
	Reader
	Nearest(ctx context.Context, query Vector, kind Kind, limit int) ([]Record, error)
}

var _ NearestReader = (*SQLiteStore)(nil)

func validate(rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: id must be set", ErrInvalidRecord)
	}
	return nil
}
