package index

import (
	"errors"
	"fmt"
)

// Index defines a vector index that can be built from (id, embedding) pairs
// and queried for nearest neighbours. Implementations are not required to be
// exact; callers that need exact scores rescore the candidates they return.
type Index interface {
	// Build constructs the index from the given ids and vectors, replacing
	// any previous content. ids and vectors must have the same length and all
	// vectors must share one dimensionality.
	Build(ids []string, vectors [][]float32) error

	// Query returns up to k matches as parallel slices of ids and scores,
	// where a higher score means more similar. k <= 0 returns every indexed
	// vector that can be scored. Zero-magnitude vectors never match.
	Query(query []float32, k int) (ids []string, scores []float64, err error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dim returns the indexed dimensionality, or 0 for an empty index.
	Dim() int
}

// Factory creates an empty Index.
type Factory func() Index

// ErrLengthMismatch is returned by Build when ids and vectors differ in length.
var ErrLengthMismatch = errors.New("index: ids and vectors length mismatch")

// DimensionError reports a vector whose dimensionality differs from the
// index dimensionality, either at Build or at Query time.
type DimensionError struct {
	ID       string
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("index: query dim %d != index dim %d", e.Actual, e.Expected)
	}
	return fmt.Sprintf("index: vector %s dim %d != index dim %d", e.ID, e.Actual, e.Expected)
}
