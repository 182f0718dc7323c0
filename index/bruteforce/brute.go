package bruteforce

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/viant/vecsearch/index"
)

// Index is a simple brute-force vector index implementing cosine similarity.
type Index struct {
	ids  []string
	vecs [][]float32
	dim  int
	mags []float64
}

// New returns an empty Index.
func New() index.Index { return &Index{} }

// Build loads ids and vectors and precomputes magnitudes.
func (i *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("bruteforce: %w: %d != %d", index.ErrLengthMismatch, len(ids), len(vectors))
	}
	if len(ids) == 0 {
		i.ids, i.vecs, i.mags, i.dim = nil, nil, nil, 0
		return nil
	}
	dim := len(vectors[0])
	for j := range vectors {
		if len(vectors[j]) != dim {
			return &index.DimensionError{ID: ids[j], Expected: dim, Actual: len(vectors[j])}
		}
	}
	mags := make([]float64, len(vectors))
	for j := range vectors {
		mags[j] = magnitude(vectors[j])
	}
	i.ids = slices.Clone(ids)
	i.vecs = slices.Clone(vectors)
	i.dim = dim
	i.mags = mags
	return nil
}

// Query returns top-k by cosine similarity. Equal scores keep build order.
func (i *Index) Query(query []float32, k int) ([]string, []float64, error) {
	if i.dim == 0 || len(i.vecs) == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, &index.DimensionError{Expected: i.dim, Actual: len(query)}
	}
	qm := magnitude(query)
	if qm == 0 {
		return nil, nil, nil
	}
	type scored struct {
		idx   int
		score float64
	}
	scoreds := make([]scored, 0, len(i.vecs))
	for j := range i.vecs {
		if i.mags[j] == 0 {
			continue
		}
		s := dot(query, i.vecs[j]) / (qm * i.mags[j])
		if math.IsNaN(s) || math.IsInf(s, 0) {
			continue
		}
		scoreds = append(scoreds, scored{idx: j, score: s})
	}
	slices.SortStableFunc(scoreds, func(a, b scored) int { return cmp.Compare(b.score, a.score) })
	if k <= 0 || k > len(scoreds) {
		k = len(scoreds)
	}
	outIDs := make([]string, k)
	outScores := make([]float64, k)
	for n := 0; n < k; n++ {
		outIDs[n] = i.ids[scoreds[n].idx]
		outScores[n] = scoreds[n].score
	}
	return outIDs, outScores, nil
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int { return len(i.ids) }

// Dim returns the indexed dimensionality.
func (i *Index) Dim() int { return i.dim }

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func magnitude(v []float32) float64 { return math.Sqrt(dot(v, v)) }

var _ index.Index = (*Index)(nil)
