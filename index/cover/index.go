package cover

import (
	"cmp"
	"container/heap"
	"fmt"
	"math"
	"slices"

	"github.com/viant/vec/search"
	"github.com/viant/vecsearch/index"
)

// Index implements a cosine kNN index using a VP-tree to prune search.
type Index struct {
	ids  []string
	vecs [][]float32
	mags []float32
	dim  int
	size int
	root *node
}

type node struct {
	idx   int // index into ids/vecs
	thr   float64
	left  *node
	right *node
}

// New returns an empty Index.
func New() index.Index { return &Index{} }

// Build constructs the VP-tree and caches magnitudes. Zero-magnitude vectors
// are kept for Len but never inserted into the tree.
func (i *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("cover: %w: %d != %d", index.ErrLengthMismatch, len(ids), len(vectors))
	}
	*i = Index{}
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	for j := range vectors {
		if len(vectors[j]) != dim {
			return &index.DimensionError{ID: ids[j], Expected: dim, Actual: len(vectors[j])}
		}
	}
	i.ids = slices.Clone(ids)
	i.vecs = slices.Clone(vectors)
	i.mags = make([]float32, len(vectors))
	i.dim = dim
	idxs := make([]int, 0, len(vectors))
	for j := range vectors {
		i.mags[j] = search.Float32s(vectors[j]).Magnitude()
		if i.mags[j] > 0 {
			idxs = append(idxs, j)
		}
	}
	i.size = len(idxs)
	i.root = i.buildVP(idxs)
	return nil
}

func (i *Index) buildVP(idxs []int) *node {
	if len(idxs) == 0 {
		return nil
	}
	// Last element is the vantage point; keeps builds deterministic.
	vp := idxs[len(idxs)-1]
	rest := idxs[:len(idxs)-1]
	if len(rest) == 0 {
		return &node{idx: vp}
	}
	dists := make([]float64, len(rest))
	for k, j := range rest {
		dists[k] = i.distance(i.vecs[vp], i.mags[vp], j)
	}
	order := make([]int, len(rest))
	for k := range order {
		order[k] = k
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(dists[a], dists[b]) })
	mid := len(order) / 2
	left := make([]int, 0, mid+1)
	right := make([]int, 0, len(order)-mid-1)
	for rank, k := range order {
		if rank <= mid {
			left = append(left, rest[k])
		} else {
			right = append(right, rest[k])
		}
	}
	return &node{
		idx:   vp,
		thr:   dists[order[mid]],
		left:  i.buildVP(left),
		right: i.buildVP(right),
	}
}

// distance returns the cosine distance between q (magnitude qm) and the
// indexed vector j, reusing the magnitudes cached at Build.
func (i *Index) distance(q []float32, qm float32, j int) float64 {
	v := i.vecs[j]
	var dot float64
	for k := range q {
		dot += float64(q[k]) * float64(v[k])
	}
	return 1 - dot/(float64(qm)*float64(i.mags[j]))
}

// Query returns up to k ids ordered by decreasing cosine similarity. When k
// covers the whole index the tree is walked exhaustively.
func (i *Index) Query(query []float32, k int) ([]string, []float64, error) {
	if i.dim == 0 || i.root == nil {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, &index.DimensionError{Expected: i.dim, Actual: len(query)}
	}
	qm := search.Float32s(query).Magnitude()
	if qm == 0 {
		return nil, nil, nil
	}
	if k <= 0 || k > i.size {
		k = i.size
	}

	h := &candidates{}
	bound := func() float64 {
		if h.Len() < k {
			return math.MaxFloat64
		}
		return (*h)[0].dist
	}
	var visit func(n *node)
	visit = func(n *node) {
		if n == nil {
			return
		}
		d := i.distance(query, qm, n.idx)
		if h.Len() < k {
			heap.Push(h, candidate{idx: n.idx, dist: d})
		} else if d < (*h)[0].dist {
			(*h)[0] = candidate{idx: n.idx, dist: d}
			heap.Fix(h, 0)
		}
		if d < n.thr {
			if d-bound() <= n.thr {
				visit(n.left)
			}
			if d+bound() >= n.thr {
				visit(n.right)
			}
		} else {
			if d+bound() >= n.thr {
				visit(n.right)
			}
			if d-bound() <= n.thr {
				visit(n.left)
			}
		}
	}
	visit(i.root)

	found := []candidate(*h)
	slices.SortStableFunc(found, func(a, b candidate) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.idx, b.idx)
	})
	ids := make([]string, len(found))
	scores := make([]float64, len(found))
	for n, c := range found {
		ids[n] = i.ids[c.idx]
		scores[n] = 1.0 - c.dist
	}
	return ids, scores, nil
}

// Len returns the number of vectors passed to Build.
func (i *Index) Len() int { return len(i.ids) }

// Dim returns the indexed dimensionality.
func (i *Index) Dim() int { return i.dim }

type candidate struct {
	idx  int
	dist float64
}

// candidates is a max-heap by distance holding the current k best.
type candidates []candidate

func (h candidates) Len() int           { return len(h) }
func (h candidates) Less(a, b int) bool { return h[a].dist > h[b].dist }
func (h candidates) Swap(a, b int)      { h[a], h[b] = h[b], h[a] }

func (h *candidates) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *candidates) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

var _ index.Index = (*Index)(nil)
