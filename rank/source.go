package rank

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/viant/vecsearch/index"
	"github.com/viant/vecsearch/similarity"
	"github.com/viant/vecsearch/vector"
)

// Source supplies the candidate records for one query, in a stable order
// that the engine uses as its tie-break order.
type Source interface {
	Candidates(ctx context.Context, query vector.Vector, kind vector.Kind) ([]vector.Record, error)
}

// Preselector is a Source that narrows the candidates by a similarity
// metric before the engine scores them.
type Preselector interface {
	Source
	PreselectMetric() similarity.Metric
}

// Snapshot is the exact linear-scan source: every record of the store's
// current snapshot is a candidate.
type Snapshot struct {
	Reader vector.Reader
}

// Candidates returns the full snapshot.
func (s Snapshot) Candidates(ctx context.Context, _ vector.Vector, _ vector.Kind) ([]vector.Record, error) {
	if s.Reader == nil {
		return nil, errors.New("rank: snapshot reader is nil")
	}
	records, err := s.Reader.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("rank: fetch snapshot: %w", err)
	}
	return records, nil
}

// Indexed narrows the candidates with one index.Index per kind. Indexes are
// built lazily from the store snapshot and rebuilt when a vector.Revisioned
// store reports a new revision; stores without revisions rebuild per query.
//
// Candidates are returned in snapshot order, so ties still resolve by store
// order. When the index cannot be built (mixed dimensionality) or the query
// dimension differs from the index, the full snapshot is returned so the
// engine can report the precise configuration error.
type Indexed struct {
	reader  vector.Reader
	factory index.Factory
	limit   int

	mu    sync.Mutex
	kinds map[vector.Kind]*indexedKind
}

type indexedKind struct {
	revision uint64
	records  []vector.Record
	position map[string]int
	idx      index.Index
	buildErr error
}

// NewIndexed creates an index-backed source. limit bounds how many
// candidates the index proposes per query; limit <= 0 proposes every
// scorable vector.
func NewIndexed(reader vector.Reader, factory index.Factory, limit int) (*Indexed, error) {
	if reader == nil {
		return nil, errors.New("rank: indexed reader is nil")
	}
	if factory == nil {
		return nil, errors.New("rank: index factory is nil")
	}
	return &Indexed{reader: reader, factory: factory, limit: limit, kinds: map[vector.Kind]*indexedKind{}}, nil
}

// Candidates returns the index's proposals for query in snapshot order.
func (s *Indexed) Candidates(ctx context.Context, query vector.Vector, kind vector.Kind) ([]vector.Record, error) {
	entry, err := s.entry(ctx, kind)
	if err != nil {
		return nil, err
	}
	if entry.buildErr != nil {
		return entry.records, nil
	}
	ids, _, err := entry.idx.Query(query, s.limit)
	var dimErr *index.DimensionError
	if errors.As(err, &dimErr) {
		return entry.records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rank: index query: %w", err)
	}
	positions := make([]int, 0, len(ids))
	for _, id := range ids {
		if p, ok := entry.position[id]; ok {
			positions = append(positions, p)
		}
	}
	slices.Sort(positions)
	out := make([]vector.Record, len(positions))
	for i, p := range positions {
		out[i] = entry.records[p]
	}
	return out, nil
}

// PreselectMetric implements Preselector. Both bundled indexes rank by cosine.
func (s *Indexed) PreselectMetric() similarity.Metric { return similarity.MetricCosine }

// Invalidate drops every cached index.
func (s *Indexed) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.kinds)
}

func (s *Indexed) entry(ctx context.Context, kind vector.Kind) (*indexedKind, error) {
	rv, revisioned := s.reader.(vector.Revisioned)
	s.mu.Lock()
	defer s.mu.Unlock()

	var revision uint64
	if revisioned {
		revision = rv.Revision()
		if cached, ok := s.kinds[kind]; ok && cached.revision == revision {
			return cached, nil
		}
	}
	records, err := s.reader.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("rank: fetch snapshot: %w", err)
	}
	entry := &indexedKind{
		revision: revision,
		records:  records,
		position: make(map[string]int, len(records)),
		idx:      s.factory(),
	}
	var ids []string
	var vecs [][]float32
	for i, rec := range records {
		entry.position[rec.ID] = i
		if v, ok := rec.Vector(kind); ok {
			ids = append(ids, rec.ID)
			vecs = append(vecs, v)
		}
	}
	entry.buildErr = entry.idx.Build(ids, vecs)
	if revisioned {
		s.kinds[kind] = entry
	}
	return entry, nil
}

var (
	_ Source      = Snapshot{}
	_ Preselector = (*Indexed)(nil)
)

// Pushdown lets a vector.NearestReader pre-rank candidates in the store and
// returns its top Limit records. It falls back to the full snapshot when the
// store reports dimension drift or the query has zero norm, so that the
// engine reports those cases exactly as a linear scan would.
type Pushdown struct {
	Reader vector.NearestReader
	Limit  int
}

// Candidates implements Source.
func (p Pushdown) Candidates(ctx context.Context, query vector.Vector, kind vector.Kind) ([]vector.Record, error) {
	if p.Reader == nil {
		return nil, errors.New("rank: pushdown reader is nil")
	}
	if similarity.Norm(query) == 0 {
		return Snapshot{Reader: p.Reader}.Candidates(ctx, query, kind)
	}
	records, err := p.Reader.Nearest(ctx, query, kind, p.Limit)
	if errors.Is(err, vector.ErrDimensionDrift) {
		return Snapshot{Reader: p.Reader}.Candidates(ctx, query, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("rank: nearest: %w", err)
	}
	return records, nil
}

// PreselectMetric implements Preselector. The store ranks with vec_cosine.
func (p Pushdown) PreselectMetric() similarity.Metric { return similarity.MetricCosine }

var _ Preselector = Pushdown{}
