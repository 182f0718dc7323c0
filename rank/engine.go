package rank

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/viant/vecsearch/similarity"
	"github.com/viant/vecsearch/vector"
)

// DefaultBatchSize is the number of records scored between cancellation
// checks.
const DefaultBatchSize = 1024

// Engine ranks candidate records against a query. It holds no per-query
// state, so one Engine may be shared by concurrent callers.
type Engine struct {
	similarity similarity.Func
	metric     similarity.Metric
	batchSize  int
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSimilarity sets a custom similarity function. The default is cosine.
// The engine no longer reports a named metric, so it only accepts sources
// that do not pre-select candidates.
func WithSimilarity(fn similarity.Func) Option {
	return func(e *Engine) {
		if fn != nil {
			e.similarity = fn
			e.metric = ""
		}
	}
}

// WithMetric selects a built-in metric. Unknown metrics are ignored.
func WithMetric(m similarity.Metric) Option {
	return func(e *Engine) {
		if fn := m.Func(); fn != nil {
			e.similarity = fn
			e.metric = m
		}
	}
}

// WithBatchSize sets how many records are scored between context checks.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithLogger sets the logger used for per-pass diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		similarity: similarity.Cosine,
		metric:     similarity.MetricCosine,
		batchSize:  DefaultBatchSize,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Metric returns the built-in metric the engine scores with, or "" for a
// custom similarity function.
func (e *Engine) Metric() similarity.Metric { return e.metric }

// Accepts reports whether src can feed this engine. A Preselector narrows
// candidates by its own metric, so the engine must score with the same one.
func (e *Engine) Accepts(src Source) error {
	p, ok := src.(Preselector)
	if !ok {
		return nil
	}
	if m := p.PreselectMetric(); m != e.metric {
		return &MetricMismatchError{Source: m, Engine: e.metric}
	}
	return nil
}

// Rank scores query against the kind vector of every record and returns the
// scored records by descending score; equal scores keep input order. The full
// set is returned, truncation is up to the caller.
//
// Records are read, never mutated. A dimension mismatch on any record aborts
// the pass with a *SearchConfigurationError and a nil ResultSet.
func (e *Engine) Rank(ctx context.Context, query vector.Vector, kind vector.Kind, records []vector.Record) (*ResultSet, error) {
	rs := &ResultSet{Kind: kind, Candidates: len(records)}
	if len(records) == 0 {
		return rs, nil
	}
	results := make([]ScoredResult, 0, len(records))
	for i, rec := range records {
		if i%e.batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		vec, ok := rec.Vector(kind)
		if !ok {
			rs.Missing++
			continue
		}
		score, err := e.similarity(query, vec)
		switch {
		case err == nil:
			results = append(results, ScoredResult{Record: rec, Score: score})
		case errors.Is(err, similarity.ErrDegenerateVector):
			rs.Skipped++
			e.logger.DebugContext(ctx, "skipping degenerate vector", "kind", kind, "id", rec.ID)
		case errors.Is(err, similarity.ErrDimensionMismatch):
			return nil, &SearchConfigurationError{
				Kind:     kind,
				Expected: len(query),
				Actual:   len(vec),
				RecordID: rec.ID,
				Err:      err,
			}
		default:
			return nil, fmt.Errorf("rank: score record %s: %w", rec.ID, err)
		}
	}
	slices.SortStableFunc(results, func(a, b ScoredResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	rs.Results = results
	return rs, nil
}
