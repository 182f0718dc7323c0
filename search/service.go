package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/vecsearch/rank"
	"github.com/viant/vecsearch/vector"
)

// Service answers vector queries against a candidate source. It is safe for
// concurrent use; every call ranks its own snapshot.
type Service struct {
	source  rank.Source
	engine  *rank.Engine
	logger  *Logger
	metrics MetricsCollector
}

// Option configures a Service.
type Option func(*Service)

// WithEngine sets the ranking engine. The default ranks by cosine.
func WithEngine(e *rank.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New creates a Service over source.
func New(source rank.Source, opts ...Option) (*Service, error) {
	if source == nil {
		return nil, errors.New("search: source is nil")
	}
	s := &Service{
		source:  source,
		engine:  rank.New(),
		logger:  NewLogger(nil),
		metrics: NoopMetricsCollector{},
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.engine.Accepts(source); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return s, nil
}

// NewFromReader creates a Service that linearly scans every record of reader.
func NewFromReader(reader vector.Reader, opts ...Option) (*Service, error) {
	if reader == nil {
		return nil, errors.New("search: reader is nil")
	}
	return New(rank.Snapshot{Reader: reader}, opts...)
}

// Search ranks every candidate holding a kind vector against query. An empty
// corpus yields an empty result set; a stored vector of the wrong
// dimensionality yields a *rank.SearchConfigurationError and no results.
func (s *Service) Search(ctx context.Context, query vector.Vector, kind vector.Kind) (*rank.ResultSet, error) {
	start := time.Now()
	rs, err := s.search(ctx, query, kind)
	elapsed := time.Since(start)
	s.logger.LogSearch(ctx, kind, rs, elapsed, err)
	if err != nil {
		s.metrics.RecordSearch(string(kind), 0, 0, elapsed, err)
		return nil, err
	}
	s.metrics.RecordSearch(string(kind), rs.Len(), rs.Skipped, elapsed, nil)
	return rs, nil
}

func (s *Service) search(ctx context.Context, query vector.Vector, kind vector.Kind) (*rank.ResultSet, error) {
	if kind == "" {
		return nil, ErrInvalidKind
	}
	records, err := s.source.Candidates(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("search: candidates: %w", err)
	}
	return s.engine.Rank(ctx, query, kind, records)
}

// Match is the best-ranked record of a search.
type Match struct {
	ID     string
	Score  float64
	Record vector.Record
}

// IdentifyTop returns the single best match for query, or ErrNotFound when
// nothing could be ranked.
func (s *Service) IdentifyTop(ctx context.Context, query vector.Vector, kind vector.Kind) (Match, error) {
	rs, err := s.Search(ctx, query, kind)
	if err != nil {
		return Match{}, err
	}
	top, ok := rs.First()
	if !ok {
		return Match{}, ErrNotFound
	}
	return Match{ID: top.Record.ID, Score: top.Score, Record: top.Record}, nil
}
