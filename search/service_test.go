package search

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/vecsearch/index/bruteforce"
	"github.com/viant/vecsearch/index/cover"
	"github.com/viant/vecsearch/rank"
	"github.com/viant/vecsearch/similarity"
	"github.com/viant/vecsearch/vector"
)

func newStore(t *testing.T, records ...vector.Record) *vector.MemoryStore {
	t.Helper()
	s := vector.NewMemoryStore()
	for _, r := range records {
		require.NoError(t, s.Insert(context.Background(), r))
	}
	return s
}

func text(id string, v ...float32) vector.Record {
	return vector.Record{
		ID:       id,
		Metadata: vector.Metadata{"name": id},
		Vectors:  map[vector.Kind]vector.Vector{vector.KindText: v},
	}
}

type failingSource struct{ err error }

func (f failingSource) Candidates(context.Context, vector.Vector, vector.Kind) ([]vector.Record, error) {
	return nil, f.err
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, text("A", 1, 0, 0), text("B", 0, 1, 0), text("C", 1, 0, 0))
	metrics := &BasicMetricsCollector{}
	svc, err := NewFromReader(store, WithMetrics(metrics))
	require.NoError(t, err)

	rs, err := svc.Search(ctx, vector.Vector{1, 0, 0}, vector.KindText)
	require.NoError(t, err)
	require.Equal(t, 3, rs.Len())
	assert.Equal(t, "A", rs.Results[0].Record.ID)
	assert.Equal(t, "C", rs.Results[1].Record.ID)
	assert.Equal(t, "B", rs.Results[2].Record.ID)
	assert.Equal(t, "A", rs.Results[0].Record.Metadata["name"])

	stats := metrics.GetStats()
	assert.EqualValues(t, 1, stats.SearchCount)
	assert.EqualValues(t, 3, stats.ResultCount)
	assert.EqualValues(t, 0, stats.SearchErrors)
}

func TestService_SearchEmptyCorpus(t *testing.T) {
	svc, err := NewFromReader(vector.NewMemoryStore())
	require.NoError(t, err)
	rs, err := svc.Search(context.Background(), vector.Vector{1, 0}, vector.KindImage)
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Len())
}

func TestService_SearchConfigurationError(t *testing.T) {
	query := make(vector.Vector, 384)
	query[0] = 1
	stored := make(vector.Vector, 512)
	stored[0] = 1
	store := newStore(t, vector.Record{ID: "drift", Vectors: map[vector.Kind]vector.Vector{vector.KindImage: stored}})

	var buf bytes.Buffer
	metrics := &BasicMetricsCollector{}
	svc, err := NewFromReader(store,
		WithLogger(NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		WithMetrics(metrics),
	)
	require.NoError(t, err)

	rs, err := svc.Search(context.Background(), query, vector.KindImage)
	assert.Nil(t, rs)
	var cfgErr *rank.SearchConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "drift", cfgErr.RecordID)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "record=drift")
	assert.EqualValues(t, 1, metrics.GetStats().SearchErrors)
}

func TestService_SearchInvalidKind(t *testing.T) {
	svc, err := NewFromReader(vector.NewMemoryStore())
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), vector.Vector{1}, "")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestService_SearchSourceError(t *testing.T) {
	boom := errors.New("boom")
	svc, err := New(failingSource{err: boom})
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), vector.Vector{1}, vector.KindText)
	assert.ErrorIs(t, err, boom)
}

func TestService_SearchLogsSkipped(t *testing.T) {
	var buf bytes.Buffer
	store := newStore(t, text("zero", 0, 0), text("ok", 1, 1))
	svc, err := NewFromReader(store, WithLogger(NewLogger(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, err)
	rs, err := svc.Search(context.Background(), vector.Vector{1, 0}, vector.KindText)
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Skipped)
	assert.Contains(t, buf.String(), "skipped=1")
}

func TestService_IdentifyTop(t *testing.T) {
	ctx := context.Background()

	t.Run("best match", func(t *testing.T) {
		store := newStore(t, text("far", 0, 1), text("near", 1, 0.2))
		svc, err := NewFromReader(store)
		require.NoError(t, err)
		m, err := svc.IdentifyTop(ctx, vector.Vector{1, 0}, vector.KindText)
		require.NoError(t, err)
		assert.Equal(t, "near", m.ID)
		assert.Equal(t, "near", m.Record.ID)
		assert.Greater(t, m.Score, 0.9)
	})

	t.Run("not found", func(t *testing.T) {
		svc, err := NewFromReader(vector.NewMemoryStore())
		require.NoError(t, err)
		_, err = svc.IdentifyTop(ctx, vector.Vector{1, 0}, vector.KindText)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("only degenerate", func(t *testing.T) {
		svc, err := NewFromReader(newStore(t, text("zero", 0, 0)))
		require.NoError(t, err)
		_, err = svc.IdentifyTop(ctx, vector.Vector{1, 0}, vector.KindText)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_IndexedSourceMatchesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newStore(t,
		text("a", 1, 0, 0), text("b", 0.9, 0.1, 0), text("c", 0, 0, 1),
		text("d", 0.5, 0.5, 0), text("e", 1, 0, 0),
	)
	exact, err := NewFromReader(store)
	require.NoError(t, err)
	src, err := rank.NewIndexed(store, cover.New, 0)
	require.NoError(t, err)
	indexed, err := New(src)
	require.NoError(t, err)

	want, err := exact.Search(ctx, vector.Vector{1, 0.1, 0}, vector.KindText)
	require.NoError(t, err)
	got, err := indexed.Search(ctx, vector.Vector{1, 0.1, 0}, vector.KindText)
	require.NoError(t, err)
	assert.Equal(t, want.Results, got.Results)
}

func TestNew_RejectsMetricMismatch(t *testing.T) {
	store := newStore(t, text("far", 100, 0), text("near", 1, 0.5))
	src, err := rank.NewIndexed(store, bruteforce.New, 1)
	require.NoError(t, err)

	_, err = New(src, WithEngine(rank.New(rank.WithMetric(similarity.MetricEuclidean))))
	assert.ErrorIs(t, err, rank.ErrMetricMismatch)

	svc, err := NewFromReader(store, WithEngine(rank.New(rank.WithMetric(similarity.MetricEuclidean))))
	require.NoError(t, err)
	m, err := svc.IdentifyTop(context.Background(), vector.Vector{1, 0}, vector.KindText)
	require.NoError(t, err)
	assert.Equal(t, "near", m.ID)
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	_, err = NewFromReader(nil)
	assert.Error(t, err)
}
