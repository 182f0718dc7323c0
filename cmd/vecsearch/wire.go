package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/viant/vecsearch/catalog"
	"github.com/viant/vecsearch/embed"
	"github.com/viant/vecsearch/engine"
	"github.com/viant/vecsearch/index"
	"github.com/viant/vecsearch/index/bruteforce"
	"github.com/viant/vecsearch/index/cover"
	"github.com/viant/vecsearch/internal/config"
	"github.com/viant/vecsearch/internal/metrics"
	"github.com/viant/vecsearch/rank"
	"github.com/viant/vecsearch/search"
	"github.com/viant/vecsearch/similarity"
	"github.com/viant/vecsearch/vector"
)

// app holds the components built from one configuration.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    vector.Store
	provider *embed.Lazy
	service  *search.Service
	catalog  *catalog.Catalog

	metricsSrv *http.Server
}

// wire builds every component from cfg. Logs go to logOut.
func wire(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	logger, err := newLogger(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	a.store, err = openStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	source, err := newSource(cfg.Search, a.store)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	metric, err := similarity.ParseMetric(cfg.Search.Metric)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	ranker := rank.New(
		rank.WithMetric(metric),
		rank.WithBatchSize(cfg.Search.BatchSize),
		rank.WithLogger(logger),
	)

	collector, err := a.startMetrics(cfg.Metrics)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.service, err = search.New(source,
		search.WithEngine(ranker),
		search.WithLogger(&search.Logger{Logger: logger}),
		search.WithMetrics(collector),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.provider = embed.NewLazy(func(ctx context.Context) (embed.Provider, error) {
		return newProvider(ctx, cfg.Embed)
	})
	a.catalog, err = catalog.New(a.store, a.service, a.provider, catalog.WithLogger(logger))
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the provider, the metrics server and the store.
func (a *app) Close() error {
	var errs []error
	if a.provider != nil {
		errs = append(errs, a.provider.Close())
	}
	if a.metricsSrv != nil {
		errs = append(errs, a.metricsSrv.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

func newLogger(cfg config.LogConfig, out io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts)), nil
	}
	return slog.New(slog.NewTextHandler(out, opts)), nil
}

func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (vector.Store, error) {
	switch cfg.Backend {
	case "memory":
		return vector.NewMemoryStore(), nil
	case "badger":
		return vector.NewBadgerStore(vector.BadgerOptions{Dir: cfg.Path, Logger: logger})
	case "sqlite":
		db, err := engine.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		s, err := vector.NewSQLiteStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

func newSource(cfg config.SearchConfig, store vector.Store) (rank.Source, error) {
	var factory index.Factory
	switch cfg.Index {
	case "", "none":
		return rank.Snapshot{Reader: store}, nil
	case "brute":
		factory = bruteforce.New
	case "cover":
		factory = cover.New
	case "sql":
		nr, ok := store.(vector.NearestReader)
		if !ok {
			return nil, fmt.Errorf("index sql needs a store that ranks in the database, got %T", store)
		}
		return rank.Pushdown{Reader: nr, Limit: cfg.Candidates}, nil
	default:
		return nil, fmt.Errorf("unknown index %q", cfg.Index)
	}
	return rank.NewIndexed(store, factory, cfg.Candidates)
}

func newProvider(ctx context.Context, cfg config.EmbedConfig) (embed.Provider, error) {
	pair := embed.Pair{Image: embed.NewHistogram(cfg.Image.Bins)}
	opts := []embed.Option{
		embed.WithModel(cfg.Text.Model),
		embed.WithDimension(cfg.Text.Dimension),
	}
	if cfg.Text.BaseURL != "" {
		opts = append(opts, embed.WithBaseURL(cfg.Text.BaseURL))
	}
	switch cfg.Text.Provider {
	case "hashing":
		pair.Text = embed.NewHashing(cfg.Text.Dimension)
	case "openai":
		pair.Text = embed.NewOpenAI(cfg.Text.APIKey, opts...)
	case "gemini":
		g, err := embed.NewGemini(ctx, cfg.Text.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		pair.Text = g
	default:
		return nil, fmt.Errorf("unknown text embedding provider %q", cfg.Text.Provider)
	}
	return pair, nil
}

// startMetrics serves /metrics on cfg.Listen when set.
func (a *app) startMetrics(cfg config.MetricsConfig) (search.MetricsCollector, error) {
	if cfg.Listen == "" {
		return search.NoopMetricsCollector{}, nil
	}
	reg := prometheus.NewRegistry()
	collector, err := metrics.NewPrometheus(reg)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", cfg.Listen, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	a.metricsSrv = &http.Server{Handler: mux}
	go func() {
		if err := a.metricsSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", ln.Addr().String())
	return collector, nil
}

// withApp loads the configuration, wires the app and runs fn.
func (c *cli) withApp(ctx context.Context, logOut io.Writer, fn func(a *app) error) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	a, err := wire(ctx, cfg, logOut)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
