package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/vecsearch/internal/config"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "vecsearch.db", cfg.Store.Path)
	assert.Equal(t, "cosine", cfg.Search.Metric)
	assert.Equal(t, "none", cfg.Search.Index)
	assert.Equal(t, 1024, cfg.Search.BatchSize)
	assert.Equal(t, "hashing", cfg.Embed.Text.Provider)
	assert.Equal(t, 384, cfg.Embed.Text.Dimension)
	assert.Equal(t, 8, cfg.Embed.Image.Bins)
	assert.Empty(t, cfg.Metrics.Listen)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vecsearch.yaml")
	content := `
store:
  backend: badger
  path: /var/lib/vecsearch
search:
  index: cover
  candidates: 25
embed:
  text:
    provider: openai
    model: text-embedding-3-small
    dimension: 512
    api_key: sk-test
log:
  level: debug
  format: json
metrics:
  listen: "127.0.0.1:9090"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "badger", cfg.Store.Backend)
	assert.Equal(t, "/var/lib/vecsearch", cfg.Store.Path)
	assert.Equal(t, "cover", cfg.Search.Index)
	assert.Equal(t, 25, cfg.Search.Candidates)
	assert.Equal(t, "openai", cfg.Embed.Text.Provider)
	assert.Equal(t, 512, cfg.Embed.Text.Dimension)
	assert.Equal(t, "sk-test", cfg.Embed.Text.APIKey)
	assert.Equal(t, "127.0.0.1:9090", cfg.Metrics.Listen)
	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VECSEARCH_STORE_BACKEND", "memory")
	t.Setenv("VECSEARCH_EMBED_TEXT_DIMENSION", "64")
	t.Setenv("VECSEARCH_EMBED_TEXT_API_KEY", "from-env")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 64, cfg.Embed.Text.Dimension)
	assert.Equal(t, "from-env", cfg.Embed.Text.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		cfg, err := config.Load("")
		require.NoError(t, err)
		return *cfg
	}
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		want   string
	}{
		{"backend", func(c *config.Config) { c.Store.Backend = "postgres" }, "store.backend"},
		{"path", func(c *config.Config) { c.Store.Path = "" }, "store.path"},
		{"metric", func(c *config.Config) { c.Search.Metric = "jaccard" }, "search.metric"},
		{"index", func(c *config.Config) { c.Search.Index = "hnsw" }, "search.index"},
		{"sql index", func(c *config.Config) { c.Search.Index = "sql"; c.Store.Backend = "memory" }, "search.index sql"},
		{"dot with brute", func(c *config.Config) { c.Search.Metric = "dot"; c.Search.Index = "brute" }, "needs search.metric cosine"},
		{"euclidean with cover", func(c *config.Config) { c.Search.Metric = "euclidean"; c.Search.Index = "cover" }, "needs search.metric cosine"},
		{"dot with sql", func(c *config.Config) { c.Search.Metric = "dot"; c.Search.Index = "sql"; c.Store.Backend = "sqlite" }, "needs search.metric cosine"},
		{"batch", func(c *config.Config) { c.Search.BatchSize = 0 }, "search.batch_size"},
		{"provider", func(c *config.Config) { c.Embed.Text.Provider = "local" }, "embed.text.provider"},
		{"api key", func(c *config.Config) { c.Embed.Text.Provider = "gemini" }, "embed.text.api_key"},
		{"bins", func(c *config.Config) { c.Embed.Image.Bins = 100 }, "embed.image.bins"},
		{"level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"listen", func(c *config.Config) { c.Metrics.Listen = "9090" }, "metrics.listen"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			errs := cfg.Validate()
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), tt.want)
		})
	}

	cfg := valid()
	assert.Empty(t, cfg.Validate())

	cfg = valid()
	cfg.Search.Metric = "euclidean"
	cfg.Search.Index = "none"
	assert.Empty(t, cfg.Validate())
}
