package catalog

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/vecsearch/embed"
	"github.com/viant/vecsearch/engine"
	"github.com/viant/vecsearch/search"
	"github.com/viant/vecsearch/vector"
)

func pngOf(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newCatalog(t *testing.T, store vector.Store) *Catalog {
	t.Helper()
	svc, err := search.NewFromReader(store)
	require.NoError(t, err)
	c, err := New(store, svc, embed.Pair{Image: embed.NewHistogram(4), Text: embed.NewHashing(128)})
	require.NoError(t, err)
	return c
}

func seed(t *testing.T, c *Catalog) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []Product{
		{ID: "mug", Name: "Red mug", Description: "ceramic coffee mug", StockCount: 12, Price: 9.5, Image: pngOf(t, color.RGBA{R: 255, A: 255})},
		{ID: "lamp", Name: "Desk lamp", Description: "brass reading lamp", StockCount: 3, Price: 49, Image: pngOf(t, color.RGBA{R: 200, G: 160, B: 40, A: 255})},
		{ID: "towel", Name: "Beach towel", Description: "blue cotton towel", StockCount: 0, Price: 15, Image: pngOf(t, color.RGBA{B: 255, A: 255})},
	} {
		_, err := c.Add(ctx, p)
		require.NoError(t, err)
	}
}

func TestCatalog(t *testing.T) {
	stores := map[string]func(t *testing.T) vector.Store{
		"memory": func(t *testing.T) vector.Store { return vector.NewMemoryStore() },
		"sqlite": func(t *testing.T) vector.Store {
			db, err := engine.Open(":memory:")
			require.NoError(t, err)
			s, err := vector.NewSQLiteStore(context.Background(), db)
			require.NoError(t, err)
			return s
		},
		"badger": func(t *testing.T) vector.Store {
			s, err := vector.NewBadgerStore(vector.BadgerOptions{InMemory: true})
			require.NoError(t, err)
			return s
		},
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)
			defer store.Close()
			c := newCatalog(t, store)
			seed(t, c)

			products, err := c.List(ctx)
			require.NoError(t, err)
			require.Len(t, products, 3)
			assert.Equal(t, "mug", products[0].ID)
			assert.Equal(t, "Red mug", products[0].Name)
			assert.Equal(t, 12, products[0].StockCount)
			assert.InDelta(t, 9.5, products[0].Price, 1e-9)
			assert.NotEmpty(t, products[0].Image)

			hits, err := c.SearchText(ctx, "coffee mug")
			require.NoError(t, err)
			require.Len(t, hits, 3)
			assert.Equal(t, "mug", hits[0].Product.ID)
			assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)

			hit, err := c.IdentifyImage(ctx, pngOf(t, color.RGBA{B: 250, A: 255}))
			require.NoError(t, err)
			assert.Equal(t, "towel", hit.Product.ID)
			assert.InDelta(t, 1.0, hit.Score, 1e-6)

			hit, err = c.IdentifyText(ctx, "brass lamp")
			require.NoError(t, err)
			assert.Equal(t, "lamp", hit.Product.ID)

			require.NoError(t, c.Remove(ctx, "lamp"))
			assert.ErrorIs(t, c.Remove(ctx, "lamp"), vector.ErrNotFound)
			hits, err = c.SearchImage(ctx, pngOf(t, color.RGBA{R: 255, A: 255}))
			require.NoError(t, err)
			require.Len(t, hits, 2)
			assert.Equal(t, "mug", hits[0].Product.ID)
		})
	}
}

func TestCatalog_AddValidates(t *testing.T) {
	c := newCatalog(t, vector.NewMemoryStore())
	img := pngOf(t, color.White)
	tests := []struct {
		name string
		p    Product
	}{
		{"no name", Product{Description: "d", Image: img}},
		{"no description", Product{Name: "n", Image: img}},
		{"negative stock", Product{Name: "n", Description: "d", StockCount: -1, Image: img}},
		{"negative price", Product{Name: "n", Description: "d", Price: -1, Image: img}},
		{"no image", Product{Name: "n", Description: "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Add(context.Background(), tt.p)
			assert.ErrorIs(t, err, ErrInvalidProduct)
		})
	}
}

func TestCatalog_AddGeneratesID(t *testing.T) {
	c := newCatalog(t, vector.NewMemoryStore())
	p, err := c.Add(context.Background(), Product{Name: "Mug", Description: "red", Image: pngOf(t, color.White)})
	require.NoError(t, err)
	assert.Len(t, p.ID, 36)
}

func TestCatalog_EmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	store := vector.NewMemoryStore()
	c := newCatalog(t, store)

	_, err := c.Add(ctx, Product{Name: "Mug", Description: "red", Image: []byte("not a png")})
	var ee *embed.EmbeddingError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, vector.KindImage, ee.Kind)
	records, err := store.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = c.SearchText(ctx, "???")
	require.ErrorAs(t, err, &ee)
	assert.True(t, errors.Is(err, embed.ErrEmptyInput))
}

func TestCatalog_AddRejectsDegenerateText(t *testing.T) {
	ctx := context.Background()
	store := vector.NewMemoryStore()
	svc, err := search.NewFromReader(store)
	require.NoError(t, err)
	c, err := New(store, svc, embed.Pair{Image: embed.NewHistogram(4), Text: embed.NewHashing(1)})
	require.NoError(t, err)

	_, err = c.Add(ctx, Product{Name: "red", Description: "shoe", Image: pngOf(t, color.RGBA{R: 255, A: 255})})
	var ee *embed.EmbeddingError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, vector.KindText, ee.Kind)
	assert.ErrorIs(t, err, embed.ErrDegenerateEmbedding)
	records, err := store.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCatalog_IdentifyEmpty(t *testing.T) {
	c := newCatalog(t, vector.NewMemoryStore())
	_, err := c.IdentifyText(context.Background(), "anything")
	assert.ErrorIs(t, err, search.ErrNotFound)
}
