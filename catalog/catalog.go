// Package catalog is the product application built on the search core:
// adding products with their image and text embeddings, listing and removing
// them, and searching or identifying products by image or text.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/viant/vecsearch/embed"
	"github.com/viant/vecsearch/search"
	"github.com/viant/vecsearch/vector"
)

// ErrInvalidProduct is returned by Add for incomplete products.
var ErrInvalidProduct = errors.New("catalog: invalid product")

// Hit is a ranked product.
type Hit struct {
	Product Product
	Score   float64
}

// Catalog ties a record store, a search service and an embedding provider
// together.
type Catalog struct {
	store    vector.Store
	search   *search.Service
	provider embed.Provider
	logger   *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Catalog. svc must search over store.
func New(store vector.Store, svc *search.Service, provider embed.Provider, opts ...Option) (*Catalog, error) {
	if store == nil || svc == nil || provider == nil {
		return nil, errors.New("catalog: store, search service and provider are required")
	}
	c := &Catalog{store: store, search: svc, provider: provider, logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Add embeds and stores p, generating an id when p.ID is empty. It returns
// the stored product. Adding an existing id replaces that product.
func (c *Catalog) Add(ctx context.Context, p Product) (Product, error) {
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	var imageVec, textVec vector.Vector
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := c.provider.EmbedImage(gctx, p.Image)
		imageVec = v
		return err
	})
	g.Go(func() error {
		v, err := c.provider.EmbedText(gctx, p.SearchText())
		textVec = v
		return err
	})
	if err := g.Wait(); err != nil {
		return Product{}, err
	}
	rec := vector.Record{
		ID:       p.ID,
		Metadata: p.metadata(),
		Vectors: map[vector.Kind]vector.Vector{
			vector.KindImage: imageVec,
			vector.KindText:  textVec,
		},
	}
	if err := c.store.Insert(ctx, rec); err != nil {
		return Product{}, fmt.Errorf("catalog: add %s: %w", p.ID, err)
	}
	c.logger.InfoContext(ctx, "product added", "id", p.ID, "name", p.Name)
	return p, nil
}

// Remove deletes the product with id. Unknown ids yield vector.ErrNotFound.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("catalog: remove %s: %w", id, err)
	}
	c.logger.InfoContext(ctx, "product removed", "id", id)
	return nil
}

// List returns every product in store order.
func (c *Catalog) List(ctx context.Context) ([]Product, error) {
	records, err := c.store.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	out := make([]Product, len(records))
	for i, rec := range records {
		out[i] = productFromRecord(rec)
	}
	return out, nil
}

// SearchImage ranks products by similarity to image.
func (c *Catalog) SearchImage(ctx context.Context, image []byte) ([]Hit, error) {
	q, err := c.provider.EmbedImage(ctx, image)
	if err != nil {
		return nil, err
	}
	return c.hits(ctx, q, vector.KindImage)
}

// SearchText ranks products by similarity to text.
func (c *Catalog) SearchText(ctx context.Context, text string) ([]Hit, error) {
	q, err := c.provider.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	return c.hits(ctx, q, vector.KindText)
}

// IdentifyImage returns the product most similar to image, or
// search.ErrNotFound for an empty catalog.
func (c *Catalog) IdentifyImage(ctx context.Context, image []byte) (Hit, error) {
	q, err := c.provider.EmbedImage(ctx, image)
	if err != nil {
		return Hit{}, err
	}
	return c.identify(ctx, q, vector.KindImage)
}

// IdentifyText returns the product most similar to text, or
// search.ErrNotFound for an empty catalog.
func (c *Catalog) IdentifyText(ctx context.Context, text string) (Hit, error) {
	q, err := c.provider.EmbedText(ctx, text)
	if err != nil {
		return Hit{}, err
	}
	return c.identify(ctx, q, vector.KindText)
}

func (c *Catalog) hits(ctx context.Context, q vector.Vector, kind vector.Kind) ([]Hit, error) {
	rs, err := c.search.Search(ctx, q, kind)
	if err != nil {
		return nil, err
	}
	out := make([]Hit, rs.Len())
	for i, r := range rs.Results {
		out[i] = Hit{Product: productFromRecord(r.Record), Score: r.Score}
	}
	return out, nil
}

func (c *Catalog) identify(ctx context.Context, q vector.Vector, kind vector.Kind) (Hit, error) {
	m, err := c.search.IdentifyTop(ctx, q, kind)
	if err != nil {
		return Hit{}, err
	}
	return Hit{Product: productFromRecord(m.Record), Score: m.Score}, nil
}
