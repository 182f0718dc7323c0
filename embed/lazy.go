package embed

import (
	"context"
	"errors"
	"sync"

	"github.com/viant/vecsearch/vector"
)

// ErrClosed is returned by a Lazy provider after Close.
var ErrClosed = errors.New("embed: provider closed")

// Lazy is a process-scoped Provider that is constructed on first use and
// shared by every caller afterwards. A failed construction is not cached;
// the next call tries again.
type Lazy struct {
	build func(ctx context.Context) (Provider, error)

	mu       sync.Mutex
	provider Provider
	closed   bool
}

// NewLazy creates a Lazy provider around build.
func NewLazy(build func(ctx context.Context) (Provider, error)) *Lazy {
	return &Lazy{build: build}
}

// Get returns the shared provider, constructing it if needed.
func (l *Lazy) Get(ctx context.Context) (Provider, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	if l.provider != nil {
		return l.provider, nil
	}
	p, err := l.build(ctx)
	if err != nil {
		return nil, err
	}
	l.provider = p
	return p, nil
}

// EmbedImage implements Provider.
func (l *Lazy) EmbedImage(ctx context.Context, image []byte) (vector.Vector, error) {
	p, err := l.Get(ctx)
	if err != nil {
		return nil, &EmbeddingError{Kind: vector.KindImage, Err: err}
	}
	return p.EmbedImage(ctx, image)
}

// EmbedText implements Provider.
func (l *Lazy) EmbedText(ctx context.Context, text string) (vector.Vector, error) {
	p, err := l.Get(ctx)
	if err != nil {
		return nil, &EmbeddingError{Kind: vector.KindText, Err: err}
	}
	return p.EmbedText(ctx, text)
}

// Close releases the provider if it was built. Later calls fail with
// ErrClosed.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	p := l.provider
	l.provider = nil
	if closer, ok := p.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

var _ Provider = (*Lazy)(nil)
