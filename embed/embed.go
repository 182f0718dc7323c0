// Package embed turns product images and text into vectors for the search
// core.
//
// The search core only consumes vectors; this package provides the
// collaborators that produce them:
//
//   - [OpenAI] and [Gemini] remote text embedders
//   - [Hashing], a deterministic offline text embedder
//   - [Histogram], an offline colour-histogram image embedder
//   - [Lazy], a process-scoped provider built on first use
package embed

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/vecsearch/vector"
)

// TextEmbedder converts text into a dense vector.
type TextEmbedder interface {
	EmbedText(ctx context.Context, text string) (vector.Vector, error)
	// Dimension returns the dimensionality of the output vectors.
	Dimension() int
}

// ImageEmbedder converts encoded image bytes into a dense vector.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, image []byte) (vector.Vector, error)
	Dimension() int
}

// Provider embeds both modalities. Failures are reported as
// *EmbeddingError.
type Provider interface {
	EmbedImage(ctx context.Context, image []byte) (vector.Vector, error)
	EmbedText(ctx context.Context, text string) (vector.Vector, error)
}

// ErrEmptyInput is returned when the input text or image is empty.
var ErrEmptyInput = errors.New("embed: empty input")

// ErrDegenerateEmbedding is returned when an embedder produces a zero vector,
// which no similarity can rank.
var ErrDegenerateEmbedding = errors.New("embed: degenerate embedding")

// EmbeddingError reports that a vector could not be produced for one kind.
type EmbeddingError struct {
	Kind vector.Kind
	Err  error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embed: %s embedding failed: %v", e.Kind, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Pair combines an image and a text embedder into a Provider.
type Pair struct {
	Image ImageEmbedder
	Text  TextEmbedder
}

// EmbedImage implements Provider.
func (p Pair) EmbedImage(ctx context.Context, image []byte) (vector.Vector, error) {
	if p.Image == nil {
		return nil, &EmbeddingError{Kind: vector.KindImage, Err: errors.New("no image embedder configured")}
	}
	v, err := p.Image.EmbedImage(ctx, image)
	if err != nil {
		return nil, wrap(vector.KindImage, err)
	}
	return v, nil
}

// EmbedText implements Provider.
func (p Pair) EmbedText(ctx context.Context, text string) (vector.Vector, error) {
	if p.Text == nil {
		return nil, &EmbeddingError{Kind: vector.KindText, Err: errors.New("no text embedder configured")}
	}
	v, err := p.Text.EmbedText(ctx, text)
	if err != nil {
		return nil, wrap(vector.KindText, err)
	}
	return v, nil
}

// Close closes the embedders that hold resources.
func (p Pair) Close() error {
	var errs []error
	for _, c := range []any{p.Image, p.Text} {
		if closer, ok := c.(interface{ Close() error }); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}

func wrap(kind vector.Kind, err error) error {
	var ee *EmbeddingError
	if errors.As(err, &ee) {
		return err
	}
	return &EmbeddingError{Kind: kind, Err: err}
}

var _ Provider = Pair{}
