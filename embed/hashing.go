package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/viant/vecsearch/vector"
)

// DefaultHashingDimension is the output size of NewHashing(0).
const DefaultHashingDimension = 256

// Hashing is a deterministic bag-of-words text embedder. Each lower-cased
// token is hashed into one of dim buckets with a hash-derived sign, and the
// result is L2-normalised. It needs no model or network, which makes it the
// offline default and the embedder used in tests.
type Hashing struct {
	dim int
}

// NewHashing creates a Hashing embedder with dim buckets.
func NewHashing(dim int) *Hashing {
	if dim <= 0 {
		dim = DefaultHashingDimension
	}
	return &Hashing{dim: dim}
}

// EmbedText implements TextEmbedder. Text without any letter or digit is
// rejected with ErrEmptyInput; tokens whose signed buckets cancel out yield
// ErrDegenerateEmbedding.
func (h *Hashing) EmbedText(ctx context.Context, text string) (vector.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(tokens) == 0 {
		return nil, ErrEmptyInput
	}
	acc := make([]float64, h.dim)
	for _, tok := range tokens {
		hs := fnv.New64a()
		_, _ = hs.Write([]byte(tok))
		sum := hs.Sum64()
		bucket := sum % uint64(h.dim)
		if sum>>63 == 1 {
			acc[bucket]--
		} else {
			acc[bucket]++
		}
	}
	var norm float64
	for _, f := range acc {
		norm += f * f
	}
	if norm == 0 {
		return nil, ErrDegenerateEmbedding
	}
	out := make(vector.Vector, h.dim)
	norm = math.Sqrt(norm)
	for i, f := range acc {
		out[i] = float32(f / norm)
	}
	return out, nil
}

// Dimension implements TextEmbedder.
func (h *Hashing) Dimension() int { return h.dim }

var _ TextEmbedder = (*Hashing)(nil)
