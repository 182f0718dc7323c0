package embed

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/viant/vecsearch/vector"
)

// DefaultHistogramBins is the per-channel bin count of NewHistogram(0).
const DefaultHistogramBins = 8

// Histogram embeds an image as its joint RGB colour histogram, normalised
// to sum to one. Output dimension is bins³.
type Histogram struct {
	bins int
}

// NewHistogram creates a Histogram embedder with bins buckets per channel.
func NewHistogram(bins int) *Histogram {
	if bins <= 0 || bins > 64 {
		bins = DefaultHistogramBins
	}
	return &Histogram{bins: bins}
}

// EmbedImage implements ImageEmbedder. Only JPEG and PNG are decoded.
func (h *Histogram) EmbedImage(ctx context.Context, data []byte) (vector.Vector, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("embed: decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyInput
	}
	out := make(vector.Vector, h.Dimension())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			idx := (h.bin(r)*h.bins+h.bin(g))*h.bins + h.bin(bl)
			out[idx]++
		}
	}
	total := float32(b.Dx() * b.Dy())
	for i := range out {
		out[i] /= total
	}
	return out, nil
}

func (h *Histogram) bin(c uint32) int {
	return int(c) * h.bins / 0x10000
}

// Dimension implements ImageEmbedder.
func (h *Histogram) Dimension() int { return h.bins * h.bins * h.bins }

var _ ImageEmbedder = (*Histogram)(nil)
