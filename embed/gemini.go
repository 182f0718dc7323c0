package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/viant/vecsearch/vector"
)

const (
	geminiDefaultModel = "text-embedding-004"
	geminiDefaultDim   = 768
)

// Gemini embeds text with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	dim    int
}

// NewGemini creates a Gemini text embedder.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("embed: gemini: missing api key")
	}
	cfg := config{model: geminiDefaultModel, dim: geminiDefaultDim}
	for _, o := range opts {
		o(&cfg)
	}
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.httpClient,
	}
	if cfg.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("embed: gemini: create client: %w", err)
	}
	return &Gemini{client: client, model: cfg.model, dim: cfg.dim}, nil
}

// EmbedText implements TextEmbedder.
func (g *Gemini) EmbedText(ctx context.Context, text string) (vector.Vector, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	dim := int32(g.dim)
	resp, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("embed: gemini: %w", err)
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("embed: gemini: empty response")
	}
	return vector.Vector(resp.Embeddings[0].Values), nil
}

// Dimension implements TextEmbedder.
func (g *Gemini) Dimension() int { return g.dim }

var _ TextEmbedder = (*Gemini)(nil)
