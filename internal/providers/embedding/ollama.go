package embedding

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskmem/pkg/retry"
)

// Ollama talks to a local Ollama server through POST /api/embed.
type Ollama struct {
	*httpProvider
}

func NewOllama(baseURL, model string, dimensions, maxTokens int, retrier *retry.Retrier) *Ollama {
	return &Ollama{
		httpProvider: newHTTPProvider(baseURL, "", model, dimensions, maxTokens, retrier),
	}
}

func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	type ollamaRequest struct {
		Model      string `json:"model"`
		Input      string `json:"input"`
		Dimensions int    `json:"dimensions,omitempty"`
	}
	type ollamaResponse struct {
		Embeddings [][]float32 `json:"embeddings"`
	}

	var resp ollamaResponse
	err := o.postJSON(ctx, "/api/embed", ollamaRequest{
		Model:      o.model,
		Input:      Truncate(text, o.maxTokens),
		Dimensions: o.requested,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("ollama embed: no embeddings in response")
	}
	return o.accept(resp.Embeddings[0])
}

func (o *Ollama) Available(ctx context.Context) bool {
	return o.probe(ctx, "/api/tags")
}
