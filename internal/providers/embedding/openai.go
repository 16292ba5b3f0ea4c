package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/tuskmem/pkg/retry"
)

// OpenAI speaks the OpenAI-compatible POST /v1/embeddings API, which most
// hosted and self-hosted gateways implement.
type OpenAI struct {
	*httpProvider
}

func NewOpenAI(baseURL, apiKey, model string, dimensions, maxTokens int, retrier *retry.Retrier) *OpenAI {
	baseURL = strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/v1")
	return &OpenAI{
		httpProvider: newHTTPProvider(baseURL, apiKey, model, dimensions, maxTokens, retrier),
	}
}

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	type embeddingRequest struct {
		Model      string `json:"model"`
		Input      string `json:"input"`
		Dimensions int    `json:"dimensions,omitempty"`
	}
	type embeddingResponse struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}

	var resp embeddingResponse
	err := o.postJSON(ctx, "/v1/embeddings", embeddingRequest{
		Model:      o.model,
		Input:      Truncate(text, o.maxTokens),
		Dimensions: o.requested,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	for _, item := range resp.Data {
		if item.Index == 0 {
			return o.accept(item.Embedding)
		}
	}
	return nil, fmt.Errorf("openai embed: no embeddings in response")
}

func (o *OpenAI) Available(ctx context.Context) bool {
	return o.probe(ctx, "/v1/models")
}
