package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sandevgo/tuskmem/pkg/retry"
)

type httpProvider struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	// requested is sent to the endpoint when non-zero. dimensions is the
	// size every response must have, fixed by requested or by the first
	// response.
	requested  int
	dimensions atomic.Int64
	retrier    *retry.Retrier
}

func newHTTPProvider(baseURL, apiKey, model string, dimensions, maxTokens int, retrier *retry.Retrier) *httpProvider {
	if retrier == nil {
		retrier = retry.NewDefaultRetrier()
	}
	p := &httpProvider{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		requested: dimensions,
		retrier:   retrier,
	}
	p.dimensions.Store(int64(dimensions))
	return p
}

// postJSON sends body to path and decodes the response into out. Transport
// errors and 5xx/429 responses are retried; other statuses are final.
func (p *httpProvider) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	return p.retrier.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		if p.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+p.apiKey)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			statusErr := fmt.Errorf("embedding endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return statusErr
			}
			return retry.Permanent(statusErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	})
}

// probe is a single GET without retries used by Available.
func (p *httpProvider) probe(ctx context.Context, path string) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return false
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (p *httpProvider) accept(vec []float32) ([]float32, error) {
	if len(vec) == 0 {
		return nil, fmt.Errorf("embedding endpoint returned an empty vector")
	}
	want := p.dimensions.Load()
	if want == 0 {
		p.dimensions.CompareAndSwap(0, int64(len(vec)))
	} else if int64(len(vec)) != want {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(vec), want)
	}
	return vec, nil
}

func (p *httpProvider) Dimensions() int {
	return int(p.dimensions.Load())
}
