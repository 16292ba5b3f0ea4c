package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/tuskmem/internal/config"
	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/pkg/retry"
	"github.com/sandevgo/tuskmem/pkg/similarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetrier() *retry.Retrier {
	return retry.NewRetrier(&retry.Config{
		MaxRetries:    2,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
	})
}

type countingEmbedder struct {
	calls atomic.Int32
	err   error
}

func (c *countingEmbedder) Embed(context.Context, string) ([]float32, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return []float32{1, 0, 0}, nil
}

func (c *countingEmbedder) Available(context.Context) bool { return c.err == nil }
func (c *countingEmbedder) Dimensions() int                { return 3 }

func TestHash_Deterministic(t *testing.T) {
	h := NewHash(64)
	ctx := context.Background()

	a, err := h.Embed(ctx, "ImportError: circular import in auth module")
	require.NoError(t, err)
	b, err := h.Embed(ctx, "ImportError: circular import in auth module")
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.InDelta(t, 1.0, similarity.Cosine(a, b), 1e-6)
	assert.Equal(t, 64, h.Dimensions())
	assert.True(t, h.Available(ctx))
}

func TestHash_SimilarTextsAreCloser(t *testing.T) {
	h := NewHash(0)
	ctx := context.Background()
	assert.Equal(t, DefaultHashDimensions, h.Dimensions())

	base, _ := h.Embed(ctx, "circular import error in the auth module")
	near, _ := h.Embed(ctx, "circular import error in auth module")
	far, _ := h.Embed(ctx, "database connection pool exhausted under load")

	assert.Greater(t, similarity.Cosine(base, near), similarity.Cosine(base, far))
	assert.Greater(t, similarity.Cosine(base, near), 0.7)
}

func TestHash_NoTokensIsUnavailable(t *testing.T) {
	for _, text := range []string{"", "  !! ", "--- ..."} {
		vec, err := NewHash(8).Embed(context.Background(), text)
		assert.ErrorIs(t, err, core.ErrEmbeddingUnavailable, "%q", text)
		assert.Nil(t, vec)
	}
}

func TestDisabled(t *testing.T) {
	var d Disabled
	_, err := d.Embed(context.Background(), "anything")
	assert.ErrorIs(t, err, core.ErrEmbeddingUnavailable)
	assert.False(t, d.Available(context.Background()))
	assert.Zero(t, d.Dimensions())
}

func TestCached_Memoizes(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := NewCached(inner, 16)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	first, err := c.Embed(ctx, "same text")
	require.NoError(t, err)
	second, err := c.Embed(ctx, "same text")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())

	_, err = c.Embed(ctx, "other text")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, 3, c.Dimensions())
}

func TestCached_DoesNotCacheFailures(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("offline")}
	c, err := NewCached(inner, 16)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	_, err = c.Embed(ctx, "text")
	assert.Error(t, err)
	_, err = c.Embed(ctx, "text")
	assert.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.False(t, c.Available(ctx))
}

func TestOllama_Embed(t *testing.T) {
	var got struct {
		Model string `json:"model"`
		Input string `json:"input"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/embed":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2,0.3]]}`))
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "nomic-embed-text", 0, 512, fastRetrier())
	ctx := context.Background()

	vec, err := o.Embed(ctx, "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "nomic-embed-text", got.Model)
	assert.Equal(t, "hello world", got.Input)
	assert.Equal(t, 3, o.Dimensions())
	assert.True(t, o.Available(ctx))
}

func TestOllama_DimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2]]}`))
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "m", 3, 0, fastRetrier())
	_, err := o.Embed(context.Background(), "x")
	assert.Error(t, err)
}

func TestOpenAI_Embed(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	// a trailing /v1 is tolerated
	o := NewOpenAI(srv.URL+"/v1/", "secret", "text-embedding-3-small", 0, 0, fastRetrier())
	vec, err := o.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
	assert.Equal(t, "Bearer secret", auth)
}

func TestOpenAI_OmitsDimensionsUnlessConfigured(t *testing.T) {
	var sent []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if d, ok := body["dimensions"]; ok {
			sent = append(sent, int(d.(float64)))
			http.Error(w, "This model does not support specifying dimensions.", http.StatusBadRequest)
			return
		}
		sent = append(sent, 0)
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.5,0.5,0]}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(srv.URL, "", "text-embedding-ada-002", 0, 0, fastRetrier())
	for i := 0; i < 3; i++ {
		_, err := o.Embed(context.Background(), "hello")
		require.NoError(t, err, "call %d", i)
	}
	assert.Equal(t, []int{0, 0, 0}, sent)
	assert.Equal(t, 3, o.Dimensions())
}

func TestOpenAI_SendsConfiguredDimensions(t *testing.T) {
	var sent []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Dimensions int `json:"dimensions"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		sent = append(sent, body.Dimensions)
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(srv.URL, "", "text-embedding-3-small", 2, 0, fastRetrier())
	for i := 0; i < 2; i++ {
		_, err := o.Embed(context.Background(), "hello")
		require.NoError(t, err)
	}
	assert.Equal(t, []int{2, 2}, sent)
	assert.Equal(t, 2, o.Dimensions())
}

func TestHTTPProvider_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"embeddings":[[1]]}`))
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "m", 0, 0, fastRetrier())
	vec, err := o.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPProvider_ClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "missing", 0, 0, fastRetrier())
	_, err := o.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, o.Available(context.Background()))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 100))
	assert.Equal(t, "unbounded", Truncate("unbounded", 0))

	long := strings.Repeat("token ", 200)
	out := Truncate(long, 10)
	assert.Less(t, len(out), len(long))
	assert.True(t, strings.HasPrefix(long, out))

	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "ab", truncateRunes("ab", 3))
}

func TestNewEmbedder(t *testing.T) {
	ctx := context.Background()

	e, err := NewEmbedder(ctx, &config.EmbeddingConfig{Provider: config.EmbeddingHash, Dimensions: 32, CacheSize: 8})
	require.NoError(t, err)
	assert.IsType(t, &Cached{}, e)
	assert.Equal(t, 32, e.Dimensions())

	e, err = NewEmbedder(ctx, &config.EmbeddingConfig{Provider: config.EmbeddingDisabled})
	require.NoError(t, err)
	assert.IsType(t, Disabled{}, e)

	_, err = NewEmbedder(ctx, &config.EmbeddingConfig{Provider: "bogus"})
	assert.Error(t, err)
}
