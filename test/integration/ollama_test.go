//go:build integration

package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sandevgo/tuskmem/internal/config"
	"github.com/sandevgo/tuskmem/internal/providers/embedding"
	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/sandevgo/tuskmem/internal/storage/sqlite"
	"github.com/sandevgo/tuskmem/pkg/log"
	"github.com/sandevgo/tuskmem/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEmbedder(t *testing.T) {
	url := test.GetOllamaURL(t)
	ctx := context.Background()

	emb := embedding.NewOllama(url, test.GetOllamaModel(), 0, 512, nil)
	require.True(t, emb.Available(ctx))

	vec, err := emb.Embed(ctx, "ImportError: circular import in auth module")
	require.NoError(t, err)
	require.NotEmpty(t, vec)
	assert.Equal(t, len(vec), emb.Dimensions())

	t.Logf("Vector dimensions: %d", len(vec))
}

func TestLearningLoopWithOllama(t *testing.T) {
	url := test.GetOllamaURL(t)

	ctx, flushLog := log.NewContextWithLogger(context.Background(), true)
	defer flushLog()

	path := filepath.Join(t.TempDir(), "tuskmem.db")
	db, err := sqlite.NewDB(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	emb, err := embedding.NewEmbedder(ctx, &config.EmbeddingConfig{
		Provider:  config.EmbeddingOllama,
		BaseURL:   url,
		Model:     test.GetOllamaModel(),
		CacheSize: 128,
		MaxTokens: 512,
	})
	require.NoError(t, err)

	svc, err := memory.NewService(sqlite.NewMemoryRepo(db, path), emb, nil)
	require.NoError(t, err)

	first, err := svc.Store(ctx, memory.StoreRequest{
		Trigger:    "ImportError: circular import in auth module",
		Resolution: "Move the import inside the function body",
		Kind:       "failure",
	})
	require.NoError(t, err)
	require.Equal(t, memory.StatusAdded, first.Status)

	again, err := svc.Store(ctx, memory.StoreRequest{
		Trigger:    "ImportError: circular import in the auth module",
		Resolution: "Move the import inside the function body",
		Kind:       "failure",
	})
	require.NoError(t, err)
	assert.Equal(t, memory.StatusMerged, again.Status)

	found, err := svc.Query(ctx, memory.QueryRequest{Text: "circular import error when starting auth"})
	require.NoError(t, err)
	require.NotEmpty(t, found)
	assert.Equal(t, first.Name, found[0].Name)

	_, err = svc.Feedback(ctx, []string{first.Name}, []string{first.Name})
	require.NoError(t, err)

	v, err := svc.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, memory.VerifyClosed, v.Status)
	assert.Empty(t, v.Issues)
}
