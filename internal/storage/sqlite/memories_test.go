package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/tuskmem/internal/core"
	sqlitedrv "github.com/sandevgo/tuskmem/pkg/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *MemoryRepo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "tuskmem.db")
	db, err := NewDB(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMemoryRepo(db, path)
}

func insert(t *testing.T, repo *MemoryRepo, m core.Memory) core.Memory {
	t.Helper()
	if m.Kind == "" {
		m.Kind = core.KindFailure
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.UnixMilli(1_700_000_000_000).UTC()
	}
	err := repo.InTx(context.Background(), func(w core.MemoryWriter) error {
		return w.InsertMemory(context.Background(), &m)
	})
	require.NoError(t, err)
	return m
}

func TestMemoryRepo_InsertAndGet(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()

	used := time.UnixMilli(1_700_000_500_000).UTC()
	in := insert(t, repo, core.Memory{
		Name:       "circular-import",
		Kind:       core.KindFailure,
		Trigger:    "ImportError: circular import",
		Resolution: "move the import inside the function",
		Embedding:  []float32{0.25, -0.5, 1},
		Helped:     2,
		Failed:     1,
		Source:     "pipeline",
		Cost:       3.5,
		LastUsed:   &used,
	})
	assert.NotZero(t, in.ID)

	got, ok, err := repo.GetMemory(ctx, "circular-import")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, core.KindFailure, got.Kind)
	assert.Equal(t, "ImportError: circular import", got.Trigger)
	assert.Equal(t, []float32{0.25, -0.5, 1}, got.Embedding)
	assert.Equal(t, 2, got.Helped)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, "pipeline", got.Source)
	assert.InDelta(t, 3.5, got.Cost, 1e-9)
	assert.True(t, in.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.LastUsed)
	assert.True(t, used.Equal(*got.LastUsed))

	_, ok, err = repo.GetMemory(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryRepo_DuplicateNameIsUniqueViolation(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	insert(t, repo, core.Memory{Name: "dup"})

	err := repo.InTx(context.Background(), func(w core.MemoryWriter) error {
		m := core.Memory{Name: "dup", Kind: core.KindFact, CreatedAt: time.Now()}
		return w.InsertMemory(context.Background(), &m)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNameTaken)
	assert.True(t, sqlitedrv.IsUniqueViolation(err))
}

func TestMemoryRepo_InvalidKindRejectedBySchema(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)

	err := repo.InTx(context.Background(), func(w core.MemoryWriter) error {
		m := core.Memory{Name: "bad", Kind: core.Kind("opinion"), CreatedAt: time.Now()}
		return w.InsertMemory(context.Background(), &m)
	})
	assert.Error(t, err)
}

func TestMemoryRepo_ListMemoriesFilter(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()

	insert(t, repo, core.Memory{Name: "a", Kind: core.KindFailure, Embedding: []float32{1}})
	insert(t, repo, core.Memory{Name: "b", Kind: core.KindPattern})
	insert(t, repo, core.Memory{Name: "c", Kind: core.KindFailure})

	all, err := repo.ListMemories(ctx, core.MemoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Name)
	assert.Nil(t, all[1].Embedding)

	kind := core.KindFailure
	failures, err := repo.ListMemories(ctx, core.MemoryFilter{Kind: &kind})
	require.NoError(t, err)
	assert.Len(t, failures, 2)

	embedded, err := repo.ListMemories(ctx, core.MemoryFilter{Kind: &kind, WithEmbedding: true})
	require.NoError(t, err)
	require.Len(t, embedded, 1)
	assert.Equal(t, "a", embedded[0].Name)
}

func TestMemoryRepo_Counters(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()
	insert(t, repo, core.Memory{Name: "m"})

	at := time.UnixMilli(1_700_100_000_000).UTC()
	err := repo.InTx(ctx, func(w core.MemoryWriter) error {
		ok, err := w.MarkHelped(ctx, "m", at)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = w.MarkFailed(ctx, "m")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = w.MarkHelped(ctx, "ghost", at)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)

	got, _, err := repo.GetMemory(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Helped)
	assert.Equal(t, 1, got.Failed)
	require.NotNil(t, got.LastUsed)
	assert.True(t, at.Equal(*got.LastUsed))
}

func TestMemoryRepo_AddCounters(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()

	later := time.UnixMilli(1_700_900_000_000).UTC()
	earlier := time.UnixMilli(1_700_000_100_000).UTC()
	insert(t, repo, core.Memory{Name: "m", Helped: 1, Cost: 2, LastUsed: &earlier})

	require.NoError(t, repo.InTx(ctx, func(w core.MemoryWriter) error {
		return w.AddCounters(ctx, "m", 3, 2, &later, 1)
	}))
	got, _, err := repo.GetMemory(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Helped)
	assert.Equal(t, 2, got.Failed)
	assert.InDelta(t, 2.0, got.Cost, 1e-9)
	assert.True(t, later.Equal(*got.LastUsed))

	// an older or missing last_used never moves it back
	require.NoError(t, repo.InTx(ctx, func(w core.MemoryWriter) error {
		if err := w.AddCounters(ctx, "m", 0, 0, &earlier, 5); err != nil {
			return err
		}
		return w.AddCounters(ctx, "m", 0, 0, nil, 0)
	}))
	got, _, err = repo.GetMemory(ctx, "m")
	require.NoError(t, err)
	assert.True(t, later.Equal(*got.LastUsed))
	assert.InDelta(t, 5.0, got.Cost, 1e-9)
}

func TestMemoryRepo_InTxRollsBack(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.InTx(ctx, func(w core.MemoryWriter) error {
		m := core.Memory{Name: "first", Kind: core.KindFact, CreatedAt: time.Now()}
		if err := w.InsertMemory(ctx, &m); err != nil {
			return err
		}
		dup := core.Memory{Name: "first", Kind: core.KindFact, CreatedAt: time.Now()}
		return w.InsertMemory(ctx, &dup)
	})
	require.Error(t, err)

	n, err := repo.CountMemories(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryRepo_KindStats(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()

	insert(t, repo, core.Memory{Name: "a", Kind: core.KindFailure, Helped: 2, Embedding: []float32{1}})
	insert(t, repo, core.Memory{Name: "b", Kind: core.KindFailure, Failed: 1})
	insert(t, repo, core.Memory{Name: "c", Kind: core.KindFact})

	stats, err := repo.KindStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, core.KindStats{Kind: core.KindFact, Count: 1}, stats[0])
	assert.Equal(t, core.KindStats{
		Kind: core.KindFailure, Count: 2, Helped: 2, Failed: 1, WithEmbedding: 1, WithFeedback: 2,
	}, stats[1])
}

func TestMemoryRepo_Edges(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()
	insert(t, repo, core.Memory{Name: "a"})
	insert(t, repo, core.Memory{Name: "b"})
	insert(t, repo, core.Memory{Name: "c"})

	now := time.UnixMilli(1_700_000_000_000).UTC()
	require.NoError(t, repo.InTx(ctx, func(w core.MemoryWriter) error {
		ok, err := w.InsertEdge(ctx, core.Relationship{From: "a", To: "b", RelType: core.RelSolves, Weight: 1, CreatedAt: now})
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = w.InsertEdge(ctx, core.Relationship{From: "a", To: "b", RelType: core.RelSolves, Weight: 7, CreatedAt: now})
		require.NoError(t, err)
		assert.False(t, ok, "duplicate key must not insert")

		_, err = w.InsertEdge(ctx, core.Relationship{From: "b", To: "c", RelType: core.RelCauses, Weight: 0.2, CreatedAt: now})
		return err
	}))

	edge, ok, err := repo.GetEdge(ctx, "a", "b", core.RelSolves)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1.0, edge.Weight, 1e-9)

	strong, err := repo.ListEdges(ctx, 0.5)
	require.NoError(t, err)
	require.Len(t, strong, 1)
	assert.Equal(t, "a", strong[0].From)

	touching, err := repo.ListEdgesTouching(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, touching, 2)

	require.NoError(t, repo.InTx(ctx, func(w core.MemoryWriter) error {
		return w.SetEdgeWeight(ctx, "a", "b", core.RelSolves, 4)
	}))
	edge, _, err = repo.GetEdge(ctx, "a", "b", core.RelSolves)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, edge.Weight, 1e-9)
}

func TestMemoryRepo_EdgesRequireEndpoints(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()
	insert(t, repo, core.Memory{Name: "a"})

	err := repo.InTx(ctx, func(w core.MemoryWriter) error {
		_, err := w.InsertEdge(ctx, core.Relationship{From: "a", To: "ghost", RelType: core.RelSimilar, Weight: 1, CreatedAt: time.Now()})
		return err
	})
	assert.Error(t, err, "foreign key must reject a missing endpoint")

	err = repo.InTx(ctx, func(w core.MemoryWriter) error {
		_, err := w.InsertEdge(ctx, core.Relationship{From: "a", To: "a", RelType: core.RelSimilar, Weight: 1, CreatedAt: time.Now()})
		return err
	})
	assert.Error(t, err, "self loop must be rejected")
}

func TestMemoryRepo_DeleteCascades(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()
	insert(t, repo, core.Memory{Name: "a"})
	insert(t, repo, core.Memory{Name: "b"})
	insert(t, repo, core.Memory{Name: "c"})

	require.NoError(t, repo.InTx(ctx, func(w core.MemoryWriter) error {
		for _, rel := range []core.Relationship{
			{From: "a", To: "b", RelType: core.RelCoOccurs, Weight: 1},
			{From: "c", To: "a", RelType: core.RelCauses, Weight: 1},
			{From: "b", To: "c", RelType: core.RelSimilar, Weight: 1},
		} {
			if _, err := w.InsertEdge(ctx, rel); err != nil {
				return err
			}
		}
		return nil
	}))

	var removed, deleted int
	require.NoError(t, repo.InTx(ctx, func(w core.MemoryWriter) error {
		var err error
		if removed, err = w.DeleteEdgesTouching(ctx, []string{"a"}); err != nil {
			return err
		}
		deleted, err = w.DeleteMemories(ctx, []string{"a", "ghost"})
		return err
	}))
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, deleted)

	edges, err := repo.CountEdges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, edges)

	// the foreign key cascade covers deletes that skip the explicit step
	require.NoError(t, repo.InTx(ctx, func(w core.MemoryWriter) error {
		_, err := w.DeleteMemories(ctx, []string{"b"})
		return err
	}))
	edges, err = repo.CountEdges(ctx)
	require.NoError(t, err)
	assert.Zero(t, edges)
}

func TestMemoryRepo_ReopenKeepsData(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tuskmem.db")
	ctx := context.Background()

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	repo := NewMemoryRepo(db, path)
	insert(t, repo, core.Memory{Name: "persisted"})
	require.NoError(t, db.Close())

	db, err = NewDB(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	repo = NewMemoryRepo(db, path)
	assert.Equal(t, path, repo.Path())

	_, ok, err := repo.GetMemory(ctx, "persisted")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVectorRoundTrip(t *testing.T) {
	blob, err := serializeVector(nil)
	require.NoError(t, err)
	assert.Nil(t, blob)

	blob, err = serializeVector([]float32{1.5, -2})
	require.NoError(t, err)
	assert.Len(t, blob, 8)

	vec, err := deserializeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2}, vec)

	_, err = deserializeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
