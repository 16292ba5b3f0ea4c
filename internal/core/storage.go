package core

import (
	"context"
	"errors"
	"time"
)

// ErrNameTaken is returned by InsertMemory when the name already exists.
var ErrNameTaken = errors.New("memory name already taken")

// MemoryReader holds the read side of the memory store. Reads run outside
// the write lock and may observe state at most one write behind.
type MemoryReader interface {
	GetMemory(ctx context.Context, name string) (Memory, bool, error)
	ListMemories(ctx context.Context, filter MemoryFilter) ([]Memory, error)
	CountMemories(ctx context.Context) (int, error)
	KindStats(ctx context.Context) ([]KindStats, error)

	ListEdges(ctx context.Context, minWeight float64) ([]Relationship, error)
	ListEdgesTouching(ctx context.Context, name string) ([]Relationship, error)
	GetEdge(ctx context.Context, from, to string, relType RelType) (Relationship, bool, error)
	CountEdges(ctx context.Context) (int, error)
}

// MemoryWriter is only handed out inside a write transaction.
type MemoryWriter interface {
	MemoryReader

	InsertMemory(ctx context.Context, m *Memory) error
	MarkHelped(ctx context.Context, name string, at time.Time) (bool, error)
	MarkFailed(ctx context.Context, name string) (bool, error)
	AddCounters(ctx context.Context, name string, helped, failed int, lastUsed *time.Time, cost float64) error
	DeleteMemories(ctx context.Context, names []string) (int, error)

	InsertEdge(ctx context.Context, rel Relationship) (bool, error)
	SetEdgeWeight(ctx context.Context, from, to string, relType RelType, weight float64) error
	DeleteEdgesTouching(ctx context.Context, names []string) (int, error)
}

// MemoryRepository persists memories and relationships. InTx runs fn inside
// one write transaction; fn's error rolls everything back.
type MemoryRepository interface {
	MemoryReader
	InTx(ctx context.Context, fn func(w MemoryWriter) error) error
	Path() string
}
