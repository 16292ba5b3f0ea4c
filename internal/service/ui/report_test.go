package ui

import (
	"testing"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/stretchr/testify/assert"
)

func sampleHealth() memory.Health {
	return memory.Health{
		Total:             3,
		ByKind:            []core.KindStats{{Kind: core.KindFailure, Count: 2, Helped: 1, WithEmbedding: 2}, {Kind: core.KindPattern, Count: 1}},
		Helped:            1,
		Failed:            2,
		Effectiveness:     1.0 / 3.0,
		WithEmbedding:     2,
		EmbeddingCoverage: 66.666,
		WithFeedback:      2,
		Edges:             4,
		EmbedderAvailable: true,
		DBPath:            "/tmp/tuskmem.db",
	}
}

func TestRenderHealth(t *testing.T) {
	out := RenderHealth(sampleHealth())

	assert.Contains(t, out, "MEMORY STORE")
	assert.Contains(t, out, "/tmp/tuskmem.db")
	assert.Contains(t, out, "1 helped / 2 failed (2 with feedback)")
	assert.Contains(t, out, "0.33")
	assert.Contains(t, out, "2 of 3 (66.7%)")
	assert.Contains(t, out, "available")
	assert.Contains(t, out, "BY KIND")
	assert.Contains(t, out, "failure")
	assert.Contains(t, out, "2 (1 helped, 0 failed, 2 embedded)")
}

func TestRenderHealth_EmptyStore(t *testing.T) {
	out := RenderHealth(memory.Health{Effectiveness: core.NeutralEffectiveness})
	assert.Contains(t, out, "0 of 0 (0.0%)")
	assert.Contains(t, out, "unavailable")
	assert.NotContains(t, out, "BY KIND")
}

func TestRenderVerification(t *testing.T) {
	open := RenderVerification(memory.Verification{
		Status: memory.VerifyOpen,
		Issues: []string{"no memories stored yet", "no feedback recorded"},
	})
	assert.Contains(t, open, "OPEN")
	assert.Contains(t, open, "! no memories stored yet")
	assert.Contains(t, open, "! no feedback recorded")

	closed := RenderVerification(memory.Verification{
		Status: memory.VerifyClosed,
		Issues: []string{},
		Health: sampleHealth(),
	})
	assert.Contains(t, closed, "CLOSED")
	assert.Contains(t, closed, "no issues")
	assert.Contains(t, closed, "MEMORY STORE")
}
