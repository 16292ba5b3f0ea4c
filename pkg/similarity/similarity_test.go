package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "scaled", a: []float32{1, 2, 3}, b: []float32{2, 4, 6}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "length mismatch", a: []float32{1, 0}, b: []float32{1, 0, 0}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
		{name: "45 degrees", a: []float32{1, 0}, b: []float32{1, 1}, want: 1 / math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-6)
		})
	}
}

func TestLexical(t *testing.T) {
	assert.InDelta(t, 1.0, Lexical("Circular import", "circular IMPORT!"), 1e-9)
	assert.InDelta(t, 0.0, Lexical("alpha beta", "gamma delta"), 1e-9)
	assert.InDelta(t, 0.0, Lexical("", "anything"), 1e-9)
	// {circular, import} vs {circular, import, auth, module}
	assert.InDelta(t, 0.5, Lexical("circular import", "circular import auth module"), 1e-9)
	// "in" survives the length filter: 2 of 5
	assert.InDelta(t, 0.4, Lexical("circular import", "circular import in auth module"), 1e-9)
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"importerror", "circular", "import", "in", "auth"},
		Tokens("ImportError: circular import in a auth"))
	assert.Empty(t, Tokens("  ... ! "))
}
