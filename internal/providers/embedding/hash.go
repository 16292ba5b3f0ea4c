package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/pkg/similarity"
)

const DefaultHashDimensions = 256

// Hash is an offline embedder based on signed feature hashing of word
// unigrams and bigrams. Texts sharing vocabulary land close together, which
// is enough for dedup and retrieval without a model server.
type Hash struct {
	dimensions int
}

func NewHash(dimensions int) *Hash {
	if dimensions <= 0 {
		dimensions = DefaultHashDimensions
	}
	return &Hash{dimensions: dimensions}
}

// Embed reports core.ErrEmbeddingUnavailable for text without tokens, or
// whose features cancel out, since a zero vector matches nothing.
func (h *Hash) Embed(_ context.Context, text string) ([]float32, error) {
	tokens := similarity.Tokens(text)
	if len(tokens) == 0 {
		return nil, core.ErrEmbeddingUnavailable
	}

	vec := make([]float32, h.dimensions)
	for i, tok := range tokens {
		h.add(vec, tok, 1)
		if i > 0 {
			h.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}
	if !normalize(vec) {
		return nil, core.ErrEmbeddingUnavailable
	}
	return vec, nil
}

func (h *Hash) add(vec []float32, feature string, weight float32) {
	f := fnv.New64a()
	f.Write([]byte(feature))
	sum := f.Sum64()

	idx := sum % uint64(len(vec))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

func (h *Hash) Available(context.Context) bool {
	return true
}

func (h *Hash) Dimensions() int {
	return h.dimensions
}

// normalize scales vec to unit length in place. It reports false for the
// zero vector.
func normalize(vec []float32) bool {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return false
	}

	norm = math.Sqrt(norm)
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
	return true
}
