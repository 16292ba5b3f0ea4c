package core

import "time"

// Scorer ranks a retrieval candidate. relevance is cosine similarity (or the
// lexical fallback) in [-1, 1]; higher scores rank first.
type Scorer interface {
	Name() string
	Score(relevance float64, m Memory, now time.Time) float64
}
