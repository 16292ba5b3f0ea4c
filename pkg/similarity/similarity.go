// Package similarity scores how alike two pieces of text or two vectors are.
package similarity

import (
	"math"
	"strings"
	"unicode"
)

// Cosine returns the cosine similarity of a and b. Vectors of different
// length, empty vectors and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		magA += x * x
		magB += y * y
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	// rounding can push identical vectors just past 1
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}

// Lexical is the Jaccard index of the token sets of a and b, used when no
// vectors are available.
func Lexical(a, b string) float64 {
	aSet := TokenSet(a)
	bSet := TokenSet(b)
	if len(aSet) == 0 || len(bSet) == 0 {
		return 0
	}
	inter := 0
	union := len(aSet)
	for tok := range bSet {
		if _, ok := aSet[tok]; ok {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

// Tokens lowercases s and splits it on anything that is not a letter or a
// digit. Single-character tokens are dropped.
func Tokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		out = append(out, f)
	}
	return out
}

func TokenSet(s string) map[string]struct{} {
	tokens := Tokens(s)
	out := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		out[t] = struct{}{}
	}
	return out
}
