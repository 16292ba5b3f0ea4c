package core

import "strings"

const (
	TuskName    = "tuskmem"
	TuskVersion = "0.1.0"
)

// Kind classifies a memory. It only changes how callers read trigger and
// resolution; retrieval treats every kind the same way.
type Kind string

const (
	KindFailure    Kind = "failure"
	KindPattern    Kind = "pattern"
	KindFact       Kind = "fact"
	KindDecision   Kind = "decision"
	KindConvention Kind = "convention"
	KindEvolution  Kind = "evolution"
)

var kinds = []Kind{KindFailure, KindPattern, KindFact, KindDecision, KindConvention, KindEvolution}

// Kinds returns the supported kinds in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind normalizes s and reports whether it names a supported kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// RelType is the type of a directed edge between two memories.
type RelType string

const (
	RelCoOccurs RelType = "co_occurs"
	RelCauses   RelType = "causes"
	RelSolves   RelType = "solves"
	RelSimilar  RelType = "similar"
)

var relTypes = []RelType{RelCoOccurs, RelCauses, RelSolves, RelSimilar}

func RelTypes() []RelType {
	out := make([]RelType, len(relTypes))
	copy(out, relTypes)
	return out
}

func ParseRelType(s string) (RelType, bool) {
	r := RelType(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r RelType) Valid() bool {
	for _, known := range relTypes {
		if r == known {
			return true
		}
	}
	return false
}

func (r RelType) String() string {
	return string(r)
}
