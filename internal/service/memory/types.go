package memory

import (
	"time"

	"github.com/sandevgo/tuskmem/internal/core"
)

// Status is the business outcome of a mutating call. Rejections are values,
// not errors.
type Status string

const (
	StatusAdded    Status = "added"
	StatusMerged   Status = "merged"
	StatusExists   Status = "exists"
	StatusUpdated  Status = "updated"
	StatusRejected Status = "rejected"
)

type StoreRequest struct {
	Trigger    string
	Resolution string
	Kind       string
	Source     string
	// Name overrides the slug derived from Trigger.
	Name string
	Cost float64
}

type StoreResult struct {
	Status     Status  `json:"status"`
	Name       string  `json:"name,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

type QueryRequest struct {
	Text             string
	Kind             *core.Kind
	Limit            int
	MinEffectiveness float64
}

type ScoredMemory struct {
	core.Memory
	Effectiveness float64 `json:"effectiveness"`
	Relevance     float64 `json:"relevance"`
	Score         float64 `json:"score"`
}

type FeedbackResult struct {
	Helped    int      `json:"helped"`
	NotHelped int      `json:"not_helped"`
	NotFound  []string `json:"not_found"`
}

type RelateRequest struct {
	From    string
	To      string
	RelType string
	// Zero means the default weight of 1.0.
	Weight float64
}

type RelateResult struct {
	Status Status  `json:"status"`
	Reason string  `json:"reason,omitempty"`
	Weight float64 `json:"weight,omitempty"`
}

type Direction string

const (
	DirectionOut Direction = "out"
	DirectionIn  Direction = "in"
)

// RelatedMemory is a node reached by Related. Via is the node it was
// reached from; Direction tells whether the connecting edge points away
// from Via (out) or towards it (in).
type RelatedMemory struct {
	core.Memory
	Effectiveness float64      `json:"effectiveness"`
	Hop           int          `json:"hop"`
	Via           string       `json:"via"`
	RelType       core.RelType `json:"rel_type"`
	Weight        float64      `json:"weight"`
	Direction     Direction    `json:"direction"`
}

type PruneRequest struct {
	// Nil thresholds fall back to the configured defaults.
	MinEffectiveness *float64
	MinUses          *int
	DryRun           bool
}

type PruneResult struct {
	Pruned       int      `json:"pruned"`
	Remaining    int      `json:"remaining"`
	PrunedNames  []string `json:"pruned_names"`
	EdgesRemoved int      `json:"edges_removed"`
	DryRun       bool     `json:"dry_run,omitempty"`
}

type DecayedMemory struct {
	Name          string    `json:"name"`
	Kind          core.Kind `json:"kind"`
	Effectiveness float64   `json:"effectiveness"`
	TotalUses     int       `json:"total_uses"`
	LastActive    time.Time `json:"last_active"`
	DaysUnused    int       `json:"days_unused"`
}

type ConsolidateRequest struct {
	// Zero uses the dedup threshold.
	Threshold float64
	DryRun    bool
}

type ConsolidationGroup struct {
	Kind     core.Kind `json:"kind"`
	Kept     string    `json:"kept"`
	Absorbed []string  `json:"absorbed"`
}

type ConsolidateResult struct {
	Groups     []ConsolidationGroup `json:"groups"`
	Absorbed   int                  `json:"absorbed"`
	EdgesMoved int                  `json:"edges_moved"`
	DryRun     bool                 `json:"dry_run,omitempty"`
}

type Health struct {
	Total             int              `json:"total"`
	ByKind            []core.KindStats `json:"by_kind"`
	Helped            int              `json:"helped"`
	Failed            int              `json:"failed"`
	Effectiveness     float64          `json:"effectiveness"`
	WithEmbedding     int              `json:"with_embedding"`
	EmbeddingCoverage float64          `json:"embedding_coverage"`
	WithFeedback      int              `json:"with_feedback"`
	Edges             int              `json:"edges"`
	EmbedderAvailable bool             `json:"embedder_available"`
	DBPath            string           `json:"db_path"`
}

type VerifyStatus string

const (
	VerifyClosed VerifyStatus = "CLOSED"
	VerifyOpen   VerifyStatus = "OPEN"
)

type Verification struct {
	Status VerifyStatus `json:"status"`
	Issues []string     `json:"issues"`
	Health Health       `json:"health"`
}
