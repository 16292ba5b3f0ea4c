package core

import "time"

// NeutralEffectiveness is the prior used for memories without feedback.
const NeutralEffectiveness = 0.5

// Memory is a single stored lesson.
type Memory struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Kind       Kind       `json:"kind"`
	Trigger    string     `json:"trigger"`
	Resolution string     `json:"resolution"`
	Embedding  []float32  `json:"-"`
	Helped     int        `json:"helped"`
	Failed     int        `json:"failed"`
	Source     string     `json:"source,omitempty"`
	Cost       float64    `json:"cost,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used,omitempty"`
}

func (m Memory) TotalUses() int {
	return m.Helped + m.Failed
}

// Effectiveness is helped/(helped+failed), or the neutral prior when the
// memory has never received feedback.
func (m Memory) Effectiveness() float64 {
	total := m.TotalUses()
	if total <= 0 {
		return NeutralEffectiveness
	}
	return float64(m.Helped) / float64(total)
}

func (m Memory) HasEmbedding() bool {
	return len(m.Embedding) > 0
}

// LastActive is last_used, or created_at for never-used memories.
func (m Memory) LastActive() time.Time {
	if m.LastUsed != nil {
		return *m.LastUsed
	}
	return m.CreatedAt
}

// Relationship is a typed, weighted, directed edge between two memories.
type Relationship struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	RelType   RelType   `json:"rel_type"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
}

// KindStats aggregates the memories of one kind.
type KindStats struct {
	Kind          Kind `json:"kind"`
	Count         int  `json:"count"`
	Helped        int  `json:"helped"`
	Failed        int  `json:"failed"`
	WithEmbedding int  `json:"with_embedding"`
	WithFeedback  int  `json:"with_feedback"`
}

// MemoryFilter narrows ListMemories. A nil Kind matches all kinds.
type MemoryFilter struct {
	Kind          *Kind
	WithEmbedding bool
}
