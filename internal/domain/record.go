package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DivergenceRecord is one logged evaluation step: the divergence metrics
// computed at that step, the tracked confidence, and whatever action the
// selector chose (empty when none). Serialized flat so offline tooling can
// find a named divergence series under divergence_metrics without knowing
// anything about the decision logic.
type DivergenceRecord struct {
	ID                   uuid.UUID         `json:"id,omitempty"`
	Step                 int               `json:"step"`
	AvgConceptConfidence float64           `json:"avg_concept_confidence"`
	Metrics              DivergenceMetrics `json:"divergence_metrics"`
	Action               string            `json:"action,omitempty"`
	Reason               string            `json:"reason,omitempty"`
	CreatedAt            time.Time         `json:"created_at,omitempty"`
}

// Profile returns the three metric values as a fixed-order vector, used for
// similarity search over past comparisons.
func (r DivergenceRecord) Profile() []float32 {
	return []float32{
		float32(r.Metrics.ConceptJSDivergence),
		float32(r.Metrics.EntityConfidenceGap),
		float32(r.Metrics.RelationConsistency),
	}
}

// RecordWithDistance is a record scored by profile distance (lower is
// closer).
type RecordWithDistance struct {
	DivergenceRecord
	Distance float64 `json:"distance"`
}

type RecordStore interface {
	Create(ctx context.Context, r *DivergenceRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*DivergenceRecord, error)
	ListRecent(ctx context.Context, limit int) ([]DivergenceRecord, error)
	FindSimilar(ctx context.Context, profile []float32, limit int) ([]RecordWithDistance, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
