package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/beliefdrift/beliefdrift/internal/domain"
)

var ErrNotFound = errors.New("not found")

// RecordStore persists divergence evaluation records. Each record also
// carries its three metric values as a vector(3) profile so past
// comparisons with a similar divergence shape can be recalled.
type RecordStore struct {
	db *pgxpool.Pool
}

func NewRecordStore(db *pgxpool.Pool) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) Create(ctx context.Context, r *domain.DivergenceRecord) error {
	profile := pgvector.NewVector(r.Profile())
	return s.db.QueryRow(ctx,
		`INSERT INTO divergence_records
		   (step, avg_concept_confidence, concept_js_divergence, entity_confidence_gap, relation_consistency, action, reason, profile)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		r.Step, r.AvgConceptConfidence,
		r.Metrics.ConceptJSDivergence, r.Metrics.EntityConfidenceGap, r.Metrics.RelationConsistency,
		r.Action, r.Reason, profile,
	).Scan(&r.ID, &r.CreatedAt)
}

func (s *RecordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.DivergenceRecord, error) {
	r := &domain.DivergenceRecord{}
	err := s.db.QueryRow(ctx,
		`SELECT id, step, avg_concept_confidence, concept_js_divergence, entity_confidence_gap, relation_consistency, action, reason, created_at
		 FROM divergence_records WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Step, &r.AvgConceptConfidence,
		&r.Metrics.ConceptJSDivergence, &r.Metrics.EntityConfidenceGap, &r.Metrics.RelationConsistency,
		&r.Action, &r.Reason, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *RecordStore) ListRecent(ctx context.Context, limit int) ([]domain.DivergenceRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, step, avg_concept_confidence, concept_js_divergence, entity_confidence_gap, relation_consistency, action, reason, created_at
		 FROM divergence_records
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.DivergenceRecord
	for rows.Next() {
		var r domain.DivergenceRecord
		if err := rows.Scan(&r.ID, &r.Step, &r.AvgConceptConfidence,
			&r.Metrics.ConceptJSDivergence, &r.Metrics.EntityConfidenceGap, &r.Metrics.RelationConsistency,
			&r.Action, &r.Reason, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// FindSimilar returns the records whose metric profile is closest to the
// given one by L2 distance, nearest first.
func (s *RecordStore) FindSimilar(ctx context.Context, profile []float32, limit int) ([]domain.RecordWithDistance, error) {
	if limit <= 0 {
		limit = 10
	}

	vec := pgvector.NewVector(profile)
	rows, err := s.db.Query(ctx,
		`SELECT id, step, avg_concept_confidence, concept_js_divergence, entity_confidence_gap, relation_consistency, action, reason, created_at,
		        profile <-> $1 AS distance
		 FROM divergence_records
		 ORDER BY profile <-> $1
		 LIMIT $2`,
		vec, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.RecordWithDistance
	for rows.Next() {
		var r domain.RecordWithDistance
		if err := rows.Scan(&r.ID, &r.Step, &r.AvgConceptConfidence,
			&r.Metrics.ConceptJSDivergence, &r.Metrics.EntityConfidenceGap, &r.Metrics.RelationConsistency,
			&r.Action, &r.Reason, &r.CreatedAt, &r.Distance); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *RecordStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM divergence_records WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
