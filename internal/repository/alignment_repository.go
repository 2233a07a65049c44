package repository

import (
	"context"
	"fmt"

	"influence-api/pkg/database"
	"influence-api/pkg/logger"
)

// PostgresAlignmentRepository reads influence_target_viewpoint_group_rels
type PostgresAlignmentRepository struct {
	db    *database.PostgresDB
	log   *logger.Logger
	retry RetryPolicy
}

func NewAlignmentRepository(db *database.PostgresDB, log *logger.Logger, retry RetryPolicy) *PostgresAlignmentRepository {
	return &PostgresAlignmentRepository{db: db, log: log, retry: retry}
}

// AlignmentWeights returns the leader-assigned 0–1 weights linking an
// influence target to any of the given groups
func (r *PostgresAlignmentRepository) AlignmentWeights(ctx context.Context, influenceTargetID string, groupIDs []string) ([]float64, error) {
	query := `
		SELECT weight
		FROM influence_target_viewpoint_group_rels
		WHERE influence_target_id = $1 AND viewpoint_group_id = ANY($2)
	`

	var weights []float64
	for i, batch := range batches(groupIDs, BatchSize) {
		var batchWeights []float64
		err := r.retry.Do(ctx, r.log, "alignments.weights", func(ctx context.Context) error {
			rows, err := r.db.ReadPool.Query(ctx, query, influenceTargetID, batch)
			if err != nil {
				return err
			}
			defer rows.Close()

			batchWeights = batchWeights[:0]
			for rows.Next() {
				var w float64
				if err := rows.Scan(&w); err != nil {
					return err
				}
				batchWeights = append(batchWeights, w)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch alignment weights (batch %d): %w", i+1, err)
		}
		weights = append(weights, batchWeights...)
	}

	return weights, nil
}
