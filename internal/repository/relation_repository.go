package repository

import (
	"context"
	"fmt"
	"time"

	"influence-api/internal/domain"
	"influence-api/pkg/database"
	"influence-api/pkg/logger"
)

// PostgresRelationRepository reads profile_viewpoint_group_rels
type PostgresRelationRepository struct {
	db    *database.PostgresDB
	log   *logger.Logger
	retry RetryPolicy
}

func NewRelationRepository(db *database.PostgresDB, log *logger.Logger, retry RetryPolicy) *PostgresRelationRepository {
	return &PostgresRelationRepository{db: db, log: log, retry: retry}
}

// SupporterProfileIDs returns the profile ids with a supporter relation to
// the given group
func (r *PostgresRelationRepository) SupporterProfileIDs(ctx context.Context, groupID string) ([]string, error) {
	query := `
		SELECT profile_id
		FROM profile_viewpoint_group_rels
		WHERE viewpoint_group_id = $1 AND type = $2
	`

	var ids []string
	err := r.retry.Do(ctx, r.log, "relations.supporter_profile_ids", func(ctx context.Context) error {
		rows, err := r.db.ReadPool.Query(ctx, query, groupID, domain.RelationSupporter)
		if err != nil {
			return err
		}
		defer rows.Close()

		ids = ids[:0]
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supporter profiles: %w", err)
	}

	return ids, nil
}

// LeaderGroupIDs returns the ids of groups the given profiles lead,
// excluding one group. Batches that fail after retries are logged and
// skipped so the overall lookup degrades to a partial result.
func (r *PostgresRelationRepository) LeaderGroupIDs(ctx context.Context, profileIDs []string, excludeGroupID string) ([]string, error) {
	query := `
		SELECT DISTINCT viewpoint_group_id
		FROM profile_viewpoint_group_rels
		WHERE profile_id = ANY($1) AND type = $2 AND viewpoint_group_id <> $3
	`

	var groupIDs []string
	for i, batch := range batches(profileIDs, BatchSize) {
		var batchIDs []string
		err := r.retry.Do(ctx, r.log, "relations.leader_group_ids", func(ctx context.Context) error {
			rows, err := r.db.ReadPool.Query(ctx, query, batch, domain.RelationLeader, excludeGroupID)
			if err != nil {
				return err
			}
			defer rows.Close()

			batchIDs = batchIDs[:0]
			for rows.Next() {
				var id string
				if err := rows.Scan(&id); err != nil {
					return err
				}
				batchIDs = append(batchIDs, id)
			}
			return rows.Err()
		})
		if err != nil {
			r.log.WithFields(map[string]interface{}{
				"batch":      i + 1,
				"batch_size": len(batch),
			}).WithError(err).Error("Skipping failed leader-group batch")
			continue
		}
		groupIDs = append(groupIDs, batchIDs...)
	}

	return groupIDs, nil
}

// SupporterRelations returns every supporter relation row for the given
// groups, ascending by creation time
func (r *PostgresRelationRepository) SupporterRelations(ctx context.Context, groupIDs []string) ([]domain.SupporterRelation, error) {
	query := `
		SELECT profile_id, viewpoint_group_id, created_at
		FROM profile_viewpoint_group_rels
		WHERE viewpoint_group_id = ANY($1) AND type = $2
		ORDER BY created_at ASC
	`

	var rels []domain.SupporterRelation
	for i, batch := range batches(groupIDs, BatchSize) {
		var batchRels []domain.SupporterRelation
		err := r.retry.Do(ctx, r.log, "relations.supporter_relations", func(ctx context.Context) error {
			rows, err := r.db.ReadPool.Query(ctx, query, batch, domain.RelationSupporter)
			if err != nil {
				return err
			}
			defer rows.Close()

			batchRels = batchRels[:0]
			for rows.Next() {
				var rel domain.SupporterRelation
				if err := rows.Scan(&rel.ProfileID, &rel.ViewpointGroupID, &rel.CreatedAt); err != nil {
					return err
				}
				batchRels = append(batchRels, rel)
			}
			return rows.Err()
		})
		if err != nil {
			r.log.WithFields(map[string]interface{}{
				"batch":      i + 1,
				"batch_size": len(batch),
			}).WithError(err).Error("Skipping failed supporter-relation batch")
			continue
		}
		rels = append(rels, batchRels...)
	}

	return rels, nil
}

// CountSupporters returns the exact supporter relation count for the groups
func (r *PostgresRelationRepository) CountSupporters(ctx context.Context, groupIDs []string) (int, error) {
	query := `
		SELECT count(*)
		FROM profile_viewpoint_group_rels
		WHERE viewpoint_group_id = ANY($1) AND type = $2
	`

	var count int
	err := r.retry.Do(ctx, r.log, "relations.count_supporters", func(ctx context.Context) error {
		return r.db.ReadPool.QueryRow(ctx, query, groupIDs, domain.RelationSupporter).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count supporters: %w", err)
	}

	return count, nil
}

// CountSupportersSince counts supporter relations created at or after since
func (r *PostgresRelationRepository) CountSupportersSince(ctx context.Context, groupIDs []string, since time.Time) (int, error) {
	query := `
		SELECT count(*)
		FROM profile_viewpoint_group_rels
		WHERE viewpoint_group_id = ANY($1) AND type = $2 AND created_at >= $3
	`

	var count int
	err := r.retry.Do(ctx, r.log, "relations.count_supporters_since", func(ctx context.Context) error {
		return r.db.ReadPool.QueryRow(ctx, query, groupIDs, domain.RelationSupporter, since).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count recent supporters: %w", err)
	}

	return count, nil
}
