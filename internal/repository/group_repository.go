package repository

import (
	"context"
	"errors"
	"fmt"

	"influence-api/internal/domain"
	"influence-api/pkg/database"
	"influence-api/pkg/logger"

	"github.com/jackc/pgx/v5"
)

// PostgresGroupRepository reads viewpoint_groups
type PostgresGroupRepository struct {
	db    *database.PostgresDB
	log   *logger.Logger
	retry RetryPolicy
}

func NewGroupRepository(db *database.PostgresDB, log *logger.Logger, retry RetryPolicy) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db, log: log, retry: retry}
}

// ListGroups returns every viewpoint group, newest first
func (r *PostgresGroupRepository) ListGroups(ctx context.Context) ([]domain.ViewpointGroup, error) {
	query := `
		SELECT id, title, description, is_public, is_searchable, created_at
		FROM viewpoint_groups
		ORDER BY created_at DESC
	`

	var groups []domain.ViewpointGroup
	err := r.retry.Do(ctx, r.log, "groups.list", func(ctx context.Context) error {
		rows, err := r.db.ReadPool.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		groups = groups[:0]
		for rows.Next() {
			var g domain.ViewpointGroup
			if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.IsPublic, &g.IsSearchable, &g.CreatedAt); err != nil {
				return err
			}
			groups = append(groups, g)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list viewpoint groups: %w", err)
	}

	return groups, nil
}

// GroupByID returns the viewpoint group or nil when absent
func (r *PostgresGroupRepository) GroupByID(ctx context.Context, id string) (*domain.ViewpointGroup, error) {
	query := `
		SELECT id, title, description, is_public, is_searchable, created_at
		FROM viewpoint_groups
		WHERE id = $1
	`

	var g domain.ViewpointGroup
	found := false
	err := r.retry.Do(ctx, r.log, "groups.by_id", func(ctx context.Context) error {
		err := r.db.ReadPool.QueryRow(ctx, query, id).Scan(&g.ID, &g.Title, &g.Description, &g.IsPublic, &g.IsSearchable, &g.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch viewpoint group: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &g, nil
}
