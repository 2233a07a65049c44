package repository

import (
	"context"
	"fmt"

	"influence-api/internal/domain"
	"influence-api/pkg/database"
	"influence-api/pkg/logger"
)

// PostgresRollupRepository reads the precomputed aggregate views. These are
// materialized shortcuts over the raw-join paths and must stay semantically
// equivalent to them.
type PostgresRollupRepository struct {
	db    *database.PostgresDB
	log   *logger.Logger
	retry RetryPolicy
}

func NewRollupRepository(db *database.PostgresDB, log *logger.Logger, retry RetryPolicy) *PostgresRollupRepository {
	return &PostgresRollupRepository{db: db, log: log, retry: retry}
}

// SupportersByJurisdiction reads mv_supporters_by_jurisdiction for the
// given groups
func (r *PostgresRollupRepository) SupportersByJurisdiction(ctx context.Context, groupIDs []string) ([]domain.SupporterJurisdictionRow, error) {
	query := `
		SELECT viewpoint_group_id, jurisdiction_id, profile_id, created_at
		FROM mv_supporters_by_jurisdiction
		WHERE viewpoint_group_id = ANY($1)
	`

	var result []domain.SupporterJurisdictionRow
	for i, batch := range batches(groupIDs, BatchSize) {
		var batchRows []domain.SupporterJurisdictionRow
		err := r.retry.Do(ctx, r.log, "rollups.supporters_by_jurisdiction", func(ctx context.Context) error {
			rows, err := r.db.ReadPool.Query(ctx, query, batch)
			if err != nil {
				return err
			}
			defer rows.Close()

			batchRows = batchRows[:0]
			for rows.Next() {
				var row domain.SupporterJurisdictionRow
				if err := rows.Scan(&row.ViewpointGroupID, &row.JurisdictionID, &row.ProfileID, &row.CreatedAt); err != nil {
					return err
				}
				batchRows = append(batchRows, row)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read supporter rollup (batch %d): %w", i+1, err)
		}
		result = append(result, batchRows...)
	}

	return result, nil
}

// TimeSeries reads mv_time_series_supporters for the given groups and
// period granularity, ascending by bucket date
func (r *PostgresRollupRepository) TimeSeries(ctx context.Context, groupIDs []string, period domain.PeriodType) ([]domain.TimeSeriesRollupRow, error) {
	query := `
		SELECT viewpoint_group_id, period_type, period, date,
		       new_supporters, cumulative_supporters, active_supporters
		FROM mv_time_series_supporters
		WHERE viewpoint_group_id = ANY($1) AND period_type = $2
		ORDER BY date ASC
	`

	var result []domain.TimeSeriesRollupRow
	for i, batch := range batches(groupIDs, BatchSize) {
		var batchRows []domain.TimeSeriesRollupRow
		err := r.retry.Do(ctx, r.log, "rollups.time_series", func(ctx context.Context) error {
			rows, err := r.db.ReadPool.Query(ctx, query, batch, period)
			if err != nil {
				return err
			}
			defer rows.Close()

			batchRows = batchRows[:0]
			for rows.Next() {
				var row domain.TimeSeriesRollupRow
				if err := rows.Scan(
					&row.ViewpointGroupID,
					&row.PeriodType,
					&row.Period,
					&row.Date,
					&row.NewSupporters,
					&row.CumulativeSupporters,
					&row.ActiveSupporters,
				); err != nil {
					return err
				}
				batchRows = append(batchRows, row)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read time-series rollup (batch %d): %w", i+1, err)
		}
		result = append(result, batchRows...)
	}

	return result, nil
}
