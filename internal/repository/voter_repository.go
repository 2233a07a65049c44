package repository

import (
	"context"

	"influence-api/internal/domain"
	"influence-api/pkg/database"
	"influence-api/pkg/logger"
)

// PostgresVoterRepository walks profiles → persons → voter_verifications →
// voter_verification_jurisdiction_rels → jurisdictions
type PostgresVoterRepository struct {
	db    *database.PostgresDB
	log   *logger.Logger
	retry RetryPolicy
}

func NewVoterRepository(db *database.PostgresDB, log *logger.Logger, retry RetryPolicy) *PostgresVoterRepository {
	return &PostgresVoterRepository{db: db, log: log, retry: retry}
}

// PersonIDsByProfile maps profile id to person id. Profiles without a person
// link are absent from the map.
func (r *PostgresVoterRepository) PersonIDsByProfile(ctx context.Context, profileIDs []string) (map[string]string, error) {
	query := `
		SELECT id, person_id
		FROM profiles
		WHERE id = ANY($1) AND person_id IS NOT NULL
	`

	result := make(map[string]string, len(profileIDs))
	for i, batch := range batches(profileIDs, BatchSize) {
		err := r.retry.Do(ctx, r.log, "voters.person_ids_by_profile", func(ctx context.Context) error {
			rows, err := r.db.ReadPool.Query(ctx, query, batch)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				var profileID, personID string
				if err := rows.Scan(&profileID, &personID); err != nil {
					return err
				}
				result[profileID] = personID
			}
			return rows.Err()
		})
		if err != nil {
			r.log.WithField("batch", i+1).WithError(err).Error("Skipping failed profile batch")
		}
	}

	return result, nil
}

// VerificationIDsByPerson maps person id to voter verification ids
func (r *PostgresVoterRepository) VerificationIDsByPerson(ctx context.Context, personIDs []string) (map[string][]string, error) {
	query := `
		SELECT id, person_id
		FROM voter_verifications
		WHERE person_id = ANY($1)
	`

	result := make(map[string][]string)
	for i, batch := range batches(personIDs, BatchSize) {
		batchResult := make(map[string][]string)
		err := r.retry.Do(ctx, r.log, "voters.verifications_by_person", func(ctx context.Context) error {
			rows, err := r.db.ReadPool.Query(ctx, query, batch)
			if err != nil {
				return err
			}
			defer rows.Close()

			clear(batchResult)
			for rows.Next() {
				var id, personID string
				if err := rows.Scan(&id, &personID); err != nil {
					return err
				}
				batchResult[personID] = append(batchResult[personID], id)
			}
			return rows.Err()
		})
		if err != nil {
			r.log.WithField("batch", i+1).WithError(err).Error("Skipping failed verification batch")
			continue
		}
		for personID, ids := range batchResult {
			result[personID] = append(result[personID], ids...)
		}
	}

	return result, nil
}

// JurisdictionIDsByVerification maps verification id to jurisdiction ids
func (r *PostgresVoterRepository) JurisdictionIDsByVerification(ctx context.Context, verificationIDs []string) (map[string][]string, error) {
	query := `
		SELECT voter_verification_id, jurisdiction_id
		FROM voter_verification_jurisdiction_rels
		WHERE voter_verification_id = ANY($1)
	`

	result := make(map[string][]string)
	for i, batch := range batches(verificationIDs, BatchSize) {
		batchResult := make(map[string][]string)
		err := r.retry.Do(ctx, r.log, "voters.jurisdictions_by_verification", func(ctx context.Context) error {
			rows, err := r.db.ReadPool.Query(ctx, query, batch)
			if err != nil {
				return err
			}
			defer rows.Close()

			clear(batchResult)
			for rows.Next() {
				var verificationID, jurisdictionID string
				if err := rows.Scan(&verificationID, &jurisdictionID); err != nil {
					return err
				}
				batchResult[verificationID] = append(batchResult[verificationID], jurisdictionID)
			}
			return rows.Err()
		})
		if err != nil {
			r.log.WithField("batch", i+1).WithError(err).Error("Skipping failed jurisdiction-relation batch")
			continue
		}
		for verificationID, ids := range batchResult {
			result[verificationID] = append(result[verificationID], ids...)
		}
	}

	return result, nil
}

// JurisdictionsByID fetches jurisdiction detail rows
func (r *PostgresVoterRepository) JurisdictionsByID(ctx context.Context, ids []string) ([]domain.Jurisdiction, error) {
	query := `
		SELECT id, name, level, state
		FROM jurisdictions
		WHERE id = ANY($1)
	`

	var jurisdictions []domain.Jurisdiction
	for i, batch := range batches(ids, BatchSize) {
		var batchRows []domain.Jurisdiction
		err := r.retry.Do(ctx, r.log, "voters.jurisdictions_by_id", func(ctx context.Context) error {
			rows, err := r.db.ReadPool.Query(ctx, query, batch)
			if err != nil {
				return err
			}
			defer rows.Close()

			batchRows = batchRows[:0]
			for rows.Next() {
				var j domain.Jurisdiction
				if err := rows.Scan(&j.ID, &j.Name, &j.Level, &j.State); err != nil {
					return err
				}
				batchRows = append(batchRows, j)
			}
			return rows.Err()
		})
		if err != nil {
			r.log.WithField("batch", i+1).WithError(err).Error("Skipping failed jurisdiction batch")
			continue
		}
		jurisdictions = append(jurisdictions, batchRows...)
	}

	return jurisdictions, nil
}
