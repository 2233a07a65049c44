package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"influence-api/internal/domain"
	"influence-api/pkg/database"
	"influence-api/pkg/logger"

	"github.com/jackc/pgx/v5"
)

// PostgresElectionRepository reads elections, ballot items and their
// race/measure detail
type PostgresElectionRepository struct {
	db    *database.PostgresDB
	log   *logger.Logger
	retry RetryPolicy
}

func NewElectionRepository(db *database.PostgresDB, log *logger.Logger, retry RetryPolicy) *PostgresElectionRepository {
	return &PostgresElectionRepository{db: db, log: log, retry: retry}
}

// ElectionsBetween returns elections with poll_date in [from, to] inclusive,
// date-only comparison, ascending by poll_date
func (r *PostgresElectionRepository) ElectionsBetween(ctx context.Context, from, to time.Time) ([]domain.Election, error) {
	query := `
		SELECT id, name, poll_date, description
		FROM elections
		WHERE poll_date >= $1::date AND poll_date <= $2::date
		ORDER BY poll_date ASC
	`

	var elections []domain.Election
	err := r.retry.Do(ctx, r.log, "elections.between", func(ctx context.Context) error {
		rows, err := r.db.ReadPool.Query(ctx, query, from.Format("2006-01-02"), to.Format("2006-01-02"))
		if err != nil {
			return err
		}
		defer rows.Close()

		elections = elections[:0]
		for rows.Next() {
			var e domain.Election
			if err := rows.Scan(&e.ID, &e.Name, &e.PollDate, &e.Description); err != nil {
				return err
			}
			elections = append(elections, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch elections: %w", err)
	}

	return elections, nil
}

// ElectionByID returns the election or nil when absent
func (r *PostgresElectionRepository) ElectionByID(ctx context.Context, id string) (*domain.Election, error) {
	query := `
		SELECT id, name, poll_date, description
		FROM elections
		WHERE id = $1
	`

	var e domain.Election
	found := false
	err := r.retry.Do(ctx, r.log, "elections.by_id", func(ctx context.Context) error {
		err := r.db.ReadPool.QueryRow(ctx, query, id).Scan(&e.ID, &e.Name, &e.PollDate, &e.Description)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch election: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &e, nil
}

// BallotItems returns an election's ballot items inner-joined with their
// jurisdiction; items whose jurisdiction row is missing are excluded by the
// join
func (r *PostgresElectionRepository) BallotItems(ctx context.Context, electionID string) ([]domain.BallotItemRow, error) {
	query := `
		SELECT bi.id, bi.election_id, bi.title, bi.description, bi.jurisdiction_id, j.name
		FROM ballot_items bi
		JOIN jurisdictions j ON j.id = bi.jurisdiction_id
		WHERE bi.election_id = $1
	`

	var items []domain.BallotItemRow
	err := r.retry.Do(ctx, r.log, "elections.ballot_items", func(ctx context.Context) error {
		rows, err := r.db.ReadPool.Query(ctx, query, electionID)
		if err != nil {
			return err
		}
		defer rows.Close()

		items = items[:0]
		for rows.Next() {
			var bi domain.BallotItemRow
			if err := rows.Scan(&bi.ID, &bi.ElectionID, &bi.Title, &bi.Description, &bi.JurisdictionID, &bi.JurisdictionName); err != nil {
				return err
			}
			items = append(items, bi)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ballot items: %w", err)
	}

	return items, nil
}

// RaceByBallotItem returns at most one race for the ballot item
func (r *PostgresElectionRepository) RaceByBallotItem(ctx context.Context, ballotItemID string) (*domain.RaceRow, error) {
	query := `
		SELECT id, ballot_item_id, office_term_id, party_id, influence_target_id, is_partisan, is_primary
		FROM races
		WHERE ballot_item_id = $1
		LIMIT 1
	`

	var race domain.RaceRow
	found := false
	err := r.retry.Do(ctx, r.log, "elections.race_by_ballot_item", func(ctx context.Context) error {
		err := r.db.ReadPool.QueryRow(ctx, query, ballotItemID).Scan(
			&race.ID,
			&race.BallotItemID,
			&race.OfficeTermID,
			&race.PartyID,
			&race.InfluenceTargetID,
			&race.IsPartisan,
			&race.IsPrimary,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch race: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &race, nil
}

// MeasureByBallotItem returns at most one measure for the ballot item
func (r *PostgresElectionRepository) MeasureByBallotItem(ctx context.Context, ballotItemID string) (*domain.MeasureRow, error) {
	query := `
		SELECT id, ballot_item_id, name, title, summary, full_text, fiscal_impact,
		       pro_snippet, con_snippet, influence_target_id
		FROM measures
		WHERE ballot_item_id = $1
		LIMIT 1
	`

	var m domain.MeasureRow
	found := false
	err := r.retry.Do(ctx, r.log, "elections.measure_by_ballot_item", func(ctx context.Context) error {
		err := r.db.ReadPool.QueryRow(ctx, query, ballotItemID).Scan(
			&m.ID,
			&m.BallotItemID,
			&m.Name,
			&m.Title,
			&m.Summary,
			&m.FullText,
			&m.FiscalImpact,
			&m.ProSnippet,
			&m.ConSnippet,
			&m.InfluenceTargetID,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch measure: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &m, nil
}

// OfficeTermByID returns the office term joined with its office
func (r *PostgresElectionRepository) OfficeTermByID(ctx context.Context, id string) (*domain.OfficeTerm, error) {
	query := `
		SELECT ot.id, o.name, o.level, o.district
		FROM office_terms ot
		LEFT JOIN offices o ON o.id = ot.office_id
		WHERE ot.id = $1
	`

	var term domain.OfficeTerm
	found := false
	err := r.retry.Do(ctx, r.log, "elections.office_term", func(ctx context.Context) error {
		err := r.db.ReadPool.QueryRow(ctx, query, id).Scan(&term.ID, &term.OfficeName, &term.OfficeLevel, &term.OfficeDistrict)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch office term: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &term, nil
}

// CandidatesByRace returns the full candidate roster including withdrawn
// candidacies
func (r *PostgresElectionRepository) CandidatesByRace(ctx context.Context, raceID string) ([]domain.Candidate, error) {
	query := `
		SELECT c.id, c.candidate_id, p.full_name, c.party_id, pa.name, c.status, c.is_withdrawn, c.result
		FROM candidacies c
		LEFT JOIN persons p ON p.id = c.candidate_id
		LEFT JOIN parties pa ON pa.id = c.party_id
		WHERE c.race_id = $1
	`

	var candidates []domain.Candidate
	err := r.retry.Do(ctx, r.log, "elections.candidates", func(ctx context.Context) error {
		rows, err := r.db.ReadPool.Query(ctx, query, raceID)
		if err != nil {
			return err
		}
		defer rows.Close()

		candidates = candidates[:0]
		for rows.Next() {
			var c domain.Candidate
			if err := rows.Scan(&c.CandidacyID, &c.CandidateID, &c.CandidateName, &c.PartyID, &c.PartyName, &c.Status, &c.IsWithdrawn, &c.Result); err != nil {
				return err
			}
			candidates = append(candidates, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	return candidates, nil
}

// PartyNameByID returns a party's name, nil when absent
func (r *PostgresElectionRepository) PartyNameByID(ctx context.Context, id string) (*string, error) {
	query := `SELECT name FROM parties WHERE id = $1`

	var name *string
	err := r.retry.Do(ctx, r.log, "elections.party_name", func(ctx context.Context) error {
		err := r.db.ReadPool.QueryRow(ctx, query, id).Scan(&name)
		if errors.Is(err, pgx.ErrNoRows) {
			name = nil
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch party: %w", err)
	}

	return name, nil
}
