package repository

import (
	"context"
	"time"

	"influence-api/internal/domain"
)

// RelationRepository reads profile↔viewpoint-group relations
type RelationRepository interface {
	// SupporterProfileIDs returns the profile ids with a supporter relation
	// to the given group
	SupporterProfileIDs(ctx context.Context, groupID string) ([]string, error)

	// LeaderGroupIDs returns the ids of groups led by any of the given
	// profiles, excluding one group. Lookups are batched; failed batches are
	// logged and skipped.
	LeaderGroupIDs(ctx context.Context, profileIDs []string, excludeGroupID string) ([]string, error)

	// SupporterRelations returns every supporter relation row for the given
	// groups, ordered by creation time
	SupporterRelations(ctx context.Context, groupIDs []string) ([]domain.SupporterRelation, error)

	// CountSupporters returns the exact supporter relation count for the
	// given groups
	CountSupporters(ctx context.Context, groupIDs []string) (int, error)

	// CountSupportersSince counts supporter relations created at or after
	// the given instant
	CountSupportersSince(ctx context.Context, groupIDs []string, since time.Time) (int, error)
}

// VoterRepository walks the profile → person → verification → jurisdiction
// chain
type VoterRepository interface {
	// PersonIDsByProfile maps profile id to person id; profiles without a
	// linked person are absent from the result
	PersonIDsByProfile(ctx context.Context, profileIDs []string) (map[string]string, error)

	// VerificationIDsByPerson maps person id to voter verification ids
	VerificationIDsByPerson(ctx context.Context, personIDs []string) (map[string][]string, error)

	// JurisdictionIDsByVerification maps verification id to jurisdiction ids
	JurisdictionIDsByVerification(ctx context.Context, verificationIDs []string) (map[string][]string, error)

	// JurisdictionsByID fetches jurisdiction detail rows
	JurisdictionsByID(ctx context.Context, ids []string) ([]domain.Jurisdiction, error)
}

// ElectionRepository reads elections, ballot items and their race/measure
// detail
type ElectionRepository interface {
	// ElectionsBetween returns elections with poll_date in [from, to],
	// date-only comparison, ascending by poll_date
	ElectionsBetween(ctx context.Context, from, to time.Time) ([]domain.Election, error)

	// ElectionByID returns the election or nil when absent
	ElectionByID(ctx context.Context, id string) (*domain.Election, error)

	// BallotItems returns an election's ballot items, inner-joined with
	// their jurisdiction
	BallotItems(ctx context.Context, electionID string) ([]domain.BallotItemRow, error)

	// RaceByBallotItem returns at most one race for the ballot item, nil
	// when none exists
	RaceByBallotItem(ctx context.Context, ballotItemID string) (*domain.RaceRow, error)

	// MeasureByBallotItem returns at most one measure for the ballot item,
	// nil when none exists
	MeasureByBallotItem(ctx context.Context, ballotItemID string) (*domain.MeasureRow, error)

	// OfficeTermByID returns the office term joined with its office, nil
	// when absent
	OfficeTermByID(ctx context.Context, id string) (*domain.OfficeTerm, error)

	// CandidatesByRace returns the full candidate roster for a race,
	// including withdrawn candidacies
	CandidatesByRace(ctx context.Context, raceID string) ([]domain.Candidate, error)

	// PartyNameByID returns a party's name, nil when absent
	PartyNameByID(ctx context.Context, id string) (*string, error)
}

// AlignmentRepository reads leader-priority weights on influence targets
type AlignmentRepository interface {
	// AlignmentWeights returns the 0–1 weights linking an influence target
	// to any of the given groups
	AlignmentWeights(ctx context.Context, influenceTargetID string, groupIDs []string) ([]float64, error)
}

// RollupRepository reads the precomputed aggregate views. Implementations
// must be semantically equivalent to the raw-join paths they shortcut.
type RollupRepository interface {
	SupportersByJurisdiction(ctx context.Context, groupIDs []string) ([]domain.SupporterJurisdictionRow, error)
	TimeSeries(ctx context.Context, groupIDs []string, period domain.PeriodType) ([]domain.TimeSeriesRollupRow, error)
}

// GroupRepository reads viewpoint group records
type GroupRepository interface {
	ListGroups(ctx context.Context) ([]domain.ViewpointGroup, error)
	GroupByID(ctx context.Context, id string) (*domain.ViewpointGroup, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Relations  RelationRepository
	Voters     VoterRepository
	Elections  ElectionRepository
	Alignments AlignmentRepository
	Rollups    RollupRepository
	Groups     GroupRepository
}
