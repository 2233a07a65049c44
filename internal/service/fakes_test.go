package service

import (
	"context"
	"time"

	"influence-api/internal/domain"
)

// fakeRelationRepo serves supporter/leader relations from in-memory maps
type fakeRelationRepo struct {
	supporters map[string][]string // group id -> supporter profile ids
	leaders    map[string][]string // profile id -> led group ids
	relations  []domain.SupporterRelation

	supportersErr error
	leadersErr    error
	relationsErr  error
}

func (f *fakeRelationRepo) SupporterProfileIDs(_ context.Context, groupID string) ([]string, error) {
	if f.supportersErr != nil {
		return nil, f.supportersErr
	}
	return f.supporters[groupID], nil
}

func (f *fakeRelationRepo) LeaderGroupIDs(_ context.Context, profileIDs []string, excludeGroupID string) ([]string, error) {
	if f.leadersErr != nil {
		return nil, f.leadersErr
	}
	seen := map[string]struct{}{}
	var out []string
	for _, pid := range profileIDs {
		for _, gid := range f.leaders[pid] {
			if gid == excludeGroupID {
				continue
			}
			if _, ok := seen[gid]; ok {
				continue
			}
			seen[gid] = struct{}{}
			out = append(out, gid)
		}
	}
	return out, nil
}

func (f *fakeRelationRepo) SupporterRelations(_ context.Context, groupIDs []string) ([]domain.SupporterRelation, error) {
	if f.relationsErr != nil {
		return nil, f.relationsErr
	}
	inScope := map[string]struct{}{}
	for _, gid := range groupIDs {
		inScope[gid] = struct{}{}
	}
	var out []domain.SupporterRelation
	for _, rel := range f.relations {
		if _, ok := inScope[rel.ViewpointGroupID]; ok {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (f *fakeRelationRepo) CountSupporters(ctx context.Context, groupIDs []string) (int, error) {
	rels, err := f.SupporterRelations(ctx, groupIDs)
	return len(rels), err
}

func (f *fakeRelationRepo) CountSupportersSince(ctx context.Context, groupIDs []string, since time.Time) (int, error) {
	rels, err := f.SupporterRelations(ctx, groupIDs)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rel := range rels {
		if !rel.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// fakeVoterRepo serves the hop chain from in-memory maps
type fakeVoterRepo struct {
	personByProfile             map[string]string
	verificationsByPerson       map[string][]string
	jurisdictionsByVerification map[string][]string
	jurisdictions               []domain.Jurisdiction
}

func (f *fakeVoterRepo) PersonIDsByProfile(_ context.Context, profileIDs []string) (map[string]string, error) {
	out := map[string]string{}
	for _, pid := range profileIDs {
		if person, ok := f.personByProfile[pid]; ok {
			out[pid] = person
		}
	}
	return out, nil
}

func (f *fakeVoterRepo) VerificationIDsByPerson(_ context.Context, personIDs []string) (map[string][]string, error) {
	out := map[string][]string{}
	for _, pid := range personIDs {
		if ids, ok := f.verificationsByPerson[pid]; ok {
			out[pid] = ids
		}
	}
	return out, nil
}

func (f *fakeVoterRepo) JurisdictionIDsByVerification(_ context.Context, verificationIDs []string) (map[string][]string, error) {
	out := map[string][]string{}
	for _, vid := range verificationIDs {
		if ids, ok := f.jurisdictionsByVerification[vid]; ok {
			out[vid] = ids
		}
	}
	return out, nil
}

func (f *fakeVoterRepo) JurisdictionsByID(_ context.Context, ids []string) ([]domain.Jurisdiction, error) {
	want := map[string]struct{}{}
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []domain.Jurisdiction
	for _, j := range f.jurisdictions {
		if _, ok := want[j.ID]; ok {
			out = append(out, j)
		}
	}
	return out, nil
}

// fakeElectionRepo serves elections and ballot detail from in-memory maps
type fakeElectionRepo struct {
	elections   []domain.Election
	ballotItems map[string][]domain.BallotItemRow // election id -> rows
	races       map[string]*domain.RaceRow        // ballot item id -> race
	measures    map[string]*domain.MeasureRow     // ballot item id -> measure
	officeTerms map[string]*domain.OfficeTerm
	candidates  map[string][]domain.Candidate // race id -> roster
	parties     map[string]string

	ballotErrs map[string]error // election id -> forced error
}

func (f *fakeElectionRepo) ElectionsBetween(_ context.Context, from, to time.Time) ([]domain.Election, error) {
	var out []domain.Election
	for _, el := range f.elections {
		d := el.PollDate
		if !d.Before(from) && !d.After(to) {
			out = append(out, el)
		}
	}
	return out, nil
}

func (f *fakeElectionRepo) ElectionByID(_ context.Context, id string) (*domain.Election, error) {
	for _, el := range f.elections {
		if el.ID == id {
			e := el
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeElectionRepo) BallotItems(_ context.Context, electionID string) ([]domain.BallotItemRow, error) {
	if err, ok := f.ballotErrs[electionID]; ok {
		return nil, err
	}
	return f.ballotItems[electionID], nil
}

func (f *fakeElectionRepo) RaceByBallotItem(_ context.Context, ballotItemID string) (*domain.RaceRow, error) {
	return f.races[ballotItemID], nil
}

func (f *fakeElectionRepo) MeasureByBallotItem(_ context.Context, ballotItemID string) (*domain.MeasureRow, error) {
	return f.measures[ballotItemID], nil
}

func (f *fakeElectionRepo) OfficeTermByID(_ context.Context, id string) (*domain.OfficeTerm, error) {
	return f.officeTerms[id], nil
}

func (f *fakeElectionRepo) CandidatesByRace(_ context.Context, raceID string) ([]domain.Candidate, error) {
	return f.candidates[raceID], nil
}

func (f *fakeElectionRepo) PartyNameByID(_ context.Context, id string) (*string, error) {
	if name, ok := f.parties[id]; ok {
		return &name, nil
	}
	return nil, nil
}

// fakeAlignmentRepo serves alignment weights from a map keyed by target id
type fakeAlignmentRepo struct {
	weights map[string][]float64
	err     error
}

func (f *fakeAlignmentRepo) AlignmentWeights(_ context.Context, influenceTargetID string, _ []string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.weights[influenceTargetID], nil
}

// fakeRollupRepo serves the precomputed views, or a forced error to push
// callers onto the fallback path
type fakeRollupRepo struct {
	supporterRows []domain.SupporterJurisdictionRow
	tsRows        map[domain.PeriodType][]domain.TimeSeriesRollupRow
	err           error
}

func (f *fakeRollupRepo) SupportersByJurisdiction(_ context.Context, groupIDs []string) ([]domain.SupporterJurisdictionRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	inScope := map[string]struct{}{}
	for _, gid := range groupIDs {
		inScope[gid] = struct{}{}
	}
	var out []domain.SupporterJurisdictionRow
	for _, row := range f.supporterRows {
		if _, ok := inScope[row.ViewpointGroupID]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeRollupRepo) TimeSeries(_ context.Context, groupIDs []string, period domain.PeriodType) ([]domain.TimeSeriesRollupRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	inScope := map[string]struct{}{}
	for _, gid := range groupIDs {
		inScope[gid] = struct{}{}
	}
	var out []domain.TimeSeriesRollupRow
	for _, row := range f.tsRows[period] {
		if _, ok := inScope[row.ViewpointGroupID]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// fakeGroupRepo serves the group catalog
type fakeGroupRepo struct {
	groups []domain.ViewpointGroup
}

func (f *fakeGroupRepo) ListGroups(_ context.Context) ([]domain.ViewpointGroup, error) {
	return f.groups, nil
}

func (f *fakeGroupRepo) GroupByID(_ context.Context, id string) (*domain.ViewpointGroup, error) {
	for _, g := range f.groups {
		if g.ID == id {
			grp := g
			return &grp, nil
		}
	}
	return nil, nil
}

func strPtr(s string) *string { return &s }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
