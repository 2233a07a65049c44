package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influence-api/internal/domain"
	"influence-api/pkg/logger"
)

func supportersFixture(counts map[string]int) map[string]*domain.JurisdictionSupporters {
	out := map[string]*domain.JurisdictionSupporters{}
	for jid, n := range counts {
		js := domain.NewJurisdictionSupporters()
		for i := 0; i < n; i++ {
			js.Add(jid+"-p"+string(rune('a'+i/26))+string(rune('a'+i%26)), day("2025-01-01"))
		}
		out[jid] = js
	}
	return out
}

func TestInfluenceScore(t *testing.T) {
	tests := []struct {
		name       string
		supporters int
		weight     float64
		want       float64
	}{
		{"no supporters no alignment", 0, 0, 0},
		{"supporters only", 2000, 0, 10},
		{"alignment only", 0, 1, 50},
		{"both halves", 2000, 0.8, 50},
		{"clamped at 100", 50000, 1, 100},
		{"negative weight clamps at zero", 0, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := influenceScore(tt.supporters, tt.weight)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestUpcomingElections(t *testing.T) {
	now := day("2025-03-01")
	elections := &fakeElectionRepo{
		elections: []domain.Election{
			{ID: "e1", Name: strPtr("Municipal General"), PollDate: day("2025-04-15")},
			{ID: "e2", Name: strPtr("Empty Ballot"), PollDate: day("2025-04-20")},
			{ID: "e3", Name: strPtr("Too Far Out"), PollDate: day("2025-09-01")},
		},
		ballotItems: map[string][]domain.BallotItemRow{
			"e1": {
				{ID: "b1", ElectionID: "e1", Title: strPtr("Council Seat 3"), JurisdictionID: "city", JurisdictionName: strPtr("Springfield")},
				{ID: "b2", ElectionID: "e1", Title: strPtr("Proposition A"), JurisdictionID: "city", JurisdictionName: strPtr("Springfield")},
			},
		},
		races: map[string]*domain.RaceRow{
			"b1": {ID: "r1", BallotItemID: "b1", InfluenceTargetID: strPtr("target1")},
		},
		measures: map[string]*domain.MeasureRow{
			"b2": {ID: "m1", BallotItemID: "b2", Title: strPtr("Proposition A")},
		},
	}
	alignments := &fakeAlignmentRepo{weights: map[string][]float64{
		"target1": {0.4, 0.9},
	}}
	svc := NewElectionService(elections, alignments, logger.NewNop())

	supporters := supportersFixture(map[string]int{"city": 600})
	result, err := svc.UpcomingElections(context.Background(), 90, []string{"root"}, supporters, now)
	require.NoError(t, err)
	require.Len(t, result, 1, "elections without ballot items and outside the window are excluded")

	el := result[0]
	assert.Equal(t, "e1", el.ElectionID)
	assert.Equal(t, "2025-04-15", el.PollDate)
	assert.Equal(t, 600, el.SupportersInScope, "one distinct jurisdiction, counted once")
	require.NotNil(t, el.SupporterShareInScope)
	assert.InDelta(t, 6.0, *el.SupporterShareInScope, 1e-9, "600 of 10000")
	assert.Equal(t, 2, el.BallotItemsCount)
	assert.Equal(t, 1, el.RacesCount)
	assert.Equal(t, 1, el.MeasuresCount)

	require.Len(t, el.BallotItems, 2)
	race := el.BallotItems[0]
	assert.Equal(t, domain.BallotItemRace, race.Type)
	require.NotNil(t, race.Race)
	assert.Nil(t, race.Measure)
	// share 600/10000 * 50 + mean weight 0.65 * 50
	assert.InDelta(t, 3+32.5, race.InfluenceScore, 1e-9)

	measure := el.BallotItems[1]
	assert.Equal(t, domain.BallotItemMeasure, measure.Type)
	require.NotNil(t, measure.Measure)
	assert.Nil(t, measure.Race)
	assert.InDelta(t, 3, measure.InfluenceScore, 1e-9, "no influence target, alignment half is zero")

	assert.Equal(t, 0, el.InfluenceTargetCount, "no item scores above the threshold")
}

func TestUpcomingElectionsScoresPerJurisdiction(t *testing.T) {
	elections := &fakeElectionRepo{
		elections: []domain.Election{
			{ID: "e1", PollDate: day("2025-04-15")},
		},
		ballotItems: map[string][]domain.BallotItemRow{
			"e1": {
				{ID: "b1", ElectionID: "e1", Title: strPtr("Mayor"), JurisdictionID: "city", JurisdictionName: strPtr("Springfield")},
				{ID: "b2", ElectionID: "e1", Title: strPtr("Clerk"), JurisdictionID: "county", JurisdictionName: strPtr("Sangamon County")},
			},
		},
		races: map[string]*domain.RaceRow{
			"b1": {ID: "r1", BallotItemID: "b1"},
			"b2": {ID: "r2", BallotItemID: "b2"},
		},
	}
	svc := NewElectionService(elections, &fakeAlignmentRepo{}, logger.NewNop())

	supporters := supportersFixture(map[string]int{"city": 3000, "county": 1000})
	result, err := svc.UpcomingElections(context.Background(), 90, []string{"root"}, supporters, day("2025-03-01"))
	require.NoError(t, err)
	require.Len(t, result, 1)

	el := result[0]
	assert.Equal(t, 4000, el.SupportersInScope, "the election total still spans both jurisdictions")
	require.Len(t, el.BallotItems, 2)
	assert.InDelta(t, 15.0, el.BallotItems[0].InfluenceScore, 1e-9, "3000/10000 of the city electorate")
	assert.InDelta(t, 5.0, el.BallotItems[1].InfluenceScore, 1e-9, "county item scores against the county count, not the election total")
}

func TestUpcomingElectionsUnclassifiedBallotItem(t *testing.T) {
	elections := &fakeElectionRepo{
		elections: []domain.Election{
			{ID: "e1", PollDate: day("2025-03-20")},
		},
		ballotItems: map[string][]domain.BallotItemRow{
			"e1": {
				{ID: "b1", ElectionID: "e1", JurisdictionID: "city"},
			},
		},
	}
	svc := NewElectionService(elections, &fakeAlignmentRepo{}, logger.NewNop())

	result, err := svc.UpcomingElections(context.Background(), 90, []string{"root"}, nil, day("2025-03-01"))
	require.NoError(t, err)
	require.Len(t, result, 1)

	el := result[0]
	require.Len(t, el.BallotItems, 1)
	item := el.BallotItems[0]
	assert.Equal(t, domain.BallotItemUnclassified, item.Type, "neither race nor measure is surfaced, not defaulted")
	assert.Nil(t, item.Race)
	assert.Nil(t, item.Measure)
	assert.Zero(t, item.InfluenceScore)
	assert.Equal(t, 0, el.RacesCount)
	assert.Equal(t, 0, el.MeasuresCount)
	assert.Equal(t, 1, el.BallotItemsCount, "the item still counts toward the ballot total")
}

func TestUpcomingElectionsHighInfluenceCount(t *testing.T) {
	elections := &fakeElectionRepo{
		elections: []domain.Election{{ID: "e1", PollDate: day("2025-03-20")}},
		ballotItems: map[string][]domain.BallotItemRow{
			"e1": {
				{ID: "b1", ElectionID: "e1", JurisdictionID: "city"},
				{ID: "b2", ElectionID: "e1", JurisdictionID: "city"},
			},
		},
		races: map[string]*domain.RaceRow{
			"b1": {ID: "r1", BallotItemID: "b1", InfluenceTargetID: strPtr("strong")},
			"b2": {ID: "r2", BallotItemID: "b2", InfluenceTargetID: strPtr("weak")},
		},
	}
	alignments := &fakeAlignmentRepo{weights: map[string][]float64{
		"strong": {1.0}, // 50 from alignment + supporter half pushes past 50
		"weak":   {0.1},
	}}
	svc := NewElectionService(elections, alignments, logger.NewNop())

	supporters := supportersFixture(map[string]int{"city": 400})
	result, err := svc.UpcomingElections(context.Background(), 90, []string{"root"}, supporters, day("2025-03-01"))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 1, result[0].InfluenceTargetCount, "only scores strictly above 50 count")
}

func TestElectionDetail(t *testing.T) {
	elections := &fakeElectionRepo{
		elections: []domain.Election{
			{ID: "e1", Name: strPtr("Municipal General"), PollDate: day("2025-04-15")},
		},
		ballotItems: map[string][]domain.BallotItemRow{
			"e1": {
				{ID: "b1", ElectionID: "e1", Title: strPtr("Mayor"), JurisdictionID: "city", JurisdictionName: strPtr("Springfield")},
				{ID: "b2", ElectionID: "e1", Title: strPtr("Council Seat"), JurisdictionID: "city", JurisdictionName: strPtr("Springfield")},
				{ID: "b3", ElectionID: "e1", Title: strPtr("Clerk"), JurisdictionID: "county", JurisdictionName: strPtr("Sangamon County")},
				{ID: "b4", ElectionID: "e1", Title: strPtr("Judge"), JurisdictionID: "city", JurisdictionName: strPtr("Springfield")},
				{ID: "b5", ElectionID: "e1", Title: strPtr("Proposition B"), JurisdictionID: "city", JurisdictionName: strPtr("Springfield")},
			},
		},
		races: map[string]*domain.RaceRow{
			"b1": {ID: "r1", BallotItemID: "b1", OfficeTermID: strPtr("ot1"), InfluenceTargetID: strPtr("t-high")},
			"b2": {ID: "r2", BallotItemID: "b2", InfluenceTargetID: strPtr("t-mid")},
			"b3": {ID: "r3", BallotItemID: "b3"},
			"b4": {ID: "r4", BallotItemID: "b4", InfluenceTargetID: strPtr("t-low")},
		},
		measures: map[string]*domain.MeasureRow{
			"b5": {ID: "m1", BallotItemID: "b5", Title: strPtr("Proposition B")},
		},
		officeTerms: map[string]*domain.OfficeTerm{
			"ot1": {ID: "ot1", OfficeName: strPtr("Mayor"), OfficeLevel: strPtr("city")},
		},
		candidates: map[string][]domain.Candidate{
			"r1": {
				{CandidacyID: "c1", CandidateID: "cand1", CandidateName: strPtr("Alex Moore")},
				{CandidacyID: "c2", CandidateID: "cand2", CandidateName: strPtr("Sam Osei"), IsWithdrawn: boolPtr(true)},
			},
		},
	}
	alignments := &fakeAlignmentRepo{weights: map[string][]float64{
		"t-high": {0.9},
		"t-mid":  {0.5},
		"t-low":  {0.1},
	}}
	svc := NewElectionService(elections, alignments, logger.NewNop())

	supporters := supportersFixture(map[string]int{"city": 300, "county": 100})
	detail, err := svc.ElectionDetail(context.Background(), "e1", []string{"root"}, supporters)
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Equal(t, "Municipal General", detail.Name)
	assert.Equal(t, 400, detail.Summary.SupportersInScope)
	require.NotNil(t, detail.Summary.SupporterShareInScope)
	assert.InDelta(t, 2.0, *detail.Summary.SupporterShareInScope, 1e-9, "400 of 2x10000")
	assert.Equal(t, 5, detail.Summary.TotalBallotItems)
	assert.Equal(t, 4, detail.Summary.RacesCount)
	assert.Equal(t, 1, detail.Summary.MeasuresCount)

	// Top races are capped at three and ordered by score
	require.Len(t, detail.TopRaces, 3)
	assert.Equal(t, "b1", detail.TopRaces[0].BallotItemID)
	assert.Equal(t, "b2", detail.TopRaces[1].BallotItemID)
	for _, tr := range detail.TopRaces {
		assert.Equal(t, domain.BallotItemRace, tr.Type)
	}

	// Breakdown keeps one row per jurisdiction, supporter count descending
	require.Len(t, detail.JurisdictionBreakdown, 2)
	assert.Equal(t, "city", detail.JurisdictionBreakdown[0].JurisdictionID)
	assert.Equal(t, 300, detail.JurisdictionBreakdown[0].SupporterCount)
	assert.Equal(t, "county", detail.JurisdictionBreakdown[1].JurisdictionID)

	// Office and candidate roster ride along, withdrawn candidates included
	mayor := detail.BallotItems[0]
	require.NotNil(t, mayor.Race)
	assert.Equal(t, strPtr("Mayor"), mayor.Race.OfficeName)
	assert.Len(t, mayor.Race.Candidates, 2)
}

func TestElectionDetailMissingElection(t *testing.T) {
	svc := NewElectionService(&fakeElectionRepo{}, &fakeAlignmentRepo{}, logger.NewNop())

	detail, err := svc.ElectionDetail(context.Background(), "absent", []string{"root"}, nil)
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestUpcomingElectionsSkipsFailedBallotLookup(t *testing.T) {
	elections := &fakeElectionRepo{
		elections: []domain.Election{
			{ID: "e1", PollDate: day("2025-03-20")},
			{ID: "e2", PollDate: day("2025-03-25")},
		},
		ballotItems: map[string][]domain.BallotItemRow{
			"e2": {{ID: "b1", ElectionID: "e2", JurisdictionID: "city"}},
		},
		ballotErrs: map[string]error{"e1": assert.AnError},
		measures: map[string]*domain.MeasureRow{
			"b1": {ID: "m1", BallotItemID: "b1"},
		},
	}
	svc := NewElectionService(elections, &fakeAlignmentRepo{}, logger.NewNop())

	result, err := svc.UpcomingElections(context.Background(), 90, []string{"root"}, nil, day("2025-03-01"))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "e2", result[0].ElectionID, "the failing election is skipped, not fatal")
}

func boolPtr(b bool) *bool { return &b }
