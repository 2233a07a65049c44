package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influence-api/internal/domain"
	"influence-api/pkg/logger"
)

func TestGrowthSeriesBucketsAndAccumulates(t *testing.T) {
	relations := &fakeRelationRepo{
		relations: []domain.SupporterRelation{
			{ProfileID: "p1", ViewpointGroupID: "root", CreatedAt: day("2025-01-05")},
			{ProfileID: "p2", ViewpointGroupID: "root", CreatedAt: day("2025-01-20")},
			{ProfileID: "p3", ViewpointGroupID: "root", CreatedAt: day("2025-02-10")},
			{ProfileID: "p4", ViewpointGroupID: "sub", CreatedAt: day("2025-04-01")},
		},
	}
	svc := NewTimeSeriesService(relations, &fakeRollupRepo{}, logger.NewNop())

	points, err := svc.GrowthSeries(context.Background(), domain.PeriodMonthly, []string{"root", "sub"})
	require.NoError(t, err)
	require.Len(t, points, 3, "empty periods are omitted")

	assert.Equal(t, "2025-01", points[0].Period)
	assert.Equal(t, 2, points[0].NewSupporters)
	assert.Equal(t, 2, points[0].CumulativeSupporters)
	assert.Equal(t, "2025-01-31", points[0].Date)

	assert.Equal(t, "2025-02", points[1].Period)
	assert.Equal(t, 1, points[1].NewSupporters)
	assert.Equal(t, 3, points[1].CumulativeSupporters)

	assert.Equal(t, "2025-04", points[2].Period)
	assert.Equal(t, 1, points[2].NewSupporters)
	assert.Equal(t, 4, points[2].CumulativeSupporters)
}

func TestGrowthSeriesDeduplicatesAcrossGroups(t *testing.T) {
	// p1 joined root in January and sub in March; only the earliest counts
	relations := &fakeRelationRepo{
		relations: []domain.SupporterRelation{
			{ProfileID: "p1", ViewpointGroupID: "root", CreatedAt: day("2025-01-05")},
			{ProfileID: "p1", ViewpointGroupID: "sub", CreatedAt: day("2025-03-05")},
			{ProfileID: "p2", ViewpointGroupID: "sub", CreatedAt: day("2025-03-10")},
		},
	}
	svc := NewTimeSeriesService(relations, &fakeRollupRepo{}, logger.NewNop())

	points, err := svc.GrowthSeries(context.Background(), domain.PeriodMonthly, []string{"root", "sub"})
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2025-01", points[0].Period)
	assert.Equal(t, 1, points[0].NewSupporters)
	assert.Equal(t, "2025-03", points[1].Period)
	assert.Equal(t, 1, points[1].NewSupporters, "p1's later relation does not create a second event")

	// Cumulative equals the running sum of new across the whole series
	running := 0
	for _, p := range points {
		running += p.NewSupporters
		assert.Equal(t, running, p.CumulativeSupporters)
	}
}

func TestGrowthSeriesActiveWindow(t *testing.T) {
	relations := &fakeRelationRepo{
		relations: []domain.SupporterRelation{
			// Exactly 30 days before the January period end
			{ProfileID: "p1", ViewpointGroupID: "root", CreatedAt: day("2025-01-01")},
			// 31 days before the March period end, outside its window
			{ProfileID: "p2", ViewpointGroupID: "root", CreatedAt: day("2025-02-28")},
			{ProfileID: "p3", ViewpointGroupID: "root", CreatedAt: day("2025-03-15")},
		},
	}
	svc := NewTimeSeriesService(relations, &fakeRollupRepo{}, logger.NewNop())

	points, err := svc.GrowthSeries(context.Background(), domain.PeriodMonthly, []string{"root"})
	require.NoError(t, err)
	require.Len(t, points, 3)

	jan := points[0]
	assert.Equal(t, "2025-01", jan.Period)
	assert.Equal(t, 1, jan.ActiveSupporters, "acquisition 30 days before the period end is active")

	mar := points[2]
	assert.Equal(t, "2025-03", mar.Period)
	assert.Equal(t, 1, mar.ActiveSupporters, "2025-02-28 is 31 days before 2025-03-31 and not active")
}

func TestGrowthSeriesSingleGroupPrefersRollup(t *testing.T) {
	rollups := &fakeRollupRepo{
		tsRows: map[domain.PeriodType][]domain.TimeSeriesRollupRow{
			domain.PeriodMonthly: {
				{ViewpointGroupID: "root", PeriodType: domain.PeriodMonthly, Period: "2025-01",
					Date: day("2025-01-31"), NewSupporters: 5, CumulativeSupporters: 5, ActiveSupporters: 5},
			},
		},
	}
	// Raw relations disagree on purpose so the source of the result is visible
	relations := &fakeRelationRepo{
		relations: []domain.SupporterRelation{
			{ProfileID: "p1", ViewpointGroupID: "root", CreatedAt: day("2025-01-05")},
		},
	}
	svc := NewTimeSeriesService(relations, rollups, logger.NewNop())

	points, err := svc.GrowthSeries(context.Background(), domain.PeriodMonthly, []string{"root"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 5, points[0].NewSupporters, "single-group networks are served from the rollup")
}

func TestGrowthSeriesFallsBackWhenRollupEmptyOrBroken(t *testing.T) {
	relations := &fakeRelationRepo{
		relations: []domain.SupporterRelation{
			{ProfileID: "p1", ViewpointGroupID: "root", CreatedAt: day("2025-01-05")},
		},
	}

	svc := NewTimeSeriesService(relations, &fakeRollupRepo{}, logger.NewNop())
	points, err := svc.GrowthSeries(context.Background(), domain.PeriodMonthly, []string{"root"})
	require.NoError(t, err)
	require.Len(t, points, 1, "empty rollup falls back to raw relations")

	svc = NewTimeSeriesService(relations, &fakeRollupRepo{err: errors.New("rollup down")}, logger.NewNop())
	points, err = svc.GrowthSeries(context.Background(), domain.PeriodMonthly, []string{"root"})
	require.NoError(t, err)
	require.Len(t, points, 1, "broken rollup falls back to raw relations")
}

func TestApproximateGrowthSeriesMerge(t *testing.T) {
	rollups := &fakeRollupRepo{
		tsRows: map[domain.PeriodType][]domain.TimeSeriesRollupRow{
			domain.PeriodMonthly: {
				{ViewpointGroupID: "g1", PeriodType: domain.PeriodMonthly, Period: "2025-01",
					Date: day("2025-01-31"), NewSupporters: 3, CumulativeSupporters: 3, ActiveSupporters: 3},
				{ViewpointGroupID: "g2", PeriodType: domain.PeriodMonthly, Period: "2025-01",
					Date: day("2025-01-31"), NewSupporters: 2, CumulativeSupporters: 2, ActiveSupporters: 4},
				{ViewpointGroupID: "g1", PeriodType: domain.PeriodMonthly, Period: "2025-02",
					Date: day("2025-02-28"), NewSupporters: 1, CumulativeSupporters: 4, ActiveSupporters: 2},
			},
		},
	}
	svc := NewTimeSeriesService(&fakeRelationRepo{}, rollups, logger.NewNop())

	points, err := svc.approximateGrowthSeries(context.Background(), domain.PeriodMonthly, []string{"g1", "g2"})
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, 5, points[0].NewSupporters, "new counts are summed")
	assert.Equal(t, 3, points[0].CumulativeSupporters, "cumulative takes the per-group max")
	assert.Equal(t, 4, points[0].ActiveSupporters, "active counts take the per-group max")
	assert.Equal(t, "2025-02", points[1].Period)
}

func TestSupporterCounts(t *testing.T) {
	relations := &fakeRelationRepo{
		relations: []domain.SupporterRelation{
			{ProfileID: "p1", ViewpointGroupID: "root", CreatedAt: day("2025-01-05")},
			{ProfileID: "p2", ViewpointGroupID: "root", CreatedAt: day("2025-03-05")},
			{ProfileID: "p3", ViewpointGroupID: "sub", CreatedAt: day("2025-03-08")},
		},
	}
	svc := NewTimeSeriesService(relations, &fakeRollupRepo{}, logger.NewNop())

	total, err := svc.TotalSupporterCount(context.Background(), []string{"root", "sub"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	active, err := svc.ActiveSupporterCount(context.Background(), []string{"root", "sub"}, day("2025-03-10"))
	require.NoError(t, err)
	assert.Equal(t, 2, active)
}
