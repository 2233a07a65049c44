package service

import (
	"context"
	"sort"
	"time"

	"influence-api/internal/domain"
	"influence-api/internal/repository"
	"influence-api/pkg/logger"
)

// largeNetworkThreshold is the network size above which the exact
// merge (dedupe every supporter relation, then bucket) is traded for the
// approximate rollup merge.
const largeNetworkThreshold = 250

// TimeSeriesService produces supporter growth series bucketed by day, ISO
// week or month.
type TimeSeriesService struct {
	relations repository.RelationRepository
	rollups   repository.RollupRepository
	log       *logger.Logger
}

func NewTimeSeriesService(relations repository.RelationRepository, rollups repository.RollupRepository, log *logger.Logger) *TimeSeriesService {
	return &TimeSeriesService{
		relations: relations,
		rollups:   rollups,
		log:       log,
	}
}

// GrowthSeries returns one point per non-empty period, ordered by period
// end date. Supporters joining several groups in the network count once, at
// their earliest acquisition, so the cumulative column is the running sum
// of the new column. Single-group networks are served from the rollup when
// it has data; networks above largeNetworkThreshold use the approximate
// rollup merge.
func (s *TimeSeriesService) GrowthSeries(ctx context.Context, period domain.PeriodType, networkIDs []string) ([]domain.TimeSeriesPoint, error) {
	if len(networkIDs) == 0 {
		return []domain.TimeSeriesPoint{}, nil
	}
	if len(networkIDs) == 1 {
		rows, err := s.rollups.TimeSeries(ctx, networkIDs, period)
		if err != nil {
			s.log.WithError(err).Warn("time series rollup unavailable, falling back to raw relations")
		} else if len(rows) > 0 {
			return rollupPoints(rows), nil
		}
	}
	if len(networkIDs) > largeNetworkThreshold {
		return s.approximateGrowthSeries(ctx, period, networkIDs)
	}
	return s.exactGrowthSeries(ctx, period, networkIDs)
}

// exactGrowthSeries buckets raw supporter relations after deduplicating by
// profile, keeping the earliest acquisition.
func (s *TimeSeriesService) exactGrowthSeries(ctx context.Context, period domain.PeriodType, networkIDs []string) ([]domain.TimeSeriesPoint, error) {
	relations, err := s.relations.SupporterRelations(ctx, networkIDs)
	if err != nil {
		return nil, err
	}
	if len(relations) == 0 {
		return []domain.TimeSeriesPoint{}, nil
	}

	acquiredAt := make(map[string]time.Time, len(relations))
	for _, rel := range relations {
		if at, ok := acquiredAt[rel.ProfileID]; !ok || rel.CreatedAt.Before(at) {
			acquiredAt[rel.ProfileID] = rel.CreatedAt
		}
	}

	type bucket struct {
		end   time.Time
		added int
	}
	buckets := make(map[string]*bucket)
	events := make([]time.Time, 0, len(acquiredAt))
	for _, at := range acquiredAt {
		events = append(events, at)
		key := periodKey(at, period)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{end: periodEnd(at, period)}
			buckets[key] = b
		}
		b.added++
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, k int) bool {
		return buckets[keys[i]].end.Before(buckets[keys[k]].end)
	})

	points := make([]domain.TimeSeriesPoint, 0, len(keys))
	cumulative := 0
	for _, key := range keys {
		b := buckets[key]
		cumulative += b.added
		active := 0
		for _, ev := range events {
			if inActiveWindow(ev, b.end) {
				active++
			}
		}
		points = append(points, domain.TimeSeriesPoint{
			Date:                 b.end.Format("2006-01-02"),
			Period:               key,
			NewSupporters:        b.added,
			CumulativeSupporters: cumulative,
			ActiveSupporters:     active,
		})
	}
	return points, nil
}

// approximateGrowthSeries merges per-group rollup rows by summing new
// counts and taking the max of cumulative and active counts per period. A
// supporter in several groups is counted once per group, so new overcounts
// while cumulative and active undercount; this is a performance fallback
// for very large networks, not the reference semantics.
func (s *TimeSeriesService) approximateGrowthSeries(ctx context.Context, period domain.PeriodType, networkIDs []string) ([]domain.TimeSeriesPoint, error) {
	rows, err := s.rollups.TimeSeries(ctx, networkIDs, period)
	if err != nil {
		s.log.WithError(err).Warn("time series rollup unavailable, falling back to raw relations")
		return s.exactGrowthSeries(ctx, period, networkIDs)
	}

	merged := make(map[string]*domain.TimeSeriesPoint)
	for _, row := range rows {
		p, ok := merged[row.Period]
		if !ok {
			merged[row.Period] = &domain.TimeSeriesPoint{
				Date:                 row.Date.Format("2006-01-02"),
				Period:               row.Period,
				NewSupporters:        row.NewSupporters,
				CumulativeSupporters: row.CumulativeSupporters,
				ActiveSupporters:     row.ActiveSupporters,
			}
			continue
		}
		p.NewSupporters += row.NewSupporters
		if row.CumulativeSupporters > p.CumulativeSupporters {
			p.CumulativeSupporters = row.CumulativeSupporters
		}
		if row.ActiveSupporters > p.ActiveSupporters {
			p.ActiveSupporters = row.ActiveSupporters
		}
	}

	points := make([]domain.TimeSeriesPoint, 0, len(merged))
	for _, p := range merged {
		points = append(points, *p)
	}
	// YYYY-MM-DD sorts lexicographically
	sort.Slice(points, func(i, k int) bool {
		return points[i].Date < points[k].Date
	})
	return points, nil
}

func rollupPoints(rows []domain.TimeSeriesRollupRow) []domain.TimeSeriesPoint {
	points := make([]domain.TimeSeriesPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, domain.TimeSeriesPoint{
			Date:                 row.Date.Format("2006-01-02"),
			Period:               row.Period,
			NewSupporters:        row.NewSupporters,
			CumulativeSupporters: row.CumulativeSupporters,
			ActiveSupporters:     row.ActiveSupporters,
		})
	}
	return points
}

// TotalSupporterCount counts supporter relations across the network.
func (s *TimeSeriesService) TotalSupporterCount(ctx context.Context, networkIDs []string) (int, error) {
	return s.relations.CountSupporters(ctx, networkIDs)
}

// ActiveSupporterCount counts supporter relations created inside the
// trailing 30-day window.
func (s *TimeSeriesService) ActiveSupporterCount(ctx context.Context, networkIDs []string, now time.Time) (int, error) {
	since := dateOnly(now).AddDate(0, 0, -activeWindowDays)
	return s.relations.CountSupportersSince(ctx, networkIDs, since)
}
