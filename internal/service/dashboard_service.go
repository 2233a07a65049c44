package service

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	"influence-api/internal/domain"
	"influence-api/pkg/logger"
	"influence-api/pkg/redis"
)

// DashboardService is the consumer surface of the analytics core. Every
// method resolves the group's network once per request, shares the
// supporter map across its fan-out sections, and serves from the cache
// when a fresh entry exists.
type DashboardService struct {
	network       *NetworkService
	jurisdictions *JurisdictionService
	elections     *ElectionService
	timeseries    *TimeSeriesService
	groups        *GroupService
	cache         *redis.Client
	log           *logger.Logger
	rootGroupID   string
	now           func() time.Time
}

func NewDashboardService(
	network *NetworkService,
	jurisdictions *JurisdictionService,
	elections *ElectionService,
	timeseries *TimeSeriesService,
	groups *GroupService,
	cache *redis.Client,
	log *logger.Logger,
	rootGroupID string,
) *DashboardService {
	return &DashboardService{
		network:       network,
		jurisdictions: jurisdictions,
		elections:     elections,
		timeseries:    timeseries,
		groups:        groups,
		cache:         cache,
		log:           log,
		rootGroupID:   rootGroupID,
		now:           time.Now,
	}
}

// Summary composes the headline dashboard metrics, fanning out the count,
// jurisdiction and election aggregates concurrently over one shared scope.
func (s *DashboardService) Summary(ctx context.Context, groupID string) (*domain.SummaryMetrics, error) {
	sc := s.newScope(groupID)
	return fetchCached(ctx, s, s.cacheKey().KeySummary(sc.groupID), redis.TTLSummary, func(ctx context.Context) (*domain.SummaryMetrics, error) {
		networkIDs, err := sc.network(ctx)
		if err != nil {
			return nil, err
		}

		var (
			total         int
			active        int
			jurisdictions []domain.JurisdictionInfluence
			elections     []domain.ElectionInfluence
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			total, err = s.timeseries.TotalSupporterCount(gctx, networkIDs)
			return err
		})
		g.Go(func() error {
			var err error
			active, err = s.timeseries.ActiveSupporterCount(gctx, networkIDs, s.now())
			return err
		})
		g.Go(func() error {
			supporters, err := sc.supporterMap(gctx, s.jurisdictions)
			if err != nil {
				return err
			}
			jurisdictions, err = s.jurisdictions.JurisdictionsWithInfluence(gctx, supporters, s.now())
			return err
		})
		g.Go(func() error {
			supporters, err := sc.supporterMap(gctx, s.jurisdictions)
			if err != nil {
				return err
			}
			elections, err = s.elections.UpcomingElections(gctx, defaultElectionWindowDays, networkIDs, supporters, s.now())
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		summary := &domain.SummaryMetrics{
			TotalSupporters:  total,
			ActiveSupporters: active,
			TopJurisdiction:  topJurisdiction(jurisdictions),
		}
		if total > 0 {
			summary.ActiveRate = float64(active) / float64(total) * 100
		}
		for _, el := range elections {
			summary.TotalBallotItems += el.BallotItemsCount
			if el.SupporterShareInScope != nil && *el.SupporterShareInScope >= highLeverageShareThreshold {
				summary.HighLeverageElectionsCount++
			}
		}
		return summary, nil
	})
}

// UpcomingElections returns the influence-decorated elections inside the
// lookahead window. daysAhead of zero or less uses the default window.
func (s *DashboardService) UpcomingElections(ctx context.Context, groupID string, daysAhead int) ([]domain.ElectionInfluence, error) {
	if daysAhead <= 0 {
		daysAhead = defaultElectionWindowDays
	}
	sc := s.newScope(groupID)
	return fetchCached(ctx, s, s.cacheKey().KeyElections(sc.groupID, daysAhead), redis.TTLElections, func(ctx context.Context) ([]domain.ElectionInfluence, error) {
		networkIDs, err := sc.network(ctx)
		if err != nil {
			return nil, err
		}
		supporters, err := sc.supporterMap(ctx, s.jurisdictions)
		if err != nil {
			return nil, err
		}
		return s.elections.UpcomingElections(ctx, daysAhead, networkIDs, supporters, s.now())
	})
}

// ElectionDetail returns the drill-down for one election, nil when the
// election does not exist. Missing elections are not cached.
func (s *DashboardService) ElectionDetail(ctx context.Context, electionID, groupID string) (*domain.ElectionDetail, error) {
	sc := s.newScope(groupID)
	key := s.cacheKey().KeyElectionDetail(electionID, sc.groupID)
	if raw, err := s.cacheGet(ctx, key); raw != "" && err == nil {
		var detail domain.ElectionDetail
		if err := json.Unmarshal([]byte(raw), &detail); err == nil {
			return &detail, nil
		}
	}

	networkIDs, err := sc.network(ctx)
	if err != nil {
		return nil, err
	}
	supporters, err := sc.supporterMap(ctx, s.jurisdictions)
	if err != nil {
		return nil, err
	}
	detail, err := s.elections.ElectionDetail(ctx, electionID, networkIDs, supporters)
	if err != nil || detail == nil {
		return detail, err
	}
	s.cacheSetAsync(key, detail, redis.TTLElectionDetail)
	return detail, nil
}

// JurisdictionInfluence returns the per-jurisdiction dashboard rows in the
// canonical order, supporter count descending.
func (s *DashboardService) JurisdictionInfluence(ctx context.Context, groupID string) ([]domain.JurisdictionInfluence, error) {
	sc := s.newScope(groupID)
	return fetchCached(ctx, s, s.cacheKey().KeyJurisdictions(sc.groupID), redis.TTLJurisdictions, func(ctx context.Context) ([]domain.JurisdictionInfluence, error) {
		supporters, err := sc.supporterMap(ctx, s.jurisdictions)
		if err != nil {
			return nil, err
		}
		return s.jurisdictions.JurisdictionsWithInfluence(ctx, supporters, s.now())
	})
}

// GrowthSeries returns the supporter growth series for the given period
// granularity.
func (s *DashboardService) GrowthSeries(ctx context.Context, groupID string, period domain.PeriodType) ([]domain.TimeSeriesPoint, error) {
	sc := s.newScope(groupID)
	return fetchCached(ctx, s, s.cacheKey().KeyTimeSeries(string(period), sc.groupID), redis.TTLTimeSeries, func(ctx context.Context) ([]domain.TimeSeriesPoint, error) {
		networkIDs, err := sc.network(ctx)
		if err != nil {
			return nil, err
		}
		return s.timeseries.GrowthSeries(ctx, period, networkIDs)
	})
}

// StateDistribution returns the supporter distribution across US states.
func (s *DashboardService) StateDistribution(ctx context.Context, groupID string) ([]domain.StateDistribution, error) {
	sc := s.newScope(groupID)
	return fetchCached(ctx, s, s.cacheKey().KeyStates(sc.groupID), redis.TTLStates, func(ctx context.Context) ([]domain.StateDistribution, error) {
		networkIDs, err := sc.network(ctx)
		if err != nil {
			return nil, err
		}
		return s.jurisdictions.StateDistribution(ctx, networkIDs)
	})
}

// SupporterCounts returns the lightweight total/active counts.
func (s *DashboardService) SupporterCounts(ctx context.Context, groupID string) (*domain.SupporterCounts, error) {
	sc := s.newScope(groupID)
	return fetchCached(ctx, s, s.cacheKey().KeyCounts(sc.groupID), redis.TTLCounts, func(ctx context.Context) (*domain.SupporterCounts, error) {
		networkIDs, err := sc.network(ctx)
		if err != nil {
			return nil, err
		}

		var total, active int
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			total, err = s.timeseries.TotalSupporterCount(gctx, networkIDs)
			return err
		})
		g.Go(func() error {
			var err error
			active, err = s.timeseries.ActiveSupporterCount(gctx, networkIDs, s.now())
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		counts := &domain.SupporterCounts{TotalSupporters: total, ActiveSupporters: active}
		if total > 0 {
			counts.ActiveRate = float64(active) / float64(total) * 100
		}
		return counts, nil
	})
}

// ListGroups returns the viewpoint group catalog.
func (s *DashboardService) ListGroups(ctx context.Context) ([]domain.ViewpointGroup, error) {
	return fetchCached(ctx, s, s.cacheKey().KeyGroups(), redis.TTLGroups, func(ctx context.Context) ([]domain.ViewpointGroup, error) {
		return s.groups.ListGroups(ctx)
	})
}

// GroupByID returns one group, nil when absent.
func (s *DashboardService) GroupByID(ctx context.Context, id string) (*domain.ViewpointGroup, error) {
	return s.groups.GroupByID(ctx, id)
}

func topJurisdiction(rows []domain.JurisdictionInfluence) *domain.TopJurisdiction {
	var top *domain.JurisdictionInfluence
	for i := range rows {
		if rows[i].SupporterShare == nil {
			continue
		}
		if top == nil || *rows[i].SupporterShare > *top.SupporterShare {
			top = &rows[i]
		}
	}
	if top == nil {
		return nil
	}
	return &domain.TopJurisdiction{
		JurisdictionID: top.JurisdictionID,
		Name:           top.Name,
		SupporterCount: top.SupporterCount,
		SupporterShare: top.SupporterShare,
	}
}

// resolveNetwork resolves a group's one-hop network, serving a cached copy
// when one is fresh. The short TTL keeps consecutive dashboard surfaces on
// one network snapshot without re-walking the relations.
func (s *DashboardService) resolveNetwork(ctx context.Context, groupID string) ([]string, error) {
	return fetchCached(ctx, s, s.cacheKey().KeyNetwork(groupID), redis.TTLNetwork, func(ctx context.Context) ([]string, error) {
		return s.network.ResolveNetwork(ctx, groupID)
	})
}

func (s *DashboardService) cacheKey() *redis.KeyBuilder {
	if s.cache == nil {
		return redis.NewKeyBuilder("test")
	}
	return s.cache.KeyBuilder
}

func (s *DashboardService) cacheGet(ctx context.Context, key string) (string, error) {
	if s.cache == nil {
		return "", nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsNil(err) {
			s.log.WithError(err).WithField("key", key).Debug("cache read failed")
		}
		return "", err
	}
	return raw, nil
}

// cacheSetAsync writes the entry off the request path; cache write failures
// only surface in logs.
func (s *DashboardService) cacheSetAsync(key string, value interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache marshal failed")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.cache.Set(ctx, key, data, ttl)
	}()
}

// fetchCached is the cache-aside read path: serve a fresh entry when one
// decodes, otherwise compute and write back asynchronously.
func fetchCached[T any](ctx context.Context, s *DashboardService, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	if raw, err := s.cacheGet(ctx, key); raw != "" && err == nil {
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v, nil
		}
		s.log.WithField("key", key).Warn("discarding undecodable cache entry")
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	s.cacheSetAsync(key, v, ttl)
	return v, nil
}
