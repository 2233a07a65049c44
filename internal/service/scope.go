package service

import (
	"context"
	"sync"

	"influence-api/internal/domain"
)

// networkResolver resolves a group's supporter network.
type networkResolver func(ctx context.Context, groupID string) ([]string, error)

// requestScope memoizes the expensive shared lookups of one dashboard
// request so concurrent fan-out sections resolve the network and the
// supporter map at most once. Scopes are never shared across requests and
// never cached.
type requestScope struct {
	groupID string
	resolve networkResolver

	mu         sync.Mutex
	networkIDs []string
	supporters map[string]*domain.JurisdictionSupporters
}

func (s *DashboardService) newScope(groupID string) *requestScope {
	if groupID == "" {
		groupID = s.rootGroupID
	}
	return &requestScope{groupID: groupID, resolve: s.resolveNetwork}
}

// network returns the scope's resolved network, resolving it on first use.
func (sc *requestScope) network(ctx context.Context) ([]string, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.networkIDs != nil {
		return sc.networkIDs, nil
	}
	ids, err := sc.resolve(ctx, sc.groupID)
	if err != nil {
		return nil, err
	}
	sc.networkIDs = ids
	return ids, nil
}

// supporterMap returns the scope's supporter-by-jurisdiction map, building
// it on first use.
func (sc *requestScope) supporterMap(ctx context.Context, jurisdictions *JurisdictionService) (map[string]*domain.JurisdictionSupporters, error) {
	ids, err := sc.network(ctx)
	if err != nil {
		return nil, err
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.supporters != nil {
		return sc.supporters, nil
	}
	supporters, err := jurisdictions.SupportersByJurisdiction(ctx, ids)
	if err != nil {
		return nil, err
	}
	sc.supporters = supporters
	return supporters, nil
}
