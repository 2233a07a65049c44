package service

import (
	"context"
	"sort"

	"influence-api/internal/repository"
	"influence-api/pkg/logger"
)

// NetworkService resolves the one-hop network of a viewpoint group: the
// group itself plus every group led by one of its supporters.
type NetworkService struct {
	relations repository.RelationRepository
	log       *logger.Logger
}

func NewNetworkService(relations repository.RelationRepository, log *logger.Logger) *NetworkService {
	return &NetworkService{
		relations: relations,
		log:       log,
	}
}

// ResolveNetwork returns the root group ID followed by the IDs of its
// sub-groups in ascending order. The root is always present, even when it
// has no supporters or the supporter lookup fails; lookup failures are
// logged and degrade to the root-only network rather than erroring the
// request.
func (s *NetworkService) ResolveNetwork(ctx context.Context, rootGroupID string) ([]string, error) {
	supporterIDs, err := s.relations.SupporterProfileIDs(ctx, rootGroupID)
	if err != nil {
		s.log.WithError(err).WithField("group_id", rootGroupID).
			Warn("supporter lookup failed, using root-only network")
		return []string{rootGroupID}, nil
	}
	if len(supporterIDs) == 0 {
		return []string{rootGroupID}, nil
	}

	subGroupIDs, err := s.relations.LeaderGroupIDs(ctx, supporterIDs, rootGroupID)
	if err != nil {
		s.log.WithError(err).WithField("group_id", rootGroupID).
			Warn("sub-group lookup failed, using root-only network")
		return []string{rootGroupID}, nil
	}

	seen := map[string]struct{}{rootGroupID: {}}
	network := []string{rootGroupID}
	sort.Strings(subGroupIDs)
	for _, id := range subGroupIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		network = append(network, id)
	}
	return network, nil
}
