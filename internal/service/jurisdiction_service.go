package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"influence-api/internal/domain"
	"influence-api/internal/repository"
	"influence-api/pkg/logger"
)

// JurisdictionService maps a network's supporters onto the jurisdictions
// they are registered to vote in. The preferred path reads the denormalized
// rollup; when that fails the service falls back to the raw multi-hop join
// through profiles, verifications and voter registrations.
type JurisdictionService struct {
	relations repository.RelationRepository
	voters    repository.VoterRepository
	rollups   repository.RollupRepository
	log       *logger.Logger
}

func NewJurisdictionService(
	relations repository.RelationRepository,
	voters repository.VoterRepository,
	rollups repository.RollupRepository,
	log *logger.Logger,
) *JurisdictionService {
	return &JurisdictionService{
		relations: relations,
		voters:    voters,
		rollups:   rollups,
		log:       log,
	}
}

// SupportersByJurisdiction returns, per jurisdiction ID, the deduplicated
// supporter set of the network with acquisition timestamps. A supporter
// registered in several jurisdictions appears in each of them; within one
// jurisdiction each profile is counted once.
func (s *JurisdictionService) SupportersByJurisdiction(ctx context.Context, networkIDs []string) (map[string]*domain.JurisdictionSupporters, error) {
	rows, err := s.rollups.SupportersByJurisdiction(ctx, networkIDs)
	if err != nil {
		s.log.WithError(err).Warn("jurisdiction rollup unavailable, falling back to join path")
		return s.supportersViaJoin(ctx, networkIDs)
	}
	result := make(map[string]*domain.JurisdictionSupporters)
	for _, row := range rows {
		js, ok := result[row.JurisdictionID]
		if !ok {
			js = domain.NewJurisdictionSupporters()
			result[row.JurisdictionID] = js
		}
		js.Add(row.ProfileID, row.CreatedAt)
	}
	return result, nil
}

// supportersViaJoin walks the hop chain directly: supporter relations,
// profiles to persons, persons to voter verifications, verifications to
// jurisdictions. Acquisition timestamps come from the supporter relation.
func (s *JurisdictionService) supportersViaJoin(ctx context.Context, networkIDs []string) (map[string]*domain.JurisdictionSupporters, error) {
	relations, err := s.relations.SupporterRelations(ctx, networkIDs)
	if err != nil {
		return nil, err
	}
	if len(relations) == 0 {
		return map[string]*domain.JurisdictionSupporters{}, nil
	}

	// Earliest acquisition per profile; relations may span several groups.
	acquiredAt := make(map[string]time.Time, len(relations))
	profileIDs := make([]string, 0, len(relations))
	for _, rel := range relations {
		if at, ok := acquiredAt[rel.ProfileID]; !ok || rel.CreatedAt.Before(at) {
			if !ok {
				profileIDs = append(profileIDs, rel.ProfileID)
			}
			acquiredAt[rel.ProfileID] = rel.CreatedAt
		}
	}

	personByProfile, err := s.voters.PersonIDsByProfile(ctx, profileIDs)
	if err != nil {
		return nil, err
	}
	personIDs := make([]string, 0, len(personByProfile))
	profilesByPerson := make(map[string][]string, len(personByProfile))
	for profileID, personID := range personByProfile {
		if _, ok := profilesByPerson[personID]; !ok {
			personIDs = append(personIDs, personID)
		}
		profilesByPerson[personID] = append(profilesByPerson[personID], profileID)
	}

	verificationsByPerson, err := s.voters.VerificationIDsByPerson(ctx, personIDs)
	if err != nil {
		return nil, err
	}
	verificationIDs := make([]string, 0, len(verificationsByPerson))
	personByVerification := make(map[string]string)
	for personID, ids := range verificationsByPerson {
		for _, id := range ids {
			verificationIDs = append(verificationIDs, id)
			personByVerification[id] = personID
		}
	}

	jurisdictionsByVerification, err := s.voters.JurisdictionIDsByVerification(ctx, verificationIDs)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*domain.JurisdictionSupporters)
	for verificationID, jurisdictionIDs := range jurisdictionsByVerification {
		personID := personByVerification[verificationID]
		for _, jurisdictionID := range jurisdictionIDs {
			js, ok := result[jurisdictionID]
			if !ok {
				js = domain.NewJurisdictionSupporters()
				result[jurisdictionID] = js
			}
			for _, profileID := range profilesByPerson[personID] {
				js.Add(profileID, acquiredAt[profileID])
			}
		}
	}
	return result, nil
}

// JurisdictionsWithInfluence decorates each touched jurisdiction with
// supporter counts, turnout-based share, activity and 30-day growth.
// The supporters map comes from the caller so one request builds it once.
// Results are sorted by supporter count descending, jurisdiction ID
// ascending on ties.
func (s *JurisdictionService) JurisdictionsWithInfluence(ctx context.Context, supporters map[string]*domain.JurisdictionSupporters, now time.Time) ([]domain.JurisdictionInfluence, error) {
	if len(supporters) == 0 {
		return []domain.JurisdictionInfluence{}, nil
	}

	ids := make([]string, 0, len(supporters))
	for id := range supporters {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows, err := s.voters.JurisdictionsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	jurisdictions := make(map[string]domain.Jurisdiction, len(rows))
	for _, j := range rows {
		jurisdictions[j.ID] = j
	}

	windowStart := dateOnly(now).AddDate(0, 0, -activeWindowDays)
	result := make([]domain.JurisdictionInfluence, 0, len(ids))
	for _, id := range ids {
		j, ok := jurisdictions[id]
		if !ok {
			continue
		}
		js := supporters[id]
		total := js.Count()
		recent := 0
		for _, at := range js.CreatedAts {
			if !dateOnly(at).Before(windowStart) {
				recent++
			}
		}
		previous := total - recent

		turnout := estimateTurnout(j.Level)
		var share *float64
		if turnout > 0 {
			v := float64(total) / float64(turnout) * 100
			share = &v
		}

		activeRate := 0.0
		if total > 0 {
			activeRate = float64(recent) / float64(total) * 100
		}
		growth := 0.0
		switch {
		case previous > 0:
			growth = float64(recent) / float64(previous) * 100
		case recent > 0:
			growth = 100
		}

		name := ""
		if j.Name != nil {
			name = *j.Name
		}
		result = append(result, domain.JurisdictionInfluence{
			JurisdictionID:       id,
			Name:                 name,
			Level:                j.Level,
			SupporterCount:       total,
			EstimatedTurnout:     turnout,
			SupporterShare:       share,
			ActiveSupporterCount: recent,
			ActiveRate:           activeRate,
			Growth30d:            growth,
		})
	}

	sort.SliceStable(result, func(i, k int) bool {
		if result[i].SupporterCount != result[k].SupporterCount {
			return result[i].SupporterCount > result[k].SupporterCount
		}
		return result[i].JurisdictionID < result[k].JurisdictionID
	})
	return result, nil
}

// StateDistribution groups the network's supporters by US state. Supporters
// are deduplicated within a state; jurisdictions without a recognized
// two-letter state abbreviation are excluded.
func (s *JurisdictionService) StateDistribution(ctx context.Context, networkIDs []string) ([]domain.StateDistribution, error) {
	supporters, err := s.SupportersByJurisdiction(ctx, networkIDs)
	if err != nil {
		return nil, err
	}
	if len(supporters) == 0 {
		return []domain.StateDistribution{}, nil
	}

	ids := make([]string, 0, len(supporters))
	for id := range supporters {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows, err := s.voters.JurisdictionsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	jurisdictions := make(map[string]domain.Jurisdiction, len(rows))
	for _, j := range rows {
		jurisdictions[j.ID] = j
	}

	type stateAgg struct {
		profiles      map[string]struct{}
		jurisdictions int
	}
	byState := make(map[string]*stateAgg)
	for _, id := range ids {
		j, ok := jurisdictions[id]
		if !ok || j.State == nil {
			continue
		}
		abbr := strings.ToUpper(strings.TrimSpace(*j.State))
		name, ok := stateNames[abbr]
		if !ok {
			continue
		}
		agg, ok := byState[name]
		if !ok {
			agg = &stateAgg{profiles: make(map[string]struct{})}
			byState[name] = agg
		}
		agg.jurisdictions++
		for profileID := range supporters[id].ProfileIDs {
			agg.profiles[profileID] = struct{}{}
		}
	}

	result := make([]domain.StateDistribution, 0, len(byState))
	for name, agg := range byState {
		result = append(result, domain.StateDistribution{
			State:             name,
			SupporterCount:    len(agg.profiles),
			JurisdictionCount: agg.jurisdictions,
		})
	}
	sort.SliceStable(result, func(i, k int) bool {
		if result[i].SupporterCount != result[k].SupporterCount {
			return result[i].SupporterCount > result[k].SupporterCount
		}
		return result[i].State < result[k].State
	})
	return result, nil
}
