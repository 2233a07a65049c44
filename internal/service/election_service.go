package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"influence-api/internal/domain"
	"influence-api/internal/repository"
	"influence-api/pkg/logger"
)

// ballotItemConcurrency bounds the parallel race/measure resolution per
// election.
const ballotItemConcurrency = 8

// ElectionService resolves upcoming elections, classifies their ballot
// items and scores each item's influence potential for a supporter network.
type ElectionService struct {
	elections  repository.ElectionRepository
	alignments repository.AlignmentRepository
	log        *logger.Logger
}

func NewElectionService(elections repository.ElectionRepository, alignments repository.AlignmentRepository, log *logger.Logger) *ElectionService {
	return &ElectionService{
		elections:  elections,
		alignments: alignments,
		log:        log,
	}
}

// UpcomingElections returns the elections whose poll date falls inside
// [today, today+daysAhead], decorated with influence aggregates for the
// network. Elections with no ballot items are excluded; elections whose
// ballot item lookup fails are logged and skipped rather than failing the
// whole window.
func (s *ElectionService) UpcomingElections(
	ctx context.Context,
	daysAhead int,
	networkIDs []string,
	supporters map[string]*domain.JurisdictionSupporters,
	now time.Time,
) ([]domain.ElectionInfluence, error) {
	if daysAhead <= 0 {
		daysAhead = defaultElectionWindowDays
	}
	from := dateOnly(now)
	to := from.AddDate(0, 0, daysAhead)

	elections, err := s.elections.ElectionsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	result := make([]domain.ElectionInfluence, 0, len(elections))
	for _, el := range elections {
		items, err := s.elections.BallotItems(ctx, el.ID)
		if err != nil {
			s.log.WithError(err).WithField("election_id", el.ID).
				Warn("ballot item lookup failed, skipping election")
			continue
		}
		if len(items) == 0 {
			continue
		}

		supportersInScope, jurisdictionCount := scopeSupporters(items, supporters)
		ballotItems, err := s.classifyBallotItems(ctx, items, supporters, networkIDs)
		if err != nil {
			return nil, err
		}

		influence := domain.ElectionInfluence{
			ElectionID:            el.ID,
			Name:                  electionName(el),
			PollDate:              el.PollDate.Format("2006-01-02"),
			Description:           el.Description,
			SupportersInScope:     supportersInScope,
			SupporterShareInScope: scopeShare(supportersInScope, jurisdictionCount),
			BallotItemsCount:      len(ballotItems),
			BallotItems:           ballotItems,
		}
		for _, bi := range ballotItems {
			switch bi.Type {
			case domain.BallotItemRace:
				influence.RacesCount++
			case domain.BallotItemMeasure:
				influence.MeasuresCount++
			}
			if bi.InfluenceScore > highInfluenceScoreThreshold {
				influence.InfluenceTargetCount++
			}
		}
		result = append(result, influence)
	}
	return result, nil
}

// ElectionDetail returns the full drill-down for one election, or nil when
// the election does not exist.
func (s *ElectionService) ElectionDetail(
	ctx context.Context,
	electionID string,
	networkIDs []string,
	supporters map[string]*domain.JurisdictionSupporters,
) (*domain.ElectionDetail, error) {
	el, err := s.elections.ElectionByID(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, nil
	}

	items, err := s.elections.BallotItems(ctx, el.ID)
	if err != nil {
		return nil, err
	}

	supportersInScope, jurisdictionCount := scopeSupporters(items, supporters)
	ballotItems, err := s.classifyBallotItems(ctx, items, supporters, networkIDs)
	if err != nil {
		return nil, err
	}

	detail := &domain.ElectionDetail{
		ElectionID:  el.ID,
		Name:        electionName(*el),
		PollDate:    el.PollDate.Format("2006-01-02"),
		Description: el.Description,
		Summary: domain.ElectionSummary{
			SupportersInScope:     supportersInScope,
			SupporterShareInScope: scopeShare(supportersInScope, jurisdictionCount),
			TotalBallotItems:      len(ballotItems),
		},
		BallotItems:           ballotItems,
		TopRaces:              topRaces(ballotItems, 3),
		JurisdictionBreakdown: jurisdictionBreakdown(items, supporters),
	}
	for _, bi := range ballotItems {
		switch bi.Type {
		case domain.BallotItemRace:
			detail.Summary.RacesCount++
		case domain.BallotItemMeasure:
			detail.Summary.MeasuresCount++
		}
	}
	return detail, nil
}

// classifyBallotItems resolves each ballot item to its race or measure
// detail and scores it, fanning out with bounded concurrency. Slice order
// follows the input rows.
func (s *ElectionService) classifyBallotItems(
	ctx context.Context,
	items []domain.BallotItemRow,
	supporters map[string]*domain.JurisdictionSupporters,
	networkIDs []string,
) ([]domain.BallotItem, error) {
	result := make([]domain.BallotItem, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ballotItemConcurrency)
	for i, row := range items {
		i, row := i, row
		g.Go(func() error {
			bi, err := s.classifyBallotItem(gctx, row, supporters, networkIDs)
			if err != nil {
				return err
			}
			result[i] = bi
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// classifyBallotItem fetches the race and measure candidates in parallel
// and tags the item with exactly one of them. Items matching neither are
// kept as unclassified with a zero score and logged as a data-quality
// signal. Scoring uses the supporter count of the item's own jurisdiction,
// not the election-wide total.
func (s *ElectionService) classifyBallotItem(
	ctx context.Context,
	row domain.BallotItemRow,
	supporters map[string]*domain.JurisdictionSupporters,
	networkIDs []string,
) (domain.BallotItem, error) {
	bi := domain.BallotItem{
		BallotItemID:     row.ID,
		Title:            row.Title,
		Description:      row.Description,
		JurisdictionID:   row.JurisdictionID,
		JurisdictionName: row.JurisdictionName,
	}
	supporterCount := 0
	if js, ok := supporters[row.JurisdictionID]; ok {
		supporterCount = js.Count()
	}

	var (
		race    *domain.RaceRow
		measure *domain.MeasureRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		race, err = s.elections.RaceByBallotItem(gctx, row.ID)
		return err
	})
	g.Go(func() error {
		var err error
		measure, err = s.elections.MeasureByBallotItem(gctx, row.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.BallotItem{}, err
	}

	switch {
	case race != nil:
		detail, err := s.raceDetail(ctx, race)
		if err != nil {
			return domain.BallotItem{}, err
		}
		bi.Type = domain.BallotItemRace
		bi.Race = detail
		bi.InfluenceScore = s.scoreItem(ctx, supporterCount, race.InfluenceTargetID, networkIDs)
	case measure != nil:
		bi.Type = domain.BallotItemMeasure
		bi.Measure = &domain.MeasureDetail{
			MeasureID:    measure.ID,
			Title:        measureTitle(row, measure),
			Summary:      measure.Summary,
			FullText:     measure.FullText,
			FiscalImpact: measure.FiscalImpact,
			ProSnippet:   measure.ProSnippet,
			ConSnippet:   measure.ConSnippet,
		}
		bi.InfluenceScore = s.scoreItem(ctx, supporterCount, measure.InfluenceTargetID, networkIDs)
	default:
		bi.Type = domain.BallotItemUnclassified
		s.log.WithFields(map[string]interface{}{
			"ballot_item_id": row.ID,
			"election_id":    row.ElectionID,
		}).Warn("ballot item has neither race nor measure")
	}
	return bi, nil
}

// raceDetail resolves the office term, candidate roster and party label of
// a race. Missing office terms or party rows degrade to nil fields.
func (s *ElectionService) raceDetail(ctx context.Context, race *domain.RaceRow) (*domain.RaceDetail, error) {
	detail := &domain.RaceDetail{
		RaceID:       race.ID,
		OfficeTermID: race.OfficeTermID,
		PartyID:      race.PartyID,
		IsPartisan:   race.IsPartisan,
		IsPrimary:    race.IsPrimary,
	}

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	if race.OfficeTermID != nil {
		g.Go(func() error {
			term, err := s.elections.OfficeTermByID(gctx, *race.OfficeTermID)
			if err != nil {
				return err
			}
			if term != nil {
				mu.Lock()
				detail.OfficeName = term.OfficeName
				detail.OfficeLevel = term.OfficeLevel
				detail.OfficeDistrict = term.OfficeDistrict
				mu.Unlock()
			}
			return nil
		})
	}
	if race.PartyID != nil {
		g.Go(func() error {
			name, err := s.elections.PartyNameByID(gctx, *race.PartyID)
			if err != nil {
				return err
			}
			mu.Lock()
			detail.PartyName = name
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		candidates, err := s.elections.CandidatesByRace(gctx, race.ID)
		if err != nil {
			return err
		}
		mu.Lock()
		detail.Candidates = candidates
		mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if detail.Candidates == nil {
		detail.Candidates = []domain.Candidate{}
	}
	return detail, nil
}

// scoreItem computes the influence score for a ballot item. Alignment
// lookup failures degrade to a zero weight rather than failing the item.
func (s *ElectionService) scoreItem(ctx context.Context, supporterCount int, influenceTargetID *string, networkIDs []string) float64 {
	weight := 0.0
	if influenceTargetID != nil {
		weights, err := s.alignments.AlignmentWeights(ctx, *influenceTargetID, networkIDs)
		if err != nil {
			s.log.WithError(err).WithField("influence_target_id", *influenceTargetID).
				Warn("alignment weight lookup failed, scoring without alignment")
		} else if len(weights) > 0 {
			sum := 0.0
			for _, w := range weights {
				sum += w
			}
			weight = sum / float64(len(weights))
			if weight > 1 {
				weight = 1
			}
		}
	}
	return influenceScore(supporterCount, weight)
}

// scopeSupporters sums the deduplicated supporter counts of the distinct
// jurisdictions an election's ballot items touch.
func scopeSupporters(items []domain.BallotItemRow, supporters map[string]*domain.JurisdictionSupporters) (int, int) {
	seen := make(map[string]struct{})
	total := 0
	for _, item := range items {
		if _, ok := seen[item.JurisdictionID]; ok {
			continue
		}
		seen[item.JurisdictionID] = struct{}{}
		if js, ok := supporters[item.JurisdictionID]; ok {
			total += js.Count()
		}
	}
	return total, len(seen)
}

// scopeShare estimates the supporter share of an election's electorate
// using a fixed turnout proxy per touched jurisdiction.
func scopeShare(supportersInScope, jurisdictionCount int) *float64 {
	if jurisdictionCount == 0 {
		return nil
	}
	share := float64(supportersInScope) / float64(jurisdictionCount*ballotItemTurnout) * 100
	return &share
}

// topRaces returns the up-to-n highest scoring race items, score
// descending, input order on ties.
func topRaces(items []domain.BallotItem, n int) []domain.BallotItem {
	races := make([]domain.BallotItem, 0, len(items))
	for _, bi := range items {
		if bi.Type == domain.BallotItemRace {
			races = append(races, bi)
		}
	}
	sort.SliceStable(races, func(i, k int) bool {
		return races[i].InfluenceScore > races[k].InfluenceScore
	})
	if len(races) > n {
		races = races[:n]
	}
	return races
}

// jurisdictionBreakdown lists each jurisdiction an election touches with
// its supporter exposure, supporter count descending.
func jurisdictionBreakdown(items []domain.BallotItemRow, supporters map[string]*domain.JurisdictionSupporters) []domain.JurisdictionBreakdown {
	seen := make(map[string]struct{})
	result := make([]domain.JurisdictionBreakdown, 0)
	for _, item := range items {
		if _, ok := seen[item.JurisdictionID]; ok {
			continue
		}
		seen[item.JurisdictionID] = struct{}{}

		count := 0
		if js, ok := supporters[item.JurisdictionID]; ok {
			count = js.Count()
		}
		share := float64(count) / float64(ballotItemTurnout) * 100
		name := ""
		if item.JurisdictionName != nil {
			name = *item.JurisdictionName
		}
		result = append(result, domain.JurisdictionBreakdown{
			JurisdictionID:   item.JurisdictionID,
			JurisdictionName: name,
			SupporterCount:   count,
			SupporterShare:   &share,
		})
	}
	sort.SliceStable(result, func(i, k int) bool {
		return result[i].SupporterCount > result[k].SupporterCount
	})
	return result
}

// measureTitle prefers the ballot item's own title, then the measure's
// title, then its short name.
func measureTitle(row domain.BallotItemRow, measure *domain.MeasureRow) *string {
	if row.Title != nil {
		return row.Title
	}
	if measure.Title != nil {
		return measure.Title
	}
	return measure.Name
}

func electionName(el domain.Election) string {
	if el.Name != nil {
		return *el.Name
	}
	return "Election " + el.PollDate.Format("2006-01-02")
}
