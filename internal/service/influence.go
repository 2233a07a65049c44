package service

const (
	// activeWindowDays is the lookback used for active-supporter counts and
	// growth rates.
	activeWindowDays = 30

	// ballotItemTurnout is the fixed turnout proxy applied per ballot item
	// and per election jurisdiction when no level information is available.
	ballotItemTurnout = 10000

	// highLeverageShareThreshold marks a jurisdiction as high-leverage when
	// the supporter share (percent) reaches it.
	highLeverageShareThreshold = 5.0

	// highInfluenceScoreThreshold marks a ballot item as an influence target
	// when its score (strictly) exceeds it.
	highInfluenceScoreThreshold = 50.0

	// defaultElectionWindowDays bounds the upcoming-elections lookahead when
	// the caller does not supply one.
	defaultElectionWindowDays = 90
)

// levelTurnout maps a jurisdiction level to its estimated eligible-voter
// turnout. Unknown or missing levels use the district figure.
var levelTurnout = map[string]int{
	"country":  150000000,
	"state":    5000000,
	"county":   500000,
	"city":     50000,
	"district": 10000,
}

func estimateTurnout(level *string) int {
	if level != nil {
		if t, ok := levelTurnout[*level]; ok {
			return t
		}
	}
	return levelTurnout["district"]
}

// influenceScore combines the supporter share of a fixed turnout proxy with
// the alignment weight of the ballot item's influence target. Both halves
// contribute up to 50 points; the result is clamped to [0, 100].
func influenceScore(supporterCount int, alignmentWeight float64) float64 {
	share := float64(supporterCount) / float64(ballotItemTurnout)
	score := share*50 + alignmentWeight*50
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
