package domain

// TopJurisdiction is the jurisdiction with the highest supporter share
type TopJurisdiction struct {
	JurisdictionID string   `json:"jurisdictionId"`
	Name           string   `json:"name"`
	SupporterCount int      `json:"supporterCount"`
	SupporterShare *float64 `json:"supporterShare"`
}

// SummaryMetrics is the top-level dashboard summary
type SummaryMetrics struct {
	TotalSupporters            int              `json:"totalSupporters"`
	ActiveSupporters           int              `json:"activeSupporters"`
	ActiveRate                 float64          `json:"activeRate"`
	TopJurisdiction            *TopJurisdiction `json:"topJurisdiction"`
	HighLeverageElectionsCount int              `json:"highLeverageElectionsCount"`
	TotalBallotItems           int              `json:"totalBallotItems"`
}

// SupporterCounts is the response for the counts endpoint
type SupporterCounts struct {
	TotalSupporters  int     `json:"totalSupporters"`
	ActiveSupporters int     `json:"activeSupporters"`
	ActiveRate       float64 `json:"activeRate"`
}
