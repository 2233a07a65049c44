package domain

import "time"

// Election is one upcoming or past election day
type Election struct {
	ID          string
	Name        *string
	PollDate    time.Time
	Description *string
}

// BallotItemType is the ballot item classification. A well-formed ballot item
// wraps exactly one race or one measure; Unclassified marks rows that have
// neither and is surfaced as a data-quality signal, never silently defaulted.
type BallotItemType string

const (
	BallotItemRace         BallotItemType = "race"
	BallotItemMeasure      BallotItemType = "measure"
	BallotItemUnclassified BallotItemType = "unclassified"
)

// BallotItemRow is the raw ballot item row joined with its jurisdiction
type BallotItemRow struct {
	ID               string
	ElectionID       string
	Title            *string
	Description      *string
	JurisdictionID   string
	JurisdictionName *string
}

// RaceRow is a raw race row
type RaceRow struct {
	ID                string
	BallotItemID      string
	OfficeTermID      *string
	PartyID           *string
	InfluenceTargetID *string
	IsPartisan        *bool
	IsPrimary         *bool
}

// MeasureRow is a raw measure row
type MeasureRow struct {
	ID                string
	BallotItemID      string
	Name              *string
	Title             *string
	Summary           *string
	FullText          *string
	FiscalImpact      *string
	ProSnippet        *string
	ConSnippet        *string
	InfluenceTargetID *string
}

// OfficeTerm carries the office detail a race is contested for
type OfficeTerm struct {
	ID             string
	OfficeName     *string
	OfficeLevel    *string
	OfficeDistrict *string
}

// Candidate is one candidacy on a race's roster. Withdrawn candidates are
// kept with IsWithdrawn set, not filtered out.
type Candidate struct {
	CandidacyID   string  `json:"candidacyId"`
	CandidateID   string  `json:"candidateId"`
	CandidateName *string `json:"candidateName"`
	PartyID       *string `json:"partyId"`
	PartyName     *string `json:"partyName"`
	Status        *string `json:"status"`
	IsWithdrawn   *bool   `json:"isWithdrawn"`
	Result        *string `json:"result"`
}

// RaceDetail is the resolved race with office and candidate roster
type RaceDetail struct {
	RaceID         string      `json:"raceId"`
	OfficeTermID   *string     `json:"officeTermId"`
	OfficeName     *string     `json:"officeName"`
	OfficeLevel    *string     `json:"officeLevel"`
	OfficeDistrict *string     `json:"officeDistrict"`
	Candidates     []Candidate `json:"candidates"`
	PartyID        *string     `json:"partyId"`
	PartyName      *string     `json:"partyName"`
	IsPartisan     *bool       `json:"isPartisan"`
	IsPrimary      *bool       `json:"isPrimary"`
}

// MeasureDetail is the resolved ballot proposition
type MeasureDetail struct {
	MeasureID    string  `json:"measureId"`
	Title        *string `json:"title"`
	Summary      *string `json:"summary"`
	FullText     *string `json:"fullText"`
	FiscalImpact *string `json:"fiscalImpact"`
	ProSnippet   *string `json:"proSnippet"`
	ConSnippet   *string `json:"conSnippet"`
}

// BallotItem is the classified, ballot-facing view of one race or measure.
// Exactly one of Race/Measure is populated, matching Type.
type BallotItem struct {
	BallotItemID     string         `json:"ballotItemId"`
	Title            *string        `json:"title"`
	Description      *string        `json:"description"`
	JurisdictionID   string         `json:"jurisdictionId"`
	JurisdictionName *string        `json:"jurisdictionName"`
	Type             BallotItemType `json:"type"`
	Race             *RaceDetail    `json:"race,omitempty"`
	Measure          *MeasureDetail `json:"measure,omitempty"`
	InfluenceScore   float64        `json:"influenceScore"`
}

// ElectionInfluence is the per-election dashboard aggregate
type ElectionInfluence struct {
	ElectionID            string       `json:"electionId"`
	Name                  string       `json:"name"`
	PollDate              string       `json:"pollDate"`
	Description           *string      `json:"description"`
	SupportersInScope     int          `json:"supportersInScope"`
	SupporterShareInScope *float64     `json:"supporterShareInScope"`
	InfluenceTargetCount  int          `json:"influenceTargetCount"`
	BallotItemsCount      int          `json:"ballotItemsCount"`
	RacesCount            int          `json:"racesCount"`
	MeasuresCount         int          `json:"measuresCount"`
	BallotItems           []BallotItem `json:"ballotItems"`
}

// ElectionSummary is the headline block of an election detail view
type ElectionSummary struct {
	SupportersInScope     int      `json:"supportersInScope"`
	SupporterShareInScope *float64 `json:"supporterShareInScope"`
	TotalBallotItems      int      `json:"totalBallotItems"`
	RacesCount            int      `json:"racesCount"`
	MeasuresCount         int      `json:"measuresCount"`
}

// JurisdictionBreakdown is the per-jurisdiction supporter exposure of one
// election
type JurisdictionBreakdown struct {
	JurisdictionID   string   `json:"jurisdictionId"`
	JurisdictionName string   `json:"jurisdictionName"`
	SupporterCount   int      `json:"supporterCount"`
	SupporterShare   *float64 `json:"supporterShare"`
}

// ElectionDetail is the full drill-down for one election
type ElectionDetail struct {
	ElectionID            string                  `json:"electionId"`
	Name                  string                  `json:"name"`
	PollDate              string                  `json:"pollDate"`
	Description           *string                 `json:"description"`
	Summary               ElectionSummary         `json:"summary"`
	BallotItems           []BallotItem            `json:"ballotItems"`
	TopRaces              []BallotItem            `json:"topRaces"`
	JurisdictionBreakdown []JurisdictionBreakdown `json:"jurisdictionBreakdown"`
}
