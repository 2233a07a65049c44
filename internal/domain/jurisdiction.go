package domain

import "time"

// Jurisdiction is a geographic/political boundary a voter can be registered
// in. Level drives the turnout estimate; State is the two-letter abbreviation.
type Jurisdiction struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Level *string `json:"level"`
	State *string `json:"state"`
}

// JurisdictionSupporters accumulates the deduplicated supporter set for one
// jurisdiction. CreatedAts holds one acquisition timestamp per
// (profile, jurisdiction) occurrence.
type JurisdictionSupporters struct {
	ProfileIDs map[string]struct{}
	CreatedAts []time.Time
}

// NewJurisdictionSupporters returns an empty accumulator
func NewJurisdictionSupporters() *JurisdictionSupporters {
	return &JurisdictionSupporters{ProfileIDs: map[string]struct{}{}}
}

// Add records a supporter occurrence, deduplicating by profile id
func (js *JurisdictionSupporters) Add(profileID string, createdAt time.Time) {
	if _, ok := js.ProfileIDs[profileID]; ok {
		return
	}
	js.ProfileIDs[profileID] = struct{}{}
	if !createdAt.IsZero() {
		js.CreatedAts = append(js.CreatedAts, createdAt)
	}
}

// Count returns the deduplicated supporter count
func (js *JurisdictionSupporters) Count() int {
	return len(js.ProfileIDs)
}

// SupporterJurisdictionRow is one row of the mv_supporters_by_jurisdiction
// rollup: a (group, jurisdiction, profile) mapping with the acquisition time
type SupporterJurisdictionRow struct {
	ViewpointGroupID string
	JurisdictionID   string
	ProfileID        string
	CreatedAt        time.Time
}

// JurisdictionInfluence is the per-jurisdiction dashboard row
type JurisdictionInfluence struct {
	JurisdictionID       string   `json:"jurisdictionId"`
	Name                 string   `json:"name"`
	Level                *string  `json:"level"`
	SupporterCount       int      `json:"supporterCount"`
	EstimatedTurnout     int      `json:"estimatedTurnout"`
	SupporterShare       *float64 `json:"supporterShare"`
	ActiveSupporterCount int      `json:"activeSupporterCount"`
	ActiveRate           float64  `json:"activeRate"`
	Growth30d            float64  `json:"growth30d"`
}

// StateDistribution groups supporters by the two-letter state abbreviation
// of their jurisdiction
type StateDistribution struct {
	State             string `json:"state"`
	SupporterCount    int    `json:"supporterCount"`
	JurisdictionCount int    `json:"jurisdictionCount"`
}
