package domain

import "time"

// RelationType classifies a profile's relationship to a viewpoint group
type RelationType string

const (
	RelationSupporter     RelationType = "supporter"
	RelationLeader        RelationType = "leader"
	RelationAdministrator RelationType = "administrator"
	RelationBookmarker    RelationType = "bookmarker"
	RelationDefault       RelationType = "default"
)

// ViewpointGroup represents a leader's coalition/movement entity
type ViewpointGroup struct {
	ID           string    `json:"id"`
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	IsPublic     *bool     `json:"isPublic"`
	IsSearchable *bool     `json:"isSearchable"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SupporterRelation is one profile→group relation row of type supporter,
// with the acquisition timestamp used for growth metrics
type SupporterRelation struct {
	ProfileID        string
	ViewpointGroupID string
	CreatedAt        time.Time
}

// Network is the resolved set of viewpoint group IDs that constitute one
// leader's movement for aggregation purposes
type Network struct {
	PrimaryGroupID string   `json:"primaryGroupId"`
	SubGroupIDs    []string `json:"subGroupIds"`
	AllGroupIDs    []string `json:"allGroupIds"`
}
