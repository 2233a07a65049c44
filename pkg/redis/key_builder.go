package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

func (kb *KeyBuilder) KeySummary(groupID string) string {
	return kb.BuildKey(fmt.Sprintf(KeySummary, groupID))
}

func (kb *KeyBuilder) KeyJurisdictions(groupID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyJurisdictions, groupID))
}

func (kb *KeyBuilder) KeyElections(groupID string, daysAhead int) string {
	return kb.BuildKey(fmt.Sprintf(KeyElections, groupID, daysAhead))
}

func (kb *KeyBuilder) KeyElectionDetail(electionID, groupID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyElectionDetail, electionID, groupID))
}

func (kb *KeyBuilder) KeyTimeSeries(period, groupID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyTimeSeries, period, groupID))
}

func (kb *KeyBuilder) KeyStates(groupID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyStates, groupID))
}

func (kb *KeyBuilder) KeyCounts(groupID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyCounts, groupID))
}

func (kb *KeyBuilder) KeyGroups() string {
	return kb.BuildKey(KeyGroups)
}

func (kb *KeyBuilder) KeyNetwork(groupID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyNetwork, groupID))
}

// KeyCustom builds an arbitrary prefixed key
func (kb *KeyBuilder) KeyCustom(format string, args ...interface{}) string {
	return kb.BuildKey(fmt.Sprintf(format, args...))
}
