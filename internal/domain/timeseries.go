package domain

import "time"

// PeriodType selects the time series bucketing granularity
type PeriodType string

const (
	PeriodDaily   PeriodType = "daily"
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
)

// ParsePeriodType validates a period query parameter, defaulting to monthly
func ParsePeriodType(s string) (PeriodType, bool) {
	switch PeriodType(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return PeriodType(s), true
	case "":
		return PeriodMonthly, true
	default:
		return PeriodMonthly, false
	}
}

// TimeSeriesPoint is one bucket of the supporter growth series
type TimeSeriesPoint struct {
	Date                 string `json:"date"`
	Period               string `json:"period"`
	NewSupporters        int    `json:"newSupporters"`
	CumulativeSupporters int    `json:"cumulativeSupporters"`
	ActiveSupporters     int    `json:"activeSupporters"`
}

// TimeSeries wraps the series with its granularity for the API response
type TimeSeries struct {
	Data       []TimeSeriesPoint `json:"data"`
	PeriodType PeriodType        `json:"periodType"`
}

// TimeSeriesRollupRow is one row of the mv_time_series_supporters rollup,
// precomputed per viewpoint group and period
type TimeSeriesRollupRow struct {
	ViewpointGroupID     string
	PeriodType           PeriodType
	Period               string
	Date                 time.Time
	NewSupporters        int
	CumulativeSupporters int
	ActiveSupporters     int
}
