package main

import (
	"math"
	"time"
)

// Ride is one row of uploaded performance data for a single activity.
// Numeric fields use NaN to mean "value absent or unparseable": sums treat
// NaN as zero, means skip it, mirroring how the metrics behaved upstream.
type Ride struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Rider          string    `json:"rider_name"`
	Team           string    `json:"team_name"`
	DistanceKM     float64   `json:"distance_km"`
	DurationSec    float64   `json:"duration_sec"`
	PowerWatts     float64   `json:"power_watts"`
	HeartRateBPM   float64   `json:"heart_rate_bpm"`
	ElevationGainM float64   `json:"elevation_gain_m"`
	SpeedKMH       float64   `json:"speed_kmh"`
}

// Metric names accepted by the aggregation layer.
const (
	MetricDistance  = "distance_km"
	MetricDuration  = "duration_sec"
	MetricPower     = "power_watts"
	MetricHeartRate = "heart_rate_bpm"
	MetricElevation = "elevation_gain_m"
	MetricSpeed     = "speed_kmh"
)

// MetricValue returns the named metric of r, or NaN for unknown names.
func (r Ride) MetricValue(metric string) float64 {
	switch metric {
	case MetricDistance:
		return r.DistanceKM
	case MetricDuration:
		return r.DurationSec
	case MetricPower:
		return r.PowerWatts
	case MetricHeartRate:
		return r.HeartRateBPM
	case MetricElevation:
		return r.ElevationGainM
	case MetricSpeed:
		return r.SpeedKMH
	}
	return math.NaN()
}

// Period is a calendar granularity used to group rides before aggregation.
type Period string

const (
	PeriodHour    Period = "hour"
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// ParsePeriod maps a request path value onto a Period, falling back to
// month for anything unrecognized.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodHour, PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return Period(s)
	}
	return PeriodMonth
}
