package main

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"
)

// accumulator folds metric values with pandas-style NaN handling: NaN
// contributes nothing to sums and is skipped by means.
type accumulator struct {
	sum   float64
	min   float64
	max   float64
	count int
}

func (a *accumulator) add(v float64) {
	if math.IsNaN(v) {
		return
	}
	if a.count == 0 {
		a.min, a.max = v, v
	} else {
		if v < a.min {
			a.min = v
		}
		if v > a.max {
			a.max = v
		}
	}
	a.sum += v
	a.count++
}

// Mean returns 0 when no value was observed, matching how the upstream
// endpoints reported all-missing columns.
func (a accumulator) Mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

func (a accumulator) apply(fn string) float64 {
	switch fn {
	case "mean":
		return a.Mean()
	case "max":
		if a.count == 0 {
			return 0
		}
		return a.max
	case "min":
		if a.count == 0 {
			return 0
		}
		return a.min
	}
	return a.sum
}

// SummaryStats are the dashboard KPI values.
type SummaryStats struct {
	TotalDistance  float64 `json:"totalDistance"`
	TotalDuration  float64 `json:"totalDuration"` // hours
	AvgPower       float64 `json:"avgPower"`
	AvgHeartRate   float64 `json:"avgHeartRate"`
	TotalElevation float64 `json:"totalElevation"`
}

func Summarize(rides []Ride) SummaryStats {
	var dist, dur, power, hr, elev accumulator
	for _, r := range rides {
		dist.add(r.DistanceKM)
		dur.add(r.DurationSec)
		power.add(r.PowerWatts)
		hr.add(r.HeartRateBPM)
		elev.add(r.ElevationGainM)
	}
	return SummaryStats{
		TotalDistance:  dist.sum,
		TotalDuration:  dur.sum / 3600.0,
		AvgPower:       power.Mean(),
		AvgHeartRate:   hr.Mean(),
		TotalElevation: elev.sum,
	}
}

// RiderSummary is one rider's aggregate line on the dashboard.
type RiderSummary struct {
	Name      string  `json:"name"`
	Team      string  `json:"team"`
	Distance  float64 `json:"distance"`
	Duration  float64 `json:"duration"` // hours
	Power     float64 `json:"power"`
	HeartRate float64 `json:"hr"`
	Elevation float64 `json:"elevation"`
}

func RiderSummaries(rides []Ride) []RiderSummary {
	type agg struct {
		team                       string
		dist, dur, power, hr, elev accumulator
	}
	byRider := make(map[string]*agg)
	var order []string
	for _, r := range rides {
		a, ok := byRider[r.Rider]
		if !ok {
			a = &agg{team: r.Team}
			byRider[r.Rider] = a
			order = append(order, r.Rider)
		}
		a.dist.add(r.DistanceKM)
		a.dur.add(r.DurationSec)
		a.power.add(r.PowerWatts)
		a.hr.add(r.HeartRateBPM)
		a.elev.add(r.ElevationGainM)
	}

	out := make([]RiderSummary, 0, len(order))
	for _, name := range order {
		a := byRider[name]
		out = append(out, RiderSummary{
			Name:      name,
			Team:      a.team,
			Distance:  a.dist.sum,
			Duration:  a.dur.sum / 3600.0,
			Power:     a.power.Mean(),
			HeartRate: a.hr.Mean(),
			Elevation: a.elev.sum,
		})
	}
	return out
}

// TeamMetrics is one team's column in the comparison view.
type TeamMetrics struct {
	TotalDistance  float64 `json:"totalDistance"`
	AvgPower       float64 `json:"avgPower"`
	AvgHeartRate   float64 `json:"avgHeartRate"`
	TotalElevation float64 `json:"totalElevation"`
	RiderCount     int     `json:"riderCount"`
}

type TeamComparison struct {
	Teams   []string               `json:"teams"`
	Metrics map[string]TeamMetrics `json:"metrics"`
}

func CompareTeams(rides []Ride) TeamComparison {
	type agg struct {
		dist, power, hr, elev accumulator
		riders                map[string]bool
	}
	byTeam := make(map[string]*agg)
	var order []string
	for _, r := range rides {
		a, ok := byTeam[r.Team]
		if !ok {
			a = &agg{riders: make(map[string]bool)}
			byTeam[r.Team] = a
			order = append(order, r.Team)
		}
		a.dist.add(r.DistanceKM)
		a.power.add(r.PowerWatts)
		a.hr.add(r.HeartRateBPM)
		a.elev.add(r.ElevationGainM)
		a.riders[r.Rider] = true
	}

	out := TeamComparison{Teams: order, Metrics: make(map[string]TeamMetrics, len(order))}
	for _, team := range order {
		a := byTeam[team]
		out.Metrics[team] = TeamMetrics{
			TotalDistance:  a.dist.sum,
			AvgPower:       a.power.Mean(),
			AvgHeartRate:   a.hr.Mean(),
			TotalElevation: a.elev.sum,
			RiderCount:     len(a.riders),
		}
	}
	return out
}

// Leaderboard entries, sorted by total distance descending.
type RiderRank struct {
	Name     string  `json:"name"`
	Team     string  `json:"team"`
	Distance float64 `json:"distance"`
	Power    float64 `json:"power"`
	Rides    int     `json:"rides"`
}

type TeamRank struct {
	Name       string  `json:"name"`
	Distance   float64 `json:"distance"`
	Power      float64 `json:"power"`
	RiderCount int     `json:"riderCount"`
	Rides      int     `json:"rides"`
}

type Leaderboard struct {
	Riders []RiderRank `json:"riders"`
	Teams  []TeamRank  `json:"teams"`
}

// BuildLeaderboard returns the top 10 riders and top 5 teams by total
// distance.
func BuildLeaderboard(rides []Ride) Leaderboard {
	riderSums := RiderSummaries(rides)
	riderRides := make(map[string]int)
	teamRides := make(map[string]int)
	for _, r := range rides {
		riderRides[r.Rider]++
		teamRides[r.Team]++
	}

	riders := make([]RiderRank, 0, len(riderSums))
	for _, s := range riderSums {
		riders = append(riders, RiderRank{
			Name:     s.Name,
			Team:     s.Team,
			Distance: s.Distance,
			Power:    s.Power,
			Rides:    riderRides[s.Name],
		})
	}
	sort.SliceStable(riders, func(i, j int) bool { return riders[i].Distance > riders[j].Distance })
	if len(riders) > 10 {
		riders = riders[:10]
	}

	cmp := CompareTeams(rides)
	teams := make([]TeamRank, 0, len(cmp.Teams))
	for _, name := range cmp.Teams {
		m := cmp.Metrics[name]
		teams = append(teams, TeamRank{
			Name:       name,
			Distance:   m.TotalDistance,
			Power:      m.AvgPower,
			RiderCount: m.RiderCount,
			Rides:      teamRides[name],
		})
	}
	sort.SliceStable(teams, func(i, j int) bool { return teams[i].Distance > teams[j].Distance })
	if len(teams) > 5 {
		teams = teams[:5]
	}

	return Leaderboard{Riders: riders, Teams: teams}
}

// ChartData feeds the Chart.js bindings on the home page.
type ChartData struct {
	Labels    []string  `json:"labels"`
	Distance  []float64 `json:"distance"`
	Power     []float64 `json:"power"`
	Teams     []string  `json:"teams"`
	TeamPower []float64 `json:"teamPower"`
}

// BuildChartData aggregates rides into the fixed slot scheme for the period:
// summed distance and mean power per slot, plus mean power per team.
func BuildChartData(rides []Ride, period Period) ChartData {
	times := make([]time.Time, len(rides))
	for i, r := range rides {
		times[i] = r.Timestamp
	}
	slots := NewChartSlots(period, times)

	distAcc := make([]accumulator, len(slots.Labels))
	powerAcc := make([]accumulator, len(slots.Labels))
	teamAcc := make(map[string]*accumulator)
	// Stays non-nil so an empty dataset marshals as [] rather than null.
	teamOrder := []string{}
	for _, r := range rides {
		if i, ok := slots.SlotIndex(r.Timestamp); ok {
			distAcc[i].add(r.DistanceKM)
			powerAcc[i].add(r.PowerWatts)
		}
		a, ok := teamAcc[r.Team]
		if !ok {
			a = &accumulator{}
			teamAcc[r.Team] = a
			teamOrder = append(teamOrder, r.Team)
		}
		a.add(r.PowerWatts)
	}

	out := ChartData{
		Labels:    slots.Labels,
		Distance:  make([]float64, len(slots.Labels)),
		Power:     make([]float64, len(slots.Labels)),
		Teams:     teamOrder,
		TeamPower: make([]float64, len(teamOrder)),
	}
	for i := range slots.Labels {
		out.Distance[i] = distAcc[i].sum
		out.Power[i] = powerAcc[i].Mean()
	}
	for i, team := range teamOrder {
		out.TeamPower[i] = teamAcc[team].Mean()
	}
	return out
}

// GroupedRow is one output row of a generic period aggregation.
type GroupedRow struct {
	Bucket time.Time `json:"bucket"`
	Group  string    `json:"group,omitempty"`
	Value  float64   `json:"value"`
}

// AggregateByPeriod groups rides by calendar bucket (and optionally by rider
// or team) and folds the metric with the given function (sum, mean, max,
// min). Rows sort by bucket ascending, then value descending.
func AggregateByPeriod(rides []Ride, period Period, groupBy, metric, fn string) ([]GroupedRow, error) {
	switch fn {
	case "sum", "mean", "max", "min":
	default:
		return nil, errors.New("invalid aggregation: " + fn)
	}
	groupKey := func(Ride) string { return "" }
	switch groupBy {
	case "":
	case "rider_name":
		groupKey = func(r Ride) string { return r.Rider }
	case "team_name":
		groupKey = func(r Ride) string { return r.Team }
	default:
		return nil, errors.New("invalid group column: " + groupBy)
	}

	type key struct {
		bucket time.Time
		group  string
	}
	acc := make(map[key]*accumulator)
	for _, r := range rides {
		k := key{Truncate(r.Timestamp, period), groupKey(r)}
		a, ok := acc[k]
		if !ok {
			a = &accumulator{}
			acc[k] = a
		}
		a.add(r.MetricValue(metric))
	}

	rows := make([]GroupedRow, 0, len(acc))
	for k, a := range acc {
		rows = append(rows, GroupedRow{Bucket: k.bucket, Group: k.group, Value: a.apply(fn)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Bucket.Equal(rows[j].Bucket) {
			return rows[i].Bucket.Before(rows[j].Bucket)
		}
		return rows[i].Value > rows[j].Value
	})
	return rows, nil
}

// FilterRides keeps rides whose rider/team contains the given substrings,
// case-insensitively. Empty filters match everything.
func FilterRides(rides []Ride, riderContains, teamContains string) []Ride {
	if riderContains == "" && teamContains == "" {
		return rides
	}
	rc := strings.ToLower(riderContains)
	tc := strings.ToLower(teamContains)
	out := make([]Ride, 0, len(rides))
	for _, r := range rides {
		if rc != "" && !strings.Contains(strings.ToLower(r.Rider), rc) {
			continue
		}
		if tc != "" && !strings.Contains(strings.ToLower(r.Team), tc) {
			continue
		}
		out = append(out, r)
	}
	return out
}
