package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

var sampleRiders = []struct {
	name string
	team string
}{
	{"Alice Mukamana", "APR Red"},
	{"Eric Niyonsaba", "APR Red"},
	{"Jean Bosco Habimana", "APR Red"},
	{"Claudine Uwase", "APR Blue"},
	{"Samuel Mugisha", "APR Blue"},
	{"Divine Ingabire", "APR Blue"},
	{"Patrick Byukusenge", "APR Development"},
	{"Valens Ndayisenga", "APR Development"},
}

// GenerateSampleRides builds the deterministic demo dataset served before
// any upload: three rides a week per rider over 2025, with plausible
// distance, power, heart rate and climbing numbers.
func GenerateSampleRides() []Ride {
	rng := rand.New(rand.NewSource(42))
	start := time.Date(2025, time.January, 6, 7, 0, 0, 0, time.UTC) // a Monday

	var rides []Ride
	for week := 0; week < 40; week++ {
		for _, day := range []int{0, 2, 5} { // Mon, Wed, Sat
			for _, rider := range sampleRiders {
				ts := start.AddDate(0, 0, week*7+day).Add(time.Duration(rng.Intn(5)) * time.Hour)
				distance := clampF(rng.NormFloat64()*25+70, 20, 180)
				speed := clampF(rng.NormFloat64()*3+33, 24, 45)
				ride := Ride{
					ID:             uuid.NewString(),
					Timestamp:      ts,
					Rider:          rider.name,
					Team:           rider.team,
					DistanceKM:     round1(distance),
					DurationSec:    math.Round(distance / speed * 3600),
					PowerWatts:     math.Round(clampF(rng.NormFloat64()*25+215, 150, 320)),
					HeartRateBPM:   math.Round(clampF(rng.NormFloat64()*10+148, 110, 190)),
					ElevationGainM: math.Round(clampF(rng.NormFloat64()*300+800, 50, 2500)),
				}
				ride.SpeedKMH = ride.DistanceKM / (ride.DurationSec / 3600.0)
				rides = append(rides, ride)
			}
		}
	}
	return rides
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// WriteSampleCSV writes the demo dataset as a CSV the loader round-trips,
// used by the `sample` subcommand and handy as an upload smoke file.
func WriteSampleCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "rider_name", "team_name", "distance_km", "duration_sec", "power_watts", "heart_rate_bpm", "elevation_gain_m"}); err != nil {
		return err
	}
	for _, r := range GenerateSampleRides() {
		rec := []string{
			r.Timestamp.Format(time.RFC3339),
			r.Rider,
			r.Team,
			fmt.Sprintf("%.1f", r.DistanceKM),
			fmt.Sprintf("%.0f", r.DurationSec),
			fmt.Sprintf("%.0f", r.PowerWatts),
			fmt.Sprintf("%.0f", r.HeartRateBPM),
			fmt.Sprintf("%.0f", r.ElevationGainM),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
