package main

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// Store persists the current ride snapshot and the news feed so a restart
// serves the last uploaded dataset instead of reverting to the sample.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS rides (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			rider_name TEXT NOT NULL,
			team_name TEXT NOT NULL,
			distance_km REAL,
			duration_sec REAL,
			power_watts REAL,
			heart_rate_bpm REAL,
			elevation_gain_m REAL,
			speed_kmh REAL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS news (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			date TEXT NOT NULL,
			excerpt TEXT NOT NULL,
			category TEXT NOT NULL
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func toNull(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// ReplaceRides swaps the ride snapshot for a new upload in one transaction.
func (s *Store) ReplaceRides(rides []Ride) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM rides`); err != nil {
		return fmt.Errorf("failed to clear rides: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO rides
		(id, timestamp, rider_name, team_name, distance_km, duration_sec, power_watts, heart_rate_bpm, elevation_gain_m, speed_kmh)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rides {
		_, err := stmt.Exec(
			r.ID, r.Timestamp.Format(time.RFC3339), r.Rider, r.Team,
			toNull(r.DistanceKM), toNull(r.DurationSec), toNull(r.PowerWatts),
			toNull(r.HeartRateBPM), toNull(r.ElevationGainM), toNull(r.SpeedKMH),
		)
		if err != nil {
			return fmt.Errorf("failed to insert ride %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// LoadRides returns the persisted snapshot in timestamp order.
func (s *Store) LoadRides() ([]Ride, error) {
	rows, err := s.db.Query(`SELECT id, timestamp, rider_name, team_name,
		distance_km, duration_sec, power_watts, heart_rate_bpm, elevation_gain_m, speed_kmh
		FROM rides ORDER BY timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rides: %w", err)
	}
	defer rows.Close()

	var rides []Ride
	for rows.Next() {
		var r Ride
		var ts string
		var dist, dur, power, hr, elev, speed sql.NullFloat64
		if err := rows.Scan(&r.ID, &ts, &r.Rider, &r.Team, &dist, &dur, &power, &hr, &elev, &speed); err != nil {
			return nil, fmt.Errorf("failed to scan ride: %w", err)
		}
		r.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ride timestamp %q: %w", ts, err)
		}
		r.DistanceKM = fromNull(dist)
		r.DurationSec = fromNull(dur)
		r.PowerWatts = fromNull(power)
		r.HeartRateBPM = fromNull(hr)
		r.ElevationGainM = fromNull(elev)
		r.SpeedKMH = fromNull(speed)
		rides = append(rides, r)
	}
	return rides, rows.Err()
}

// NewsItem is one entry on the news feed.
type NewsItem struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Excerpt  string `json:"excerpt"`
	Category string `json:"category"`
}

var stockNews = []NewsItem{
	{Title: "Team Victory at Regional Championship", Date: "2025-03-15", Category: "Achievement",
		Excerpt: "Our team secured first place in the regional cycling championship with outstanding performances from all riders."},
	{Title: "New Training Program Launched", Date: "2025-03-10", Category: "Training",
		Excerpt: "We've introduced a new high-intensity training program to improve our riders' performance metrics."},
	{Title: "New Rider Joins Team", Date: "2025-03-05", Category: "Team",
		Excerpt: "We're excited to welcome our newest team member who brings fresh energy and talent to our cycling squad."},
	{Title: "Performance Analytics Update", Date: "2025-02-28", Category: "Technology",
		Excerpt: "Our new dashboard provides real-time insights into rider performance across all training sessions."},
}

// SeedNews inserts the stock items once, on first boot with an empty table.
func (s *Store) SeedNews() error {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM news`).Scan(&n); err != nil {
		return fmt.Errorf("failed to count news: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, item := range stockNews {
		_, err := s.db.Exec(`INSERT INTO news (title, date, excerpt, category) VALUES (?, ?, ?, ?)`,
			item.Title, item.Date, item.Excerpt, item.Category)
		if err != nil {
			return fmt.Errorf("failed to seed news: %w", err)
		}
	}
	return nil
}

// ListNews returns news items, newest first.
func (s *Store) ListNews() ([]NewsItem, error) {
	rows, err := s.db.Query(`SELECT id, title, date, excerpt, category FROM news ORDER BY date DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()

	var items []NewsItem
	for rows.Next() {
		var it NewsItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Date, &it.Excerpt, &it.Category); err != nil {
			return nil, fmt.Errorf("failed to scan news item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
