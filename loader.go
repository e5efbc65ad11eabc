package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Canonical column names and the header aliases that resolve to them.
// Headers are normalized (lowercased, runs of non-alphanumerics collapsed
// to underscores) before lookup, so "Heart Rate (BPM)" matches "heart_rate_bpm".
var defaultAliases = map[string][]string{
	"timestamp":        {"timestamp", "time", "date", "datetime", "start_time", "start"},
	"rider_name":       {"rider", "rider_name", "athlete", "athlete_name", "name"},
	"team_name":        {"team", "team_name", "club"},
	"distance_km":      {"distance_km", "distance", "km"},
	"duration_sec":     {"duration_sec", "seconds", "time_s", "elapsed_time", "moving_time"},
	"power_watts":      {"power", "avg_power", "power_watts", "np", "normalized_power"},
	"heart_rate_bpm":   {"hr", "bpm", "heart_rate", "heart_rate_bpm"},
	"elevation_gain_m": {"elevation", "elevation_gain", "elev_gain_m", "ascent", "total_ascent"},
}

// Resolution order keeps header claims deterministic when a column could
// satisfy more than one canonical name.
var canonicalOrder = []string{
	"timestamp", "rider_name", "team_name", "distance_km",
	"duration_sec", "power_watts", "heart_rate_bpm", "elevation_gain_m",
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeHeader collapses a raw header into its lookup form.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = nonAlnum.ReplaceAllString(h, "_")
	return strings.Trim(h, "_")
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/2006",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseExcelSerial converts an Excel serial date number (days since
// 1899-12-30). Only consulted for workbook uploads, where date-typed cells
// surface as raw serials.
func parseExcelSerial(s string) (time.Time, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(v, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseNumeric is lenient like pandas to_numeric(errors="coerce"):
// anything unparseable comes back as NaN.
func parseNumeric(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Loader turns uploaded CSV/Excel bytes into rides. Extra aliases (from the
// config file or the upload form) take precedence over the built-in table.
type Loader struct {
	aliases map[string][]string
}

func NewLoader(extraAliases map[string][]string) *Loader {
	merged := make(map[string][]string, len(defaultAliases))
	for canonical, names := range defaultAliases {
		// User aliases are consulted first within each canonical column.
		merged[canonical] = append(append([]string{}, extraAliases[canonical]...), names...)
	}
	return &Loader{aliases: merged}
}

var excelMIMEs = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel": true,
}

// Load parses an uploaded file into rides. Format is chosen by filename
// extension, then declared MIME; when neither settles it, CSV is tried
// first and Excel second.
func (l *Loader) Load(data []byte, filename, mime string) ([]Ride, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
		rows, err := readExcel(data)
		if err != nil {
			return nil, fmt.Errorf("bad file format: %w", err)
		}
		return l.fromRows(rows, true)
	case strings.HasSuffix(lower, ".csv"):
		rows, err := readCSV(data)
		if err != nil {
			return nil, fmt.Errorf("bad file format: %w", err)
		}
		return l.fromRows(rows, false)
	}

	if excelMIMEs[mime] || strings.Contains(mime, "excel") || strings.Contains(mime, "spreadsheet") {
		rows, err := readExcel(data)
		if err != nil {
			return nil, fmt.Errorf("bad file format: %w", err)
		}
		return l.fromRows(rows, true)
	}

	if rows, err := readCSV(data); err == nil {
		return l.fromRows(rows, false)
	}
	rows, err := readExcel(data)
	if err != nil {
		return nil, errors.New("bad file format: expected CSV or Excel")
	}
	return l.fromRows(rows, true)
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty file")
	}
	return rows, nil
}

func readExcel(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	// Raw values, so date-typed cells come through as serial numbers
	// instead of locale-styled strings no layout matches.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty sheet")
	}
	return rows, nil
}

// fromRows maps a header row plus data rows onto rides. Rows without a
// parseable timestamp are dropped; missing rider/team columns default every
// row to "Unknown". excelDates enables the serial-number fallback for
// timestamps, which only makes sense for workbook cells.
func (l *Loader) fromRows(rows [][]string, excelDates bool) ([]Ride, error) {
	if len(rows) < 2 {
		return nil, errors.New("file has no data rows")
	}

	header := rows[0]
	colFor := l.resolveColumns(header)
	if _, ok := colFor["timestamp"]; !ok {
		return nil, errors.New("no timestamp column recognized")
	}

	cell := func(row []string, canonical string) (string, bool) {
		idx, ok := colFor[canonical]
		if !ok || idx >= len(row) {
			return "", false
		}
		return row[idx], true
	}

	rides := make([]Ride, 0, len(rows)-1)
	for _, row := range rows[1:] {
		raw, _ := cell(row, "timestamp")
		ts, ok := parseTimestamp(raw)
		if !ok && excelDates {
			ts, ok = parseExcelSerial(raw)
		}
		if !ok {
			continue
		}

		ride := Ride{
			ID:             uuid.NewString(),
			Timestamp:      ts,
			Rider:          "Unknown",
			Team:           "Unknown",
			DistanceKM:     math.NaN(),
			DurationSec:    math.NaN(),
			PowerWatts:     math.NaN(),
			HeartRateBPM:   math.NaN(),
			ElevationGainM: math.NaN(),
			SpeedKMH:       math.NaN(),
		}
		if v, ok := cell(row, "rider_name"); ok && strings.TrimSpace(v) != "" {
			ride.Rider = strings.TrimSpace(v)
		}
		if v, ok := cell(row, "team_name"); ok && strings.TrimSpace(v) != "" {
			ride.Team = strings.TrimSpace(v)
		}
		if v, ok := cell(row, "distance_km"); ok {
			ride.DistanceKM = parseNumeric(v)
		}
		if v, ok := cell(row, "duration_sec"); ok {
			ride.DurationSec = parseNumeric(v)
		}
		if v, ok := cell(row, "power_watts"); ok {
			ride.PowerWatts = parseNumeric(v)
		}
		if v, ok := cell(row, "heart_rate_bpm"); ok {
			ride.HeartRateBPM = parseNumeric(v)
		}
		if v, ok := cell(row, "elevation_gain_m"); ok {
			ride.ElevationGainM = parseNumeric(v)
		}
		if ride.DurationSec > 0 && !math.IsNaN(ride.DistanceKM) {
			ride.SpeedKMH = ride.DistanceKM / (ride.DurationSec / 3600.0)
		}
		rides = append(rides, ride)
	}

	if len(rides) == 0 {
		return nil, errors.New("no rows with a parseable timestamp")
	}
	return rides, nil
}

// resolveColumns returns canonical column -> index in the header row.
// The first alias hit wins per canonical column; a header column is only
// claimed once.
func (l *Loader) resolveColumns(header []string) map[string]int {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		n := NormalizeHeader(h)
		if _, seen := byName[n]; !seen && n != "" {
			byName[n] = i
		}
	}

	claimed := make(map[int]bool)
	out := make(map[string]int)
	for _, canonical := range canonicalOrder {
		for _, alias := range l.aliases[canonical] {
			if idx, ok := byName[NormalizeHeader(alias)]; ok && !claimed[idx] {
				out[canonical] = idx
				claimed[idx] = true
				break
			}
		}
	}
	return out
}
