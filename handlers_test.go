package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, rides []Ride) *Server {
	t.Helper()
	store := newTestStore(t)
	require.NoError(t, store.SeedNews())
	cfg := Config{MaxUploadBytes: defaultMaxUploadBytes}
	return NewServer(zap.NewNop(), cfg, store, NewDataset(rides, "sample"))
}

func doJSON(t *testing.T, mux *http.ServeMux, method, target string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestHomeAndResultsPages(t *testing.T) {
	mux := newTestServer(t, fixtureRides()).Routes()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Performance Dashboard")
	assert.Contains(t, rec.Body.String(), "4 records loaded")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Race Results")
	assert.Contains(t, rec.Body.String(), "Regional Championship")
}

func TestStatsEndpoint(t *testing.T) {
	mux := newTestServer(t, fixtureRides()).Routes()

	var stats SummaryStats
	rec := doJSON(t, mux, http.MethodGet, "/api/stats", &stats)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 220.0, stats.TotalDistance, 1e-9)
	assert.InDelta(t, 220.0, stats.AvgPower, 1e-9)
}

func TestDataEndpoint(t *testing.T) {
	mux := newTestServer(t, fixtureRides()).Routes()

	var d ChartData
	rec := doJSON(t, mux, http.MethodGet, "/api/data/month", &d)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, d.Labels, 12)
	assert.InDelta(t, 100.0, d.Distance[0], 1e-9)
	assert.Equal(t, []string{"Red", "Blue"}, d.Teams)

	t.Run("unknown period falls back to month", func(t *testing.T) {
		var d ChartData
		doJSON(t, mux, http.MethodGet, "/api/data/fortnight", &d)
		assert.Len(t, d.Labels, 12)
	})

	t.Run("team filter", func(t *testing.T) {
		var d ChartData
		doJSON(t, mux, http.MethodGet, "/api/data/month?team=blue", &d)
		assert.Equal(t, []string{"Blue"}, d.Teams)
		assert.InDelta(t, 100.0, d.Distance[1], 1e-9) // Carol's February ride
		assert.Zero(t, d.Distance[0])
	})
}

func TestRidersEndpoint(t *testing.T) {
	mux := newTestServer(t, fixtureRides()).Routes()

	var riders []RiderSummary
	rec := doJSON(t, mux, http.MethodGet, "/api/riders", &riders)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, riders, 3)
	assert.Equal(t, "Alice", riders[0].Name)

	t.Run("empty dataset yields empty array", func(t *testing.T) {
		mux := newTestServer(t, nil).Routes()
		rec := doJSON(t, mux, http.MethodGet, "/api/riders", nil)
		assert.Equal(t, "[]\n", rec.Body.String())
	})
}

func TestTeamComparisonEndpoint(t *testing.T) {
	mux := newTestServer(t, fixtureRides()).Routes()

	var cmp TeamComparison
	rec := doJSON(t, mux, http.MethodGet, "/api/team-comparison", &cmp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Red", "Blue"}, cmp.Teams)
	assert.Equal(t, 2, cmp.Metrics["Red"].RiderCount)
}

func TestLeaderboardEndpoint(t *testing.T) {
	mux := newTestServer(t, fixtureRides()).Routes()

	var lb Leaderboard
	rec := doJSON(t, mux, http.MethodGet, "/api/leaderboard/week", &lb)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, lb.Riders)
	assert.Equal(t, "Carol", lb.Riders[0].Name)
	require.NotEmpty(t, lb.Teams)
	assert.Equal(t, "Red", lb.Teams[0].Name)
}

func TestNewsEndpoint(t *testing.T) {
	mux := newTestServer(t, nil).Routes()

	var items []NewsItem
	rec := doJSON(t, mux, http.MethodGet, "/api/news", &items)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, items, 4)
	assert.Equal(t, "Achievement", items[0].Category)
}

func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestUploadReplacesDataset(t *testing.T) {
	srv := newTestServer(t, fixtureRides())
	mux := srv.Routes()

	csvData := []byte("timestamp,rider,team,distance\n" +
		"2025-05-01,Dora,Green,120\n" +
		"2025-05-02,Dora,Green,80\n")
	body, contentType := multipartUpload(t, "may.csv", csvData, nil)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool           `json:"success"`
		Stats   SummaryStats   `json:"stats"`
		Riders  []RiderSummary `json:"riders"`
		Message string         `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Successfully uploaded 2 records", resp.Message)
	assert.InDelta(t, 200.0, resp.Stats.TotalDistance, 1e-9)
	require.Len(t, resp.Riders, 1)
	assert.Equal(t, "Dora", resp.Riders[0].Name)

	// Dataset swapped and snapshot persisted.
	assert.Equal(t, "upload", srv.data.Source())
	assert.Len(t, srv.data.Rides(), 2)
	stored, err := srv.store.LoadRides()
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestUploadColumnMappingOverride(t *testing.T) {
	srv := newTestServer(t, nil)
	mux := srv.Routes()

	csvData := []byte("when,who,kilometres\n2025-05-01,Dora,120\n")
	body, contentType := multipartUpload(t, "custom.csv", csvData, map[string]string{
		"map_timestamp":   "when",
		"map_rider_name":  "who",
		"map_distance_km": "kilometres",
	})

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rides := srv.data.Rides()
	require.Len(t, rides, 1)
	assert.Equal(t, "Dora", rides[0].Rider)
	assert.Equal(t, 120.0, rides[0].DistanceKM)
}

func TestUploadErrors(t *testing.T) {
	srv := newTestServer(t, fixtureRides())
	mux := srv.Routes()

	t.Run("no file field", func(t *testing.T) {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		require.NoError(t, w.WriteField("note", "hello"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/upload", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No file uploaded")
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("plain"))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unparseable file", func(t *testing.T) {
		body, contentType := multipartUpload(t, "rides.csv", []byte("rider,distance\nAlice,10\n"), nil)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Error processing file")

		// Rejected upload leaves the served dataset alone.
		assert.Equal(t, "sample", srv.data.Source())
		assert.Len(t, srv.data.Rides(), 4)
	})

	t.Run("over the size cap", func(t *testing.T) {
		store := newTestStore(t)
		cfg := Config{MaxUploadBytes: 512}
		small := NewServer(zap.NewNop(), cfg, store, NewDataset(fixtureRides(), "sample"))
		mux := small.Routes()

		big := []byte("timestamp,rider,distance\n")
		for len(big) < 4096 {
			big = append(big, "2025-05-01,Dora,120\n"...)
		}
		body, contentType := multipartUpload(t, "big.csv", big, nil)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		assert.Equal(t, "sample", small.data.Source())
		assert.Len(t, small.data.Rides(), 4)
	})
}
