package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/NdanyuzweGentil/Cycling-Dashboard/templates"
)

// Server wires the dataset, store and loader behind the HTTP surface.
type Server struct {
	log    *zap.Logger
	cfg    Config
	store  *Store
	data   *Dataset
	loader *Loader
}

func NewServer(log *zap.Logger, cfg Config, store *Store, data *Dataset) *Server {
	return &Server{
		log:    log,
		cfg:    cfg,
		store:  store,
		data:   data,
		loader: NewLoader(cfg.Aliases),
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.homeHandler)
	mux.HandleFunc("GET /results", s.resultsHandler)
	mux.HandleFunc("POST /upload", s.uploadHandler)
	mux.HandleFunc("GET /api/data/{period}", s.dataHandler)
	mux.HandleFunc("GET /api/stats", s.statsHandler)
	mux.HandleFunc("GET /api/riders", s.ridersHandler)
	mux.HandleFunc("GET /api/team-comparison", s.teamComparisonHandler)
	mux.HandleFunc("GET /api/leaderboard/{period}", s.leaderboardHandler)
	mux.HandleFunc("GET /api/news", s.newsHandler)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	rides := s.data.Rides()
	component := templates.Home(templates.HomeData{
		Stats:       toViewStats(Summarize(rides)),
		RecordCount: len(rides),
		Source:      s.data.Source(),
	})
	templ.Handler(component).ServeHTTP(w, r)
}

func (s *Server) resultsHandler(w http.ResponseWriter, r *http.Request) {
	templ.Handler(templates.Results(templates.SeasonResults)).ServeHTTP(w, r)
}

func toViewStats(st SummaryStats) templates.Stats {
	return templates.Stats{
		TotalDistance:  st.TotalDistance,
		TotalDuration:  st.TotalDuration,
		AvgPower:       st.AvgPower,
		AvgHeartRate:   st.AvgHeartRate,
		TotalElevation: st.TotalElevation,
	}
}

// uploadHandler accepts a multipart `file` field holding a CSV or Excel ride
// log, replaces the served dataset and rewrites the sqlite snapshot.
// Optional `map_<canonical>` form fields pin a canonical column to an exact
// header name when the alias guesser would pick wrong.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error processing file: %v", err))
		return
	}

	loader := s.loader
	if overrides := formMapping(r); len(overrides) > 0 {
		merged := make(map[string][]string, len(overrides)+len(s.cfg.Aliases))
		for canonical, names := range s.cfg.Aliases {
			merged[canonical] = names
		}
		for canonical, name := range overrides {
			merged[canonical] = append([]string{name}, merged[canonical]...)
		}
		loader = NewLoader(merged)
	}

	rides, err := loader.Load(raw, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		s.log.Warn("Upload rejected",
			zap.String("filename", header.Filename),
			zap.Error(err))
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error processing file: %v", err))
		return
	}

	s.data.Replace(rides, "upload")
	if err := s.store.ReplaceRides(rides); err != nil {
		// Dataset already serves the upload; losing the snapshot only costs
		// restart durability.
		s.log.Error("Failed to persist upload", zap.Error(err))
	}

	s.log.Info("Upload accepted",
		zap.String("filename", header.Filename),
		zap.Int("rides", len(rides)))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   Summarize(rides),
		"riders":  RiderSummaries(rides),
		"message": fmt.Sprintf("Successfully uploaded %d records", len(rides)),
	})
}

func formMapping(r *http.Request) map[string]string {
	out := make(map[string]string)
	for _, canonical := range canonicalOrder {
		if v := r.FormValue("map_" + canonical); v != "" {
			out[canonical] = v
		}
	}
	return out
}

func (s *Server) dataHandler(w http.ResponseWriter, r *http.Request) {
	period := ParsePeriod(r.PathValue("period"))
	rides := FilterRides(s.data.Rides(),
		r.URL.Query().Get("rider"),
		r.URL.Query().Get("team"))
	writeJSON(w, http.StatusOK, BuildChartData(rides, period))
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Summarize(s.data.Rides()))
}

func (s *Server) ridersHandler(w http.ResponseWriter, r *http.Request) {
	riders := RiderSummaries(s.data.Rides())
	if riders == nil {
		riders = []RiderSummary{}
	}
	writeJSON(w, http.StatusOK, riders)
}

func (s *Server) teamComparisonHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CompareTeams(s.data.Rides()))
}

func (s *Server) leaderboardHandler(w http.ResponseWriter, r *http.Request) {
	// Period is validated for parity with the data endpoint; the board
	// itself ranks the whole dataset.
	_ = ParsePeriod(r.PathValue("period"))
	lb := BuildLeaderboard(s.data.Rides())
	if lb.Riders == nil {
		lb.Riders = []RiderRank{}
	}
	if lb.Teams == nil {
		lb.Teams = []TeamRank{}
	}
	writeJSON(w, http.StatusOK, lb)
}

func (s *Server) newsHandler(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListNews()
	if err != nil {
		s.log.Error("Failed to list news", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error loading news")
		return
	}
	if items == nil {
		items = []NewsItem{}
	}
	writeJSON(w, http.StatusOK, items)
}
