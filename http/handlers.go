package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"exohab/catalog"
	"exohab/monitoring"
	"exohab/render"
)

// RegisterHandlers 注册所有路由
func (s *Server) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /planet/{name}", s.handlePlanetPage)
	mux.HandleFunc("GET /planet/{name}/image.png", s.handlePlanetImage)
	mux.HandleFunc("GET /create", s.handleCreatePage)
	mux.Handle("GET /static/", staticHandler())

	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("GET /api/ws/predict", s.handlePredictWS)

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/planets", s.handlePlanets)
	mux.HandleFunc("GET /api/planets/{name}", s.handlePlanet)
	mux.HandleFunc("GET /api/training/log", s.handleTrainingLog)
	mux.HandleFunc("GET /api/predictions", s.handlePredictions)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
}

// planetView is the JSON shape of one record.
type planetView struct {
	Name          string   `json:"name"`
	Radius        *float64 `json:"radius"`
	EqTemp        *float64 `json:"temp"`
	Insolation    *float64 `json:"flux"`
	StellarTemp   *float64 `json:"star_temp"`
	StellarRadius *float64 `json:"star_radius"`
	Distance      *float64 `json:"distance"`
	ImageURL      string   `json:"image_url"`
}

func newPlanetView(r catalog.Record) planetView {
	return planetView{
		Name:          r.Name,
		Radius:        r.Radius,
		EqTemp:        r.EqTemp,
		Insolation:    r.Insolation,
		StellarTemp:   r.StellarTemp,
		StellarRadius: r.StellarRadius,
		Distance:      r.Distance,
		ImageURL:      imageURL(r.Name),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"model_loaded": s.deps.Predictor.Available(),
		"planets":      s.deps.Catalog.Current().Len(),
	})
}

// handlePlanets lists the display subset, or every record with ?all=true.
func (s *Server) handlePlanets(w http.ResponseWriter, r *http.Request) {
	snapshot := s.deps.Catalog.Current()
	records := snapshot.Display()
	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); all {
		records = snapshot.All()
	}

	views := make([]planetView, 0, len(records))
	for _, rec := range records {
		views = append(views, newPlanetView(rec))
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handlePlanet(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.deps.Catalog.Current().Lookup(r.PathValue("name"))
	if !ok {
		respondError(w, http.StatusNotFound, "planet not found")
		return
	}
	respondJSON(w, http.StatusOK, newPlanetView(rec))
}

func (s *Server) handlePlanetImage(w http.ResponseWriter, r *http.Request) {
	if s.deps.Renderer == nil {
		respondError(w, http.StatusNotFound, "rendering disabled")
		return
	}
	rec, ok := s.deps.Catalog.Current().Lookup(r.PathValue("name"))
	if !ok {
		respondError(w, http.StatusNotFound, "planet not found")
		return
	}

	data, err := s.deps.Renderer.Image(rec.Name, rec.Radius, rec.EqTemp)
	if err != nil {
		if errors.Is(err, render.ErrMissingData) {
			s.deps.Metrics.Incr(monitoring.ImagesMissingData)
			respondError(w, http.StatusNotFound, "planet has no image data")
			return
		}
		s.deps.Metrics.Incr(monitoring.ImagesFailed)
		s.logger.Error("render planet", zap.String("planet", rec.Name), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "render failed")
		return
	}
	s.deps.Metrics.Incr(monitoring.ImagesRendered)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

func (s *Server) handleTrainingLog(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		respondError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	logs, err := s.deps.Store.LoadTrainingLog()
	if err != nil {
		s.logger.Error("load training log", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load training log")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		respondError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.deps.Store.QueryPredictions(limit)
	if err != nil {
		s.logger.Error("query predictions", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load predictions")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// handleMetrics serves the counters as JSON, or as Prometheus text with
// ?format=prometheus.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "prometheus" {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.Write([]byte(s.deps.Metrics.ExportPrometheus()))
		return
	}
	respondJSON(w, http.StatusOK, s.deps.Metrics.Snapshot())
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
