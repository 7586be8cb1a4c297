// Package server exposes the planner over HTTP: the form, the rendered report,
// its downloads and a JSON API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/export/pdf"
	"unipath-planner/internal/export/slides"
	"unipath-planner/internal/models"
	"unipath-planner/internal/planner"
	"unipath-planner/internal/render/screen"
)

// Options wires the server to its collaborators. GeneratorConfigured is
// consulted by /ready; nil means always configured.
type Options struct {
	Planner             *planner.Service
	Catalog             *models.Catalog
	Screen              *screen.Renderer
	PDF                 *pdf.Exporter
	Slides              *slides.Exporter
	AllowedOrigins      []string
	GeneratorConfigured func() bool
	Logger              logger.Logger
}

type Server struct {
	planner    *planner.Service
	catalog    *models.Catalog
	screen     *screen.Renderer
	pdf        *pdf.Exporter
	slides     *slides.Exporter
	origins    []string
	configured func() bool
	logger     logger.Logger
	now        func() time.Time
}

func New(opts Options) *Server {
	s := &Server{
		planner:    opts.Planner,
		catalog:    opts.Catalog,
		screen:     opts.Screen,
		pdf:        opts.PDF,
		slides:     opts.Slides,
		origins:    opts.AllowedOrigins,
		configured: opts.GeneratorConfigured,
		logger:     opts.Logger.WithFields(map[string]interface{}{"component": "http"}),
		now:        time.Now,
	}
	if s.catalog == nil {
		s.catalog = models.DefaultCatalog()
	}
	if s.screen == nil {
		s.screen = screen.MustNew()
	}
	if s.configured == nil {
		s.configured = func() bool { return true }
	}
	return s
}

// Handler returns the routed handler with CORS and request metrics applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /plans", s.handleFormSubmit)
	mux.HandleFunc("GET /plans/{id}", s.handleScreen)
	mux.HandleFunc("GET /plans/{id}/report.pdf", s.handlePDF)
	mux.HandleFunc("GET /plans/{id}/report.pptx", s.handlePPTX)
	mux.HandleFunc("GET /products/{key}", s.handleProduct)
	mux.HandleFunc("GET /products/{key}/brochure.pptx", s.handleBrochure)

	mux.HandleFunc("POST /api/plans", s.handleCreatePlan)
	mux.HandleFunc("GET /api/plans/{id}", s.handleGetPlan)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.corsHandler().Handler(s.instrument(mux))
}

func (s *Server) corsHandler() *cors.Cors {
	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   s.now().Format(time.RFC3339),
	})
}

// handleReady fails when the store does not answer or no generation
// credential is configured.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"time": s.now().Format(time.RFC3339)}
	code := http.StatusOK

	if err := s.planner.Ready(ctx); err != nil {
		status["store"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	if !s.configured() {
		status["generator"] = "credential not configured"
		code = http.StatusServiceUnavailable
	}

	if code == http.StatusOK {
		status["status"] = "ready"
	} else {
		status["status"] = "not ready"
	}
	writeJSON(w, code, status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
