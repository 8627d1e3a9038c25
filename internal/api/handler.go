// Package api implements the hosted sevscope REST API.
// It provides scoring, ingest, and read endpoints backed by Postgres and
// blob storage.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/sevscope/sevscope/internal/ingestion"
	"github.com/sevscope/sevscope/internal/tenant"
)

// Handler is the top-level API handler for the hosted sevscope service.
type Handler struct {
	tenantSvc    *tenant.Service
	ingestionSvc *ingestion.Service
	cache        *DocumentCache
}

// NewHandler creates a new API handler.
func NewHandler(tenantSvc *tenant.Service, ingestionSvc *ingestion.Service, cache *DocumentCache) *Handler {
	if cache == nil {
		cache = NewDocumentCacheFromEnv()
	}
	return &Handler{
		tenantSvc:    tenantSvc,
		ingestionSvc: ingestionSvc,
		cache:        cache,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Write endpoints (auth-protected)
	mux.HandleFunc("POST /api/v1/score", h.handleScore)
	mux.HandleFunc("POST /api/v1/ingest", h.handleIngest)
	mux.HandleFunc("POST /api/v1/admin/rescore", h.handleRescore)

	// Read endpoints
	mux.HandleFunc("GET /api/v1/sources", h.handleListSources)
	mux.HandleFunc("GET /api/v1/sources/{sourceID}/advisories", h.handleListAdvisories)
	mux.HandleFunc("GET /api/v1/sources/{sourceID}/summary", h.handleSourceSummary)
	mux.HandleFunc("GET /api/v1/advisories/{advisoryID}", h.handleGetAdvisory)
	mux.HandleFunc("GET /api/v1/advisories/{advisoryID}/scores", h.handleListScores)
	mux.HandleFunc("GET /api/v1/scores/{scoreID}", h.handleGetScore)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
