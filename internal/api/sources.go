package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sevscope/sevscope/internal/tenant"
)

// sourceResponse deliberately omits the ingest token; tokens are only
// returned to the registering publisher.
type sourceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url,omitempty"`
	CreatedAt string `json:"created_at"`
}

type advisoryResponse struct {
	ID         string `json:"id"`
	SourceID   string `json:"source_id"`
	AdvisoryID string `json:"advisory_id"`
	Title      string `json:"title,omitempty"`
	Summary    string `json:"summary,omitempty"`
	Vector     string `json:"vector"`
	Published  string `json:"published,omitempty"`
	Withdrawn  bool   `json:"withdrawn"`
	CreatedAt  string `json:"created_at"`
}

type scoreRowResponse struct {
	ID         string          `json:"id"`
	AdvisoryID string          `json:"advisory_id"`
	Vector     string          `json:"vector"`
	Version    string          `json:"version"`
	Score      float64         `json:"score"`
	Rating     string          `json:"rating"`
	Metrics    json.RawMessage `json:"metrics,omitempty"`
	Subscores  json.RawMessage `json:"subscores,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

const timestampLayout = "2006-01-02T15:04:05Z"

func sourceRowToResponse(src *tenant.SourceRow) sourceResponse {
	resp := sourceResponse{
		ID:        src.ID,
		Name:      src.Name,
		CreatedAt: src.CreatedAt.Format(timestampLayout),
	}
	if src.URL != nil {
		resp.URL = *src.URL
	}
	return resp
}

func advisoryRowToResponse(a *tenant.AdvisoryRow) advisoryResponse {
	resp := advisoryResponse{
		ID:         a.ID,
		SourceID:   a.SourceID,
		AdvisoryID: a.AdvisoryID,
		Title:      a.Title,
		Vector:     a.Vector,
		Withdrawn:  a.WithdrawnAt != nil,
		CreatedAt:  a.CreatedAt.Format(timestampLayout),
	}
	if a.Summary != nil {
		resp.Summary = *a.Summary
	}
	if a.Published != nil {
		resp.Published = a.Published.UTC().Format(time.RFC3339)
	}
	return resp
}

func scoreRowToResponse(sc *tenant.ScoreRow) scoreRowResponse {
	return scoreRowResponse{
		ID:         sc.ID,
		AdvisoryID: sc.AdvisoryID,
		Vector:     sc.Vector,
		Version:    sc.Version,
		Score:      sc.Score,
		Rating:     sc.Rating,
		Metrics:    sc.Metrics,
		Subscores:  sc.Subscores,
		CreatedAt:  sc.CreatedAt.Format(timestampLayout),
	}
}

func (h *Handler) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.tenantSvc.ListSources(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, []sourceResponse{})
		return
	}

	var result []sourceResponse
	for i := range sources {
		result = append(result, sourceRowToResponse(&sources[i]))
	}

	if result == nil {
		result = []sourceResponse{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListAdvisories(w http.ResponseWriter, r *http.Request) {
	sourceID := r.PathValue("sourceID")

	advisories, err := h.tenantSvc.ListAdvisoriesBySource(r.Context(), sourceID)
	if err != nil {
		writeJSON(w, http.StatusOK, []advisoryResponse{})
		return
	}

	var result []advisoryResponse
	for i := range advisories {
		result = append(result, advisoryRowToResponse(&advisories[i]))
	}

	if result == nil {
		result = []advisoryResponse{}
	}
	writeJSON(w, http.StatusOK, result)
}

type summaryResponse struct {
	SourceID   string         `json:"source_id"`
	Advisories int            `json:"advisories"`
	BySeverity map[string]int `json:"by_severity"`
	MaxScore   float64        `json:"max_score"`
}

// handleSourceSummary builds a severity histogram over the latest score of
// every advisory in a source.
func (h *Handler) handleSourceSummary(w http.ResponseWriter, r *http.Request) {
	sourceID := r.PathValue("sourceID")

	scores, err := h.tenantSvc.LatestScoresBySource(r.Context(), sourceID)
	if err != nil {
		writeError(w, http.StatusNotFound, "source not found")
		return
	}

	summary := summaryResponse{
		SourceID:   sourceID,
		Advisories: len(scores),
		BySeverity: make(map[string]int),
	}
	for _, sc := range scores {
		summary.BySeverity[sc.Rating]++
		if sc.Score > summary.MaxScore {
			summary.MaxScore = sc.Score
		}
	}

	writeJSON(w, http.StatusOK, summary)
}

type advisoryDetailResponse struct {
	advisoryResponse
	SourceRecord json.RawMessage `json:"source_record,omitempty"`
}

// handleGetAdvisory returns one advisory, enriched with the original record
// from the archived feed document when it can still be loaded.
func (h *Handler) handleGetAdvisory(w http.ResponseWriter, r *http.Request) {
	advisoryID := r.PathValue("advisoryID")

	adv, err := h.tenantSvc.GetAdvisoryByID(r.Context(), advisoryID)
	if err != nil {
		writeError(w, http.StatusNotFound, "advisory not found")
		return
	}

	detail := advisoryDetailResponse{advisoryResponse: advisoryRowToResponse(adv)}
	if doc, err := h.loadDocument(r.Context(), adv.TenantID, adv.DocumentRef); err == nil {
		for i := range doc.Records {
			if doc.Records[i].ID == adv.AdvisoryID {
				if raw, err := json.Marshal(doc.Records[i]); err == nil {
					detail.SourceRecord = raw
				}
				break
			}
		}
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleListScores(w http.ResponseWriter, r *http.Request) {
	advisoryID := r.PathValue("advisoryID")

	scores, err := h.tenantSvc.ListScoresByAdvisory(r.Context(), advisoryID)
	if err != nil {
		writeJSON(w, http.StatusOK, []scoreRowResponse{})
		return
	}

	var result []scoreRowResponse
	for i := range scores {
		result = append(result, scoreRowToResponse(&scores[i]))
	}

	if result == nil {
		result = []scoreRowResponse{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetScore(w http.ResponseWriter, r *http.Request) {
	scoreID := r.PathValue("scoreID")

	sc, err := h.tenantSvc.GetScoreByID(r.Context(), scoreID)
	if err != nil {
		writeError(w, http.StatusNotFound, "score not found")
		return
	}

	writeJSON(w, http.StatusOK, scoreRowToResponse(sc))
}
