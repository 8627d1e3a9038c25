package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/sevscope/sevscope/internal/ingestion"
)

type rescoreRequest struct {
	SourceID string `json:"source_id"` // optional filter
}

type rescoreResponse struct {
	Rescored int                        `json:"rescored"`
	Errors   int                        `json:"errors"`
	Sources  []*ingestion.RescoreResult `json:"sources"`
}

// handleRescore re-runs the scoring engine over stored advisories, either
// for one source or for all of them, refreshing the persisted score rows.
func (h *Handler) handleRescore(w http.ResponseWriter, r *http.Request) {
	var req rescoreRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	ctx := r.Context()

	var sourceIDs []string
	if req.SourceID != "" {
		sourceIDs = []string{req.SourceID}
	} else {
		sources, err := h.tenantSvc.ListSources(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list sources: "+err.Error())
			return
		}
		for _, src := range sources {
			sourceIDs = append(sourceIDs, src.ID)
		}
	}

	resp := rescoreResponse{Sources: []*ingestion.RescoreResult{}}
	for _, id := range sourceIDs {
		res, err := h.ingestionSvc.RescoreSource(ctx, id)
		if err != nil {
			log.Printf("rescore source %s: %v", id, err)
			resp.Errors++
			continue
		}
		resp.Rescored += res.Updated + res.Inserted
		resp.Errors += res.Failed
		resp.Sources = append(resp.Sources, res)
	}

	writeJSON(w, http.StatusOK, resp)
}
