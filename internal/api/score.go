package api

import (
	"encoding/json"
	"net/http"

	"github.com/sevscope/sevscope/pkg/cvss"
	"github.com/sevscope/sevscope/pkg/vector"
)

// scoreRequest is the JSON body for POST /api/v1/score. Callers send either
// a single vector or a list.
type scoreRequest struct {
	Vector  string   `json:"vector,omitempty"`
	Vectors []string `json:"vectors,omitempty"`
}

type scoreItem struct {
	Vector    string            `json:"vector"`
	Result    *cvss.ScoreResult `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	ErrorKind string            `json:"error_kind,omitempty"`
}

type scoreResponse struct {
	Total   int         `json:"total"`
	Scored  int         `json:"scored"`
	Failed  int         `json:"failed"`
	Results []scoreItem `json:"results"`
}

// handleScore scores one or more vector strings. Invalid vectors produce
// per-item errors with the typed kind; the request only gets a 422 when
// nothing could be scored.
func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	vectors := req.Vectors
	if req.Vector != "" {
		vectors = append([]string{req.Vector}, vectors...)
	}
	if len(vectors) == 0 {
		writeError(w, http.StatusBadRequest, "vector or vectors is required")
		return
	}

	resp := scoreResponse{Total: len(vectors)}
	for _, v := range vectors {
		item := scoreItem{Vector: v}
		result, err := cvss.Score(v)
		if err != nil {
			item.Error = err.Error()
			if kind, ok := vector.KindOf(err); ok {
				item.ErrorKind = kind.String()
			}
			resp.Failed++
			vectorsScored.WithLabelValues("unknown", "error").Inc()
		} else {
			item.Result = result
			resp.Scored++
			vectorsScored.WithLabelValues(result.Version.String(), "ok").Inc()
		}
		resp.Results = append(resp.Results, item)
	}

	status := http.StatusOK
	if resp.Scored == 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}
