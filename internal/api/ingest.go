package api

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// handleIngest handles POST /api/v1/ingest, one feed document upload for a
// source. The source is identified by its ingest token, sent as a Bearer
// token or in the X-Source-Token header.
func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	token := sourceToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "source token required")
		return
	}

	ctx := r.Context()
	source, err := h.tenantSvc.GetSourceByToken(ctx, token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unknown source token")
		return
	}

	// Support gzip-compressed request bodies
	var body io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid gzip body: "+err.Error())
			return
		}
		defer gz.Close()
		body = gz
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "empty feed document")
		return
	}

	res, err := h.ingestionSvc.IngestDocument(ctx, source, raw)
	if err != nil {
		if strings.Contains(err.Error(), "parse document") {
			writeError(w, http.StatusBadRequest, "ingest failed: "+err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, "ingest failed: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// sourceToken extracts the per-source ingest token from the request.
func sourceToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.Header.Get("X-Source-Token")
}
