package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyAuthNoopWhenUnset(t *testing.T) {
	h := APIKeyAuth("")(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/sources", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAPIKeyAuthRejects(t *testing.T) {
	h := APIKeyAuth("sk-test")(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/sources", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/sources", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", rec.Code)
	}
}

func TestAPIKeyAuthAccepts(t *testing.T) {
	h := APIKeyAuth("sk-test")(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/sources", nil)
	req.Header.Set("X-API-Key", "sk-test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(okHandler())

	req := httptest.NewRequest("OPTIONS", "/api/v1/score", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin header")
	}
}

func TestSourceTokenExtraction(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/ingest", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	if got := sourceToken(req); got != "tok-123" {
		t.Errorf("bearer token = %q, want tok-123", got)
	}

	req = httptest.NewRequest("POST", "/api/v1/ingest", nil)
	req.Header.Set("X-Source-Token", "tok-456")
	if got := sourceToken(req); got != "tok-456" {
		t.Errorf("header token = %q, want tok-456", got)
	}

	req = httptest.NewRequest("POST", "/api/v1/ingest", nil)
	if got := sourceToken(req); got != "" {
		t.Errorf("no token = %q, want empty", got)
	}
}
