package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sevscope/sevscope/pkg/feed"
)

func computeHMAC(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("webhook-secret-123")
	payload := []byte(`{"advisory_id":"CVE-2024-0001"}`)

	tests := []struct {
		name      string
		payload   []byte
		signature string
		secret    []byte
		wantErr   bool
	}{
		{
			name:      "valid signature",
			payload:   payload,
			signature: computeHMAC(payload, secret),
			secret:    secret,
			wantErr:   false,
		},
		{
			name:      "wrong secret",
			payload:   payload,
			signature: computeHMAC(payload, []byte("wrong-secret")),
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "tampered payload",
			payload:   []byte(`{"advisory_id":"CVE-2024-9999"}`),
			signature: computeHMAC(payload, secret),
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "missing prefix",
			payload:   payload,
			signature: hex.EncodeToString([]byte("no-prefix")),
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "invalid hex",
			payload:   payload,
			signature: "sha256=not-hex-data!!",
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "empty signature",
			payload:   payload,
			signature: "",
			secret:    secret,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(tt.payload, tt.signature, tt.secret)
			if (err != nil) != tt.wantErr {
				t.Errorf("VerifySignature() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseEvent_AdvisoryPublished(t *testing.T) {
	published := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	event := AdvisoryPublishedEvent{
		SourceToken: "tok-abc123",
		Record: feed.Record{
			ID:        "CVE-2024-0001",
			Title:     "Remote code execution in parser",
			Vector:    "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H",
			Published: published,
		},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	parsed, err := ParseEvent("advisory_published", payload)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}

	got, ok := parsed.(*AdvisoryPublishedEvent)
	if !ok {
		t.Fatalf("ParseEvent() returned %T, want *AdvisoryPublishedEvent", parsed)
	}
	if got.SourceToken != "tok-abc123" {
		t.Errorf("SourceToken = %q, want %q", got.SourceToken, "tok-abc123")
	}
	if got.Record.ID != "CVE-2024-0001" {
		t.Errorf("Record.ID = %q, want %q", got.Record.ID, "CVE-2024-0001")
	}
	if got.Record.Vector != "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H" {
		t.Errorf("Record.Vector = %q", got.Record.Vector)
	}
	if !got.Record.Published.Equal(published) {
		t.Errorf("Record.Published = %v, want %v", got.Record.Published, published)
	}
}

func TestParseEvent_AdvisoryWithdrawn(t *testing.T) {
	payload := []byte(`{"source_token":"tok-abc123","advisory_id":"CVE-2024-0002"}`)

	parsed, err := ParseEvent("advisory_withdrawn", payload)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}

	got, ok := parsed.(*AdvisoryWithdrawnEvent)
	if !ok {
		t.Fatalf("ParseEvent() returned %T, want *AdvisoryWithdrawnEvent", parsed)
	}
	if got.AdvisoryID != "CVE-2024-0002" {
		t.Errorf("AdvisoryID = %q, want %q", got.AdvisoryID, "CVE-2024-0002")
	}
}

func TestParseEvent_SourceRegistered(t *testing.T) {
	payload := []byte(`{"tenant":"acme","name":"acme-feed","url":"https://feeds.acme.example/advisories.json"}`)

	parsed, err := ParseEvent("source_registered", payload)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}

	got, ok := parsed.(*SourceRegisteredEvent)
	if !ok {
		t.Fatalf("ParseEvent() returned %T, want *SourceRegisteredEvent", parsed)
	}
	if got.Tenant != "acme" {
		t.Errorf("Tenant = %q, want %q", got.Tenant, "acme")
	}
	if got.Name != "acme-feed" {
		t.Errorf("Name = %q, want %q", got.Name, "acme-feed")
	}
	if got.URL != "https://feeds.acme.example/advisories.json" {
		t.Errorf("URL = %q", got.URL)
	}
}

func TestParseEvent_UnsupportedType(t *testing.T) {
	_, err := ParseEvent("advisory_starred", []byte(`{}`))
	if err == nil {
		t.Fatal("ParseEvent() expected error for unsupported event type")
	}
}

func TestParseEvent_InvalidJSON(t *testing.T) {
	eventTypes := []string{"advisory_published", "advisory_withdrawn", "source_registered"}

	for _, eventType := range eventTypes {
		t.Run(eventType, func(t *testing.T) {
			_, err := ParseEvent(eventType, []byte(`{invalid json`))
			if err == nil {
				t.Errorf("ParseEvent(%q) expected error for invalid JSON", eventType)
			}
		})
	}
}

func TestServeHTTP_RejectsBadRequests(t *testing.T) {
	secret := []byte("webhook-secret-123")
	h := NewHandler(secret, nil, nil)
	payload := []byte(`{"tenant":"acme","name":"feed"}`)

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/webhooks/publisher", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})

	t.Run("invalid signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/publisher", bytes.NewReader(payload))
		req.Header.Set("X-Sevscope-Signature-256", computeHMAC(payload, []byte("wrong")))
		req.Header.Set("X-Sevscope-Event", "source_registered")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("missing event header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/publisher", bytes.NewReader(payload))
		req.Header.Set("X-Sevscope-Signature-256", computeHMAC(payload, secret))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("unsupported event", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/publisher", bytes.NewReader(payload))
		req.Header.Set("X-Sevscope-Signature-256", computeHMAC(payload, secret))
		req.Header.Set("X-Sevscope-Event", "advisory_starred")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}
