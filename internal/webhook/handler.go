package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/sevscope/sevscope/internal/ingestion"
	"github.com/sevscope/sevscope/internal/tenant"
)

// Handler processes incoming publisher webhook events.
type Handler struct {
	webhookSecret []byte
	tenants       *tenant.Service
	ingestions    *ingestion.Service
}

// NewHandler creates a new webhook Handler.
func NewHandler(webhookSecret []byte, tenants *tenant.Service, ingestions *ingestion.Service) *Handler {
	return &Handler{
		webhookSecret: webhookSecret,
		tenants:       tenants,
		ingestions:    ingestions,
	}
}

// ServeHTTP implements http.Handler for the webhook endpoint.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, 10<<20)) // 10 MB limit
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Sevscope-Signature-256")
	if err := VerifySignature(payload, signature, h.webhookSecret); err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	eventType := r.Header.Get("X-Sevscope-Event")
	if eventType == "" {
		http.Error(w, "missing event type header", http.StatusBadRequest)
		return
	}

	event, err := ParseEvent(eventType, payload)
	if err != nil {
		log.Printf("webhook parse failed for event %q: %v", eventType, err)
		http.Error(w, "unsupported event", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	switch e := event.(type) {
	case *AdvisoryPublishedEvent:
		if err := h.handleAdvisoryPublished(ctx, e); err != nil {
			log.Printf("handle advisory_published: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	case *AdvisoryWithdrawnEvent:
		if err := h.handleAdvisoryWithdrawn(ctx, e); err != nil {
			log.Printf("handle advisory_withdrawn: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	case *SourceRegisteredEvent:
		if err := h.handleSourceRegistered(ctx, e); err != nil {
			log.Printf("handle source_registered: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

// handleAdvisoryPublished ingests the advisory carried in the event as a
// single-record document for the source identified by the token.
func (h *Handler) handleAdvisoryPublished(ctx context.Context, e *AdvisoryPublishedEvent) error {
	if e.Record.ID == "" {
		return fmt.Errorf("advisory_published event without record id")
	}

	src, err := h.tenants.GetSourceByToken(ctx, e.SourceToken)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}

	raw, err := json.Marshal(e.Record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	res, err := h.ingestions.IngestDocument(ctx, src, raw)
	if err != nil {
		return fmt.Errorf("ingest record: %w", err)
	}

	log.Printf("webhook published %s via %s: %d scored, %d failed", e.Record.ID, src.Name, res.Scored, res.Failed)
	return nil
}

// handleAdvisoryWithdrawn tombstones the advisory so it drops out of
// summaries and rescoring.
func (h *Handler) handleAdvisoryWithdrawn(ctx context.Context, e *AdvisoryWithdrawnEvent) error {
	if e.AdvisoryID == "" {
		return fmt.Errorf("advisory_withdrawn event without advisory id")
	}

	src, err := h.tenants.GetSourceByToken(ctx, e.SourceToken)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}

	if err := h.tenants.WithdrawAdvisory(ctx, src.ID, e.AdvisoryID); err != nil {
		return fmt.Errorf("withdraw advisory: %w", err)
	}

	log.Printf("webhook withdrew %s from %s", e.AdvisoryID, src.Name)
	return nil
}

func (h *Handler) handleSourceRegistered(ctx context.Context, e *SourceRegisteredEvent) error {
	if e.Tenant == "" || e.Name == "" {
		return fmt.Errorf("source_registered event missing tenant or name")
	}

	var url *string
	if e.URL != "" {
		url = &e.URL
	}

	tenantID, sourceID, err := h.tenants.EnsureTenantAndSource(ctx, e.Tenant, e.Name, url)
	if err != nil {
		return fmt.Errorf("ensure tenant and source: %w", err)
	}

	log.Printf("webhook registered source %s (%s) for tenant %s", e.Name, sourceID, tenantID)
	return nil
}
