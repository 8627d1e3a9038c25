package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sevscope/sevscope/internal/tenant"
	"github.com/sevscope/sevscope/pkg/cvss"
	"github.com/sevscope/sevscope/pkg/feed"
)

// Alerter abstracts severity alerting so the ingestion package does not
// depend on a concrete publisher.
type Alerter interface {
	Publish(ctx context.Context, adv *tenant.AdvisoryRow, result *cvss.ScoreResult) error
}

// Service orchestrates the ingestion pipeline.
type Service struct {
	tenants *tenant.Service
	storage StorageClient
	alerts  Alerter
}

// NewService creates a new ingestion Service. alerts may be nil when
// severity alerting is not configured.
func NewService(tenants *tenant.Service, storage StorageClient, alerts Alerter) *Service {
	return &Service{
		tenants: tenants,
		storage: storage,
		alerts:  alerts,
	}
}

// Storage exposes the blob storage client for API read paths.
func (s *Service) Storage() StorageClient {
	return s.storage
}

// IngestResult summarizes one processed feed document.
type IngestResult struct {
	DocumentRef string   `json:"document_ref"`
	Source      string   `json:"source"`
	Total       int      `json:"total"`
	Scored      int      `json:"scored"`
	Failed      int      `json:"failed"`
	Errors      []string `json:"errors,omitempty"`
}

// IngestDocument runs the full pipeline for one raw feed document:
// archive the payload, parse it, upsert each advisory, and score each
// vector. A record with an invalid vector keeps its advisory row and is
// counted in Failed; one bad record never fails the document.
func (s *Service) IngestDocument(ctx context.Context, source *tenant.SourceRow, raw []byte) (*IngestResult, error) {
	// 1. Archive the raw payload before touching it
	documentID := uuid.NewString()
	if err := s.storage.PutDocument(ctx, source.TenantID, documentID, raw); err != nil {
		return nil, fmt.Errorf("archive document: %w", err)
	}
	documentRef := fmt.Sprintf("documents/%s/%s.json", source.TenantID, documentID)

	// 2. Parse
	doc, err := feed.ParseDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	// 3. Upsert and score each record
	res := &IngestResult{
		DocumentRef: documentRef,
		Source:      source.Name,
		Total:       len(doc.Records),
	}
	for _, rec := range doc.Records {
		if rec.ID == "" {
			res.Failed++
			res.Errors = append(res.Errors, "record without id skipped")
			continue
		}

		adv, err := s.tenants.UpsertAdvisory(ctx, source.TenantID, source.ID, rec.ID, rec.Title,
			nilIfEmpty(rec.Summary), rec.Vector, publishedAt(rec), documentRef)
		if err != nil {
			return nil, fmt.Errorf("store advisory: %w", err)
		}

		result, err := cvss.Score(rec.Vector)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", rec.ID, err))
			continue
		}

		if err := s.storeScore(ctx, adv, result); err != nil {
			return nil, err
		}
		res.Scored++
	}

	log.Printf("ingest %s: %d records, %d scored, %d failed", source.Name, res.Total, res.Scored, res.Failed)
	return res, nil
}

// RescoreResult summarizes a re-run of the engine over stored advisories.
type RescoreResult struct {
	Source   string `json:"source"`
	Total    int    `json:"total"`
	Updated  int    `json:"updated"`
	Inserted int    `json:"inserted"`
	Failed   int    `json:"failed"`
}

// RescoreSource re-runs the engine over every stored advisory for a
// source, refreshing the latest score row in place and inserting one
// where an advisory has never been scored. Used after engine upgrades.
// Withdrawn advisories are skipped.
func (s *Service) RescoreSource(ctx context.Context, sourceID string) (*RescoreResult, error) {
	src, err := s.tenants.GetSourceByID(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("rescore: %w", err)
	}

	advisories, err := s.tenants.ListAdvisoriesBySource(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("rescore: %w", err)
	}

	latestRows, err := s.tenants.LatestScoresBySource(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("rescore: %w", err)
	}
	latest := make(map[string]tenant.ScoreRow, len(latestRows))
	for _, row := range latestRows {
		latest[row.AdvisoryID] = row
	}

	res := &RescoreResult{Source: src.Name}
	for _, adv := range advisories {
		if adv.WithdrawnAt != nil {
			continue
		}
		res.Total++

		result, err := cvss.Score(adv.Vector)
		if err != nil {
			res.Failed++
			continue
		}

		metricsJSON, subscoresJSON, err := marshalScore(result)
		if err != nil {
			return nil, err
		}

		if row, ok := latest[adv.ID]; ok {
			if _, err := s.tenants.UpdateScore(ctx, row.ID, result.Vector, result.Version.String(),
				result.Score, string(result.Rating), metricsJSON, subscoresJSON); err != nil {
				return nil, fmt.Errorf("refresh score: %w", err)
			}
			res.Updated++
		} else {
			if _, err := s.tenants.InsertScore(ctx, adv.TenantID, adv.ID, result.Vector, result.Version.String(),
				result.Score, string(result.Rating), metricsJSON, subscoresJSON); err != nil {
				return nil, fmt.Errorf("store score: %w", err)
			}
			res.Inserted++
		}
	}

	log.Printf("rescore %s: %d advisories, %d updated, %d inserted, %d failed",
		src.Name, res.Total, res.Updated, res.Inserted, res.Failed)
	return res, nil
}

func (s *Service) storeScore(ctx context.Context, adv *tenant.AdvisoryRow, result *cvss.ScoreResult) error {
	metricsJSON, subscoresJSON, err := marshalScore(result)
	if err != nil {
		return err
	}

	if _, err := s.tenants.InsertScore(ctx, adv.TenantID, adv.ID, result.Vector, result.Version.String(),
		result.Score, string(result.Rating), metricsJSON, subscoresJSON); err != nil {
		return fmt.Errorf("store score: %w", err)
	}

	if s.alerts != nil {
		// Alerting is best effort and never fails the ingest.
		if err := s.alerts.Publish(ctx, adv, result); err != nil {
			log.Printf("alert for %s failed: %v", adv.AdvisoryID, err)
		}
	}
	return nil
}

// subscores is the JSONB payload persisted alongside each score row.
type subscores struct {
	Impact             float64 `json:"impact,omitempty"`
	Exploitability     float64 `json:"exploitability,omitempty"`
	TemporalScore      float64 `json:"temporal_score,omitempty"`
	EnvironmentalScore float64 `json:"environmental_score,omitempty"`
	MacroVector        string  `json:"macro_vector,omitempty"`
}

func marshalScore(result *cvss.ScoreResult) (json.RawMessage, json.RawMessage, error) {
	metricsJSON, err := json.Marshal(result.Metrics)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal metrics: %w", err)
	}
	subscoresJSON, err := json.Marshal(subscores{
		Impact:             result.Impact,
		Exploitability:     result.Exploitability,
		TemporalScore:      result.TemporalScore,
		EnvironmentalScore: result.EnvironmentalScore,
		MacroVector:        result.MacroVector,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("marshal subscores: %w", err)
	}
	return metricsJSON, subscoresJSON, nil
}

func publishedAt(rec feed.Record) *time.Time {
	if rec.Published.IsZero() {
		return nil
	}
	t := rec.Published
	return &t
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
