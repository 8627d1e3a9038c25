// Package tenant manages multi-tenant state: tenants (feed operators) and
// their registered advisory sources, plus the advisories and scores ingested
// for them.
package tenant

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service provides tenant and source management backed by Postgres.
type Service struct {
	db *sql.DB
}

// TenantRow represents a feed operator (one per organization).
type TenantRow struct {
	ID           string
	DisplayName  string
	ContactEmail *string
	CreatedAt    time.Time
}

// SourceRow represents an advisory feed registered by a tenant. Token is the
// per-source ingest credential handed to publishers.
type SourceRow struct {
	ID        string
	TenantID  string
	Name      string
	URL       *string
	Token     string
	CreatedAt time.Time
}

// AdvisoryRow represents one vulnerability record from a feed document.
type AdvisoryRow struct {
	ID          string
	TenantID    string
	SourceID    string
	AdvisoryID  string
	Title       string
	Summary     *string
	Vector      string
	Published   *time.Time
	WithdrawnAt *time.Time
	DocumentRef string
	CreatedAt   time.Time
}

// ScoreRow represents one engine evaluation of an advisory's vector.
type ScoreRow struct {
	ID         string
	TenantID   string
	AdvisoryID string
	Vector     string
	Version    string
	Score      float64
	Rating     string
	Metrics    json.RawMessage
	Subscores  json.RawMessage
	CreatedAt  time.Time
}

// NewService creates a new tenant Service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// CreateTenant creates a new tenant by display name.
func (s *Service) CreateTenant(ctx context.Context, displayName string) (*TenantRow, error) {
	t := &TenantRow{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tenants (display_name)
		 VALUES ($1)
		 RETURNING id, display_name, contact_email, created_at`,
		displayName,
	).Scan(&t.ID, &t.DisplayName, &t.ContactEmail, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return t, nil
}

// GetTenantByName looks up a tenant by display name.
func (s *Service) GetTenantByName(ctx context.Context, name string) (*TenantRow, error) {
	t := &TenantRow{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, contact_email, created_at
		 FROM tenants WHERE display_name = $1`,
		name,
	).Scan(&t.ID, &t.DisplayName, &t.ContactEmail, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get tenant by name %s: %w", name, err)
	}
	return t, nil
}

// UpsertSource creates or updates a source record for a tenant. A fresh
// ingest token is minted only on first insert; re-registering a source keeps
// the token it already has.
func (s *Service) UpsertSource(ctx context.Context, tenantID, name string, url *string) (*SourceRow, error) {
	src := &SourceRow{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO sources (tenant_id, name, url, token)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (tenant_id, name) DO UPDATE
		   SET url = COALESCE(EXCLUDED.url, sources.url)
		 RETURNING id, tenant_id, name, url, token, created_at`,
		tenantID, name, url, uuid.NewString(),
	).Scan(&src.ID, &src.TenantID, &src.Name, &src.URL, &src.Token, &src.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert source %s: %w", name, err)
	}
	return src, nil
}

// EnsureTenantAndSource gets or creates a tenant (by display name) and source.
// Returns tenantID, sourceID, and any error.
func (s *Service) EnsureTenantAndSource(ctx context.Context, tenantName, sourceName string, url *string) (string, string, error) {
	// Get or create tenant
	t, err := s.GetTenantByName(ctx, tenantName)
	if err != nil {
		t, err = s.CreateTenant(ctx, tenantName)
		if err != nil {
			// Could be a race condition; try getting again
			if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
				t, err = s.GetTenantByName(ctx, tenantName)
				if err != nil {
					return "", "", fmt.Errorf("ensure tenant: %w", err)
				}
			} else {
				return "", "", fmt.Errorf("ensure tenant: %w", err)
			}
		}
	}

	// Get or create source
	src, err := s.UpsertSource(ctx, t.ID, sourceName, url)
	if err != nil {
		return "", "", fmt.Errorf("ensure source: %w", err)
	}

	return t.ID, src.ID, nil
}

// GetSourceByID retrieves a source by its ID.
func (s *Service) GetSourceByID(ctx context.Context, sourceID string) (*SourceRow, error) {
	src := &SourceRow{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, url, token, created_at
		 FROM sources WHERE id = $1`,
		sourceID,
	).Scan(&src.ID, &src.TenantID, &src.Name, &src.URL, &src.Token, &src.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get source %s: %w", sourceID, err)
	}
	return src, nil
}

// GetSourceByToken looks up a source by its ingest token.
func (s *Service) GetSourceByToken(ctx context.Context, token string) (*SourceRow, error) {
	src := &SourceRow{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, url, token, created_at
		 FROM sources WHERE token = $1`,
		token,
	).Scan(&src.ID, &src.TenantID, &src.Name, &src.URL, &src.Token, &src.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get source by token: %w", err)
	}
	return src, nil
}

// ListSources returns all sources across all tenants.
func (s *Service) ListSources(ctx context.Context) ([]SourceRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, name, url, token, created_at
		 FROM sources ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []SourceRow
	for rows.Next() {
		var src SourceRow
		if err := rows.Scan(&src.ID, &src.TenantID, &src.Name, &src.URL, &src.Token, &src.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// UpsertAdvisory creates or updates an advisory record for a source. The
// conflict target is the publisher-assigned advisory ID within the source;
// re-publishing a withdrawn advisory clears its tombstone.
func (s *Service) UpsertAdvisory(ctx context.Context, tenantID, sourceID, advisoryID, title string, summary *string, vector string, published *time.Time, documentRef string) (*AdvisoryRow, error) {
	a := &AdvisoryRow{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO advisories (tenant_id, source_id, advisory_id, title, summary, vector, published, document_ref)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (source_id, advisory_id) DO UPDATE
		   SET title = EXCLUDED.title,
		       summary = COALESCE(EXCLUDED.summary, advisories.summary),
		       vector = EXCLUDED.vector,
		       published = COALESCE(EXCLUDED.published, advisories.published),
		       document_ref = EXCLUDED.document_ref,
		       withdrawn_at = NULL
		 RETURNING id, tenant_id, source_id, advisory_id, title, summary, vector, published, withdrawn_at, document_ref, created_at`,
		tenantID, sourceID, advisoryID, title, summary, vector, published, documentRef,
	).Scan(
		&a.ID, &a.TenantID, &a.SourceID, &a.AdvisoryID, &a.Title, &a.Summary,
		&a.Vector, &a.Published, &a.WithdrawnAt, &a.DocumentRef, &a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert advisory %s: %w", advisoryID, err)
	}
	return a, nil
}

// WithdrawAdvisory marks an advisory as withdrawn by its publisher.
func (s *Service) WithdrawAdvisory(ctx context.Context, sourceID, advisoryID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE advisories SET withdrawn_at = now()
		 WHERE source_id = $1 AND advisory_id = $2`,
		sourceID, advisoryID,
	)
	if err != nil {
		return fmt.Errorf("withdraw advisory %s: %w", advisoryID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("withdraw advisory %s: %w", advisoryID, err)
	}
	if n == 0 {
		return fmt.Errorf("withdraw advisory %s: %w", advisoryID, sql.ErrNoRows)
	}
	return nil
}

// ListAdvisoriesBySource returns all advisories for a source.
func (s *Service) ListAdvisoriesBySource(ctx context.Context, sourceID string) ([]AdvisoryRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, source_id, advisory_id, title, summary, vector, published, withdrawn_at, document_ref, created_at
		 FROM advisories WHERE source_id = $1 ORDER BY advisory_id`,
		sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list advisories: %w", err)
	}
	defer rows.Close()

	var advisories []AdvisoryRow
	for rows.Next() {
		var a AdvisoryRow
		if err := rows.Scan(
			&a.ID, &a.TenantID, &a.SourceID, &a.AdvisoryID, &a.Title, &a.Summary,
			&a.Vector, &a.Published, &a.WithdrawnAt, &a.DocumentRef, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan advisory: %w", err)
		}
		advisories = append(advisories, a)
	}
	return advisories, rows.Err()
}

// GetAdvisoryByID returns a single advisory by ID.
func (s *Service) GetAdvisoryByID(ctx context.Context, advisoryID string) (*AdvisoryRow, error) {
	a := &AdvisoryRow{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, source_id, advisory_id, title, summary, vector, published, withdrawn_at, document_ref, created_at
		 FROM advisories WHERE id = $1`,
		advisoryID,
	).Scan(
		&a.ID, &a.TenantID, &a.SourceID, &a.AdvisoryID, &a.Title, &a.Summary,
		&a.Vector, &a.Published, &a.WithdrawnAt, &a.DocumentRef, &a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get advisory %s: %w", advisoryID, err)
	}
	return a, nil
}

// InsertScore records one engine evaluation for an advisory.
func (s *Service) InsertScore(ctx context.Context, tenantID, advisoryID, vector, version string, score float64, rating string, metrics, subscores json.RawMessage) (*ScoreRow, error) {
	sc := &ScoreRow{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO scores (tenant_id, advisory_id, vector, version, score, rating, metrics, subscores)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, tenant_id, advisory_id, vector, version, score, rating, metrics, subscores, created_at`,
		tenantID, advisoryID, vector, version, score, rating, metrics, subscores,
	).Scan(
		&sc.ID, &sc.TenantID, &sc.AdvisoryID, &sc.Vector, &sc.Version,
		&sc.Score, &sc.Rating, &sc.Metrics, &sc.Subscores, &sc.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert score: %w", err)
	}
	return sc, nil
}

// UpdateScore refreshes an existing score row in place, used when the engine
// is re-run over a stored advisory.
func (s *Service) UpdateScore(ctx context.Context, scoreID, vector, version string, score float64, rating string, metrics, subscores json.RawMessage) (*ScoreRow, error) {
	sc := &ScoreRow{}
	err := s.db.QueryRowContext(ctx,
		`UPDATE scores
		 SET vector = $2, version = $3, score = $4, rating = $5, metrics = $6, subscores = $7
		 WHERE id = $1
		 RETURNING id, tenant_id, advisory_id, vector, version, score, rating, metrics, subscores, created_at`,
		scoreID, vector, version, score, rating, metrics, subscores,
	).Scan(
		&sc.ID, &sc.TenantID, &sc.AdvisoryID, &sc.Vector, &sc.Version,
		&sc.Score, &sc.Rating, &sc.Metrics, &sc.Subscores, &sc.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update score %s: %w", scoreID, err)
	}
	return sc, nil
}

// ListScoresByAdvisory returns all scores for an advisory, newest first.
func (s *Service) ListScoresByAdvisory(ctx context.Context, advisoryID string) ([]ScoreRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, advisory_id, vector, version, score, rating, metrics, subscores, created_at
		 FROM scores WHERE advisory_id = $1 ORDER BY created_at DESC`,
		advisoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var scores []ScoreRow
	for rows.Next() {
		var sc ScoreRow
		if err := rows.Scan(
			&sc.ID, &sc.TenantID, &sc.AdvisoryID, &sc.Vector, &sc.Version,
			&sc.Score, &sc.Rating, &sc.Metrics, &sc.Subscores, &sc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// GetScoreByID returns a single score by ID.
func (s *Service) GetScoreByID(ctx context.Context, scoreID string) (*ScoreRow, error) {
	sc := &ScoreRow{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, advisory_id, vector, version, score, rating, metrics, subscores, created_at
		 FROM scores WHERE id = $1`,
		scoreID,
	).Scan(
		&sc.ID, &sc.TenantID, &sc.AdvisoryID, &sc.Vector, &sc.Version,
		&sc.Score, &sc.Rating, &sc.Metrics, &sc.Subscores, &sc.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get score %s: %w", scoreID, err)
	}
	return sc, nil
}

// LatestScoresBySource returns the most recent score per advisory for a
// source, feeding the severity summary endpoint.
func (s *Service) LatestScoresBySource(ctx context.Context, sourceID string) ([]ScoreRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT ON (sc.advisory_id)
		        sc.id, sc.tenant_id, sc.advisory_id, sc.vector, sc.version, sc.score, sc.rating, sc.metrics, sc.subscores, sc.created_at
		 FROM scores sc
		 JOIN advisories a ON a.id = sc.advisory_id
		 WHERE a.source_id = $1
		 ORDER BY sc.advisory_id, sc.created_at DESC`,
		sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("latest scores for source %s: %w", sourceID, err)
	}
	defer rows.Close()

	var scores []ScoreRow
	for rows.Next() {
		var sc ScoreRow
		if err := rows.Scan(
			&sc.ID, &sc.TenantID, &sc.AdvisoryID, &sc.Vector, &sc.Version,
			&sc.Score, &sc.Rating, &sc.Metrics, &sc.Subscores, &sc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}
