// Package notify pushes high-severity advisory alerts to an external
// tracker over HTTP.
package notify

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sevscope/sevscope/internal/tenant"
	"github.com/sevscope/sevscope/pkg/cvss"
)

// AlertPublisher posts alert payloads to a tracker endpoint, authenticating
// with a short-lived RS256 JWT signed by a locally held key.
type AlertPublisher struct {
	endpoint   string
	issuer     string
	privateKey *rsa.PrivateKey
	minLevel   int
	httpClient *http.Client
}

// NewAlertPublisher creates a publisher from the tracker endpoint, the JWT
// issuer name, a PEM-encoded RSA private key and the minimum rating that
// triggers an alert.
func NewAlertPublisher(endpoint, issuer string, privateKeyPEM []byte, minRating string) (*AlertPublisher, error) {
	block, _ := pem.Decode(privateKeyPEM)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	rating, err := cvss.ParseRating(minRating)
	if err != nil {
		return nil, fmt.Errorf("alert threshold: %w", err)
	}

	return &AlertPublisher{
		endpoint:   endpoint,
		issuer:     issuer,
		privateKey: key,
		minLevel:   rating.Level(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// alertPayload is the JSON body posted to the tracker.
type alertPayload struct {
	AdvisoryID string  `json:"advisory_id"`
	Title      string  `json:"title"`
	Vector     string  `json:"vector"`
	Version    string  `json:"version"`
	Score      float64 `json:"score"`
	Rating     string  `json:"rating"`
	Published  string  `json:"published,omitempty"`
}

// Publish sends an alert when the score's rating clears the configured
// threshold. Lower-rated advisories are dropped silently.
func (p *AlertPublisher) Publish(ctx context.Context, adv *tenant.AdvisoryRow, result *cvss.ScoreResult) error {
	if result.Rating.Level() < p.minLevel {
		return nil
	}

	payload := alertPayload{
		AdvisoryID: adv.AdvisoryID,
		Title:      adv.Title,
		Vector:     result.Vector,
		Version:    string(result.Version),
		Score:      result.Score,
		Rating:     string(result.Rating),
	}
	if adv.Published != nil {
		payload.Published = adv.Published.UTC().Format(time.RFC3339)
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	token, err := p.generateJWT()
	if err != nil {
		return fmt.Errorf("generate JWT: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tracker API error %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// generateJWT creates a short-lived JWT for tracker authentication.
func (p *AlertPublisher) generateJWT() (string, error) {
	now := time.Now()
	// iat is backdated 60s to tolerate clock skew on the tracker side
	iat := now.Add(-60 * time.Second)
	exp := now.Add(5 * time.Minute)

	return signJWT(p.issuer, iat, exp, p.privateKey)
}
