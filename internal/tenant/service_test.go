package tenant

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTenantRowStruct(t *testing.T) {
	// Verify TenantRow struct fields are accessible and correctly typed.
	row := TenantRow{
		ID:          "tenant-uuid-1",
		DisplayName: "acme-security",
	}

	if row.ID != "tenant-uuid-1" {
		t.Errorf("ID = %q, want %q", row.ID, "tenant-uuid-1")
	}
	if row.DisplayName != "acme-security" {
		t.Errorf("DisplayName = %q, want %q", row.DisplayName, "acme-security")
	}
	if row.ContactEmail != nil {
		t.Errorf("ContactEmail = %v, want nil", row.ContactEmail)
	}
}

func TestSourceRowStruct(t *testing.T) {
	url := "https://feeds.example.com/nvd.json"
	src := SourceRow{
		ID:       "source-uuid-1",
		TenantID: "tenant-uuid-1",
		Name:     "nvd",
		URL:      &url,
		Token:    "b2c7a6de-3f41-4a9d-9c5a-58f2ab1f0e77",
	}

	if src.Name != "nvd" {
		t.Errorf("Name = %q, want %q", src.Name, "nvd")
	}
	if *src.URL != url {
		t.Errorf("URL = %q, want %q", *src.URL, url)
	}
	if src.Token == "" {
		t.Error("Token should not be empty")
	}
}

func TestNewService(t *testing.T) {
	// NewService should not panic with nil db (it just stores the reference).
	svc := NewService(nil)
	if svc == nil {
		t.Fatal("NewService returned nil")
	}
}

func TestServiceSQL_WellFormed(t *testing.T) {
	// Since the tenant.Service methods all require a real Postgres database,
	// we verify the SQL queries are well-formed by checking that the service
	// can be constructed and that the methods exist with the expected signatures.
	// Full integration tests would require a test database.

	// Verify the Service type embeds a *sql.DB
	svc := &Service{}
	if svc.db != nil {
		t.Error("zero-value Service should have nil db")
	}

	// Verify method signatures exist (compile-time check primarily,
	// but also verifies the method set).
	_ = svc.EnsureTenantAndSource
	_ = svc.GetSourceByToken
	_ = svc.ListSources
	_ = svc.UpsertAdvisory
	_ = svc.WithdrawAdvisory
	_ = svc.ListAdvisoriesBySource
	_ = svc.GetAdvisoryByID
	_ = svc.InsertScore
	_ = svc.UpdateScore
	_ = svc.ListScoresByAdvisory
	_ = svc.GetScoreByID
	_ = svc.LatestScoresBySource
}

func TestAdvisoryRowOptionalFields(t *testing.T) {
	// Test that optional pointer fields work correctly.
	summary := "Remote code execution in the parser."
	published := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)

	a := AdvisoryRow{
		ID:         "a-1",
		TenantID:   "t-1",
		SourceID:   "s-1",
		AdvisoryID: "CVE-2024-12345",
		Title:      "Parser RCE",
		Summary:    &summary,
		Vector:     "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H",
		Published:  &published,
	}

	if *a.Summary != summary {
		t.Errorf("Summary = %q, want %q", *a.Summary, summary)
	}
	if !a.Published.Equal(published) {
		t.Errorf("Published = %v, want %v", a.Published, published)
	}
	if a.WithdrawnAt != nil {
		t.Errorf("WithdrawnAt = %v, want nil", a.WithdrawnAt)
	}
}

func TestScoreRowJSONFields(t *testing.T) {
	tests := []struct {
		name    string
		metrics json.RawMessage
		isNil   bool
	}{
		{
			name:    "with resolved metrics",
			metrics: json.RawMessage(`{"AV":"N","AC":"L"}`),
			isNil:   false,
		},
		{
			name:    "without resolved metrics",
			metrics: nil,
			isNil:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sc := ScoreRow{
				ID:         "sc-1",
				TenantID:   "t-1",
				AdvisoryID: "a-1",
				Vector:     "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H",
				Version:    "3.1",
				Score:      9.8,
				Rating:     "Critical",
				Metrics:    tc.metrics,
			}

			if (sc.Metrics == nil) != tc.isNil {
				t.Errorf("Metrics nil = %v, want %v", sc.Metrics == nil, tc.isNil)
			}
			if sc.Score != 9.8 {
				t.Errorf("Score = %v, want 9.8", sc.Score)
			}
		})
	}
}
