package feed_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sevscope/sevscope/pkg/cvss"
	"github.com/sevscope/sevscope/pkg/feed"
)

func TestParseDocumentObject(t *testing.T) {
	data := []byte(`{
		"source": "nvd",
		"records": [
			{"id": "CVE-2024-0001", "vector": "CVSS:3.1/AV:N/AC:L/PR:H/UI:N/S:U/C:L/I:L/A:N"},
			{"id": "CVE-2024-0002", "vector": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"}
		]
	}`)

	doc, err := feed.ParseDocument(data)
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	if doc.Source != "nvd" {
		t.Errorf("Source = %q, want nvd", doc.Source)
	}
	if len(doc.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(doc.Records))
	}
	if doc.Records[1].ID != "CVE-2024-0002" {
		t.Errorf("second record ID = %q", doc.Records[1].ID)
	}
}

func TestParseDocumentArray(t *testing.T) {
	data := []byte(`[
		{"id": "GHSA-aaaa", "vector": "CVSS:3.1/AV:L/AC:L/PR:L/UI:N/S:U/C:H/I:N/A:N"},
		{"id": "GHSA-bbbb", "vector": "CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N"}
	]`)

	doc, err := feed.ParseDocument(data)
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	if doc.Source != "" {
		t.Errorf("bare array should carry no source, got %q", doc.Source)
	}
	if len(doc.Records) != 2 {
		t.Errorf("expected 2 records, got %d", len(doc.Records))
	}
}

func TestParseDocumentNDJSON(t *testing.T) {
	lines := []string{
		`{"id": "CVE-2024-1000", "vector": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"}`,
		``,
		`{"id": "CVE-2024-1001", "vector": "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:C/C:H/I:N/A:N"}`,
		`{"id": "CVE-2024-1002", "vector": "not-a-vector"}`,
	}

	doc, err := feed.ParseDocument([]byte(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	if len(doc.Records) != 3 {
		t.Fatalf("expected 3 records (blank line skipped), got %d", len(doc.Records))
	}
	if doc.Records[2].Vector != "not-a-vector" {
		t.Errorf("third record vector = %q", doc.Records[2].Vector)
	}
}

func TestParseDocumentSingleRecord(t *testing.T) {
	data := []byte(`{"id": "CVE-2024-7777", "vector": "CVSS:3.1/AV:N/AC:L/PR:H/UI:N/S:U/C:L/I:L/A:N"}`)

	doc, err := feed.ParseDocument(data)
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	if len(doc.Records) != 1 || doc.Records[0].ID != "CVE-2024-7777" {
		t.Errorf("expected single record CVE-2024-7777, got %+v", doc.Records)
	}
}

func TestParseDocumentPrettyPrintedObject(t *testing.T) {
	// Indented JSON spans lines; it must not be mistaken for NDJSON.
	data := []byte("{\n  \"source\": \"osv\",\n  \"records\": []\n}\n")

	doc, err := feed.ParseDocument(data)
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	if doc.Source != "osv" {
		t.Errorf("Source = %q, want osv", doc.Source)
	}
	if len(doc.Records) != 0 {
		t.Errorf("expected no records, got %d", len(doc.Records))
	}
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"whitespace only", "  \n\t "},
		{"not json", "vector,score\nCVSS:3.1,9.8"},
		{"bad array", `[{"id": "x"`},
		{"bad ndjson line", "{\"id\": \"a\", \"vector\": \"v\"}\n{\"id\": }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := feed.ParseDocument([]byte(tt.data)); err == nil {
				t.Errorf("ParseDocument(%q) succeeded, want error", tt.data)
			}
		})
	}
}

func TestBuildReport(t *testing.T) {
	doc := &feed.Document{
		Source: "nvd",
		Records: []feed.Record{
			{ID: "CVE-2024-0001", Vector: "CVSS:3.1/AV:N/AC:L/PR:H/UI:N/S:U/C:L/I:L/A:N"},
			{ID: "CVE-2024-0002", Vector: "CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N"},
			{ID: "CVE-2024-0003", Vector: "CVSS:3.1/AV:N/AC:L/PR:H/UI:N/S:U/C:L/I:L"},
		},
	}

	report := feed.BuildReport(doc)

	if report.Source != "nvd" {
		t.Errorf("Source = %q, want nvd", report.Source)
	}
	if report.Total != 3 || report.Scored != 2 || report.Failed != 1 {
		t.Errorf("tallies = %d/%d/%d, want 3/2/1", report.Total, report.Scored, report.Failed)
	}
	if len(report.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(report.Rows))
	}

	if report.Rows[0].Result == nil || report.Rows[0].Result.Score != 3.8 {
		t.Errorf("row 0 result = %+v, want score 3.8", report.Rows[0].Result)
	}
	if report.Rows[2].Error == "" {
		t.Error("row 2 should carry the validation error")
	}
	if report.Rows[2].Result != nil {
		t.Error("row 2 should have no result")
	}

	if got := report.BySeverity[cvss.RatingLow]; got != 1 {
		t.Errorf("BySeverity[Low] = %d, want 1", got)
	}
	if got := report.BySeverity[cvss.RatingCritical]; got != 1 {
		t.Errorf("BySeverity[Critical] = %d, want 1", got)
	}
	if got := report.MaxRating(); got != cvss.RatingCritical {
		t.Errorf("MaxRating() = %s, want Critical", got)
	}
}

func TestMaxRatingEmptyReport(t *testing.T) {
	report := feed.BuildReport(&feed.Document{})
	if got := report.MaxRating(); got != cvss.RatingNone {
		t.Errorf("MaxRating() = %s, want None", got)
	}
}

func TestLoadDocumentAndSaveReport(t *testing.T) {
	dir := t.TempDir()

	docPath := filepath.Join(dir, "feed.json")
	payload := `{"source": "ghsa", "records": [{"id": "GHSA-1", "vector": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"}]}`
	if err := os.WriteFile(docPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	doc, err := feed.LoadDocument(docPath)
	if err != nil {
		t.Fatalf("LoadDocument() error: %v", err)
	}
	if len(doc.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(doc.Records))
	}

	report := feed.BuildReport(doc)
	reportPath := filepath.Join(dir, "out", "report.json")
	if err := feed.SaveReport(reportPath, report); err != nil {
		t.Fatalf("SaveReport() error: %v", err)
	}
	if _, err := os.Stat(reportPath); err != nil {
		t.Errorf("report file not written: %v", err)
	}

	if _, err := feed.LoadDocument(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("LoadDocument should fail for a missing file")
	}
}
