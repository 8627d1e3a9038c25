package ingestion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sevscope/sevscope/pkg/cvss"
	"github.com/sevscope/sevscope/pkg/feed"
)

func TestMarshalScoreV3(t *testing.T) {
	result, err := cvss.Score("CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	metricsJSON, subscoresJSON, err := marshalScore(result)
	if err != nil {
		t.Fatalf("marshalScore: %v", err)
	}

	var metrics map[string]string
	if err := json.Unmarshal(metricsJSON, &metrics); err != nil {
		t.Fatalf("unmarshal metrics: %v", err)
	}
	if metrics["AV"] != "N" {
		t.Errorf("metrics[AV] = %q, want N", metrics["AV"])
	}
	if len(metrics) != 22 {
		t.Errorf("resolved metric count = %d, want 22", len(metrics))
	}

	var subs map[string]any
	if err := json.Unmarshal(subscoresJSON, &subs); err != nil {
		t.Fatalf("unmarshal subscores: %v", err)
	}
	if _, ok := subs["impact"]; !ok {
		t.Error("subscores missing impact")
	}
	if _, ok := subs["temporal_score"]; !ok {
		t.Error("subscores missing temporal_score")
	}
	if _, ok := subs["macro_vector"]; ok {
		t.Error("v3 subscores should not carry macro_vector")
	}
}

func TestMarshalScoreV4(t *testing.T) {
	result, err := cvss.Score("CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	_, subscoresJSON, err := marshalScore(result)
	if err != nil {
		t.Fatalf("marshalScore: %v", err)
	}

	var subs map[string]any
	if err := json.Unmarshal(subscoresJSON, &subs); err != nil {
		t.Fatalf("unmarshal subscores: %v", err)
	}
	if subs["macro_vector"] != "000200" {
		t.Errorf("macro_vector = %v, want 000200", subs["macro_vector"])
	}
	if _, ok := subs["impact"]; ok {
		t.Error("v4 subscores should not carry impact")
	}
}

func TestPublishedAt(t *testing.T) {
	if got := publishedAt(feed.Record{ID: "CVE-1"}); got != nil {
		t.Errorf("publishedAt for zero time = %v, want nil", got)
	}

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	got := publishedAt(feed.Record{ID: "CVE-1", Published: ts})
	if got == nil || !got.Equal(ts) {
		t.Errorf("publishedAt = %v, want %v", got, ts)
	}
}

func TestNilIfEmpty(t *testing.T) {
	if nilIfEmpty("") != nil {
		t.Error("nilIfEmpty(\"\") should be nil")
	}
	if got := nilIfEmpty("x"); got == nil || *got != "x" {
		t.Errorf("nilIfEmpty(\"x\") = %v", got)
	}
}
