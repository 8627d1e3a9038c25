package cvss_test

import (
	"testing"

	"github.com/sevscope/sevscope/pkg/cvss"
)

func TestBaseScoreV4(t *testing.T) {
	tests := []struct {
		name   string
		vector string
		want   float64
	}{
		{
			"no impact shortcuts to zero",
			"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:N/VI:N/VA:N/SC:N/SI:N/SA:N",
			0.0,
		},
		{
			"full vulnerable system impact",
			"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N",
			9.3,
		},
		{
			"full impact on both systems",
			"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:H/SI:H/SA:H",
			10.0,
		},
		{
			"low partial impact",
			"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:L/VI:L/VA:N/SC:N/SI:N/SA:N",
			6.9,
		},
		{
			"high privileges interpolates within class",
			"CVSS:4.0/AV:N/AC:L/AT:N/PR:H/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N",
			8.6,
		},
		{
			"unreported exploit maturity",
			"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N/E:U",
			8.1,
		},
		{
			"safety impact on subsequent system",
			"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:H/SI:H/SA:H/MSI:S",
			10.0,
		},
		{
			"modified attack vector lifts to network",
			"CVSS:4.0/AV:L/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N/MAV:N",
			9.3,
		},
		{
			"low security requirements",
			"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N/CR:L/IR:L/AR:L",
			8.9,
		},
		{
			"adjacent low privileged passive",
			"CVSS:4.0/AV:A/AC:L/AT:N/PR:L/UI:P/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N",
			7.0,
		},
		{
			"high complexity mixed impact",
			"CVSS:4.0/AV:N/AC:H/AT:N/PR:N/UI:N/VC:H/VI:L/VA:N/SC:N/SI:N/SA:N",
			8.3,
		},
		{
			"least severe scorable vector",
			"CVSS:4.0/AV:P/AC:H/AT:P/PR:H/UI:A/VC:L/VI:N/VA:N/SC:N/SI:N/SA:N/E:U",
			0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cvss.BaseScore(tt.vector)
			if err != nil {
				t.Fatalf("BaseScore(%q) error: %v", tt.vector, err)
			}
			if got != tt.want {
				t.Errorf("BaseScore(%q) = %v, want %v", tt.vector, got, tt.want)
			}
		})
	}
}

func TestScoreV4MacroVector(t *testing.T) {
	tests := []struct {
		name      string
		vector    string
		wantMacro string
		wantScore float64
	}{
		{
			"most severe class",
			"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:H/SI:H/SA:H/MSI:S",
			"000000",
			10.0,
		},
		{
			"no subsequent impact class",
			"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N",
			"000200",
			9.3,
		},
		{
			"zero vector still classified",
			"CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:N/VI:N/VA:N/SC:N/SI:N/SA:N",
			"002201",
			0.0,
		},
		{
			"least severe class",
			"CVSS:4.0/AV:P/AC:H/AT:P/PR:H/UI:A/VC:L/VI:N/VA:N/SC:N/SI:N/SA:N/E:U",
			"212221",
			0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := cvss.Score(tt.vector)
			if err != nil {
				t.Fatalf("Score(%q) error: %v", tt.vector, err)
			}
			if result.MacroVector != tt.wantMacro {
				t.Errorf("MacroVector = %q, want %q", result.MacroVector, tt.wantMacro)
			}
			if result.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", result.Score, tt.wantScore)
			}
			if result.Impact != 0 || result.Exploitability != 0 {
				t.Errorf("v4 result carries v3 sub-scores: impact %v, exploitability %v",
					result.Impact, result.Exploitability)
			}
		})
	}
}

func TestScoreV4Deterministic(t *testing.T) {
	// Interpolation walks map-backed candidate tables; the outcome must
	// not depend on iteration order.
	const s = "CVSS:4.0/AV:N/AC:H/AT:N/PR:H/UI:P/VC:H/VI:L/VA:L/SC:L/SI:L/SA:N/E:P/CR:M/IR:L/AR:M/MAV:A/MVI:H"

	first, err := cvss.BaseScore(s)
	if err != nil {
		t.Fatalf("BaseScore() error: %v", err)
	}
	for i := 0; i < 100; i++ {
		got, err := cvss.BaseScore(s)
		if err != nil {
			t.Fatalf("BaseScore() error on run %d: %v", i, err)
		}
		if got != first {
			t.Fatalf("run %d produced %v, first run produced %v", i, got, first)
		}
	}
	if first < 0 || first > 10 {
		t.Errorf("score %v outside [0, 10]", first)
	}
}
