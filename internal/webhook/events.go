// Package webhook handles incoming publisher webhook events.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sevscope/sevscope/pkg/feed"
)

// VerifySignature validates the X-Sevscope-Signature-256 header against the payload.
func VerifySignature(payload []byte, signature string, secret []byte) error {
	if !strings.HasPrefix(signature, "sha256=") {
		return fmt.Errorf("invalid signature format")
	}
	sig, err := hex.DecodeString(signature[7:])
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	expected := mac.Sum(nil)

	if !hmac.Equal(sig, expected) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// AdvisoryPublishedEvent is sent when a publisher releases or updates an
// advisory. The record is carried inline.
type AdvisoryPublishedEvent struct {
	SourceToken string      `json:"source_token"`
	Record      feed.Record `json:"record"`
}

// AdvisoryWithdrawnEvent tombstones a previously published advisory.
type AdvisoryWithdrawnEvent struct {
	SourceToken string `json:"source_token"`
	AdvisoryID  string `json:"advisory_id"`
}

// SourceRegisteredEvent announces a new advisory feed for a tenant.
type SourceRegisteredEvent struct {
	Tenant string `json:"tenant"`
	Name   string `json:"name"`
	URL    string `json:"url,omitempty"`
}

// ParseEvent parses a webhook payload based on the event type.
func ParseEvent(eventType string, payload []byte) (interface{}, error) {
	switch eventType {
	case "advisory_published":
		var e AdvisoryPublishedEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse advisory_published event: %w", err)
		}
		return &e, nil
	case "advisory_withdrawn":
		var e AdvisoryWithdrawnEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse advisory_withdrawn event: %w", err)
		}
		return &e, nil
	case "source_registered":
		var e SourceRegisteredEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse source_registered event: %w", err)
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("unsupported event type: %s", eventType)
	}
}
