// Package feed defines advisory feed documents: the unit of ingestion
// for the service and of batch scoring for the CLI. A document is a
// list of advisory records, each carrying the CVSS vector published by
// its source.
package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Record is a single advisory as published by a security feed.
type Record struct {
	ID         string    `json:"id"` // advisory identifier: "CVE-2024-1234", "GHSA-xxxx-..."
	Title      string    `json:"title,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Vector     string    `json:"vector"` // CVSS vector string, any supported version
	Published  time.Time `json:"published,omitempty"`
	References []string  `json:"references,omitempty"`
}

// Document is one fetch of an advisory feed.
type Document struct {
	Source    string    `json:"source,omitempty"` // feed name: "nvd", "ghsa", "osv"
	FetchedAt time.Time `json:"fetched_at,omitempty"`
	Records   []Record  `json:"records"`
}

// ParseDocument decodes a feed payload. Feeds disagree on framing, so
// three layouts are accepted: a document object, a bare JSON array of
// records, and NDJSON with one record per line. The layout is detected
// from the first non-space byte and the line structure.
func ParseDocument(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty feed document")
	}

	if trimmed[0] == '[' {
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("parsing record array: %w", err)
		}
		return &Document{Records: records}, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("feed document must be a JSON object, a JSON array, or NDJSON")
	}

	if lines := objectLines(trimmed); len(lines) > 1 {
		doc := &Document{}
		for i, line := range lines {
			var rec Record
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("parsing NDJSON line %d: %w", i+1, err)
			}
			doc.Records = append(doc.Records, rec)
		}
		return doc, nil
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("parsing feed document: %w", err)
	}
	if doc.Records == nil && doc.Source == "" {
		// A single bare record is treated as a one-line feed.
		var rec Record
		if err := json.Unmarshal(trimmed, &rec); err == nil && rec.ID != "" {
			return &Document{Records: []Record{rec}}, nil
		}
	}
	return &doc, nil
}

// objectLines splits data into trimmed non-empty lines and returns them
// only when every line is a self-contained object, which is what NDJSON
// looks like. Pretty-printed JSON fails the check on its continuation
// lines and falls through to the single-value path.
func objectLines(data []byte) [][]byte {
	var lines [][]byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if line[0] != '{' || line[len(line)-1] != '}' {
			return nil
		}
		lines = append(lines, line)
	}
	return lines
}
