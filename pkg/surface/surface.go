// Package surface defines output rendering for scoring results.
// Implementations handle different output targets: terminal, JSON,
// Markdown.
package surface

import (
	"fmt"
	"io"

	"github.com/sevscope/sevscope/pkg/cvss"
	"github.com/sevscope/sevscope/pkg/feed"
)

// Renderer produces formatted output from a single score or a batch
// report.
type Renderer interface {
	// RenderResult writes one formatted score result to the writer.
	RenderResult(w io.Writer, result *cvss.ScoreResult) error
	// RenderReport writes a formatted batch report to the writer.
	RenderReport(w io.Writer, report *feed.Report) error
}

// Options adjusts rendering detail.
type Options struct {
	ShowMetrics bool // include the resolved metric table per result
}

// ForFormat returns the renderer for an output format name.
func ForFormat(format string, opts Options) (Renderer, error) {
	switch format {
	case "text", "":
		return &TerminalRenderer{ShowMetrics: opts.ShowMetrics}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "markdown":
		return &MarkdownRenderer{ShowMetrics: opts.ShowMetrics}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
