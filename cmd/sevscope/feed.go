package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevscope/sevscope/pkg/feed"
	"github.com/sevscope/sevscope/pkg/surface"
)

func newFeedCmd() *cobra.Command {
	var (
		outputFmt string
		savePath  string
		failOn    string
	)

	cmd := &cobra.Command{
		Use:   "feed <document.json>",
		Short: "Batch-score an advisory feed document",
		Long:  `Parses a feed document (JSON object, array or NDJSON) and scores every record.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(args[0], feedOpts{
				outputFmt: outputFmt,
				savePath:  savePath,
				failOn:    failOn,
			})
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "", "Output format: text, json or markdown")
	cmd.Flags().StringVar(&savePath, "save", "", "Also write the report as JSON to this path")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Exit nonzero when any rating meets this severity")

	return cmd
}

type feedOpts struct {
	outputFmt string
	savePath  string
	failOn    string
}

func runFeed(path string, opts feedOpts) error {
	cfg := loadConfig()
	format := firstNonEmpty(opts.outputFmt, cfg.Output.Format, "text")
	gate := firstNonEmpty(opts.failOn, cfg.Gate.FailOn)

	doc, err := feed.LoadDocument(path)
	if err != nil {
		return err
	}

	report := feed.BuildReport(doc)

	renderer, err := surface.ForFormat(format, surface.Options{})
	if err != nil {
		return err
	}
	if err := renderer.RenderReport(os.Stdout, report); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	if opts.savePath != "" {
		if err := feed.SaveReport(opts.savePath, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report saved to %s\n", opts.savePath)
	}

	return checkGate(gate, report.MaxRating())
}
