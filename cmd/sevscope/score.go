package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevscope/sevscope/pkg/config"
	"github.com/sevscope/sevscope/pkg/cvss"
	"github.com/sevscope/sevscope/pkg/feed"
	"github.com/sevscope/sevscope/pkg/surface"
)

func newScoreCmd() *cobra.Command {
	var (
		file        string
		outputFmt   string
		showMetrics bool
		failOn      string
	)

	cmd := &cobra.Command{
		Use:   "score [vectors...]",
		Short: "Score CVSS vectors",
		Long:  `Scores one or more CVSS vector strings and renders the results.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(scoreOpts{
				vectors:     args,
				file:        file,
				outputFmt:   outputFmt,
				showMetrics: showMetrics,
				failOn:      failOn,
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Read vectors from a file, one per line")
	cmd.Flags().StringVar(&outputFmt, "output", "", "Output format: text, json or markdown")
	cmd.Flags().BoolVar(&showMetrics, "show-metrics", false, "Include the resolved metric table")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Exit nonzero when any rating meets this severity")

	return cmd
}

type scoreOpts struct {
	vectors     []string
	file        string
	outputFmt   string
	showMetrics bool
	failOn      string
}

func runScore(opts scoreOpts) error {
	cfg := loadConfig()
	format := firstNonEmpty(opts.outputFmt, cfg.Output.Format, "text")
	gate := firstNonEmpty(opts.failOn, cfg.Gate.FailOn)

	vectors := opts.vectors
	if opts.file != "" {
		fromFile, err := readVectorFile(opts.file)
		if err != nil {
			return err
		}
		vectors = append(vectors, fromFile...)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("no vectors given; pass them as arguments or via --file")
	}

	renderer, err := surface.ForFormat(format, surface.Options{ShowMetrics: opts.showMetrics})
	if err != nil {
		return err
	}

	if len(vectors) == 1 {
		result, err := cvss.Score(vectors[0])
		if err != nil {
			return err
		}
		if err := renderer.RenderResult(os.Stdout, result); err != nil {
			return fmt.Errorf("rendering: %w", err)
		}
		return checkGate(gate, result.Rating)
	}

	doc := &feed.Document{Records: make([]feed.Record, 0, len(vectors))}
	for _, v := range vectors {
		doc.Records = append(doc.Records, feed.Record{ID: v, Vector: v})
	}

	report := feed.BuildReport(doc)
	if err := renderer.RenderReport(os.Stdout, report); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d vectors failed to score", report.Failed, report.Total)
	}
	return checkGate(gate, report.MaxRating())
}

// checkGate returns an error when the rating meets or exceeds the fail-on
// severity. An empty gate never trips.
func checkGate(gate string, rating cvss.Rating) error {
	if gate == "" {
		return nil
	}
	min, err := cvss.ParseRating(gate)
	if err != nil {
		return fmt.Errorf("fail-on: %w", err)
	}
	if rating.Level() >= min.Level() {
		return fmt.Errorf("severity gate tripped: %s meets or exceeds %s", rating, min)
	}
	return nil
}

// readVectorFile reads one vector per line, skipping blank lines and
// # comments.
func readVectorFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vector file: %w", err)
	}
	defer f.Close()

	var vectors []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		vectors = append(vectors, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading vector file: %w", err)
	}
	return vectors, nil
}

func loadConfig() *config.Config {
	cwd, err := os.Getwd()
	if err != nil {
		return config.DefaultConfig()
	}
	cfgFile := config.FindConfigFile(cwd)
	if cfgFile == "" {
		return config.DefaultConfig()
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
