package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sevscope/sevscope/pkg/cvss"
	"github.com/sevscope/sevscope/pkg/vector"
)

func newValidateCmd() *cobra.Command {
	var showMetrics bool

	cmd := &cobra.Command{
		Use:   "validate [vectors...]",
		Short: "Validate CVSS vectors without scoring",
		Long:  `Parses each vector and reports the first problem found, or the resolved metrics.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args, showMetrics)
		},
	}

	cmd.Flags().BoolVar(&showMetrics, "show-metrics", false, "Print the resolved metric table for valid vectors")

	return cmd
}

func runValidate(vectors []string, showMetrics bool) error {
	invalid := 0
	for _, s := range vectors {
		metrics, err := cvss.Validate(s)
		if err != nil {
			invalid++
			if kind, ok := vector.KindOf(err); ok {
				fmt.Printf("invalid  %s\n         %s (%s)\n", s, err, kind)
			} else {
				fmt.Printf("invalid  %s\n         %s\n", s, err)
			}
			continue
		}

		fmt.Printf("valid    %s\n", s)
		if showMetrics {
			keys := make([]string, 0, len(metrics))
			for key := range metrics {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Printf("         %-4s %s\n", key, metrics[key])
			}
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d vectors invalid", invalid, len(vectors))
	}
	return nil
}
