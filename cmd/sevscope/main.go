// Package main provides the sevscope CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "sevscope",
		Short: "CVSS severity scoring for vulnerability advisories",
		Long: `Sevscope scores CVSS 3.0, 3.1 and 4.0 vectors, validates them, and
batch-scores advisory feed documents.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newScoreCmd(),
		newValidateCmd(),
		newFeedCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
