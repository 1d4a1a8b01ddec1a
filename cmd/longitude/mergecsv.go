package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signalsfoundry/longitude/internal/csvmerge"
	"github.com/spf13/cobra"
)

func newMergeCSVCmd(_ *app) *cobra.Command {
	var key, out string
	cmd := &cobra.Command{
		Use:   "merge-csv FILE...",
		Short: "Outer-join CSV files on a shared key column",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			return csvmerge.MergeFiles(w, key, args...)
		},
	}
	cmd.Flags().StringVar(&key, "key", "timestamp", "join column present in every file")
	cmd.Flags().StringVar(&out, "out", "-", "output path, - for stdout")
	return cmd
}
