package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signalsfoundry/longitude/internal/batch"
	"github.com/signalsfoundry/longitude/model"
	"github.com/spf13/cobra"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		in, out, frame string
		workers        int
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run measurements listed in a CSV file in parallel",
		Long: `Read body,start,end,policy rows and write them back with degrees and
error columns appended. A failing row does not stop the batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := model.ParseFrame(frame)
			if err != nil {
				return err
			}
			src, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("open requests: %w", err)
			}
			defer src.Close()
			reqs, err := batch.ReadRequests(src, f)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}

			runner := batch.NewRunner(a.engine,
				batch.WithWorkers(workers),
				batch.WithLogger(a.log),
				batch.WithRecorder(a.batchMetrics),
			)
			results, err := runner.Run(cmd.Context(), reqs)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				dst, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create results: %w", err)
				}
				defer dst.Close()
				w = dst
			}
			return batch.WriteResults(w, results)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input CSV with body,start,end,policy columns")
	cmd.Flags().StringVar(&out, "out", "-", "output CSV path, - for stdout")
	cmd.Flags().StringVar(&frame, "frame", model.DefaultFrame.String(), "reference frame applied to every row")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel measurements, 0 for one per CPU")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
