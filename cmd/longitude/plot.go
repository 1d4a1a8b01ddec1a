package main

import (
	"fmt"

	"github.com/signalsfoundry/longitude/internal/chart"
	"github.com/signalsfoundry/longitude/internal/logging"
	"github.com/spf13/cobra"
)

func newPlotCmd(a *app) *cobra.Command {
	var (
		rf  requestFlags
		out string
	)
	cmd := &cobra.Command{
		Use:     "plot",
		Short:   "Render a body's sampled longitude trace to an image",
		Example: `  longitude plot --body mercury --from 2024-01-01 --to 2024-12-31 --out mercury.png`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := rf.request()
			if err != nil {
				return err
			}
			ctx, log := logging.WithRequestLogger(cmd.Context(), a.log)
			rep, err := a.engine.Run(ctx, req)
			if err != nil {
				return err
			}
			if err := chart.Save(out, rep); err != nil {
				return err
			}
			log.Info(ctx, "wrote longitude chart",
				logging.String("path", out),
				logging.Int("samples", rep.Samples),
				logging.Int("sign_changes", rep.SignChanges),
			)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&out, "out", "longitude.png", "output image path (.png, .svg, .pdf)")
	return cmd
}
