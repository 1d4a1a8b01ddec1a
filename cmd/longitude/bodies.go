package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBodiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bodies",
		Short: "List catalog bodies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tKIND\tSTEP\tNOISE GUARD")
			for _, b := range a.catalog.ListBodies() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", b.ID, b.Name, b.Kind, b.Step, b.NoiseGuard)
			}
			return tw.Flush()
		},
	}
}
