package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the preset slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pm, closeStore, err := a.openPresets()
			if err != nil {
				return err
			}
			defer a.closeStorage(closeStore)

			sums, err := pm.Summaries()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tSLOT\tNAME\tCONFIG\tTRAINEE\tSCENARIO")
			for _, s := range sums {
				marker := ""
				if s.Active {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n", marker, s.Index, s.Name, s.ConfigName, s.Trainee, s.Scenario)
			}
			return tw.Flush()
		},
	}
}
