package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuriiter/freccia/pkg/metrics"
)

var stationsCmd = &cobra.Command{
	Use:   "stations <name>",
	Short: "Look up stations by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := newProvider(metrics.New())
		stations, err := provider.FindStations(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(stations) == 0 {
			fmt.Fprintln(out, "No stations found")
			return nil
		}
		for _, s := range stations {
			fmt.Fprintf(out, "%d\t%s\n", s.ID, s.DisplayName)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stationsCmd)
}
