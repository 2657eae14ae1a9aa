package cmd

import (
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/yuriiter/freccia/pkg/cli"
	"github.com/yuriiter/freccia/pkg/metrics"
	"github.com/yuriiter/freccia/pkg/render"
)

var (
	fromArg     string
	toArg       string
	dateArg     string
	maxPriceArg float64
	discountArg string
	beforeArg   int
	afterArg    int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Interactively search cheap fares between two stations",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := metrics.New()
		provider := newProvider(m)

		maxPrice := cfg.Search.MaxPrice
		if cmd.Flags().Changed("max-price") {
			maxPrice = maxPriceArg
		}

		prompt := cli.New(provider, newScanner(provider, m), os.Stdin, render.NewTerminal(os.Stdout))
		return prompt.Run(cmd.Context(), cli.Answers{
			From:     fromArg,
			To:       toArg,
			Date:     dateArg,
			Before:   beforeArg,
			After:    afterArg,
			MaxPrice: decimal.NewFromFloat(maxPrice),
			Discount: discountArg,
		})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&fromArg, "from", "f", "", "Departing station name")
	searchCmd.Flags().StringVarP(&toArg, "to", "t", "", "Arrival station name")
	searchCmd.Flags().StringVarP(&dateArg, "date", "d", "", "Date (today, tomorrow, yyyy-mm-dd, dd.mm.yyyy, dd.mm)")
	searchCmd.Flags().Float64Var(&maxPriceArg, "max-price", 0, "Price ceiling in euro (default from config)")
	searchCmd.Flags().StringVar(&discountArg, "discount", "", "Look for a named offer (e.g. FrecciaYOUNG) instead of a price ceiling")
	searchCmd.Flags().IntVar(&beforeArg, "before", cli.Unset, "Days in advance to scan when the date has no fares")
	searchCmd.Flags().IntVar(&afterArg, "after", cli.Unset, "Days after to scan when the date has no fares")
}
