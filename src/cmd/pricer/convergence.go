package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jiaming2012/american-pricer/src/analysis"
	"github.com/jiaming2012/american-pricer/src/pde"
)

var (
	convFlags    contractFlags
	convVol      float64
	convLevels   int
	convEuropean bool
)

var convergenceCmd = &cobra.Command{
	Use:   "convergence --spot 100 --strike 100 --rate 0.05 --maturity 1 --vol 0.2 --levels 4",
	Short: "Prices a call on successively doubled grids and reports how the price settles.",
	RunE: func(cmd *cobra.Command, args []string) error {
		convFlags.apply(cfg)
		if err := newService(); err != nil {
			return err
		}

		req, err := convFlags.pricingRequest(convVol, convEuropean).ToModel(cfg.Resolution(), cfg.MaxResolution())
		if err != nil {
			return err
		}

		opts := svc.Options()
		if convEuropean {
			opts = opts.WithExercise(pde.European)
		}

		report, err := analysis.Study(req.Inputs, req.Payoff, req.Dividends, opts, convLevels)
		if err != nil {
			return err
		}

		fmt.Print(report.String())

		return nil
	},
}

func init() {
	convFlags.register(convergenceCmd)
	convergenceCmd.Flags().Float64Var(&convVol, "vol", 0, "Volatility.")
	convergenceCmd.Flags().IntVar(&convLevels, "levels", 4, "Number of grids, each doubling the previous one.")
	convergenceCmd.Flags().BoolVar(&convEuropean, "european", false, "Study the European grid, compared with the closed form when there are no cash dividends.")
	convergenceCmd.MarkFlagRequired("vol")
}
