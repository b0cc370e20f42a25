package main

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/american-pricer/src/models"
	"github.com/jiaming2012/american-pricer/src/pde"
)

var (
	priceFlags    contractFlags
	priceVol      float64
	priceEuropean bool
	priceBoundary bool
)

var priceCmd = &cobra.Command{
	Use:   "price --spot 100 --strike 100 --rate 0.05 --maturity 1 --vol 0.2 --dividends 2,1.5 --dividend-times 0.25,0.75",
	Short: "Prices a single call on the finite-difference grid.",
	RunE: func(cmd *cobra.Command, args []string) error {
		priceFlags.apply(cfg)
		if err := newService(); err != nil {
			return err
		}

		req, sol, err := svc.Solve(cmd.Context(), priceFlags.pricingRequest(priceVol, priceEuropean))
		if err != nil {
			return err
		}

		fmt.Print(renderPrice(req, sol))

		if priceBoundary {
			fmt.Print(renderBoundary(sol.Grid.ExerciseBoundary(req.Payoff)))
		}

		return nil
	},
}

func renderPrice(req *models.PricingRequest, sol *pde.Solution) string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	exercise := pde.American
	if req.European {
		exercise = pde.European
	}

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Spot", "Strike", "Vol", "Maturity", "Dividends", "Grid", "Exercise", "Price"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.Append([]string{
		p.Sprintf("%.4f", req.Inputs.Spot),
		p.Sprintf("%.4f", req.Payoff.Strike),
		p.Sprintf("%.4f", req.Inputs.Volatility),
		p.Sprintf("%.4f", req.Inputs.Maturity),
		p.Sprintf("%d", req.Dividends.Len()),
		req.Resolution.String(),
		string(exercise),
		p.Sprintf("%.6f", sol.Value),
	})
	table.Render()

	return display.String()
}

func renderBoundary(points []pde.BoundaryPoint) string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	if len(points) == 0 {
		display.WriteString("no early exercise region on this grid\n")
		return display.String()
	}

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Time", "Boundary"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, pt := range points {
		table.Append([]string{
			p.Sprintf("%.4f", pt.Time),
			p.Sprintf("%.4f", pt.Price),
		})
	}

	table.Render()

	return display.String()
}

func init() {
	priceFlags.register(priceCmd)
	priceCmd.Flags().Float64Var(&priceVol, "vol", 0, "Volatility.")
	priceCmd.Flags().BoolVar(&priceEuropean, "european", false, "Price without early exercise.")
	priceCmd.Flags().BoolVar(&priceBoundary, "boundary", false, "Also print the early-exercise boundary.")
	priceCmd.MarkFlagRequired("vol")
}
