package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/american-pricer/src/bsm"
	"github.com/jiaming2012/american-pricer/src/models"
	"github.com/jiaming2012/american-pricer/src/pde"
)

type ConvergenceLevel struct {
	Resolution models.GridResolution
	Price      float64
	Change     float64
	Ratio      float64
}

type ConvergenceReport struct {
	Levels        []ConvergenceLevel
	MeanPrice     float64
	StdDevPrice   float64
	MeanAbsChange float64
	Extrapolated  float64
	Shrinking     bool
	Reference     *float64
}

// Study prices the contract on levels successively doubled grids starting at
// opts.Resolution. Change is the difference to the previous level and Ratio the
// previous change over the current one (NaN where undefined).
func Study(inputs models.MarketInputs, payoff models.PayoffSpec, dividends models.DividendSchedule, opts pde.Options, levels int) (*ConvergenceReport, error) {
	if levels < 2 {
		return nil, fmt.Errorf("analysis.Study: at least two levels are required: %w", models.InvalidInputErr)
	}

	report := &ConvergenceReport{}
	res := opts.Resolution

	for i := 0; i < levels; i++ {
		sol, err := pde.Solve(inputs, payoff, dividends, opts.WithResolution(res))
		if err != nil {
			return nil, fmt.Errorf("analysis.Study: %s: %w", res, err)
		}

		lvl := ConvergenceLevel{
			Resolution: res,
			Price:      sol.Value,
			Change:     math.NaN(),
			Ratio:      math.NaN(),
		}

		if i > 0 {
			prev := report.Levels[i-1]
			lvl.Change = lvl.Price - prev.Price

			if i > 1 && lvl.Change != 0 {
				lvl.Ratio = math.Abs(prev.Change / lvl.Change)
			}
		}

		report.Levels = append(report.Levels, lvl)
		res = res.Doubled()
	}

	if err := report.summarize(); err != nil {
		return nil, fmt.Errorf("analysis.Study: %w", err)
	}

	if opts.Exercise == pde.European && dividends.IsEmpty() {
		ref, err := bsm.CallPrice(inputs, payoff, dividends)
		if err != nil {
			return nil, fmt.Errorf("analysis.Study: %w", err)
		}

		report.Reference = &ref
	}

	return report, nil
}

func (r *ConvergenceReport) summarize() error {
	prices := make([]float64, len(r.Levels))
	var changes []float64

	for i, lvl := range r.Levels {
		prices[i] = lvl.Price
		if i > 0 {
			changes = append(changes, math.Abs(lvl.Change))
		}
	}

	mean, err := stats.Mean(prices)
	if err != nil {
		return fmt.Errorf("failed to calculate mean: %v", err)
	}

	sd, err := stats.StandardDeviation(prices)
	if err != nil {
		return fmt.Errorf("failed to calculate the standard deviation: %v", err)
	}

	meanChange, err := stats.Mean(changes)
	if err != nil {
		return fmt.Errorf("failed to calculate mean change: %v", err)
	}

	r.MeanPrice = mean
	r.StdDevPrice = sd
	r.MeanAbsChange = meanChange

	r.Shrinking = true
	for i := 1; i < len(changes); i++ {
		if changes[i] > changes[i-1] {
			r.Shrinking = false
		}
	}

	last := r.Levels[len(r.Levels)-1]
	r.Extrapolated = last.Price
	if !math.IsNaN(last.Ratio) && last.Ratio > 1 {
		r.Extrapolated = last.Price + last.Change/(last.Ratio-1)
	}

	return nil
}

func (r *ConvergenceReport) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Grid", "Price", "Change", "Ratio"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, lvl := range r.Levels {
		table.Append([]string{
			lvl.Resolution.String(),
			p.Sprintf("%.6f", lvl.Price),
			formatOptional(p, lvl.Change),
			formatOptional(p, lvl.Ratio),
		})
	}

	table.Render()

	display.WriteString(p.Sprintf("mean %.6f, std dev %.6f, mean |change| %.6f\n", r.MeanPrice, r.StdDevPrice, r.MeanAbsChange))
	display.WriteString(p.Sprintf("extrapolated %.6f, changes shrinking: %v\n", r.Extrapolated, r.Shrinking))

	if r.Reference != nil {
		display.WriteString(p.Sprintf("closed form %.6f\n", *r.Reference))
	}

	return display.String()
}

func formatOptional(p *message.Printer, v float64) string {
	if math.IsNaN(v) {
		return "-"
	}

	return p.Sprintf("%.6f", v)
}
