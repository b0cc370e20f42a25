package main

import (
	"github.com/spf13/cobra"

	"github.com/jiaming2012/american-pricer/src/models"
)

type contractFlags struct {
	spot          float64
	strike        float64
	rate          float64
	dividendYield float64
	maturity      float64
	dividends     []float64
	dividendTimes []float64
	timeSteps     int
	priceSteps    int
	scheme        string
}

func (f *contractFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.spot, "spot", 0, "Spot price.")
	cmd.Flags().Float64Var(&f.strike, "strike", 0, "Strike price.")
	cmd.Flags().Float64Var(&f.rate, "rate", 0, "Continuously compounded risk-free rate.")
	cmd.Flags().Float64Var(&f.dividendYield, "dividend-yield", 0, "Continuous dividend yield.")
	cmd.Flags().Float64Var(&f.maturity, "maturity", 0, "Time to maturity in years.")
	cmd.Flags().Float64SliceVar(&f.dividends, "dividends", nil, "Cash dividend amounts, e.g. 2.0,1.5.")
	cmd.Flags().Float64SliceVar(&f.dividendTimes, "dividend-times", nil, "Cash dividend times in years, e.g. 0.25,0.75.")
	cmd.Flags().IntVar(&f.timeSteps, "time-steps", 0, "Number of time steps (defaults to the config).")
	cmd.Flags().IntVar(&f.priceSteps, "price-steps", 0, "Number of price levels (defaults to the config).")
	cmd.Flags().StringVar(&f.scheme, "scheme", "", "Time stepping scheme: crank-nicolson or implicit (defaults to the config).")

	cmd.MarkFlagRequired("spot")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("maturity")
}

// apply folds the grid flags into the loaded config.
func (f *contractFlags) apply(cfg *models.PricerConfigYAML) {
	if f.timeSteps != 0 {
		cfg.Grid.TimeSteps = f.timeSteps
	}

	if f.priceSteps != 0 {
		cfg.Grid.PriceSteps = f.priceSteps
	}

	if f.scheme != "" {
		cfg.Grid.Scheme = f.scheme
	}
}

func (f *contractFlags) pricingRequest(vol float64, european bool) *models.PricingRequestDTO {
	return &models.PricingRequestDTO{
		Spot:          f.spot,
		Strike:        f.strike,
		Rate:          f.rate,
		DividendYield: f.dividendYield,
		Maturity:      f.maturity,
		Volatility:    vol,
		Dividends:     f.dividends,
		DividendTimes: f.dividendTimes,
		TimeSteps:     f.timeSteps,
		PriceSteps:    f.priceSteps,
		European:      european,
	}
}

func (f *contractFlags) impliedVolRequest(target, guess float64, maxIterations int, tolerance float64) *models.ImpliedVolRequestDTO {
	return &models.ImpliedVolRequestDTO{
		TargetPrice:   target,
		Spot:          f.spot,
		Strike:        f.strike,
		Rate:          f.rate,
		DividendYield: f.dividendYield,
		Maturity:      f.maturity,
		Dividends:     f.dividends,
		DividendTimes: f.dividendTimes,
		InitialGuess:  guess,
		MaxIterations: maxIterations,
		Tolerance:     tolerance,
		TimeSteps:     f.timeSteps,
		PriceSteps:    f.priceSteps,
	}
}
