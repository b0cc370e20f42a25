package models

import (
	"fmt"
	"math"
)

// MarketInputs holds the numeric market state a single pricing call consumes.
// Rate and DividendYield are annualized and continuously compounded; Maturity
// is a year fraction measured from the valuation date.
type MarketInputs struct {
	Spot          float64 `json:"spot" yaml:"spot"`
	Rate          float64 `json:"rate" yaml:"rate"`
	DividendYield float64 `json:"dividendYield" yaml:"dividendYield"`
	Volatility    float64 `json:"volatility" yaml:"volatility"`
	Maturity      float64 `json:"maturity" yaml:"maturity"`
}

func (m MarketInputs) WithVolatility(vol float64) MarketInputs {
	m.Volatility = vol
	return m
}

func (m MarketInputs) Validate() error {
	for _, v := range []float64{m.Spot, m.Rate, m.DividendYield, m.Volatility, m.Maturity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("MarketInputs.Validate: %w", NonFiniteInputErr)
		}
	}

	if m.Spot <= 0 {
		return fmt.Errorf("MarketInputs.Validate: found %v: %w", m.Spot, NonPositiveSpotErr)
	}

	if m.Volatility <= 0 {
		return fmt.Errorf("MarketInputs.Validate: found %v: %w", m.Volatility, NonPositiveVolatilityErr)
	}

	if m.Maturity <= 0 {
		return fmt.Errorf("MarketInputs.Validate: found %v: %w", m.Maturity, NonPositiveMaturityErr)
	}

	return nil
}
