package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FloatList is a CSV cell holding floats separated by '|', e.g. "2.0|1.5".
type FloatList []float64

func (f *FloatList) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*f = nil
		return nil
	}

	parts := strings.Split(s, "|")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("FloatList.UnmarshalCSV: %q: %v", p, err)
		}

		out = append(out, v)
	}

	*f = out
	return nil
}

func (f FloatList) MarshalCSV() (string, error) {
	parts := make([]string, len(f))
	for i, v := range f {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}

	return strings.Join(parts, "|"), nil
}

// ContractRowDTO is one row of a batch input file. A positive volatility asks
// for a price; a positive market price asks for an implied volatility.
type ContractRowDTO struct {
	ID            string    `csv:"id"`
	Spot          float64   `csv:"spot"`
	Strike        float64   `csv:"strike"`
	Rate          float64   `csv:"rate"`
	DividendYield float64   `csv:"dividend_yield"`
	Maturity      float64   `csv:"maturity"`
	Volatility    float64   `csv:"volatility"`
	MarketPrice   float64   `csv:"market_price"`
	Dividends     FloatList `csv:"dividends"`
	DividendTimes FloatList `csv:"dividend_times"`
}

func (r *ContractRowDTO) WantsPrice() bool {
	return r.Volatility > 0
}

func (r *ContractRowDTO) WantsImpliedVol() bool {
	return r.MarketPrice > 0
}

func (r *ContractRowDTO) ToPricingRequestDTO(res GridResolution) *PricingRequestDTO {
	return &PricingRequestDTO{
		Spot:          r.Spot,
		Strike:        r.Strike,
		Rate:          r.Rate,
		DividendYield: r.DividendYield,
		Maturity:      r.Maturity,
		Volatility:    r.Volatility,
		Dividends:     r.Dividends,
		DividendTimes: r.DividendTimes,
		TimeSteps:     res.TimeSteps,
		PriceSteps:    res.PriceSteps,
	}
}

func (r *ContractRowDTO) ToImpliedVolRequestDTO(res GridResolution, guess float64) *ImpliedVolRequestDTO {
	return &ImpliedVolRequestDTO{
		TargetPrice:   r.MarketPrice,
		Spot:          r.Spot,
		Strike:        r.Strike,
		Rate:          r.Rate,
		DividendYield: r.DividendYield,
		Maturity:      r.Maturity,
		Dividends:     r.Dividends,
		DividendTimes: r.DividendTimes,
		InitialGuess:  guess,
		TimeSteps:     res.TimeSteps,
		PriceSteps:    res.PriceSteps,
	}
}

type ContractResultRowDTO struct {
	ID         string `csv:"id"`
	Price      string `csv:"price"`
	ImpliedVol string `csv:"implied_vol"`
	Status     string `csv:"status"`
	Iterations int    `csv:"iterations"`
	Error      string `csv:"error"`
}
