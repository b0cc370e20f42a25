package bsm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jiaming2012/american-pricer/src/models"
)

// CallPrice is the closed-form European call under Black-Scholes-Merton with a
// continuous dividend yield. Cash dividends are handled with the escrowed
// model: the spot is reduced by their present value.
func CallPrice(inputs models.MarketInputs, payoff models.PayoffSpec, dividends models.DividendSchedule) (float64, error) {
	if err := inputs.Validate(); err != nil {
		return 0, fmt.Errorf("bsm.CallPrice: %w", err)
	}

	if err := payoff.Validate(); err != nil {
		return 0, fmt.Errorf("bsm.CallPrice: %w", err)
	}

	spot := inputs.Spot - dividends.PresentValue(inputs.Rate)
	if spot <= 0 {
		return 0, nil
	}

	return callPrice(spot, payoff.Strike, inputs.Rate, inputs.DividendYield, inputs.Volatility, inputs.Maturity), nil
}

func callPrice(s, k, r, q, sigma, t float64) float64 {
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r-q+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	return s*math.Exp(-q*t)*distuv.UnitNormal.CDF(d1) - k*math.Exp(-r*t)*distuv.UnitNormal.CDF(d2)
}

// ImpliedVolatility inverts CallPrice by bisection on [lo, hi]. The second
// return is false when the price is not bracketed.
func ImpliedVolatility(price float64, inputs models.MarketInputs, payoff models.PayoffSpec, dividends models.DividendSchedule, lo, hi float64) (float64, bool) {
	f := func(vol float64) float64 {
		p, err := CallPrice(inputs.WithVolatility(vol), payoff, dividends)
		if err != nil {
			return math.NaN()
		}

		return p - price
	}

	fLo, fHi := f(lo), f(hi)
	if math.IsNaN(fLo) || math.IsNaN(fHi) || fLo*fHi > 0 {
		return 0, false
	}

	for i := 0; i < 100 && hi-lo > 1e-10; i++ {
		mid := 0.5 * (lo + hi)
		fMid := f(mid)
		if fMid*fLo > 0 {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}

	return 0.5 * (lo + hi), true
}
