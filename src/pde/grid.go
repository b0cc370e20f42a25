package pde

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/jiaming2012/american-pricer/src/models"
)

// Grid holds option values indexed by price level i and time level n, with
// Prices[i] = i*Ds over [0, SMax] and Times[n] = n*Dt over [0, maturity].
type Grid struct {
	Prices []float64
	Times  []float64
	SMax   float64
	Ds     float64
	Dt     float64

	values [][]float64
}

type BoundaryPoint struct {
	Time  float64
	Price float64
}

// PriceDomain returns the upper edge of the price axis. The spot is included in
// the scale so the readout never falls on the clamped boundary.
func PriceDomain(spot, strike, volatility, maturity, multiplier float64) float64 {
	return multiplier * math.Max(strike, spot) * math.Exp(volatility*math.Sqrt(maturity))
}

func newGrid(inputs models.MarketInputs, payoff models.PayoffSpec, res models.GridResolution, multiplier float64) (*Grid, error) {
	sMax := PriceDomain(inputs.Spot, payoff.Strike, inputs.Volatility, inputs.Maturity, multiplier)
	if math.IsNaN(sMax) || math.IsInf(sMax, 0) {
		return nil, fmt.Errorf("newGrid: price domain is %v: %w", sMax, models.NumericInstabilityErr)
	}

	g := &Grid{
		Prices: make([]float64, res.PriceSteps),
		Times:  make([]float64, res.TimeSteps+1),
		SMax:   sMax,
		Ds:     sMax / float64(res.PriceSteps-1),
		Dt:     inputs.Maturity / float64(res.TimeSteps),
		values: make([][]float64, res.TimeSteps+1),
	}

	for i := range g.Prices {
		g.Prices[i] = float64(i) * g.Ds
	}
	g.Prices[res.PriceSteps-1] = sMax

	for n := range g.Times {
		g.Times[n] = float64(n) * g.Dt
	}
	g.Times[res.TimeSteps] = inputs.Maturity

	return g, nil
}

func (g *Grid) PriceLevels() int {
	return len(g.Prices)
}

func (g *Grid) TimeSteps() int {
	return len(g.Times) - 1
}

// At returns V[i, n].
func (g *Grid) At(i, n int) float64 {
	return g.values[n][i]
}

// Column returns a copy of the values at time level n.
func (g *Grid) Column(n int) []float64 {
	out := make([]float64, len(g.values[n]))
	copy(out, g.values[n])
	return out
}

// ValueAt linearly interpolates the values at time level n. Prices outside
// [0, SMax] take the boundary value.
func (g *Grid) ValueAt(spot float64, n int) (float64, error) {
	return interpolate(g.Prices, g.values[n], spot)
}

// ExerciseBoundary returns, for every time level with an exercise region, the
// lowest price level above the strike where the value equals the exercise
// value.
func (g *Grid) ExerciseBoundary(payoff models.PayoffSpec) []BoundaryPoint {
	var out []BoundaryPoint

	for n, col := range g.values {
		for i, s := range g.Prices {
			if s <= payoff.Strike {
				continue
			}

			exercise := payoff.ExerciseValue(s)
			if col[i]-exercise <= 1e-9*math.Max(1, s) {
				out = append(out, BoundaryPoint{
					Time:  g.Times[n],
					Price: s,
				})
				break
			}
		}
	}

	return out
}

// clampedLinear is a piecewise linear fit that holds the end values outside
// [xs[0], xs[last]].
type clampedLinear struct {
	pl interp.PiecewiseLinear
	lo float64
	hi float64
}

func fitClampedLinear(xs, ys []float64) (*clampedLinear, error) {
	c := &clampedLinear{
		lo: xs[0],
		hi: xs[len(xs)-1],
	}

	if err := c.pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fitClampedLinear: %v: %w", err, models.NumericInstabilityErr)
	}

	return c, nil
}

func (c *clampedLinear) at(x float64) float64 {
	return c.pl.Predict(math.Min(math.Max(x, c.lo), c.hi))
}

func interpolate(xs, ys []float64, x float64) (float64, error) {
	c, err := fitClampedLinear(xs, ys)
	if err != nil {
		return 0, fmt.Errorf("interpolate: %w", err)
	}

	return c.at(x), nil
}
