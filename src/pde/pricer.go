package pde

import (
	"fmt"
	"math"

	"github.com/jiaming2012/american-pricer/src/models"
)

type ExerciseStyle string

const (
	American ExerciseStyle = "american"
	European ExerciseStyle = "european"
)

func (e ExerciseStyle) Validate() error {
	if e != American && e != European {
		return fmt.Errorf("ExerciseStyle.Validate: unknown exercise style %q: %w", e, models.InvalidInputErr)
	}

	return nil
}

type Options struct {
	Resolution       models.GridResolution
	Exercise         ExerciseStyle
	Scheme           Scheme
	RannacherSteps   int
	DomainMultiplier float64
}

func DefaultOptions() Options {
	return OptionsFromConfig(models.DefaultPricerConfig())
}

func OptionsFromConfig(cfg *models.PricerConfigYAML) Options {
	opts := Options{
		Resolution:       cfg.Resolution(),
		Exercise:         American,
		Scheme:           Scheme(cfg.Grid.Scheme),
		DomainMultiplier: cfg.Grid.DomainMultiplier,
	}

	if cfg.Grid.RannacherSteps != nil {
		opts.RannacherSteps = *cfg.Grid.RannacherSteps
	}

	return opts
}

func (o Options) WithResolution(res models.GridResolution) Options {
	o.Resolution = res
	return o
}

func (o Options) WithExercise(e ExerciseStyle) Options {
	o.Exercise = e
	return o
}

func (o Options) Validate() error {
	if err := o.Resolution.Validate(); err != nil {
		return err
	}

	if err := o.Exercise.Validate(); err != nil {
		return err
	}

	if err := o.Scheme.Validate(); err != nil {
		return err
	}

	if o.RannacherSteps < 0 {
		return fmt.Errorf("Options.Validate: rannacher steps must not be negative: %w", models.InvalidInputErr)
	}

	if !(o.DomainMultiplier >= models.MinDomainMultiplier) || math.IsInf(o.DomainMultiplier, 0) {
		return fmt.Errorf("Options.Validate: domain multiplier %v: %w", o.DomainMultiplier, models.InvalidInputErr)
	}

	return nil
}

type Solution struct {
	Value float64
	Grid  *Grid
}

// PriceAmericanCall returns the American call value at the spot on a
// timeSteps x priceSteps grid with the default scheme.
func PriceAmericanCall(inputs models.MarketInputs, payoff models.PayoffSpec, dividends models.DividendSchedule, timeSteps, priceSteps int) (float64, error) {
	opts := DefaultOptions().WithResolution(models.GridResolution{
		TimeSteps:  timeSteps,
		PriceSteps: priceSteps,
	})

	sol, err := Solve(inputs, payoff, dividends, opts)
	if err != nil {
		return 0, err
	}

	return sol.Value, nil
}

// PriceEuropeanCall runs the same grid without the early-exercise projection.
func PriceEuropeanCall(inputs models.MarketInputs, payoff models.PayoffSpec, dividends models.DividendSchedule, timeSteps, priceSteps int) (float64, error) {
	opts := DefaultOptions().WithExercise(European).WithResolution(models.GridResolution{
		TimeSteps:  timeSteps,
		PriceSteps: priceSteps,
	})

	sol, err := Solve(inputs, payoff, dividends, opts)
	if err != nil {
		return 0, err
	}

	return sol.Value, nil
}

// Solve validates every input before touching the grid, then steps backward
// from maturity. At each level the order is: solve, project, dividend jump,
// project again.
func Solve(inputs models.MarketInputs, payoff models.PayoffSpec, dividends models.DividendSchedule, opts Options) (*Solution, error) {
	if err := inputs.Validate(); err != nil {
		return nil, fmt.Errorf("pde.Solve: %w", err)
	}

	if err := payoff.Validate(); err != nil {
		return nil, fmt.Errorf("pde.Solve: %w", err)
	}

	if err := dividends.Validate(inputs.Maturity); err != nil {
		return nil, fmt.Errorf("pde.Solve: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("pde.Solve: %w", err)
	}

	g, err := newGrid(inputs, payoff, opts.Resolution, opts.DomainMultiplier)
	if err != nil {
		return nil, fmt.Errorf("pde.Solve: %w", err)
	}

	timeSteps := opts.Resolution.TimeSteps
	american := opts.Exercise == American

	terminal := make([]float64, len(g.Prices))
	for i, s := range g.Prices {
		terminal[i] = payoff.Payoff(s)
	}
	g.values[timeSteps] = terminal

	op := newOperator(len(g.Prices), inputs)
	jumps := snapDividends(dividends, g.Dt, timeSteps)

	for n := timeSteps - 1; n >= 0; n-- {
		k := timeSteps - 1 - n
		theta := opts.Scheme.theta(k, opts.RannacherSteps)
		upperBC := g.SMax - payoff.Strike*math.Exp(-inputs.Rate*(inputs.Maturity-g.Times[n]))

		col, err := op.step(g.values[n+1], g.Dt, theta, 0, upperBC)
		if err != nil {
			return nil, fmt.Errorf("pde.Solve: level %d: %w", n, err)
		}

		if american {
			project(g.Prices, col, payoff)
		}

		for _, d := range jumps[n] {
			col, err = applyDividend(g.Prices, col, d.Amount)
			if err != nil {
				return nil, fmt.Errorf("pde.Solve: dividend at %v: %w", d.Time, err)
			}

			if american {
				project(g.Prices, col, payoff)
			}
		}

		if i, ok := firstNonFinite(col); ok {
			return nil, fmt.Errorf("pde.Solve: level %d, price level %d is %v: %w", n, i, col[i], models.NumericInstabilityErr)
		}

		g.values[n] = col
	}

	value, err := g.ValueAt(inputs.Spot, 0)
	if err != nil {
		return nil, fmt.Errorf("pde.Solve: %w", err)
	}

	return &Solution{
		Value: math.Max(value, 0),
		Grid:  g,
	}, nil
}

// project floors every value at the exercise value.
func project(prices, values []float64, payoff models.PayoffSpec) {
	for i, s := range prices {
		values[i] = math.Max(values[i], payoff.ExerciseValue(s))
	}
}

func firstNonFinite(values []float64) (int, bool) {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i, true
		}
	}

	return 0, false
}
