package impliedvol

import (
	"fmt"
	"math"

	"github.com/jiaming2012/american-pricer/src/bsm"
	"github.com/jiaming2012/american-pricer/src/models"
	"github.com/jiaming2012/american-pricer/src/pde"
)

const (
	fallbackGuess = 0.2
	minSlope      = 1e-12
)

// PriceFunc is the pricer seen as a scalar function of volatility.
type PriceFunc func(vol float64) (float64, error)

// Solver runs Newton's method on price(vol) - target with a central-difference
// slope, since the grid pricer has no closed-form vega.
type Solver struct {
	MaxIterations int
	Tolerance     float64
	StepTolerance float64
	BumpSize      float64
	MaxVolatility float64
}

func NewSolver(cfg models.ImpliedVolConfigYAML) *Solver {
	return &Solver{
		MaxIterations: cfg.MaxIterations,
		Tolerance:     cfg.Tolerance,
		StepTolerance: cfg.StepTolerance,
		BumpSize:      cfg.BumpSize,
		MaxVolatility: cfg.MaxVolatility,
	}
}

func DefaultSolver() *Solver {
	return NewSolver(models.DefaultPricerConfig().ImpliedVol)
}

func (s *Solver) validate() error {
	if s.MaxIterations < 1 {
		return fmt.Errorf("Solver: found %d: %w", s.MaxIterations, models.MaxIterationsErr)
	}

	if !(s.Tolerance > 0) || !(s.StepTolerance > 0) || !(s.BumpSize > 0) {
		return fmt.Errorf("Solver: %w", models.ToleranceErr)
	}

	if !(s.MaxVolatility > 0) {
		return fmt.Errorf("Solver: max volatility %v: %w", s.MaxVolatility, models.InvalidInputErr)
	}

	return nil
}

// FindRoot searches for vol with price(vol) == target starting from guess.
// Errors from price abort the search; running out of iterations, leaving
// (0, MaxVolatility] or hitting a flat slope is reported as NotConverged.
func (s *Solver) FindRoot(price PriceFunc, target, guess float64) (Result, error) {
	if err := s.validate(); err != nil {
		return Result{}, err
	}

	if math.IsNaN(target) || math.IsInf(target, 0) || target < 0 {
		return Result{}, fmt.Errorf("Solver.FindRoot: found %v: %w", target, models.TargetPriceErr)
	}

	if !(guess > 0) || math.IsInf(guess, 0) {
		return Result{}, fmt.Errorf("Solver.FindRoot: found %v: %w", guess, models.InitialGuessErr)
	}

	objective := func(vol float64) (float64, error) {
		p, err := price(vol)
		if err != nil {
			return 0, err
		}

		return p - target, nil
	}

	vol := guess
	residual := math.NaN()

	for iter := 1; iter <= s.MaxIterations; iter++ {
		f, err := objective(vol)
		if err != nil {
			return Result{}, fmt.Errorf("Solver.FindRoot: iteration %d: %w", iter, err)
		}

		residual = f
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return notConverged("objective is not finite", iter, residual), nil
		}

		if math.Abs(f) < s.Tolerance {
			return converged(vol, iter, residual), nil
		}

		slope, err := s.slope(objective, vol, f)
		if err != nil {
			return Result{}, fmt.Errorf("Solver.FindRoot: iteration %d: %w", iter, err)
		}

		if math.IsNaN(slope) || math.IsInf(slope, 0) || math.Abs(slope) < minSlope {
			return notConverged("slope vanished", iter, residual), nil
		}

		step := f / slope
		next := vol - step

		if math.IsNaN(next) || math.IsInf(next, 0) {
			return notConverged("iterate is not finite", iter, residual), nil
		}

		if next <= 0 {
			return notConverged("iterate is not positive", iter, residual), nil
		}

		if next > s.MaxVolatility {
			return notConverged(fmt.Sprintf("iterate exceeded %v", s.MaxVolatility), iter, residual), nil
		}

		// next is never priced; residual still belongs to vol.
		if math.Abs(step) < s.StepTolerance {
			return converged(next, iter, residual), nil
		}

		vol = next
	}

	return notConverged(fmt.Sprintf("no convergence after %d iterations", s.MaxIterations), s.MaxIterations, residual), nil
}

// slope uses a central difference, or a forward difference when vol is too
// close to zero for the lower bump.
func (s *Solver) slope(objective func(float64) (float64, error), vol, f float64) (float64, error) {
	h := s.BumpSize

	up, err := objective(vol + h)
	if err != nil {
		return 0, err
	}

	if vol-h <= 0 {
		return (up - f) / h, nil
	}

	down, err := objective(vol - h)
	if err != nil {
		return 0, err
	}

	return (up - down) / (2 * h), nil
}

// Solve inverts the grid pricer. A zero guess is replaced by the closed-form
// European implied volatility with escrowed dividends, or 0.2 when that is not
// bracketed. All inputs are validated before the first pricing.
func (s *Solver) Solve(target float64, inputs models.MarketInputs, payoff models.PayoffSpec, dividends models.DividendSchedule, guess float64, opts pde.Options) (Result, error) {
	if guess < 0 || math.IsNaN(guess) {
		return Result{}, fmt.Errorf("Solver.Solve: found %v: %w", guess, models.InitialGuessErr)
	}

	if guess == 0 {
		guess = s.Seed(target, inputs, payoff, dividends)
	}

	seeded := inputs.WithVolatility(guess)
	if err := seeded.Validate(); err != nil {
		return Result{}, fmt.Errorf("Solver.Solve: %w", err)
	}

	if err := payoff.Validate(); err != nil {
		return Result{}, fmt.Errorf("Solver.Solve: %w", err)
	}

	if err := dividends.Validate(inputs.Maturity); err != nil {
		return Result{}, fmt.Errorf("Solver.Solve: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return Result{}, fmt.Errorf("Solver.Solve: %w", err)
	}

	price := func(vol float64) (float64, error) {
		sol, err := pde.Solve(inputs.WithVolatility(vol), payoff, dividends, opts)
		if err != nil {
			return 0, err
		}

		return sol.Value, nil
	}

	return s.FindRoot(price, target, guess)
}

func (s *Solver) Seed(target float64, inputs models.MarketInputs, payoff models.PayoffSpec, dividends models.DividendSchedule) float64 {
	if vol, ok := bsm.ImpliedVolatility(target, inputs.WithVolatility(fallbackGuess), payoff, dividends, 1e-4, s.MaxVolatility); ok {
		return vol
	}

	return fallbackGuess
}

// ImpliedVolatility inverts the American call pricer on the default grid.
func ImpliedVolatility(target float64, inputs models.MarketInputs, payoff models.PayoffSpec, dividends models.DividendSchedule, guess float64, maxIterations int, tolerance float64) (Result, error) {
	s := DefaultSolver()
	s.MaxIterations = maxIterations
	s.Tolerance = tolerance

	return s.Solve(target, inputs, payoff, dividends, guess, pde.DefaultOptions())
}
