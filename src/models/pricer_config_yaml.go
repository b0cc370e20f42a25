package models

import "fmt"

type GridConfigYAML struct {
	TimeSteps        int     `yaml:"timeSteps"`
	PriceSteps       int     `yaml:"priceSteps"`
	DomainMultiplier float64 `yaml:"domainMultiplier"`
	Scheme           string  `yaml:"scheme"`
	RannacherSteps   *int    `yaml:"rannacherSteps,omitempty"`
	MaxTimeSteps     int     `yaml:"maxTimeSteps"`
	MaxPriceSteps    int     `yaml:"maxPriceSteps"`
}

type ImpliedVolConfigYAML struct {
	InitialGuess  float64 `yaml:"initialGuess"`
	MaxIterations int     `yaml:"maxIterations"`
	Tolerance     float64 `yaml:"tolerance"`
	StepTolerance float64 `yaml:"stepTolerance"`
	BumpSize      float64 `yaml:"bumpSize"`
	MaxVolatility float64 `yaml:"maxVolatility"`
}

type BatchConfigYAML struct {
	Workers int `yaml:"workers"`
}

type PricerConfigYAML struct {
	Grid       GridConfigYAML       `yaml:"grid"`
	ImpliedVol ImpliedVolConfigYAML `yaml:"impliedVol"`
	Batch      BatchConfigYAML      `yaml:"batch"`
}

const (
	SchemeCrankNicolson = "crank-nicolson"
	SchemeImplicit      = "implicit"
)

// MinDomainMultiplier keeps S_max at least four strikes (or spots) above zero,
// scaled by exp(sigma*sqrt(T)), so the far boundary stays out of the money region.
const MinDomainMultiplier = 4

func DefaultPricerConfig() *PricerConfigYAML {
	cfg := &PricerConfigYAML{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every zero-valued field. An explicit rannacherSteps of 0
// is kept.
func (c *PricerConfigYAML) ApplyDefaults() {
	if c.Grid.TimeSteps == 0 {
		c.Grid.TimeSteps = DefaultTimeSteps
	}

	if c.Grid.PriceSteps == 0 {
		c.Grid.PriceSteps = DefaultPriceSteps
	}

	if c.Grid.DomainMultiplier == 0 {
		c.Grid.DomainMultiplier = MinDomainMultiplier
	}

	if c.Grid.MaxTimeSteps == 0 {
		c.Grid.MaxTimeSteps = DefaultMaxTimeSteps
	}

	if c.Grid.MaxPriceSteps == 0 {
		c.Grid.MaxPriceSteps = DefaultMaxPriceSteps
	}

	if c.Grid.Scheme == "" {
		c.Grid.Scheme = SchemeCrankNicolson
	}

	if c.Grid.RannacherSteps == nil {
		steps := 2
		c.Grid.RannacherSteps = &steps
	}

	if c.ImpliedVol.InitialGuess == 0 {
		c.ImpliedVol.InitialGuess = 0.2
	}

	if c.ImpliedVol.MaxIterations == 0 {
		c.ImpliedVol.MaxIterations = 50
	}

	if c.ImpliedVol.Tolerance == 0 {
		c.ImpliedVol.Tolerance = 1e-6
	}

	if c.ImpliedVol.StepTolerance == 0 {
		c.ImpliedVol.StepTolerance = 1e-10
	}

	if c.ImpliedVol.BumpSize == 0 {
		c.ImpliedVol.BumpSize = 1e-4
	}

	if c.ImpliedVol.MaxVolatility == 0 {
		c.ImpliedVol.MaxVolatility = 5
	}

	if c.Batch.Workers == 0 {
		c.Batch.Workers = 4
	}
}

func (c *PricerConfigYAML) Validate() error {
	if err := c.Resolution().ValidateWithin(c.MaxResolution()); err != nil {
		return fmt.Errorf("PricerConfigYAML.Validate: %w", err)
	}

	if c.Grid.Scheme != SchemeCrankNicolson && c.Grid.Scheme != SchemeImplicit {
		return fmt.Errorf("PricerConfigYAML.Validate: unknown scheme %q: %w", c.Grid.Scheme, InvalidInputErr)
	}

	if !(c.Grid.DomainMultiplier >= MinDomainMultiplier) {
		return fmt.Errorf("PricerConfigYAML.Validate: domainMultiplier must be at least %v: %w", MinDomainMultiplier, InvalidInputErr)
	}

	if c.Grid.RannacherSteps != nil && *c.Grid.RannacherSteps < 0 {
		return fmt.Errorf("PricerConfigYAML.Validate: rannacherSteps must not be negative: %w", InvalidInputErr)
	}

	if c.ImpliedVol.MaxIterations < 1 {
		return fmt.Errorf("PricerConfigYAML.Validate: %w", MaxIterationsErr)
	}

	if c.ImpliedVol.Tolerance <= 0 || c.ImpliedVol.StepTolerance <= 0 || c.ImpliedVol.BumpSize <= 0 {
		return fmt.Errorf("PricerConfigYAML.Validate: %w", ToleranceErr)
	}

	if c.ImpliedVol.MaxVolatility <= 0 || c.ImpliedVol.InitialGuess < 0 {
		return fmt.Errorf("PricerConfigYAML.Validate: volatility bounds must be positive: %w", InvalidInputErr)
	}

	if c.Batch.Workers < 1 {
		return fmt.Errorf("PricerConfigYAML.Validate: workers must be at least 1: %w", InvalidInputErr)
	}

	return nil
}

func (c *PricerConfigYAML) Resolution() GridResolution {
	return GridResolution{
		TimeSteps:  c.Grid.TimeSteps,
		PriceSteps: c.Grid.PriceSteps,
	}
}

// MaxResolution is the largest grid a request may ask for.
func (c *PricerConfigYAML) MaxResolution() GridResolution {
	return GridResolution{
		TimeSteps:  c.Grid.MaxTimeSteps,
		PriceSteps: c.Grid.MaxPriceSteps,
	}
}
