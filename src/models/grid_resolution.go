package models

import "fmt"

const (
	DefaultTimeSteps  = 100
	DefaultPriceSteps = 100

	DefaultMaxTimeSteps  = 2000
	DefaultMaxPriceSteps = 2000
)

type GridResolution struct {
	TimeSteps  int `json:"timeSteps" yaml:"timeSteps"`
	PriceSteps int `json:"priceSteps" yaml:"priceSteps"`
}

func DefaultGridResolution() GridResolution {
	return GridResolution{
		TimeSteps:  DefaultTimeSteps,
		PriceSteps: DefaultPriceSteps,
	}
}

func (g GridResolution) Validate() error {
	if g.TimeSteps < 1 {
		return fmt.Errorf("GridResolution.Validate: found %d: %w", g.TimeSteps, TimeStepsErr)
	}

	if g.PriceSteps < 3 {
		return fmt.Errorf("GridResolution.Validate: found %d: %w", g.PriceSteps, PriceStepsErr)
	}

	return nil
}

// ValidateWithin also rejects a grid with more steps than limit in either
// dimension. The solver keeps every column, so memory grows with the product.
func (g GridResolution) ValidateWithin(limit GridResolution) error {
	if err := g.Validate(); err != nil {
		return err
	}

	if g.TimeSteps > limit.TimeSteps || g.PriceSteps > limit.PriceSteps {
		return fmt.Errorf("GridResolution.ValidateWithin: %s exceeds %s: %w", g, limit, GridTooLargeErr)
	}

	return nil
}

// Doubled returns the resolution with both dimensions doubled.
func (g GridResolution) Doubled() GridResolution {
	return GridResolution{
		TimeSteps:  g.TimeSteps * 2,
		PriceSteps: g.PriceSteps * 2,
	}
}

func (g GridResolution) String() string {
	return fmt.Sprintf("%dx%d", g.TimeSteps, g.PriceSteps)
}
