package models

import (
	"fmt"
	"math"
)

type PayoffSpec struct {
	Strike float64    `json:"strike" yaml:"strike"`
	Type   OptionType `json:"type" yaml:"type"`
}

func NewCallPayoff(strike float64) PayoffSpec {
	return PayoffSpec{
		Strike: strike,
		Type:   Call,
	}
}

// ExerciseValue is the signed intrinsic value S - K. The terminal payoff and the
// early-exercise floor are both derived from it.
func (p PayoffSpec) ExerciseValue(spot float64) float64 {
	return spot - p.Strike
}

func (p PayoffSpec) Payoff(spot float64) float64 {
	return math.Max(p.ExerciseValue(spot), 0)
}

func (p PayoffSpec) Validate() error {
	if err := p.Type.Validate(); err != nil {
		return fmt.Errorf("PayoffSpec.Validate: %w", err)
	}

	if math.IsNaN(p.Strike) || math.IsInf(p.Strike, 0) {
		return fmt.Errorf("PayoffSpec.Validate: %w", NonFiniteInputErr)
	}

	if p.Strike <= 0 {
		return fmt.Errorf("PayoffSpec.Validate: found %v: %w", p.Strike, NonPositiveStrikeErr)
	}

	return nil
}
