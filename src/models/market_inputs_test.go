package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarketInputsValidate(t *testing.T) {
	valid := MarketInputs{Spot: 100, Rate: 0.05, DividendYield: 0.02, Volatility: 0.2, Maturity: 1}
	assert.NoError(t, valid.Validate())

	t.Run("negative rate and yield are allowed", func(t *testing.T) {
		m := valid
		m.Rate = -0.01
		m.DividendYield = -0.01
		assert.NoError(t, m.Validate())
	})

	for _, tc := range []struct {
		name   string
		mutate func(m *MarketInputs)
		want   error
	}{
		{"zero spot", func(m *MarketInputs) { m.Spot = 0 }, NonPositiveSpotErr},
		{"negative vol", func(m *MarketInputs) { m.Volatility = -0.1 }, NonPositiveVolatilityErr},
		{"zero maturity", func(m *MarketInputs) { m.Maturity = 0 }, NonPositiveMaturityErr},
		{"nan rate", func(m *MarketInputs) { m.Rate = math.NaN() }, NonFiniteInputErr},
		{"infinite spot", func(m *MarketInputs) { m.Spot = math.Inf(1) }, NonFiniteInputErr},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := valid
			tc.mutate(&m)

			err := m.Validate()
			assert.True(t, errors.Is(err, tc.want))
			assert.True(t, errors.Is(err, InvalidInputErr))
		})
	}

	t.Run("with volatility returns a copy", func(t *testing.T) {
		bumped := valid.WithVolatility(0.3)
		assert.Equal(t, 0.3, bumped.Volatility)
		assert.Equal(t, 0.2, valid.Volatility)
	})
}

func TestPayoffSpec(t *testing.T) {
	p := NewCallPayoff(100)

	assert.Equal(t, 20.0, p.ExerciseValue(120))
	assert.Equal(t, -20.0, p.ExerciseValue(80))
	assert.Equal(t, 0.0, p.Payoff(80))
	assert.Equal(t, 20.0, p.Payoff(120))
	assert.NoError(t, p.Validate())

	assert.True(t, errors.Is(NewCallPayoff(0).Validate(), NonPositiveStrikeErr))
	assert.True(t, errors.Is(PayoffSpec{Strike: 100, Type: "put"}.Validate(), UnsupportedOptionTypeErr))
}

func TestGridResolution(t *testing.T) {
	g := DefaultGridResolution()
	assert.NoError(t, g.Validate())
	assert.Equal(t, "100x100", g.String())
	assert.Equal(t, GridResolution{TimeSteps: 200, PriceSteps: 200}, g.Doubled())

	assert.True(t, errors.Is(GridResolution{TimeSteps: 0, PriceSteps: 10}.Validate(), TimeStepsErr))
	assert.True(t, errors.Is(GridResolution{TimeSteps: 10, PriceSteps: 2}.Validate(), PriceStepsErr))
	assert.NoError(t, GridResolution{TimeSteps: 1, PriceSteps: 3}.Validate())

	limit := GridResolution{TimeSteps: 500, PriceSteps: 400}
	assert.NoError(t, GridResolution{TimeSteps: 500, PriceSteps: 400}.ValidateWithin(limit))
	assert.ErrorIs(t, GridResolution{TimeSteps: 501, PriceSteps: 10}.ValidateWithin(limit), GridTooLargeErr)
	assert.ErrorIs(t, GridResolution{TimeSteps: 10, PriceSteps: 401}.ValidateWithin(limit), GridTooLargeErr)
	assert.ErrorIs(t, GridResolution{TimeSteps: 0, PriceSteps: 10}.ValidateWithin(limit), TimeStepsErr)
}
