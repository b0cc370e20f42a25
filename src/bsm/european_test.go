package bsm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/american-pricer/src/models"
)

const equalityThreshold = 1e-6

func TestCallPrice(t *testing.T) {
	payoff := models.NewCallPayoff(100)

	t.Run("reference case without dividends", func(t *testing.T) {
		// S=100, K=100, r=0.05, sigma=0.2, T=1
		inputs := models.MarketInputs{Spot: 100, Rate: 0.05, Volatility: 0.2, Maturity: 1}

		price, err := CallPrice(inputs, payoff, models.DividendSchedule{})
		require.NoError(t, err)
		assert.InDelta(t, 10.450583572185565, price, equalityThreshold)
	})

	t.Run("dividend yield lowers the price", func(t *testing.T) {
		inputs := models.MarketInputs{Spot: 100, Rate: 0.05, Volatility: 0.2, Maturity: 1}

		base, err := CallPrice(inputs, payoff, models.DividendSchedule{})
		require.NoError(t, err)

		inputs.DividendYield = 0.02
		withYield, err := CallPrice(inputs, payoff, models.DividendSchedule{})
		require.NoError(t, err)

		assert.Less(t, withYield, base)
	})

	t.Run("escrowed cash dividends equal a spot shift", func(t *testing.T) {
		inputs := models.MarketInputs{Spot: 100, Rate: 0.05, Volatility: 0.2, Maturity: 1}
		schedule, err := models.NewDividendSchedule([]float64{2}, []float64{0.5}, 1)
		require.NoError(t, err)

		withDiv, err := CallPrice(inputs, payoff, schedule)
		require.NoError(t, err)

		shifted := inputs
		shifted.Spot = 100 - 2*math.Exp(-0.05*0.5)
		expected, err := CallPrice(shifted, payoff, models.DividendSchedule{})
		require.NoError(t, err)

		assert.InDelta(t, expected, withDiv, equalityThreshold)
	})

	t.Run("invalid inputs are rejected", func(t *testing.T) {
		_, err := CallPrice(models.MarketInputs{Spot: 100, Volatility: 0, Maturity: 1}, payoff, models.DividendSchedule{})
		assert.ErrorIs(t, err, models.InvalidInputErr)
	})
}

func TestImpliedVolatility(t *testing.T) {
	payoff := models.NewCallPayoff(100)
	inputs := models.MarketInputs{Spot: 100, Rate: 0.05, DividendYield: 0.02, Volatility: 0.35, Maturity: 0.5}

	t.Run("recovers the input volatility", func(t *testing.T) {
		price, err := CallPrice(inputs, payoff, models.DividendSchedule{})
		require.NoError(t, err)

		vol, ok := ImpliedVolatility(price, inputs, payoff, models.DividendSchedule{}, 1e-4, 5)
		require.True(t, ok)
		assert.InDelta(t, 0.35, vol, 1e-6)
	})

	t.Run("unbracketed price", func(t *testing.T) {
		_, ok := ImpliedVolatility(150, inputs, payoff, models.DividendSchedule{}, 1e-4, 5)
		assert.False(t, ok)
	})
}
