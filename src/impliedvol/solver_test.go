package impliedvol

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/american-pricer/src/models"
	"github.com/jiaming2012/american-pricer/src/pde"
)

func scenario(t *testing.T) (models.MarketInputs, models.PayoffSpec, models.DividendSchedule) {
	schedule, err := models.NewDividendSchedule([]float64{2.0, 1.5}, []float64{0.25, 0.75}, 1)
	require.NoError(t, err)

	inputs := models.MarketInputs{
		Spot:          100,
		Rate:          0.05,
		DividendYield: 0.02,
		Volatility:    0.2,
		Maturity:      1,
	}

	return inputs, models.NewCallPayoff(100), schedule
}

func TestImpliedVolatility(t *testing.T) {
	inputs, payoff, schedule := scenario(t)

	t.Run("round trip recovers the pricing volatility", func(t *testing.T) {
		for _, tc := range []struct {
			vol   float64
			guess float64
		}{
			{0.25, 0.2},
			{0.4, 0.35},
			{0.15, 0.2},
		} {
			price, err := pde.PriceAmericanCall(inputs.WithVolatility(tc.vol), payoff, schedule, 100, 100)
			require.NoError(t, err)

			result, err := ImpliedVolatility(price, inputs, payoff, schedule, tc.guess, 50, 1e-6)
			require.NoError(t, err)

			vol, ok := result.Volatility()
			require.True(t, ok, "vol %v: %s", tc.vol, result.Reason)
			assert.InDelta(t, tc.vol, vol, 1e-4)
			assert.Equal(t, Converged, result.Status)
			assert.LessOrEqual(t, result.Iterations, 50)
		}
	})

	t.Run("five percent markup lands above the pricing volatility", func(t *testing.T) {
		price, err := pde.PriceAmericanCall(inputs, payoff, schedule, 100, 100)
		require.NoError(t, err)

		result, err := ImpliedVolatility(price*1.05, inputs, payoff, schedule, 0.2, 50, 1e-6)
		require.NoError(t, err)

		if vol, ok := result.Volatility(); ok {
			assert.Greater(t, vol, 0.2)
		} else {
			assert.Equal(t, NotConverged, result.Status)
		}
	})

	t.Run("unreachable target is reported as not converged", func(t *testing.T) {
		result, err := ImpliedVolatility(150, inputs, payoff, schedule, 0.2, 50, 1e-6)
		require.NoError(t, err)

		assert.Equal(t, NotConverged, result.Status)
		assert.False(t, result.Converged())
		assert.NotEmpty(t, result.Reason)

		vol, ok := result.Volatility()
		assert.False(t, ok)
		assert.Equal(t, 0.0, vol)
	})

	t.Run("target below the zero-volatility value is not converged", func(t *testing.T) {
		result, err := ImpliedVolatility(0, inputs, payoff, models.DividendSchedule{}, 0.2, 50, 1e-6)
		require.NoError(t, err)
		assert.Equal(t, NotConverged, result.Status)
	})

	t.Run("zero guess seeds from the closed form", func(t *testing.T) {
		price, err := pde.PriceAmericanCall(inputs.WithVolatility(0.3), payoff, schedule, 100, 100)
		require.NoError(t, err)

		result, err := ImpliedVolatility(price, inputs, payoff, schedule, 0, 50, 1e-6)
		require.NoError(t, err)

		vol, ok := result.Volatility()
		require.True(t, ok, result.Reason)
		assert.InDelta(t, 0.3, vol, 1e-4)
	})

	t.Run("invalid inputs abort the search", func(t *testing.T) {
		bad := inputs
		bad.Spot = -1

		_, err := ImpliedVolatility(5, bad, payoff, schedule, 0.2, 50, 1e-6)
		assert.ErrorIs(t, err, models.NonPositiveSpotErr)

		_, err = ImpliedVolatility(-5, inputs, payoff, schedule, 0.2, 50, 1e-6)
		assert.ErrorIs(t, err, models.TargetPriceErr)

		_, err = ImpliedVolatility(5, inputs, payoff, schedule, -0.2, 50, 1e-6)
		assert.ErrorIs(t, err, models.InitialGuessErr)

		_, err = ImpliedVolatility(5, inputs, payoff, schedule, 0.2, 0, 1e-6)
		assert.ErrorIs(t, err, models.MaxIterationsErr)

		_, err = ImpliedVolatility(5, inputs, payoff, schedule, 0.2, 50, 0)
		assert.ErrorIs(t, err, models.ToleranceErr)

		_, err = ImpliedVolatility(5, inputs, models.NewCallPayoff(0), schedule, 0.2, 50, 1e-6)
		assert.ErrorIs(t, err, models.InvalidInputErr)
	})
}

func TestFindRoot(t *testing.T) {
	s := DefaultSolver()

	t.Run("linear price converges immediately", func(t *testing.T) {
		linear := func(vol float64) (float64, error) { return 10 * vol, nil }

		result, err := s.FindRoot(linear, 3, 0.5)
		require.NoError(t, err)

		vol, ok := result.Volatility()
		require.True(t, ok)
		assert.InDelta(t, 0.3, vol, 1e-9)
		assert.LessOrEqual(t, result.Iterations, 3)
	})

	t.Run("flat price has no slope", func(t *testing.T) {
		flat := func(vol float64) (float64, error) { return 4, nil }

		result, err := s.FindRoot(flat, 5, 0.2)
		require.NoError(t, err)
		assert.Equal(t, NotConverged, result.Status)
		assert.Equal(t, "slope vanished", result.Reason)
	})

	t.Run("non-finite price is not converged", func(t *testing.T) {
		nan := func(vol float64) (float64, error) { return math.NaN(), nil }

		result, err := s.FindRoot(nan, 5, 0.2)
		require.NoError(t, err)
		assert.Equal(t, NotConverged, result.Status)
	})

	t.Run("iteration budget", func(t *testing.T) {
		cubic := func(vol float64) (float64, error) { return vol * vol * vol, nil }

		budget := *s
		budget.MaxIterations = 1

		result, err := budget.FindRoot(cubic, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, NotConverged, result.Status)
		assert.Equal(t, 1, result.Iterations)
	})

	t.Run("iterate above the volatility cap", func(t *testing.T) {
		linear := func(vol float64) (float64, error) { return vol, nil }

		result, err := s.FindRoot(linear, 50, 0.2)
		require.NoError(t, err)
		assert.Equal(t, NotConverged, result.Status)
	})

	t.Run("pricer errors are propagated", func(t *testing.T) {
		failing := func(vol float64) (float64, error) { return 0, models.NumericInstabilityErr }

		_, err := s.FindRoot(failing, 5, 0.2)
		assert.True(t, errors.Is(err, models.NumericInstabilityErr))
	})

	t.Run("step stop reports the residual of the previous iterate", func(t *testing.T) {
		steep := func(vol float64) (float64, error) { return 1e8 * vol, nil }

		result, err := s.FindRoot(steep, 1e8*0.3+1e-5, 0.3)
		require.NoError(t, err)

		vol, ok := result.Volatility()
		require.True(t, ok)
		assert.Equal(t, 1, result.Iterations)
		assert.InDelta(t, 0.3, vol, 1e-12)
		assert.Greater(t, vol, 0.3)
		assert.InDelta(t, -1e-5, result.Residual, 1e-7)
	})

	t.Run("forward difference near zero volatility", func(t *testing.T) {
		linear := func(vol float64) (float64, error) { return 10 * vol, nil }

		result, err := s.FindRoot(linear, 0.001, 0.00005)
		require.NoError(t, err)

		vol, ok := result.Volatility()
		require.True(t, ok)
		assert.InDelta(t, 0.0001, vol, 1e-9)
	})
}
