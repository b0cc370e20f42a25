package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/american-pricer/src/impliedvol"
	"github.com/jiaming2012/american-pricer/src/models"
	"github.com/jiaming2012/american-pricer/src/pde"
)

func newRequest() *models.PricingRequestDTO {
	return &models.PricingRequestDTO{
		Spot:          100,
		Strike:        100,
		Rate:          0.05,
		DividendYield: 0.02,
		Maturity:      1,
		Volatility:    0.2,
		Dividends:     []float64{2.0, 1.5},
		DividendTimes: []float64{0.25, 0.75},
		TimeSteps:     50,
		PriceSteps:    80,
	}
}

func TestPricingService(t *testing.T) {
	svc, err := NewPricingService(nil)
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("price matches the grid pricer", func(t *testing.T) {
		dto := newRequest()

		resp, err := svc.Price(ctx, dto)
		require.NoError(t, err)

		req, err := dto.ToModel(models.GridResolution{TimeSteps: 50, PriceSteps: 80}, models.DefaultPricerConfig().MaxResolution())
		require.NoError(t, err)

		expected, err := pde.PriceAmericanCall(req.Inputs, req.Payoff, req.Dividends, 50, 80)
		require.NoError(t, err)

		assert.InDelta(t, expected, resp.Price, 1e-12)
		assert.Equal(t, "american", resp.Exercise)
		assert.Equal(t, 50, resp.TimeSteps)
		assert.Equal(t, 80, resp.PriceSteps)
		assert.NotEmpty(t, resp.RequestID)
	})

	t.Run("zero resolution uses the configured grid", func(t *testing.T) {
		dto := newRequest()
		dto.TimeSteps = 0
		dto.PriceSteps = 0

		resp, err := svc.Price(ctx, dto)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultTimeSteps, resp.TimeSteps)
		assert.Equal(t, models.DefaultPriceSteps, resp.PriceSteps)
	})

	t.Run("european is never above american", func(t *testing.T) {
		american, err := svc.Price(ctx, newRequest())
		require.NoError(t, err)

		dto := newRequest()
		dto.European = true

		european, err := svc.Price(ctx, dto)
		require.NoError(t, err)

		assert.Equal(t, "european", european.Exercise)
		assert.LessOrEqual(t, european.Price, american.Price+1e-12)
	})

	t.Run("invalid input is reported as such", func(t *testing.T) {
		dto := newRequest()
		dto.Spot = -1

		_, err := svc.Price(ctx, dto)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.InvalidInputErr))
		assert.True(t, errors.Is(err, models.NonPositiveSpotErr))
	})

	t.Run("grid above the configured maximum is rejected", func(t *testing.T) {
		dto := newRequest()
		dto.TimeSteps = 200000
		dto.PriceSteps = 200000

		_, err := svc.Price(ctx, dto)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.GridTooLargeErr)
		assert.ErrorIs(t, err, models.InvalidInputErr)
	})

	t.Run("solve exposes the grid", func(t *testing.T) {
		dto := newRequest()

		_, sol, err := svc.Solve(ctx, dto)
		require.NoError(t, err)
		assert.Equal(t, dto.PriceSteps, sol.Grid.PriceLevels())
		assert.Equal(t, dto.TimeSteps, sol.Grid.TimeSteps())
		assert.NotEmpty(t, sol.Grid.ExerciseBoundary(models.NewCallPayoff(100)))
	})
}

func TestPricingServiceImpliedVol(t *testing.T) {
	svc, err := NewPricingService(nil)
	require.NoError(t, err)

	ctx := context.Background()

	dto := newRequest()
	dto.Volatility = 0.3

	priced, err := svc.Price(ctx, dto)
	require.NoError(t, err)

	newIVRequest := func(target float64) *models.ImpliedVolRequestDTO {
		return &models.ImpliedVolRequestDTO{
			TargetPrice:   target,
			Spot:          dto.Spot,
			Strike:        dto.Strike,
			Rate:          dto.Rate,
			DividendYield: dto.DividendYield,
			Maturity:      dto.Maturity,
			Dividends:     dto.Dividends,
			DividendTimes: dto.DividendTimes,
			InitialGuess:  0.2,
			TimeSteps:     dto.TimeSteps,
			PriceSteps:    dto.PriceSteps,
		}
	}

	t.Run("recovers the pricing volatility", func(t *testing.T) {
		resp, err := svc.ImpliedVol(ctx, newIVRequest(priced.Price))
		require.NoError(t, err)

		require.Equal(t, string(impliedvol.Converged), resp.Status, resp.Reason)
		require.NotNil(t, resp.Volatility)
		assert.InDelta(t, 0.3, *resp.Volatility, 1e-4)
		assert.Greater(t, resp.Iterations, 0)
	})

	t.Run("zero guess is seeded", func(t *testing.T) {
		req := newIVRequest(priced.Price)
		req.InitialGuess = 0

		resp, err := svc.ImpliedVol(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, resp.Volatility)
		assert.InDelta(t, 0.3, *resp.Volatility, 1e-4)
	})

	t.Run("unreachable target is not converged", func(t *testing.T) {
		resp, err := svc.ImpliedVol(ctx, newIVRequest(150))
		require.NoError(t, err)

		assert.Equal(t, string(impliedvol.NotConverged), resp.Status)
		assert.Nil(t, resp.Volatility)
		assert.NotEmpty(t, resp.Reason)
	})

	t.Run("iteration budget from the request", func(t *testing.T) {
		req := newIVRequest(priced.Price)
		req.MaxIterations = -1

		_, err := svc.ImpliedVol(ctx, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.MaxIterationsErr))
	})

	t.Run("negative target is rejected", func(t *testing.T) {
		_, err := svc.ImpliedVol(ctx, newIVRequest(-1))
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.TargetPriceErr))
	})
}

func TestNewPricingService(t *testing.T) {
	cfg := models.DefaultPricerConfig()
	cfg.Grid.Scheme = "explicit"

	_, err := NewPricingService(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.InvalidInputErr))
}
