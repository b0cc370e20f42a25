package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/american-pricer/src/eventpubsub"
	"github.com/jiaming2012/american-pricer/src/models"
	"github.com/jiaming2012/american-pricer/src/service"
)

func newService(t *testing.T) *service.PricingService {
	cfg := models.DefaultPricerConfig()
	cfg.Grid.TimeSteps = 40
	cfg.Grid.PriceSteps = 60

	svc, err := service.NewPricingService(cfg)
	require.NoError(t, err)

	return svc
}

func contractRows() []*models.ContractRowDTO {
	return []*models.ContractRowDTO{
		{ID: "atm", Spot: 100, Strike: 100, Rate: 0.05, DividendYield: 0.02, Maturity: 1, Volatility: 0.2, Dividends: models.FloatList{2, 1.5}, DividendTimes: models.FloatList{0.25, 0.75}},
		{ID: "itm", Spot: 120, Strike: 100, Rate: 0.05, Maturity: 0.5, Volatility: 0.25},
		{ID: "bad", Spot: -5, Strike: 100, Rate: 0.05, Maturity: 1, Volatility: 0.2},
		{ID: "empty", Spot: 100, Strike: 100, Rate: 0.05, Maturity: 1},
	}
}

func TestRunBatch(t *testing.T) {
	svc := newService(t)

	t.Run("each row gets a result", func(t *testing.T) {
		result, err := RunBatch(context.Background(), svc, contractRows(), 2)
		require.NoError(t, err)
		require.Len(t, result.Rows, 4)

		assert.Equal(t, "atm", result.Rows[0].ID)
		assert.Equal(t, StatusPriced, result.Rows[0].Status)
		assert.NotEmpty(t, result.Rows[0].Price)

		assert.Equal(t, StatusFailed, result.Rows[2].Status)
		assert.Contains(t, result.Rows[2].Error, "spot must be positive")

		assert.Equal(t, StatusSkipped, result.Rows[3].Status)
		assert.Equal(t, 2, result.Failed)

		summary, err := result.Summary()
		require.NoError(t, err)
		assert.Equal(t, 4, summary.Total)
		assert.Greater(t, summary.MeanPrice, 0.0)

		assert.Contains(t, result.String(), "atm")
	})

	t.Run("worker count does not change prices", func(t *testing.T) {
		one, err := RunBatch(context.Background(), svc, contractRows(), 1)
		require.NoError(t, err)

		many, err := RunBatch(context.Background(), svc, contractRows(), 4)
		require.NoError(t, err)

		for i := range one.Rows {
			assert.Equal(t, one.Rows[i].Price, many.Rows[i].Price)
		}
	})

	t.Run("implied volatility rows", func(t *testing.T) {
		priced, err := RunBatch(context.Background(), svc, contractRows()[:1], 1)
		require.NoError(t, err)

		row := contractRows()[0]
		row.Volatility = 0
		row.MarketPrice = 9.5

		result, err := RunBatch(context.Background(), svc, []*models.ContractRowDTO{row}, 1)
		require.NoError(t, err)
		require.Len(t, result.Rows, 1)

		assert.Equal(t, "converged", result.Rows[0].Status, result.Rows[0].Error)
		assert.NotEmpty(t, result.Rows[0].ImpliedVol)
		assert.Empty(t, result.Rows[0].Price)
		assert.NotEmpty(t, priced.Rows[0].Price)

		summary, err := result.Summary()
		require.NoError(t, err)
		assert.Greater(t, summary.MedianIterations, 0.0)
	})

	t.Run("publishes one event per row", func(t *testing.T) {
		eventpubsub.Init()

		var mu sync.Mutex
		seen := map[string]string{}

		handler := func(ev models.ContractPricedEvent) {
			mu.Lock()
			defer mu.Unlock()
			seen[ev.ContractID] = ev.Status
		}

		require.NoError(t, eventpubsub.Subscribe(eventpubsub.ContractPricedEvent, handler))
		defer eventpubsub.Unsubscribe(eventpubsub.ContractPricedEvent, handler)

		_, err := RunBatch(context.Background(), svc, contractRows(), 3)
		require.NoError(t, err)

		eventpubsub.WaitAsync()

		mu.Lock()
		defer mu.Unlock()
		assert.Len(t, seen, 4)
		assert.Equal(t, StatusFailed, seen["bad"])
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := RunBatch(ctx, svc, contractRows(), 2)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("workers must be positive", func(t *testing.T) {
		_, err := RunBatch(context.Background(), svc, contractRows(), 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.InvalidInputErr))
	})
}
