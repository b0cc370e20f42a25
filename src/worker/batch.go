package worker

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jiaming2012/american-pricer/src/eventpubsub"
	"github.com/jiaming2012/american-pricer/src/models"
	"github.com/jiaming2012/american-pricer/src/service"
)

const (
	StatusPriced  = "priced"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

type BatchResult struct {
	BatchID uuid.UUID
	Rows    []*models.ContractResultRowDTO
	Failed  int

	prices     []float64
	iterations []float64
}

type BatchSummary struct {
	Total            int
	Failed           int
	MeanPrice        float64
	MedianIterations float64
}

// RunBatch prices rows on at most workers goroutines. Every job builds its own
// grid, so nothing is shared between rows except the service. A failing row is
// recorded in its result row; only cancellation of ctx aborts the batch.
func RunBatch(ctx context.Context, svc *service.PricingService, rows []*models.ContractRowDTO, workers int) (*BatchResult, error) {
	if workers < 1 {
		return nil, fmt.Errorf("RunBatch: workers must be at least 1: %w", models.InvalidInputErr)
	}

	batchID := uuid.New()
	logger := log.WithContext(ctx).WithField("batchId", batchID)
	logger.Infof("pricing %d contracts on %d workers", len(rows), workers)

	results := make([]*models.ContractResultRowDTO, len(rows))
	prices := make([]float64, len(rows))
	iterations := make([]float64, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, row := range rows {
		i, row := i, row

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out, price, iters, err := runRow(gctx, svc, row)
			results[i] = out
			prices[i] = price
			iterations[i] = iters

			eventpubsub.Publish(eventpubsub.ContractPricedEvent, models.ContractPricedEvent{
				BatchID:    batchID,
				ContractID: row.ID,
				Index:      i,
				Total:      len(rows),
				Status:     out.Status,
				Err:        err,
			})

			if err != nil {
				logger.WithField("contract", row.ID).WithError(err).Warn("contract failed")
			}

			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	result := &BatchResult{BatchID: batchID}
	for i, row := range results {
		if row == nil {
			continue
		}

		result.Rows = append(result.Rows, row)

		if row.Status == StatusFailed || row.Status == StatusSkipped {
			result.Failed++
			continue
		}

		if row.Price != "" {
			result.prices = append(result.prices, prices[i])
		}

		if row.ImpliedVol != "" || row.Iterations > 0 {
			result.iterations = append(result.iterations, iterations[i])
		}
	}

	eventpubsub.Publish(eventpubsub.BatchCompletedEvent, models.BatchCompletedEvent{
		BatchID:   batchID,
		Total:     len(rows),
		Failed:    result.Failed,
		Cancelled: err != nil,
	})

	if err != nil {
		return result, fmt.Errorf("RunBatch: %w", err)
	}

	logger.Infof("batch finished with %d failures", result.Failed)

	return result, nil
}

// runRow prices when the row carries a volatility and inverts when it carries
// a market price. Rows with both get both.
func runRow(ctx context.Context, svc *service.PricingService, row *models.ContractRowDTO) (*models.ContractResultRowDTO, float64, float64, error) {
	out := &models.ContractResultRowDTO{ID: row.ID, Status: StatusPriced}
	res := svc.Config().Resolution()

	if !row.WantsPrice() && !row.WantsImpliedVol() {
		out.Status = StatusSkipped
		out.Error = "row has neither volatility nor market_price"
		return out, 0, 0, nil
	}

	var price float64
	if row.WantsPrice() {
		resp, err := svc.Price(ctx, row.ToPricingRequestDTO(res))
		if err != nil {
			out.Status = StatusFailed
			out.Error = err.Error()
			return out, 0, 0, err
		}

		price = resp.Price
		out.Price = strconv.FormatFloat(resp.Price, 'f', 6, 64)
	}

	var iterations float64
	if row.WantsImpliedVol() {
		resp, err := svc.ImpliedVol(ctx, row.ToImpliedVolRequestDTO(res, svc.Config().ImpliedVol.InitialGuess))
		if err != nil {
			out.Status = StatusFailed
			out.Error = err.Error()
			return out, price, 0, err
		}

		out.Status = resp.Status
		out.Iterations = resp.Iterations
		out.Error = resp.Reason
		iterations = float64(resp.Iterations)

		if resp.Volatility != nil {
			out.ImpliedVol = strconv.FormatFloat(*resp.Volatility, 'f', 6, 64)
		}
	}

	return out, price, iterations, nil
}

func (r *BatchResult) Summary() (*BatchSummary, error) {
	summary := &BatchSummary{
		Total:  len(r.Rows),
		Failed: r.Failed,
	}

	if len(r.prices) > 0 {
		mean, err := stats.Mean(r.prices)
		if err != nil {
			return nil, fmt.Errorf("BatchResult.Summary: mean price: %w", err)
		}

		summary.MeanPrice = mean
	}

	if len(r.iterations) > 0 {
		median, err := stats.Median(r.iterations)
		if err != nil {
			return nil, fmt.Errorf("BatchResult.Summary: median iterations: %w", err)
		}

		summary.MedianIterations = median
	}

	return summary, nil
}

func (r *BatchResult) String() string {
	display := &strings.Builder{}

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"ID", "Price", "Implied Vol", "Status", "Iterations", "Error"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, row := range r.Rows {
		table.Append([]string{
			row.ID,
			row.Price,
			row.ImpliedVol,
			row.Status,
			strconv.Itoa(row.Iterations),
			row.Error,
		})
	}

	table.Render()

	return display.String()
}
