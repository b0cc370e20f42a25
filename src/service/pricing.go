package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jiaming2012/american-pricer/src/impliedvol"
	"github.com/jiaming2012/american-pricer/src/models"
	"github.com/jiaming2012/american-pricer/src/pde"
	"github.com/jiaming2012/american-pricer/src/utils"
)

const instrumentationName = "github.com/jiaming2012/american-pricer/src/service"

// PricingService is shared by the CLI, the HTTP handlers and the batch worker.
// It holds no per-request state so one instance may serve concurrent callers.
type PricingService struct {
	cfg    *models.PricerConfigYAML
	opts   pde.Options
	solver *impliedvol.Solver

	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func NewPricingService(cfg *models.PricerConfigYAML) (*PricingService, error) {
	if cfg == nil {
		cfg = models.DefaultPricerConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewPricingService: %w", err)
	}

	meter := otel.Meter(instrumentationName)

	requests, err := meter.Int64Counter("pricer.requests",
		metric.WithDescription("Number of pricing and implied volatility requests"))
	if err != nil {
		return nil, fmt.Errorf("NewPricingService: counter: %w", err)
	}

	duration, err := meter.Float64Histogram("pricer.duration",
		metric.WithDescription("Time spent solving a request"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("NewPricingService: histogram: %w", err)
	}

	return &PricingService{
		cfg:      cfg,
		opts:     pde.OptionsFromConfig(cfg),
		solver:   impliedvol.NewSolver(cfg.ImpliedVol),
		tracer:   otel.Tracer(instrumentationName),
		requests: requests,
		duration: duration,
	}, nil
}

func (s *PricingService) Config() *models.PricerConfigYAML {
	return s.cfg
}

func (s *PricingService) Options() pde.Options {
	return s.opts
}

func (s *PricingService) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, models.InvalidInputErr) {
			status = "invalid"
		}
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)

	s.requests.Add(ctx, 1, attrs)
	s.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
}

// Solve prices the request and returns the full grid alongside the value.
func (s *PricingService) Solve(ctx context.Context, dto *models.PricingRequestDTO) (*models.PricingRequest, *pde.Solution, error) {
	ctx, span := s.tracer.Start(ctx, "PricingService.Solve")
	defer span.End()

	start := time.Now()

	req, sol, err := s.solve(dto)
	s.record(ctx, "price", start, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pricing failed")
		return nil, nil, err
	}

	span.SetAttributes(
		attribute.Float64("price", sol.Value),
		attribute.String("grid", req.Resolution.String()),
	)

	return req, sol, nil
}

func (s *PricingService) solve(dto *models.PricingRequestDTO) (*models.PricingRequest, *pde.Solution, error) {
	req, err := dto.ToModel(s.cfg.Resolution(), s.cfg.MaxResolution())
	if err != nil {
		return nil, nil, fmt.Errorf("PricingService.Solve: %w", err)
	}

	sol, err := pde.Solve(req.Inputs, req.Payoff, req.Dividends, s.optionsFor(req))
	if err != nil {
		return nil, nil, fmt.Errorf("PricingService.Solve: %w", err)
	}

	return req, sol, nil
}

func (s *PricingService) optionsFor(req *models.PricingRequest) pde.Options {
	opts := s.opts.WithResolution(req.Resolution)
	if req.European {
		opts = opts.WithExercise(pde.European)
	}

	return opts
}

func (s *PricingService) Price(ctx context.Context, dto *models.PricingRequestDTO) (*models.PricingResponseDTO, error) {
	requestID := uuid.New()
	logger := log.WithContext(ctx).WithField("requestId", requestID)

	req, sol, err := s.Solve(ctx, dto)
	if err != nil {
		logger.WithError(err).Warn("price request failed")
		return nil, err
	}

	exercise := pde.American
	if req.European {
		exercise = pde.European
	}

	logger.WithFields(log.Fields{
		"spot":   req.Inputs.Spot,
		"strike": req.Payoff.Strike,
		"grid":   req.Resolution.String(),
		"price":  sol.Value,
	}).Debug("priced")

	return &models.PricingResponseDTO{
		RequestID:  requestID.String(),
		Price:      sol.Value,
		Exercise:   string(exercise),
		TimeSteps:  req.Resolution.TimeSteps,
		PriceSteps: req.Resolution.PriceSteps,
		TraceID:    utils.TraceID(ctx),
	}, nil
}

// ImpliedVol returns a response for both Newton outcomes. An error means the
// request itself was rejected or the grid failed.
func (s *PricingService) ImpliedVol(ctx context.Context, dto *models.ImpliedVolRequestDTO) (*models.ImpliedVolResponseDTO, error) {
	requestID := uuid.New()
	logger := log.WithContext(ctx).WithField("requestId", requestID)

	ctx, span := s.tracer.Start(ctx, "PricingService.ImpliedVol")
	defer span.End()

	start := time.Now()

	result, err := s.impliedVol(dto)
	s.record(ctx, "implied_vol", start, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "implied volatility failed")
		logger.WithError(err).Warn("implied volatility request failed")
		return nil, err
	}

	resp := &models.ImpliedVolResponseDTO{
		RequestID:  requestID.String(),
		Status:     string(result.Status),
		Iterations: result.Iterations,
		Residual:   result.Residual,
		Reason:     result.Reason,
		TraceID:    utils.TraceID(ctx),
	}

	if vol, ok := result.Volatility(); ok {
		resp.Volatility = &vol
		span.SetAttributes(attribute.Float64("volatility", vol))
	} else {
		span.SetAttributes(attribute.String("reason", result.Reason))
	}

	span.SetAttributes(attribute.Int("iterations", result.Iterations))

	logger.WithFields(log.Fields{
		"status":     result.Status,
		"iterations": result.Iterations,
		"residual":   result.Residual,
	}).Debug("implied volatility solved")

	return resp, nil
}

func (s *PricingService) impliedVol(dto *models.ImpliedVolRequestDTO) (impliedvol.Result, error) {
	req, err := dto.ToPricingRequestDTO().ToModel(s.cfg.Resolution(), s.cfg.MaxResolution())
	if err != nil {
		return impliedvol.Result{}, fmt.Errorf("PricingService.ImpliedVol: %w", err)
	}

	solver := *s.solver
	if dto.MaxIterations != 0 {
		solver.MaxIterations = dto.MaxIterations
	}

	if dto.Tolerance != 0 {
		solver.Tolerance = dto.Tolerance
	}

	result, err := solver.Solve(dto.TargetPrice, req.Inputs, req.Payoff, req.Dividends, dto.InitialGuess, s.optionsFor(req))
	if err != nil {
		return impliedvol.Result{}, fmt.Errorf("PricingService.ImpliedVol: %w", err)
	}

	return result, nil
}
