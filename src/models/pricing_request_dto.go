package models

import "fmt"

// PricingRequestDTO is the flat wire form of a pricing request. The schema tags
// let GET handlers decode it straight from query parameters.
type PricingRequestDTO struct {
	Spot          float64   `json:"spot" schema:"spot"`
	Strike        float64   `json:"strike" schema:"strike"`
	Rate          float64   `json:"rate" schema:"rate"`
	DividendYield float64   `json:"dividendYield" schema:"dividendYield"`
	Maturity      float64   `json:"maturity" schema:"maturity"`
	Volatility    float64   `json:"volatility" schema:"volatility"`
	Dividends     []float64 `json:"dividends" schema:"dividends"`
	DividendTimes []float64 `json:"dividendTimes" schema:"dividendTimes"`
	TimeSteps     int       `json:"timeSteps" schema:"timeSteps"`
	PriceSteps    int       `json:"priceSteps" schema:"priceSteps"`
	European      bool      `json:"european" schema:"european"`
}

type PricingRequest struct {
	Inputs     MarketInputs
	Payoff     PayoffSpec
	Dividends  DividendSchedule
	Resolution GridResolution
	European   bool
}

// ToModel validates the DTO. Zero resolutions fall back to the given defaults,
// and the resulting grid may not exceed limit.
func (dto *PricingRequestDTO) ToModel(defaults, limit GridResolution) (*PricingRequest, error) {
	req := &PricingRequest{
		Inputs: MarketInputs{
			Spot:          dto.Spot,
			Rate:          dto.Rate,
			DividendYield: dto.DividendYield,
			Volatility:    dto.Volatility,
			Maturity:      dto.Maturity,
		},
		Payoff:     NewCallPayoff(dto.Strike),
		Resolution: defaults,
		European:   dto.European,
	}

	if dto.TimeSteps != 0 {
		req.Resolution.TimeSteps = dto.TimeSteps
	}

	if dto.PriceSteps != 0 {
		req.Resolution.PriceSteps = dto.PriceSteps
	}

	if err := req.Inputs.Validate(); err != nil {
		return nil, fmt.Errorf("PricingRequestDTO.ToModel: %w", err)
	}

	if err := req.Payoff.Validate(); err != nil {
		return nil, fmt.Errorf("PricingRequestDTO.ToModel: %w", err)
	}

	if err := req.Resolution.ValidateWithin(limit); err != nil {
		return nil, fmt.Errorf("PricingRequestDTO.ToModel: %w", err)
	}

	schedule, err := NewDividendSchedule(dto.Dividends, dto.DividendTimes, dto.Maturity)
	if err != nil {
		return nil, fmt.Errorf("PricingRequestDTO.ToModel: %w", err)
	}

	req.Dividends = schedule

	return req, nil
}

type ImpliedVolRequestDTO struct {
	TargetPrice   float64   `json:"targetPrice" schema:"targetPrice"`
	Spot          float64   `json:"spot" schema:"spot"`
	Strike        float64   `json:"strike" schema:"strike"`
	Rate          float64   `json:"rate" schema:"rate"`
	DividendYield float64   `json:"dividendYield" schema:"dividendYield"`
	Maturity      float64   `json:"maturity" schema:"maturity"`
	Dividends     []float64 `json:"dividends" schema:"dividends"`
	DividendTimes []float64 `json:"dividendTimes" schema:"dividendTimes"`
	InitialGuess  float64   `json:"initialGuess" schema:"initialGuess"`
	MaxIterations int       `json:"maxIterations" schema:"maxIterations"`
	Tolerance     float64   `json:"tolerance" schema:"tolerance"`
	TimeSteps     int       `json:"timeSteps" schema:"timeSteps"`
	PriceSteps    int       `json:"priceSteps" schema:"priceSteps"`
}

// ToPricingRequestDTO returns the pricing half of the request, with the initial
// guess standing in for volatility so the market inputs can be validated.
func (dto *ImpliedVolRequestDTO) ToPricingRequestDTO() *PricingRequestDTO {
	vol := dto.InitialGuess
	if vol == 0 {
		vol = 0.2
	}

	return &PricingRequestDTO{
		Spot:          dto.Spot,
		Strike:        dto.Strike,
		Rate:          dto.Rate,
		DividendYield: dto.DividendYield,
		Maturity:      dto.Maturity,
		Volatility:    vol,
		Dividends:     dto.Dividends,
		DividendTimes: dto.DividendTimes,
		TimeSteps:     dto.TimeSteps,
		PriceSteps:    dto.PriceSteps,
	}
}

type PricingResponseDTO struct {
	RequestID  string  `json:"requestId"`
	Price      float64 `json:"price"`
	Exercise   string  `json:"exercise"`
	TimeSteps  int     `json:"timeSteps"`
	PriceSteps int     `json:"priceSteps"`
	TraceID    string  `json:"traceId,omitempty"`
}

type ImpliedVolResponseDTO struct {
	RequestID  string   `json:"requestId"`
	Status     string   `json:"status"`
	Volatility *float64 `json:"volatility,omitempty"`
	Iterations int      `json:"iterations"`
	Residual   float64  `json:"residual"`
	Reason     string   `json:"reason,omitempty"`
	TraceID    string   `json:"traceId,omitempty"`
}
