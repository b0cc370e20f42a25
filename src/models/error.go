package models

import "fmt"

var InvalidInputErr = fmt.Errorf("invalid input")
var NumericInstabilityErr = fmt.Errorf("numeric instability")

var NonPositiveSpotErr = fmt.Errorf("%w: spot must be positive", InvalidInputErr)
var NonPositiveStrikeErr = fmt.Errorf("%w: strike must be positive", InvalidInputErr)
var NonPositiveVolatilityErr = fmt.Errorf("%w: volatility must be positive", InvalidInputErr)
var NonPositiveMaturityErr = fmt.Errorf("%w: maturity must be positive", InvalidInputErr)
var NonFiniteInputErr = fmt.Errorf("%w: inputs must be finite", InvalidInputErr)
var UnsupportedOptionTypeErr = fmt.Errorf("%w: only call options are supported", InvalidInputErr)
var TimeStepsErr = fmt.Errorf("%w: at least one time step is required", InvalidInputErr)
var PriceStepsErr = fmt.Errorf("%w: at least three price levels are required", InvalidInputErr)
var DividendLengthMismatchErr = fmt.Errorf("%w: dividend amounts and times must have the same length", InvalidInputErr)
var DividendTimeOutOfRangeErr = fmt.Errorf("%w: dividend time must lie strictly between 0 and maturity", InvalidInputErr)
var NegativeDividendErr = fmt.Errorf("%w: dividend amount must not be negative", InvalidInputErr)
var DuplicateDividendTimeErr = fmt.Errorf("%w: two dividends share the same time", InvalidInputErr)
var TargetPriceErr = fmt.Errorf("%w: target price must be finite and non-negative", InvalidInputErr)
var InitialGuessErr = fmt.Errorf("%w: initial guess must be positive", InvalidInputErr)
var MaxIterationsErr = fmt.Errorf("%w: max iterations must be at least 1", InvalidInputErr)
var ToleranceErr = fmt.Errorf("%w: tolerance must be positive", InvalidInputErr)
var GridTooLargeErr = fmt.Errorf("%w: grid exceeds the configured maximum", InvalidInputErr)

type ErrorDTO struct {
	Msg string `json:"msg"`
}
