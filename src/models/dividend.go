package models

// Dividend is a cash amount paid at Time, a year fraction from valuation.
type Dividend struct {
	Time   float64 `json:"time" yaml:"time"`
	Amount float64 `json:"amount" yaml:"amount"`
}
