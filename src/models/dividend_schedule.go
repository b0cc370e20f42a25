package models

import (
	"fmt"
	"math"
	"sort"
)

// DividendSchedule is sorted ascending by time. Build it with
// NewDividendSchedule; the zero value is an empty schedule.
type DividendSchedule struct {
	dividends []Dividend
}

// NewDividendSchedule pairs amounts[i] with times[i], sorts by time and checks
// every entry against maturity.
func NewDividendSchedule(amounts, times []float64, maturity float64) (DividendSchedule, error) {
	if len(amounts) != len(times) {
		return DividendSchedule{}, fmt.Errorf("NewDividendSchedule: %d amounts, %d times: %w", len(amounts), len(times), DividendLengthMismatchErr)
	}

	dividends := make([]Dividend, len(amounts))
	for i := range amounts {
		dividends[i] = Dividend{
			Time:   times[i],
			Amount: amounts[i],
		}
	}

	return NewDividendScheduleFromDividends(dividends, maturity)
}

func NewDividendScheduleFromDividends(dividends []Dividend, maturity float64) (DividendSchedule, error) {
	sorted := make([]Dividend, len(dividends))
	copy(sorted, dividends)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	schedule := DividendSchedule{dividends: sorted}
	if err := schedule.Validate(maturity); err != nil {
		return DividendSchedule{}, fmt.Errorf("NewDividendSchedule: %w", err)
	}

	return schedule, nil
}

func (s DividendSchedule) Validate(maturity float64) error {
	for i, d := range s.dividends {
		if math.IsNaN(d.Time) || math.IsInf(d.Time, 0) || math.IsNaN(d.Amount) || math.IsInf(d.Amount, 0) {
			return fmt.Errorf("DividendSchedule.Validate: entry %d: %w", i, NonFiniteInputErr)
		}

		if d.Time <= 0 || d.Time >= maturity {
			return fmt.Errorf("DividendSchedule.Validate: time %v outside (0, %v): %w", d.Time, maturity, DividendTimeOutOfRangeErr)
		}

		if d.Amount < 0 {
			return fmt.Errorf("DividendSchedule.Validate: found %v: %w", d.Amount, NegativeDividendErr)
		}

		if i > 0 && s.dividends[i-1].Time >= d.Time {
			return fmt.Errorf("DividendSchedule.Validate: time %v: %w", d.Time, DuplicateDividendTimeErr)
		}
	}

	return nil
}

func (s DividendSchedule) Len() int {
	return len(s.dividends)
}

func (s DividendSchedule) IsEmpty() bool {
	return len(s.dividends) == 0
}

// Dividends returns a copy of the schedule in ascending time order.
func (s DividendSchedule) Dividends() []Dividend {
	out := make([]Dividend, len(s.dividends))
	copy(out, s.dividends)
	return out
}

// PresentValue discounts every cash amount to valuation at the given rate.
func (s DividendSchedule) PresentValue(rate float64) float64 {
	pv := 0.0
	for _, d := range s.dividends {
		pv += d.Amount * math.Exp(-rate*d.Time)
	}

	return pv
}

func (s DividendSchedule) Amounts() []float64 {
	out := make([]float64, len(s.dividends))
	for i, d := range s.dividends {
		out[i] = d.Amount
	}

	return out
}

func (s DividendSchedule) Times() []float64 {
	out := make([]float64, len(s.dividends))
	for i, d := range s.dividends {
		out[i] = d.Time
	}

	return out
}
