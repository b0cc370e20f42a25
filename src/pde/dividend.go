package pde

import (
	"fmt"
	"math"
	"sort"

	"github.com/jiaming2012/american-pricer/src/models"
)

// snapTolerance absorbs floating error in tau/dt so a dividend sitting on a
// time level is not pushed one level earlier.
const snapTolerance = 1e-9

// snapLevel maps a dividend time to the nearest time level at or before it.
// Ties round down; the result is clamped to [0, timeSteps-1].
func snapLevel(t, dt float64, timeSteps int) int {
	n := int(math.Floor(t/dt + snapTolerance))
	if n < 0 {
		return 0
	}

	if n > timeSteps-1 {
		return timeSteps - 1
	}

	return n
}

// snapDividends groups dividends by time level. Within a level they are ordered
// latest first, the order they are met while stepping backward.
func snapDividends(schedule models.DividendSchedule, dt float64, timeSteps int) map[int][]models.Dividend {
	out := make(map[int][]models.Dividend)
	for _, d := range schedule.Dividends() {
		if d.Amount == 0 {
			continue
		}

		n := snapLevel(d.Time, dt, timeSteps)
		out[n] = append(out[n], d)
	}

	for _, divs := range out {
		sort.SliceStable(divs, func(i, j int) bool {
			return divs[i].Time > divs[j].Time
		})
	}

	return out
}

// applyDividend maps post-dividend values onto pre-dividend prices:
// V_before(S) = V_after(S - amount), clamped to the grid. The column is fitted
// once, so a jump costs O(N_s).
func applyDividend(prices, values []float64, amount float64) ([]float64, error) {
	curve, err := fitClampedLinear(prices, values)
	if err != nil {
		return nil, fmt.Errorf("applyDividend: %w", err)
	}

	out := make([]float64, len(values))
	for i, s := range prices {
		out[i] = curve.at(s - amount)
	}

	return out, nil
}
