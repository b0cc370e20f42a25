package impliedvol

type Status string

const (
	Converged    Status = "converged"
	NotConverged Status = "not_converged"
)

// Result is either a converged volatility or a NotConverged outcome with a
// reason. The volatility is only reachable through Volatility, so a failed
// search cannot be read as a number.
type Result struct {
	Status     Status
	Iterations int
	// Residual is price minus target at the last volatility priced. When the
	// search stops on step size that is the iterate before the returned
	// volatility, so it bounds the error of one step earlier.
	Residual float64
	Reason   string

	volatility float64
}

func converged(vol float64, iterations int, residual float64) Result {
	return Result{
		Status:     Converged,
		Iterations: iterations,
		Residual:   residual,
		volatility: vol,
	}
}

func notConverged(reason string, iterations int, residual float64) Result {
	return Result{
		Status:     NotConverged,
		Iterations: iterations,
		Residual:   residual,
		Reason:     reason,
	}
}

func (r Result) Volatility() (float64, bool) {
	if r.Status != Converged {
		return 0, false
	}

	return r.volatility, true
}

func (r Result) Converged() bool {
	return r.Status == Converged
}
