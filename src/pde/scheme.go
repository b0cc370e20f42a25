package pde

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/jiaming2012/american-pricer/src/models"
)

type Scheme string

const (
	CrankNicolson Scheme = models.SchemeCrankNicolson
	Implicit      Scheme = models.SchemeImplicit
)

func (s Scheme) Validate() error {
	if s != CrankNicolson && s != Implicit {
		return fmt.Errorf("Scheme.Validate: unknown scheme %q: %w", s, models.InvalidInputErr)
	}

	return nil
}

// theta returns the implicitness weight of the k-th step counted from maturity.
func (s Scheme) theta(k, rannacherSteps int) float64 {
	if s == Implicit || k < rannacherSteps {
		return 1
	}

	return 0.5
}

// operator holds the spatial discretization of
// 0.5*sigma^2*S^2*V_SS + (r-q)*S*V_S - r*V on a uniform grid, where row i reads
// lower[i]*V[i-1] + diag[i]*V[i] + upper[i]*V[i+1].
type operator struct {
	lower []float64
	diag  []float64
	upper []float64
}

func newOperator(levels int, inputs models.MarketInputs) operator {
	op := operator{
		lower: make([]float64, levels),
		diag:  make([]float64, levels),
		upper: make([]float64, levels),
	}

	variance := inputs.Volatility * inputs.Volatility
	drift := inputs.Rate - inputs.DividendYield

	for i := 1; i < levels-1; i++ {
		x := float64(i)
		op.lower[i] = 0.5*variance*x*x - 0.5*drift*x
		op.diag[i] = -variance*x*x - inputs.Rate
		op.upper[i] = 0.5*variance*x*x + 0.5*drift*x
	}

	return op
}

// step advances one time level backward:
// (I - theta*dt*L) V_n = (I + (1-theta)*dt*L) V_{n+1}
// with V_n[0] = lowerBC and V_n[last] = upperBC held fixed.
func (op operator) step(next []float64, dt, theta, lowerBC, upperBC float64) ([]float64, error) {
	levels := len(next)
	m := levels - 2

	dl := make([]float64, m-1)
	d := make([]float64, m)
	du := make([]float64, m-1)
	rhs := make([]float64, m)

	explicit := (1 - theta) * dt
	implicit := theta * dt

	for k := 0; k < m; k++ {
		i := k + 1

		rhs[k] = next[i] + explicit*(op.lower[i]*next[i-1]+op.diag[i]*next[i]+op.upper[i]*next[i+1])
		d[k] = 1 - implicit*op.diag[i]

		if k > 0 {
			dl[k-1] = -implicit * op.lower[i]
		} else {
			rhs[k] += implicit * op.lower[i] * lowerBC
		}

		if k < m-1 {
			du[k] = -implicit * op.upper[i]
		} else {
			rhs[k] += implicit * op.upper[i] * upperBC
		}
	}

	a := mat.NewTridiag(m, dl, d, du)
	x := mat.NewVecDense(m, nil)
	if err := a.SolveVecTo(x, false, mat.NewVecDense(m, rhs)); err != nil {
		return nil, fmt.Errorf("operator.step: %v: %w", err, models.NumericInstabilityErr)
	}

	out := make([]float64, levels)
	out[0] = lowerBC
	for k := 0; k < m; k++ {
		out[k+1] = x.AtVec(k)
	}
	out[levels-1] = upperBC

	return out, nil
}
