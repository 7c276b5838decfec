package optimize

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/mobilerobotics/gptraj/factor"
)

// Optimizer iterates a factor graph from an initial state container to a
// local minimum of the summed squared whitened residuals. Implementations
// never mutate the initial container; the result is a fresh one. On error
// the returned Result still carries the best iterate found so far.
type Optimizer interface {
	Optimize(g *factor.Graph, initial *factor.Values) (*Result, error)
}

// Result is the outcome of one optimization run.
type Result struct {
	Values     *factor.Values
	FinalError float64
	Iterations int
}

var (
	// ErrIndefiniteSystem means the linearized normal equations were not
	// positive definite, usually a sign of an underconstrained graph.
	ErrIndefiniteSystem = errors.New("linearized system is not positive definite")
	// ErrMaxIterations means the iteration bound was hit before either
	// error-decrease tolerance was met.
	ErrMaxIterations = errors.New("maximum iterations reached before convergence")
)

// solveDamped solves (A + lambda I) delta = b by Cholesky factorization.
// lambda of zero solves the undamped system.
func solveDamped(a *mat.SymDense, b *mat.VecDense, lambda float64) ([]float64, error) {
	n := a.SymmetricDim()
	sys := a
	if lambda > 0 {
		damped := mat.NewSymDense(n, nil)
		damped.CopySym(a)
		for i := 0; i < n; i++ {
			damped.SetSym(i, i, damped.At(i, i)+lambda)
		}
		sys = damped
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sys); !ok {
		return nil, ErrIndefiniteSystem
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, b); err != nil {
		return nil, errors.Wrap(err, "solving normal equations")
	}
	out := make([]float64, n)
	copy(out, x.RawVector().Data)
	return out, nil
}

func stepNorm(delta []float64) float64 {
	sum := 0.0
	for _, d := range delta {
		sum += d * d
	}
	return math.Sqrt(sum)
}

// predictedDecrease is the objective decrease the linear model promises for
// a step delta: 2 b'delta - delta'A delta.
func predictedDecrease(a *mat.SymDense, b *mat.VecDense, delta []float64) float64 {
	n := len(delta)
	dv := mat.NewVecDense(n, delta)
	var ad mat.VecDense
	ad.MulVec(a, dv)
	return 2*mat.Dot(b, dv) - mat.Dot(&ad, dv)
}
