package optimize

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mobilerobotics/gptraj/factor"
)

// Dogleg iterates trust-region steps blending the Gauss-Newton step with the
// steepest-descent step, growing the trust radius when the linear model
// predicts the observed decrease well and shrinking it when it does not.
type Dogleg struct {
	params        Params
	initialRadius float64
	minRadius     float64
}

// NewDogleg returns a Dogleg solver with the given parameters.
func NewDogleg(params Params) *Dogleg {
	return &Dogleg{params: params, initialRadius: 1.0, minRadius: 1e-10}
}

// doglegStep combines the Gauss-Newton and steepest-descent steps into a
// step of norm at most radius.
func doglegStep(gnStep, sdStep []float64, radius float64) []float64 {
	if stepNorm(gnStep) <= radius {
		return gnStep
	}
	sdNorm := stepNorm(sdStep)
	if sdNorm >= radius {
		// truncated gradient step
		out := make([]float64, len(sdStep))
		scale := radius / sdNorm
		for i, d := range sdStep {
			out[i] = d * scale
		}
		return out
	}
	// walk from the gradient step toward the Gauss-Newton step until the
	// trust boundary: solve |sd + t (gn - sd)| = radius for t in [0, 1]
	diff := make([]float64, len(gnStep))
	var a, b, c float64
	for i := range gnStep {
		diff[i] = gnStep[i] - sdStep[i]
		a += diff[i] * diff[i]
		b += 2 * sdStep[i] * diff[i]
		c += sdStep[i] * sdStep[i]
	}
	c -= radius * radius
	disc := b*b - 4*a*c
	if disc < 0 {
		disc = 0
	}
	t := (-b + math.Sqrt(disc)) / (2 * a)
	out := make([]float64, len(gnStep))
	for i := range out {
		out[i] = sdStep[i] + t*diff[i]
	}
	return out
}

// steepestDescentStep returns the Cauchy point step alpha*b with
// alpha = |b|^2 / (b'A b).
func steepestDescentStep(a *mat.SymDense, b *mat.VecDense) []float64 {
	n := b.Len()
	var ab mat.VecDense
	ab.MulVec(a, b)
	denom := mat.Dot(&ab, b)
	num := mat.Dot(b, b)
	alpha := 0.0
	if denom > 0 {
		alpha = num / denom
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = alpha * b.AtVec(i)
	}
	return out
}

// Optimize implements Optimizer.
func (dl *Dogleg) Optimize(g *factor.Graph, initial *factor.Values) (*Result, error) {
	ord := factor.NewOrdering(initial)
	values := initial.Copy()
	radius := dl.initialRadius

	curErr, err := g.Error(values)
	if err != nil {
		return nil, err
	}

	for iter := 1; iter <= dl.params.MaxIterations; iter++ {
		a, b, _, err := g.LinearizeSystem(values, ord)
		if err != nil {
			return &Result{Values: values, FinalError: curErr, Iterations: iter - 1}, err
		}
		gnStep, err := solveDamped(a, b, 0)
		if err != nil {
			// fall back to pure gradient steps inside the trust region
			gnStep = steepestDescentStep(a, b)
		}
		sdStep := steepestDescentStep(a, b)

		accepted := false
		for radius >= dl.minRadius {
			delta := doglegStep(gnStep, sdStep, radius)
			predicted := predictedDecrease(a, b, delta)
			if predicted <= 0 {
				break
			}
			newValues := values.Retract(ord, delta)
			newErr, err := g.Error(newValues)
			if err != nil {
				return &Result{Values: values, FinalError: curErr, Iterations: iter - 1}, err
			}
			actual := curErr - newErr
			rho := actual / predicted

			if rho > 0 {
				dl.params.logIteration("Dogleg", iter, newErr, stepNorm(delta))
				converged := dl.params.converged(curErr, newErr)
				values, curErr = newValues, newErr
				if rho > 0.75 {
					radius *= 2
				} else if rho < 0.25 {
					radius /= 2
				}
				accepted = true
				if converged {
					return &Result{Values: values, FinalError: curErr, Iterations: iter}, nil
				}
				break
			}
			radius /= 2
		}
		if !accepted {
			return &Result{Values: values, FinalError: curErr, Iterations: iter}, nil
		}
	}
	return &Result{Values: values, FinalError: curErr, Iterations: dl.params.MaxIterations}, ErrMaxIterations
}
