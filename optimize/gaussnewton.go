package optimize

import "github.com/mobilerobotics/gptraj/factor"

// GaussNewton iterates full undamped Gauss-Newton steps. It is the fastest
// of the solvers when the linearization is well conditioned, and stops
// rather than diverging when a step would increase the objective.
type GaussNewton struct {
	params Params
}

// NewGaussNewton returns a Gauss-Newton solver with the given parameters.
func NewGaussNewton(params Params) *GaussNewton {
	return &GaussNewton{params: params}
}

// Optimize implements Optimizer.
func (gn *GaussNewton) Optimize(g *factor.Graph, initial *factor.Values) (*Result, error) {
	ord := factor.NewOrdering(initial)
	values := initial.Copy()

	curErr, err := g.Error(values)
	if err != nil {
		return nil, err
	}

	for iter := 1; iter <= gn.params.MaxIterations; iter++ {
		a, b, _, err := g.LinearizeSystem(values, ord)
		if err != nil {
			return &Result{Values: values, FinalError: curErr, Iterations: iter - 1}, err
		}
		delta, err := solveDamped(a, b, 0)
		if err != nil {
			return &Result{Values: values, FinalError: curErr, Iterations: iter - 1}, err
		}

		newValues := values.Retract(ord, delta)
		newErr, err := g.Error(newValues)
		if err != nil {
			return &Result{Values: values, FinalError: curErr, Iterations: iter - 1}, err
		}
		gn.params.logIteration("GaussNewton", iter, newErr, stepNorm(delta))

		if newErr > curErr {
			// full steps overshoot near singular linearizations; keep the
			// last good iterate instead of diverging
			return &Result{Values: values, FinalError: curErr, Iterations: iter}, nil
		}
		converged := gn.params.converged(curErr, newErr)
		values, curErr = newValues, newErr
		if converged {
			return &Result{Values: values, FinalError: curErr, Iterations: iter}, nil
		}
	}
	return &Result{Values: values, FinalError: curErr, Iterations: gn.params.MaxIterations}, ErrMaxIterations
}
