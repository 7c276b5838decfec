package optimize

import "github.com/mobilerobotics/gptraj/factor"

// LevenbergMarquardt iterates damped Gauss-Newton steps, shrinking the
// damping after accepted steps and growing it after rejected ones. It
// degrades gracefully on poorly conditioned problems where plain
// Gauss-Newton stalls.
type LevenbergMarquardt struct {
	params        Params
	initialLambda float64
	lambdaFactor  float64
	maxLambda     float64
}

// NewLevenbergMarquardt returns an LM solver with the given parameters and
// default damping schedule.
func NewLevenbergMarquardt(params Params) *LevenbergMarquardt {
	return &LevenbergMarquardt{
		params:        params,
		initialLambda: 1e-5,
		lambdaFactor:  10,
		maxLambda:     1e10,
	}
}

// Optimize implements Optimizer.
func (lm *LevenbergMarquardt) Optimize(g *factor.Graph, initial *factor.Values) (*Result, error) {
	ord := factor.NewOrdering(initial)
	values := initial.Copy()
	lambda := lm.initialLambda

	curErr, err := g.Error(values)
	if err != nil {
		return nil, err
	}

	for iter := 1; iter <= lm.params.MaxIterations; iter++ {
		a, b, _, err := g.LinearizeSystem(values, ord)
		if err != nil {
			return &Result{Values: values, FinalError: curErr, Iterations: iter - 1}, err
		}

		// grow the damping until a step decreases the objective
		accepted := false
		for lambda <= lm.maxLambda {
			delta, err := solveDamped(a, b, lambda)
			if err != nil {
				lambda *= lm.lambdaFactor
				continue
			}
			newValues := values.Retract(ord, delta)
			newErr, err := g.Error(newValues)
			if err != nil {
				return &Result{Values: values, FinalError: curErr, Iterations: iter - 1}, err
			}
			if newErr <= curErr {
				lm.params.logIteration("LevenbergMarquardt", iter, newErr, stepNorm(delta))
				converged := lm.params.converged(curErr, newErr)
				values, curErr = newValues, newErr
				lambda /= lm.lambdaFactor
				accepted = true
				if converged {
					return &Result{Values: values, FinalError: curErr, Iterations: iter}, nil
				}
				break
			}
			lambda *= lm.lambdaFactor
		}
		if !accepted {
			// no damping makes progress from here; the iterate is a local
			// minimum at this tolerance
			return &Result{Values: values, FinalError: curErr, Iterations: iter}, nil
		}
	}
	return &Result{Values: values, FinalError: curErr, Iterations: lm.params.MaxIterations}, ErrMaxIterations
}
