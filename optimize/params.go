// Package optimize provides the batch nonlinear least-squares solvers that
// consume a factor graph and an initial state container: Gauss-Newton,
// Levenberg-Marquardt and Dogleg. All three iterate the same linearize,
// solve, retract loop and share one convergence-parameter schema.
package optimize

import "github.com/edaniels/golog"

// Verbosity controls how much the optimizer logs per iteration.
type Verbosity int

const (
	// VerbositySilent logs nothing.
	VerbositySilent Verbosity = iota
	// VerbosityError logs the objective value each iteration.
	VerbosityError
	// VerbosityValues additionally logs the step norm each iteration.
	VerbosityValues
)

// Params holds the convergence thresholds shared by all solvers. Iteration
// stops when the absolute or relative decrease of the objective drops below
// its tolerance, or after MaxIterations.
type Params struct {
	MaxIterations    int
	RelativeErrorTol float64
	AbsoluteErrorTol float64
	Verbosity        Verbosity
	Logger           golog.Logger
}

// DefaultParams returns the parameter defaults.
func DefaultParams() Params {
	return Params{
		MaxIterations:    100,
		RelativeErrorTol: 1e-6,
		AbsoluteErrorTol: 1e-6,
		Verbosity:        VerbositySilent,
		Logger:           golog.Global(),
	}
}

// converged reports whether the decrease from prevErr to newErr satisfies
// either tolerance.
func (p Params) converged(prevErr, newErr float64) bool {
	decrease := prevErr - newErr
	if decrease < 0 {
		return false
	}
	if decrease <= p.AbsoluteErrorTol {
		return true
	}
	return prevErr > 0 && decrease/prevErr <= p.RelativeErrorTol
}

func (p Params) logIteration(method string, iter int, errVal, stepNorm float64) {
	if p.Logger == nil {
		return
	}
	switch p.Verbosity {
	case VerbositySilent:
	case VerbosityError:
		p.Logger.Debugf("%s iteration %d error %f", method, iter, errVal)
	case VerbosityValues:
		p.Logger.Debugf("%s iteration %d error %f step norm %f", method, iter, errVal, stepNorm)
	}
}
