package planner

import (
	"fmt"

	"github.com/mobilerobotics/gptraj/factor"
)

// InvalidSettingError reports a malformed configuration or a dimension
// mismatch between the robot model and the supplied states. It is returned
// before any factor is built.
type InvalidSettingError struct {
	Field  string
	Reason string
}

func (e *InvalidSettingError) Error() string {
	return fmt.Sprintf("invalid trajectory optimizer setting: %s %s", e.Field, e.Reason)
}

func newInvalidSetting(field, reason string) *InvalidSettingError {
	return &InvalidSettingError{Field: field, Reason: reason}
}

// OptimizationFailure reports that the nonlinear solver could not produce a
// converged result. It carries the best iterate the solver reached so a
// caller can inspect or reuse it.
type OptimizationFailure struct {
	// LastValues is the best-known iterate, nil if the solver failed before
	// producing one.
	LastValues *factor.Values
	FinalError float64
	Iterations int
	Err        error
}

func (e *OptimizationFailure) Error() string {
	return fmt.Sprintf("trajectory optimization failed after %d iterations (error %f): %v",
		e.Iterations, e.FinalError, e.Err)
}

func (e *OptimizationFailure) Unwrap() error { return e.Err }
