// Package planner assembles continuous-time trajectory optimization
// problems over a factor graph: fixed start and end priors, Gaussian-process
// smoothness priors between support states, and signed-distance-field
// obstacle factors at support states and GP-interpolated virtual states. It
// hands the assembled graph to a batch nonlinear solver and returns the
// optimized state container.
package planner

import (
	"github.com/edaniels/golog"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"github.com/mobilerobotics/gptraj/gp"
	"github.com/mobilerobotics/gptraj/optimize"
)

// OptimizerType selects the batch nonlinear solver.
type OptimizerType int

const (
	// GaussNewton takes full undamped steps.
	GaussNewton OptimizerType = iota
	// LevenbergMarquardt takes adaptively damped steps.
	LevenbergMarquardt
	// Dogleg takes trust-region steps.
	Dogleg
)

// TrajOptimizerSetting is the read-only configuration of one trajectory
// optimization call.
type TrajOptimizerSetting struct {
	// DOF is the robot's degrees of freedom; it must match the robot model
	// and every supplied pose and velocity.
	DOF int
	// TotalStep is the number of discretization intervals; the trajectory
	// has TotalStep+1 support states.
	TotalStep int
	// TotalTime is the trajectory duration in seconds.
	TotalTime float64
	// Qc is the positive-definite process-noise covariance of the GP prior.
	Qc *mat.SymDense
	// FixSigma is the standard deviation of the start and end priors. Small
	// values realize hard boundary conditions as tight soft constraints; the
	// boundary match tolerance is proportional to it.
	FixSigma float64
	// ObsSigma is the obstacle cost standard deviation.
	ObsSigma float64
	// Epsilon is the safety margin from each body sphere's surface.
	Epsilon float64
	// ObsCheckInter is the number of GP-interpolated collision check points
	// per interval; zero disables interpolated factors.
	ObsCheckInter int

	Optimizer        OptimizerType
	MaxIterations    int
	RelativeErrorTol float64
	AbsoluteErrorTol float64
	Verbosity        optimize.Verbosity
	Logger           golog.Logger
}

// NewTrajOptimizerSetting returns the default settings for a robot with the
// given degrees of freedom: ten intervals over one second, unit process
// noise, and Levenberg-Marquardt.
func NewTrajOptimizerSetting(dof int) *TrajOptimizerSetting {
	return &TrajOptimizerSetting{
		DOF:              dof,
		TotalStep:        10,
		TotalTime:        1.0,
		Qc:               gp.IsotropicQc(dof, 1.0),
		FixSigma:         1e-4,
		ObsSigma:         0.1,
		Epsilon:          0.2,
		ObsCheckInter:    5,
		Optimizer:        LevenbergMarquardt,
		MaxIterations:    250,
		RelativeErrorTol: 1e-6,
		AbsoluteErrorTol: 1e-10,
		Verbosity:        optimize.VerbositySilent,
		Logger:           golog.Global(),
	}
}

// Validate checks the setting for malformed values; it reports every
// violation, not only the first.
func (s *TrajOptimizerSetting) Validate() error {
	var err error
	if s.DOF <= 0 {
		err = multierr.Append(err, newInvalidSetting("DOF", "must be positive"))
	}
	if s.TotalStep < 1 {
		err = multierr.Append(err, newInvalidSetting("TotalStep", "must be at least 1"))
	}
	if s.TotalTime <= 0 {
		err = multierr.Append(err, newInvalidSetting("TotalTime", "must be positive"))
	}
	if s.Qc == nil || s.Qc.SymmetricDim() != s.DOF {
		err = multierr.Append(err, newInvalidSetting("Qc", "must be a DOF x DOF covariance"))
	}
	if s.FixSigma <= 0 {
		err = multierr.Append(err, newInvalidSetting("FixSigma", "must be positive"))
	}
	if s.ObsSigma <= 0 {
		err = multierr.Append(err, newInvalidSetting("ObsSigma", "must be positive"))
	}
	if s.Epsilon < 0 {
		err = multierr.Append(err, newInvalidSetting("Epsilon", "must be non-negative"))
	}
	if s.ObsCheckInter < 0 {
		err = multierr.Append(err, newInvalidSetting("ObsCheckInter", "must be non-negative"))
	}
	if s.MaxIterations <= 0 {
		err = multierr.Append(err, newInvalidSetting("MaxIterations", "must be positive"))
	}
	if s.RelativeErrorTol < 0 {
		err = multierr.Append(err, newInvalidSetting("RelativeErrorTol", "must be non-negative"))
	}
	if s.AbsoluteErrorTol < 0 {
		err = multierr.Append(err, newInvalidSetting("AbsoluteErrorTol", "must be non-negative"))
	}
	return err
}

func (s *TrajOptimizerSetting) optimizerParams() optimize.Params {
	return optimize.Params{
		MaxIterations:    s.MaxIterations,
		RelativeErrorTol: s.RelativeErrorTol,
		AbsoluteErrorTol: s.AbsoluteErrorTol,
		Verbosity:        s.Verbosity,
		Logger:           s.Logger,
	}
}

func (s *TrajOptimizerSetting) newOptimizer() optimize.Optimizer {
	switch s.Optimizer {
	case GaussNewton:
		return optimize.NewGaussNewton(s.optimizerParams())
	case Dogleg:
		return optimize.NewDogleg(s.optimizerParams())
	default:
		return optimize.NewLevenbergMarquardt(s.optimizerParams())
	}
}
