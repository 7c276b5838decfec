package planner

import (
	"go.uber.org/multierr"

	"github.com/mobilerobotics/gptraj/factor"
	"github.com/mobilerobotics/gptraj/gp"
	"github.com/mobilerobotics/gptraj/kinematics"
	"github.com/mobilerobotics/gptraj/obstacle"
)

// BatchTrajOptimize assembles and solves one trajectory optimization
// problem. Given a robot model, an obstacle field, fixed start and end
// states, an initial guess covering support indices 0..TotalStep, and a
// setting, it returns the optimized state container. The polymorphism over
// robot and field types lives entirely in the RobotModel and SDF contracts;
// the typed entry points in adapters.go are thin wrappers over this one
// implementation.
func BatchTrajOptimize(
	robot kinematics.RobotModel,
	sdf obstacle.SDF,
	startConf factor.Variable, startVel factor.Vector,
	endConf factor.Variable, endVel factor.Vector,
	initValues *factor.Values,
	setting *TrajOptimizerSetting,
) (*factor.Values, error) {
	if err := validateProblem(robot, startConf, startVel, endConf, endVel, initValues, setting); err != nil {
		return nil, err
	}

	graph, err := buildGraph(robot, sdf, startConf, startVel, endConf, endVel, setting)
	if err != nil {
		return nil, err
	}

	result, err := setting.newOptimizer().Optimize(graph, initValues)
	if err != nil {
		failure := &OptimizationFailure{Err: err}
		if result != nil {
			failure.LastValues = result.Values
			failure.FinalError = result.FinalError
			failure.Iterations = result.Iterations
		}
		return nil, failure
	}
	return result.Values, nil
}

// buildGraph wires the factor graph of one problem: boundary priors, GP
// smoothness priors per interval, a unary obstacle factor per support state,
// and ObsCheckInter interpolated obstacle factors per interval.
func buildGraph(
	robot kinematics.RobotModel,
	sdf obstacle.SDF,
	startConf factor.Variable, startVel factor.Vector,
	endConf factor.Variable, endVel factor.Vector,
	setting *TrajOptimizerSetting,
) (*factor.Graph, error) {
	dt := setting.TotalTime / float64(setting.TotalStep)
	fixNoise, err := factor.NewIsotropicNoise(setting.DOF, setting.FixSigma)
	if err != nil {
		return nil, err
	}

	graph := factor.NewGraph()
	graph.Add(
		factor.NewPrior(factor.PoseKey(0), startConf, fixNoise),
		factor.NewPrior(factor.VelocityKey(0), startVel, fixNoise),
		factor.NewPrior(factor.PoseKey(setting.TotalStep), endConf, fixNoise),
		factor.NewPrior(factor.VelocityKey(setting.TotalStep), endVel, fixNoise),
	)

	for i := 0; i < setting.TotalStep; i++ {
		prior, err := gp.NewPrior(i, i+1, dt, setting.Qc)
		if err != nil {
			return nil, err
		}
		graph.Add(prior)
	}

	for i := 0; i <= setting.TotalStep; i++ {
		obs, err := obstacle.NewFactor(i, robot, sdf, setting.ObsSigma, setting.Epsilon)
		if err != nil {
			return nil, err
		}
		graph.Add(obs)
	}

	for i := 0; i < setting.TotalStep; i++ {
		for k := 1; k <= setting.ObsCheckInter; k++ {
			tau := dt * float64(k) / float64(setting.ObsCheckInter+1)
			obs, err := obstacle.NewGPFactor(i, i+1, robot, sdf, setting.ObsSigma, setting.Epsilon, setting.Qc, dt, tau)
			if err != nil {
				return nil, err
			}
			graph.Add(obs)
		}
	}
	return graph, nil
}

// validateProblem fails fast on any configuration or dimension mismatch,
// before a single factor is built.
func validateProblem(
	robot kinematics.RobotModel,
	startConf factor.Variable, startVel factor.Vector,
	endConf factor.Variable, endVel factor.Vector,
	initValues *factor.Values,
	setting *TrajOptimizerSetting,
) error {
	if err := setting.Validate(); err != nil {
		return err
	}
	var err error
	if robot.DOF() != setting.DOF {
		err = multierr.Append(err, newInvalidSetting("DOF",
			"does not match robot model degrees of freedom"))
	}
	if startConf.Dim() != setting.DOF || endConf.Dim() != setting.DOF {
		err = multierr.Append(err, newInvalidSetting("DOF",
			"does not match boundary configuration dimensions"))
	}
	if startVel.Dim() != setting.DOF || endVel.Dim() != setting.DOF {
		err = multierr.Append(err, newInvalidSetting("DOF",
			"does not match boundary velocity dimensions"))
	}
	if err != nil {
		return err
	}
	if initValues == nil {
		return newInvalidSetting("initial values", "must not be nil")
	}
	for i := 0; i <= setting.TotalStep; i++ {
		pose, perr := initValues.Pose(i)
		if perr != nil || pose.Dim() != setting.DOF {
			return newInvalidSetting("initial values",
				"must hold a pose of matching dimension for every support index")
		}
		vel, verr := initValues.Velocity(i)
		if verr != nil || vel.Dim() != setting.DOF {
			return newInvalidSetting("initial values",
				"must hold a velocity of matching dimension for every support index")
		}
	}
	return nil
}
