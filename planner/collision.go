package planner

import (
	"github.com/mobilerobotics/gptraj/factor"
	"github.com/mobilerobotics/gptraj/kinematics"
	"github.com/mobilerobotics/gptraj/obstacle"
)

// CollisionCost recomputes only the obstacle-cost contribution of a
// trajectory: the sum over all support states of the squared whitened
// hinge residuals, using the same per-sphere formula as the obstacle factor.
// Smoothness terms and interpolated check points are excluded. The result is
// non-negative and exactly zero when every support-state sphere clears the
// safety margin; the container is read, never mutated, so the metric can be
// evaluated on any trajectory, optimized or not.
func CollisionCost(
	robot kinematics.RobotModel,
	sdf obstacle.SDF,
	values *factor.Values,
	setting *TrajOptimizerSetting,
) (float64, error) {
	if err := setting.Validate(); err != nil {
		return 0, err
	}
	graph := factor.NewGraph()
	for i := 0; i <= setting.TotalStep; i++ {
		obs, err := obstacle.NewFactor(i, robot, sdf, setting.ObsSigma, setting.Epsilon)
		if err != nil {
			return 0, err
		}
		graph.Add(obs)
	}
	return graph.Error(values)
}
