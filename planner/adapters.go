package planner

import (
	"github.com/mobilerobotics/gptraj/factor"
	"github.com/mobilerobotics/gptraj/geometry"
	"github.com/mobilerobotics/gptraj/kinematics"
	"github.com/mobilerobotics/gptraj/obstacle"
)

// The typed entry points below fix one robot/field pairing each and forward
// to the generic implementation. They exist so callers holding concrete
// models and plain float slices do not need to wrap anything themselves.

// BatchTrajOptimize2DArm optimizes an arm trajectory against a planar field.
func BatchTrajOptimize2DArm(
	arm *kinematics.Arm, sdf *obstacle.PlanarSDF,
	startConf, startVel, endConf, endVel []float64,
	initValues *factor.Values, setting *TrajOptimizerSetting,
) (*factor.Values, error) {
	return BatchTrajOptimize(arm, sdf,
		factor.NewVector(startConf), factor.NewVector(startVel),
		factor.NewVector(endConf), factor.NewVector(endVel),
		initValues, setting)
}

// BatchTrajOptimize3DArm optimizes an arm trajectory against a 3D field.
func BatchTrajOptimize3DArm(
	arm *kinematics.Arm, sdf *obstacle.SignedDistanceField,
	startConf, startVel, endConf, endVel []float64,
	initValues *factor.Values, setting *TrajOptimizerSetting,
) (*factor.Values, error) {
	return BatchTrajOptimize(arm, sdf,
		factor.NewVector(startConf), factor.NewVector(startVel),
		factor.NewVector(endConf), factor.NewVector(endVel),
		initValues, setting)
}

// BatchTrajOptimizePose2MobileArm2D optimizes a mobile-arm trajectory
// against a planar field.
func BatchTrajOptimizePose2MobileArm2D(
	marm *kinematics.Pose2MobileArm, sdf *obstacle.PlanarSDF,
	startConf geometry.Pose2Vector, startVel []float64,
	endConf geometry.Pose2Vector, endVel []float64,
	initValues *factor.Values, setting *TrajOptimizerSetting,
) (*factor.Values, error) {
	return BatchTrajOptimize(marm, sdf,
		startConf, factor.NewVector(startVel),
		endConf, factor.NewVector(endVel),
		initValues, setting)
}

// BatchTrajOptimizePose2MobileArm optimizes a mobile-arm trajectory against
// a 3D field.
func BatchTrajOptimizePose2MobileArm(
	marm *kinematics.Pose2MobileArm, sdf *obstacle.SignedDistanceField,
	startConf geometry.Pose2Vector, startVel []float64,
	endConf geometry.Pose2Vector, endVel []float64,
	initValues *factor.Values, setting *TrajOptimizerSetting,
) (*factor.Values, error) {
	return BatchTrajOptimize(marm, sdf,
		startConf, factor.NewVector(startVel),
		endConf, factor.NewVector(endVel),
		initValues, setting)
}

// CollisionCost2DArm evaluates the collision cost of an arm trajectory
// against a planar field.
func CollisionCost2DArm(
	arm *kinematics.Arm, sdf *obstacle.PlanarSDF,
	values *factor.Values, setting *TrajOptimizerSetting,
) (float64, error) {
	return CollisionCost(arm, sdf, values, setting)
}

// CollisionCost3DArm evaluates the collision cost of an arm trajectory
// against a 3D field.
func CollisionCost3DArm(
	arm *kinematics.Arm, sdf *obstacle.SignedDistanceField,
	values *factor.Values, setting *TrajOptimizerSetting,
) (float64, error) {
	return CollisionCost(arm, sdf, values, setting)
}

// CollisionCostPose2MobileArm2D evaluates the collision cost of a mobile-arm
// trajectory against a planar field.
func CollisionCostPose2MobileArm2D(
	marm *kinematics.Pose2MobileArm, sdf *obstacle.PlanarSDF,
	values *factor.Values, setting *TrajOptimizerSetting,
) (float64, error) {
	return CollisionCost(marm, sdf, values, setting)
}

// CollisionCostPose2MobileArm evaluates the collision cost of a mobile-arm
// trajectory against a 3D field.
func CollisionCostPose2MobileArm(
	marm *kinematics.Pose2MobileArm, sdf *obstacle.SignedDistanceField,
	values *factor.Values, setting *TrajOptimizerSetting,
) (float64, error) {
	return CollisionCost(marm, sdf, values, setting)
}
