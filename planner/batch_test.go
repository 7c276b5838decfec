package planner

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/mobilerobotics/gptraj/factor"
	"github.com/mobilerobotics/gptraj/geometry"
	"github.com/mobilerobotics/gptraj/kinematics"
	"github.com/mobilerobotics/gptraj/obstacle"
)

// diskField builds a planar SDF of a single disk obstacle.
func diskField(t *testing.T, center r3.Vector, radius float64) *obstacle.PlanarSDF {
	t.Helper()
	const (
		cell = 0.05
		n    = 81 // covers [-2, 2] in both axes
	)
	origin := r3.Vector{X: -2, Y: -2}
	data := make([][]float64, n)
	for iy := range data {
		data[iy] = make([]float64, n)
		for ix := range data[iy] {
			p := r3.Vector{X: origin.X + float64(ix)*cell, Y: origin.Y + float64(iy)*cell}
			data[iy][ix] = p.Sub(center).Norm() - radius
		}
	}
	sdf, err := obstacle.NewPlanarSDF(origin, cell, data)
	test.That(t, err, test.ShouldBeNil)
	return sdf
}

// emptyField builds a planar SDF with no obstacles anywhere in bounds.
func emptyField(t *testing.T) *obstacle.PlanarSDF {
	t.Helper()
	data := make([][]float64, 5)
	for iy := range data {
		data[iy] = make([]float64, 5)
		for ix := range data[iy] {
			data[iy][ix] = 1000.0
		}
	}
	sdf, err := obstacle.NewPlanarSDF(r3.Vector{X: -5, Y: -5}, 2.5, data)
	test.That(t, err, test.ShouldBeNil)
	return sdf
}

func singleLinkArm(t *testing.T) *kinematics.Arm {
	t.Helper()
	arm, err := kinematics.NewPlanarArm([]float64{1}, 1, 0.01)
	test.That(t, err, test.ShouldBeNil)
	return arm
}

func armSetting() *TrajOptimizerSetting {
	setting := NewTrajOptimizerSetting(1)
	setting.Epsilon = 0.05
	setting.ObsCheckInter = 3
	return setting
}

func TestBatchTrajOptimizeAvoidsDiskObstacle(t *testing.T) {
	// A single-link arm sweeps from -45 to +45 degrees. The disk's boundary
	// crosses the tip path at the sweep midpoint, so the straight-line
	// initialization collides there and the optimized trajectory must not.
	//
	//        . tip path          * disk at (1.25, 0)
	//      /                 ***
	//     |   end  x      *******
	//     |        ------*******
	//     |   start x     *******
	//      \                 ***
	arm := singleLinkArm(t)
	sdf := diskField(t, r3.Vector{X: 1.25}, 0.3)
	setting := armSetting()

	startConf := []float64{-math.Pi / 4}
	endConf := []float64{math.Pi / 4}
	zeroVel := []float64{0}

	init := InitTrajectory(factor.NewVector(startConf), factor.NewVector(endConf), setting)
	costBefore, err := CollisionCost2DArm(arm, sdf, init, setting)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, costBefore, test.ShouldBeGreaterThan, 0.0)

	result, err := BatchTrajOptimize2DArm(arm, sdf, startConf, zeroVel, endConf, zeroVel, init, setting)
	test.That(t, err, test.ShouldBeNil)

	costAfter, err := CollisionCost2DArm(arm, sdf, result, setting)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, costAfter, test.ShouldBeLessThan, costBefore)

	// boundary conditions hold to within the fixed-prior tolerance
	pose0, err := result.Pose(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose0.(factor.Vector)[0], test.ShouldAlmostEqual, startConf[0], 1e-3)
	poseN, err := result.Pose(setting.TotalStep)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, poseN.(factor.Vector)[0], test.ShouldAlmostEqual, endConf[0], 1e-3)
	vel0, err := result.Velocity(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vel0[0], test.ShouldAlmostEqual, 0.0, 1e-3)

	// every support state still present
	for i := 0; i <= setting.TotalStep; i++ {
		_, err = result.Pose(i)
		test.That(t, err, test.ShouldBeNil)
		_, err = result.Velocity(i)
		test.That(t, err, test.ShouldBeNil)
	}
}

func TestBatchTrajOptimizeNoObstaclesYieldsStraightLine(t *testing.T) {
	// with nothing to avoid and boundary velocities at the average velocity,
	// the GP prior optimum is the constant-velocity straight line,
	// independent of the interpolated check count
	arm := singleLinkArm(t)
	sdf := emptyField(t)

	for _, interp := range []int{0, 3} {
		setting := armSetting()
		setting.ObsCheckInter = interp

		startConf := []float64{-math.Pi / 4}
		endConf := []float64{math.Pi / 4}
		span := endConf[0] - startConf[0]
		avgVel := []float64{span / setting.TotalTime}

		init := InitTrajectory(factor.NewVector(startConf), factor.NewVector(endConf), setting)
		result, err := BatchTrajOptimize2DArm(arm, sdf, startConf, avgVel, endConf, avgVel, init, setting)
		test.That(t, err, test.ShouldBeNil)

		cost, err := CollisionCost2DArm(arm, sdf, result, setting)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cost, test.ShouldAlmostEqual, 0.0, 1e-12)

		for i := 1; i < setting.TotalStep; i++ {
			want := startConf[0] + span*float64(i)/float64(setting.TotalStep)
			pose, err := result.Pose(i)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, pose.(factor.Vector)[0], test.ShouldAlmostEqual, want, 1e-2)
			vel, err := result.Velocity(i)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, vel[0], test.ShouldAlmostEqual, avgVel[0], 1e-2)
		}
	}
}

func TestBatchTrajOptimizeIdempotent(t *testing.T) {
	arm := singleLinkArm(t)
	sdf := diskField(t, r3.Vector{X: 1.25}, 0.3)
	setting := armSetting()

	startConf := factor.NewVector([]float64{-math.Pi / 4})
	endConf := factor.NewVector([]float64{math.Pi / 4})
	zeroVel := factor.NewVector([]float64{0})

	init := InitTrajectory(startConf, endConf, setting)
	first, err := BatchTrajOptimize(arm, sdf, startConf, zeroVel, endConf, zeroVel, init, setting)
	test.That(t, err, test.ShouldBeNil)
	second, err := BatchTrajOptimize(arm, sdf, startConf, zeroVel, endConf, zeroVel, first, setting)
	test.That(t, err, test.ShouldBeNil)

	graph, err := buildGraph(arm, sdf, startConf, zeroVel, endConf, zeroVel, setting)
	test.That(t, err, test.ShouldBeNil)
	firstErr, err := graph.Error(first)
	test.That(t, err, test.ShouldBeNil)
	secondErr, err := graph.Error(second)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, secondErr, test.ShouldAlmostEqual, firstErr, 1e-4)
}

func TestObjectiveNeverIncreasesFromInitialGuess(t *testing.T) {
	arm := singleLinkArm(t)
	sdf := diskField(t, r3.Vector{X: 1.25}, 0.3)

	for _, opt := range []OptimizerType{GaussNewton, LevenbergMarquardt, Dogleg} {
		setting := armSetting()
		setting.Optimizer = opt

		startConf := factor.NewVector([]float64{-math.Pi / 4})
		endConf := factor.NewVector([]float64{math.Pi / 4})
		zeroVel := factor.NewVector([]float64{0})

		init := InitTrajectory(startConf, endConf, setting)
		result, err := BatchTrajOptimize(arm, sdf, startConf, zeroVel, endConf, zeroVel, init, setting)
		test.That(t, err, test.ShouldBeNil)

		graph, err := buildGraph(arm, sdf, startConf, zeroVel, endConf, zeroVel, setting)
		test.That(t, err, test.ShouldBeNil)
		initErr, err := graph.Error(init)
		test.That(t, err, test.ShouldBeNil)
		finalErr, err := graph.Error(result)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, finalErr, test.ShouldBeLessThanOrEqualTo, initErr)
	}
}

func TestInterpolatedCheckingNeverHidesViolations(t *testing.T) {
	// raising the interpolated check count can only add obstacle residuals
	arm := singleLinkArm(t)
	sdf := diskField(t, r3.Vector{X: 1.25}, 0.3)

	startConf := factor.NewVector([]float64{-math.Pi / 4})
	endConf := factor.NewVector([]float64{math.Pi / 4})
	zeroVel := factor.NewVector([]float64{0})

	var prev float64
	for i, interp := range []int{0, 2, 5} {
		setting := armSetting()
		setting.ObsCheckInter = interp
		init := InitTrajectory(startConf, endConf, setting)
		graph, err := buildGraph(arm, sdf, startConf, zeroVel, endConf, zeroVel, setting)
		test.That(t, err, test.ShouldBeNil)
		errVal, err := graph.Error(init)
		test.That(t, err, test.ShouldBeNil)
		if i > 0 {
			test.That(t, errVal, test.ShouldBeGreaterThanOrEqualTo, prev)
		}
		prev = errVal
	}
}

func TestInterpolationRevealsViolationBetweenSupportStates(t *testing.T) {
	// two support states bracket the disk: support-resolution checking sees
	// nothing, an interpolated check point does
	arm := singleLinkArm(t)
	sdf := diskField(t, r3.Vector{X: 1.0}, 0.05)

	setting := armSetting()
	setting.TotalStep = 2
	setting.Epsilon = 0.02

	// support tips at angles {-0.5, 0, 0.5} would touch the disk at 0, so
	// shift the sweep to put support states at {-0.5, -0.125, 0.25}
	startConf := factor.NewVector([]float64{-0.5})
	endConf := factor.NewVector([]float64{0.25})
	init := InitTrajectory(startConf, endConf, setting)

	supportCost, err := CollisionCost(arm, sdf, init, setting)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, supportCost, test.ShouldAlmostEqual, 0.0, 1e-12)

	zeroVel := factor.NewVector([]float64{0})
	graphNoInterp, err := buildGraph(arm, sdf, startConf, zeroVel, endConf, zeroVel, settingWithInterp(setting, 0))
	test.That(t, err, test.ShouldBeNil)
	graphInterp, err := buildGraph(arm, sdf, startConf, zeroVel, endConf, zeroVel, settingWithInterp(setting, 5))
	test.That(t, err, test.ShouldBeNil)

	noInterpErr, err := graphNoInterp.Error(init)
	test.That(t, err, test.ShouldBeNil)
	interpErr, err := graphInterp.Error(init)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, interpErr, test.ShouldBeGreaterThan, noInterpErr)
}

func settingWithInterp(s *TrajOptimizerSetting, interp int) *TrajOptimizerSetting {
	out := *s
	out.ObsCheckInter = interp
	return &out
}

func TestBatchTrajOptimizeMobileArm(t *testing.T) {
	arm, err := kinematics.NewPlanarArm([]float64{0.5}, 1, 0.01)
	test.That(t, err, test.ShouldBeNil)
	marm, err := kinematics.NewPose2MobileArm(arm, []kinematics.BodySphere{
		{Link: kinematics.BaseLink, Radius: 0.2},
	}, geometry.NewPose2(0, 0, 0), 0)
	test.That(t, err, test.ShouldBeNil)

	setting := NewTrajOptimizerSetting(marm.DOF())
	setting.TotalStep = 5
	setting.ObsCheckInter = 2
	setting.Epsilon = 0.05

	startConf := geometry.NewPose2Vector(geometry.NewPose2(-1, 0, 0), []float64{0})
	endConf := geometry.NewPose2Vector(geometry.NewPose2(1, 0.5, 0), []float64{0.3})
	zeroVel := make([]float64, marm.DOF())

	init := InitTrajectory(startConf, endConf, setting)
	result, err := BatchTrajOptimizePose2MobileArm2D(marm, emptyField(t), startConf, zeroVel, endConf, zeroVel, init, setting)
	test.That(t, err, test.ShouldBeNil)

	cost, err := CollisionCostPose2MobileArm2D(marm, emptyField(t), result, setting)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cost, test.ShouldAlmostEqual, 0.0, 1e-12)

	pose0, err := result.Pose(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose0.(geometry.Pose2Vector).Base.X, test.ShouldAlmostEqual, -1.0, 1e-3)
	poseN, err := result.Pose(setting.TotalStep)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, poseN.(geometry.Pose2Vector).Base.X, test.ShouldAlmostEqual, 1.0, 1e-3)
	test.That(t, poseN.(geometry.Pose2Vector).Joints[0], test.ShouldAlmostEqual, 0.3, 1e-3)
}

func TestBatchTrajOptimize3DArmNoObstacles(t *testing.T) {
	arm, err := kinematics.NewArm([]kinematics.DHParam{
		{A: 0.5, Alpha: math.Pi / 2},
		{A: 0.5},
	}, []kinematics.BodySphere{
		{Link: 0, Radius: 0.05},
		{Link: 1, Radius: 0.05},
	})
	test.That(t, err, test.ShouldBeNil)

	n := 5
	data := make([][][]float64, n)
	for iz := range data {
		data[iz] = make([][]float64, n)
		for iy := range data[iz] {
			data[iz][iy] = make([]float64, n)
			for ix := range data[iz][iy] {
				data[iz][iy][ix] = 1000.0
			}
		}
	}
	sdf, err := obstacle.NewSignedDistanceField(r3.Vector{X: -2, Y: -2, Z: -2}, 1.0, data)
	test.That(t, err, test.ShouldBeNil)

	setting := NewTrajOptimizerSetting(2)
	setting.TotalStep = 5
	setting.ObsCheckInter = 1

	startConf := []float64{0, 0}
	endConf := []float64{0.8, -0.4}
	zeroVel := []float64{0, 0}

	init := InitTrajectory(factor.NewVector(startConf), factor.NewVector(endConf), setting)
	result, err := BatchTrajOptimize3DArm(arm, sdf, startConf, zeroVel, endConf, zeroVel, init, setting)
	test.That(t, err, test.ShouldBeNil)

	cost, err := CollisionCost3DArm(arm, sdf, result, setting)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cost, test.ShouldAlmostEqual, 0.0, 1e-12)
}

func TestBatchTrajOptimizeRejectsInvalidSettings(t *testing.T) {
	arm := singleLinkArm(t)
	sdf := emptyField(t)
	startConf := factor.NewVector([]float64{0})
	zeroVel := factor.NewVector([]float64{0})

	setting := armSetting()
	setting.TotalStep = 0
	_, err := BatchTrajOptimize(arm, sdf, startConf, zeroVel, startConf, zeroVel, factor.NewValues(), setting)
	test.That(t, err, test.ShouldNotBeNil)
	var invalid *InvalidSettingError
	test.That(t, errors.As(err, &invalid), test.ShouldBeTrue)
	test.That(t, invalid.Field, test.ShouldEqual, "TotalStep")
}

func TestBatchTrajOptimizeRejectsDimensionMismatch(t *testing.T) {
	arm := singleLinkArm(t)
	sdf := emptyField(t)
	setting := armSetting()

	// two dimensional boundary states for a one joint arm
	startConf := factor.NewVector([]float64{0, 0})
	zeroVel := factor.NewVector([]float64{0, 0})
	init := InitTrajectory(startConf, startConf, setting)

	_, err := BatchTrajOptimize(arm, sdf, startConf, zeroVel, startConf, zeroVel, init, setting)
	test.That(t, err, test.ShouldNotBeNil)
	var invalid *InvalidSettingError
	test.That(t, errors.As(err, &invalid), test.ShouldBeTrue)
}

func TestBatchTrajOptimizeRejectsIncompleteInitialValues(t *testing.T) {
	arm := singleLinkArm(t)
	sdf := emptyField(t)
	setting := armSetting()
	startConf := factor.NewVector([]float64{0})
	zeroVel := factor.NewVector([]float64{0})

	incomplete := factor.NewValues()
	incomplete.Insert(factor.PoseKey(0), startConf)

	_, err := BatchTrajOptimize(arm, sdf, startConf, zeroVel, startConf, zeroVel, incomplete, setting)
	test.That(t, err, test.ShouldNotBeNil)
	var invalid *InvalidSettingError
	test.That(t, errors.As(err, &invalid), test.ShouldBeTrue)
}
