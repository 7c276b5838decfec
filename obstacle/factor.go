package obstacle

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/mobilerobotics/gptraj/factor"
	"github.com/mobilerobotics/gptraj/kinematics"
)

// hinge returns the margin-violation residual of one body sphere and the
// gradient of that residual with respect to the sphere center. A sphere
// whose surface clears the safety margin contributes nothing.
func hinge(dist, margin float64, grad r3.Vector) (float64, r3.Vector) {
	if dist > margin {
		return 0, r3.Vector{}
	}
	return margin - dist, grad.Mul(-1)
}

// sphereResiduals evaluates the per-sphere hinge residuals of a robot at one
// configuration, optionally accumulating the residual Jacobian with respect
// to the configuration chart.
func sphereResiduals(robot kinematics.RobotModel, sdf SDF, epsilon float64, pose factor.Variable, wantJacobian bool) ([]float64, *mat.Dense, error) {
	centers, fkJacs, err := robot.SpherePositions(pose)
	if err != nil {
		return nil, nil, err
	}
	r := make([]float64, len(centers))
	var jac *mat.Dense
	if wantJacobian {
		jac = mat.NewDense(len(centers), robot.DOF(), nil)
	}
	for i, c := range centers {
		dist, grad := sdf.Distance(c)
		ri, gi := hinge(dist, epsilon+robot.SphereRadius(i), grad)
		r[i] = ri
		if wantJacobian && ri > 0 {
			_, cols := fkJacs[i].Dims()
			for col := 0; col < cols; col++ {
				jac.Set(i, col, gi.X*fkJacs[i].At(0, col)+gi.Y*fkJacs[i].At(1, col)+gi.Z*fkJacs[i].At(2, col))
			}
		}
	}
	return r, jac, nil
}

// Factor is the unary obstacle cost factor at one support state. Its
// residual holds one hinge-loss term per body sphere, whitened by an
// isotropic obstacle noise model.
type Factor struct {
	key     factor.Key
	robot   kinematics.RobotModel
	sdf     SDF
	epsilon float64
	noise   factor.Noise
}

// NewFactor builds an obstacle factor on the pose at the given time index.
// Epsilon is the safety margin measured from each sphere's surface; sigma
// the obstacle cost standard deviation.
func NewFactor(index int, robot kinematics.RobotModel, sdf SDF, sigma, epsilon float64) (*Factor, error) {
	if epsilon < 0 {
		return nil, errors.Errorf("safety margin must be non-negative, got %f", epsilon)
	}
	noise, err := factor.NewIsotropicNoise(robot.NumSpheres(), sigma)
	if err != nil {
		return nil, errors.Wrap(err, "building obstacle noise model")
	}
	return &Factor{
		key:     factor.PoseKey(index),
		robot:   robot,
		sdf:     sdf,
		epsilon: epsilon,
		noise:   noise,
	}, nil
}

// Keys returns the single pose key the factor touches.
func (f *Factor) Keys() []factor.Key { return []factor.Key{f.key} }

// Error returns the whitened per-sphere hinge residuals.
func (f *Factor) Error(v *factor.Values) ([]float64, error) {
	pose, err := v.At(f.key)
	if err != nil {
		return nil, err
	}
	r, _, err := sphereResiduals(f.robot, f.sdf, f.epsilon, pose, false)
	if err != nil {
		return nil, err
	}
	f.noise.Whiten(r)
	return r, nil
}

// Linearize returns the whitened residuals and their Jacobian with respect
// to the pose.
func (f *Factor) Linearize(v *factor.Values) (*factor.Linearization, error) {
	pose, err := v.At(f.key)
	if err != nil {
		return nil, err
	}
	r, jac, err := sphereResiduals(f.robot, f.sdf, f.epsilon, pose, true)
	if err != nil {
		return nil, err
	}
	f.noise.Whiten(r)
	f.noise.WhitenJacobian(jac)
	return &factor.Linearization{Residual: r, Jacobians: []*mat.Dense{jac}}, nil
}
