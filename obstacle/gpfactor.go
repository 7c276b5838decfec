package obstacle

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/mobilerobotics/gptraj/factor"
	"github.com/mobilerobotics/gptraj/gp"
	"github.com/mobilerobotics/gptraj/kinematics"
)

// GPFactor is the obstacle cost factor at a virtual state between two
// support states. It interpolates a pose with the constant-velocity GP
// posterior mean, evaluates the same per-sphere hinge residual as the unary
// Factor there, and chains the residual Jacobian back through the constant
// interpolation weights. This raises collision-checking resolution along the
// trajectory without adding optimization variables, and each such factor
// still touches only two adjacent time indices, preserving the sparse
// structure of the graph.
type GPFactor struct {
	keys    []factor.Key
	robot   kinematics.RobotModel
	sdf     SDF
	epsilon float64
	noise   factor.Noise
	interp  *gp.Interpolator
}

// NewGPFactor builds an interpolated obstacle factor between support states
// idx1 and idx2, which are dt seconds apart, evaluated tau seconds into the
// interval under process noise qc.
func NewGPFactor(idx1, idx2 int, robot kinematics.RobotModel, sdf SDF, sigma, epsilon float64,
	qc *mat.SymDense, dt, tau float64,
) (*GPFactor, error) {
	if epsilon < 0 {
		return nil, errors.Errorf("safety margin must be non-negative, got %f", epsilon)
	}
	if qc.SymmetricDim() != robot.DOF() {
		return nil, errors.Errorf("Qc is %d dimensional, robot has %d degrees of freedom", qc.SymmetricDim(), robot.DOF())
	}
	noise, err := factor.NewIsotropicNoise(robot.NumSpheres(), sigma)
	if err != nil {
		return nil, errors.Wrap(err, "building obstacle noise model")
	}
	interp, err := gp.NewInterpolator(qc, dt, tau)
	if err != nil {
		return nil, err
	}
	return &GPFactor{
		keys: []factor.Key{
			factor.PoseKey(idx1), factor.VelocityKey(idx1),
			factor.PoseKey(idx2), factor.VelocityKey(idx2),
		},
		robot:   robot,
		sdf:     sdf,
		epsilon: epsilon,
		noise:   noise,
		interp:  interp,
	}, nil
}

// Keys returns pose and velocity keys of both bracketing states.
func (f *GPFactor) Keys() []factor.Key { return f.keys }

func (f *GPFactor) states(v *factor.Values) (factor.Variable, factor.Vector, factor.Variable, factor.Vector, error) {
	p1, err := v.At(f.keys[0])
	if err != nil {
		return nil, nil, nil, nil, err
	}
	v1, err := v.At(f.keys[1])
	if err != nil {
		return nil, nil, nil, nil, err
	}
	p2, err := v.At(f.keys[2])
	if err != nil {
		return nil, nil, nil, nil, err
	}
	v2, err := v.At(f.keys[3])
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return p1, v1.(factor.Vector), p2, v2.(factor.Vector), nil
}

// Error returns the whitened hinge residuals at the interpolated pose.
func (f *GPFactor) Error(v *factor.Values) ([]float64, error) {
	p1, v1, p2, v2, err := f.states(v)
	if err != nil {
		return nil, err
	}
	pose, _ := f.interp.Interpolate(p1, v1, p2, v2)
	r, _, err := sphereResiduals(f.robot, f.sdf, f.epsilon, pose, false)
	if err != nil {
		return nil, err
	}
	f.noise.Whiten(r)
	return r, nil
}

// Linearize evaluates the hinge residuals at the interpolated pose and
// propagates their Jacobian to the four real variables through the
// interpolation weight blocks.
func (f *GPFactor) Linearize(v *factor.Values) (*factor.Linearization, error) {
	p1, v1, p2, v2, err := f.states(v)
	if err != nil {
		return nil, err
	}
	pose, _ := f.interp.Interpolate(p1, v1, p2, v2)
	r, poseJac, err := sphereResiduals(f.robot, f.sdf, f.epsilon, pose, true)
	if err != nil {
		return nil, err
	}

	weights := f.interp.PoseWeights()
	jacs := make([]*mat.Dense, 4)
	for i, w := range weights {
		var j mat.Dense
		j.Mul(poseJac, w)
		jacs[i] = &j
	}

	f.noise.Whiten(r)
	for _, j := range jacs {
		f.noise.WhitenJacobian(j)
	}
	return &factor.Linearization{Residual: r, Jacobians: jacs}, nil
}
