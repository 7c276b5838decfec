package gp

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/mobilerobotics/gptraj/factor"
)

// Interpolator produces the posterior-mean state of the constant-velocity GP
// at a fraction of the interval between two support states. The interpolated
// state is a fixed linear combination of the bracketing states,
//
//	x(tau) = Lambda(tau) x1 + Psi(tau) x2
//
// with Lambda(tau) = Phi(tau) - Psi(tau) Phi(dt) and
// Psi(tau) = Q(tau) Phi(dt - tau)^T Q(dt)^-1, so factors evaluated at the
// virtual state can chain their Jacobians back to the four real variables
// through constant weight blocks.
type Interpolator struct {
	dof    int
	tau    float64
	lambda *mat.Dense
	psi    *mat.Dense
}

// NewInterpolator builds the interpolation weights for a state tau seconds
// into an interval of dt seconds, under process noise qc.
func NewInterpolator(qc *mat.SymDense, dt, tau float64) (*Interpolator, error) {
	if dt <= 0 {
		return nil, errors.Errorf("GP interpolation interval must be positive, got %f", dt)
	}
	if tau < 0 || tau > dt {
		return nil, errors.Errorf("GP interpolation time %f outside interval [0, %f]", tau, dt)
	}
	dof := qc.SymmetricDim()

	qInv, err := calcQInv(qc, dt)
	if err != nil {
		return nil, err
	}
	qTau := calcQ(qc, tau)

	psi := mat.NewDense(2*dof, 2*dof, nil)
	psi.Product(qTau, calcPhi(dof, dt-tau).T(), qInv)

	lambda := mat.NewDense(2*dof, 2*dof, nil)
	lambda.Mul(psi, calcPhi(dof, dt))
	lambda.Sub(calcPhi(dof, tau), lambda)

	return &Interpolator{dof: dof, tau: tau, lambda: lambda, psi: psi}, nil
}

// DOF returns the degrees of freedom the interpolator was built for.
func (ip *Interpolator) DOF() int { return ip.dof }

// Interpolate returns the virtual pose and velocity at the interpolator's
// fraction of the interval from (p1, v1) to (p2, v2). The combination is
// formed in the chart at p1, which reduces to the plain linear combination
// for vector-space poses and stays well defined for composite poses.
func (ip *Interpolator) Interpolate(p1 factor.Variable, v1 factor.Vector, p2 factor.Variable, v2 factor.Vector) (factor.Variable, factor.Vector) {
	d := ip.dof
	diff := p1.Local(p2)

	// stacked chart states relative to p1: r1 = [0; v1], r2 = [p2 - p1; v2]
	x := make([]float64, 2*d)
	for i := 0; i < 2*d; i++ {
		sum := 0.0
		for j := 0; j < d; j++ {
			sum += ip.lambda.At(i, d+j) * v1[j]
			sum += ip.psi.At(i, j)*diff[j] + ip.psi.At(i, d+j)*v2[j]
		}
		x[i] = sum
	}

	pose := p1.Retract(x[:d])
	vel := factor.NewVector(x[d : 2*d])
	return pose, vel
}

// PoseWeights returns the Jacobian blocks of the interpolated pose with
// respect to p1, v1, p2 and v2, in that order.
func (ip *Interpolator) PoseWeights() [4]*mat.Dense {
	d := ip.dof
	lambda11 := mat.DenseCopyOf(ip.lambda.Slice(0, d, 0, d))
	lambda12 := mat.DenseCopyOf(ip.lambda.Slice(0, d, d, 2*d))
	psi11 := mat.DenseCopyOf(ip.psi.Slice(0, d, 0, d))
	psi12 := mat.DenseCopyOf(ip.psi.Slice(0, d, d, 2*d))
	return [4]*mat.Dense{lambda11, lambda12, psi11, psi12}
}
