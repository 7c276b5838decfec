// Package gp implements the constant-velocity Gaussian-process motion model:
// the smoothness prior factor between adjacent support states and the
// interpolator that produces virtual states between them. Both share the
// same process-noise matrices, so an interpolated state is consistent with
// the prior linking its bracketing support states.
package gp

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// IsotropicQc returns a process-noise covariance with one shared power
// spectral density across all degrees of freedom.
func IsotropicQc(dof int, sigma float64) *mat.SymDense {
	qc := mat.NewSymDense(dof, nil)
	for i := 0; i < dof; i++ {
		qc.SetSym(i, i, sigma)
	}
	return qc
}

// calcQ returns the covariance of the constant-velocity model over an
// interval of length t:
//
//	Q(t) = [ 1/3 t^3 Qc   1/2 t^2 Qc ]
//	       [ 1/2 t^2 Qc       t Qc   ]
func calcQ(qc *mat.SymDense, t float64) *mat.SymDense {
	d := qc.SymmetricDim()
	q := mat.NewSymDense(2*d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			v := qc.At(i, j)
			q.SetSym(i, j, t*t*t/3.0*v)
			q.SetSym(i, d+j, t*t/2.0*v)
			if i != j {
				q.SetSym(j, d+i, t*t/2.0*v)
			}
			q.SetSym(d+i, d+j, t*v)
		}
	}
	return q
}

// calcQInv returns the analytic inverse of calcQ(qc, t).
func calcQInv(qc *mat.SymDense, t float64) (*mat.SymDense, error) {
	d := qc.SymmetricDim()
	var qcInv mat.SymDense
	var chol mat.Cholesky
	if ok := chol.Factorize(qc); !ok {
		return nil, errors.New("Qc must be positive definite")
	}
	if err := chol.InverseTo(&qcInv); err != nil {
		return nil, errors.Wrap(err, "inverting Qc")
	}
	qInv := mat.NewSymDense(2*d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			v := qcInv.At(i, j)
			qInv.SetSym(i, j, 12.0/(t*t*t)*v)
			qInv.SetSym(i, d+j, -6.0/(t*t)*v)
			if i != j {
				qInv.SetSym(j, d+i, -6.0/(t*t)*v)
			}
			qInv.SetSym(d+i, d+j, 4.0/t*v)
		}
	}
	return qInv, nil
}

// calcPhi returns the state transition matrix of the constant-velocity
// model over an interval of length t:
//
//	Phi(t) = [ I  tI ]
//	         [ 0   I ]
func calcPhi(dof int, t float64) *mat.Dense {
	phi := mat.NewDense(2*dof, 2*dof, nil)
	for i := 0; i < dof; i++ {
		phi.Set(i, i, 1)
		phi.Set(i, dof+i, t)
		phi.Set(dof+i, dof+i, 1)
	}
	return phi
}
