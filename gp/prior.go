package gp

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/mobilerobotics/gptraj/factor"
)

// Prior is the smoothness factor between two adjacent support states. It
// penalizes deviation from the constant-velocity model
//
//	p2 = p1 + v1*dt,  v2 = v1
//
// whitened by the model covariance Q(Qc, dt), so longer intervals and larger
// process noise are penalized more loosely.
type Prior struct {
	keys  []factor.Key
	dt    float64
	noise factor.Noise
}

// NewPrior builds the GP prior linking support states idx1 and idx2, which
// must be dt seconds apart.
func NewPrior(idx1, idx2 int, dt float64, qc *mat.SymDense) (*Prior, error) {
	if dt <= 0 {
		return nil, errors.Errorf("GP prior interval must be positive, got %f", dt)
	}
	noise, err := factor.NewGaussianNoise(calcQ(qc, dt))
	if err != nil {
		return nil, errors.Wrap(err, "building GP prior noise model")
	}
	return &Prior{
		keys: []factor.Key{
			factor.PoseKey(idx1), factor.VelocityKey(idx1),
			factor.PoseKey(idx2), factor.VelocityKey(idx2),
		},
		dt:    dt,
		noise: noise,
	}, nil
}

// Keys returns pose and velocity keys of both linked states.
func (p *Prior) Keys() []factor.Key { return p.keys }

func (p *Prior) rawError(v *factor.Values) ([]float64, int, error) {
	p1, err := v.At(p.keys[0])
	if err != nil {
		return nil, 0, err
	}
	v1, err := v.At(p.keys[1])
	if err != nil {
		return nil, 0, err
	}
	p2, err := v.At(p.keys[2])
	if err != nil {
		return nil, 0, err
	}
	v2, err := v.At(p.keys[3])
	if err != nil {
		return nil, 0, err
	}
	d := v1.Dim()
	vel1 := v1.(factor.Vector)
	vel2 := v2.(factor.Vector)
	diff := p1.Local(p2)

	r := make([]float64, 2*d)
	for i := 0; i < d; i++ {
		r[i] = diff[i] - vel1[i]*p.dt
		r[d+i] = vel2[i] - vel1[i]
	}
	return r, d, nil
}

// Error returns the whitened deviation from the constant-velocity model.
func (p *Prior) Error(v *factor.Values) ([]float64, error) {
	r, _, err := p.rawError(v)
	if err != nil {
		return nil, err
	}
	p.noise.Whiten(r)
	return r, nil
}

// Linearize returns the whitened residual and its Jacobians with respect to
// both poses and both velocities.
func (p *Prior) Linearize(v *factor.Values) (*factor.Linearization, error) {
	r, d, err := p.rawError(v)
	if err != nil {
		return nil, err
	}

	jp1 := mat.NewDense(2*d, d, nil)
	jv1 := mat.NewDense(2*d, d, nil)
	jp2 := mat.NewDense(2*d, d, nil)
	jv2 := mat.NewDense(2*d, d, nil)
	for i := 0; i < d; i++ {
		jp1.Set(i, i, -1)
		jv1.Set(i, i, -p.dt)
		jv1.Set(d+i, i, -1)
		jp2.Set(i, i, 1)
		jv2.Set(d+i, i, 1)
	}

	p.noise.Whiten(r)
	jacs := []*mat.Dense{jp1, jv1, jp2, jv2}
	for _, j := range jacs {
		p.noise.WhitenJacobian(j)
	}
	return &factor.Linearization{Residual: r, Jacobians: jacs}, nil
}
