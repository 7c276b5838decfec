package factor

import "gonum.org/v1/gonum/mat"

// Factor is one cost term over a subset of trajectory variables. The
// combined objective of a graph is the sum of each factor's squared whitened
// residual norm.
type Factor interface {
	// Keys returns the variables the factor touches, in Jacobian order.
	Keys() []Key
	// Error returns the whitened residual at the given values.
	Error(v *Values) ([]float64, error)
	// Linearize returns the whitened residual and the whitened Jacobian of
	// the residual with respect to each key, evaluated at the given values.
	Linearize(v *Values) (*Linearization, error)
}

// Linearization is a factor's first-order model at one linearization point:
// residual r and blocks J_k such that r(x ⊕ δ) ≈ r + Σ J_k δ_k.
type Linearization struct {
	Residual  []float64
	Jacobians []*mat.Dense
}

// SquaredNorm returns the factor's contribution to the objective value.
func (l *Linearization) SquaredNorm() float64 {
	sum := 0.0
	for _, r := range l.Residual {
		sum += r * r
	}
	return sum
}

// Prior is a unary factor pinning one variable to a target value. The
// trajectory optimizer uses near-zero-sigma priors to realize fixed start
// and end conditions as soft constraints.
type Prior struct {
	key    Key
	target Variable
	noise  Noise
}

// NewPrior builds a prior factor on the given key.
func NewPrior(key Key, target Variable, noise Noise) *Prior {
	return &Prior{key: key, target: target, noise: noise}
}

// Keys returns the single pinned key.
func (p *Prior) Keys() []Key { return []Key{p.key} }

// Error returns the whitened chart distance from the target to the current
// value.
func (p *Prior) Error(v *Values) ([]float64, error) {
	val, err := v.At(p.key)
	if err != nil {
		return nil, err
	}
	r := p.target.Local(val)
	p.noise.Whiten(r)
	return r, nil
}

// Linearize returns the whitened residual with an identity Jacobian.
func (p *Prior) Linearize(v *Values) (*Linearization, error) {
	val, err := v.At(p.key)
	if err != nil {
		return nil, err
	}
	r := p.target.Local(val)
	d := len(r)
	jac := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		jac.Set(i, i, 1)
	}
	p.noise.Whiten(r)
	p.noise.WhitenJacobian(jac)
	return &Linearization{Residual: r, Jacobians: []*mat.Dense{jac}}, nil
}
