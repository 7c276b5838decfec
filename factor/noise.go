package factor

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Noise is a Gaussian noise model. Whitening scales a residual (and the
// matching Jacobian rows) by the inverse square root of the model's
// covariance so every factor contributes a unit-variance term to the
// objective.
type Noise interface {
	// Dim returns the residual dimension the model applies to.
	Dim() int
	// Whiten scales the residual in place.
	Whiten(r []float64)
	// WhitenJacobian scales the rows of J in place.
	WhitenJacobian(j *mat.Dense)
}

type diagonal struct {
	invSigmas []float64
}

// NewDiagonalNoise builds a noise model with independent per-component
// standard deviations.
func NewDiagonalNoise(sigmas []float64) (Noise, error) {
	inv := make([]float64, len(sigmas))
	for i, s := range sigmas {
		if s <= 0 {
			return nil, errors.Errorf("noise sigma %d must be positive, got %f", i, s)
		}
		inv[i] = 1.0 / s
	}
	return &diagonal{invSigmas: inv}, nil
}

// NewIsotropicNoise builds a diagonal noise model with one shared standard
// deviation across dim components.
func NewIsotropicNoise(dim int, sigma float64) (Noise, error) {
	sigmas := make([]float64, dim)
	for i := range sigmas {
		sigmas[i] = sigma
	}
	return NewDiagonalNoise(sigmas)
}

func (d *diagonal) Dim() int { return len(d.invSigmas) }

func (d *diagonal) Whiten(r []float64) {
	for i := range r {
		r[i] *= d.invSigmas[i]
	}
}

func (d *diagonal) WhitenJacobian(j *mat.Dense) {
	rows, cols := j.Dims()
	for i := 0; i < rows; i++ {
		for c := 0; c < cols; c++ {
			j.Set(i, c, j.At(i, c)*d.invSigmas[i])
		}
	}
}

type gaussian struct {
	dim   int
	lower *mat.TriDense
}

// NewGaussianNoise builds a noise model from a full positive-definite
// covariance matrix. Whitening solves against the Cholesky factor of the
// covariance.
func NewGaussianNoise(covariance *mat.SymDense) (Noise, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(covariance); !ok {
		return nil, errors.New("noise covariance is not positive definite")
	}
	n := covariance.SymmetricDim()
	lower := mat.NewTriDense(n, mat.Lower, nil)
	chol.LTo(lower)
	return &gaussian{dim: n, lower: lower}, nil
}

func (g *gaussian) Dim() int { return g.dim }

func (g *gaussian) Whiten(r []float64) {
	rv := mat.NewVecDense(g.dim, r)
	var w mat.VecDense
	if err := w.SolveVec(g.lower, rv); err != nil {
		// L is triangular with positive diagonal, so this cannot fail.
		panic(err)
	}
	copy(r, w.RawVector().Data)
}

func (g *gaussian) WhitenJacobian(j *mat.Dense) {
	var w mat.Dense
	if err := w.Solve(g.lower, j); err != nil {
		panic(err)
	}
	j.Copy(&w)
}
