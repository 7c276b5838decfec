package factor

import (
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestDiagonalNoiseWhiten(t *testing.T) {
	noise, err := NewDiagonalNoise([]float64{2, 3})
	test.That(t, err, test.ShouldBeNil)

	r := []float64{2, 3}
	noise.Whiten(r)
	test.That(t, r[0], test.ShouldAlmostEqual, 1.0)
	test.That(t, r[1], test.ShouldAlmostEqual, 1.0)

	jac := mat.NewDense(2, 2, []float64{2, 4, 3, 6})
	noise.WhitenJacobian(jac)
	test.That(t, jac.At(0, 0), test.ShouldAlmostEqual, 1.0)
	test.That(t, jac.At(0, 1), test.ShouldAlmostEqual, 2.0)
	test.That(t, jac.At(1, 0), test.ShouldAlmostEqual, 1.0)
	test.That(t, jac.At(1, 1), test.ShouldAlmostEqual, 2.0)
}

func TestDiagonalNoiseRejectsNonPositiveSigma(t *testing.T) {
	_, err := NewDiagonalNoise([]float64{1, 0})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewIsotropicNoise(3, -1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGaussianNoiseWhitenMatchesMahalanobis(t *testing.T) {
	cov := mat.NewSymDense(2, []float64{2, 1, 1, 2})
	noise, err := NewGaussianNoise(cov)
	test.That(t, err, test.ShouldBeNil)

	r := []float64{1, 1}
	noise.Whiten(r)
	// |whitened|^2 must equal r' Cov^-1 r = 2/3
	test.That(t, r[0]*r[0]+r[1]*r[1], test.ShouldAlmostEqual, 2.0/3.0, 1e-12)
}

func TestGaussianNoiseRejectsIndefinite(t *testing.T) {
	cov := mat.NewSymDense(2, []float64{1, 2, 2, 1})
	_, err := NewGaussianNoise(cov)
	test.That(t, err, test.ShouldNotBeNil)
}
