package obstacle

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

// linearField samples f(x, y) = x + 2y on an nx by ny grid; bilinear
// interpolation reproduces a linear field exactly.
func linearField(nx, ny int, origin r3.Vector, cell float64) [][]float64 {
	data := make([][]float64, ny)
	for iy := range data {
		data[iy] = make([]float64, nx)
		for ix := range data[iy] {
			x := origin.X + float64(ix)*cell
			y := origin.Y + float64(iy)*cell
			data[iy][ix] = x + 2*y
		}
	}
	return data
}

func TestPlanarSDFBilinearInterpolation(t *testing.T) {
	sdf, err := NewPlanarSDF(r3.Vector{}, 0.5, linearField(5, 5, r3.Vector{}, 0.5))
	test.That(t, err, test.ShouldBeNil)

	dist, grad := sdf.Distance(r3.Vector{X: 0.7, Y: 1.3})
	test.That(t, dist, test.ShouldAlmostEqual, 0.7+2*1.3, 1e-12)
	test.That(t, grad.X, test.ShouldAlmostEqual, 1.0, 1e-12)
	test.That(t, grad.Y, test.ShouldAlmostEqual, 2.0, 1e-12)
	test.That(t, grad.Z, test.ShouldAlmostEqual, 0.0, 1e-12)
}

func TestPlanarSDFOutOfBoundsClampsToNearestCell(t *testing.T) {
	// fixture pinning the out-of-bounds policy: the query degrades to the
	// nearest in-bounds value and the gradient zeroes along clamped axes
	sdf, err := NewPlanarSDF(r3.Vector{}, 1.0, linearField(4, 4, r3.Vector{}, 1.0))
	test.That(t, err, test.ShouldBeNil)

	dist, grad := sdf.Distance(r3.Vector{X: -5, Y: 1.5})
	test.That(t, dist, test.ShouldAlmostEqual, 0+2*1.5, 1e-12)
	test.That(t, grad.X, test.ShouldAlmostEqual, 0.0, 1e-12)
	test.That(t, grad.Y, test.ShouldAlmostEqual, 2.0, 1e-12)

	dist, grad = sdf.Distance(r3.Vector{X: 10, Y: 10})
	test.That(t, dist, test.ShouldAlmostEqual, 3+2*3, 1e-12)
	test.That(t, grad.X, test.ShouldAlmostEqual, 0.0, 1e-12)
	test.That(t, grad.Y, test.ShouldAlmostEqual, 0.0, 1e-12)
}

func TestPlanarSDFRejectsBadInputs(t *testing.T) {
	_, err := NewPlanarSDF(r3.Vector{}, 0, [][]float64{{1}})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewPlanarSDF(r3.Vector{}, 1, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewPlanarSDF(r3.Vector{}, 1, [][]float64{{1, 2}, {1}})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSignedDistanceFieldTrilinearInterpolation(t *testing.T) {
	// f(x, y, z) = x + 2y + 3z, reproduced exactly by trilinear interpolation
	n := 3
	data := make([][][]float64, n)
	for iz := range data {
		data[iz] = make([][]float64, n)
		for iy := range data[iz] {
			data[iz][iy] = make([]float64, n)
			for ix := range data[iz][iy] {
				data[iz][iy][ix] = float64(ix) + 2*float64(iy) + 3*float64(iz)
			}
		}
	}
	sdf, err := NewSignedDistanceField(r3.Vector{}, 1.0, data)
	test.That(t, err, test.ShouldBeNil)

	dist, grad := sdf.Distance(r3.Vector{X: 0.5, Y: 1.2, Z: 1.9})
	test.That(t, dist, test.ShouldAlmostEqual, 0.5+2*1.2+3*1.9, 1e-12)
	test.That(t, grad.X, test.ShouldAlmostEqual, 1.0, 1e-12)
	test.That(t, grad.Y, test.ShouldAlmostEqual, 2.0, 1e-12)
	test.That(t, grad.Z, test.ShouldAlmostEqual, 3.0, 1e-12)

	// out of bounds above the volume
	dist, grad = sdf.Distance(r3.Vector{X: 0.5, Y: 1.2, Z: 9})
	test.That(t, dist, test.ShouldAlmostEqual, 0.5+2*1.2+3*2, 1e-12)
	test.That(t, grad.Z, test.ShouldAlmostEqual, 0.0, 1e-12)
}
