// Package obstacle provides the signed-distance-field obstacle
// representation and the collision cost factors built on it: a unary factor
// evaluated at a support state and a GP-interpolated factor evaluated at
// virtual states between two support states.
package obstacle

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// SDF is the obstacle-map capability contract. Distance returns the signed
// distance from a world point to the nearest obstacle surface (positive in
// free space) and the distance gradient. Queries never fail: points outside
// the mapped region degrade to the nearest in-bounds cell's value with the
// gradient zeroed along every clamped axis, because dense interpolation
// sampling routinely probes near map boundaries.
type SDF interface {
	Distance(p r3.Vector) (float64, r3.Vector)
}

// clampCoord clamps a continuous cell coordinate into [0, n-1] and reports
// whether clamping occurred.
func clampCoord(c float64, n int) (float64, bool) {
	if c < 0 {
		return 0, true
	}
	if c > float64(n-1) {
		return float64(n - 1), true
	}
	return c, false
}

// cellIndex splits a clamped continuous coordinate into a lower cell index
// and an interpolation fraction, keeping the index one short of the last
// cell so index+1 stays in bounds.
func cellIndex(c float64, n int) (int, float64) {
	if n == 1 {
		return 0, 0
	}
	i := int(math.Floor(c))
	if i > n-2 {
		i = n - 2
	}
	return i, c - float64(i)
}

// PlanarSDF is a 2D signed distance field on a regular grid, queried with
// bilinear interpolation. Data is indexed [y][x]; the Z component of queries
// is ignored.
type PlanarSDF struct {
	origin   r3.Vector
	cellSize float64
	data     [][]float64
}

// NewPlanarSDF builds a planar field with the given lower-left corner world
// position and cell size. Rows of data must share one length.
func NewPlanarSDF(origin r3.Vector, cellSize float64, data [][]float64) (*PlanarSDF, error) {
	if cellSize <= 0 {
		return nil, errors.Errorf("cell size must be positive, got %f", cellSize)
	}
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, errors.New("field data must be non-empty")
	}
	for i, row := range data {
		if len(row) != len(data[0]) {
			return nil, errors.Errorf("field row %d has %d cells, expected %d", i, len(row), len(data[0]))
		}
	}
	return &PlanarSDF{origin: origin, cellSize: cellSize, data: data}, nil
}

// Distance returns the bilinearly interpolated signed distance at p and its
// gradient in the XY plane.
func (s *PlanarSDF) Distance(p r3.Vector) (float64, r3.Vector) {
	ny, nx := len(s.data), len(s.data[0])
	cx, clampedX := clampCoord((p.X-s.origin.X)/s.cellSize, nx)
	cy, clampedY := clampCoord((p.Y-s.origin.Y)/s.cellSize, ny)
	ix, fx := cellIndex(cx, nx)
	iy, fy := cellIndex(cy, ny)

	var d00, d01, d10, d11 float64
	d00 = s.data[iy][ix]
	if nx > 1 {
		d01 = s.data[iy][ix+1]
	} else {
		d01 = d00
	}
	if ny > 1 {
		d10 = s.data[iy+1][ix]
		if nx > 1 {
			d11 = s.data[iy+1][ix+1]
		} else {
			d11 = d10
		}
	} else {
		d10, d11 = d00, d01
	}

	dist := (1-fy)*((1-fx)*d00+fx*d01) + fy*((1-fx)*d10+fx*d11)
	grad := r3.Vector{
		X: ((1-fy)*(d01-d00) + fy*(d11-d10)) / s.cellSize,
		Y: ((1-fx)*(d10-d00) + fx*(d11-d01)) / s.cellSize,
	}
	if clampedX {
		grad.X = 0
	}
	if clampedY {
		grad.Y = 0
	}
	return dist, grad
}

// SignedDistanceField is a 3D signed distance field on a regular grid,
// queried with trilinear interpolation. Data is indexed [z][y][x].
type SignedDistanceField struct {
	origin   r3.Vector
	cellSize float64
	data     [][][]float64
}

// NewSignedDistanceField builds a 3D field with the given lower corner world
// position and cell size. All slices of data must be rectangular.
func NewSignedDistanceField(origin r3.Vector, cellSize float64, data [][][]float64) (*SignedDistanceField, error) {
	if cellSize <= 0 {
		return nil, errors.Errorf("cell size must be positive, got %f", cellSize)
	}
	if len(data) == 0 || len(data[0]) == 0 || len(data[0][0]) == 0 {
		return nil, errors.New("field data must be non-empty")
	}
	for z, plane := range data {
		if len(plane) != len(data[0]) {
			return nil, errors.Errorf("field plane %d has %d rows, expected %d", z, len(plane), len(data[0]))
		}
		for y, row := range plane {
			if len(row) != len(data[0][0]) {
				return nil, errors.Errorf("field row (%d,%d) has %d cells, expected %d", z, y, len(row), len(data[0][0]))
			}
		}
	}
	return &SignedDistanceField{origin: origin, cellSize: cellSize, data: data}, nil
}

// Distance returns the trilinearly interpolated signed distance at p and its
// gradient.
func (s *SignedDistanceField) Distance(p r3.Vector) (float64, r3.Vector) {
	nz, ny, nx := len(s.data), len(s.data[0]), len(s.data[0][0])
	cx, clampedX := clampCoord((p.X-s.origin.X)/s.cellSize, nx)
	cy, clampedY := clampCoord((p.Y-s.origin.Y)/s.cellSize, ny)
	cz, clampedZ := clampCoord((p.Z-s.origin.Z)/s.cellSize, nz)
	ix, fx := cellIndex(cx, nx)
	iy, fy := cellIndex(cy, ny)
	iz, fz := cellIndex(cz, nz)

	at := func(z, y, x int) float64 {
		if z > nz-1 {
			z = nz - 1
		}
		if y > ny-1 {
			y = ny - 1
		}
		if x > nx-1 {
			x = nx - 1
		}
		return s.data[z][y][x]
	}

	// corner values of the enclosing cell
	var c [2][2][2]float64
	for dz := 0; dz < 2; dz++ {
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				c[dz][dy][dx] = at(iz+dz, iy+dy, ix+dx)
			}
		}
	}

	lerp := func(a, b, f float64) float64 { return a + (b-a)*f }
	d00 := lerp(c[0][0][0], c[0][0][1], fx)
	d01 := lerp(c[0][1][0], c[0][1][1], fx)
	d10 := lerp(c[1][0][0], c[1][0][1], fx)
	d11 := lerp(c[1][1][0], c[1][1][1], fx)
	d0 := lerp(d00, d01, fy)
	d1 := lerp(d10, d11, fy)
	dist := lerp(d0, d1, fz)

	grad := r3.Vector{
		X: ((1-fz)*((1-fy)*(c[0][0][1]-c[0][0][0])+fy*(c[0][1][1]-c[0][1][0])) +
			fz*((1-fy)*(c[1][0][1]-c[1][0][0])+fy*(c[1][1][1]-c[1][1][0]))) / s.cellSize,
		Y: ((1-fz)*(d01-d00) + fz*(d11-d10)) / s.cellSize,
		Z: (d1 - d0) / s.cellSize,
	}
	if clampedX {
		grad.X = 0
	}
	if clampedY {
		grad.Y = 0
	}
	if clampedZ {
		grad.Z = 0
	}
	return dist, grad
}
