// Package numdiff provides central-difference derivative estimates used to
// verify analytic Jacobians in tests.
package numdiff

import "gonum.org/v1/gonum/mat"

// Jacobian estimates the Jacobian of f at x by central differences with
// step h. The result has one row per output component.
func Jacobian(f func([]float64) []float64, x []float64, h float64) *mat.Dense {
	n := len(x)
	xp := make([]float64, n)

	eval := func(i int, delta float64) []float64 {
		copy(xp, x)
		xp[i] += delta
		return f(xp)
	}

	f0 := f(x)
	jac := mat.NewDense(len(f0), n, nil)
	for i := 0; i < n; i++ {
		fp := eval(i, h)
		fm := eval(i, -h)
		for r := range fp {
			jac.Set(r, i, (fp[r]-fm[r])/(2*h))
		}
	}
	return jac
}
