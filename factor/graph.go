package factor

import (
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"
)

// Graph is an ordered collection of factors. Factor order is preserved so
// linearized systems assemble identically across calls; within one
// linearization the factors themselves are evaluated in parallel, which is
// safe because factors never share mutable state.
type Graph struct {
	factors []Factor
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add appends factors to the graph.
func (g *Graph) Add(factors ...Factor) {
	g.factors = append(g.factors, factors...)
}

// Size returns the number of factors.
func (g *Graph) Size() int { return len(g.factors) }

// Factors returns the factors in insertion order.
func (g *Graph) Factors() []Factor { return g.factors }

// Error returns the objective value at the given values: the sum over all
// factors of the squared whitened residual norm.
func (g *Graph) Error(v *Values) (float64, error) {
	total := 0.0
	for _, f := range g.factors {
		r, err := f.Error(v)
		if err != nil {
			return 0, err
		}
		for _, ri := range r {
			total += ri * ri
		}
	}
	return total, nil
}

// Linearize evaluates every factor's residual and Jacobians at the given
// values. Evaluations run on a bounded worker pool; the returned slice is
// indexed by factor position, so consumers see a deterministic order
// regardless of scheduling.
func (g *Graph) Linearize(v *Values) ([]*Linearization, error) {
	lins := make([]*Linearization, len(g.factors))
	errs := make([]error, len(g.factors))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(g.factors) {
		workers = len(g.factors)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		utils.PanicCapturingGo(func() {
			defer wg.Done()
			for i := range jobs {
				lins[i], errs[i] = g.factors[i].Linearize(v)
			}
		})
	}
	for i := range g.factors {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return lins, multierr.Combine(errs...)
}

// LinearizeSystem assembles the normal equations A δ = b of the graph at the
// given values, with A = Σ JᵀJ and b = −Σ Jᵀr over whitened factor
// linearizations, laid out by the ordering. It also returns the objective
// value at the linearization point.
func (g *Graph) LinearizeSystem(v *Values, ord *Ordering) (*mat.SymDense, *mat.VecDense, float64, error) {
	lins, err := g.Linearize(v)
	if err != nil {
		return nil, nil, 0, err
	}

	n := ord.Dim()
	aData := make([]float64, n*n)
	b := mat.NewVecDense(n, nil)
	errVal := 0.0

	for fi, lin := range lins {
		keys := g.factors[fi].Keys()
		errVal += lin.SquaredNorm()
		for i, ki := range keys {
			ji := lin.Jacobians[i]
			_, di := ji.Dims()
			offI := ord.Offset(ki)

			// gradient block: b_i -= J_iᵀ r
			for c := 0; c < di; c++ {
				sum := 0.0
				for r := 0; r < len(lin.Residual); r++ {
					sum += ji.At(r, c) * lin.Residual[r]
				}
				b.SetVec(offI+c, b.AtVec(offI+c)-sum)
			}

			// Hessian blocks: A_ij += J_iᵀ J_j for every ordered pair, which
			// fills both triangles of the symmetric system.
			for j, kj := range keys {
				jj := lin.Jacobians[j]
				_, dj := jj.Dims()
				offJ := ord.Offset(kj)
				var block mat.Dense
				block.Mul(ji.T(), jj)
				for r := 0; r < di; r++ {
					for c := 0; c < dj; c++ {
						aData[(offI+r)*n+offJ+c] += block.At(r, c)
					}
				}
			}
		}
	}

	return mat.NewSymDense(n, aData), b, errVal, nil
}
