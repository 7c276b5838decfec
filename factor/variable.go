package factor

// Variable is the capability contract for an optimizable state value. The
// optimizer only ever needs a local chart around the current estimate:
// Retract applies a tangent-space update and Local computes the coordinates
// of another value in this value's chart. Vector-space values implement both
// as plain addition and subtraction.
type Variable interface {
	// Dim returns the dimension of the local chart.
	Dim() int
	// Retract returns a new Variable displaced by delta. It must not mutate
	// the receiver; len(delta) must equal Dim().
	Retract(delta []float64) Variable
	// Local returns the chart coordinates of other relative to the receiver,
	// such that v.Retract(v.Local(w)) equals w.
	Local(other Variable) []float64
}

// Vector is a vector-space Variable: a joint configuration or any velocity.
type Vector []float64

// NewVector copies the given values into a Vector.
func NewVector(values []float64) Vector {
	v := make(Vector, len(values))
	copy(v, values)
	return v
}

// Dim returns the number of components.
func (v Vector) Dim() int { return len(v) }

// Retract returns a copy of v displaced by delta.
func (v Vector) Retract(delta []float64) Variable {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] + delta[i]
	}
	return out
}

// Local returns other - v componentwise.
func (v Vector) Local(other Variable) []float64 {
	ov := other.(Vector)
	out := make([]float64, len(v))
	for i := range v {
		out[i] = ov[i] - v[i]
	}
	return out
}
