package factor

import (
	"sort"

	"github.com/pkg/errors"
)

// Values maps variable keys to their current estimates. It serves both as
// the initial guess handed to the optimizer and as the optimized result; the
// optimizer produces fresh copies rather than mutating a container in place.
type Values struct {
	data map[Key]Variable
}

// NewValues returns an empty container.
func NewValues() *Values {
	return &Values{data: map[Key]Variable{}}
}

// Insert stores the value for a key, replacing any previous entry.
func (v *Values) Insert(k Key, val Variable) {
	v.data[k] = val
}

// At returns the value stored for a key.
func (v *Values) At(k Key) (Variable, error) {
	val, ok := v.data[k]
	if !ok {
		return nil, errors.Errorf("no value for key %s", k)
	}
	return val, nil
}

// Pose returns the pose variable at the given time index.
func (v *Values) Pose(index int) (Variable, error) {
	return v.At(PoseKey(index))
}

// Velocity returns the velocity variable at the given time index.
func (v *Values) Velocity(index int) (Vector, error) {
	val, err := v.At(VelocityKey(index))
	if err != nil {
		return nil, err
	}
	vec, ok := val.(Vector)
	if !ok {
		return nil, errors.Errorf("velocity at index %d is not vector-valued", index)
	}
	return vec, nil
}

// Has reports whether a value is stored for the key.
func (v *Values) Has(k Key) bool {
	_, ok := v.data[k]
	return ok
}

// Len returns the number of stored variables.
func (v *Values) Len() int { return len(v.data) }

// Keys returns all keys sorted by time index, poses before velocities. The
// order is deterministic so repeated linearizations assemble identical
// systems.
func (v *Values) Keys() []Key {
	keys := make([]Key, 0, len(v.data))
	for k := range v.data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Index != keys[j].Index {
			return keys[i].Index < keys[j].Index
		}
		return keys[i].Kind < keys[j].Kind
	})
	return keys
}

// Copy returns a shallow copy of the container. Variables are immutable by
// contract so sharing them is safe.
func (v *Values) Copy() *Values {
	out := NewValues()
	for k, val := range v.data {
		out.data[k] = val
	}
	return out
}

// Retract returns a new container with every variable displaced by its slice
// of the stacked delta vector, laid out according to the ordering.
func (v *Values) Retract(ord *Ordering, delta []float64) *Values {
	out := NewValues()
	for k, val := range v.data {
		off := ord.Offset(k)
		out.data[k] = val.Retract(delta[off : off+val.Dim()])
	}
	return out
}

// Ordering assigns each key a contiguous block of scalar indices in the
// stacked linear system.
type Ordering struct {
	keys    []Key
	offsets map[Key]int
	dim     int
}

// NewOrdering builds the canonical ordering over all keys in the container.
func NewOrdering(v *Values) *Ordering {
	ord := &Ordering{offsets: map[Key]int{}}
	for _, k := range v.Keys() {
		val := v.data[k]
		ord.keys = append(ord.keys, k)
		ord.offsets[k] = ord.dim
		ord.dim += val.Dim()
	}
	return ord
}

// Dim returns the total scalar dimension of the system.
func (o *Ordering) Dim() int { return o.dim }

// Offset returns the scalar offset of the key's block.
func (o *Ordering) Offset(k Key) int { return o.offsets[k] }

// Keys returns the keys in system order.
func (o *Ordering) Keys() []Key { return o.keys }
