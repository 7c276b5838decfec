// Package factor provides the sparse factor-graph substrate used by the
// trajectory optimizer: time-indexed variable keys, the state container
// holding pose and velocity values, noise models, and an ordered factor
// collection that linearizes into a normal-equation system.
package factor

import "fmt"

// Kind enumerates the two variable kinds present in a trajectory.
type Kind int

const (
	// PoseKind marks a configuration variable, e.g. joint angles or a
	// mobile base pose plus joint angles.
	PoseKind Kind = iota
	// VelocityKind marks a velocity variable, always vector-valued with the
	// same degrees of freedom as its pose.
	VelocityKind
)

func (k Kind) String() string {
	switch k {
	case PoseKind:
		return "x"
	case VelocityKind:
		return "v"
	}
	return "?"
}

// Key identifies one variable in a trajectory: a kind plus a support-state
// time index in [0, totalStep].
type Key struct {
	Kind  Kind
	Index int
}

// PoseKey returns the pose key at the given time index.
func PoseKey(index int) Key { return Key{PoseKind, index} }

// VelocityKey returns the velocity key at the given time index.
func VelocityKey(index int) Key { return Key{VelocityKind, index} }

func (k Key) String() string {
	return fmt.Sprintf("%s%d", k.Kind, k.Index)
}
