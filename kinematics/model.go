// Package kinematics provides the robot body models consumed by the
// trajectory optimizer: a sphere-decomposed forward-kinematics contract, a
// serial manipulator described by DH parameters, and a planar mobile base
// carrying a manipulator.
package kinematics

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/mobilerobotics/gptraj/factor"
)

// BodySphere is one collision-checking sphere attached to a robot link. The
// Center offset is expressed in the link's frame; Link indexes the frame the
// sphere rides on, with BaseLink meaning the robot's base frame.
type BodySphere struct {
	Link   int
	Radius float64
	Center r3.Vector
}

// BaseLink attaches a BodySphere to the robot base rather than a moving
// link frame.
const BaseLink = -1

// RobotModel is the capability contract the obstacle factors are written
// against. A model maps a configuration to the world positions of its body
// spheres along with the position Jacobians needed for chain-rule
// propagation of SDF gradients.
type RobotModel interface {
	// DOF returns the dimension of the model's configuration chart.
	DOF() int
	// NumSpheres returns the number of body spheres.
	NumSpheres() int
	// SphereRadius returns the radius of sphere i.
	SphereRadius(i int) float64
	// SpherePositions returns the world-frame center of every body sphere at
	// the given configuration, plus the 3 x DOF Jacobian of each center with
	// respect to the configuration chart.
	SpherePositions(pose factor.Variable) ([]r3.Vector, []*mat.Dense, error)
}
