// Package geometry provides the planar rigid-transform state types used by
// mobile-base robot models.
package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// Pose2 is a planar rigid transform: a position in the XY plane plus a
// heading in radians.
type Pose2 struct {
	X     float64
	Y     float64
	Theta float64
}

// NewPose2 returns the pose with the given position and heading. The heading
// is normalized to (-pi, pi].
func NewPose2(x, y, theta float64) Pose2 {
	return Pose2{X: x, Y: y, Theta: wrapAngle(theta)}
}

// Compose returns the pose obtained by applying other in the receiver's
// frame.
func (p Pose2) Compose(other Pose2) Pose2 {
	s, c := math.Sincos(p.Theta)
	return Pose2{
		X:     p.X + c*other.X - s*other.Y,
		Y:     p.Y + s*other.X + c*other.Y,
		Theta: wrapAngle(p.Theta + other.Theta),
	}
}

// TransformPoint maps a point from the receiver's frame to the world frame.
// The Z component passes through unchanged.
func (p Pose2) TransformPoint(pt r3.Vector) r3.Vector {
	s, c := math.Sincos(p.Theta)
	return r3.Vector{
		X: p.X + c*pt.X - s*pt.Y,
		Y: p.Y + s*pt.X + c*pt.Y,
		Z: pt.Z,
	}
}

// Point returns the pose's position lifted into 3D with Z = 0.
func (p Pose2) Point() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y}
}

// wrapAngle normalizes an angle to (-pi, pi].
func wrapAngle(theta float64) float64 {
	for theta > math.Pi {
		theta -= 2 * math.Pi
	}
	for theta <= -math.Pi {
		theta += 2 * math.Pi
	}
	return theta
}
