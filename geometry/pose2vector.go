package geometry

import "github.com/mobilerobotics/gptraj/factor"

// Pose2Vector is the composite configuration of a mobile-base manipulator: a
// planar base pose plus a vector of joint angles. Its chart is the additive
// chart on (x, y, theta, joints...) with the heading difference wrapped,
// which matches the constant-velocity GP prior operating on stacked chart
// coordinates.
type Pose2Vector struct {
	Base   Pose2
	Joints []float64
}

// NewPose2Vector builds a composite configuration, copying the joint slice.
func NewPose2Vector(base Pose2, joints []float64) Pose2Vector {
	j := make([]float64, len(joints))
	copy(j, joints)
	return Pose2Vector{Base: base, Joints: j}
}

// Dim returns 3 plus the number of joints.
func (p Pose2Vector) Dim() int { return 3 + len(p.Joints) }

// Retract returns a new configuration displaced by delta, with the base
// heading re-normalized.
func (p Pose2Vector) Retract(delta []float64) factor.Variable {
	joints := make([]float64, len(p.Joints))
	for i := range joints {
		joints[i] = p.Joints[i] + delta[3+i]
	}
	return Pose2Vector{
		Base:   NewPose2(p.Base.X+delta[0], p.Base.Y+delta[1], p.Base.Theta+delta[2]),
		Joints: joints,
	}
}

// Local returns the chart coordinates of other relative to the receiver.
func (p Pose2Vector) Local(other factor.Variable) []float64 {
	o := other.(Pose2Vector)
	out := make([]float64, p.Dim())
	out[0] = o.Base.X - p.Base.X
	out[1] = o.Base.Y - p.Base.Y
	out[2] = wrapAngle(o.Base.Theta - p.Base.Theta)
	for i := range p.Joints {
		out[3+i] = o.Joints[i] - p.Joints[i]
	}
	return out
}
