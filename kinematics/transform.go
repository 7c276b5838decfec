package kinematics

import (
	"math"

	"github.com/golang/geo/r3"
)

// rotation is a row-major 3x3 rotation matrix.
type rotation [9]float64

func identityRotation() rotation {
	return rotation{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

func rotZ(theta float64) rotation {
	s, c := math.Sincos(theta)
	return rotation{c, -s, 0, s, c, 0, 0, 0, 1}
}

func (r rotation) mul(o rotation) rotation {
	var out rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[3*i+j] = r[3*i]*o[j] + r[3*i+1]*o[3+j] + r[3*i+2]*o[6+j]
		}
	}
	return out
}

func (r rotation) apply(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: r[0]*v.X + r[1]*v.Y + r[2]*v.Z,
		Y: r[3]*v.X + r[4]*v.Y + r[5]*v.Z,
		Z: r[6]*v.X + r[7]*v.Y + r[8]*v.Z,
	}
}

// zAxis returns the rotation's third column, the axis a revolute joint in
// this frame turns about.
func (r rotation) zAxis() r3.Vector {
	return r3.Vector{X: r[2], Y: r[5], Z: r[8]}
}

// transform is a rigid transform: rotation then translation.
type transform struct {
	rot   rotation
	trans r3.Vector
}

func identityTransform() transform {
	return transform{rot: identityRotation()}
}

func (t transform) compose(o transform) transform {
	return transform{
		rot:   t.rot.mul(o.rot),
		trans: t.trans.Add(t.rot.apply(o.trans)),
	}
}

func (t transform) apply(p r3.Vector) r3.Vector {
	return t.trans.Add(t.rot.apply(p))
}

// dhTransform returns the frame-to-frame transform of one DH link at joint
// angle q: Rz(theta) Tz(d) Tx(a) Rx(alpha).
func dhTransform(p DHParam, q float64) transform {
	st, ct := math.Sincos(q + p.Theta)
	sa, ca := math.Sincos(p.Alpha)
	return transform{
		rot: rotation{
			ct, -st * ca, st * sa,
			st, ct * ca, -ct * sa,
			0, sa, ca,
		},
		trans: r3.Vector{X: p.A * ct, Y: p.A * st, Z: p.D},
	}
}
