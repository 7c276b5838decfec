package kinematics

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/mobilerobotics/gptraj/factor"
)

// DHParam describes one link of a serial manipulator in standard
// Denavit-Hartenberg form. Theta is a fixed joint-angle bias added to the
// configuration value; all joints are revolute.
type DHParam struct {
	A     float64 // link length
	Alpha float64 // link twist
	D     float64 // link offset
	Theta float64 // joint angle bias
}

// Arm is a serial manipulator whose collision geometry is a set of body
// spheres attached to its link frames. Configurations are joint-angle
// vectors.
type Arm struct {
	dh      []DHParam
	base    transform
	spheres []BodySphere
}

// NewArm builds an arm from DH parameters and a sphere decomposition.
// Sphere link indices must lie in [BaseLink, len(dh)-1]; link i means the
// frame distal to joint i.
func NewArm(dh []DHParam, spheres []BodySphere) (*Arm, error) {
	if len(dh) == 0 {
		return nil, errors.New("arm needs at least one link")
	}
	if len(spheres) == 0 {
		return nil, errors.New("arm needs at least one body sphere")
	}
	for i, s := range spheres {
		if s.Link < BaseLink || s.Link >= len(dh) {
			return nil, errors.Errorf("sphere %d attached to link %d, arm has %d links", i, s.Link, len(dh))
		}
		if s.Radius < 0 {
			return nil, errors.Errorf("sphere %d has negative radius", i)
		}
	}
	return &Arm{dh: dh, base: identityTransform(), spheres: spheres}, nil
}

// NewPlanarArm builds an arm of revolute joints all turning about Z, with
// links of the given lengths lying in the XY plane, and spheresPerLink
// spheres of one shared radius spaced evenly along each link starting from
// its distal end.
func NewPlanarArm(lengths []float64, spheresPerLink int, radius float64) (*Arm, error) {
	if spheresPerLink < 1 {
		return nil, errors.New("need at least one sphere per link")
	}
	dh := make([]DHParam, len(lengths))
	var spheres []BodySphere
	for i, l := range lengths {
		dh[i] = DHParam{A: l}
		for k := 0; k < spheresPerLink; k++ {
			spheres = append(spheres, BodySphere{
				Link:   i,
				Radius: radius,
				Center: r3.Vector{X: -l * float64(k) / float64(spheresPerLink)},
			})
		}
	}
	return NewArm(dh, spheres)
}

// DOF returns the number of joints.
func (a *Arm) DOF() int { return len(a.dh) }

// NumSpheres returns the number of body spheres.
func (a *Arm) NumSpheres() int { return len(a.spheres) }

// SphereRadius returns the radius of sphere i.
func (a *Arm) SphereRadius(i int) float64 { return a.spheres[i].Radius }

// SpherePositions returns world sphere centers and their Jacobians with
// respect to the joint angles.
func (a *Arm) SpherePositions(pose factor.Variable) ([]r3.Vector, []*mat.Dense, error) {
	q, ok := pose.(factor.Vector)
	if !ok {
		return nil, nil, errors.New("arm configuration must be a joint vector")
	}
	if len(q) != len(a.dh) {
		return nil, nil, errors.Errorf("arm has %d joints, configuration has %d", len(a.dh), len(q))
	}
	centers, jacs := a.spherePositionsFrom(a.base, q, 0)
	return centers, jacs, nil
}

// spherePositionsFrom computes sphere centers and joint Jacobians with the
// given base transform. Jacobians are allocated with leadingCols extra zero
// columns in front of the joint columns so a mobile base can prepend its
// own block.
func (a *Arm) spherePositionsFrom(base transform, q []float64, leadingCols int) ([]r3.Vector, []*mat.Dense) {
	n := len(a.dh)

	// frames[i] is the frame joint i turns in; frames[n] is the last link.
	frames := make([]transform, n+1)
	frames[0] = base
	for i := 0; i < n; i++ {
		frames[i+1] = frames[i].compose(dhTransform(a.dh[i], q[i]))
	}

	centers := make([]r3.Vector, len(a.spheres))
	jacs := make([]*mat.Dense, len(a.spheres))
	for si, s := range a.spheres {
		c := frames[s.Link+1].apply(s.Center)
		centers[si] = c
		jac := mat.NewDense(3, leadingCols+n, nil)
		for j := 0; j <= s.Link; j++ {
			// revolute joint j moves the center along z_j x (c - p_j)
			col := frames[j].rot.zAxis().Cross(c.Sub(frames[j].trans))
			jac.Set(0, leadingCols+j, col.X)
			jac.Set(1, leadingCols+j, col.Y)
			jac.Set(2, leadingCols+j, col.Z)
		}
		jacs[si] = jac
	}
	return centers, jacs
}
