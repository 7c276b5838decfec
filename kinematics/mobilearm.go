package kinematics

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/mobilerobotics/gptraj/factor"
	"github.com/mobilerobotics/gptraj/geometry"
)

// Pose2MobileArm is a manipulator mounted on a planar mobile base. Its
// configuration is a geometry.Pose2Vector: the base pose (x, y, theta)
// followed by the arm's joint angles. Base spheres ride on the base frame;
// arm spheres ride on the arm's link frames, with the arm mounted at a fixed
// offset in the base frame.
type Pose2MobileArm struct {
	arm         *Arm
	baseSpheres []BodySphere
	mount       transform
}

// NewPose2MobileArm builds a mobile manipulator. The mount pose places the
// arm base in the base frame; mountHeight lifts it off the ground plane.
// baseSpheres must use BaseLink.
func NewPose2MobileArm(arm *Arm, baseSpheres []BodySphere, mount geometry.Pose2, mountHeight float64) (*Pose2MobileArm, error) {
	if arm == nil {
		return nil, errors.New("mobile arm needs an arm model")
	}
	for i, s := range baseSpheres {
		if s.Link != BaseLink {
			return nil, errors.Errorf("base sphere %d must attach to BaseLink", i)
		}
	}
	m := poseToTransform(mount)
	m.trans.Z = mountHeight
	return &Pose2MobileArm{arm: arm, baseSpheres: baseSpheres, mount: m}, nil
}

// DOF returns 3 base degrees of freedom plus the arm's joints.
func (m *Pose2MobileArm) DOF() int { return 3 + m.arm.DOF() }

// NumSpheres returns base spheres plus arm spheres.
func (m *Pose2MobileArm) NumSpheres() int { return len(m.baseSpheres) + m.arm.NumSpheres() }

// SphereRadius returns the radius of sphere i, base spheres first.
func (m *Pose2MobileArm) SphereRadius(i int) float64 {
	if i < len(m.baseSpheres) {
		return m.baseSpheres[i].Radius
	}
	return m.arm.SphereRadius(i - len(m.baseSpheres))
}

// SpherePositions returns world sphere centers and Jacobians with respect to
// (x, y, theta, joints...), base spheres first.
func (m *Pose2MobileArm) SpherePositions(pose factor.Variable) ([]r3.Vector, []*mat.Dense, error) {
	pv, ok := pose.(geometry.Pose2Vector)
	if !ok {
		return nil, nil, errors.New("mobile arm configuration must be a Pose2Vector")
	}
	if len(pv.Joints) != m.arm.DOF() {
		return nil, nil, errors.Errorf("arm has %d joints, configuration has %d", m.arm.DOF(), len(pv.Joints))
	}

	baseT := poseToTransform(pv.Base)
	basePt := pv.Base.Point()
	dof := m.DOF()

	centers := make([]r3.Vector, 0, m.NumSpheres())
	jacs := make([]*mat.Dense, 0, m.NumSpheres())

	for _, s := range m.baseSpheres {
		c := baseT.apply(s.Center)
		jac := mat.NewDense(3, dof, nil)
		setBaseColumns(jac, c, basePt)
		centers = append(centers, c)
		jacs = append(jacs, jac)
	}

	armCenters, armJacs := m.arm.spherePositionsFrom(baseT.compose(m.mount), pv.Joints, 3)
	for i, c := range armCenters {
		setBaseColumns(armJacs[i], c, basePt)
		centers = append(centers, c)
		jacs = append(jacs, armJacs[i])
	}
	return centers, jacs, nil
}

// setBaseColumns fills the three leading Jacobian columns of a point rigidly
// attached (directly or through the arm) to the base: unit translations in x
// and y, and the in-plane lever arm for rotation about the base origin.
func setBaseColumns(jac *mat.Dense, c, basePt r3.Vector) {
	jac.Set(0, 0, 1)
	jac.Set(1, 1, 1)
	jac.Set(0, 2, -(c.Y - basePt.Y))
	jac.Set(1, 2, c.X-basePt.X)
}

func poseToTransform(p geometry.Pose2) transform {
	return transform{rot: rotZ(p.Theta), trans: p.Point()}
}
