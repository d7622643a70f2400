package sequence

import (
	"github.com/google/uuid"

	"github.com/teslashibe/go-armpick/pkg/kinematics"
	"github.com/teslashibe/go-armpick/pkg/spatial"
)

// PickTarget is one item to pick. A target is either a static 3D point
// (captured once at sequence start) or a live body whose position is re-read
// from the physics state at the start of each phase.
type PickTarget struct {
	// ID is the opaque identifier reported in completion outcomes.
	ID string

	// Pos is the captured point for static targets.
	Pos spatial.Vec3

	// BodyID, when non-empty, names a live body to locate each phase.
	BodyID string
}

// PointTarget wraps a static 3D point with a generated marker identifier.
func PointTarget(pos spatial.Vec3) PickTarget {
	return PickTarget{ID: uuid.NewString(), Pos: pos}
}

// BodyTarget references a live body by identifier.
func BodyTarget(id string) PickTarget {
	return PickTarget{ID: id, BodyID: id}
}

// JointReader provides the arm's current joint positions.
// Use this minimal interface when only state readback is needed.
type JointReader interface {
	JointPositions() kinematics.JointVector
}

// Actuator receives the per-tick joint and gripper commands.
type Actuator interface {
	CommandJoints(q kinematics.JointVector)
	CommandGripper(v float64)
}

// BodyLocator resolves live body positions in world space.
type BodyLocator interface {
	BodyPosition(id string) (spatial.Vec3, bool)
}
