// Package sequence drives a 7-DOF arm through a fixed pick-and-place program.
// A data-driven phase table maps each step to a duration, a Cartesian target,
// a gripper command and an interpolation policy; the sequencer advances the
// table on a tick clock and blends joint-space trajectories between solves.
package sequence

import (
	"math"

	"github.com/teslashibe/go-armpick/pkg/kinematics"
	"github.com/teslashibe/go-armpick/pkg/spatial"
)

// Phase identifies one step of the pick-and-place program.
type Phase int

const (
	PhaseMoveOverTarget Phase = iota
	PhaseHover
	PhaseOpenGripper
	PhaseLowerOnto
	PhaseSettleWait
	PhaseGrasp
	PhaseGraspWait
	PhaseLift
	PhaseMoveToDropZone
	PhaseLowerToDrop
	PhasePreReleaseWait
	PhaseRelease
	PhaseReleaseWait
	PhaseLiftAfterRelease
	PhaseAdvanceOrReturnHome

	phaseCount
)

var phaseNames = [phaseCount]string{
	"move_over_target",
	"hover",
	"open_gripper",
	"lower_onto",
	"settle_wait",
	"grasp",
	"grasp_wait",
	"lift",
	"move_to_drop_zone",
	"lower_to_drop",
	"pre_release_wait",
	"release",
	"release_wait",
	"lift_after_release",
	"advance_or_return_home",
}

// String returns a stable snake_case phase name.
func (p Phase) String() string {
	if p < 0 || p >= phaseCount {
		return "unknown"
	}
	return phaseNames[p]
}

// Gripper command scale. 0 is fully closed, 255 fully open.
const (
	GripperClosed = 0.0
	GripperOpen   = 255.0
)

// Workspace offsets for the phase target poses, in meters.
const (
	hoverHeight   = 0.18
	graspHeight   = 0.01
	liftHeight    = 0.22
	dropApproach  = 0.02
	gridPitch     = 0.075
	layerHeight   = 0.055
	gridDim       = 3
	gridCells     = gridDim * gridDim
	rowModeFactor = 0.85
)

// phaseStep describes one entry of the program table: how long the phase
// runs, what the tool should do, and how the visual indicator blends.
type phaseStep struct {
	base        float64                          // seconds at speed 1
	gripper     float64                          // actuator command, 0..255
	target      func(s *Sequencer) spatial.Pose  // nil when preset is set
	preset      func() kinematics.JointVector    // explicit joints, bypasses IK
	cylindrical bool                             // polar indicator blend
}

// program is the fixed 15-step pick-and-place table. The three long
// cross-workspace transitions blend the indicator cylindrically so it never
// sweeps through the base.
var program = [phaseCount]phaseStep{
	PhaseMoveOverTarget:      {base: 1.2, gripper: GripperClosed, target: overTargetPose, cylindrical: true},
	PhaseHover:               {base: 0.3, gripper: GripperClosed, target: overTargetPose},
	PhaseOpenGripper:         {base: 0.4, gripper: GripperOpen, target: overTargetPose},
	PhaseLowerOnto:           {base: 0.8, gripper: GripperOpen, target: graspPose},
	PhaseSettleWait:          {base: 0.3, gripper: GripperOpen, target: graspPose},
	PhaseGrasp:               {base: 0.4, gripper: GripperClosed, target: graspPose},
	PhaseGraspWait:           {base: 0.3, gripper: GripperClosed, target: graspPose},
	PhaseLift:                {base: 0.8, gripper: GripperClosed, target: liftPose},
	PhaseMoveToDropZone:      {base: 1.2, gripper: GripperClosed, target: overDropPose, cylindrical: true},
	PhaseLowerToDrop:         {base: 0.8, gripper: GripperClosed, target: dropPose},
	PhasePreReleaseWait:      {base: 0.3, gripper: GripperClosed, target: dropPose},
	PhaseRelease:             {base: 0.4, gripper: GripperOpen, target: dropPose},
	PhaseReleaseWait:         {base: 0.3, gripper: GripperOpen, target: dropPose},
	PhaseLiftAfterRelease:    {base: 0.8, gripper: GripperOpen, target: liftAfterDropPose},
	PhaseAdvanceOrReturnHome: {base: 1.5, gripper: GripperOpen, preset: kinematics.Neutral, cylindrical: true},
}

// graspOrientation points the tool straight down for a top grasp.
func graspOrientation() spatial.Quat {
	return spatial.FromAxisAngle(spatial.Vec3{X: 1}, math.Pi)
}

func overTargetPose(s *Sequencer) spatial.Pose {
	return spatial.Pose{Pos: s.pickPos.Add(spatial.Vec3{Z: hoverHeight}), Rot: graspOrientation()}
}

func graspPose(s *Sequencer) spatial.Pose {
	return spatial.Pose{Pos: s.pickPos.Add(spatial.Vec3{Z: graspHeight}), Rot: graspOrientation()}
}

func liftPose(s *Sequencer) spatial.Pose {
	return spatial.Pose{Pos: s.pickPos.Add(spatial.Vec3{Z: liftHeight}), Rot: graspOrientation()}
}

func overDropPose(s *Sequencer) spatial.Pose {
	drop := s.dropPosition(s.placed)
	return spatial.Pose{Pos: drop.Add(spatial.Vec3{Z: liftHeight}), Rot: graspOrientation()}
}

func dropPose(s *Sequencer) spatial.Pose {
	drop := s.dropPosition(s.placed)
	return spatial.Pose{Pos: drop.Add(spatial.Vec3{Z: dropApproach}), Rot: graspOrientation()}
}

func liftAfterDropPose(s *Sequencer) spatial.Pose {
	drop := s.dropPosition(s.placed)
	return spatial.Pose{Pos: drop.Add(spatial.Vec3{Z: liftHeight}), Rot: graspOrientation()}
}

// StackSlot maps the Nth placed item to its (row, col, layer) grid cell.
// Cells fill a 3x3 layer before the next layer starts, so the mapping is a
// bijection between placed-count and cell.
func StackSlot(n int) (row, col, layer int) {
	cell := n % gridCells
	return cell / gridDim, cell % gridDim, n / gridCells
}
