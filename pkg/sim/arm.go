// Package sim is a minimal kinematic stand-in for a physics backend. It
// tracks joint commands with a first-order lag, keeps a registry of named
// bodies, and carries a grasped body with the tool so a full pick-and-place
// run can execute without hardware.
package sim

import (
	"math"
	"sync"

	"github.com/teslashibe/go-armpick/pkg/kinematics"
	"github.com/teslashibe/go-armpick/pkg/spatial"
)

const (
	// jointTau is the first-order tracking time constant in seconds.
	jointTau = 0.05

	// graspRadius is how close the tool must be to a body to attach it
	// when the gripper closes.
	graspRadius = 0.06

	// gripperClosedMax is the command level below which the gripper
	// counts as closed.
	gripperClosedMax = 32.0
)

// Arm simulates a 7-DOF arm plus parallel gripper. All methods are safe for
// concurrent use; the tick loop calls Step while handlers read state.
type Arm struct {
	mu sync.RWMutex

	joints     kinematics.JointVector // actual
	commanded  kinematics.JointVector
	gripper    float64 // actual, 0..255
	gripperCmd float64

	bodies  map[string]spatial.Vec3
	grasped string // body id currently attached to the tool, "" when none
}

// NewArm creates a simulator resting at the given configuration.
func NewArm(initial kinematics.JointVector) *Arm {
	return &Arm{
		joints:    initial,
		commanded: initial,
		bodies:    make(map[string]spatial.Vec3),
	}
}

// JointPositions returns the actual joint state.
func (a *Arm) JointPositions() kinematics.JointVector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.joints
}

// CommandJoints sets the joint setpoint, clamped to the joint limit box.
func (a *Arm) CommandJoints(q kinematics.JointVector) {
	for i := 0; i < 7; i++ {
		if q[i] < kinematics.JointMin[i] {
			q[i] = kinematics.JointMin[i]
		}
		if q[i] > kinematics.JointMax[i] {
			q[i] = kinematics.JointMax[i]
		}
	}
	a.mu.Lock()
	a.commanded = q
	a.mu.Unlock()
}

// CommandGripper sets the gripper setpoint on the 0..255 scale.
func (a *Arm) CommandGripper(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	a.mu.Lock()
	a.gripperCmd = v
	a.mu.Unlock()
}

// Gripper returns the actual gripper level.
func (a *Arm) Gripper() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gripper
}

// ToolPose returns the forward-kinematics pose of the tool frame.
func (a *Arm) ToolPose() spatial.Pose {
	a.mu.RLock()
	q := a.joints
	a.mu.RUnlock()
	return kinematics.Forward(q)
}

// SetBody registers or moves a named body.
func (a *Arm) SetBody(id string, pos spatial.Vec3) {
	a.mu.Lock()
	a.bodies[id] = pos
	a.mu.Unlock()
}

// RemoveBody deletes a named body. Removing the grasped body releases it.
func (a *Arm) RemoveBody(id string) {
	a.mu.Lock()
	delete(a.bodies, id)
	if a.grasped == id {
		a.grasped = ""
	}
	a.mu.Unlock()
}

// BodyPosition reports a body's world position.
func (a *Arm) BodyPosition(id string) (spatial.Vec3, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	pos, ok := a.bodies[id]
	return pos, ok
}

// Grasped returns the id of the body attached to the tool, if any.
func (a *Arm) Grasped() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.grasped, a.grasped != ""
}

// Step advances the simulation by dt seconds: joints and gripper track their
// setpoints with a first-order lag, the gripper attaches the nearest in-range
// body when it closes and releases it when it opens.
func (a *Arm) Step(dt float64) {
	if dt <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	k := 1 - math.Exp(-dt/jointTau)
	for i := 0; i < 7; i++ {
		a.joints[i] += (a.commanded[i] - a.joints[i]) * k
	}
	a.gripper += (a.gripperCmd - a.gripper) * k

	tool := kinematics.Forward(a.joints).Pos

	if a.grasped != "" {
		if a.gripper > gripperClosedMax {
			// Released: the body stays where the tool left it.
			a.bodies[a.grasped] = tool
			a.grasped = ""
		} else {
			a.bodies[a.grasped] = tool
		}
		return
	}

	if a.gripperCmd <= gripperClosedMax && a.gripper <= gripperClosedMax {
		a.grasped = a.nearestBody(tool, graspRadius)
	}
}

// nearestBody returns the closest body within radius of p, or "".
func (a *Arm) nearestBody(p spatial.Vec3, radius float64) string {
	best := ""
	bestD := radius
	for id, pos := range a.bodies {
		d := pos.Sub(p).Norm()
		if d <= bestD {
			best, bestD = id, d
		}
	}
	return best
}
