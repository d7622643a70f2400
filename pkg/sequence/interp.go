package sequence

import (
	"math"

	"github.com/teslashibe/go-armpick/pkg/kinematics"
	"github.com/teslashibe/go-armpick/pkg/spatial"
)

// lerp performs linear interpolation.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// smoothstep provides smooth easing (slow start/end).
func smoothstep(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// blendJoints eases each joint from a to b. Both endpoints inside the limit
// box keeps every intermediate value inside it too.
func blendJoints(a, b kinematics.JointVector, t float64) kinematics.JointVector {
	var r kinematics.JointVector
	for i := 0; i < 7; i++ {
		r[i] = lerp(a[i], b[i], t)
	}
	return r
}

// blendPose linearly interpolates position and slerps orientation.
func blendPose(a, b spatial.Pose, t float64) spatial.Pose {
	return spatial.Pose{
		Pos: a.Pos.Lerp(b.Pos, t),
		Rot: a.Rot.Slerp(b.Rot, t),
	}
}

// blendPoseCylindrical interpolates position in (radius, angle, height)
// about the base axis so the blended point arcs around the robot instead of
// cutting through it. Orientation still slerps.
func blendPoseCylindrical(a, b spatial.Pose, t float64) spatial.Pose {
	ra := math.Hypot(a.Pos.X, a.Pos.Y)
	rb := math.Hypot(b.Pos.X, b.Pos.Y)

	// Degenerate radii have no meaningful angle; fall back to linear.
	if ra < 1e-9 || rb < 1e-9 {
		return blendPose(a, b, t)
	}

	thetaA := math.Atan2(a.Pos.Y, a.Pos.X)
	thetaB := math.Atan2(b.Pos.Y, b.Pos.X)
	dTheta := kinematics.NormalizeAngle(thetaB - thetaA)

	r := lerp(ra, rb, t)
	theta := thetaA + dTheta*t
	h := lerp(a.Pos.Z, b.Pos.Z, t)

	return spatial.Pose{
		Pos: spatial.Vec3{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: h},
		Rot: a.Rot.Slerp(b.Rot, t),
	}
}
