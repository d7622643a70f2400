// Package kinematics implements the closed-form inverse kinematics for a
// 7-DOF redundant arm: forward kinematics over a modified-DH chain, an
// analytical solver enumerating the elbow/shoulder/wrist branches for a given
// redundancy angle, and a resolver that scans the redundancy angle and keeps
// the minimum-cost configuration.
package kinematics

import "math"

// JointVector is an ordered set of 7 joint angles in radians.
type JointVector [7]float64

// Per-joint mechanical limits in radians.
// Joint 4 (the elbow) never straightens past -0.0698 rad.
var (
	JointMin = JointVector{-2.8973, -1.7628, -2.8973, -3.0718, -2.8973, -0.0175, -2.8973}
	JointMax = JointVector{2.8973, 1.7628, 2.8973, -0.0698, 2.8973, 3.7525, 2.8973}
)

// WithinLimits reports whether all 7 joints are strictly inside their limits.
func (q JointVector) WithinLimits() bool {
	for i := 0; i < 7; i++ {
		if q[i] <= JointMin[i] || q[i] >= JointMax[i] {
			return false
		}
	}
	return true
}

// Sub returns the element-wise difference q - o.
func (q JointVector) Sub(o JointVector) JointVector {
	var r JointVector
	for i := 0; i < 7; i++ {
		r[i] = q[i] - o[i]
	}
	return r
}

// NormSq returns the squared Euclidean norm of the vector.
func (q JointVector) NormSq() float64 {
	var s float64
	for i := 0; i < 7; i++ {
		s += q[i] * q[i]
	}
	return s
}

// NormalizeAngle wraps a into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// clampUnit restricts x to [-1, 1] so inverse-trig inputs never overflow
// their domain from floating-point error at workspace boundaries.
func clampUnit(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}

// Degrees converts radians to degrees for logging/display.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
