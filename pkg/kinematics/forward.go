package kinematics

import (
	"math"

	"github.com/teslashibe/go-armpick/pkg/spatial"
)

// Arm geometry in meters. d7e is the flange plus tool offset along the
// approach axis; a4/a7 are the two lateral elbow/wrist offsets.
const (
	d1  = 0.3330
	d3  = 0.3160
	d5  = 0.3840
	d7e = 0.2104
	a4  = 0.0825
	a7  = 0.0880
)

// Derived link constants for the shoulder-elbow-wrist triangle.
var (
	ll24 = a4*a4 + d3*d3
	ll46 = a4*a4 + d5*d5
	l24  = math.Sqrt(ll24)
	l46  = math.Sqrt(ll46)

	thetaH46 = math.Atan(d5 / a4)
	theta342 = math.Atan(d3 / a4)
	theta46H = math.Atan(a4 / d5)
)

// MaxReach is the longest shoulder-to-wrist distance the arm can span.
func MaxReach() float64 {
	return l24 + l46
}

// MinReach is the shortest shoulder-to-wrist distance the arm can fold to.
func MinReach() float64 {
	return math.Abs(l24 - l46)
}

// dhStep holds one modified-DH transform row (alpha and a are the
// previous-link twist and offset, d and theta belong to the joint).
type dhStep struct {
	alpha, a, d float64
}

// Modified-DH chain for the 7 joints plus the fixed tool step.
var dhChain = [7]dhStep{
	{0, 0, d1},
	{-math.Pi / 2, 0, 0},
	{math.Pi / 2, 0, d3},
	{math.Pi / 2, a4, 0},
	{-math.Pi / 2, -a4, d5},
	{math.Pi / 2, 0, 0},
	{math.Pi / 2, a7, 0},
}

// frame composes one modified-DH transform onto (R, p).
func frame(R spatial.Mat3, p spatial.Vec3, s dhStep, theta float64) (spatial.Mat3, spatial.Vec3) {
	ca, sa := math.Cos(s.alpha), math.Sin(s.alpha)
	cq, sq := math.Cos(theta), math.Sin(theta)
	local := spatial.Mat3{
		{cq, -sq, 0},
		{sq * ca, cq * ca, -sa},
		{sq * sa, cq * sa, ca},
	}
	offset := spatial.Vec3{X: s.a, Y: -s.d * sa, Z: s.d * ca}
	return R.Mul(local), p.Add(R.MulVec(offset))
}

// Forward computes the tool pose for a joint configuration.
// The tool frame sits d7e along the last joint axis, rotated -pi/4 about it.
func Forward(q JointVector) spatial.Pose {
	R := spatial.Identity3()
	p := spatial.Vec3{}
	for i, s := range dhChain {
		R, p = frame(R, p, s, q[i])
	}
	// Tool offset and the fixed flange twist.
	R, p = frame(R, p, dhStep{0, 0, d7e}, -math.Pi/4)
	return spatial.Pose{Pos: p, Rot: spatial.FromMatrix(R)}
}
