package kinematics

import (
	"math"
	"testing"

	"github.com/teslashibe/go-armpick/pkg/spatial"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// poseError returns the position distance and a rotation distance
// (1 - |dot|) between two poses.
func poseError(a, b spatial.Pose) (float64, float64) {
	return a.Pos.Sub(b.Pos).Norm(), 1 - math.Abs(a.Rot.Dot(b.Rot))
}

func TestForwardNeutral(t *testing.T) {
	got := Forward(Neutral())

	// In the neutral configuration the tool hangs in front of the base
	// pointing straight down.
	want := spatial.Pose{
		Pos: spatial.Vec3{X: 0.30689056659294, Z: 0.48688205230284},
		Rot: spatial.FromAxisAngle(spatial.Vec3{X: 1}, math.Pi),
	}
	dp, dr := poseError(got, want)
	if dp > 1e-10 {
		t.Errorf("neutral tool position %v, want %v (err %g)", got.Pos, want.Pos, dp)
	}
	if dr > 1e-10 {
		t.Errorf("neutral tool orientation %v, want straight down (err %g)", got.Rot, dr)
	}
}

func TestForwardZeroConfigHeight(t *testing.T) {
	// With every joint at zero, joint 4's limit is violated but the chain
	// itself is well defined: the arm points mostly up.
	got := Forward(JointVector{})
	if got.Pos.Z < d1 {
		t.Errorf("zero config tool below the shoulder: %v", got.Pos)
	}
}

func TestReachBounds(t *testing.T) {
	if MaxReach() <= MinReach() {
		t.Fatalf("MaxReach %v <= MinReach %v", MaxReach(), MinReach())
	}
	wantMax := math.Sqrt(a4*a4+d3*d3) + math.Sqrt(a4*a4+d5*d5)
	if !floatEquals(MaxReach(), wantMax) {
		t.Errorf("MaxReach = %v, want %v", MaxReach(), wantMax)
	}
}

func TestWithinLimits(t *testing.T) {
	if !Neutral().WithinLimits() {
		t.Error("neutral configuration should be within limits")
	}
	if (JointVector{}).WithinLimits() {
		t.Error("zero config violates the elbow limit and must be rejected")
	}

	edge := Neutral()
	edge[0] = JointMax[0] // boundary is exclusive
	if edge.WithinLimits() {
		t.Error("boundary value counted as inside")
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{2 * math.Pi, 0},
		{-5 * math.Pi / 2, -math.Pi / 2},
	}
	for _, c := range cases {
		if got := NormalizeAngle(c.in); !floatEquals(got, c.want) {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestDegreesRadians(t *testing.T) {
	if !floatEquals(Degrees(math.Pi), 180) {
		t.Errorf("Degrees(pi) = %v", Degrees(math.Pi))
	}
	if !floatEquals(Radians(90), math.Pi/2) {
		t.Errorf("Radians(90) = %v", Radians(90))
	}
}
