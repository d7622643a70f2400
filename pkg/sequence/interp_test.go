package sequence

import (
	"math"
	"testing"

	"github.com/teslashibe/go-armpick/pkg/kinematics"
	"github.com/teslashibe/go-armpick/pkg/spatial"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestSmoothstep(t *testing.T) {
	if !floatEquals(smoothstep(0), 0) || !floatEquals(smoothstep(1), 1) {
		t.Error("smoothstep endpoints wrong")
	}
	if !floatEquals(smoothstep(0.5), 0.5) {
		t.Errorf("smoothstep(0.5) = %v", smoothstep(0.5))
	}
	if smoothstep(-0.5) != 0 || smoothstep(1.5) != 1 {
		t.Error("smoothstep must clamp outside [0, 1]")
	}

	prev := 0.0
	for x := 0.05; x <= 1; x += 0.05 {
		v := smoothstep(x)
		if v < prev {
			t.Fatalf("smoothstep not monotone at %v", x)
		}
		prev = v
	}
}

func TestBlendJointsStaysWithinLimits(t *testing.T) {
	a := kinematics.Neutral()
	b := kinematics.Neutral()
	b[0] = 2.5
	b[3] = -1.0

	for _, tt := range []float64{0, 0.25, 0.5, 0.75, 1} {
		q := blendJoints(a, b, tt)
		if !q.WithinLimits() {
			t.Errorf("blend at %v left the limit box: %v", tt, q)
		}
	}
	if blendJoints(a, b, 0) != a || blendJoints(a, b, 1) != b {
		t.Error("blend endpoints wrong")
	}
}

func TestBlendPoseCylindricalKeepsRadius(t *testing.T) {
	rot := spatial.IdentityQuat()
	a := spatial.Pose{Pos: spatial.Vec3{X: 0.5, Z: 0.2}, Rot: rot}
	b := spatial.Pose{Pos: spatial.Vec3{Y: 0.5, Z: 0.4}, Rot: rot}

	mid := blendPoseCylindrical(a, b, 0.5)
	r := math.Hypot(mid.Pos.X, mid.Pos.Y)
	if !floatEquals(r, 0.5) {
		t.Errorf("midpoint radius = %v, want 0.5", r)
	}
	if !floatEquals(mid.Pos.Z, 0.3) {
		t.Errorf("midpoint height = %v, want 0.3", mid.Pos.Z)
	}

	// A straight lerp would cut the corner well inside the arc.
	straight := a.Pos.Lerp(b.Pos, 0.5)
	if math.Hypot(straight.X, straight.Y) >= r {
		t.Error("cylindrical blend did not differ from linear where it should")
	}
}

func TestBlendPoseCylindricalShortArc(t *testing.T) {
	rot := spatial.IdentityQuat()
	// 170 degrees apart going positive, so the short arc is the positive one.
	a := spatial.Pose{Pos: spatial.Vec3{X: 0.5}, Rot: rot}
	th := 170 * math.Pi / 180
	b := spatial.Pose{Pos: spatial.Vec3{X: 0.5 * math.Cos(th), Y: 0.5 * math.Sin(th)}, Rot: rot}

	mid := blendPoseCylindrical(a, b, 0.5)
	if mid.Pos.Y <= 0 {
		t.Errorf("blend took the long way around: %v", mid.Pos)
	}
}

func TestBlendPoseCylindricalDegenerateRadius(t *testing.T) {
	rot := spatial.IdentityQuat()
	a := spatial.Pose{Pos: spatial.Vec3{Z: 0.5}, Rot: rot} // on the base axis
	b := spatial.Pose{Pos: spatial.Vec3{X: 0.4, Z: 0.1}, Rot: rot}

	mid := blendPoseCylindrical(a, b, 0.5)
	want := a.Pos.Lerp(b.Pos, 0.5)
	if mid.Pos.Sub(want).Norm() > floatTolerance {
		t.Errorf("degenerate blend = %v, want linear %v", mid.Pos, want)
	}
}

func TestBlendPoseEndpoints(t *testing.T) {
	a := spatial.Pose{Pos: spatial.Vec3{X: 1}, Rot: spatial.IdentityQuat()}
	b := spatial.Pose{Pos: spatial.Vec3{Y: 1}, Rot: spatial.FromAxisAngle(spatial.Vec3{Z: 1}, math.Pi/2)}

	if got := blendPose(a, b, 0); got.Pos != a.Pos {
		t.Errorf("blendPose(0) pos = %v", got.Pos)
	}
	if got := blendPose(a, b, 1); got.Pos != b.Pos {
		t.Errorf("blendPose(1) pos = %v", got.Pos)
	}
}
