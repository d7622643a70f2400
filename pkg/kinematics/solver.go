package kinematics

import (
	"math"

	"github.com/teslashibe/go-armpick/pkg/spatial"
)

// Cone around the vertical in which the shoulder azimuth is undefined.
// Inside it the q1/q2 decomposition loses rank and the branch is skipped;
// the resolver's redundancy scan covers those poses from neighbouring q7.
const shoulderSingularCos = 0.999

// Solve returns every joint configuration that reaches the target tool pose
// with the 7th joint fixed at q7. The result has 0, 2 or 4 entries: two
// symmetric wrist branches, each with up to two shoulder branches. Branch
// enumeration order is fixed so that downstream tie-breaking is stable.
//
// An empty result is the normal "no configuration exists for this q7"
// outcome, not an error. Solve keeps no state and is safe to call
// concurrently.
func Solve(target spatial.Pose, q7 float64) []JointVector {
	var sols []JointVector
	if q7 <= JointMin[6] || q7 >= JointMax[6] {
		return sols
	}

	rEE := target.Matrix()
	zEE := rEE.Col(2)

	// Retract from the tool tip to the wrist center, then along the
	// sixth-axis direction to the frame-6 origin. The axis direction uses
	// the fixed pi/4 offset between the flange frame and joint 7.
	p7 := target.Pos.Sub(zEE.Scale(d7e))
	xEE6 := spatial.Vec3{X: math.Cos(q7 - math.Pi/4), Y: -math.Sin(q7 - math.Pi/4)}
	x6 := rEE.MulVec(xEE6).Unit()
	p6 := p7.Sub(x6.Scale(a7))

	p2 := spatial.Vec3{Z: d1}
	v26 := p6.Sub(p2)
	ll26 := v26.Dot(v26)
	l26 := math.Sqrt(ll26)

	// Triangle inequality on the shoulder-elbow-wrist triangle.
	if l24+l46 < l26 || l24+l26 < l46 || l26+l46 < l24 {
		return sols
	}

	// Elbow angle by the law of cosines. One value per q7.
	theta246 := math.Acos(clampUnit((ll24 + ll46 - ll26) / (2 * l24 * l46)))
	q4 := theta246 + thetaH46 + theta342 - 2*math.Pi
	if q4 <= JointMin[3] || q4 >= JointMax[3] {
		return sols
	}

	theta462 := math.Acos(clampUnit((ll26 + ll46 - ll24) / (2 * l26 * l46)))
	theta26H := theta46H + theta462
	d26 := -l26 * math.Cos(theta26H)

	// Frame 6 basis from the tool axes.
	z6 := zEE.Cross(x6)
	y6 := z6.Cross(x6)
	r6 := spatial.FromCols(x6, y6.Unit(), z6.Unit())

	// Amplitude/phase decomposition of the wrist-to-shoulder vector in
	// frame 6 gives the two symmetric q6 branches.
	v662 := r6.MulVecT(v26.Scale(-1))
	phi6 := math.Atan2(v662.Y, v662.X)
	theta6 := math.Asin(clampUnit(d26 / math.Hypot(v662.X, v662.Y)))

	for _, q6 := range [2]float64{math.Pi - theta6 - phi6, theta6 - phi6} {
		// Joint 6 travels past pi, so shift by one turn instead of
		// wrapping into (-pi, pi].
		if q6 <= JointMin[5] {
			q6 += 2 * math.Pi
		} else if q6 >= JointMax[5] {
			q6 -= 2 * math.Pi
		}
		if q6 <= JointMin[5] || q6 >= JointMax[5] {
			continue
		}

		thetaP26 := 3*math.Pi/2 - theta462 - theta246 - theta342
		thetaP := math.Pi - thetaP26 - theta26H
		lP6 := l26 * math.Sin(thetaP26) / math.Sin(thetaP)

		z65 := spatial.Vec3{X: math.Sin(q6), Y: math.Cos(q6)}
		z5 := r6.MulVec(z65)
		v2P := p6.Sub(z5.Scale(lP6)).Sub(p2)
		l2P := v2P.Norm()

		if math.Abs(v2P.Z/l2P) > shoulderSingularCos {
			continue
		}

		q2abs := math.Acos(clampUnit(v2P.Z / l2P))
		shoulders := [2][2]float64{
			{math.Atan2(v2P.Y, v2P.X), q2abs},
			{math.Atan2(-v2P.Y, -v2P.X), -q2abs},
		}
		for _, s := range shoulders {
			q1, q2 := s[0], s[1]
			if q1 <= JointMin[0] || q1 >= JointMax[0] {
				continue
			}
			if q2 <= JointMin[1] || q2 >= JointMax[1] {
				continue
			}

			// Joint 3 from the elbow-plane basis projected into the
			// shoulder frame.
			z3 := v2P.Scale(1 / l2P)
			y3 := v26.Cross(v2P).Scale(-1).Unit()
			x3 := y3.Cross(z3)

			c1, s1 := math.Cos(q1), math.Sin(q1)
			r1 := spatial.Mat3{{c1, -s1, 0}, {s1, c1, 0}, {0, 0, 1}}
			c2, s2 := math.Cos(q2), math.Sin(q2)
			r12 := spatial.Mat3{{c2, -s2, 0}, {0, 0, 1}, {-s2, -c2, 0}}
			r2 := r1.Mul(r12)
			x23 := r2.MulVecT(x3)
			q3 := math.Atan2(x23.Z, x23.X)
			if q3 <= JointMin[2] || q3 >= JointMax[2] {
				continue
			}

			// Joint 5 last, from the wrist geometry in frame 5.
			vH4 := p2.Add(z3.Scale(d3)).Add(x3.Scale(a4)).Sub(p6).Add(z5.Scale(d5))
			c6, s6 := math.Cos(q6), math.Sin(q6)
			r56 := spatial.Mat3{{c6, -s6, 0}, {0, 0, -1}, {s6, c6, 0}}
			r5 := r6.Mul(r56.Transpose())
			v5H4 := r5.MulVecT(vH4)
			q5 := -math.Atan2(v5H4.Y, v5H4.X)
			if q5 <= JointMin[4] || q5 >= JointMax[4] {
				continue
			}

			sols = append(sols, JointVector{q1, q2, q3, q4, q5, q6, q7})
		}
	}
	return sols
}
