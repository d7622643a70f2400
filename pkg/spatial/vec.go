// Package spatial provides the minimal 3D math used by the kinematics core:
// 3-vectors, unit quaternions and 3x3 rotation matrices. It has no rendering
// or scene-graph dependency.
package spatial

import "math"

// Vec3 is a 3D vector or point in meters.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product with o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product with o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Norm returns the Euclidean length.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Unit returns v normalized to length 1.
// A near-zero vector falls back to the x axis.
func (v Vec3) Unit() Vec3 {
	n := v.Norm()
	if n < 1e-10 {
		return Vec3{X: 1}
	}
	return v.Scale(1 / n)
}

// Lerp linearly interpolates from v to o at parameter t.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		v.X + t*(o.X-v.X),
		v.Y + t*(o.Y-v.Y),
		v.Z + t*(o.Z-v.Z),
	}
}
