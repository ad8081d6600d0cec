// Package math provides the small vector, matrix and quaternion types used
// for tangent frames and scene transforms.
package math

// Vec2 is a 2D vector, used for UV coordinates.
type Vec2 struct {
	X, Y float32
}

// Vec2FromArray converts a [2]float32 to Vec2.
func Vec2FromArray(a [2]float32) Vec2 {
	return Vec2{a[0], a[1]}
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Cross returns the z component of the 3D cross product, i.e. twice the
// signed area of the triangle (0, v, other).
func (v Vec2) Cross(other Vec2) float32 {
	return v.X*other.Y - v.Y*other.X
}
