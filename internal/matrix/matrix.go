// Package matrix provides the 4x4 homogeneous transforms used to place
// shapes in a scene. It wraps math32.Matrix4 (column-major, float32)
// while shapes keep their float64 coordinates.
package matrix

import (
	"math"

	"cogentcore.org/core/math32"
)

// Matrix is a 4x4 transform. Points are column vectors, so M.Apply(p)
// computes M*p.
type Matrix math32.Matrix4

// Point is a homogeneous point (X, Y, Z, 1).
type Point struct {
	X, Y, Z float64
}

func (m Matrix) m4() *math32.Matrix4 {
	mm := math32.Matrix4(m)
	return &mm
}

func build(set func(m *math32.Matrix4)) Matrix {
	var m math32.Matrix4
	set(&m)
	return Matrix(m)
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix(*math32.Identity4())
}

// Translate creates a translation matrix.
func Translate(x, y, z float64) Matrix {
	return build(func(m *math32.Matrix4) { m.SetTranslation(float32(x), float32(y), float32(z)) })
}

// Scale creates a scaling matrix.
func Scale(x, y, z float64) Matrix {
	return build(func(m *math32.Matrix4) { m.SetScale(float32(x), float32(y), float32(z)) })
}

// RotateX creates a rotation about the x axis (angle in radians).
func RotateX(theta float64) Matrix {
	return build(func(m *math32.Matrix4) { m.SetRotationX(float32(theta)) })
}

// RotateY creates a rotation about the y axis (angle in radians).
func RotateY(theta float64) Matrix {
	return build(func(m *math32.Matrix4) { m.SetRotationY(float32(theta)) })
}

// RotateZ creates a rotation about the z axis (angle in radians).
func RotateZ(theta float64) Matrix {
	return build(func(m *math32.Matrix4) { m.SetRotationZ(float32(theta)) })
}

// Multiply returns m * other. Applying the result is the same as applying
// other first and m second.
func (m Matrix) Multiply(other Matrix) Matrix {
	var out math32.Matrix4
	out.MulMatrices(m.m4(), other.m4())
	return Matrix(out)
}

// Apply transforms p by m.
func (m Matrix) Apply(p Point) Point {
	return m.apply(m.m4(), p)
}

// ApplyAll transforms every point of pts in place.
func (m Matrix) ApplyAll(pts []Point) {
	mm := m.m4()
	for i, p := range pts {
		pts[i] = m.apply(mm, p)
	}
}

func (Matrix) apply(mm *math32.Matrix4, p Point) Point {
	v := math32.Vec4(float32(p.X), float32(p.Y), float32(p.Z), 1).MulMatrix4(mm)
	return Point{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
