// Package shape tessellates solids into triangle lists.
package shape

import (
	"math"

	"github.com/ivlev/mdl2anim/internal/matrix"
)

// Polygons is a triangle list: every three consecutive points form one
// triangle.
type Polygons []matrix.Point

// Triangles returns the number of triangles in p.
func (p Polygons) Triangles() int {
	return len(p) / 3
}

// Transform applies m to every vertex in place.
func (p Polygons) Transform(m matrix.Matrix) {
	m.ApplyAll(p)
}

func (p *Polygons) addTriangle(a, b, c matrix.Point) {
	*p = append(*p, a, b, c)
}

// Steps converts a tessellation step in (0, 1] into a number of
// subdivisions, with a floor of 3.
func Steps(step float64) int {
	if step <= 0 {
		return 3
	}
	n := int(math.Round(1 / step))
	if n < 3 {
		n = 3
	}
	return n
}

// AddBox appends a box with its front top left corner at (x, y, z),
// extending width along +x, height along -y and depth along -z.
func AddBox(p *Polygons, x, y, z, width, height, depth float64) {
	x1, y1, z1 := x+width, y-height, z-depth

	v := [8]matrix.Point{
		{X: x, Y: y, Z: z},
		{X: x1, Y: y, Z: z},
		{X: x1, Y: y1, Z: z},
		{X: x, Y: y1, Z: z},
		{X: x, Y: y, Z: z1},
		{X: x1, Y: y, Z: z1},
		{X: x1, Y: y1, Z: z1},
		{X: x, Y: y1, Z: z1},
	}

	faces := [6][4]int{
		{0, 3, 2, 1}, // front
		{5, 6, 7, 4}, // back
		{4, 7, 3, 0}, // left
		{1, 2, 6, 5}, // right
		{4, 0, 1, 5}, // top
		{3, 7, 6, 2}, // bottom
	}
	for _, f := range faces {
		p.addTriangle(v[f[0]], v[f[1]], v[f[2]])
		p.addTriangle(v[f[0]], v[f[2]], v[f[3]])
	}
}

// spherePoints returns steps semicircles of steps+1 points each, rotated
// about the x axis.
func spherePoints(cx, cy, cz, r float64, steps int) [][]matrix.Point {
	rings := make([][]matrix.Point, steps)
	for i := range rings {
		phi := 2 * math.Pi * float64(i) / float64(steps)
		sinPhi, cosPhi := math.Sincos(phi)
		ring := make([]matrix.Point, steps+1)
		for j := range ring {
			theta := math.Pi * float64(j) / float64(steps)
			sinTheta, cosTheta := math.Sincos(theta)
			ring[j] = matrix.Point{
				X: r*cosTheta + cx,
				Y: r*sinTheta*cosPhi + cy,
				Z: r*sinTheta*sinPhi + cz,
			}
		}
		rings[i] = ring
	}
	return rings
}

// AddSphere appends a sphere of radius r centred on (cx, cy, cz).
func AddSphere(p *Polygons, cx, cy, cz, r float64, step float64) {
	steps := Steps(step)
	rings := spherePoints(cx, cy, cz, r, steps)

	for i := 0; i < steps; i++ {
		cur, next := rings[i], rings[(i+1)%steps]
		for j := 0; j < steps; j++ {
			// The first and last points of every semicircle are the poles,
			// so the triangles touching them degenerate on one side.
			if j != steps-1 {
				p.addTriangle(cur[j], cur[j+1], next[j+1])
			}
			if j != 0 {
				p.addTriangle(cur[j], next[j+1], next[j])
			}
		}
	}
}

// AddTorus appends a torus centred on (cx, cy, cz) whose tube of radius r
// circles the y axis at distance ring.
func AddTorus(p *Polygons, cx, cy, cz, r, ring float64, step float64) {
	steps := Steps(step)

	pts := make([][]matrix.Point, steps)
	for i := range pts {
		phi := 2 * math.Pi * float64(i) / float64(steps)
		sinPhi, cosPhi := math.Sincos(phi)
		circle := make([]matrix.Point, steps)
		for j := range circle {
			theta := 2 * math.Pi * float64(j) / float64(steps)
			sinTheta, cosTheta := math.Sincos(theta)
			circle[j] = matrix.Point{
				X: cosPhi*(r*cosTheta+ring) + cx,
				Y: r*sinTheta + cy,
				Z: -sinPhi*(r*cosTheta+ring) + cz,
			}
		}
		pts[i] = circle
	}

	for i := 0; i < steps; i++ {
		cur, next := pts[i], pts[(i+1)%steps]
		for j := 0; j < steps; j++ {
			k := (j + 1) % steps
			p.addTriangle(cur[j], next[j], next[k])
			p.addTriangle(cur[j], next[k], cur[k])
		}
	}
}
