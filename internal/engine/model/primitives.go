package model

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/softrender/pkg/math"
)

// NewQuad builds a unit quad in the XY plane at the given z, facing +Z,
// spanning [-0.5, 0.5] with UVs over [0, 1]. Winding is counter-clockwise
// seen from +Z.
func NewQuad(z float32) *Mesh {
	m := &Mesh{
		Positions: []math.Vec3{
			{X: -0.5, Y: -0.5, Z: z},
			{X: 0.5, Y: -0.5, Z: z},
			{X: 0.5, Y: 0.5, Z: z},
			{X: -0.5, Y: 0.5, Z: z},
		},
		Normals: []math.Vec3{{Z: 1}},
		UVs: []math.Vec2{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
		},
		Faces: []Face{
			{V: [3]int{0, 1, 2}, UV: [3]int{0, 1, 2}, N: [3]int{0, 0, 0}},
			{V: [3]int{0, 2, 3}, UV: [3]int{0, 2, 3}, N: [3]int{0, 0, 0}},
		},
	}
	m.ComputeTangents()
	return m
}

// NewSphere builds a unit UV sphere with the given number of longitude
// segments and latitude rings. Normals equal positions; winding is
// counter-clockwise seen from outside.
func NewSphere(segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	m := &Mesh{}
	for ring := 0; ring <= rings; ring++ {
		phi := math32.Pi * float32(ring) / float32(rings) // 0 at north pole
		for seg := 0; seg <= segments; seg++ {
			theta := 2 * math32.Pi * float32(seg) / float32(segments)
			p := math.Vec3{
				X: math32.Sin(phi) * math32.Cos(theta),
				Y: math32.Cos(phi),
				Z: math32.Sin(phi) * math32.Sin(theta),
			}
			m.Positions = append(m.Positions, p)
			m.Normals = append(m.Normals, p)
			m.UVs = append(m.UVs, math.Vec2{
				X: float32(seg) / float32(segments),
				Y: 1 - float32(ring)/float32(rings),
			})
		}
	}

	stride := segments + 1
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			i0 := ring*stride + seg
			i1 := i0 + 1
			i2 := i0 + stride
			i3 := i2 + 1
			m.Faces = append(m.Faces,
				Face{V: [3]int{i0, i1, i2}, UV: [3]int{i0, i1, i2}, N: [3]int{i0, i1, i2}},
				Face{V: [3]int{i1, i3, i2}, UV: [3]int{i1, i3, i2}, N: [3]int{i1, i3, i2}},
			)
		}
	}

	m.ComputeTangents()
	return m
}
