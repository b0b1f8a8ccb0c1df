package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/softrender/pkg/math"
)

func TestComputeTangentsQuad(t *testing.T) {
	// Standard UV layout: U grows with +X, V with +Y, normal +Z.
	m := NewQuad(0)

	for i := range m.Positions {
		assertVec3Near(t, math.Vec3{X: 1}, m.Tangents[i], 1e-5)
		assertVec3Near(t, math.Vec3{Y: 1}, m.Bitangents[i], 1e-5)
	}
}

func TestComputeTangentsOrthonormal(t *testing.T) {
	m := NewSphere(12, 8)

	for i := range m.Positions {
		n := m.Normals[i]
		tan := m.Tangents[i]
		bit := m.Bitangents[i]

		assert.InDelta(t, 1.0, tan.Length(), 1e-4, "tangent %d not unit", i)
		assert.InDelta(t, 0.0, n.Dot(tan), 1e-4, "tangent %d not orthogonal to normal", i)
		assert.InDelta(t, 0.0, n.Dot(bit), 1e-4, "bitangent %d not orthogonal to normal", i)

		// Right-handed: cross(N, T) == B.
		assertVec3Near(t, n.Cross(tan), bit, 1e-4)
	}
}

func TestComputeTangentsMirroredUVsFlipTangent(t *testing.T) {
	// Same quad geometry but U mirrored: the accumulated tangent points -X
	// and after the handedness rule the basis stays right-handed.
	m := &Mesh{
		Positions: []math.Vec3{
			{X: -0.5, Y: -0.5}, {X: 0.5, Y: -0.5}, {X: 0.5, Y: 0.5}, {X: -0.5, Y: 0.5},
		},
		Normals: []math.Vec3{{Z: 1}},
		UVs: []math.Vec2{
			{X: 1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1},
		},
		Faces: []Face{
			{V: [3]int{0, 1, 2}, UV: [3]int{0, 1, 2}, N: [3]int{0, 0, 0}},
			{V: [3]int{0, 2, 3}, UV: [3]int{0, 2, 3}, N: [3]int{0, 0, 0}},
		},
	}
	m.ComputeTangents()

	for i := range m.Positions {
		n := m.Normals[0]
		assertVec3Near(t, n.Cross(m.Tangents[i]), m.Bitangents[i], 1e-5)
	}
}

func TestComputeTangentsDegenerateUVFallback(t *testing.T) {
	// All corners share one UV: no gradient exists, the fallback must
	// still produce a unit tangent orthogonal to the normal.
	m := &Mesh{
		Positions: []math.Vec3{{}, {X: 1}, {Y: 1}},
		Normals:   []math.Vec3{{Z: 1}},
		UVs:       []math.Vec2{{X: 0.5, Y: 0.5}},
		Faces: []Face{
			{V: [3]int{0, 1, 2}, UV: [3]int{0, 0, 0}, N: [3]int{0, 0, 0}},
		},
	}
	m.ComputeTangents()

	for i := range m.Positions {
		assert.InDelta(t, 1.0, m.Tangents[i].Length(), 1e-5)
		assert.InDelta(t, 0.0, m.Tangents[i].Dot(math.Vec3{Z: 1}), 1e-5)
	}
}

func TestNewSphereGeometry(t *testing.T) {
	m := NewSphere(16, 12)

	for i, p := range m.Positions {
		assert.InDelta(t, 1.0, p.Length(), 1e-4, "position %d not on unit sphere", i)
		assertVec3Near(t, p, m.Normals[i], 1e-6)
	}
	if m.NumFaces() != 16*12*2 {
		t.Errorf("faces = %d, want %d", m.NumFaces(), 16*12*2)
	}
}

func assertVec3Near(t *testing.T, want, got math.Vec3, tol float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol)
	assert.InDelta(t, want.Y, got.Y, tol)
	assert.InDelta(t, want.Z, got.Z, tol)
}
