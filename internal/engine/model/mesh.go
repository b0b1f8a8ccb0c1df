// Package model provides triangle meshes for the rasterizer: indexed
// vertex data, Wavefront OBJ and glTF loading, and tangent-space synthesis
// for normal mapping.
package model

import "github.com/Faultbox/softrender/pkg/math"

// Face references three vertices by separate position, UV, and normal
// indices, the way OBJ files index them. An index of -1 means the
// attribute was absent in the source file.
type Face struct {
	V  [3]int
	UV [3]int
	N  [3]int
}

// Mesh holds indexed triangle geometry. Tangents and bitangents are
// indexed by position index and synthesized after load.
type Mesh struct {
	Path string

	Positions  []math.Vec3
	Normals    []math.Vec3
	UVs        []math.Vec2
	Tangents   []math.Vec3
	Bitangents []math.Vec3
	Faces      []Face
}

// NumFaces returns the triangle count.
func (m *Mesh) NumFaces() int {
	return len(m.Faces)
}

// Position returns the position of corner j of face f.
func (m *Mesh) Position(f Face, j int) math.Vec3 {
	return m.Positions[f.V[j]]
}

// Normal returns the normal of corner j of face f, or zero when absent.
func (m *Mesh) Normal(f Face, j int) math.Vec3 {
	if f.N[j] < 0 || f.N[j] >= len(m.Normals) {
		return math.Vec3{}
	}
	return m.Normals[f.N[j]]
}

// UV returns the texture coordinate of corner j of face f, or zero when
// absent.
func (m *Mesh) UV(f Face, j int) math.Vec2 {
	if f.UV[j] < 0 || f.UV[j] >= len(m.UVs) {
		return math.Vec2{}
	}
	return m.UVs[f.UV[j]]
}

// Tangent returns the tangent of corner j of face f. Tangents are indexed
// by position, matching how they are accumulated across shared vertices.
func (m *Mesh) Tangent(f Face, j int) math.Vec3 {
	if len(m.Tangents) == 0 {
		return math.Vec3{}
	}
	return m.Tangents[f.V[j]]
}

// Bitangent returns the bitangent of corner j of face f.
func (m *Mesh) Bitangent(f Face, j int) math.Vec3 {
	if len(m.Bitangents) == 0 {
		return math.Vec3{}
	}
	return m.Bitangents[f.V[j]]
}

// generateNormals builds smooth per-vertex normals by accumulating face
// normals over shared positions. Used when the source file carries none.
func (m *Mesh) generateNormals() {
	m.Normals = make([]math.Vec3, len(m.Positions))
	for fi := range m.Faces {
		f := &m.Faces[fi]
		p0 := m.Positions[f.V[0]]
		p1 := m.Positions[f.V[1]]
		p2 := m.Positions[f.V[2]]
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		for j := 0; j < 3; j++ {
			m.Normals[f.V[j]] = m.Normals[f.V[j]].Add(n)
			f.N[j] = f.V[j]
		}
	}
	for i := range m.Normals {
		if m.Normals[i].LengthSq() > 0 {
			m.Normals[i] = m.Normals[i].Normalize()
		}
	}
}
