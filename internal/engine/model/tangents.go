package model

import "github.com/Faultbox/softrender/pkg/math"

// ComputeTangents synthesizes per-vertex tangents and bitangents from
// positions, UVs, and normals. Contributions of every face are accumulated
// over shared position indices, then each frame is Gram-Schmidt
// orthogonalized against the vertex normal. The tangent is flipped when
// cross(N,T)·B is negative so the final basis is right-handed; vertices
// with degenerate UVs fall back to an arbitrary tangent orthogonal to N.
func (m *Mesh) ComputeTangents() {
	accT := make([]math.Vec3, len(m.Positions))
	accB := make([]math.Vec3, len(m.Positions))

	for _, f := range m.Faces {
		p0 := m.Position(f, 0)
		p1 := m.Position(f, 1)
		p2 := m.Position(f, 2)

		uv0 := m.UV(f, 0)
		uv1 := m.UV(f, 1)
		uv2 := m.UV(f, 2)

		e1 := p1.Sub(p0)
		e2 := p2.Sub(p0)
		du1 := uv1.X - uv0.X
		dv1 := uv1.Y - uv0.Y
		du2 := uv2.X - uv0.X
		dv2 := uv2.Y - uv0.Y

		denom := du1*dv2 - du2*dv1
		if denom == 0 {
			continue // degenerate UV triangle contributes nothing
		}
		r := 1 / denom

		t := e1.Scale(dv2 * r).Sub(e2.Scale(dv1 * r))
		b := e2.Scale(du1 * r).Sub(e1.Scale(du2 * r))

		for j := 0; j < 3; j++ {
			accT[f.V[j]] = accT[f.V[j]].Add(t)
			accB[f.V[j]] = accB[f.V[j]].Add(b)
		}
	}

	// Per-vertex normals for orthogonalization, indexed by position.
	normals := make([]math.Vec3, len(m.Positions))
	for _, f := range m.Faces {
		for j := 0; j < 3; j++ {
			n := m.Normal(f, j)
			if n.LengthSq() > 0 {
				normals[f.V[j]] = n
			}
		}
	}

	m.Tangents = make([]math.Vec3, len(m.Positions))
	m.Bitangents = make([]math.Vec3, len(m.Positions))

	for i := range m.Positions {
		n := normals[i]
		if n.LengthSq() < 1e-12 {
			n = math.Vec3{Z: 1}
		}

		// T = normalize(T - N*(N·T))
		t := accT[i].Sub(n.Scale(n.Dot(accT[i])))
		if t.LengthSq() < 1e-8 {
			t = fallbackTangent(n)
		}
		t = t.Normalize()

		if n.Cross(t).Dot(accB[i]) < 0 {
			t = t.Negate()
		}

		m.Tangents[i] = t
		m.Bitangents[i] = n.Cross(t)
	}
}

// fallbackTangent picks an arbitrary direction orthogonal to n, preferring
// the world axis least aligned with it.
func fallbackTangent(n math.Vec3) math.Vec3 {
	axis := math.Vec3{X: 1}
	if absf(n.X) > 0.9 {
		axis = math.Vec3{Y: 1}
	}
	return axis.Sub(n.Scale(n.Dot(axis)))
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
