package model

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/softrender/pkg/math"
)

// LoadGLTF parses a glTF or GLB file into a mesh. All triangle primitives
// of every mesh in the document are merged; smooth normals are synthesized
// for the whole mesh only when no primitive carries normals (a primitive
// without them in a document where others have them keeps zero normals),
// and tangents are computed after load.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %q: %w", path, err)
	}

	mesh := &Mesh{Path: path}
	hasNormals := false

	for _, gm := range doc.Meshes {
		for _, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}

			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("gltf %q: reading positions: %w", path, err)
			}

			var normals [][3]float32
			if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
				normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
				if err != nil {
					return nil, fmt.Errorf("gltf %q: reading normals: %w", path, err)
				}
				hasNormals = true
			}

			var uvs [][2]float32
			if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
				uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
				if err != nil {
					return nil, fmt.Errorf("gltf %q: reading uvs: %w", path, err)
				}
			}

			base := len(mesh.Positions)
			uvBase := len(mesh.UVs)
			nBase := len(mesh.Normals)
			for i, p := range positions {
				mesh.Positions = append(mesh.Positions, math.Vec3{X: p[0], Y: p[1], Z: p[2]})
				if i < len(normals) {
					n := normals[i]
					mesh.Normals = append(mesh.Normals, math.Vec3{X: n[0], Y: n[1], Z: n[2]})
				}
				if i < len(uvs) {
					// glTF V runs top-down; the sampler expects bottom-up.
					mesh.UVs = append(mesh.UVs, math.Vec2{X: uvs[i][0], Y: 1 - uvs[i][1]})
				}
			}

			appendFace := func(i0, i1, i2 int) {
				face := Face{
					V:  [3]int{base + i0, base + i1, base + i2},
					UV: [3]int{-1, -1, -1},
					N:  [3]int{-1, -1, -1},
				}
				if len(uvs) > 0 {
					face.UV = [3]int{uvBase + i0, uvBase + i1, uvBase + i2}
				}
				if len(normals) > 0 {
					face.N = [3]int{nBase + i0, nBase + i1, nBase + i2}
				}
				mesh.Faces = append(mesh.Faces, face)
			}

			if prim.Indices != nil {
				indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("gltf %q: reading indices: %w", path, err)
				}
				for i := 0; i+2 < len(indices); i += 3 {
					appendFace(int(indices[i]), int(indices[i+1]), int(indices[i+2]))
				}
			} else {
				for i := 0; i+2 < len(positions); i += 3 {
					appendFace(i, i+1, i+2)
				}
			}
		}
	}

	if !hasNormals {
		mesh.generateNormals()
	}
	mesh.ComputeTangents()

	return mesh, nil
}
