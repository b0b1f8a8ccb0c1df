package model

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/softrender/pkg/math"
)

// LoadOBJ parses a Wavefront OBJ file into a mesh. Faces with more than
// three corners are fan-triangulated. Missing normals are synthesized as
// smooth vertex normals; tangents are computed after load.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	mesh := &Mesh{Path: path}
	hasNormals := false

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			mesh.Positions = append(mesh.Positions, v)

		case "vn":
			v, err := parseVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			mesh.Normals = append(mesh.Normals, v)
			hasNormals = true

		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("%s:%d: vt needs 2 components", path, lineNo)
			}
			u, err1 := strconv.ParseFloat(fields[1], 32)
			v, err2 := strconv.ParseFloat(fields[2], 32)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("%s:%d: bad vt", path, lineNo)
			}
			mesh.UVs = append(mesh.UVs, math.Vec2{X: float32(u), Y: float32(v)})

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%s:%d: face needs at least 3 corners", path, lineNo)
			}
			corners := make([][3]int, 0, len(fields)-1)
			for _, group := range fields[1:] {
				c, err := parseFaceCorner(group)
				if err != nil {
					return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
				}
				corners = append(corners, c)
			}
			// Fan triangulation around the first corner.
			for i := 1; i+1 < len(corners); i++ {
				mesh.Faces = append(mesh.Faces, Face{
					V:  [3]int{corners[0][0], corners[i][0], corners[i+1][0]},
					UV: [3]int{corners[0][1], corners[i][1], corners[i+1][1]},
					N:  [3]int{corners[0][2], corners[i][2], corners[i+1][2]},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading obj %q: %w", path, err)
	}

	if !hasNormals {
		mesh.generateNormals()
	}
	mesh.ComputeTangents()

	return mesh, nil
}

func parseVec3(fields []string) (math.Vec3, error) {
	if len(fields) < 4 {
		return math.Vec3{}, fmt.Errorf("%s needs 3 components", fields[0])
	}
	x, err1 := strconv.ParseFloat(fields[1], 32)
	y, err2 := strconv.ParseFloat(fields[2], 32)
	z, err3 := strconv.ParseFloat(fields[3], 32)
	if err1 != nil || err2 != nil || err3 != nil {
		return math.Vec3{}, fmt.Errorf("bad %s components", fields[0])
	}
	return math.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}, nil
}

// parseFaceCorner parses one "v", "v/vt", "v//vn", or "v/vt/vn" group into
// 0-based indices, -1 marking absent attributes.
func parseFaceCorner(group string) ([3]int, error) {
	out := [3]int{-1, -1, -1}
	parts := strings.Split(group, "/")
	if len(parts) > 3 {
		return out, fmt.Errorf("bad face corner %q", group)
	}
	for i, part := range parts {
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil || idx == 0 {
			return out, fmt.Errorf("bad face index %q", group)
		}
		// OBJ indices are 1-based.
		out[i] = idx - 1
	}
	if out[0] < 0 {
		return out, fmt.Errorf("face corner %q has no position index", group)
	}
	return out, nil
}
