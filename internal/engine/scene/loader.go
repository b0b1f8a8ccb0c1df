package scene

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/softrender/internal/assets"
	"github.com/Faultbox/softrender/internal/engine/camera"
	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/internal/engine/renderer"
	"github.com/Faultbox/softrender/internal/engine/texture"
	"github.com/Faultbox/softrender/internal/logger"
	"github.com/Faultbox/softrender/pkg/math"
)

// sceneFile mirrors the YAML scene description.
type sceneFile struct {
	Camera       *cameraNode  `yaml:"camera"`
	AmbientLight []float32    `yaml:"ambient_light"`
	Background   []float32    `yaml:"background"`
	Lights       []lightNode  `yaml:"lights"`
	Objects      []objectNode `yaml:"objects"`
}

type cameraNode struct {
	Position []float32 `yaml:"position"`
	Yaw      float32   `yaml:"yaw"`
	Pitch    float32   `yaml:"pitch"`
	Fov      float32   `yaml:"fov"`
	Aspect   float32   `yaml:"aspect"`
	Width    float32   `yaml:"width"`
	Height   float32   `yaml:"height"`
	Near     float32   `yaml:"near"`
	Far      float32   `yaml:"far"`
}

type lightNode struct {
	Type      string    `yaml:"type"`
	Color     []float32 `yaml:"color"`
	Intensity float32   `yaml:"intensity"`
	Direction []float32 `yaml:"direction"`
	Position  []float32 `yaml:"position"`
}

type objectNode struct {
	Name      string        `yaml:"name"`
	Model     string        `yaml:"model"`
	Material  materialNode  `yaml:"material"`
	Transform transformNode `yaml:"transform"`
}

type materialNode struct {
	Shader          string    `yaml:"shader"`
	DiffuseTexture  string    `yaml:"diffuse_texture"`
	NormalTexture   string    `yaml:"normal_texture"`
	AoTexture       string    `yaml:"ao_texture"`
	SpecularTexture string    `yaml:"specular_texture"`
	GlossTexture    string    `yaml:"gloss_texture"`
	AmbientColor    []float32 `yaml:"ambient_color"`
	DiffuseColor    []float32 `yaml:"diffuse_color"`
	SpecularColor   []float32 `yaml:"specular_color"`
	Shininess       int       `yaml:"shininess"`
}

type transformNode struct {
	Position  []float32      `yaml:"position"`
	Rotation  []float32      `yaml:"rotation"` // ZYX Euler, degrees
	Scale     []float32      `yaml:"scale"`
	Animation *animationNode `yaml:"animation"`
}

type animationNode struct {
	Type  string  `yaml:"type"`
	Speed float32 `yaml:"speed"`
}

// LoadFile parses a YAML scene description and resolves its resources
// through the cache. Objects whose model fails to load are skipped with
// an error log; a malformed file is an error and the caller should fall
// back to Default.
func LoadFile(path string, cache *assets.Cache, aspect float32) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene %s: %w", path, err)
	}
	return Load(data, cache, aspect)
}

// Load parses a YAML scene description from memory.
func Load(data []byte, cache *assets.Cache, aspect float32) (*Scene, error) {
	var file sceneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}

	s := New(aspect)

	if file.Camera != nil {
		s.Camera = loadCamera(file.Camera, aspect)
	}
	if len(file.AmbientLight) == 3 {
		s.AmbientLight = vec3(file.AmbientLight)
	}
	if len(file.Background) == 3 {
		s.Background = vec3(file.Background)
	}

	for i := range file.Lights {
		light, ok := loadLight(&file.Lights[i])
		if !ok {
			logger.Warn("unknown light type skipped", zap.String("type", file.Lights[i].Type))
			continue
		}
		s.Lights = append(s.Lights, light)
	}

	for i := range file.Objects {
		obj, err := loadObject(&file.Objects[i], cache)
		if err != nil {
			logger.Error("object skipped", zap.String("model", file.Objects[i].Model), zap.Error(err))
			continue
		}
		s.Objects = append(s.Objects, obj)
	}

	return s, nil
}

func loadCamera(node *cameraNode, fallbackAspect float32) *camera.Camera {
	cam := camera.New(vec3(node.Position), node.Yaw, node.Pitch)

	aspect := node.Aspect
	if aspect == 0 && node.Width > 0 && node.Height > 0 {
		aspect = node.Width / node.Height
	}
	if aspect == 0 {
		aspect = fallbackAspect
	}

	fov := node.Fov
	if fov == 0 {
		fov = 45
	}
	near := node.Near
	if near == 0 {
		near = 0.1
	}
	far := node.Far
	if far == 0 {
		far = 100
	}
	cam.SetPerspective(fov, aspect, near, far)
	return cam
}

func loadLight(node *lightNode) (lighting.Light, bool) {
	color := math.Vec3{X: 1, Y: 1, Z: 1}
	if len(node.Color) == 3 {
		color = vec3(node.Color)
	}
	intensity := node.Intensity
	if intensity == 0 {
		intensity = 1
	}

	switch node.Type {
	case "directional":
		return lighting.NewDirectional(vec3(node.Direction), color, intensity), true
	case "point":
		return lighting.NewPoint(vec3(node.Position), color, intensity), true
	default:
		return lighting.Light{}, false
	}
}

func loadObject(node *objectNode, cache *assets.Cache) (*Object, error) {
	mesh, err := cache.Mesh(node.Model)
	if err != nil {
		return nil, err
	}

	mat, err := loadMaterial(&node.Material, cache)
	if err != nil {
		return nil, err
	}

	obj := &Object{
		Name:      node.Name,
		Mesh:      mesh,
		Material:  mat,
		Transform: math.NewTransform(),
	}

	t := &node.Transform
	if len(t.Position) == 3 {
		obj.Transform.Position = vec3(t.Position)
	}
	if len(t.Rotation) == 3 {
		obj.Transform.SetRotationEulerZYX(vec3(t.Rotation))
	}
	if len(t.Scale) == 3 {
		obj.Transform.Scale = vec3(t.Scale)
	}
	if t.Animation != nil && t.Animation.Type == "rotate_y" {
		obj.Animation = Animation{Type: AnimationRotateY, Speed: t.Animation.Speed}
	}

	return obj, nil
}

// loadMaterial resolves the five optional texture maps. A texture that
// fails to load only disables its map; the object still renders.
func loadMaterial(node *materialNode, cache *assets.Cache) (*renderer.Material, error) {
	sh, err := cache.Shader(node.Shader)
	if err != nil {
		return nil, err
	}

	mat := &renderer.Material{
		AmbientColor:  math.Vec3{X: 1, Y: 1, Z: 1},
		DiffuseColor:  math.Vec3{X: 1, Y: 1, Z: 1},
		SpecularColor: math.Vec3{X: 1, Y: 1, Z: 1},
		Shininess:     32,
		Shader:        sh,
	}
	if len(node.AmbientColor) == 3 {
		mat.AmbientColor = vec3(node.AmbientColor)
	}
	if len(node.DiffuseColor) == 3 {
		mat.DiffuseColor = vec3(node.DiffuseColor)
	}
	if len(node.SpecularColor) == 3 {
		mat.SpecularColor = vec3(node.SpecularColor)
	}
	if node.Shininess > 0 {
		mat.Shininess = node.Shininess
	}

	mat.DiffuseTexture = loadTexture(cache, node.DiffuseTexture)
	mat.NormalTexture = loadTexture(cache, node.NormalTexture)
	mat.AoTexture = loadTexture(cache, node.AoTexture)
	mat.SpecularTexture = loadTexture(cache, node.SpecularTexture)
	mat.GlossTexture = loadTexture(cache, node.GlossTexture)

	return mat, nil
}

func loadTexture(cache *assets.Cache, path string) *texture.Texture {
	if path == "" {
		return nil
	}
	t, err := cache.Texture(path)
	if err != nil {
		logger.Error("texture skipped", zap.String("path", path), zap.Error(err))
		return nil
	}
	return t
}

func vec3(v []float32) math.Vec3 {
	if len(v) != 3 {
		return math.Vec3{}
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
