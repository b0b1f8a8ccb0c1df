// Package scene holds the renderable world: camera, lights, and objects
// with transforms and materials, plus the YAML scene description loader.
package scene

import (
	"github.com/Faultbox/softrender/internal/engine/camera"
	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/internal/engine/model"
	"github.com/Faultbox/softrender/internal/engine/renderer"
	"github.com/Faultbox/softrender/internal/logger"
	"github.com/Faultbox/softrender/pkg/math"

	"go.uber.org/zap"
)

// AnimationType selects a built-in per-object animation.
type AnimationType int

// Supported animations.
const (
	AnimationNone AnimationType = iota
	AnimationRotateY
)

// Animation spins an object around world Y at Speed degrees per second.
type Animation struct {
	Type  AnimationType
	Speed float32
}

// Object is one renderable entity: shared mesh and material plus an
// owned transform.
type Object struct {
	Name      string
	Mesh      *model.Mesh
	Material  *renderer.Material
	Transform math.Transform
	Animation Animation
}

// Scene is the renderable world. Update advances animations; Render
// walks the objects and submits one draw command each.
type Scene struct {
	Camera       *camera.Camera
	Lights       []lighting.Light
	AmbientLight math.Vec3
	Background   math.Vec3
	Objects      []*Object
}

// New creates an empty scene with a default camera, a neutral gray
// background, and a dim ambient term.
func New(aspect float32) *Scene {
	cam := camera.New(math.Vec3{}, 0, 0)
	cam.SetPerspective(45, aspect, 0.1, 100)
	return &Scene{
		Camera:       cam,
		AmbientLight: math.Vec3{X: 0.1, Y: 0.1, Z: 0.1},
		Background:   math.Vec3{X: 0.5, Y: 0.5, Z: 0.5},
	}
}

// Default builds the fallback scene used when the scene file cannot be
// loaded: a camera above the origin and a single directional light.
func Default(aspect float32) *Scene {
	s := New(aspect)
	s.Camera.Position = math.Vec3{Y: 1, Z: 3}
	s.Lights = []lighting.Light{
		lighting.NewDirectional(
			math.Vec3{X: 0.707, Z: -0.707},
			math.Vec3{X: 1, Y: 1, Z: 1},
			1,
		),
	}
	return s
}

// Update advances object animations by deltaTime seconds.
func (s *Scene) Update(deltaTime float32) {
	for _, obj := range s.Objects {
		if obj.Animation.Type != AnimationRotateY {
			continue
		}
		step := math.Radians(obj.Animation.Speed * deltaTime)
		obj.Transform.Rotate(math.QuatFromAxisAngle(math.Vec3{Y: 1}, step))
	}
}

// Render clears the target and submits every object as one draw command.
// Rejected commands are logged by the renderer and skipped; the rest of
// the scene still renders.
func (s *Scene) Render(r *renderer.Renderer) {
	r.SetCamera(s.Camera.ViewMatrix(), s.Camera.ProjectionMatrix(), s.Camera.Position)
	r.SetLights(s.Lights)
	r.SetAmbientLight(s.AmbientLight)
	r.Clear(s.Background)

	for _, obj := range s.Objects {
		err := r.Submit(renderer.DrawCommand{
			Mesh:     obj.Mesh,
			Material: obj.Material,
			World:    obj.Transform.Matrix(),
		})
		if err != nil {
			logger.Warn("object skipped", zap.String("object", obj.Name), zap.Error(err))
		}
	}
}
