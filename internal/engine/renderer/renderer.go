// Package renderer implements the software rasterization pipeline: vertex
// transformation, near-plane rejection, perspective divide, viewport
// mapping, backface culling, scanline fill with perspective-correct
// attribute interpolation, and parallel face dispatch over a worker pool.
package renderer

import (
	"errors"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/softrender/internal/engine/framebuffer"
	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/internal/engine/model"
	"github.com/Faultbox/softrender/internal/engine/shader"
	"github.com/Faultbox/softrender/internal/engine/texture"
	"github.com/Faultbox/softrender/internal/engine/worker"
	"github.com/Faultbox/softrender/internal/logger"
	"github.com/Faultbox/softrender/pkg/math"
)

// Draw commands missing their mesh, material, or shader are rejected and
// logged; rendering continues with the remaining commands.
var (
	ErrNoMesh     = errors.New("draw command has no mesh")
	ErrNoMaterial = errors.New("draw command has no material")
	ErrNoShader   = errors.New("material has no shader")
)

// minFacesPerBatch keeps batches coarse enough that queue overhead does
// not dominate small meshes.
const minFacesPerBatch = 10

// Material groups the surface parameters of a draw command. Texture
// pointers are optional; nil or empty textures disable the corresponding
// map in the shader.
type Material struct {
	AmbientColor  math.Vec3
	DiffuseColor  math.Vec3
	SpecularColor math.Vec3
	Shininess     int

	DiffuseTexture  *texture.Texture
	NormalTexture   *texture.Texture
	AoTexture       *texture.Texture
	SpecularTexture *texture.Texture
	GlossTexture    *texture.Texture

	Shader shader.Shader
}

// DrawCommand is one object to render: a mesh, its material, and its
// world matrix. Commands are transient and live for one frame.
type DrawCommand struct {
	Mesh     *model.Mesh
	Material *Material
	World    math.Mat4
}

// Renderer rasterizes draw commands into a framebuffer, fanning face
// batches out across the worker pool. Per-frame state (view, projection,
// camera position, lights) is set by the caller before submitting.
type Renderer struct {
	fb   *framebuffer.Framebuffer
	pool *worker.Pool

	view         math.Mat4
	projection   math.Mat4
	cameraPos    math.Vec3
	lights       []lighting.Light
	ambientLight math.Vec3
}

// New creates a renderer targeting fb and dispatching over pool.
func New(fb *framebuffer.Framebuffer, pool *worker.Pool) *Renderer {
	return &Renderer{
		fb:         fb,
		pool:       pool,
		view:       math.Identity(),
		projection: math.Identity(),
	}
}

// SetCamera sets the view and projection matrices and the camera world
// position used for specular shading.
func (r *Renderer) SetCamera(view, projection math.Mat4, position math.Vec3) {
	r.view = view
	r.projection = projection
	r.cameraPos = position
}

// SetLights sets the light array shared by every draw command this frame.
func (r *Renderer) SetLights(lights []lighting.Light) {
	r.lights = lights
}

// SetAmbientLight sets the global ambient term.
func (r *Renderer) SetAmbientLight(color math.Vec3) {
	r.ambientLight = color
}

// Framebuffer returns the render target.
func (r *Renderer) Framebuffer() *framebuffer.Framebuffer {
	return r.fb
}

// Clear fills the color buffer with bg and resets depth to the far plane.
func (r *Renderer) Clear(bg math.Vec3) {
	r.fb.Clear(bg)
	r.fb.ClearDepth()
}

// Submit renders one draw command. It configures the material's shader
// uniforms, enqueues face batches to the pool, and blocks until every face
// of this command has been rasterized. Submissions are serialized by the
// caller; uniforms are not touched while workers run.
func (r *Renderer) Submit(cmd DrawCommand) error {
	if cmd.Mesh == nil {
		logger.Error("draw command rejected: nil mesh")
		return ErrNoMesh
	}
	if cmd.Material == nil {
		logger.Error("draw command rejected: nil material", zap.String("mesh", cmd.Mesh.Path))
		return ErrNoMaterial
	}
	sh := cmd.Material.Shader
	if sh == nil {
		logger.Error("draw command rejected: material has no shader", zap.String("mesh", cmd.Mesh.Path))
		return ErrNoShader
	}

	r.configureUniforms(sh.Uniforms(), &cmd)

	numFaces := cmd.Mesh.NumFaces()
	if numFaces == 0 {
		return nil
	}

	batches := r.pool.Workers()
	if limit := numFaces / minFacesPerBatch; batches > limit {
		batches = limit
	}
	if batches < 1 {
		batches = 1
	}
	perBatch := (numFaces + batches - 1) / batches

	for b := 0; b < batches; b++ {
		start := b * perBatch
		end := start + perBatch
		if end > numFaces {
			end = numFaces
		}
		if start >= end {
			break
		}
		if err := r.pool.Enqueue(func() {
			for i := start; i < end; i++ {
				r.processFace(cmd.Mesh, sh, i)
			}
		}); err != nil {
			return err
		}
	}

	return r.pool.Wait()
}

// configureUniforms fills the shader's uniform block from the command and
// the per-frame state. The normal matrix is the inverse-transpose of the
// 3x3 block of the world matrix; a singular matrix degrades to identity
// with a warning.
func (r *Renderer) configureUniforms(u *shader.Uniforms, cmd *DrawCommand) {
	mat := cmd.Material

	u.Model = cmd.World
	u.View = r.view
	u.Projection = r.projection
	u.MVP = r.projection.Mul(r.view).Mul(cmd.World)

	normal, ok := cmd.World.Mat3().Inverse()
	if !ok {
		logger.Warn("singular world matrix, normal matrix degraded to identity",
			zap.String("mesh", cmd.Mesh.Path))
		normal = math.Mat3Identity()
	}
	u.Normal = normal.Transpose()

	u.CameraPosition = r.cameraPos
	u.Lights = r.lights
	u.AmbientLight = r.ambientLight

	u.AmbientColor = mat.AmbientColor
	u.DiffuseColor = mat.DiffuseColor
	u.SpecularColor = mat.SpecularColor
	u.Shininess = mat.Shininess

	u.DiffuseTexture = mat.DiffuseTexture
	u.NormalTexture = mat.NormalTexture
	u.AoTexture = mat.AoTexture
	u.SpecularTexture = mat.SpecularTexture
	u.GlossTexture = mat.GlossTexture

	u.UseDiffuseMap = usable(mat.DiffuseTexture)
	u.UseNormalMap = usable(mat.NormalTexture)
	u.UseAoMap = usable(mat.AoTexture)
	u.UseSpecularMap = usable(mat.SpecularTexture)
	u.UseGlossMap = usable(mat.GlossTexture)
}

func usable(t *texture.Texture) bool {
	return t != nil && !t.Empty()
}

// screenVertex is one projected triangle corner: integer viewport
// coordinates, depth mapped to [0,1], 1/clipW for perspective-correct
// interpolation, and the vertex-stage outputs.
type screenVertex struct {
	x, y     int
	z        float32
	invW     float32
	varyings shader.Varyings
}

// processFace runs one triangle through the pipeline: vertex stage,
// near-plane rejection, perspective divide, viewport mapping, backface
// cull, and scanline rasterization.
func (r *Renderer) processFace(mesh *model.Mesh, sh shader.Shader, faceIdx int) {
	face := mesh.Faces[faceIdx]

	var sv [3]screenVertex
	visible := false

	for j := 0; j < 3; j++ {
		in := shader.VertexInput{
			Position:  mesh.Position(face, j),
			Normal:    mesh.Normal(face, j),
			Tangent:   mesh.Tangent(face, j),
			Bitangent: mesh.Bitangent(face, j),
			UV:        mesh.UV(face, j),
		}
		sv[j].varyings = sh.Vertex(in)

		clip := sv[j].varyings.ClipPosition
		if clip.W > 0 && clip.Z >= 0 {
			visible = true
		}
	}
	if !visible {
		return
	}

	width := r.fb.Width()
	height := r.fb.Height()
	for j := 0; j < 3; j++ {
		clip := sv[j].varyings.ClipPosition
		if clip.W <= 0 {
			continue
		}
		invW := 1 / clip.W
		ndcX := clip.X * invW
		ndcY := clip.Y * invW
		ndcZ := clip.Z * invW

		sv[j].x = int((ndcX + 1) * 0.5 * float32(width))
		sv[j].y = int((ndcY + 1) * 0.5 * float32(height))
		sv[j].z = (ndcZ + 1) * 0.5
		sv[j].invW = invW
	}

	// Counter-clockwise front faces under this viewport mapping.
	signedArea := float32((sv[1].x-sv[0].x)*(sv[2].y-sv[0].y) - (sv[2].x-sv[0].x)*(sv[1].y-sv[0].y))
	if signedArea < 0 {
		return
	}

	grad := newUVGradients(&sv)
	r.drawTriangle(sv[0], sv[1], sv[2], sh, grad)
}

// uvGradients holds the screen-space affine gradients of (u/w, v/w, 1/w)
// over the triangle. UV itself is not affine in screen space; the
// quotient rule recovers its per-pixel derivatives from these.
type uvGradients struct {
	valid            bool
	duwdx, duwdy     float32
	dvwdx, dvwdy     float32
	dinvwdx, dinvwdy float32
}

func newUVGradients(sv *[3]screenVertex) uvGradients {
	x0, y0 := float32(sv[0].x), float32(sv[0].y)
	x1, y1 := float32(sv[1].x), float32(sv[1].y)
	x2, y2 := float32(sv[2].x), float32(sv[2].y)

	area := (x1-x0)*(y2-y0) - (x2-x0)*(y1-y0)
	if math32.Abs(area) < 1e-6 {
		return uvGradients{}
	}
	inv := 1 / area

	gradient := func(f0, f1, f2 float32) (dx, dy float32) {
		dx = ((f1-f0)*(y2-y0) - (f2-f0)*(y1-y0)) * inv
		dy = ((f2-f0)*(x1-x0) - (f1-f0)*(x2-x0)) * inv
		return
	}

	uw0 := sv[0].varyings.UV.X * sv[0].invW
	uw1 := sv[1].varyings.UV.X * sv[1].invW
	uw2 := sv[2].varyings.UV.X * sv[2].invW
	vw0 := sv[0].varyings.UV.Y * sv[0].invW
	vw1 := sv[1].varyings.UV.Y * sv[1].invW
	vw2 := sv[2].varyings.UV.Y * sv[2].invW

	g := uvGradients{valid: true}
	g.duwdx, g.duwdy = gradient(uw0, uw1, uw2)
	g.dvwdx, g.dvwdy = gradient(vw0, vw1, vw2)
	g.dinvwdx, g.dinvwdy = gradient(sv[0].invW, sv[1].invW, sv[2].invW)
	return g
}

// derivatives returns the screen-space UV derivatives at a pixel with the
// given perspective-correct uv and interpolated 1/w, via the quotient
// rule on the triangle's affine gradients.
func (g *uvGradients) derivatives(uv math.Vec2, invW float32) (ddx, ddy math.Vec2) {
	if !g.valid || math32.Abs(invW) < 1e-6 {
		return math.Vec2{}, math.Vec2{}
	}
	w := 1 / invW
	ddx = math.Vec2{
		X: (g.duwdx - uv.X*g.dinvwdx) * w,
		Y: (g.dvwdx - uv.Y*g.dinvwdx) * w,
	}
	ddy = math.Vec2{
		X: (g.duwdy - uv.X*g.dinvwdy) * w,
		Y: (g.dvwdy - uv.Y*g.dinvwdy) * w,
	}
	return ddx, ddy
}

// drawTriangle splits the triangle at its middle vertex into a
// flat-bottom and a flat-top half and scanline-fills each.
func (r *Renderer) drawTriangle(v0, v1, v2 screenVertex, sh shader.Shader, grad uvGradients) {
	if v0.y > v1.y {
		v0, v1 = v1, v0
	}
	if v0.y > v2.y {
		v0, v2 = v2, v0
	}
	if v1.y > v2.y {
		v1, v2 = v2, v1
	}

	// Degenerate: zero height or a vertical line.
	if v0.y == v2.y || (v0.x == v1.x && v1.x == v2.x) {
		return
	}

	if v0.y < v1.y {
		r.drawScanlines(v0.y, v1.y, v0, v2, v0, v1, sh, grad)
	}
	if v1.y < v2.y {
		r.drawScanlines(v1.y, v2.y, v1, v2, v0, v2, sh, grad)
	}
}

// drawScanlines fills the rows [yStart, yEnd] between edge A
// (startA->endA) and edge B (startB->endB).
func (r *Renderer) drawScanlines(yStart, yEnd int, startA, endA, startB, endB screenVertex, sh shader.Shader, grad uvGradients) {
	dyA := float32(endA.y - startA.y)
	dyB := float32(endB.y - startB.y)

	if yStart < 0 {
		yStart = 0
	}
	if yEnd > r.fb.Height()-1 {
		yEnd = r.fb.Height() - 1
	}

	for y := yStart; y <= yEnd; y++ {
		var tA, tB float32
		if math32.Abs(dyA) > 1e-6 {
			tA = math.Clamp01(float32(y-startA.y) / dyA)
		}
		if math32.Abs(dyB) > 1e-6 {
			tB = math.Clamp01(float32(y-startB.y) / dyB)
		}

		xa := float32(startA.x) + float32(endA.x-startA.x)*tA
		xb := float32(startB.x) + float32(endB.x-startB.x)*tB
		za := startA.z + (endA.z-startA.z)*tA
		zb := startB.z + (endB.z-startB.z)*tB
		invWa := startA.invW + (endA.invW-startA.invW)*tA
		invWb := startB.invW + (endB.invW-startB.invW)*tB

		varyA := interpolateVaryings(tA, &startA.varyings, &endA.varyings, startA.invW, endA.invW)
		varyB := interpolateVaryings(tB, &startB.varyings, &endB.varyings, startB.invW, endB.invW)

		if xa > xb {
			xa, xb = xb, xa
			za, zb = zb, za
			invWa, invWb = invWb, invWa
			varyA, varyB = varyB, varyA
		}

		xStart := int(math32.Ceil(xa))
		if xStart < 0 {
			xStart = 0
		}
		xEnd := int(math32.Floor(xb))
		if xEnd > r.fb.Width()-1 {
			xEnd = r.fb.Width() - 1
		}

		dx := xb - xa

		for x := xStart; x <= xEnd; x++ {
			var tH float32
			if math32.Abs(dx) > 1e-6 {
				tH = math.Clamp01((float32(x) - xa) / dx)
			}

			depth := za + (zb-za)*tH
			if depth >= r.fb.DepthAt(x, y) {
				continue
			}

			invW := invWa + (invWb-invWa)*tH
			vary := interpolateVaryings(tH, &varyA, &varyB, invWa, invWb)

			ddx, ddy := grad.derivatives(vary.UV, invW)
			if color, ok := sh.Fragment(vary, ddx, ddy); ok {
				r.fb.SetPixel(x, y, color, depth)
			}
		}
	}
}

// interpolateVaryings interpolates every varying except ClipPosition
// perspective-correctly between two endpoints at parameter t.
func interpolateVaryings(t float32, start, end *shader.Varyings, invWStart, invWEnd float32) shader.Varyings {
	invW := invWStart + (invWEnd-invWStart)*t
	if math32.Abs(invW) < 1e-6 {
		// Degenerate reconstruction; split the difference.
		return shader.Varyings{
			WorldPosition: start.WorldPosition.Add(end.WorldPosition).Scale(0.5),
			Normal:        start.Normal.Add(end.Normal).Scale(0.5),
			Tangent:       start.Tangent.Add(end.Tangent).Scale(0.5),
			Bitangent:     start.Bitangent.Add(end.Bitangent).Scale(0.5),
			UV:            start.UV.Add(end.UV).Scale(0.5),
		}
	}
	w := 1 / invW

	lerp3 := func(a, b math.Vec3) math.Vec3 {
		return a.Scale(invWStart).Lerp(b.Scale(invWEnd), t).Scale(w)
	}

	return shader.Varyings{
		WorldPosition: lerp3(start.WorldPosition, end.WorldPosition),
		Normal:        lerp3(start.Normal, end.Normal),
		Tangent:       lerp3(start.Tangent, end.Tangent),
		Bitangent:     lerp3(start.Bitangent, end.Bitangent),
		UV:            start.UV.Scale(invWStart).Lerp(end.UV.Scale(invWEnd), t).Scale(w),
	}
}
