// Package renderer drives the OpenGL backend for one scene and camera per
// frame.
package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"product-viewer/internal/logger"
	"product-viewer/internal/opengl"
	"product-viewer/scene"
)

// RenderEngine renders a scene in three passes: the shadow casting light's
// depth map, the lit PBR pass into an HDR target, and the tone-mapped blit.
// It must be used from the thread that owns the GL context.
type RenderEngine struct {
	gl  *opengl.Renderer
	log *zap.Logger

	// Per-frame stats populated by Draw.
	lastObjects   int
	lastVertices  int
	lastTriangles int
}

// NewRenderEngine creates the backend for a width×height framebuffer.
// shadowMapSize of zero disables shadows.
func NewRenderEngine(width, height, shadowMapSize int, log *zap.Logger) (*RenderEngine, error) {
	log = logger.Named(log, "renderer")
	glRenderer, err := opengl.NewRenderer(width, height, shadowMapSize, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}
	log.Info("render engine initialized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("shadowMapSize", shadowMapSize))
	return &RenderEngine{gl: glRenderer, log: log}, nil
}

// Draw renders s from cam into the window's back buffer.
func (re *RenderEngine) Draw(s *scene.Scene, cam *scene.PerspectiveCamera) error {
	if s == nil || cam == nil {
		return errors.New("no scene or camera")
	}

	nodes := s.GetVisibleNodes()

	caster := s.ShadowCaster()
	doShadows := caster != nil && re.gl.HasShadowMap()
	lightVP := mgl32.Ident4()
	if doShadows {
		lightVP = caster.ShadowViewProjection()
		re.gl.BeginShadowPass()
		for _, node := range nodes {
			if !node.Mesh.CastShadow {
				continue
			}
			re.gl.DrawMeshShadow(node.Mesh, lightVP.Mul4(node.GetWorldMatrix()))
		}
		re.gl.EndShadowPass()
	}

	re.gl.BeginFrame(s, cam, lightVP, doShadows)
	vp := cam.ViewProjection()
	objects, vertices, triangles := 0, 0, 0
	for _, node := range nodes {
		model := node.GetWorldMatrix()
		re.gl.DrawMesh(node.Mesh, vp.Mul4(model), model)

		objects++
		vertices += len(node.Mesh.Vertices)
		triangles += len(node.Mesh.Indices) / 3
	}
	re.gl.EndFrame()

	re.lastObjects = objects
	re.lastVertices = vertices
	re.lastTriangles = triangles
	return nil
}

// SetExposure sets the tone-mapping exposure.
func (re *RenderEngine) SetExposure(v float32) {
	re.gl.SetExposure(v)
}

// Resize sets the viewport and HDR target to width×height pixels.
func (re *RenderEngine) Resize(width, height int) {
	re.gl.SetViewport(width, height)
	re.log.Debug("resized", zap.Int("width", width), zap.Int("height", height))
}

// DrawStats returns stats from the most recent Draw call.
func (re *RenderEngine) DrawStats() (objects, vertices, triangles int) {
	return re.lastObjects, re.lastVertices, re.lastTriangles
}

// Destroy releases all GPU resources.
func (re *RenderEngine) Destroy() {
	re.gl.Destroy()
}
