package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"product-viewer/core"
)

// ShadowCamera is the orthographic volume a directional light renders its
// shadow map from. The map resolution is a renderer setting.
type ShadowCamera struct {
	Left, Right, Top, Bottom float32
	Near, Far                float32

	projection mgl32.Mat4
}

func NewShadowCamera() ShadowCamera {
	sc := ShadowCamera{
		Left: -5, Right: 5, Top: 5, Bottom: -5,
		Near: 0.5, Far: 500,
	}
	sc.UpdateProjection()
	return sc
}

// UpdateProjection rebuilds the projection after bounds change.
func (sc *ShadowCamera) UpdateProjection() {
	sc.projection = mgl32.Ortho(sc.Left, sc.Right, sc.Bottom, sc.Top, sc.Near, sc.Far)
}

func (sc *ShadowCamera) Projection() mgl32.Mat4 {
	return sc.projection
}

// DirectionalLight shines from Position towards Target.
type DirectionalLight struct {
	Name       string
	Color      core.Color
	Intensity  float32
	Position   mgl32.Vec3
	Target     mgl32.Vec3
	CastShadow bool
	Shadow     ShadowCamera
}

func NewDirectionalLight(name string, color core.Color, intensity float32) *DirectionalLight {
	return &DirectionalLight{
		Name:      name,
		Color:     color,
		Intensity: intensity,
		Position:  mgl32.Vec3{0, 1, 0},
		Shadow:    NewShadowCamera(),
	}
}

// Direction is the unit vector the light travels along.
func (l *DirectionalLight) Direction() mgl32.Vec3 {
	d := l.Target.Sub(l.Position)
	if d.Len() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

// ShadowViewProjection is the light-space transform used for the shadow map.
func (l *DirectionalLight) ShadowViewProjection() mgl32.Mat4 {
	up := mgl32.Vec3{0, 1, 0}
	if abs32(l.Direction().Dot(up)) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(l.Position, l.Target, up)
	return l.Shadow.Projection().Mul4(view)
}

// AmbientLight adds uniform light to every surface.
type AmbientLight struct {
	Color     core.Color
	Intensity float32
}
