package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// ColorFromBytes builds an opaque color from 8-bit channels.
func ColorFromBytes(r, g, b uint8) Color {
	return Color{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: 1}
}

// Scale returns the color with RGB multiplied by s. Alpha is kept.
func (c Color) Scale(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A}
}

// Vertex is the interleaved GPU vertex layout. UV2 is the secondary texture
// coordinate set sampled by the ambient occlusion channel.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	UV        mgl32.Vec2
	UV2       mgl32.Vec2
	Color     Color
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// GetMatrix composes translation * rotation * scale.
func (t Transform) GetMatrix() mgl32.Mat4 {
	translation := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotation := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translation.Mul4(rotation).Mul4(scale)
}

func (t Transform) GetForward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

func (t Transform) GetUp() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}
