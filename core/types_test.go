package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestTransformMatrix(t *testing.T) {
	tr := NewTransform()
	assert.True(t, tr.GetMatrix().ApproxEqual(mgl32.Ident4()))

	tr.Position = mgl32.Vec3{1, 2, 3}
	tr.Scale = mgl32.Vec3{2, 2, 2}
	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 1, 1}, tr.GetMatrix())
	assert.InDelta(t, 3, p.X(), 1e-5)
	assert.InDelta(t, 4, p.Y(), 1e-5)
	assert.InDelta(t, 5, p.Z(), 1e-5)
}

func TestTransformDirections(t *testing.T) {
	tr := NewTransform()
	assert.True(t, tr.GetForward().ApproxEqual(mgl32.Vec3{0, 0, -1}))
	assert.True(t, tr.GetUp().ApproxEqual(mgl32.Vec3{0, 1, 0}))
}

func TestColorFromBytes(t *testing.T) {
	c := ColorFromBytes(30, 30, 30)
	assert.InDelta(t, 30.0/255.0, c.R, 1e-6)
	assert.Equal(t, float32(1), c.A)
	assert.Equal(t, Color{R: 0.5, G: 1, B: 0, A: 1}, Color{R: 1, G: 2, B: 0, A: 1}.Scale(0.5))
}
