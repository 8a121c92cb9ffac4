package scene

import "github.com/go-gl/mathgl/mgl32"

// PerspectiveCamera looks from Position at Target. FOV is the vertical field
// of view in degrees.
type PerspectiveCamera struct {
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	projection mgl32.Mat4
}

func NewPerspectiveCamera(fov, aspect, near, far float32) *PerspectiveCamera {
	c := &PerspectiveCamera{
		FOV:      fov,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
		Position: mgl32.Vec3{0, 0, 5},
		Up:       mgl32.Vec3{0, 1, 0},
	}
	c.UpdateProjection()
	return c
}

// UpdateProjection must be called after FOV, Aspect, Near or Far change.
func (c *PerspectiveCamera) UpdateProjection() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

func (c *PerspectiveCamera) LookAt(target mgl32.Vec3) {
	c.Target = target
}

func (c *PerspectiveCamera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

func (c *PerspectiveCamera) Projection() mgl32.Mat4 {
	return c.projection
}

func (c *PerspectiveCamera) ViewProjection() mgl32.Mat4 {
	return c.projection.Mul4(c.View())
}
