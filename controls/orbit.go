// Package controls turns user input into camera motion and live material
// and exposure adjustments.
package controls

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"product-viewer/scene"
)

// Orbit defaults.
const (
	DefaultDamping     = 0.05
	DefaultMinDistance = 0.1
	DefaultMaxDistance = 10

	// maxPitch keeps the camera off the poles where the up vector degenerates.
	maxPitch = math32.Pi/2 - 0.01
)

// Orbit rotates and dollies a camera around a target. Input accumulates
// between frames and is eased in by Update.
type Orbit struct {
	Camera *scene.PerspectiveCamera
	Target mgl32.Vec3

	Damping     float32
	MinDistance float32
	MaxDistance float32
	// RotateSpeed is radians per pixel of drag.
	RotateSpeed float32
	// ZoomSpeed is the dolly factor per scroll step.
	ZoomSpeed float32

	yaw, pitch, distance float32

	deltaYaw, deltaPitch float32
	scale                float32
}

func NewOrbit(cam *scene.PerspectiveCamera) *Orbit {
	o := &Orbit{
		Camera:      cam,
		Damping:     DefaultDamping,
		MinDistance: DefaultMinDistance,
		MaxDistance: DefaultMaxDistance,
		RotateSpeed: 0.005,
		ZoomSpeed:   0.95,
		scale:       1,
	}
	o.Sync()
	return o
}

// Sync reads the camera's current placement relative to Target. Call it
// after moving the camera by other means.
func (o *Orbit) Sync() {
	offset := o.Camera.Position.Sub(o.Target)
	o.distance = offset.Len()
	if o.distance == 0 {
		o.yaw, o.pitch = 0, 0
		return
	}
	o.yaw = math32.Atan2(offset.X(), offset.Z())
	o.pitch = math32.Asin(clamp(offset.Y()/o.distance, -1, 1))
	o.deltaYaw, o.deltaPitch = 0, 0
	o.scale = 1
}

// Rotate queues a drag of dx, dy pixels.
func (o *Orbit) Rotate(dx, dy float32) {
	o.deltaYaw -= dx * o.RotateSpeed
	o.deltaPitch += dy * o.RotateSpeed
}

// Dolly queues a distance multiplier. Values below 1 move closer.
func (o *Orbit) Dolly(scale float32) {
	if scale > 0 {
		o.scale *= scale
	}
}

// Scroll dollies by one ZoomSpeed step per unit of wheel offset.
func (o *Orbit) Scroll(yoff float32) {
	o.Dolly(math32.Pow(o.ZoomSpeed, yoff))
}

// Distance is the current camera distance from Target.
func (o *Orbit) Distance() float32 {
	return o.distance
}

// Update advances damping by one frame and writes the camera. It returns
// true while the camera is still moving.
func (o *Orbit) Update() bool {
	damping := o.Damping
	if damping <= 0 || damping > 1 {
		damping = 1
	}

	o.yaw += o.deltaYaw * damping
	o.pitch = clamp(o.pitch+o.deltaPitch*damping, -maxPitch, maxPitch)
	o.distance = clamp(o.distance*o.scale, o.MinDistance, o.MaxDistance)

	o.deltaYaw *= 1 - damping
	o.deltaPitch *= 1 - damping
	o.scale = 1

	cosPitch := math32.Cos(o.pitch)
	offset := mgl32.Vec3{
		o.distance * cosPitch * math32.Sin(o.yaw),
		o.distance * math32.Sin(o.pitch),
		o.distance * cosPitch * math32.Cos(o.yaw),
	}
	o.Camera.Position = o.Target.Add(offset)
	o.Camera.LookAt(o.Target)

	const eps = 1e-6
	return math32.Abs(o.deltaYaw) > eps || math32.Abs(o.deltaPitch) > eps
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
