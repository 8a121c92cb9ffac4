// Package fit frames a freshly loaded model: it centers the model at the
// origin and places the camera and studio lights relative to its size.
package fit

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"product-viewer/lighting"
	"product-viewer/scene"
)

// ErrEmptyObject is returned when the object has no geometry to frame.
var ErrEmptyObject = errors.New("fit: object has no geometry")

// distanceMargin pads the camera distance so the object does not touch the
// viewport edges.
const distanceMargin = 1.5

// Result describes the framing that was applied.
type Result struct {
	Center        mgl32.Vec3 // object center before centering
	MaxDim        float32
	Distance      float32 // camera distance from the origin
	LightDistance float32
}

// CameraDistance returns how far a camera with the given vertical fov
// (degrees) must be to see an object of size maxDim.
func CameraDistance(maxDim, fovDeg float32) float32 {
	half := mgl32.DegToRad(fovDeg) / 2
	return (maxDim / 2) / math32.Tan(half) * distanceMargin
}

// CameraToObject moves obj so its bounding box is centered on the origin,
// places cam on +Z looking at it and, when studio is non-nil, repositions
// the studio lights and fits the key light's shadow volume.
func CameraToObject(cam *scene.PerspectiveCamera, studio *lighting.Studio, obj *scene.Node) (Result, error) {
	box := scene.ComputeBounds(obj)
	if box.IsEmpty() {
		return Result{}, ErrEmptyObject
	}

	center := box.Center()
	obj.Translate(center.Mul(-1))

	maxDim := box.MaxDim()
	res := Result{
		Center:   center,
		MaxDim:   maxDim,
		Distance: CameraDistance(maxDim, cam.FOV),
	}
	cam.Position = mgl32.Vec3{0, 0, res.Distance}
	cam.LookAt(mgl32.Vec3{})

	if studio != nil {
		res.LightDistance = maxDim * 2
		fitStudio(studio, maxDim, res.LightDistance)
	}
	return res, nil
}

func fitStudio(st *lighting.Studio, maxDim, d float32) {
	st.Key.Position = mgl32.Vec3{d, d, d}
	st.Fill.Position = mgl32.Vec3{-d, d * 0.6, 0}
	st.Back.Position = mgl32.Vec3{0, d, -d}
	for _, l := range st.Lights() {
		l.Target = mgl32.Vec3{}
	}

	sc := &st.Key.Shadow
	sc.Left, sc.Right = -maxDim, maxDim
	sc.Bottom, sc.Top = -maxDim, maxDim
	sc.Far = maxDim * 4
	sc.UpdateProjection()
}
