// Package viewer wires asset loading, scene fitting, controls and the draw
// backend into a running product viewer.
package viewer

import (
	"go.uber.org/zap"

	"product-viewer/core"
	"product-viewer/exposure"
	"product-viewer/internal/logger"
	"product-viewer/materials"
	"product-viewer/scene"
)

// Drawer renders a scene. Implementations own all GPU state and must be
// called from the thread that owns the graphics context.
type Drawer interface {
	Draw(s *scene.Scene, cam *scene.PerspectiveCamera) error
	// SetExposure sets the tone-mapping exposure scalar.
	SetExposure(v float32)
	// Resize sets the drawing surface to exactly width x height pixels.
	Resize(width, height int)
}

// Surface is the window the viewer presents into.
type Surface interface {
	ShouldClose() bool
	PollEvents()
	SwapBuffers()
}

// Indicator is a loading indicator.
type Indicator interface {
	Show()
	Hide()
}

type nopIndicator struct{}

func (nopIndicator) Show() {}
func (nopIndicator) Hide() {}

// Context is the mutable rendering state shared by initialization, the
// controls and the frame loop.
type Context struct {
	Scene    *scene.Scene
	Camera   *scene.PerspectiveCamera
	Exposure exposure.Settings
	Drawer   Drawer

	// Model is the loaded product, nil until initialization completes.
	Model *scene.Node

	log *zap.Logger
}

func NewContext(s *scene.Scene, cam *scene.PerspectiveCamera, ex exposure.Settings, d Drawer, log *zap.Logger) *Context {
	return &Context{
		Scene:    s,
		Camera:   cam,
		Exposure: ex,
		Drawer:   d,
		log:      logger.Named(log, "viewer"),
	}
}

// ApplyExposure recomputes the exposure scalar and pushes it to the drawer.
func (c *Context) ApplyExposure() error {
	v, err := exposure.Compute(c.Exposure)
	if err != nil {
		return err
	}
	c.Drawer.SetExposure(float32(v))
	c.log.Debug("exposure applied",
		zap.Float64("compensation", c.Exposure.Compensation),
		zap.Float64("ev", c.Exposure.EV()),
		zap.Float64("exposure", v))
	return nil
}

// SetExposureCompensation changes the compensation and re-applies the
// exposure. Invalid values leave the previous exposure in place.
func (c *Context) SetExposureCompensation(v float64) error {
	prev := c.Exposure.Compensation
	c.Exposure.Compensation = v
	if err := c.ApplyExposure(); err != nil {
		c.Exposure.Compensation = prev
		return err
	}
	return nil
}

// SetMetalness writes v to every mesh material of the model.
func (c *Context) SetMetalness(v float32) {
	if c.Model == nil {
		return
	}
	materials.SetMetalness(c.Model, v)
}

// SetBackground sets the flat clear color behind the model.
func (c *Context) SetBackground(col core.Color) {
	c.Scene.Background = col
}

// Resize matches the camera and drawing surface to a width x height
// viewport. Zero sizes (minimized windows) are ignored.
func (c *Context) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Camera.Aspect = float32(width) / float32(height)
	c.Camera.UpdateProjection()
	c.Drawer.Resize(width, height)
}
