// Package lighting chooses how the product is lit: by an HDR environment map
// when one can be loaded, otherwise by a fixed three-point studio rig.
package lighting

import (
	"context"
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"product-viewer/core"
	"product-viewer/internal/logger"
	"product-viewer/scene"
)

// Rig is the lighting chosen at startup. It is either EnvironmentLit or
// StudioLit and never changes afterwards.
type Rig interface {
	// Install adds the rig to s.
	Install(s *scene.Scene)
	isRig()
}

// EnvironmentLit lights the scene from an equirectangular HDR image.
type EnvironmentLit struct {
	Environment *scene.Environment
}

func (r EnvironmentLit) Install(s *scene.Scene) {
	r.Environment.Mapping = scene.MappingEquirectangular
	s.SetEnvironment(r.Environment)
}

func (EnvironmentLit) isRig() {}

// StudioLit lights the scene with directional lights.
type StudioLit struct {
	Studio *Studio
}

func (r StudioLit) Install(s *scene.Scene) {
	for _, l := range r.Studio.Lights() {
		s.AddLight(l)
	}
	s.SetAmbient(r.Studio.Ambient)
}

func (StudioLit) isRig() {}

// Studio is a key/fill/back light setup plus ambient fill.
type Studio struct {
	Key, Fill, Back *scene.DirectionalLight
	Ambient         *scene.AmbientLight
}

// NewStudio builds the default studio rig. Only the key light casts shadows.
func NewStudio() *Studio {
	key := scene.NewDirectionalLight("key", core.ColorWhite, 20)
	key.Position = mgl32.Vec3{5, 5, 5}
	key.CastShadow = true

	fill := scene.NewDirectionalLight("fill", core.ColorWhite, 10)
	fill.Position = mgl32.Vec3{-5, 3, 0}

	back := scene.NewDirectionalLight("back", core.ColorWhite, 15)
	back.Position = mgl32.Vec3{0, 5, -5}

	return &Studio{
		Key:     key,
		Fill:    fill,
		Back:    back,
		Ambient: &scene.AmbientLight{Color: core.ColorWhite, Intensity: 10},
	}
}

// Lights returns the directional lights in key, fill, back order.
func (s *Studio) Lights() []*scene.DirectionalLight {
	return []*scene.DirectionalLight{s.Key, s.Fill, s.Back}
}

// EnvironmentLoader fetches and decodes an environment map from src.
type EnvironmentLoader func(ctx context.Context, src string) (*scene.Environment, error)

var errNoSource = errors.New("no environment source configured")

// Acquire tries to load the environment at src and falls back to the studio
// rig on any failure. It never fails and does not touch the scene, so it is
// safe to call off the main thread.
func Acquire(ctx context.Context, src string, load EnvironmentLoader, log *zap.Logger) Rig {
	log = logger.Named(log, "lighting")

	env, err := loadEnvironment(ctx, src, load)
	if err != nil {
		log.Warn("environment unavailable, using studio lights",
			zap.String("source", src),
			zap.Error(err))
		return StudioLit{Studio: NewStudio()}
	}
	log.Info("environment loaded", zap.String("source", src))
	return EnvironmentLit{Environment: env}
}

func loadEnvironment(ctx context.Context, src string, load EnvironmentLoader) (*scene.Environment, error) {
	if src == "" || load == nil {
		return nil, errNoSource
	}
	env, err := load(ctx, src)
	if err != nil {
		return nil, err
	}
	if env == nil || env.Width == 0 || env.Height == 0 {
		return nil, errors.New("environment is empty")
	}
	return env, nil
}
