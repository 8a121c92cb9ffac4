package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"product-viewer/config"
	"product-viewer/controls"
	"product-viewer/internal/logger"
	"product-viewer/renderer"
	"product-viewer/scene"
	"product-viewer/viewer"
	"product-viewer/window"
)

func run(c *cli.Context) error {
	if err := logger.Init(c.GlobalBool("v"), c.GlobalBool("vv")); err != nil {
		return err
	}
	defer logger.Log.Sync()
	log := logger.Log

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	wcfg := window.DefaultConfig()
	wcfg.Width, wcfg.Height = cfg.Window.Width, cfg.Window.Height
	wcfg.Title = cfg.Window.Title
	wcfg.VSync = cfg.Window.VSync
	win, err := window.New(wcfg)
	if err != nil {
		return err
	}
	defer win.Destroy()

	width, height := win.Size()
	engine, err := renderer.NewRenderEngine(width, height, cfg.Render.ShadowMapSize, log)
	if err != nil {
		return err
	}
	defer engine.Destroy()

	background, err := controls.ParseHex(cfg.Render.Background)
	if err != nil {
		return err
	}
	sc := scene.NewScene()
	sc.Background = background
	cam := scene.NewPerspectiveCamera(cfg.Camera.FOV, float32(width)/float32(height), cfg.Camera.Near, cfg.Camera.Far)

	vc := viewer.NewContext(sc, cam, cfg.ExposureSettings(), engine, log)
	win.SetResizeCallback(vc.Resize)

	roles, err := cfg.TextureRoles()
	if err != nil {
		return err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}
	opts := cfg.AssetOptions()
	opts.Log = log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := viewer.Initialize(ctx, vc, viewer.Assets{
		Model:       cfg.Assets.Model,
		TextureDir:  cfg.Assets.Textures,
		Roles:       roles,
		Environment: cfg.Assets.Environment,
		Options:     opts,
		Timeout:     timeout,
	}, viewer.Loaders{}, win.Indicator())
	if cfg.Report && res != nil {
		if rerr := res.Report.Render(os.Stdout); rerr != nil {
			log.Warn("load report not written", zap.Error(rerr))
		}
	}
	if err != nil {
		return err
	}

	orbit := controls.NewOrbit(cam)
	orbit.Damping = cfg.Orbit.Damping
	orbit.MinDistance = cfg.Orbit.MinDistance
	orbit.MaxDistance = cfg.Orbit.MaxDistance
	orbit.Sync()
	controls.BindPointer(win, orbit)

	panel := controls.NewPanel(controls.State{
		Exposure:   cfg.Exposure.Compensation,
		Metalness:  scene.DefaultMaterial().Metalness,
		Background: background,
	}, log)

	var bindings []controls.Binding
	if cfg.Controls.Keyboard {
		bindings = append(bindings, controls.NewKeyboardBinding(win))
	}
	if cfg.Controls.File != "" {
		fb := controls.NewFileBinding(cfg.Controls.File, log)
		defer fb.Close()
		bindings = append(bindings, fb)
	}
	if err := controls.BindAll(panel, bindings...); err != nil {
		return err
	}

	loop, err := viewer.NewLoop(win, vc, orbit, panel)
	if err != nil {
		return err
	}
	err = loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	objects, vertices, triangles := engine.DrawStats()
	log.Info("viewer closed",
		zap.Uint64("frames", loop.Frames()),
		zap.Int("objects", objects),
		zap.Int("vertices", vertices),
		zap.Int("triangles", triangles))
	return err
}

// loadConfig reads the optional config file and applies flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if v := c.String("model"); v != "" {
		cfg.Assets.Model = v
	}
	if v := c.String("textures"); v != "" {
		cfg.Assets.Textures = v
	}
	if v := c.String("hdr"); v != "" {
		cfg.Assets.Environment = v
	}
	if v := c.Int("width"); v > 0 {
		cfg.Window.Width = v
	}
	if v := c.Int("height"); v > 0 {
		cfg.Window.Height = v
	}
	if v := c.String("controls"); v != "" {
		cfg.Controls.File = v
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
