package viewer

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"product-viewer/asset"
	"product-viewer/fit"
	"product-viewer/lighting"
	"product-viewer/materials"
	"product-viewer/scene"
)

// Assets names what Initialize loads.
type Assets struct {
	Model       string
	TextureDir  string
	Roles       []asset.TextureRole
	Environment string
	Options     asset.Options
	// Timeout bounds the whole load. Zero waits indefinitely.
	Timeout time.Duration
}

// Loaders fetch the startup assets. Nil fields use the asset package.
type Loaders struct {
	Model       func(ctx context.Context, location string, opts asset.Options) (*scene.Node, error)
	Textures    func(ctx context.Context, dir string, roles []asset.TextureRole, opts asset.Options) (asset.TextureSet, []asset.TextureResult)
	Environment lighting.EnvironmentLoader
}

func (l Loaders) withDefaults(opts asset.Options) Loaders {
	if l.Model == nil {
		l.Model = asset.LoadModel
	}
	if l.Textures == nil {
		l.Textures = asset.LoadTextureResults
	}
	if l.Environment == nil {
		l.Environment = func(ctx context.Context, src string) (*scene.Environment, error) {
			return asset.LoadEnvironment(ctx, src, opts)
		}
	}
	return l
}

// Result is what a successful Initialize installed.
type Result struct {
	Model    *scene.Node
	Textures asset.TextureSet
	Rig      lighting.Rig
	Fit      fit.Result
	Report   asset.Report
}

// Initialize loads the model, textures and lighting concurrently and waits
// for all three to settle. Only then is the scene touched. The model is
// textured and framed before it and the rig are added.
//
// Texture and lighting failures degrade gracefully. A model failure is
// returned as a fatal *asset.Error; the indicator then stays visible and the
// scene is left untouched.
func Initialize(ctx context.Context, vc *Context, a Assets, l Loaders, ind Indicator) (*Result, error) {
	if ind == nil {
		ind = nopIndicator{}
	}
	ind.Show()
	start := time.Now()

	if err := vc.ApplyExposure(); err != nil {
		return nil, err
	}

	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	l = l.withDefaults(a.Options)

	var (
		res     Result
		results []asset.TextureResult
		g       errgroup.Group
	)
	g.Go(func() error {
		m, err := l.Model(ctx, a.Model, a.Options)
		if err != nil {
			return err
		}
		res.Model = m
		return nil
	})
	g.Go(func() error {
		res.Textures, results = l.Textures(ctx, a.TextureDir, a.Roles, a.Options)
		return nil
	})
	g.Go(func() error {
		res.Rig = lighting.Acquire(ctx, a.Environment, l.Environment, a.Options.Log)
		return nil
	})
	err := g.Wait()

	res.Report.AddTextures(results)
	addRigReport(&res.Report, a.Environment, res.Rig)
	if err != nil {
		res.Report.Add("model", a.Model, asset.StatusFailed, err.Error())
		vc.log.Error("model failed to load", zap.String("model", a.Model), zap.Error(err))
		return &res, err
	}
	res.Report.Add("model", a.Model, asset.StatusLoaded, "")

	materials.ApplyAll(res.Model, res.Textures)

	var studio *lighting.Studio
	if lit, ok := res.Rig.(lighting.StudioLit); ok {
		studio = lit.Studio
	}
	res.Fit, err = fit.CameraToObject(vc.Camera, studio, res.Model)
	if err != nil {
		vc.log.Error("model cannot be framed", zap.String("model", a.Model), zap.Error(err))
		return &res, asset.Fatal(a.Model, err)
	}

	res.Rig.Install(vc.Scene)
	vc.Scene.AddNode(res.Model)
	vc.Model = res.Model

	ind.Hide()
	vc.log.Info("viewer initialized",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("textures", len(res.Textures)),
		zap.Float32("size", res.Fit.MaxDim),
		zap.Float32("distance", res.Fit.Distance))
	return &res, nil
}

func addRigReport(r *asset.Report, src string, rig lighting.Rig) {
	switch rig := rig.(type) {
	case lighting.EnvironmentLit:
		r.Add("environment", src, asset.StatusLoaded,
			rig.Environment.Mapping.String())
	case lighting.StudioLit:
		r.Add("environment", src, asset.StatusFallback, "studio lights")
	}
}
