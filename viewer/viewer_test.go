package viewer

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-viewer/asset"
	"product-viewer/controls"
	"product-viewer/core"
	"product-viewer/exposure"
	"product-viewer/lighting"
	"product-viewer/scene"
)

type fakeDrawer struct {
	draws         int
	exposures     []float32
	width, height int
	err           error
}

func (d *fakeDrawer) Draw(*scene.Scene, *scene.PerspectiveCamera) error {
	d.draws++
	return d.err
}

func (d *fakeDrawer) SetExposure(v float32) { d.exposures = append(d.exposures, v) }

func (d *fakeDrawer) Resize(w, h int) { d.width, d.height = w, h }

type fakeSurface struct {
	closeAfter int
	polls      int
	swaps      int
}

func (s *fakeSurface) ShouldClose() bool { return s.swaps >= s.closeAfter }
func (s *fakeSurface) PollEvents()       { s.polls++ }
func (s *fakeSurface) SwapBuffers()      { s.swaps++ }

type fakeIndicator struct {
	shown, hidden int
}

func (i *fakeIndicator) Show() { i.shown++ }
func (i *fakeIndicator) Hide() { i.hidden++ }

func (i *fakeIndicator) visible() bool { return i.shown > i.hidden }

func newContext() (*Context, *fakeDrawer) {
	d := &fakeDrawer{}
	cam := scene.NewPerspectiveCamera(30, 1, 0.01, 1000)
	return NewContext(scene.NewScene(), cam, exposure.Default(), d, nil), d
}

func shoe() *scene.Node {
	root := scene.NewNode("shoe")
	body := scene.NewNode("body")
	body.Mesh = scene.CreateBox(0.3, 0.1, 0.1)
	body.SetPosition(mgl32.Vec3{1, 1, 1})
	root.AddChild(body)
	return root
}

func modelLoader(n *scene.Node, err error) func(context.Context, string, asset.Options) (*scene.Node, error) {
	return func(context.Context, string, asset.Options) (*scene.Node, error) {
		return n, err
	}
}

func textureLoader(set asset.TextureSet) func(context.Context, string, []asset.TextureRole, asset.Options) (asset.TextureSet, []asset.TextureResult) {
	return func(_ context.Context, dir string, roles []asset.TextureRole, _ asset.Options) (asset.TextureSet, []asset.TextureResult) {
		var results []asset.TextureResult
		for _, r := range roles {
			tr := asset.TextureResult{Role: r, Location: dir + "/" + string(r), Texture: set[r]}
			if tr.Texture == nil {
				tr.Err = errors.New("missing")
			}
			results = append(results, tr)
		}
		return set, results
	}
}

func envLoader(env *scene.Environment, err error) lighting.EnvironmentLoader {
	return func(context.Context, string) (*scene.Environment, error) {
		return env, err
	}
}

func testAssets() Assets {
	return Assets{
		Model:      "shoe.glb",
		TextureDir: "textures",
		Roles:      asset.DefaultRoles,
		Options:    asset.DefaultOptions(),
	}
}

func TestInitializeStudio(t *testing.T) {
	vc, d := newContext()
	ind := &fakeIndicator{}
	diffuse := &scene.Texture{Name: "diffuse", ColorSpace: scene.ColorSpaceSRGB}
	model := shoe()

	res, err := Initialize(context.Background(), vc, testAssets(), Loaders{
		Model:    modelLoader(model, nil),
		Textures: textureLoader(asset.TextureSet{asset.RoleDiffuse: diffuse}),
	}, ind)
	require.NoError(t, err)

	want, _ := exposure.Compute(exposure.Default())
	require.Len(t, d.exposures, 1)
	assert.InDelta(t, want, d.exposures[0], 1e-6)

	assert.Equal(t, 1, ind.shown)
	assert.False(t, ind.visible())

	assert.Same(t, model, vc.Model)
	assert.Contains(t, vc.Scene.Root.Children, model)
	assert.Len(t, vc.Scene.Lights, 3)
	assert.Nil(t, vc.Scene.Environment)
	_, ok := res.Rig.(lighting.StudioLit)
	assert.True(t, ok)

	mesh := model.Meshes()[0]
	assert.Same(t, diffuse, mesh.Material.BaseColorMap)
	assert.True(t, mesh.HasUV2)

	box := scene.ComputeBounds(model)
	assert.True(t, box.Center().ApproxEqualThreshold(mgl32.Vec3{}, 1e-5))
	assert.InDelta(t, res.Fit.Distance, vc.Camera.Position.Z(), 1e-6)
	d2 := res.Fit.MaxDim * 2
	assert.Equal(t, mgl32.Vec3{d2, d2, d2}, vc.Scene.ShadowCaster().Position)

	out := res.Report.String()
	assert.Contains(t, out, "studio lights")
	assert.Contains(t, out, string(asset.StatusMissing))
}

func TestInitializeEnvironment(t *testing.T) {
	vc, _ := newContext()
	env := &scene.Environment{Width: 2, Height: 1, Pixels: make([]float32, 6)}
	a := testAssets()
	a.Environment = "studio.hdr"

	res, err := Initialize(context.Background(), vc, a, Loaders{
		Model:       modelLoader(shoe(), nil),
		Textures:    textureLoader(asset.TextureSet{}),
		Environment: envLoader(env, nil),
	}, nil)
	require.NoError(t, err)

	assert.Same(t, env, vc.Scene.Environment)
	assert.Empty(t, vc.Scene.Lights)
	assert.Zero(t, res.Fit.LightDistance)

	mat := vc.Model.Meshes()[0].Material
	assert.Equal(t, scene.DefaultMaterial().EnvMapIntensity, mat.EnvMapIntensity)
	assert.Contains(t, res.Report.String(), "equirectangular")
}

func TestInitializeModelFailure(t *testing.T) {
	vc, d := newContext()
	ind := &fakeIndicator{}
	cause := asset.Fatal("shoe.glb", errors.New("404"))

	res, err := Initialize(context.Background(), vc, testAssets(), Loaders{
		Model:    modelLoader(nil, cause),
		Textures: textureLoader(asset.TextureSet{}),
	}, ind)
	require.Error(t, err)
	assert.True(t, asset.IsFatal(err))
	assert.True(t, ind.visible())

	assert.Empty(t, vc.Scene.Root.Children)
	assert.Empty(t, vc.Scene.Lights)
	assert.Nil(t, vc.Model)
	assert.Contains(t, res.Report.String(), string(asset.StatusFailed))

	_, err = NewLoop(&fakeSurface{}, vc, nil, nil)
	assert.Error(t, err)
	assert.Zero(t, d.draws)
}

func TestInitializeInvalidExposure(t *testing.T) {
	vc, _ := newContext()
	vc.Exposure.ShutterSpeed = 0
	_, err := Initialize(context.Background(), vc, testAssets(), Loaders{
		Model: modelLoader(shoe(), nil),
	}, nil)
	assert.ErrorIs(t, err, exposure.ErrInvalidSettings)
}

func TestInitializeWaitsForAllLoaders(t *testing.T) {
	vc, _ := newContext()
	modelDone := make(chan struct{})
	var touched bool

	_, err := Initialize(context.Background(), vc, testAssets(), Loaders{
		Model: func(context.Context, string, asset.Options) (*scene.Node, error) {
			defer close(modelDone)
			return shoe(), nil
		},
		Textures: func(ctx context.Context, dir string, roles []asset.TextureRole, opts asset.Options) (asset.TextureSet, []asset.TextureResult) {
			<-modelDone
			time.Sleep(10 * time.Millisecond)
			touched = len(vc.Scene.Root.Children) > 0
			return asset.TextureSet{}, nil
		},
	}, nil)
	require.NoError(t, err)
	assert.False(t, touched)
	assert.NotEmpty(t, vc.Scene.Root.Children)
}

func TestInitializeTimeout(t *testing.T) {
	vc, _ := newContext()
	a := testAssets()
	a.Timeout = 20 * time.Millisecond

	res, err := Initialize(context.Background(), vc, a, Loaders{
		Model: modelLoader(shoe(), nil),
		Textures: func(ctx context.Context, dir string, roles []asset.TextureRole, opts asset.Options) (asset.TextureSet, []asset.TextureResult) {
			<-ctx.Done()
			return asset.TextureSet{}, nil
		},
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Textures)
}

func TestContextResize(t *testing.T) {
	vc, d := newContext()
	vc.Resize(1920, 1080)
	assert.InDelta(t, 1920.0/1080.0, vc.Camera.Aspect, 1e-6)
	assert.Equal(t, 1920, d.width)
	assert.Equal(t, 1080, d.height)
	assert.Equal(t, mgl32.Perspective(mgl32.DegToRad(30), 1920.0/1080.0, 0.01, 1000), vc.Camera.Projection())

	vc.Resize(0, 0)
	assert.Equal(t, 1920, d.width)
}

func TestContextExposureCompensation(t *testing.T) {
	vc, d := newContext()
	require.NoError(t, vc.SetExposureCompensation(2))
	base, _ := exposure.Compute(exposure.Default())
	assert.InDelta(t, 2*base, d.exposures[0], 1e-6)

	assert.ErrorIs(t, vc.SetExposureCompensation(math.NaN()), exposure.ErrInvalidSettings)
	assert.Equal(t, 2.0, vc.Exposure.Compensation)
	assert.Len(t, d.exposures, 1)
}

func TestLoopRunsFrames(t *testing.T) {
	vc, d := newContext()
	_, err := Initialize(context.Background(), vc, testAssets(), Loaders{
		Model:    modelLoader(shoe(), nil),
		Textures: textureLoader(asset.TextureSet{asset.RoleDiffuse: &scene.Texture{}}),
	}, nil)
	require.NoError(t, err)

	orbit := controls.NewOrbit(vc.Camera)
	orbit.MaxDistance = 100
	panel := controls.NewPanel(controls.State{Exposure: 1}, nil)
	surface := &fakeSurface{closeAfter: 3}
	loop, err := NewLoop(surface, vc, orbit, panel)
	require.NoError(t, err)

	panel.SetMetalness(0.7)
	panel.SetBackground(core.ColorBlack)
	require.NoError(t, loop.Run(context.Background()))

	assert.Equal(t, uint64(3), loop.Frames())
	assert.Equal(t, 3, d.draws)
	assert.Equal(t, 3, surface.polls)
	assert.Equal(t, float32(0.7), vc.Model.Meshes()[0].Material.Metalness)
	assert.Equal(t, core.ColorBlack, vc.Scene.Background)
}

func TestLoopStopsOnError(t *testing.T) {
	vc, d := newContext()
	vc.Model = shoe()
	d.err = errors.New("lost context")
	loop, err := NewLoop(&fakeSurface{closeAfter: 10}, vc, nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, loop.Run(context.Background()), d.err)
	assert.Equal(t, 1, d.draws)
}

func TestLoopStopsOnCancel(t *testing.T) {
	vc, _ := newContext()
	vc.Model = shoe()
	loop, err := NewLoop(&fakeSurface{closeAfter: 10}, vc, nil, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, loop.Run(ctx), context.Canceled)
}
