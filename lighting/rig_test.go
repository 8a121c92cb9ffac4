package lighting

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"product-viewer/asset"
	"product-viewer/scene"
)

func envLoader(env *scene.Environment, err error) EnvironmentLoader {
	return func(ctx context.Context, src string) (*scene.Environment, error) {
		return env, err
	}
}

func TestAcquireEnvironment(t *testing.T) {
	env := &scene.Environment{Width: 2, Height: 1, Pixels: make([]float32, 6)}
	rig := Acquire(context.Background(), "studio.hdr", envLoader(env, nil), nil)

	lit, ok := rig.(EnvironmentLit)
	require.True(t, ok)
	assert.Same(t, env, lit.Environment)

	s := scene.NewScene()
	rig.Install(s)
	assert.Same(t, env, s.Environment)
	assert.Equal(t, scene.MappingEquirectangular, s.Environment.Mapping)
	assert.Empty(t, s.Lights)
	assert.Nil(t, s.Ambient)
}

func TestAcquireFallsBack(t *testing.T) {
	cases := map[string]struct {
		src  string
		load EnvironmentLoader
	}{
		"empty source": {"", envLoader(nil, errors.New("unused"))},
		"load error":   {"missing.hdr", envLoader(nil, errors.New("404"))},
		"empty image":  {"blank.hdr", envLoader(&scene.Environment{}, nil)},
		"no loader":    {"studio.hdr", nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			rig := Acquire(context.Background(), tc.src, tc.load, zap.New(core))

			lit, ok := rig.(StudioLit)
			require.True(t, ok)
			require.NotNil(t, lit.Studio)
			assert.Equal(t, 1, logs.Len())

			s := scene.NewScene()
			rig.Install(s)
			assert.Nil(t, s.Environment)
			assert.Len(t, s.Lights, 3)
			assert.Same(t, lit.Studio.Key, s.ShadowCaster())
			assert.Same(t, lit.Studio.Ambient, s.Ambient)
		})
	}
}

func TestAcquireFallsBackOnOversizedHDR(t *testing.T) {
	src := filepath.Join(t.TempDir(), "bad.hdr")
	require.NoError(t, os.WriteFile(src, []byte("#?RADIANCE\n\n-Y 2000000000 +X 2000000000\n"), 0o644))

	load := func(ctx context.Context, src string) (*scene.Environment, error) {
		return asset.LoadEnvironment(ctx, src, asset.DefaultOptions())
	}
	core, logs := observer.New(zapcore.WarnLevel)
	rig := Acquire(context.Background(), src, load, zap.New(core))

	_, ok := rig.(StudioLit)
	assert.True(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("environment unavailable, using studio lights").Len())
}

func TestNewStudio(t *testing.T) {
	st := NewStudio()

	assert.Equal(t, float32(20), st.Key.Intensity)
	assert.Equal(t, mgl32.Vec3{5, 5, 5}, st.Key.Position)
	assert.True(t, st.Key.CastShadow)
	assert.Equal(t, scene.NewShadowCamera(), st.Key.Shadow)

	assert.Equal(t, float32(10), st.Fill.Intensity)
	assert.Equal(t, mgl32.Vec3{-5, 3, 0}, st.Fill.Position)
	assert.False(t, st.Fill.CastShadow)

	assert.Equal(t, float32(15), st.Back.Intensity)
	assert.Equal(t, mgl32.Vec3{0, 5, -5}, st.Back.Position)
	assert.False(t, st.Back.CastShadow)

	assert.Equal(t, float32(10), st.Ambient.Intensity)
}
