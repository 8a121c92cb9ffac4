package materials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-viewer/asset"
	"product-viewer/scene"
)

func tex(name string) *scene.Texture {
	return &scene.Texture{Name: name, Width: 1, Height: 1, Pixels: make([]byte, 4), ColorSpace: scene.ColorSpaceSRGB}
}

func model() (*scene.Node, *scene.Mesh, *scene.Mesh) {
	root := scene.NewNode("shoe")
	upper := scene.NewNode("upper")
	upper.Mesh = scene.CreateBox(1, 1, 1)
	sole := scene.NewNode("sole")
	sole.Mesh = scene.CreateBox(1, 0.2, 1)
	upper.AddChild(sole)
	root.AddChild(upper)
	return root, upper.Mesh, sole.Mesh
}

func TestApplyEmptySetUsesDefault(t *testing.T) {
	m := scene.CreateBox(1, 1, 1)
	Apply(m, asset.TextureSet{})

	require.NotNil(t, m.Material)
	assert.Equal(t, float32(0.5), m.Material.Roughness)
	assert.Equal(t, float32(0.1), m.Material.Metalness)
	assert.Equal(t, float32(0.5), m.Material.EnvMapIntensity)
	assert.Empty(t, m.Material.Textures())
	assert.False(t, m.CastShadow)
	assert.False(t, m.HasUV2)
}

func TestApplyBindsChannels(t *testing.T) {
	set := asset.TextureSet{}
	for _, r := range asset.AllRoles {
		set[r] = tex(string(r))
	}
	m := scene.CreateBox(1, 1, 1)
	Apply(m, set)

	mat := m.Material
	assert.Same(t, set[asset.RoleDiffuse], mat.BaseColorMap)
	assert.Same(t, set[asset.RoleBump], mat.BumpMap)
	assert.Same(t, set[asset.RoleNormal], mat.NormalMap)
	assert.Same(t, set[asset.RoleInternal], mat.AOMap)
	assert.Same(t, set[asset.RoleOcclusion], mat.OcclusionMap)
	assert.Same(t, set[asset.RoleSpecular], mat.RoughnessMap)
	assert.Same(t, set[asset.RoleHeight], mat.DisplacementMap)
	assert.Zero(t, mat.DisplacementScale)
	assert.Equal(t, float32(0.5), mat.AOMapIntensity)
	assert.Equal(t, float32(1), mat.EnvMapIntensity)
	assert.Equal(t, float32(0.5), mat.Roughness)
	assert.Equal(t, float32(0.1), mat.Metalness)
	assert.True(t, m.CastShadow)
	assert.True(t, m.ReceiveShadow)
}

func TestApplyPartialSet(t *testing.T) {
	set := asset.TextureSet{asset.RoleDiffuse: tex("diffuse")}
	m := scene.CreateBox(1, 1, 1)
	Apply(m, set)

	assert.NotNil(t, m.Material.BaseColorMap)
	assert.Nil(t, m.Material.BumpMap)
	assert.Nil(t, m.Material.AOMap)
	assert.Len(t, m.Material.Textures(), 1)
}

func TestApplyCopiesUV2(t *testing.T) {
	m := scene.CreateBox(1, 1, 1)
	m.Vertices[0].UV = [2]float32{0.25, 0.75}
	Apply(m, asset.TextureSet{asset.RoleDiffuse: tex("diffuse")})

	assert.True(t, m.HasUV2)
	for _, v := range m.Vertices {
		assert.Equal(t, v.UV, v.UV2)
	}
}

func TestApplyKeepsExistingUV2(t *testing.T) {
	m := scene.CreateBox(1, 1, 1)
	m.HasUV2 = true
	m.Vertices[0].UV2 = [2]float32{0.9, 0.9}
	Apply(m, asset.TextureSet{asset.RoleInternal: tex("internal")})

	assert.Equal(t, float32(0.9), m.Vertices[0].UV2[0])
}

func TestApplyAllAndSetMetalness(t *testing.T) {
	root, upper, sole := model()
	n := ApplyAll(root, asset.TextureSet{asset.RoleDiffuse: tex("diffuse")})
	assert.Equal(t, 2, n)
	assert.NotSame(t, upper.Material, sole.Material)

	SetMetalness(root, 0.8)
	assert.Equal(t, float32(0.8), upper.Material.Metalness)
	assert.Equal(t, float32(0.8), sole.Material.Metalness)

	// Idempotent.
	SetMetalness(root, 0.8)
	assert.Equal(t, float32(0.8), sole.Material.Metalness)
}

func TestSetMetalnessWithoutMaterial(t *testing.T) {
	root, upper, _ := model()
	SetMetalness(root, 0.3)
	require.NotNil(t, upper.Material)
	assert.Equal(t, float32(0.3), upper.Material.Metalness)
}
