package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-viewer/core"
)

func TestComputeBoundsFollowsHierarchy(t *testing.T) {
	root := NewNode("root")
	child := NewNode("child")
	child.Mesh = CreateBox(2, 4, 6)
	root.AddChild(child)

	b := ComputeBounds(root)
	assert.True(t, b.Center().ApproxEqual(mgl32.Vec3{}))
	assert.True(t, b.Size().ApproxEqual(mgl32.Vec3{2, 4, 6}))
	assert.Equal(t, float32(6), b.MaxDim())

	root.SetPosition(mgl32.Vec3{1, 0, 0})
	child.SetScale(mgl32.Vec3{2, 2, 2})
	b = ComputeBounds(root)
	assert.True(t, b.Center().ApproxEqual(mgl32.Vec3{1, 0, 0}))
	assert.True(t, b.Size().ApproxEqual(mgl32.Vec3{4, 8, 12}))
}

func TestComputeBoundsEmpty(t *testing.T) {
	root := NewNode("root")
	root.AddChild(NewNode("empty"))
	assert.True(t, ComputeBounds(root).IsEmpty())
}

func TestEnsureUV2(t *testing.T) {
	m := CreateBox(1, 1, 1)
	require.True(t, m.HasUV)
	require.False(t, m.HasUV2)

	assert.True(t, m.EnsureUV2())
	assert.True(t, m.HasUV2)
	for _, v := range m.Vertices {
		assert.Equal(t, v.UV, v.UV2)
	}
	assert.False(t, m.EnsureUV2(), "second call is a no-op")

	noUV := CreateMeshFromData("bare", []core.Vertex{{}, {}, {}}, nil)
	assert.False(t, noUV.EnsureUV2())
	assert.False(t, noUV.HasUV2)
}

func TestEnsureUV2KeepsExistingSet(t *testing.T) {
	m := CreateBox(1, 1, 1)
	m.HasUV2 = true
	m.Vertices[0].UV2 = mgl32.Vec2{0.25, 0.75}
	assert.False(t, m.EnsureUV2())
	assert.Equal(t, mgl32.Vec2{0.25, 0.75}, m.Vertices[0].UV2)
}

func TestComputeTangentsOrthonormal(t *testing.T) {
	m := CreateBox(1, 1, 1)
	for _, v := range m.Vertices {
		assert.InDelta(t, 1, v.Tangent.Len(), 1e-4)
		assert.InDelta(t, 0, v.Tangent.Dot(v.Normal), 1e-4)
	}
}

func TestNodeReparent(t *testing.T) {
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	a.AddChild(c)
	b.AddChild(c)
	assert.Empty(t, a.Children)
	assert.Same(t, b, c.Parent)
	assert.Same(t, c, b.Find("c"))
	assert.NotEqual(t, a.Id, b.Id)
}

func TestCameraProjection(t *testing.T) {
	cam := NewPerspectiveCamera(30, 2, 0.01, 1000)
	cam.Position = mgl32.Vec3{0, 0, 10}

	p := mgl32.TransformCoordinate(mgl32.Vec3{}, cam.ViewProjection())
	assert.InDelta(t, 0, p.X(), 1e-5)
	assert.InDelta(t, 0, p.Y(), 1e-5)

	before := cam.Projection()
	cam.Aspect = 1
	cam.UpdateProjection()
	assert.NotEqual(t, before, cam.Projection())
}

func TestShadowCameraUpdateProjection(t *testing.T) {
	sc := NewShadowCamera()
	sc.Left, sc.Right, sc.Top, sc.Bottom, sc.Far = -2, 2, 2, -2, 8
	sc.UpdateProjection()
	assert.Equal(t, mgl32.Ortho(-2, 2, -2, 2, 0.5, 8), sc.Projection())
}

func TestDirectionalLightDirection(t *testing.T) {
	l := NewDirectionalLight("key", core.ColorWhite, 1)
	l.Position = mgl32.Vec3{0, 5, 0}
	assert.True(t, l.Direction().ApproxEqual(mgl32.Vec3{0, -1, 0}))
	// Straight-down lights must still produce a finite light-space matrix.
	vp := l.ShadowViewProjection()
	for _, f := range vp {
		assert.False(t, f != f, "NaN in shadow matrix")
	}
}

func TestSceneDefaults(t *testing.T) {
	s := NewScene()
	assert.Equal(t, core.ColorFromBytes(30, 30, 30), s.Background)
	assert.Nil(t, s.ShadowCaster())

	key := NewDirectionalLight("key", core.ColorWhite, 1)
	key.CastShadow = true
	s.AddLight(NewDirectionalLight("fill", core.ColorWhite, 1))
	s.AddLight(key)
	assert.Same(t, key, s.ShadowCaster())
}
