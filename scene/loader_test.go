package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestGLB(t *testing.T, withUV2 bool) string {
	t.Helper()
	doc := gltf.NewDocument()
	attrs := map[string]int{
		gltf.POSITION:   modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {2, 0, 0}, {0, 4, 0}}),
		gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}}),
	}
	if withUV2 {
		attrs[gltf.TEXCOORD_1] = modeler.WriteTextureCoord(doc, [][2]float32{{0.5, 0.5}, {0.5, 0.5}, {0.5, 0.5}})
	}
	doc.Meshes = []*gltf.Mesh{{
		Name: "sole",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2})),
			Attributes: attrs,
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "shoe", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}

	path := filepath.Join(t.TempDir(), "shoe.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestLoadGLTF(t *testing.T) {
	res, err := LoadGLTF(writeTestGLB(t, false))
	require.NoError(t, err)
	require.Len(t, res.Roots, 1)

	root := res.Roots[0]
	assert.Equal(t, "shoe", root.Name)
	require.NotNil(t, root.Mesh)
	assert.True(t, root.Mesh.HasUV)
	assert.False(t, root.Mesh.HasUV2)
	assert.Equal(t, []uint32{0, 1, 2}, root.Mesh.Indices)
	assert.Equal(t, float32(4), ComputeBounds(root).MaxDim())
}

func TestLoadGLTFSecondUVSet(t *testing.T) {
	res, err := LoadGLTF(writeTestGLB(t, true))
	require.NoError(t, err)
	m := res.Roots[0].Mesh
	assert.True(t, m.HasUV2)
	assert.Equal(t, float32(0.5), m.Vertices[1].UV2.X())
}

func TestLoadGLTFSkipsBrokenPrimitives(t *testing.T) {
	t.Run("dangling accessor", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shoe.gltf")
		doc := `{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[0]}],` +
			`"nodes":[{"name":"shoe","mesh":0}],` +
			`"meshes":[{"name":"sole","primitives":[{"attributes":{"POSITION":7}}]}]}`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		var res *GLTFResult
		var err error
		require.NotPanics(t, func() { res, err = LoadGLTF(path) })
		require.NoError(t, err)
		require.Len(t, res.Roots, 1)
		assert.Nil(t, res.Roots[0].Mesh)
	})

	t.Run("index past vertex count", func(t *testing.T) {
		doc := gltf.NewDocument()
		doc.Meshes = []*gltf.Mesh{{
			Name: "sole",
			Primitives: []*gltf.Primitive{{
				Indices: gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 5})),
				Attributes: map[string]int{
					gltf.POSITION: modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}),
				},
			}},
		}}
		doc.Nodes = []*gltf.Node{{Name: "shoe", Mesh: gltf.Index(0)}}
		doc.Scenes[0].Nodes = []int{0}
		path := filepath.Join(t.TempDir(), "shoe.glb")
		require.NoError(t, gltf.SaveBinary(doc, path))

		res, err := LoadGLTF(path)
		require.NoError(t, err)
		require.Len(t, res.Roots, 1)
		assert.Nil(t, res.Roots[0].Mesh)
	})
}

func TestLoadGLTFMissingFile(t *testing.T) {
	_, err := LoadGLTF(filepath.Join(t.TempDir(), "nope.glb"))
	assert.Error(t, err)
}

const testOBJ = `# quad
mtllib quad.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
o quad
usemtl leather
f 1/1 2/2 3/3 -1/-1
`

const testMTL = `newmtl leather
Kd 0.5 0.25 0.125
Pm 0.3
`

func TestLoadOBJ(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.obj"), []byte(testOBJ), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.mtl"), []byte(testMTL), 0o644))

	meshes, err := LoadOBJ(filepath.Join(dir, "quad.obj"))
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	m := meshes[0]
	assert.Equal(t, "quad", m.Name)
	assert.Len(t, m.Vertices, 4)
	assert.Len(t, m.Indices, 6)
	assert.True(t, m.HasUV)
	// No vn lines: normals are generated facing +Z.
	assert.InDelta(t, 1, m.Vertices[0].Normal.Z(), 1e-5)

	require.NotNil(t, m.Material)
	assert.Equal(t, float32(0.5), m.Material.Color.R)
	assert.InDelta(t, 0.3, m.Material.Metalness, 1e-6)
}

func TestLoadOBJNoGeometry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.obj")
	require.NoError(t, os.WriteFile(path, []byte("# nothing\n"), 0o644))
	_, err := LoadOBJ(path)
	assert.Error(t, err)
}
