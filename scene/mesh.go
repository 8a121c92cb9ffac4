package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"product-viewer/core"
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name       string
	Vertices   []core.Vertex
	Indices    []uint32
	IndexCount uint32

	// HasUV and HasUV2 report which texture coordinate sets the source
	// geometry carried. Vertex.UV2 is only meaningful when HasUV2 is set.
	HasUV  bool
	HasUV2 bool

	CastShadow    bool
	ReceiveShadow bool

	// Cached local-space AABB (computed by CreateMeshFromData).
	LocalAABB    AABB
	HasLocalAABB bool

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	Material *StandardMaterial

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	GPUData interface{}
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space AABB.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:       name,
		Vertices:   vertices,
		Indices:    indices,
		IndexCount: uint32(len(indices)),
	}
	if len(vertices) > 0 {
		m.LocalAABB = computeLocalAABB(vertices)
		m.HasLocalAABB = true
	}
	return m
}

// EnsureUV2 copies the primary UV set into the secondary slot when the mesh
// has UVs but no second set. It reports whether a copy happened.
func (m *Mesh) EnsureUV2() bool {
	if !m.HasUV || m.HasUV2 {
		return false
	}
	for i := range m.Vertices {
		m.Vertices[i].UV2 = m.Vertices[i].UV
	}
	m.HasUV2 = true
	return true
}

// computeLocalAABB returns the tight AABB of the given vertex positions.
func computeLocalAABB(vertices []core.Vertex) AABB {
	box := EmptyAABB()
	for _, v := range vertices {
		box = box.ExpandByPoint(v.Position)
	}
	return box
}

// CreateBox generates an axis-aligned box centered at the origin with UVs on
// every face.
func CreateBox(width, height, depth float32) *Mesh {
	hx, hy, hz := width/2, height/2, depth/2

	type face struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}
	faces := []face{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}, {-hx, hy, -hz}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{hx, -hy, hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}}},
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	vertices := make([]core.Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, c := range f.corners {
			vertices = append(vertices, core.Vertex{
				Position: c,
				Normal:   f.normal,
				UV:       uvs[i],
				Color:    core.ColorWhite,
			})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}

	m := CreateMeshFromData("Box", vertices, indices)
	m.HasUV = true
	ComputeTangents(m)
	return m
}
