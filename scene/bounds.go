package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// EmptyAABB returns an inverted box that any point expands.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

func (b AABB) IsEmpty() bool {
	return b.Max.X() < b.Min.X() || b.Max.Y() < b.Min.Y() || b.Max.Z() < b.Min.Z()
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// MaxDim is the largest edge of the box.
func (b AABB) MaxDim() float32 {
	s := b.Size()
	return max(s.X(), s.Y(), s.Z())
}

func (b AABB) ExpandByPoint(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

func (b AABB) Union(o AABB) AABB {
	if o.IsEmpty() {
		return b
	}
	return b.ExpandByPoint(o.Min).ExpandByPoint(o.Max)
}

// ComputeAABB computes the world-space AABB for a mesh transformed by worldMatrix.
// If the mesh has a cached local AABB, it transforms the 8 corners.
// Otherwise it falls back to iterating all vertices.
func ComputeAABB(mesh *Mesh, worldMatrix mgl32.Mat4) AABB {
	if mesh.HasLocalAABB {
		return transformAABB(mesh.LocalAABB, worldMatrix)
	}
	out := EmptyAABB()
	for _, v := range mesh.Vertices {
		out = out.ExpandByPoint(mgl32.TransformCoordinate(v.Position, worldMatrix))
	}
	return out
}

// transformAABB transforms a local AABB by a world matrix by testing all 8 corners.
func transformAABB(local AABB, m mgl32.Mat4) AABB {
	mn, mx := local.Min, local.Max
	out := EmptyAABB()
	for i := 0; i < 8; i++ {
		c := mn
		if i&1 != 0 {
			c[0] = mx[0]
		}
		if i&2 != 0 {
			c[1] = mx[1]
		}
		if i&4 != 0 {
			c[2] = mx[2]
		}
		out = out.ExpandByPoint(mgl32.TransformCoordinate(c, m))
	}
	return out
}

// ComputeBounds returns the world-space box enclosing every mesh under node.
// The box is empty when the subtree has no geometry.
func ComputeBounds(node *Node) AABB {
	out := EmptyAABB()
	node.Traverse(func(n *Node) {
		if n.Mesh == nil || len(n.Mesh.Vertices) == 0 {
			return
		}
		out = out.Union(ComputeAABB(n.Mesh, n.GetWorldMatrix()))
	})
	return out
}
