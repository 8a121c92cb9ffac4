package scene

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"product-viewer/core"
	"product-viewer/internal/logger"
)

// GLTFResult holds the nodes and textures loaded from a .glb / .gltf file.
type GLTFResult struct {
	Roots    []*Node    // top-level nodes
	Textures []*Texture // textures referenced by materials
}

// LoadGLTF opens a .glb or .gltf file and returns its scene graph. Mesh
// geometry (including TEXCOORD_1), metallic-roughness materials and the node
// hierarchy are populated. Broken images or primitives are skipped with a
// warning; only an unreadable document is an error.
func LoadGLTF(path string) (*GLTFResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	log := logger.Log.Named("gltf").With(zap.String("path", path))
	dir := filepath.Dir(path)
	result := &GLTFResult{}

	// ── 1. Textures ───────────────────────────────────────────────────────────
	texCache := make([]*Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil || *gt.Source >= len(doc.Images) {
			continue
		}
		img := doc.Images[*gt.Source]
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("gltf_img_%d", *gt.Source)
		}

		var raw []byte
		switch {
		case img.BufferView != nil && *img.BufferView >= len(doc.BufferViews):
			err = fmt.Errorf("buffer view %d out of range", *img.BufferView)
		case img.BufferView != nil:
			raw, err = modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		case img.IsEmbeddedResource():
			raw, err = img.MarshalData()
		case img.URI != "":
			var tex *Texture
			tex, err = LoadTexture(filepath.Join(dir, img.URI))
			if err == nil {
				texCache[i] = tex
				result.Textures = append(result.Textures, tex)
			}
		}
		if err != nil {
			log.Warn("skipping image", zap.Int("image", *gt.Source), zap.Error(err))
			err = nil
			continue
		}
		if raw == nil {
			continue
		}
		tex, derr := decodeImageBytes(name, raw)
		if derr != nil {
			log.Warn("skipping image", zap.Int("image", *gt.Source), zap.Error(derr))
			continue
		}
		texCache[i] = tex
		result.Textures = append(result.Textures, tex)
	}

	lookup := func(idx int) *Texture {
		if idx >= 0 && idx < len(texCache) {
			return texCache[idx]
		}
		return nil
	}

	// ── 2. Materials ─────────────────────────────────────────────────────────
	matCache := make([]*StandardMaterial, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := DefaultMaterial()
		mat.Name = gm.Name
		mat.EnvMapIntensity = 1

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.Color = core.Color{
				R: float32(cf[0]), G: float32(cf[1]),
				B: float32(cf[2]), A: float32(cf[3]),
			}
			mat.Roughness = float32(pbr.RoughnessFactorOrDefault())
			mat.Metalness = float32(pbr.MetallicFactorOrDefault())
			if pbr.BaseColorTexture != nil {
				if tex := lookup(pbr.BaseColorTexture.Index); tex != nil {
					tex.ColorSpace = ColorSpaceSRGB
					mat.BaseColorMap = tex
				}
			}
			if pbr.MetallicRoughnessTexture != nil {
				mat.RoughnessMap = lookup(pbr.MetallicRoughnessTexture.Index)
			}
		}
		if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
			mat.NormalMap = lookup(*gm.NormalTexture.Index)
		}
		if gm.OcclusionTexture != nil && gm.OcclusionTexture.Index != nil {
			mat.OcclusionMap = lookup(*gm.OcclusionTexture.Index)
		}
		matCache[i] = mat
	}

	// ── 3. Mesh primitives ────────────────────────────────────────────────────
	meshPrims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				log.Warn("skipping primitive", zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(err))
				continue
			}
			if m.HasUV {
				ComputeTangents(m)
			}
			if prim.Material != nil && *prim.Material < len(matCache) {
				m.Material = matCache[*prim.Material]
			}
			meshPrims[mi] = append(meshPrims[mi], m)
		}
	}

	// ── 4. Nodes ──────────────────────────────────────────────────────────────
	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := NewNode(name)

		t := gn.TranslationOrDefault()
		n.SetPosition(mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])})

		sc := gn.ScaleOrDefault()
		n.SetScale(mgl32.Vec3{float32(sc[0]), float32(sc[1]), float32(sc[2])})

		r := gn.RotationOrDefault() // [x, y, z, w]
		n.SetRotation(mgl32.Quat{
			W: float32(r[3]),
			V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
		})

		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			prims := meshPrims[*gn.Mesh]
			switch len(prims) {
			case 0:
			case 1:
				n.Mesh = prims[0]
			default:
				// Multiple primitives → one child node per primitive
				for pi, p := range prims {
					child := NewNode(fmt.Sprintf("%s_prim%d", name, pi))
					child.Mesh = p
					n.AddChild(child)
				}
			}
		}
		nodes[i] = n
	}

	for i, gn := range doc.Nodes {
		for _, childIdx := range gn.Children {
			if childIdx < len(nodes) {
				nodes[i].AddChild(nodes[childIdx])
			}
		}
	}

	// ── 5. Root nodes ─────────────────────────────────────────────────────────
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, rootIdx := range doc.Scenes[*doc.Scene].Nodes {
			if rootIdx < len(nodes) {
				result.Roots = append(result.Roots, nodes[rootIdx])
			}
		}
	} else {
		// No default scene: collect all parentless nodes
		for _, n := range nodes {
			if n.Parent == nil {
				result.Roots = append(result.Roots, n)
			}
		}
	}

	return result, nil
}

// loadGLTFPrimitive converts one glTF mesh primitive into a scene.Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	posAcc, err := gltfAccessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, posAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs, uvs2 [][2]float32

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acc, err := gltfAccessor(doc, idx)
		if err != nil {
			return nil, fmt.Errorf("NORMAL: %w", err)
		}
		normals, _ = modeler.ReadNormal(doc, acc, nil)
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acc, err := gltfAccessor(doc, idx)
		if err != nil {
			return nil, fmt.Errorf("TEXCOORD_0: %w", err)
		}
		uvs, _ = modeler.ReadTextureCoord(doc, acc, nil)
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_1]; ok {
		acc, err := gltfAccessor(doc, idx)
		if err != nil {
			return nil, fmt.Errorf("TEXCOORD_1: %w", err)
		}
		uvs2, _ = modeler.ReadTextureCoord(doc, acc, nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: mgl32.Vec3{p[0], p[1], p[2]},
			Normal:   mgl32.Vec3{0, 1, 0},
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			v.Normal = mgl32.Vec3(normals[i])
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2(uvs[i])
		}
		if i < len(uvs2) {
			v.UV2 = mgl32.Vec2(uvs2[i])
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		acc, err := gltfAccessor(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		indices, err = modeler.ReadIndices(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		for _, i := range indices {
			if int(i) >= len(verts) {
				return nil, fmt.Errorf("indices: vertex %d out of range (%d vertices)", i, len(verts))
			}
		}
	}

	m := CreateMeshFromData(name, verts, indices)
	m.HasUV = len(uvs) == len(positions) && len(uvs) > 0
	m.HasUV2 = len(uvs2) == len(positions) && len(uvs2) > 0
	return m, nil
}

// gltfAccessor resolves an accessor index, checking it and its buffer view
// against the document.
func gltfAccessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range (%d accessors)", idx, len(doc.Accessors))
	}
	acc := doc.Accessors[idx]
	if acc == nil {
		return nil, fmt.Errorf("accessor %d is empty", idx)
	}
	if bv := acc.BufferView; bv != nil {
		if *bv < 0 || *bv >= len(doc.BufferViews) {
			return nil, fmt.Errorf("accessor %d: buffer view %d out of range", idx, *bv)
		}
		if b := doc.BufferViews[*bv].Buffer; b < 0 || b >= len(doc.Buffers) {
			return nil, fmt.Errorf("accessor %d: buffer %d out of range", idx, b)
		}
	}
	return acc, nil
}

// decodeImageBytes decodes an encoded image into an RGBA8 scene.Texture.
func decodeImageBytes(name string, data []byte) (*Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return TextureFromImage(name, img), nil
}
