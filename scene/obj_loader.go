package scene

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"product-viewer/core"
)

// objFace is an already-triangulated face (three vertex references).
type objFace struct {
	vIdx, vtIdx, vnIdx [3]int // 0-based position / UV / normal indices (-1 = absent)
}

// LoadOBJ parses a Wavefront .obj file and returns one Mesh per object/group.
// A companion .mtl file is loaded automatically if referenced via "mtllib".
// The returned meshes are CPU-side only; upload GPU resources via the renderer.
func LoadOBJ(path string) ([]*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)

	// Indexed OBJ data pools
	var positions []mgl32.Vec3
	var normals []mgl32.Vec3
	var uvs []mgl32.Vec2

	// MTL materials (loaded on first "mtllib" directive)
	materials := map[string]*StandardMaterial{}

	// Accumulate per-object data
	type objObject struct {
		name    string
		matName string
		faces   []objFace
	}

	var objects []objObject
	cur := &objObject{name: "default"}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				continue
			}
			x, _ := strconv.ParseFloat(fields[1], 32)
			y, _ := strconv.ParseFloat(fields[2], 32)
			z, _ := strconv.ParseFloat(fields[3], 32)
			positions = append(positions, mgl32.Vec3{float32(x), float32(y), float32(z)})

		case "vn":
			if len(fields) < 4 {
				continue
			}
			x, _ := strconv.ParseFloat(fields[1], 32)
			y, _ := strconv.ParseFloat(fields[2], 32)
			z, _ := strconv.ParseFloat(fields[3], 32)
			normals = append(normals, mgl32.Vec3{float32(x), float32(y), float32(z)})

		case "vt":
			if len(fields) < 3 {
				continue
			}
			u, _ := strconv.ParseFloat(fields[1], 32)
			v, _ := strconv.ParseFloat(fields[2], 32)
			uvs = append(uvs, mgl32.Vec2{float32(u), float32(v)})

		case "o", "g":
			// Push the current object if it has faces, then start a new one
			if len(cur.faces) > 0 {
				objects = append(objects, *cur)
			}
			name := "default"
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &objObject{name: name, matName: cur.matName}

		case "usemtl":
			if len(fields) > 1 {
				cur.matName = fields[1]
			}

		case "mtllib":
			if len(fields) > 1 {
				mtlPath := filepath.Join(dir, fields[1])
				loaded, err := loadMTL(mtlPath, dir)
				if err == nil {
					for k, v := range loaded {
						materials[k] = v
					}
				}
			}

		case "f":
			// Fan-triangulate polygon (handles 3+ vertices)
			if len(fields) < 4 {
				continue
			}
			type fv struct{ v, vt, vn int }
			var fverts []fv
			for _, tok := range fields[1:] {
				fverts = append(fverts, parseFaceVertex(tok, len(positions), len(uvs), len(normals)))
			}
			// Fan triangulation: 0-1-2, 0-2-3, 0-3-4, ...
			for i := 1; i+1 < len(fverts); i++ {
				f0, f1, f2 := fverts[0], fverts[i], fverts[i+1]
				cur.faces = append(cur.faces, objFace{
					vIdx:  [3]int{f0.v, f1.v, f2.v},
					vtIdx: [3]int{f0.vt, f1.vt, f2.vt},
					vnIdx: [3]int{f0.vn, f1.vn, f2.vn},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}

	// Push final object
	if len(cur.faces) > 0 {
		objects = append(objects, *cur)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", path)
	}

	// Convert each OBJ object to a scene.Mesh
	meshes := make([]*Mesh, 0, len(objects))
	for _, obj := range objects {
		mesh := buildMeshFromOBJ(obj.name, obj.faces, positions, normals, uvs)

		if mat, ok := materials[obj.matName]; ok {
			mesh.Material = mat
		}
		meshes = append(meshes, mesh)
	}

	return meshes, nil
}

// parseFaceVertex parses one face vertex token: "v", "v/vt", "v//vn", "v/vt/vn".
// Returns 0-based indices (-1 if absent). OBJ is 1-based; negative indices
// count back from the current pool sizes.
func parseFaceVertex(tok string, nv, nvt, nvn int) struct{ v, vt, vn int } {
	parseIdx := func(s string, pool int) int {
		if s == "" {
			return -1
		}
		n, err := strconv.Atoi(s)
		switch {
		case err != nil || n == 0:
			return -1
		case n > 0:
			return n - 1
		default:
			return pool + n
		}
	}
	parts := strings.Split(tok, "/")
	res := struct{ v, vt, vn int }{v: -1, vt: -1, vn: -1}
	if len(parts) > 0 {
		res.v = parseIdx(parts[0], nv)
	}
	if len(parts) > 1 {
		res.vt = parseIdx(parts[1], nvt)
	}
	if len(parts) > 2 {
		res.vn = parseIdx(parts[2], nvn)
	}
	return res
}

// buildMeshFromOBJ converts parsed face data into a deduplicated Mesh.
func buildMeshFromOBJ(name string, faces []objFace, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) *Mesh {
	type key struct{ v, vt, vn int }
	vertMap := map[key]uint32{}
	var vertices []core.Vertex
	var indices []uint32

	hasUV := len(uvs) > 0
	for _, face := range faces {
		for c := 0; c < 3; c++ {
			k := key{face.vIdx[c], face.vtIdx[c], face.vnIdx[c]}
			if idx, ok := vertMap[k]; ok {
				indices = append(indices, idx)
				continue
			}
			v := core.Vertex{Normal: mgl32.Vec3{0, 1, 0}, Color: core.ColorWhite}
			if k.v >= 0 && k.v < len(positions) {
				v.Position = positions[k.v]
			}
			if k.vn >= 0 && k.vn < len(normals) {
				v.Normal = normals[k.vn]
			}
			if k.vt >= 0 && k.vt < len(uvs) {
				v.UV = uvs[k.vt]
			} else {
				hasUV = false
			}
			idx := uint32(len(vertices))
			vertices = append(vertices, v)
			vertMap[k] = idx
			indices = append(indices, idx)
		}
	}

	if len(normals) == 0 {
		generateSmoothNormals(vertices, indices)
	}

	m := CreateMeshFromData(name, vertices, indices)
	m.HasUV = hasUV
	if hasUV {
		ComputeTangents(m)
	}
	return m
}

// generateSmoothNormals computes area-weighted normals and writes them to the vertex slice.
func generateSmoothNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0 := vertices[i0].Position
		v1 := vertices[i1].Position
		v2 := vertices[i2].Position
		n := v1.Sub(v0).Cross(v2.Sub(v0)) // area-weighted normal
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		if accum[i].Len() > 0 {
			vertices[i].Normal = accum[i].Normalize()
		}
	}
}

// ── MTL loader ───────────────────────────────────────────────────────────────

func loadMTL(path, dir string) (map[string]*StandardMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mats := map[string]*StandardMaterial{}
	var cur *StandardMaterial

	texture := func(fields []string, cs ColorSpace) *Texture {
		// Options such as "-bm 0.5" precede the file name.
		tex, err := LoadTexture(filepath.Join(dir, fields[len(fields)-1]))
		if err != nil {
			return nil
		}
		tex.ColorSpace = cs
		return tex
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) > 1 {
				cur = DefaultMaterial()
				cur.Name = fields[1]
				cur.EnvMapIntensity = 1
				mats[fields[1]] = cur
			}
			continue
		}
		if cur == nil || len(fields) < 2 {
			continue
		}

		switch fields[0] {
		case "Kd":
			if len(fields) >= 4 {
				r, _ := strconv.ParseFloat(fields[1], 32)
				g, _ := strconv.ParseFloat(fields[2], 32)
				b, _ := strconv.ParseFloat(fields[3], 32)
				cur.Color = core.Color{R: float32(r), G: float32(g), B: float32(b), A: 1}
			}
		case "Ns":
			// Blinn-Phong exponent to roughness.
			ns, _ := strconv.ParseFloat(fields[1], 64)
			cur.Roughness = float32(math.Sqrt(2 / (math.Max(ns, 0) + 2)))
		case "Pr":
			r, _ := strconv.ParseFloat(fields[1], 32)
			cur.Roughness = float32(r)
		case "Pm":
			m, _ := strconv.ParseFloat(fields[1], 32)
			cur.Metalness = float32(m)
		case "map_Kd":
			cur.BaseColorMap = texture(fields, ColorSpaceSRGB)
		case "map_bump", "bump", "map_Bump":
			cur.BumpMap = texture(fields, ColorSpaceLinear)
		case "norm", "map_Kn":
			cur.NormalMap = texture(fields, ColorSpaceLinear)
		case "map_Pr":
			cur.RoughnessMap = texture(fields, ColorSpaceLinear)
		case "map_Ka":
			cur.OcclusionMap = texture(fields, ColorSpaceLinear)
		}
	}

	return mats, scanner.Err()
}
