// Package materials binds a loaded texture set onto model meshes.
package materials

import (
	"go.uber.org/zap"

	"product-viewer/asset"
	"product-viewer/core"
	"product-viewer/internal/logger"
	"product-viewer/scene"
)

const (
	aoIntensity       = 0.5
	roughness         = 0.5
	metalness         = 0.1
	envMapIntensity   = 1.0
	displacementScale = 0
)

// Apply replaces mesh's material with one built from set. An empty set
// installs the default material and leaves the rest of the mesh alone.
func Apply(mesh *scene.Mesh, set asset.TextureSet) {
	if len(set) == 0 {
		logger.Log.Named("materials").Debug("no textures available, using default material",
			zap.String("mesh", mesh.Name))
		mesh.Material = scene.DefaultMaterial()
		return
	}

	mesh.Material = &scene.StandardMaterial{
		Name:              mesh.Name,
		Color:             core.ColorWhite,
		Roughness:         roughness,
		Metalness:         metalness,
		EnvMapIntensity:   envMapIntensity,
		BaseColorMap:      set[asset.RoleDiffuse],
		BumpMap:           set[asset.RoleBump],
		BumpScale:         1,
		NormalMap:         set[asset.RoleNormal],
		AOMap:             set[asset.RoleInternal],
		AOMapIntensity:    aoIntensity,
		OcclusionMap:      set[asset.RoleOcclusion],
		RoughnessMap:      set[asset.RoleSpecular],
		DisplacementMap:   set[asset.RoleHeight],
		DisplacementScale: displacementScale,
	}
	mesh.CastShadow = true
	mesh.ReceiveShadow = true
	// The AO channel samples the second UV set.
	mesh.EnsureUV2()
}

// ApplyAll applies set to every mesh under root and returns how many meshes
// were touched.
func ApplyAll(root *scene.Node, set asset.TextureSet) int {
	meshes := root.Meshes()
	for _, m := range meshes {
		Apply(m, set)
	}
	logger.Log.Named("materials").Info("materials applied",
		zap.Int("meshes", len(meshes)),
		zap.Int("textures", len(set)))
	return len(meshes)
}

// SetMetalness writes v to every mesh material under root. Meshes without
// a material get the default one first.
func SetMetalness(root *scene.Node, v float32) {
	for _, m := range root.Meshes() {
		if m.Material == nil {
			m.Material = scene.DefaultMaterial()
		}
		m.Material.Metalness = v
	}
}
