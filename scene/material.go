package scene

import "product-viewer/core"

// StandardMaterial is a metallic-roughness PBR surface description. Texture
// channels are optional; a nil channel is not sampled.
type StandardMaterial struct {
	Name      string
	Color     core.Color // base color, multiplied with BaseColorMap when set
	Roughness float32    // 0 = mirror, 1 = fully rough
	Metalness float32    // 0 = dielectric, 1 = metal

	// EnvMapIntensity scales the contribution of the scene environment.
	EnvMapIntensity float32

	BaseColorMap *Texture
	BumpMap      *Texture
	BumpScale    float32
	NormalMap    *Texture

	// AOMap is sampled with the secondary UV set (Vertex.UV2).
	AOMap          *Texture
	AOMapIntensity float32
	OcclusionMap   *Texture

	// RoughnessMap multiplies Roughness by its green channel.
	RoughnessMap *Texture

	DisplacementMap   *Texture
	DisplacementScale float32
}

// DefaultMaterial returns the untextured fallback surface.
func DefaultMaterial() *StandardMaterial {
	return &StandardMaterial{
		Name:            "Default",
		Color:           core.ColorWhite,
		Roughness:       0.5,
		Metalness:       0.1,
		EnvMapIntensity: 0.5,
		BumpScale:       1,
		AOMapIntensity:  1,
	}
}

// Textures returns every non-nil texture channel.
func (m *StandardMaterial) Textures() []*Texture {
	var out []*Texture
	for _, t := range []*Texture{m.BaseColorMap, m.BumpMap, m.NormalMap, m.AOMap, m.OcclusionMap, m.RoughnessMap, m.DisplacementMap} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}
