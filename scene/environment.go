package scene

// Mapping selects how an environment image is projected onto directions.
type Mapping int

const (
	MappingEquirectangular Mapping = iota
)

func (m Mapping) String() string {
	switch m {
	case MappingEquirectangular:
		return "equirectangular"
	}
	return "unknown"
}

// Environment is a high dynamic range image used for image-based lighting and
// reflections. Pixels are linear RGB float triples, row-major, top to bottom.
type Environment struct {
	Name    string
	Width   int
	Height  int
	Pixels  []float32
	Mapping Mapping
	// GLID is set by the OpenGL backend after upload.
	GLID uint32
}

// At returns the linear RGB value at pixel (x, y).
func (e *Environment) At(x, y int) (r, g, b float32) {
	i := (y*e.Width + x) * 3
	return e.Pixels[i], e.Pixels[i+1], e.Pixels[i+2]
}
