package scene

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/draw"
)

// ColorSpace tells the backend how to interpret stored texel values.
type ColorSpace int

const (
	ColorSpaceLinear ColorSpace = iota
	ColorSpaceSRGB
)

func (c ColorSpace) String() string {
	if c == ColorSpaceSRGB {
		return "srgb"
	}
	return "linear"
}

// Texture holds CPU-side pixel data for a 2D texture.
// GLID is set by the OpenGL backend after upload; do not access directly.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels     []byte
	ColorSpace ColorSpace
	// GLID is the OpenGL texture object ID, set by opengl.UploadTexture.
	GLID uint32
}

// TextureFromImage converts any decoded image to an RGBA8 Texture.
func TextureFromImage(name string, img image.Image) *Texture {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) || rgba.Stride != 4*bounds.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return &Texture{
		Name:   name,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: rgba.Pix,
	}
}

// LoadTexture reads an image file from disk and returns a CPU-side Texture.
// Formats are those registered with the image package.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return TextureFromImage(path, img), nil
}
