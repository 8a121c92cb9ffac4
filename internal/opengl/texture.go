package opengl

import (
	"errors"
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"product-viewer/scene"
)

// UploadTexture uploads tex and sets its GLID. Color textures tagged sRGB are
// stored in an sRGB internal format so sampling returns linear values.
// The GL context must be current.
func UploadTexture(tex *scene.Texture) error {
	if tex == nil {
		return errors.New("nil texture")
	}
	if len(tex.Pixels) < tex.Width*tex.Height*4 || len(tex.Pixels) == 0 {
		return fmt.Errorf("texture %q has no pixel data", tex.Name)
	}

	internal := int32(gl.RGBA8)
	if tex.ColorSpace == scene.ColorSpaceSRGB {
		internal = gl.SRGB8_ALPHA8
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal,
		int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(tex.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex.GLID = id
	return nil
}

// UploadEnvironment uploads a linear float RGB environment as a mipmapped
// RGB16F texture. Horizontal wrap repeats around the seam.
func UploadEnvironment(env *scene.Environment) error {
	if env == nil {
		return errors.New("nil environment")
	}
	if env.Width <= 0 || env.Height <= 0 || len(env.Pixels) < env.Width*env.Height*3 {
		return fmt.Errorf("environment %q has no pixel data", env.Name)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB16F,
		int32(env.Width), int32(env.Height), 0,
		gl.RGB, gl.FLOAT, gl.Ptr(env.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.BindTexture(gl.TEXTURE_2D, 0)

	env.GLID = id
	return nil
}

// mipLevels is the index of the smallest mip for a w×h texture.
func mipLevels(w, h int) int {
	n := 0
	for s := max(w, h); s > 1; s >>= 1 {
		n++
	}
	return n
}

// DeleteTexture frees a previously uploaded GPU texture and zeroes its GLID.
func DeleteTexture(tex *scene.Texture) {
	if tex == nil || tex.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.GLID)
	tex.GLID = 0
}

// DeleteEnvironment frees an uploaded environment texture.
func DeleteEnvironment(env *scene.Environment) {
	if env == nil || env.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &env.GLID)
	env.GLID = 0
}
