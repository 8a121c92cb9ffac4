package asset

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"go.uber.org/zap"

	"product-viewer/scene"
)

// TextureRole names a material channel a texture can feed.
type TextureRole string

const (
	RoleDiffuse   TextureRole = "diffuse"
	RoleBump      TextureRole = "bump"
	RoleHeight    TextureRole = "height"
	RoleOcclusion TextureRole = "occlusion"
	RoleNormal    TextureRole = "normal"
	RoleSpecular  TextureRole = "specular"
	RoleInternal  TextureRole = "internal"
)

// AllRoles lists every role in a stable order.
var AllRoles = []TextureRole{
	RoleDiffuse, RoleBump, RoleHeight, RoleOcclusion, RoleNormal, RoleSpecular, RoleInternal,
}

// DefaultRoles are the roles fetched when no list is configured.
var DefaultRoles = []TextureRole{RoleDiffuse, RoleBump, RoleHeight, RoleOcclusion}

// ParseRole validates a role name.
func ParseRole(s string) (TextureRole, error) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown texture role %q", s)
}

// LoadTexture fetches and decodes one image. The result is tagged sRGB.
func LoadTexture(ctx context.Context, location string, opts Options) (*scene.Texture, error) {
	res, err := newResource(ctx, opts.Client, location)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	img, format, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", res.Path(), err)
	}
	img = downscale(img, opts.MaxTextureSize)

	tex := scene.TextureFromImage(res.Path(), img)
	tex.ColorSpace = scene.ColorSpaceSRGB
	opts.logger("texture").Debug("decoded texture",
		zap.String("path", res.Path()),
		zap.String("format", format),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height))
	return tex, nil
}

// downscale shrinks img so its larger side is at most limit.
func downscale(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if limit <= 0 || (w <= limit && h <= limit) {
		return img
	}
	if w >= h {
		h = max(1, h*limit/w)
		w = limit
	} else {
		w = max(1, w*limit/h)
		h = limit
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
