package asset

import (
	"net/http"

	"go.uber.org/zap"

	"product-viewer/internal/logger"
)

// Options control how resources are fetched and decoded.
type Options struct {
	// TextureExt is appended to role names to form texture file names.
	TextureExt string
	// MaxTextureSize downsamples textures whose larger side exceeds it.
	// Zero disables downsampling.
	MaxTextureSize int
	// Client is used for http(s) resources; nil means http.DefaultClient.
	Client *http.Client
	Log    *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		TextureExt:     ".jpeg",
		MaxTextureSize: 4096,
	}
}

func (o Options) logger(name string) *zap.Logger {
	return logger.Named(o.Log, name)
}

func (o Options) ext() string {
	if o.TextureExt == "" {
		return ".jpeg"
	}
	return o.TextureExt
}
