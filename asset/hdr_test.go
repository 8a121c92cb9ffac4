package asset

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-viewer/scene"
)

func TestDecodeHDRFlat(t *testing.T) {
	env := &scene.Environment{Width: 2, Height: 1, Pixels: []float32{1, 0.5, 0.25, 4, 0, 0}}
	var buf bytes.Buffer
	require.NoError(t, EncodeHDR(&buf, env))

	got, err := DecodeHDR(&buf)
	require.NoError(t, err)
	assert.Equal(t, scene.MappingEquirectangular, got.Mapping)
	assert.Equal(t, 2, got.Width)
	assert.InDeltaSlice(t, env.Pixels, got.Pixels, 0.01)
}

func TestDecodeHDRRunLength(t *testing.T) {
	const width = 8
	var buf bytes.Buffer
	buf.WriteString("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 1 +X 8\n")
	buf.Write([]byte{2, 2, 0, width})
	// R: run of 8 × 128
	buf.Write([]byte{128 + width, 128})
	// G: literal span of 8
	buf.Write([]byte{width, 0, 16, 32, 48, 64, 80, 96, 112})
	// B: run of 8 × 0
	buf.Write([]byte{128 + width, 0})
	// E: run of 8 × 129 (scale 1/128)
	buf.Write([]byte{128 + width, 129})

	env, err := DecodeHDR(&buf)
	require.NoError(t, err)
	r, g, b := env.At(3, 0)
	assert.InDelta(t, 1.0, r, 1e-6)
	assert.InDelta(t, 48.0/128.0, g, 1e-6)
	assert.Zero(t, b)
}

func TestDecodeHDRRejectsGarbage(t *testing.T) {
	for name, in := range map[string]string{
		"no signature": "P6\n1 1\n255\n",
		"bad format":   "#?RADIANCE\nFORMAT=32-bit_rle_xyze\n\n-Y 1 +X 1\n",
		"bad axis":     "#?RADIANCE\n\n+Y 1 +X 1\n",
		"truncated":    "#?RADIANCE\n\n-Y 2 +X 2\n\x01\x01",
		"huge":         "#?RADIANCE\n\n-Y 2000000000 +X 2000000000\n",
		"wide":         "#?RADIANCE\n\n-Y 1 +X 40000\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeHDR(bytes.NewBufferString(in))
			assert.ErrorIs(t, err, errHDRFormat)
		})
	}
}

func TestLoadEnvironment(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeHDR(&buf, &scene.Environment{Width: 1, Height: 1, Pixels: []float32{2, 2, 2}}))
	body := buf.Bytes()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Client = server.Client()
	env, err := LoadEnvironment(context.Background(), server.URL+"/studio.hdr", opts)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/studio.hdr", env.Name)

	_, err = LoadEnvironment(context.Background(), "", opts)
	assert.Error(t, err)
}
