package asset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"product-viewer/scene"
)

var errHDRFormat = errors.New("hdr: invalid format")

// Dimension limits checked before any pixel memory is allocated.
const (
	maxHDRSide   = 1 << 15
	maxHDRPixels = 1 << 28
)

// LoadEnvironment fetches and decodes a Radiance .hdr image for use as an
// equirectangular environment.
func LoadEnvironment(ctx context.Context, location string, opts Options) (*scene.Environment, error) {
	if location == "" {
		return nil, errors.New("no environment source configured")
	}
	res, err := newResource(ctx, opts.Client, location)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	env, err := DecodeHDR(res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", res.Path(), err)
	}
	env.Name = res.Path()
	opts.logger("environment").Info("environment loaded",
		zap.String("path", res.Path()),
		zap.Int("width", env.Width),
		zap.Int("height", env.Height))
	return env, nil
}

// DecodeHDR reads a Radiance RGBE image. Both flat and new-style run-length
// encoded scanlines are accepted; only the standard "-Y H +X W" orientation
// is supported.
func DecodeHDR(r io.Reader) (*scene.Environment, error) {
	br := bufio.NewReader(r)

	magic, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", errHDRFormat, err)
	}
	if !strings.HasPrefix(magic, "#?") {
		return nil, fmt.Errorf("%w: missing #? signature", errHDRFormat)
	}

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: header: %v", errHDRFormat, err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "FORMAT="); ok && v != "32-bit_rle_rgbe" {
			return nil, fmt.Errorf("%w: unsupported pixel format %q", errHDRFormat, v)
		}
	}

	res, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: resolution: %v", errHDRFormat, err)
	}
	fields := strings.Fields(res)
	if len(fields) != 4 || fields[0] != "-Y" || fields[2] != "+X" {
		return nil, fmt.Errorf("%w: unsupported resolution line %q", errHDRFormat, strings.TrimSpace(res))
	}
	height, herr := strconv.Atoi(fields[1])
	width, werr := strconv.Atoi(fields[3])
	if herr != nil || werr != nil || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: bad dimensions %q", errHDRFormat, strings.TrimSpace(res))
	}
	if width > maxHDRSide || height > maxHDRSide || width*height > maxHDRPixels {
		return nil, fmt.Errorf("%w: image %dx%d too large", errHDRFormat, width, height)
	}

	env := &scene.Environment{
		Width:   width,
		Height:  height,
		Pixels:  make([]float32, width*height*3),
		Mapping: scene.MappingEquirectangular,
	}
	scan := make([]byte, width*4)
	for y := 0; y < height; y++ {
		if err := readScanline(br, scan, width); err != nil {
			return nil, fmt.Errorf("%w: scanline %d: %v", errHDRFormat, y, err)
		}
		row := env.Pixels[y*width*3:]
		for x := 0; x < width; x++ {
			row[x*3], row[x*3+1], row[x*3+2] = rgbeToFloat(scan[x*4], scan[x*4+1], scan[x*4+2], scan[x*4+3])
		}
	}
	return env, nil
}

// readScanline fills scan with width RGBE quads.
func readScanline(br *bufio.Reader, scan []byte, width int) error {
	head, err := br.Peek(4)
	if err != nil {
		return err
	}
	rle := width >= 8 && width < 0x8000 && head[0] == 2 && head[1] == 2 && head[2]&0x80 == 0
	if !rle {
		_, err := io.ReadFull(br, scan)
		return err
	}
	if int(head[2])<<8|int(head[3]) != width {
		return errors.New("scanline width mismatch")
	}
	if _, err := br.Discard(4); err != nil {
		return err
	}

	// Each channel is stored separately as runs and literal spans.
	for c := 0; c < 4; c++ {
		for x := 0; x < width; {
			count, err := br.ReadByte()
			if err != nil {
				return err
			}
			if count > 128 {
				n := int(count) - 128
				if x+n > width {
					return errors.New("run overflows scanline")
				}
				v, err := br.ReadByte()
				if err != nil {
					return err
				}
				for ; n > 0; n-- {
					scan[x*4+c] = v
					x++
				}
				continue
			}
			n := int(count)
			if n == 0 || x+n > width {
				return errors.New("bad literal span")
			}
			for ; n > 0; n-- {
				v, err := br.ReadByte()
				if err != nil {
					return err
				}
				scan[x*4+c] = v
				x++
			}
		}
	}
	return nil
}

func rgbeToFloat(r, g, b, e byte) (float32, float32, float32) {
	if e == 0 {
		return 0, 0, 0
	}
	f := float32(math.Ldexp(1, int(e)-(128+8)))
	return float32(r) * f, float32(g) * f, float32(b) * f
}

// EncodeHDR writes env as a flat (uncompressed) Radiance file.
func EncodeHDR(w io.Writer, env *scene.Environment) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y %d +X %d\n", env.Height, env.Width)
	for i := 0; i < env.Width*env.Height; i++ {
		q := floatToRGBE(env.Pixels[i*3], env.Pixels[i*3+1], env.Pixels[i*3+2])
		if _, err := bw.Write(q[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func floatToRGBE(r, g, b float32) [4]byte {
	v := max(r, g, b)
	if v < 1e-32 {
		return [4]byte{}
	}
	frac, exp := math.Frexp(float64(v))
	scale := frac * 256 / float64(v)
	return [4]byte{
		byte(float64(r) * scale),
		byte(float64(g) * scale),
		byte(float64(b) * scale),
		byte(exp + 128),
	}
}
