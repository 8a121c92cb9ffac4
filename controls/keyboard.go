package controls

import (
	"errors"

	"product-viewer/core"
)

// CharSource delivers typed characters.
type CharSource interface {
	SetCharCallback(cb func(r rune))
}

// DefaultBackgrounds are cycled by the background key.
var DefaultBackgrounds = []core.Color{
	core.ColorFromBytes(30, 30, 30),
	core.ColorFromBytes(255, 255, 255),
	core.ColorFromBytes(128, 128, 128),
	core.ColorFromBytes(0, 0, 0),
}

// KeyboardBinding maps keys to panel changes:
//
//	[ ]  exposure down / up
//	- =  metalness down / up
//	b    next background preset
type KeyboardBinding struct {
	Source        CharSource
	ExposureStep  float64
	MetalnessStep float64
	Backgrounds   []core.Color

	panel *Panel
	bg    int
}

func NewKeyboardBinding(src CharSource) *KeyboardBinding {
	return &KeyboardBinding{
		Source:        src,
		ExposureStep:  0.1,
		MetalnessStep: 0.1,
		Backgrounds:   DefaultBackgrounds,
	}
}

func (k *KeyboardBinding) Bind(p *Panel) error {
	if k.Source == nil {
		return errors.New("keyboard binding has no source")
	}
	k.panel = p
	k.Source.SetCharCallback(k.handle)
	return nil
}

func (k *KeyboardBinding) handle(r rune) {
	p := k.panel
	switch r {
	case '[':
		p.SetExposure(max(0, p.State().Exposure-k.ExposureStep))
	case ']':
		p.SetExposure(p.State().Exposure + k.ExposureStep)
	case '-':
		p.SetMetalness(float64(p.State().Metalness) - k.MetalnessStep)
	case '=', '+':
		p.SetMetalness(float64(p.State().Metalness) + k.MetalnessStep)
	case 'b', 'B':
		if len(k.Backgrounds) == 0 {
			return
		}
		k.bg = (k.bg + 1) % len(k.Backgrounds)
		p.SetBackground(k.Backgrounds[k.bg])
	}
}

// PointerSource delivers drag and scroll input.
type PointerSource interface {
	SetDragCallback(cb func(dx, dy float64))
	SetScrollCallback(cb func(xoff, yoff float64))
}

// BindPointer routes drags to o.Rotate and the wheel to o.Scroll.
func BindPointer(src PointerSource, o *Orbit) {
	src.SetDragCallback(func(dx, dy float64) {
		o.Rotate(float32(dx), float32(dy))
	})
	src.SetScrollCallback(func(_, yoff float64) {
		o.Scroll(float32(yoff))
	})
}
