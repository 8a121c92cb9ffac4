package controls

import (
	"fmt"
	"math"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"product-viewer/core"
	"product-viewer/internal/logger"
)

// Target receives control changes. It is only called from Drain, which
// runs on the render thread.
type Target interface {
	SetExposureCompensation(v float64) error
	SetMetalness(v float32)
	SetBackground(c core.Color)
}

// State is a snapshot of the panel values.
type State struct {
	Exposure   float64
	Metalness  float32
	Background core.Color
}

// Panel holds the exposure, metalness and background controls. Setters may
// be called from any goroutine. Changes are coalesced until the next Drain,
// so the last write wins.
type Panel struct {
	log *zap.Logger

	mu      sync.Mutex
	state   State
	pending struct {
		exposure, metalness, background bool
	}
}

func NewPanel(initial State, log *zap.Logger) *Panel {
	return &Panel{state: initial, log: logger.Named(log, "controls")}
}

// State returns the most recently set values, applied or not.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Panel) SetExposure(v float64) {
	p.mu.Lock()
	p.state.Exposure = v
	p.pending.exposure = true
	p.mu.Unlock()
}

// SetMetalness clamps v to [0, 1]. NaN is ignored.
func (p *Panel) SetMetalness(v float64) {
	if math.IsNaN(v) {
		return
	}
	p.mu.Lock()
	p.state.Metalness = float32(max(0, min(v, 1)))
	p.pending.metalness = true
	p.mu.Unlock()
}

func (p *Panel) SetBackground(c core.Color) {
	p.mu.Lock()
	p.state.Background = c
	p.pending.background = true
	p.mu.Unlock()
}

// SetBackgroundHex parses a "#rrggbb" color.
func (p *Panel) SetBackgroundHex(s string) error {
	c, err := ParseHex(s)
	if err != nil {
		return err
	}
	p.SetBackground(c)
	return nil
}

// ParseHex converts a "#rrggbb" string to an opaque color.
func ParseHex(s string) (core.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return core.Color{}, fmt.Errorf("background %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return core.ColorFromBytes(r, g, b), nil
}

// Drain applies pending changes to t. It reports whether anything changed.
func (p *Panel) Drain(t Target) bool {
	p.mu.Lock()
	state, pending := p.state, p.pending
	p.pending.exposure, p.pending.metalness, p.pending.background = false, false, false
	p.mu.Unlock()

	if pending.exposure {
		if err := t.SetExposureCompensation(state.Exposure); err != nil {
			p.log.Warn("exposure not applied", zap.Float64("compensation", state.Exposure), zap.Error(err))
		}
	}
	if pending.metalness {
		t.SetMetalness(state.Metalness)
	}
	if pending.background {
		t.SetBackground(state.Background)
	}
	return pending.exposure || pending.metalness || pending.background
}

// Binding connects an input source to a panel. Bindings are optional; a
// viewer without any still renders.
type Binding interface {
	Bind(p *Panel) error
}

// BindAll binds each non-nil binding, stopping at the first error.
func BindAll(p *Panel, bindings ...Binding) error {
	for _, b := range bindings {
		if b == nil {
			continue
		}
		if err := b.Bind(p); err != nil {
			return err
		}
	}
	return nil
}
