package viewer

import (
	"context"
	"errors"

	"product-viewer/controls"
)

// Loop draws frames until the surface closes.
type Loop struct {
	Surface Surface
	Context *Context
	Orbit   *controls.Orbit
	// Panel is optional. Pending control changes are applied at the start
	// of each frame.
	Panel *controls.Panel

	frames uint64
}

// NewLoop returns a loop for an initialized context.
func NewLoop(surface Surface, vc *Context, orbit *controls.Orbit, panel *controls.Panel) (*Loop, error) {
	if vc.Model == nil {
		return nil, errors.New("viewer: loop started before initialization")
	}
	return &Loop{Surface: surface, Context: vc, Orbit: orbit, Panel: panel}, nil
}

// Frame polls input, applies controls, advances the orbit damping, draws
// and presents one frame.
func (l *Loop) Frame() error {
	l.Surface.PollEvents()
	if l.Panel != nil {
		l.Panel.Drain(l.Context)
	}
	if l.Orbit != nil {
		l.Orbit.Update()
	}
	if err := l.Context.Drawer.Draw(l.Context.Scene, l.Context.Camera); err != nil {
		return err
	}
	l.Surface.SwapBuffers()
	l.frames++
	return nil
}

// Frames is the number of frames presented so far.
func (l *Loop) Frames() uint64 {
	return l.frames
}

// Run calls Frame until the surface asks to close, ctx is done or a frame
// fails.
func (l *Loop) Run(ctx context.Context) error {
	for !l.Surface.ShouldClose() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := l.Frame(); err != nil {
			return err
		}
	}
	return nil
}
