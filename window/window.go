package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

// Window is a GLFW window with a current OpenGL 4.1 core context.
type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	onResize ResizeCallback
	onChar   CharCallback
	onDrag   DragCallback
	onScroll ScrollCallback

	dragging     bool
	lastX, lastY float64
}

type Config struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
	VSync     bool
}

func DefaultConfig() Config {
	return Config{
		Width:     1280,
		Height:    720,
		Title:     "Product Viewer",
		Resizable: true,
		VSync:     true,
	}
}

// Callback types are aliases so that consumers can declare matching
// interfaces without importing this package.
type (
	// ResizeCallback receives the framebuffer size in pixels.
	ResizeCallback = func(width, height int)
	CharCallback   = func(r rune)
	// DragCallback receives cursor deltas while the primary button is held.
	DragCallback   = func(dx, dy float64)
	ScrollCallback = func(xoff, yoff float64)
)

func New(config Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	}

	w := &Window{
		Handle: handle,
		Title:  config.Title,
	}
	w.Width, w.Height = handle.GetFramebufferSize()

	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.Width = width
		w.Height = height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	handle.SetCharCallback(func(_ *glfw.Window, r rune) {
		if w.onChar != nil {
			w.onChar(r)
		}
	})
	handle.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		w.dragging = action == glfw.Press
		w.lastX, w.lastY = win.GetCursorPos()
	})
	handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if !w.dragging {
			return
		}
		dx, dy := x-w.lastX, y-w.lastY
		w.lastX, w.lastY = x, y
		if w.onDrag != nil {
			w.onDrag(dx, dy)
		}
	})
	handle.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(xoff, yoff)
		}
	})

	return w, nil
}

func (w *Window) SetResizeCallback(cb ResizeCallback) { w.onResize = cb }

func (w *Window) SetCharCallback(cb CharCallback) { w.onChar = cb }

func (w *Window) SetDragCallback(cb DragCallback) { w.onDrag = cb }

func (w *Window) SetScrollCallback(cb ScrollCallback) { w.onScroll = cb }

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

// Size returns the framebuffer size in pixels.
func (w *Window) Size() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

// Destroy closes the window and terminates GLFW.
func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}
