package oitview

import (
	"fmt"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// eventQueue turns raw window callbacks into Commands. It holds no GLFW state
// so the translation rules can be exercised without a display.
type eventQueue struct {
	bindings KeyBindings
	pending  []Command

	captured   bool
	haveCursor bool
	lastX      float64
	lastY      float64
}

func (q *eventQueue) push(cmd Command) {
	q.pending = append(q.pending, cmd)
}

func (q *eventQueue) onKey(key glfw.Key, action glfw.Action) {
	if action != glfw.Press {
		return
	}
	if cmd, ok := q.bindings.Lookup(key); ok {
		q.push(cmd)
	}
}

func (q *eventQueue) onCursor(x, y float64) {
	if !q.captured {
		q.haveCursor = false
		return
	}
	if !q.haveCursor {
		// First sample after a grab only sets the origin.
		q.lastX, q.lastY = x, y
		q.haveCursor = true
		return
	}
	dx, dy := x-q.lastX, y-q.lastY
	q.lastX, q.lastY = x, y
	if dx == 0 && dy == 0 {
		return
	}
	q.push(LookDelta{DX: float32(dx), DY: float32(dy)})
}

func (q *eventQueue) onScroll(yoff float64) {
	if yoff == 0 {
		return
	}
	q.push(ZoomDelta{DY: float32(yoff)})
}

func (q *eventQueue) onResize(width, height int) {
	q.push(Resized{Width: width, Height: height})
}

func (q *eventQueue) onClose() {
	q.push(Quit{})
}

func (q *eventQueue) setCaptured(captured bool) {
	q.captured = captured
	q.haveCursor = false
}

func (q *eventQueue) drain() []Command {
	out := q.pending
	q.pending = nil
	return out
}

// Window is the GLFW window the viewer renders into. It must be created and
// polled from the main OS thread.
type Window struct {
	win    *glfw.Window
	queue  *eventQueue
	logger Logger
}

func NewWindow(cfg WindowConfig, bindings KeyBindings, logger Logger) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("init glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // no OpenGL context, WebGPU owns the surface
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	if bindings == nil {
		bindings = DefaultKeyBindings()
	}
	w := &Window{
		win:    win,
		queue:  &eventQueue{bindings: bindings},
		logger: logger,
	}

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		w.queue.onKey(key, action)
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.queue.onCursor(x, y)
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		w.queue.onScroll(yoff)
	})
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.queue.onResize(width, height)
	})
	win.SetCloseCallback(func(_ *glfw.Window) {
		w.queue.onClose()
	})

	return w, nil
}

// PollEvents processes pending window events and returns the commands they
// produced. A positive wait blocks for up to that long when nothing is queued.
func (w *Window) PollEvents(wait time.Duration) []Command {
	if wait > 0 {
		glfw.WaitEventsTimeout(wait.Seconds())
	} else {
		glfw.PollEvents()
	}
	return w.queue.drain()
}

// SetCaptured grabs or releases the cursor for mouse-look. A failed grab is
// logged and leaves the cursor free.
func (w *Window) SetCaptured(captured bool) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Warnf("cursor grab failed: %v", r)
			w.queue.setCaptured(false)
		}
	}()
	mode := glfw.CursorNormal
	if captured {
		mode = glfw.CursorDisabled
	}
	w.win.SetInputMode(glfw.CursorMode, mode)
	w.queue.setCaptured(captured)
}

func (w *Window) Captured() bool {
	return w.queue.captured
}

func (w *Window) FramebufferSize() (int, int) {
	return w.win.GetFramebufferSize()
}

func (w *Window) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.win)
}

func (w *Window) Destroy() {
	w.win.Destroy()
	glfw.Terminate()
}
