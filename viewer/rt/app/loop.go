package app

import (
	"errors"
	"time"

	"github.com/gekko3d/oitview"
	"github.com/gekko3d/oitview/viewer/rt/core"
)

// MaxSurfaceRetries is how many consecutive surface losses the loop answers
// with a reconfigure before it stalls and waits for a resize.
const MaxSurfaceRetries = 3

// StallWait bounds how long a stalled loop blocks waiting for events.
const StallWait = 100 * time.Millisecond

// EventSource is the window side of the loop.
type EventSource interface {
	PollEvents(wait time.Duration) []oitview.Command
	FramebufferSize() (int, int)
	SetCaptured(captured bool)
	Captured() bool
}

// FrameRenderer is the GPU side of the loop. *App implements it.
type FrameRenderer interface {
	Resize(width, height int) bool
	Update(dt float32)
	Render() error
	Camera() *core.Camera
	CycleMode() RenderMode
	ReloadShaders() error
}

// Loop runs the fixed-timestep game loop: poll, apply input, drain
// simulation steps, render once.
type Loop struct {
	Events   EventSource
	Renderer FrameRenderer
	Timer    *oitview.Timer
	Logger   oitview.Logger
	// Reload, when set, triggers a shader reload on every receive.
	Reload <-chan struct{}
	// Profiler is logged at debug level with each stats line.
	Profiler *Profiler

	MaxSurfaceRetries int
	StallWait         time.Duration

	stats    *FrameStats
	failures int
	stalled  bool
	quit     bool
}

func NewLoop(events EventSource, renderer FrameRenderer, timer *oitview.Timer, logger oitview.Logger) *Loop {
	return &Loop{
		Events:            events,
		Renderer:          renderer,
		Timer:             timer,
		Logger:            logger,
		MaxSurfaceRetries: MaxSurfaceRetries,
		StallWait:         StallWait,
		stats:             NewFrameStats(time.Second),
	}
}

// Run iterates until a Quit command arrives.
func (l *Loop) Run() {
	l.Timer.Reset()
	for l.Step() {
	}
	l.Logger.Infof("quit")
}

// Stalled reports whether rendering is suspended after repeated surface loss.
func (l *Loop) Stalled() bool {
	return l.stalled
}

// Step runs one loop iteration and reports whether the loop should continue.
func (l *Loop) Step() bool {
	var wait time.Duration
	if l.stalled {
		wait = l.StallWait
	}
	for _, cmd := range l.Events.PollEvents(wait) {
		l.apply(cmd)
	}
	if l.quit {
		return false
	}

	l.pollReload()
	if l.stalled {
		return true
	}

	l.Timer.Reset()
	if dropped := l.Timer.Dropped(); dropped > 0 {
		l.Logger.Debugf("simulation behind, dropped %v", dropped)
	}
	dt := float32(l.Timer.Tick().Seconds())
	updates := 0
	for l.Timer.ShouldUpdate() {
		l.Renderer.Update(dt)
		l.Timer.Update()
		updates++
	}

	if err := l.Renderer.Render(); err != nil {
		l.renderFailed(err)
	} else {
		l.failures = 0
	}

	if counts, ok := l.stats.Observe(l.Timer.Delta(), updates); ok {
		l.Logger.Infof("%d updates, %d frames, last delta %v", counts.Updates, counts.Frames, counts.Delta)
		if l.Profiler != nil && l.Logger.DebugEnabled() {
			l.Logger.Debugf("%s", l.Profiler.GetStatsString())
		}
	}
	return true
}

func (l *Loop) pollReload() {
	if l.Reload == nil {
		return
	}
	select {
	case <-l.Reload:
		if err := l.Renderer.ReloadShaders(); err != nil {
			l.Logger.Errorf("shader reload failed, keeping previous pipelines: %v", err)
		}
	default:
	}
}

func (l *Loop) renderFailed(err error) {
	if !errors.Is(err, ErrSurfaceLost) {
		l.Logger.Errorf("render: %v", err)
		return
	}

	l.failures++
	if l.failures >= l.MaxSurfaceRetries {
		l.stalled = true
		l.Logger.Warnf("surface lost %d times in a row, waiting for a resize: %v", l.failures, err)
		return
	}
	w, h := l.Events.FramebufferSize()
	l.Logger.Warnf("surface lost, reconfiguring at %dx%d: %v", w, h, err)
	l.Renderer.Resize(w, h)
}

func (l *Loop) apply(cmd oitview.Command) {
	camera := l.Renderer.Camera()
	switch c := cmd.(type) {
	case oitview.MoveImpulse:
		camera.Impulse(int(c.Axis), c.Sign)
	case oitview.LookDelta:
		if l.Events.Captured() {
			camera.MouseUpdate(c.DX, c.DY)
		}
	case oitview.ZoomDelta:
		camera.Zoom(c.DY)
	case oitview.Resized:
		if l.Renderer.Resize(c.Width, c.Height) && l.stalled {
			l.stalled = false
			l.failures = 0
			l.Logger.Infof("surface restored at %dx%d", c.Width, c.Height)
		}
	case oitview.ToggleCapture:
		l.Events.SetCaptured(!l.Events.Captured())
	case oitview.CycleRenderMode:
		l.Logger.Infof("render mode: %v", l.Renderer.CycleMode())
	case oitview.Quit:
		l.quit = true
	}
}
