// Package app runs the renderer's frame loop: poll input, advance the
// clock and camera, write uniforms, record draws, submit and present.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Faultbox/orrery/internal/bodies"
	"github.com/Faultbox/orrery/internal/config"
	"github.com/Faultbox/orrery/internal/engine/camera"
	"github.com/Faultbox/orrery/internal/engine/debug"
	"github.com/Faultbox/orrery/internal/engine/gpu"
	"github.com/Faultbox/orrery/internal/engine/input"
	"github.com/Faultbox/orrery/internal/logger"
	"github.com/Faultbox/orrery/internal/scene"
	"github.com/Faultbox/orrery/internal/sim"
	"github.com/Faultbox/orrery/internal/telemetry"
)

// Window is the part of the platform window the loop touches.
type Window interface {
	SetTitle(title string)
	DrawableSize() (int, int)
}

// Deps are the collaborators the loop drives. Window, Metrics and
// Screenshots are optional.
type Deps struct {
	Device      gpu.Device
	Poller      input.Poller
	Scene       *scene.Scene
	Window      Window
	Metrics     *telemetry.Metrics
	Screenshots *debug.Screenshotter
}

// App owns the per-frame state.
type App struct {
	deps  Deps
	log   *zap.Logger
	title string

	clock  *sim.Clock
	camera *camera.Controller
	proj   camera.Projection
	edges  input.EdgeDetector
	cb     *gpu.CommandBuffer

	targets []int
	target  int

	hud    *rate.Limiter
	frames uint64
	last   scene.Stats
}

// New wires the loop from configuration.
func New(cfg *config.Config, title string, d Deps) (*App, error) {
	if d.Device == nil || d.Poller == nil || d.Scene == nil {
		return nil, fmt.Errorf("app: device, poller and scene are required")
	}

	g := cfg.Graphics
	w, h := g.Width, g.Height
	if d.Window != nil {
		if dw, dh := d.Window.DrawableSize(); dw > 0 && dh > 0 {
			w, h = dw, dh
		}
	}

	a := &App{
		deps:    d,
		log:     logger.Named("app"),
		title:   title,
		clock:   sim.NewClock(ClockSettings(cfg)),
		camera:  NewCameraController(cfg),
		proj:    camera.NewProjection(g.FovYDegrees, w, h, g.Near, g.Far, d.Device.YDown()),
		cb:      gpu.NewCommandBuffer(),
		targets: d.Scene.Table().OfKind(bodies.KindPlanet),
		hud:     rate.NewLimiter(rate.Limit(cfg.Debug.HUDRate), 1),
	}
	d.Device.Resize(w, h)

	for i, idx := range a.targets {
		if d.Scene.Table().Body(idx).Name == cfg.Camera.OrbitTarget {
			a.target = i
		}
	}
	return a, nil
}

// Clock returns the simulation clock.
func (a *App) Clock() *sim.Clock { return a.clock }

// Camera returns the camera controller.
func (a *App) Camera() *camera.Controller { return a.camera }

// Projection returns the current projection parameters.
func (a *App) Projection() camera.Projection { return a.proj }

// LastStats returns the draw statistics of the last frame.
func (a *App) LastStats() scene.Stats { return a.last }

// Target returns the body index the orbit camera tracks, or -1.
func (a *App) Target() int {
	if len(a.targets) == 0 {
		return -1
	}
	return a.targets[a.target]
}

// Run steps frames until quit is requested, ctx is done or a frame fails.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting frame loop",
		zap.Stringer("camera", a.camera.Mode),
		zap.Int("entities", len(a.deps.Scene.Entities())),
	)
	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			a.log.Info("frame loop cancelled", zap.Error(err))
			return nil
		}
		ok, err := a.Frame()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	a.log.Info("frame loop stopped",
		zap.Uint64("frames", a.frames),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Frame runs one iteration of the loop. It returns false once quit has been
// requested; in that case nothing is drawn.
func (a *App) Frame() (bool, error) {
	snap := a.deps.Poller.Poll()
	if snap.Quit {
		return false, nil
	}
	if snap.Resized {
		a.resize(snap.Width, snap.Height)
	}

	held := snap.Held
	if snap.Fire {
		held = held.With(input.NextTarget)
	}
	pressed := a.edges.Update(held)
	if pressed.Has(input.Quit) {
		a.log.Info("quit requested")
		return false, nil
	}
	a.handle(pressed)

	dt := snap.DeltaTime
	a.clock.Advance(float64(dt))
	t := a.clock.Time()

	sc := a.deps.Scene
	sc.Evaluate(t)
	target := sc.Position(a.Target())
	view := a.camera.Update(dt, camera.Motion{
		Move:   snap.Move,
		Rotate: snap.Rotate,
		DragX:  snap.DragX,
		DragY:  snap.DragY,
		Wheel:  snap.Wheel,
	}, target)

	dev := a.deps.Device
	idx, err := dev.AcquireFrameSlot()
	if err != nil {
		return false, fmt.Errorf("acquiring frame slot: %w", err)
	}
	if err := sc.UpdateFrame(dev, idx, view, a.proj.Matrix(), t); err != nil {
		return false, fmt.Errorf("frame %d: %w", a.frames, err)
	}

	a.cb.Reset()
	a.last = sc.Record(a.cb, idx)
	if err := dev.Submit(a.cb); err != nil {
		return false, fmt.Errorf("submitting frame %d: %w", a.frames, err)
	}
	if pressed.Has(input.Screenshot) {
		a.screenshot()
	}
	if err := dev.PresentFrame(idx); err != nil {
		return false, fmt.Errorf("presenting frame %d: %w", a.frames, err)
	}
	a.frames++

	if m := a.deps.Metrics; m != nil {
		m.ObserveFrame(float64(dt), a.last.Draws, a.last.Skipped)
		m.SetClock(a.clock.Speed(), t)
	}
	if a.deps.Window != nil && a.hud.Allow() {
		a.deps.Window.SetTitle(HUDTitle(a.title, a.clock.SpeedPercent()))
	}
	return true, nil
}

// handle applies the actions pressed this frame, in a fixed order.
func (a *App) handle(pressed input.Actions) {
	if pressed == 0 {
		return
	}
	a.log.Debug("actions", zap.Stringer("pressed", pressed))

	if pressed.Has(input.ResetView) {
		a.camera.ResetView()
	}
	if pressed.Has(input.SpeedUp) {
		a.clock.AdjustSpeed(sim.Increase)
	}
	if pressed.Has(input.SpeedDown) {
		a.clock.AdjustSpeed(sim.Decrease)
	}
	if pressed.Has(input.ToggleCamera) {
		mode := a.camera.Toggle()
		a.log.Info("camera mode", zap.Stringer("mode", mode))
	}
	if pressed.Has(input.NextTarget) && len(a.targets) > 0 {
		a.target = (a.target + 1) % len(a.targets)
		a.log.Info("orbit target", zap.String("body", a.deps.Scene.Table().Body(a.Target()).Name))
	}
	if pressed.Has(input.ResetClock) {
		a.clock.Reset()
	}
	if pressed.Has(input.DebugDump) {
		a.dump()
	}

	if m := a.deps.Metrics; m != nil {
		for _, name := range strings.Split(pressed.String(), "|") {
			m.CountAction(name)
		}
	}
}

func (a *App) resize(w, h int) {
	if a.deps.Window != nil {
		if dw, dh := a.deps.Window.DrawableSize(); dw > 0 && dh > 0 {
			w, h = dw, dh
		}
	}
	if w <= 0 || h <= 0 {
		return
	}
	a.proj.SetViewport(w, h)
	a.deps.Device.Resize(w, h)
	a.log.Debug("resized", zap.Int("width", w), zap.Int("height", h))
}

// dump logs the camera and clock state.
func (a *App) dump() {
	free := a.camera.Free
	a.log.Info("debug dump",
		zap.Object("clock", a.clock),
		zap.Stringer("camera", a.camera.Mode),
		zap.Float32("velocity", free.Velocity),
		zap.Float32("x_rot", free.XRot),
		zap.Float32("y_rot", free.YRot),
		zap.Float32("z_rot", free.ZRot),
		zap.String("view", formatMat4(a.camera.View())),
		zap.Int("draws", a.last.Draws),
		zap.Int("skipped", a.last.Skipped),
	)
}

func (a *App) screenshot() {
	if a.deps.Screenshots == nil {
		return
	}
	reader, ok := a.deps.Device.(gpu.FrameReader)
	if !ok {
		a.log.Warn("device cannot read back frames")
		return
	}
	path, err := a.deps.Screenshots.Capture(reader)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// HUDTitle formats the window title with a speed bar of one mark per 2%.
func HUDTitle(title string, speedPercent int) string {
	bars := speedPercent / 2
	if bars < 0 {
		bars = 0
	}
	return fmt.Sprintf("%s | Speed: %d%% %s", title, speedPercent, strings.Repeat("|", bars))
}

func formatMat4(m mgl32.Mat4) string {
	var b strings.Builder
	for row := 0; row < 4; row++ {
		if row > 0 {
			b.WriteString("; ")
		}
		r := m.Row(row)
		fmt.Fprintf(&b, "%.3f %.3f %.3f %.3f", r[0], r[1], r[2], r[3])
	}
	return b.String()
}
