// Package sdlinput polls SDL2 keyboard, mouse and game controller state.
package sdlinput

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/orrery/internal/engine/input"
	"github.com/Faultbox/orrery/internal/logger"
)

// stickDeadzone filters resting gamepad noise, as a fraction of full range.
const stickDeadzone = 0.15

// Bindings maps scancodes to discrete actions.
var Bindings = map[sdl.Scancode]input.Action{
	sdl.SCANCODE_ESCAPE: input.Quit,
	sdl.SCANCODE_I:      input.ResetView,
	sdl.SCANCODE_M:      input.SpeedUp,
	sdl.SCANCODE_EQUALS: input.SpeedUp,
	sdl.SCANCODE_N:      input.SpeedDown,
	sdl.SCANCODE_MINUS:  input.SpeedDown,
	sdl.SCANCODE_C:      input.ToggleCamera,
	sdl.SCANCODE_TAB:    input.NextTarget,
	sdl.SCANCODE_R:      input.ResetClock,
	sdl.SCANCODE_P:      input.DebugDump,
	sdl.SCANCODE_F12:    input.Screenshot,
}

var buttonBindings = map[sdl.GameControllerButton]input.Action{
	sdl.CONTROLLER_BUTTON_START:         input.ResetView,
	sdl.CONTROLLER_BUTTON_BACK:          input.ToggleCamera,
	sdl.CONTROLLER_BUTTON_RIGHTSHOULDER: input.SpeedUp,
	sdl.CONTROLLER_BUTTON_LEFTSHOULDER:  input.SpeedDown,
	sdl.CONTROLLER_BUTTON_Y:             input.NextTarget,
}

// Poller reads SDL state once per frame.
type Poller struct {
	log        *zap.Logger
	controller *sdl.GameController
	last       time.Time
}

// New creates a poller and opens the first attached game controller.
func New() *Poller {
	p := &Poller{log: logger.Named("input"), last: time.Now()}
	for i := 0; i < sdl.NumJoysticks(); i++ {
		if p.open(i) {
			break
		}
	}
	return p
}

func (p *Poller) open(index int) bool {
	if p.controller != nil || !sdl.IsGameController(index) {
		return false
	}
	p.controller = sdl.GameControllerOpen(index)
	if p.controller == nil {
		p.log.Warn("failed to open game controller", zap.Int("index", index), zap.Error(sdl.GetError()))
		return false
	}
	p.log.Info("game controller attached", zap.String("name", p.controller.Name()))
	return true
}

// Close releases the game controller.
func (p *Poller) Close() {
	if p.controller != nil {
		p.controller.Close()
		p.controller = nil
	}
}

// Poll drains pending events and samples held state.
func (p *Poller) Poll() input.Snapshot {
	now := time.Now()
	s := input.Snapshot{DeltaTime: float32(now.Sub(p.last).Seconds())}
	p.last = now

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			s.Quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				s.Resized = true
				s.Width = int(e.Data1)
				s.Height = int(e.Data2)
			}

		case *sdl.MouseMotionEvent:
			if e.State&sdl.ButtonLMask() != 0 {
				s.DragX += float32(e.XRel)
				s.DragY += float32(e.YRel)
			}

		case *sdl.MouseWheelEvent:
			s.Wheel += float32(e.Y)

		case *sdl.ControllerDeviceEvent:
			switch e.Type {
			case sdl.CONTROLLERDEVICEADDED:
				p.open(int(e.Which))
			case sdl.CONTROLLERDEVICEREMOVED:
				if p.controller != nil && p.controller.Joystick().InstanceID() == sdl.JoystickID(e.Which) {
					p.log.Info("game controller detached")
					p.Close()
				}
			}
		}
	}

	keys := sdl.GetKeyboardState()
	down := func(sc sdl.Scancode) bool { return keys[sc] != 0 }
	for sc, a := range Bindings {
		if down(sc) {
			s.Held = s.Held.With(a)
		}
	}

	var stick [4]float32
	var roll float32
	if p.controller != nil {
		stick[0] = axis(p.controller, sdl.CONTROLLER_AXIS_LEFTX)
		stick[1] = axis(p.controller, sdl.CONTROLLER_AXIS_LEFTY)
		stick[2] = axis(p.controller, sdl.CONTROLLER_AXIS_RIGHTX)
		stick[3] = axis(p.controller, sdl.CONTROLLER_AXIS_RIGHTY)
		roll = axis(p.controller, sdl.CONTROLLER_AXIS_TRIGGERRIGHT) - axis(p.controller, sdl.CONTROLLER_AXIS_TRIGGERLEFT)
		for b, a := range buttonBindings {
			if p.controller.Button(b) != 0 {
				s.Held = s.Held.With(a)
			}
		}
		s.Fire = p.controller.Button(sdl.CONTROLLER_BUTTON_A) != 0
	}
	s.Fire = s.Fire || down(sdl.SCANCODE_SPACE)

	s.Move = mgl32.Vec3{
		input.Axis(down(sdl.SCANCODE_A), down(sdl.SCANCODE_D), stick[0]),
		0,
		input.Axis(down(sdl.SCANCODE_S), down(sdl.SCANCODE_W), -stick[1]),
	}
	s.Rotate = mgl32.Vec3{
		input.Axis(down(sdl.SCANCODE_UP), down(sdl.SCANCODE_DOWN), stick[3]),
		input.Axis(down(sdl.SCANCODE_LEFT), down(sdl.SCANCODE_RIGHT), stick[2]),
		input.Axis(down(sdl.SCANCODE_Q), down(sdl.SCANCODE_E), roll),
	}
	return s
}

func axis(gc *sdl.GameController, a sdl.GameControllerAxis) float32 {
	return input.Deadzone(float32(gc.Axis(a))/32767, stickDeadzone)
}
