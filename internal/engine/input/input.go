// Package input turns device state into per-frame snapshots and
// edge-triggered actions. It has no dependency on a windowing backend.
package input

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Action is a discrete control bound to a key or button.
type Action uint32

const (
	Quit Action = 1 << iota
	ResetView
	SpeedUp
	SpeedDown
	ToggleCamera
	NextTarget
	ResetClock
	DebugDump
	Screenshot
)

var actionNames = []struct {
	a    Action
	name string
}{
	{Quit, "quit"},
	{ResetView, "reset_view"},
	{SpeedUp, "speed_up"},
	{SpeedDown, "speed_down"},
	{ToggleCamera, "toggle_camera"},
	{NextTarget, "next_target"},
	{ResetClock, "reset_clock"},
	{DebugDump, "debug_dump"},
	{Screenshot, "screenshot"},
}

// Actions is a set of held or pressed actions.
type Actions uint32

// Has reports whether a is in the set.
func (s Actions) Has(a Action) bool {
	return uint32(s)&uint32(a) != 0
}

// With returns the set with a added.
func (s Actions) With(a Action) Actions {
	return s | Actions(a)
}

// String lists the set members, for logging.
func (s Actions) String() string {
	var names []string
	for _, n := range actionNames {
		if s.Has(n.a) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// Snapshot is one frame of polled input.
type Snapshot struct {
	DeltaTime float32

	// Move drives translation; Move.Z() > 0 is forward.
	Move mgl32.Vec3
	// Rotate drives pitch (X), yaw (Y) and roll (Z).
	Rotate mgl32.Vec3

	DragX, DragY float32
	Wheel        float32

	Fire bool
	Held Actions
	// Quit is set when the window was closed.
	Quit bool

	Resized       bool
	Width, Height int
}

// Poller produces one Snapshot per frame.
type Poller interface {
	Poll() Snapshot
}

// EdgeDetector fires an action once per press, no matter how many frames
// the key stays down.
type EdgeDetector struct {
	prev    Actions
	pressed Actions
}

// Update records this frame's held set and returns the newly pressed actions.
func (d *EdgeDetector) Update(held Actions) Actions {
	d.pressed = held &^ d.prev
	d.prev = held
	return d.pressed
}

// WasJustPressed reports whether a went down during the last Update.
func (d *EdgeDetector) WasJustPressed(a Action) bool {
	return d.pressed.Has(a)
}

// Reset forgets the held state, so keys still down fire again.
func (d *EdgeDetector) Reset() {
	d.prev = 0
	d.pressed = 0
}

// Axis combines a negative and positive digital input with an analog value,
// clamped to [-1, 1].
func Axis(neg, pos bool, analog float32) float32 {
	v := analog
	if pos {
		v++
	}
	if neg {
		v--
	}
	return mgl32.Clamp(v, -1, 1)
}

// Deadzone zeroes analog values whose magnitude is below threshold and
// rescales the rest to keep the full range.
func Deadzone(v, threshold float32) float32 {
	if threshold <= 0 {
		return v
	}
	if v > -threshold && v < threshold {
		return 0
	}
	if v > 0 {
		return (v - threshold) / (1 - threshold)
	}
	return (v + threshold) / (1 - threshold)
}
