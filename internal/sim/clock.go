// Package sim owns the simulation clock that drives every orbital phase.
package sim

import (
	"math"

	"go.uber.org/zap/zapcore"
)

// Direction selects which way AdjustSpeed steps the multiplier.
type Direction int

const (
	Increase Direction = iota
	Decrease
)

// Settings bounds the speed multiplier.
type Settings struct {
	DefaultSpeed float64
	MinSpeed     float64
	MaxSpeed     float64
	Step         float64
}

// DefaultSettings returns the stock tuning.
func DefaultSettings() Settings {
	return Settings{
		DefaultSpeed: 0.75,
		MinSpeed:     0.1,
		MaxSpeed:     3.0,
		Step:         0.05,
	}
}

// Clock accumulates simulation time scaled by a bounded speed multiplier.
type Clock struct {
	settings Settings
	time     float64
	speed    float64
}

// NewClock creates a clock at time zero running at the default speed.
func NewClock(s Settings) *Clock {
	c := &Clock{settings: s}
	c.Reset()
	return c
}

// Advance adds dt scaled by the current speed. Negative dt is ignored so
// time never runs backwards.
func (c *Clock) Advance(dt float64) {
	if dt <= 0 || math.IsNaN(dt) {
		return
	}
	c.time += dt * c.speed
}

// AdjustSpeed steps the multiplier and clamps it to the configured range.
func (c *Clock) AdjustSpeed(d Direction) {
	switch d {
	case Increase:
		c.speed += c.settings.Step
	case Decrease:
		c.speed -= c.settings.Step
	}
	c.speed = clamp(c.speed, c.settings.MinSpeed, c.settings.MaxSpeed)
}

// Reset zeroes the time and restores the default speed.
func (c *Clock) Reset() {
	c.time = 0
	c.speed = clamp(c.settings.DefaultSpeed, c.settings.MinSpeed, c.settings.MaxSpeed)
}

// Time returns the accumulated simulation time.
func (c *Clock) Time() float64 {
	return c.time
}

// Speed returns the current multiplier.
func (c *Clock) Speed() float64 {
	return c.speed
}

// SpeedPercent returns the multiplier as a percentage of MaxSpeed,
// truncated toward zero.
func (c *Clock) SpeedPercent() int {
	if c.settings.MaxSpeed <= 0 {
		return 0
	}
	return int(c.speed / c.settings.MaxSpeed * 100)
}

// MarshalLogObject lets the clock be logged with zap.Object.
func (c *Clock) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddFloat64("time", c.time)
	enc.AddFloat64("speed", c.speed)
	enc.AddInt("speed_pct", c.SpeedPercent())
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
