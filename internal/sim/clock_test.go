package sim

import (
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewClock(t *testing.T) {
	c := NewClock(DefaultSettings())
	if c.Time() != 0 {
		t.Errorf("expected time 0, got %f", c.Time())
	}
	if c.Speed() != 0.75 {
		t.Errorf("expected speed 0.75, got %f", c.Speed())
	}
	if c.SpeedPercent() != 25 {
		t.Errorf("expected 25%%, got %d", c.SpeedPercent())
	}
}

func TestSpeedPercentTruncates(t *testing.T) {
	c := NewClock(Settings{DefaultSpeed: 0.8, MinSpeed: 0.1, MaxSpeed: 3, Step: 0.05})
	// 0.8 / 3 is 26.67%.
	if got := c.SpeedPercent(); got != 26 {
		t.Errorf("expected 26%%, got %d", got)
	}
}

func TestAdvance(t *testing.T) {
	c := NewClock(DefaultSettings())
	c.Advance(2)
	if math.Abs(c.Time()-1.5) > 1e-12 {
		t.Errorf("expected 1.5, got %f", c.Time())
	}

	c.Advance(-1)
	c.Advance(0)
	c.Advance(math.NaN())
	if math.Abs(c.Time()-1.5) > 1e-12 {
		t.Errorf("time moved on non-positive dt: %f", c.Time())
	}
}

func TestAdjustSpeedClamps(t *testing.T) {
	c := NewClock(DefaultSettings())

	for i := 0; i < 100; i++ {
		c.AdjustSpeed(Increase)
	}
	if c.Speed() != 3.0 {
		t.Errorf("expected max 3.0, got %f", c.Speed())
	}
	if c.SpeedPercent() != 100 {
		t.Errorf("expected 100%%, got %d", c.SpeedPercent())
	}

	for i := 0; i < 100; i++ {
		c.AdjustSpeed(Decrease)
	}
	if c.Speed() != 0.1 {
		t.Errorf("expected min 0.1, got %f", c.Speed())
	}
}

func TestAdjustSpeedStep(t *testing.T) {
	c := NewClock(DefaultSettings())
	c.AdjustSpeed(Increase)
	if math.Abs(c.Speed()-0.8) > 1e-9 {
		t.Errorf("expected 0.8, got %f", c.Speed())
	}
	c.AdjustSpeed(Decrease)
	c.AdjustSpeed(Decrease)
	if math.Abs(c.Speed()-0.7) > 1e-9 {
		t.Errorf("expected 0.7, got %f", c.Speed())
	}
}

func TestReset(t *testing.T) {
	c := NewClock(DefaultSettings())
	c.AdjustSpeed(Increase)
	c.Advance(10)
	c.Reset()
	if c.Time() != 0 || c.Speed() != 0.75 {
		t.Errorf("reset left time=%f speed=%f", c.Time(), c.Speed())
	}
}

func TestDefaultOutsideRangeIsClamped(t *testing.T) {
	c := NewClock(Settings{DefaultSpeed: 10, MinSpeed: 0.5, MaxSpeed: 2, Step: 0.1})
	if c.Speed() != 2 {
		t.Errorf("expected 2, got %f", c.Speed())
	}
}

func TestMarshalLogObject(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewClock(DefaultSettings())
	c.Advance(4)
	zap.New(core).Info("clock", zap.Object("clock", c))

	fields := logs.All()[0].ContextMap()["clock"].(map[string]interface{})
	if fmt.Sprint(fields["time"]) != "3" {
		t.Errorf("time field = %v, want 3", fields["time"])
	}
	if fmt.Sprint(fields["speed_pct"]) != "25" {
		t.Errorf("speed_pct field = %v, want 25", fields["speed_pct"])
	}
}
