package voxstream

import (
	"time"
)

const maxTicksPerFrame = 8

// Time carries the frame delta and the number of fixed simulation ticks
// due this frame.
type Time struct {
	Time    time.Time
	Dt      time.Duration
	FixedDt time.Duration
	Steps   int

	accumulator time.Duration
}

type TimeModule struct {
	TickRate int
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	rate := mod.TickRate
	if rate <= 0 {
		rate = 60
	}
	cmd.AddResources(&Time{
		Time:    time.Now(),
		FixedDt: time.Second / time.Duration(rate),
	})
	cmd.UseSystem(System(timeSystem).InStage(Prelude).RunAlways())
}

func timeSystem(t *Time) {
	t.advance(time.Now())
}

// advance moves the clock to now. Backlog beyond maxTicksPerFrame ticks is
// dropped so a long stall does not turn into a burst of catch-up ticks.
func (t *Time) advance(now time.Time) {
	t.Dt = now.Sub(t.Time)
	if t.Dt < 0 {
		t.Dt = 0
	}
	t.Time = now

	t.accumulator += t.Dt
	if limit := maxTicksPerFrame * t.FixedDt; t.accumulator > limit {
		t.accumulator = limit
	}

	t.Steps = int(t.accumulator / t.FixedDt)
	t.accumulator -= time.Duration(t.Steps) * t.FixedDt
}

func (t *Time) FixedSeconds() float32 {
	return float32(t.FixedDt.Seconds())
}
