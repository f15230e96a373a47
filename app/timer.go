package app

import "time"

// GameTimer tracks wall-clock total and per-tick delta time. Delta is
// clamped so a debugger pause or window drag does not feed the wave
// simulation one enormous step.
type GameTimer struct {
	start time.Time
	last  time.Time
	total float32
	delta float32

	maxDelta float32
}

func NewGameTimer() *GameTimer {
	now := time.Now()
	return &GameTimer{start: now, last: now, maxDelta: 0.25}
}

func (t *GameTimer) Reset() {
	now := time.Now()
	t.start = now
	t.last = now
	t.total = 0
	t.delta = 0
}

func (t *GameTimer) Tick() {
	now := time.Now()
	t.delta = float32(now.Sub(t.last).Seconds())
	if t.delta > t.maxDelta {
		t.delta = t.maxDelta
	}
	t.last = now
	t.total += t.delta
}

func (t *GameTimer) TotalTime() float32 { return t.total }
func (t *GameTimer) DeltaTime() float32 { return t.delta }
