package game

import "time"

// TickInterval is the countdown period.
const TickInterval = time.Second

// Countdown is the 1 Hz session clock.
type Countdown struct {
	sched   Scheduler
	session uint64
	gen     uint64
	running bool
	left    int
}

// NewCountdown creates a stopped countdown.
func NewCountdown(sched Scheduler) *Countdown {
	return &Countdown{sched: sched}
}

// Start begins counting down from seconds. A previous run is stopped first.
func (c *Countdown) Start(session uint64, seconds int) {
	c.Stop()
	c.session = session
	c.left = seconds
	c.running = true
	c.schedule()
}

// Stop halts the countdown. Safe to call repeatedly.
func (c *Countdown) Stop() {
	c.running = false
	c.gen++
}

// Running reports whether a tick is outstanding.
func (c *Countdown) Running() bool {
	return c.running
}

// Left returns the remaining seconds.
func (c *Countdown) Left() int {
	return c.left
}

// Live reports whether t would be accepted by Fire.
func (c *Countdown) Live(t Task) bool {
	return c.running && t.Kind == TaskTick && t.Session == c.session && t.Gen == c.gen
}

// Fire applies one tick. ok is false for stale tasks. expired is true exactly
// once per run, on the tick that reaches zero; the countdown stops itself.
func (c *Countdown) Fire(t Task) (left int, expired, ok bool) {
	if !c.Live(t) {
		return c.left, false, false
	}
	c.left--
	if c.left <= 0 {
		c.left = 0
		c.Stop()
		return 0, true, true
	}
	c.schedule()
	return c.left, false, true
}

func (c *Countdown) schedule() {
	c.sched.Schedule(TickInterval, Task{Kind: TaskTick, Session: c.session, Gen: c.gen})
}
