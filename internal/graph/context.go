// Package graph implements a small offline-renderable audio node graph:
// oscillator, gain and biquad filter nodes connected into a destination
// mixer, with WebAudio-style parameter automation and transport timers
// that fire as rendering advances the clock.
package graph

import "math"

// Timer is a cancellable callback armed on the render transport.
type Timer struct {
	when      float64
	fn        func()
	cancelled bool
	fired     bool
}

// Cancel prevents the timer from firing. Safe to call more than once.
func (t *Timer) Cancel() {
	t.cancelled = true
}

// Context owns the render clock and the destination mixer. All graph
// operations are synchronous and non-blocking; they only schedule
// automation values and arm timers. Time advances in Process.
type Context struct {
	sampleRate float64
	now        float64
	dest       *Destination
	timers     []*Timer
}

func NewContext(sampleRate int) *Context {
	c := &Context{sampleRate: float64(sampleRate)}
	c.dest = &Destination{}
	return c
}

func (c *Context) SampleRate() float64 { return c.sampleRate }

// Now returns the current render time in seconds.
func (c *Context) Now() float64 { return c.now }

// Destination returns the final mixer node.
func (c *Context) Destination() *Destination { return c.dest }

// Connect routes src into dst's input mix.
func (c *Context) Connect(src Node, dst Sink) {
	dst.addInput(src)
}

// Disconnect removes src from dst's input mix.
func (c *Context) Disconnect(src Node, dst Sink) {
	dst.removeInput(src)
}

// ScheduleAfter arms fn to run once delay seconds of rendering have
// elapsed. The callback runs on the render path, between sample blocks.
func (c *Context) ScheduleAfter(delay float64, fn func()) *Timer {
	t := &Timer{when: c.now + delay, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *Context) nextDeadline() (float64, bool) {
	next := math.Inf(1)
	found := false
	for _, t := range c.timers {
		if t.cancelled || t.fired {
			continue
		}
		if t.when < next {
			next = t.when
			found = true
		}
	}
	return next, found
}

func (c *Context) fireDue() {
	for _, t := range c.timers {
		if t.cancelled || t.fired || t.when > c.now {
			continue
		}
		t.fired = true
		t.fn()
	}
	// Compact the list so long sessions do not accumulate dead handles.
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.cancelled && !t.fired {
			live = append(live, t)
		}
	}
	c.timers = live
}

// Process renders len(dst) mono samples from the destination mixer,
// advancing the clock and firing due timers at block boundaries.
func (c *Context) Process(dst []float64) {
	c.fireDue()
	rendered := 0
	for rendered < len(dst) {
		n := len(dst) - rendered
		if deadline, ok := c.nextDeadline(); ok {
			until := int(math.Ceil((deadline - c.now) * c.sampleRate))
			if until < 1 {
				until = 1
			}
			if until < n {
				n = until
			}
		}
		block := dst[rendered : rendered+n]
		c.dest.process(c.now, 1/c.sampleRate, block)
		c.now += float64(n) / c.sampleRate
		rendered += n
		c.fireDue()
	}
}
