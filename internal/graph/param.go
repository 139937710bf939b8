package graph

import (
	"math"
	"sort"
)

type eventKind int

const (
	eventSetValue eventKind = iota
	eventLinearRamp
	eventExponentialRamp
)

type automationEvent struct {
	kind  eventKind
	value float64
	time  float64
}

// Param is an automatable scalar. Scheduled events form a timeline; the
// value at any time is computed from the default value and the events
// at or before that time. Ramps interpolate from the previous event's
// endpoint to their own target.
type Param struct {
	def    float64
	events []automationEvent
}

func newParam(def float64) *Param {
	return &Param{def: def}
}

func (p *Param) insert(ev automationEvent) {
	i := sort.Search(len(p.events), func(i int) bool {
		return p.events[i].time > ev.time
	})
	p.events = append(p.events, automationEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev
}

// SetValueAtTime holds the param at v from time t onward.
func (p *Param) SetValueAtTime(v, t float64) {
	p.insert(automationEvent{kind: eventSetValue, value: v, time: t})
}

// LinearRampToValueAtTime ramps linearly from the previous event's
// endpoint to v, arriving at time t.
func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.insert(automationEvent{kind: eventLinearRamp, value: v, time: t})
}

// ExponentialRampToValueAtTime ramps geometrically from the previous
// event's endpoint to v, arriving at time t. Both endpoints must be
// nonzero and share a sign; a zero start degenerates to a hold.
func (p *Param) ExponentialRampToValueAtTime(v, t float64) {
	p.insert(automationEvent{kind: eventExponentialRamp, value: v, time: t})
}

// CancelScheduledValues removes every event scheduled at or after t.
// A ramp ending at or after t is removed entirely, so callers that
// need continuity must capture Value(t) and re-assert it first.
func (p *Param) CancelScheduledValues(t float64) {
	keep := p.events[:0]
	for _, ev := range p.events {
		if ev.time < t {
			keep = append(keep, ev)
		}
	}
	p.events = keep
}

// Value returns the param's value at time t.
func (p *Param) Value(t float64) float64 {
	val := p.def
	prevTime := math.Inf(-1)
	for _, ev := range p.events {
		if ev.time <= t {
			val = ev.value
			prevTime = ev.time
			continue
		}
		switch ev.kind {
		case eventLinearRamp:
			frac := rampFraction(t, prevTime, ev.time)
			return val + (ev.value-val)*frac
		case eventExponentialRamp:
			if val == 0 || val*ev.value <= 0 {
				return val
			}
			frac := rampFraction(t, prevTime, ev.time)
			return val * math.Pow(ev.value/val, frac)
		default:
			return val
		}
	}
	return val
}

func rampFraction(t, t0, t1 float64) float64 {
	if math.IsInf(t0, -1) || t1 <= t0 {
		return 1
	}
	frac := (t - t0) / (t1 - t0)
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}
