package engine

import "github.com/dkral/polyvox-go/internal/graph"

const (
	// attackPeakRatio is the fraction of MaxGain the attack ramp aims
	// for. Slightly under 1 so the linear ramp target is reached inside
	// the scheduled window rather than asymptotically.
	attackPeakRatio = 0.993

	// releaseFloor is the exponential release target. Never exactly 0:
	// exponential ramps are undefined at a zero endpoint.
	releaseFloor = 0.0001
)

// Envelope schedules and reschedules amplitude ramps on voices. Every
// mutation of a voice's gain automation starts by capturing the current
// value and cancelling what was scheduled, so competing ramps never
// overlap and the gain stays continuous across a retune.
type Envelope struct {
	ctx *graph.Context
}

func NewEnvelope(ctx *graph.Context) *Envelope {
	return &Envelope{ctx: ctx}
}

func (e *Envelope) peak(v *Voice) float64 {
	return attackPeakRatio * v.maxGain
}

// capture freezes the gain param at its current value, dropping all
// scheduled automation, and returns that value.
func (e *Envelope) capture(v *Voice, now float64) float64 {
	g := v.GainParam()
	cur := g.Value(now)
	g.CancelScheduledValues(now)
	g.SetValueAtTime(cur, now)
	return cur
}

// StartAttack ramps the gain from its current value to the attack peak
// over attackSec, with the decay ramp to the sustain level scheduled
// directly behind it. The attack clock starts now; the decay clock
// starts when the attack ends.
func (e *Envelope) StartAttack(v *Voice, attackSec, decaySec, sustain float64) {
	now := e.ctx.Now()
	e.capture(v, now)
	g := v.GainParam()
	g.LinearRampToValueAtTime(e.peak(v), now+attackSec)
	g.LinearRampToValueAtTime(sustain*v.maxGain, now+attackSec+decaySec)
	v.stage = StageAttack
	v.attack = stageClock{start: now, duration: attackSec}
	v.decay = stageClock{start: now + attackSec, duration: decaySec}
}

// StartRelease captures the current gain, re-asserts it and ramps
// exponentially to the release floor over releaseSec.
func (e *Envelope) StartRelease(v *Voice, releaseSec float64) {
	now := e.ctx.Now()
	cur := e.capture(v, now)
	g := v.GainParam()
	if cur < releaseFloor {
		// An exponential ramp from at-or-below the floor would run
		// backwards; pin the start to the floor instead.
		g.SetValueAtTime(releaseFloor, now)
	}
	g.ExponentialRampToValueAtTime(releaseFloor, now+releaseSec)
	v.stage = StageRelease
	v.release = stageClock{start: now, duration: releaseSec}
}

// RetargetAttack rescales the in-flight attack of every voice currently
// mid-attack: a voice with remaining fraction p gets newAttack*p of
// ramp left, continuing from its current gain value (no restart, no
// snap). The trailing decay ramp is re-scheduled behind the new attack
// end. Returns the number of voices touched.
func (e *Envelope) RetargetAttack(voices []*Voice, newAttack, decaySec, sustain float64) int {
	now := e.ctx.Now()
	applied := 0
	for _, v := range voices {
		if v.CurrentStage(now) != StageAttack {
			continue
		}
		p := v.attack.remaining(now)
		rem := newAttack * p
		e.capture(v, now)
		g := v.GainParam()
		g.LinearRampToValueAtTime(e.peak(v), now+rem)
		g.LinearRampToValueAtTime(sustain*v.maxGain, now+rem+decaySec)
		v.attack.retarget(now, newAttack)
		v.decay = stageClock{start: now + rem, duration: decaySec}
		applied++
	}
	return applied
}

// RetargetDecay rescales the in-flight decay of voices mid-decay, and
// re-schedules the pending decay segment of voices still mid-attack so
// the new duration takes effect when their attack completes.
func (e *Envelope) RetargetDecay(voices []*Voice, newDecay, sustain float64) int {
	now := e.ctx.Now()
	applied := 0
	for _, v := range voices {
		switch v.CurrentStage(now) {
		case StageDecay:
			p := v.decay.remaining(now)
			rem := newDecay * p
			e.capture(v, now)
			v.GainParam().LinearRampToValueAtTime(sustain*v.maxGain, now+rem)
			v.decay.retarget(now, newDecay)
			applied++
		case StageAttack:
			attackEnd := v.attack.start + v.attack.duration
			e.capture(v, now)
			g := v.GainParam()
			g.LinearRampToValueAtTime(e.peak(v), attackEnd)
			g.LinearRampToValueAtTime(sustain*v.maxGain, attackEnd+newDecay)
			v.decay = stageClock{start: attackEnd, duration: newDecay}
			applied++
		}
	}
	return applied
}

// RetargetSustain re-aims voices mid-decay at the new sustain level
// over their remaining decay time, and moves voices already sustaining
// straight to it. Voices mid-attack keep ramping to the peak unchanged,
// but their pending decay segment is re-aimed so they settle at the new
// level instead of the one their note-on scheduled.
func (e *Envelope) RetargetSustain(voices []*Voice, sustain float64) int {
	now := e.ctx.Now()
	applied := 0
	for _, v := range voices {
		switch v.CurrentStage(now) {
		case StageDecay:
			remSec := v.decay.remaining(now) * v.decay.duration
			e.capture(v, now)
			v.GainParam().LinearRampToValueAtTime(sustain*v.maxGain, now+remSec)
			applied++
		case StageSustain:
			e.capture(v, now)
			v.GainParam().SetValueAtTime(sustain*v.maxGain, now)
			applied++
		case StageAttack:
			attackEnd := v.attack.start + v.attack.duration
			e.capture(v, now)
			g := v.GainParam()
			g.LinearRampToValueAtTime(e.peak(v), attackEnd)
			g.LinearRampToValueAtTime(sustain*v.maxGain, attackEnd+v.decay.duration)
			applied++
		}
	}
	return applied
}

// RetargetRelease rescales the in-flight release of voices mid-release
// and hands each one to rearm with its new remaining duration, so the
// caller can replace the pending cleanup timer (cancel before
// reschedule; a stale timer must never fire).
func (e *Envelope) RetargetRelease(voices []*Voice, newRelease float64, rearm func(v *Voice, remaining float64)) int {
	now := e.ctx.Now()
	applied := 0
	for _, v := range voices {
		if v.CurrentStage(now) != StageRelease {
			continue
		}
		p := v.release.remaining(now)
		rem := newRelease * p
		cur := e.capture(v, now)
		g := v.GainParam()
		if cur < releaseFloor {
			g.SetValueAtTime(releaseFloor, now)
		}
		g.ExponentialRampToValueAtTime(releaseFloor, now+rem)
		v.release.retarget(now, newRelease)
		if rearm != nil {
			rearm(v, rem)
		}
		applied++
	}
	return applied
}
