// Package engine implements the voice lifecycle: voice construction,
// the ADSR envelope state machine with live retargeting, the per-note
// held/releasing registry and the release cleanup scheduler.
package engine

import "github.com/dkral/polyvox-go/internal/graph"

// Envelope stages. Release is reachable from any of the first three.
type Stage int

const (
	StageAttack Stage = iota
	StageDecay
	StageSustain
	StageRelease
	StageStopped
)

// Config captures the synth parameters a voice is built from. Changing
// these after construction never touches an already-sounding voice.
type Config struct {
	Unison       int
	DetuneCents  float64
	Wave         graph.Wave
	MaxGain      float64
	FilterType   graph.FilterType
	FilterFreq   float64
	FilterQ      float64
	VibratoDepth float64
	VibratoRate  float64
	VibratoWave  int
}

// stageClock records when an envelope stage started and how long it
// runs, so stage progress is derived analytically instead of shadowing
// the gain automation with a second ramp.
type stageClock struct {
	start    float64
	duration float64
}

// remaining returns the fraction of the stage still to run at time now,
// clamped to [0, 1]. 1 means the stage has not begun consuming time,
// 0 means it has completed.
func (c stageClock) remaining(now float64) float64 {
	if c.duration <= 0 {
		return 0
	}
	rem := 1 - (now-c.start)/c.duration
	if rem < 0 {
		return 0
	}
	if rem > 1 {
		return 1
	}
	return rem
}

// retarget rescales the clock to newDuration while preserving the
// current remaining fraction, so a voice 80% through its old stage is
// 80% through the new one.
func (c *stageClock) retarget(now, newDuration float64) {
	p := c.remaining(now)
	c.duration = newDuration
	c.start = now - (1-p)*newDuration
}

// Voice is one sounding unit: unison oscillators into a shared gain
// stage into a shared filter stage, plus the three stage clocks the
// envelope engine reads progress from. The registry is the only
// component that removes a voice; the envelope engine only schedules
// on it.
type Voice struct {
	id      int
	note    int
	oscs    []*graph.Oscillator
	gain    *graph.Gain
	filter  *graph.Filter
	maxGain float64

	stage   Stage
	attack  stageClock
	decay   stageClock
	release stageClock
}

// NewVoice builds and starts a voice at freq Hz. Oscillator 0 is
// undetuned; the rest alternate sign in pairs at growing multiples of
// cfg.DetuneCents (+1x, -1x, +2x, -2x, ...) for a symmetric unison
// spread. The gain stage opens near-silent (0.001, never 0, to keep
// later exponential ramps well-defined). The filter output is left
// unconnected; the registry connects it to the destination at note-on.
func NewVoice(ctx *graph.Context, cfg Config, id, note int, freq float64) *Voice {
	count := cfg.Unison
	if count < 1 {
		count = 1
	}
	v := &Voice{
		id:      id,
		note:    note,
		gain:    graph.NewGain(0.001),
		filter:  graph.NewFilter(cfg.FilterType, ctx.SampleRate(), cfg.FilterFreq, cfg.FilterQ),
		maxGain: cfg.MaxGain,
	}
	now := ctx.Now()
	for i := 0; i < count; i++ {
		osc := graph.NewOscillator(cfg.Wave, freq)
		if i > 0 {
			mult := float64((i + 1) / 2)
			if i%2 == 0 {
				mult = -mult
			}
			osc.Detune.SetValueAtTime(cfg.DetuneCents*mult, now)
		}
		if cfg.VibratoDepth != 0 && cfg.VibratoRate != 0 {
			osc.SetVibrato(cfg.VibratoDepth, cfg.VibratoRate, cfg.VibratoWave)
		}
		ctx.Connect(osc, v.gain)
		osc.Start(now)
		v.oscs = append(v.oscs, osc)
	}
	ctx.Connect(v.gain, v.filter)
	return v
}

func (v *Voice) ID() int   { return v.id }
func (v *Voice) Note() int { return v.note }

// Output returns the node the registry connects to the destination.
func (v *Voice) Output() graph.Node { return v.filter }

// GainParam exposes the shared gain stage's automation parameter.
func (v *Voice) GainParam() *graph.Param { return v.gain.Gain }

// Oscillators returns the voice's unison oscillators in build order.
func (v *Voice) Oscillators() []*graph.Oscillator { return v.oscs }

// CurrentStage derives the stage at time now. Attack/Decay/Sustain fall
// out of the stage clocks; Release and Stopped are explicit.
func (v *Voice) CurrentStage(now float64) Stage {
	switch v.stage {
	case StageRelease, StageStopped:
		return v.stage
	}
	if v.attack.remaining(now) > 0 {
		return StageAttack
	}
	if v.decay.remaining(now) > 0 {
		return StageDecay
	}
	return StageSustain
}

// Progress returns the remaining fraction of the given stage at now.
func (v *Voice) Progress(stage Stage, now float64) float64 {
	switch stage {
	case StageAttack:
		return v.attack.remaining(now)
	case StageDecay:
		return v.decay.remaining(now)
	case StageRelease:
		return v.release.remaining(now)
	}
	return 0
}

// Stop silences the voice permanently: all oscillators stop at time t.
func (v *Voice) Stop(t float64) {
	for _, osc := range v.oscs {
		osc.Stop(t)
	}
	v.stage = StageStopped
}

// Stopped reports whether every oscillator has been stopped.
func (v *Voice) Stopped() bool {
	for _, osc := range v.oscs {
		if !osc.Stopped() {
			return false
		}
	}
	return len(v.oscs) > 0
}
