package graph

import (
	"math"

	"github.com/dkral/polyvox-go/internal/lfo"
)

// Wave selects an oscillator waveform.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
)

// Oscillator is a free-running waveform source. Frequency is in Hz,
// Detune in cents; the effective frequency is
// Frequency * 2^(Detune/1200). It is silent until Start and after Stop.
type Oscillator struct {
	Frequency *Param
	Detune    *Param

	wave    Wave
	phase   float64 // [0, 1)
	started bool
	startAt float64
	stopped bool
	stopAt  float64
	vibrato lfo.LFO
}

func NewOscillator(wave Wave, freq float64) *Oscillator {
	return &Oscillator{
		Frequency: newParam(freq),
		Detune:    newParam(0),
		wave:      wave,
	}
}

// SetVibrato arms a pitch LFO adding depth cents of modulation at rateHz.
func (o *Oscillator) SetVibrato(depth, rateHz float64, waveform int) {
	o.vibrato.Set(depth, rateHz, waveform)
}

// Start begins oscillation at time t.
func (o *Oscillator) Start(t float64) {
	if o.started {
		return
	}
	o.started = true
	o.startAt = t
}

// Stop silences the oscillator from time t onward. Stopping is final.
func (o *Oscillator) Stop(t float64) {
	if o.stopped {
		return
	}
	o.stopped = true
	o.stopAt = t
}

// Stopped reports whether Stop has been called.
func (o *Oscillator) Stopped() bool { return o.stopped }

func (o *Oscillator) process(now, step float64, out []float64) {
	sr := 1 / step
	for i := range out {
		t := now + float64(i)*step
		if !o.started || t < o.startAt || (o.stopped && t >= o.stopAt) {
			out[i] = 0
			continue
		}
		cents := o.Detune.Value(t) + o.vibrato.Sample(sr)
		freq := o.Frequency.Value(t) * math.Exp2(cents/1200)
		out[i] = o.sample()
		o.phase += freq * step
		for o.phase >= 1 {
			o.phase--
		}
		for o.phase < 0 {
			o.phase++
		}
	}
}

func (o *Oscillator) sample() float64 {
	switch o.wave {
	case WaveSquare:
		if o.phase < 0.5 {
			return 1
		}
		return -1
	case WaveSawtooth:
		return 2*o.phase - 1
	case WaveTriangle:
		if o.phase < 0.5 {
			return 4*o.phase - 1
		}
		return 3 - 4*o.phase
	default:
		return math.Sin(2 * math.Pi * o.phase)
	}
}
