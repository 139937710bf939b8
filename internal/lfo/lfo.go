// Package lfo provides a low-frequency oscillator used to modulate
// per-voice oscillator pitch (vibrato).
package lfo

import "math"

// Waveform selectors.
const (
	WaveSine = iota
	WaveTriangle
	WaveSquare
)

// LFO produces a per-sample modulation value in [-Depth, +Depth].
// Each oscillator owns its own instance so unison partners drift
// together only when configured identically.
type LFO struct {
	depth    float64
	rateHz   float64
	waveform int
	phase    float64 // [0, 1)
}

// Set configures depth (units depend on the destination, cents here),
// rate in Hz and waveform. Unknown waveforms fall back to sine.
func (l *LFO) Set(depth, rateHz float64, waveform int) {
	if waveform < WaveSine || waveform > WaveSquare {
		waveform = WaveSine
	}
	l.depth = depth
	l.rateHz = rateHz
	l.waveform = waveform
}

// Active reports whether the LFO contributes any modulation.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rateHz != 0
}

// Sample advances the LFO by one sample and returns the modulation value.
func (l *LFO) Sample(sampleRate float64) float64 {
	if !l.Active() || sampleRate <= 0 {
		return 0
	}
	var v float64
	switch l.waveform {
	case WaveTriangle:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	case WaveSquare:
		if l.phase < 0.5 {
			v = 1
		} else {
			v = -1
		}
	default:
		v = math.Sin(2 * math.Pi * l.phase)
	}
	l.phase += l.rateHz / sampleRate
	for l.phase >= 1 {
		l.phase--
	}
	return v * l.depth
}

// Reset rewinds the LFO phase to zero.
func (l *LFO) Reset() {
	l.phase = 0
}
