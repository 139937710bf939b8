package graph

import "math"

// FilterType selects the biquad response shape.
type FilterType int

const (
	Lowpass FilterType = iota
	Highpass
	Bandpass
)

// Filter is a biquad filter stage with automatable cutoff and Q.
// Coefficients follow the RBJ audio EQ cookbook and are refreshed at
// block rate; state is direct form I.
type Filter struct {
	mixer
	Frequency *Param
	Q         *Param

	typ        FilterType
	sampleRate float64

	b0, b1, b2 float64
	a1, a2     float64
	coFreq     float64
	coQ        float64

	x1, x2 float64
	y1, y2 float64
}

func NewFilter(typ FilterType, sampleRate, freq, q float64) *Filter {
	f := &Filter{
		Frequency:  newParam(freq),
		Q:          newParam(q),
		typ:        typ,
		sampleRate: sampleRate,
		coFreq:     math.NaN(),
	}
	return f
}

func (f *Filter) Type() FilterType { return f.typ }

func (f *Filter) updateCoefficients(freq, q float64) {
	if freq == f.coFreq && q == f.coQ {
		return
	}
	f.coFreq = freq
	f.coQ = q

	if freq < 1 {
		freq = 1
	}
	nyquist := f.sampleRate / 2
	if freq > nyquist*0.99 {
		freq = nyquist * 0.99
	}
	if q < 1e-4 {
		q = 1e-4
	}

	w0 := 2 * math.Pi * freq / f.sampleRate
	cosw := math.Cos(w0)
	sinw := math.Sin(w0)
	alpha := sinw / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch f.typ {
	case Highpass:
		b0 = (1 + cosw) / 2
		b1 = -(1 + cosw)
		b2 = (1 + cosw) / 2
	case Bandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default: // Lowpass
		b0 = (1 - cosw) / 2
		b1 = 1 - cosw
		b2 = (1 - cosw) / 2
	}
	a0 = 1 + alpha
	a1 = -2 * cosw
	a2 = 1 - alpha

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

func (f *Filter) process(now, step float64, out []float64) {
	f.sum(now, step, out)
	f.updateCoefficients(f.Frequency.Value(now), f.Q.Value(now))
	for i, x := range out {
		y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
		f.x2, f.x1 = f.x1, x
		f.y2, f.y1 = f.y1, y
		out[i] = y
	}
}
