package graph

import (
	"math"
	"testing"
)

func maxAbs(buf []float64) float64 {
	var m float64
	for _, v := range buf {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func TestOscillatorProducesSignal(t *testing.T) {
	for _, tc := range []struct {
		name string
		wave Wave
	}{
		{"sine", WaveSine},
		{"square", WaveSquare},
		{"sawtooth", WaveSawtooth},
		{"triangle", WaveTriangle},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := NewContext(8000)
			osc := NewOscillator(tc.wave, 440)
			ctx.Connect(osc, ctx.Destination())
			osc.Start(0)
			buf := make([]float64, 2000)
			ctx.Process(buf)
			if maxAbs(buf) < 0.1 {
				t.Fatalf("expected signal from %s oscillator", tc.name)
			}
		})
	}
}

func TestOscillatorSilentUntilStartAndAfterStop(t *testing.T) {
	ctx := NewContext(8000)
	osc := NewOscillator(WaveSine, 440)
	ctx.Connect(osc, ctx.Destination())
	buf := make([]float64, 800)
	ctx.Process(buf)
	if maxAbs(buf) != 0 {
		t.Fatalf("oscillator produced output before Start")
	}
	osc.Start(ctx.Now())
	ctx.Process(buf)
	if maxAbs(buf) < 0.1 {
		t.Fatalf("oscillator silent after Start")
	}
	osc.Stop(ctx.Now())
	ctx.Process(buf)
	if maxAbs(buf) != 0 {
		t.Fatalf("oscillator produced output after Stop")
	}
}

func TestGainScalesInput(t *testing.T) {
	ctx := NewContext(8000)
	osc := NewOscillator(WaveSquare, 100)
	gain := NewGain(0.25)
	ctx.Connect(osc, gain)
	ctx.Connect(gain, ctx.Destination())
	osc.Start(0)
	buf := make([]float64, 1600)
	ctx.Process(buf)
	if m := maxAbs(buf); math.Abs(m-0.25) > 1e-9 {
		t.Fatalf("peak = %v, want 0.25", m)
	}
}

func TestFilterPassesAndShapesSignal(t *testing.T) {
	// A lowpass well above the fundamental passes the tone; one far
	// below it attenuates hard.
	render := func(cutoff float64) float64 {
		ctx := NewContext(48000)
		osc := NewOscillator(WaveSine, 440)
		f := NewFilter(Lowpass, 48000, cutoff, 0.707)
		ctx.Connect(osc, f)
		ctx.Connect(f, ctx.Destination())
		osc.Start(0)
		buf := make([]float64, 9600)
		ctx.Process(buf)
		// Skip the transient before measuring.
		return maxAbs(buf[4800:])
	}
	open := render(10000)
	closed := render(30)
	if open < 0.5 {
		t.Fatalf("open filter attenuated too much: %v", open)
	}
	if closed > open/4 {
		t.Fatalf("closed filter passed too much: open=%v closed=%v", open, closed)
	}
}

func TestDisconnectSilences(t *testing.T) {
	ctx := NewContext(8000)
	osc := NewOscillator(WaveSine, 440)
	ctx.Connect(osc, ctx.Destination())
	osc.Start(0)
	buf := make([]float64, 400)
	ctx.Process(buf)
	if maxAbs(buf) == 0 {
		t.Fatalf("expected signal before disconnect")
	}
	ctx.Disconnect(osc, ctx.Destination())
	ctx.Process(buf)
	if maxAbs(buf) != 0 {
		t.Fatalf("expected silence after disconnect")
	}
}

func TestTimerFiresAtDeadline(t *testing.T) {
	ctx := NewContext(1000)
	var firedAt float64 = -1
	ctx.ScheduleAfter(0.01, func() {
		firedAt = ctx.Now()
	})
	buf := make([]float64, 5)
	ctx.Process(buf)
	if firedAt >= 0 {
		t.Fatalf("timer fired early at %v", firedAt)
	}
	ctx.Process(make([]float64, 20))
	if firedAt < 0 {
		t.Fatalf("timer never fired")
	}
	if math.Abs(firedAt-0.01) > 0.002 {
		t.Fatalf("timer fired at %v, want ~0.01", firedAt)
	}
}

func TestCancelledTimerNeverFires(t *testing.T) {
	ctx := NewContext(1000)
	fired := false
	timer := ctx.ScheduleAfter(0.005, func() { fired = true })
	timer.Cancel()
	ctx.Process(make([]float64, 100))
	if fired {
		t.Fatalf("cancelled timer fired")
	}
}

func TestTimerOrdering(t *testing.T) {
	ctx := NewContext(1000)
	var order []int
	ctx.ScheduleAfter(0.02, func() { order = append(order, 2) })
	ctx.ScheduleAfter(0.01, func() { order = append(order, 1) })
	ctx.Process(make([]float64, 50))
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("timers fired in order %v, want [1 2]", order)
	}
}
