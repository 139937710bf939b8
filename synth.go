// Package polyvox is a polyphonic subtractive-synthesizer voice engine.
// It turns note-on/note-off events into a population of sounding
// voices, each with its own ADSR amplitude envelope, and lets the
// caller retune envelope parameters while notes are sounding: in-flight
// ramps are rescaled proportionally to how far along they are instead
// of being restarted.
package polyvox

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	intaudio "github.com/dkral/polyvox-go/internal/audio"
	intengine "github.com/dkral/polyvox-go/internal/engine"
	intgraph "github.com/dkral/polyvox-go/internal/graph"
)

// Wave selects the oscillator waveform for future voices.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
)

// FilterShape selects the filter response for future voices.
type FilterShape int

const (
	FilterLowpass FilterShape = iota
	FilterHighpass
	FilterBandpass
)

// Params holds the synthesis parameters voices are built from and the
// envelope times the engine schedules with. Values are stored as
// given: out-of-range values (negative times, sustain above 1)
// propagate into the automation layer and produce whatever degenerate
// ramps result. Callers needing strict envelopes validate first.
type Params struct {
	AttackSec    float64
	DecaySec     float64
	SustainLvl   float64 // 0-1, fraction of MaxGain
	ReleaseSec   float64
	Unison       int // oscillators per voice
	DetuneCents  float64
	Wave         Wave
	MaxGain      float64
	FilterType   FilterShape
	FilterFreq   float64
	FilterQ      float64
	VibratoCents float64
	VibratoHz    float64
	MasterGain   float64
}

func DefaultParams() Params {
	return Params{
		AttackSec:   0.02,
		DecaySec:    0.15,
		SustainLvl:  0.65,
		ReleaseSec:  0.3,
		Unison:      3,
		DetuneCents: 7,
		Wave:        WaveSawtooth,
		MaxGain:     0.3,
		FilterType:  FilterLowpass,
		FilterFreq:  9000,
		FilterQ:     0.707,
		MasterGain:  0.8,
	}
}

type synthConfig struct {
	params Params
}

type Option func(*synthConfig)

// WithParams replaces the default synthesis parameters.
func WithParams(p Params) Option {
	return func(cfg *synthConfig) {
		cfg.params = p
	}
}

// Synth is the note-level facade. All methods are synchronous and
// non-blocking: they schedule automation values and arm timers that
// fire as rendering advances. A single mutex serializes note calls,
// parameter changes and the render path, preserving the cooperative
// single-threaded model.
type Synth struct {
	mu         sync.Mutex
	sampleRate int
	ctx        *intgraph.Context
	reg        *intengine.Registry
	env        *intengine.Envelope
	sched      *intengine.Scheduler
	params     Params
	nextID     int
	audio      *intaudio.Output
	mono       []float64
}

// New creates a silent synth rendering at sampleRate.
func New(sampleRate int, opts ...Option) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := synthConfig{params: DefaultParams()}
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx := intgraph.NewContext(sampleRate)
	return &Synth{
		sampleRate: sampleRate,
		ctx:        ctx,
		reg:        intengine.NewRegistry(ctx),
		env:        intengine.NewEnvelope(ctx),
		sched:      intengine.NewScheduler(ctx),
		params:     cfg.params,
	}, nil
}

func (s *Synth) SampleRate() int { return s.sampleRate }

// NoteToFreq maps a MIDI note number to its equal-temperament
// frequency: f = 440 * 2^((note-69)/12).
func NoteToFreq(note int) float64 {
	return 440 * math.Exp2(float64(note-69)/12)
}

func (s *Synth) voiceConfig() intengine.Config {
	p := s.params
	return intengine.Config{
		Unison:       p.Unison,
		DetuneCents:  p.DetuneCents,
		Wave:         intgraph.Wave(p.Wave),
		MaxGain:      p.MaxGain,
		FilterType:   intgraph.FilterType(p.FilterType),
		FilterFreq:   p.FilterFreq,
		FilterQ:      p.FilterQ,
		VibratoDepth: p.VibratoCents,
		VibratoRate:  p.VibratoHz,
	}
}

// NoteOn builds a voice for note from the current parameters, records
// it as held and starts its attack. Repeated NoteOn for the same note
// stacks voices; NoteOff peels them off most-recent-first.
func (s *Synth) NoteOn(note int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	v := intengine.NewVoice(s.ctx, s.voiceConfig(), s.nextID, note, NoteToFreq(note))
	s.reg.NoteOn(note, v)
	s.env.StartAttack(v, s.params.AttackSec, s.params.DecaySec, s.params.SustainLvl)
}

// NoteOff moves the most recent held voice for note into release and
// arms its cleanup timer. NoteOff on a note with no held voice is a
// defined no-op.
func (s *Synth) NoteOff(note int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.reg.NoteOff(note)
	if v == nil {
		return
	}
	s.env.StartRelease(v, s.params.ReleaseSec)
	s.armRelease(v, s.params.ReleaseSec)
}

// armRelease schedules the voice's cleanup: stop its oscillators and
// drop it from the releasing stack. Caller holds s.mu; the timer fires
// on the render path, which also holds it.
func (s *Synth) armRelease(v *intengine.Voice, delay float64) {
	s.sched.Arm(v, delay, func() {
		v.Stop(s.ctx.Now())
		s.reg.Remove(v)
	})
}

// Panic stops every voice in both stacks, clears the registry and
// cancels all pending release timers. Safe at any time, including
// mid-ramp, and leaves the synth as freshly constructed.
func (s *Synth) Panic() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.ctx.Now()
	for _, v := range s.reg.Clear() {
		v.Stop(now)
	}
	s.sched.CancelAll()
}

func (s *Synth) allVoices() []*intengine.Voice {
	return append(s.reg.AllHeld(), s.reg.AllReleasing()...)
}

// SetAttack stores the new attack time and retargets every voice
// currently mid-attack, returning how many were touched. A voice with
// fraction p of its old attack remaining gets sec*p of the new one.
func (s *Synth) SetAttack(sec float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.AttackSec = sec
	return s.env.RetargetAttack(s.reg.AllHeld(), sec, s.params.DecaySec, s.params.SustainLvl)
}

// SetDecay stores the new decay time and retargets voices mid-decay
// (proportionally) and mid-attack (their scheduled decay segment).
func (s *Synth) SetDecay(sec float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.DecaySec = sec
	return s.env.RetargetDecay(s.reg.AllHeld(), sec, s.params.SustainLvl)
}

// SetSustain stores the new sustain level and re-aims decaying and
// sustaining voices at it. Voices mid-attack have their pending decay
// re-aimed without disturbing the attack; releasing voices are
// unaffected.
func (s *Synth) SetSustain(level float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.SustainLvl = level
	return s.env.RetargetSustain(s.reg.AllHeld(), level)
}

// SetRelease stores the new release time and retargets every releasing
// voice, replacing its pending cleanup timer with one for the rescaled
// remainder. The old timer is cancelled before the new one is armed so
// a voice can never be stopped twice.
func (s *Synth) SetRelease(sec float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.ReleaseSec = sec
	return s.env.RetargetRelease(s.reg.AllReleasing(), sec, func(v *intengine.Voice, remaining float64) {
		s.armRelease(v, remaining)
	})
}

// SetUnison sets the oscillator count for future voices only.
func (s *Synth) SetUnison(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Unison = count
}

// SetDetune sets the unison detune spread for future voices only.
func (s *Synth) SetDetune(cents float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.DetuneCents = cents
}

// SetWave sets the oscillator waveform for future voices only.
func (s *Synth) SetWave(w Wave) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Wave = w
}

// SetFilter sets the filter shape, cutoff and Q for future voices only.
func (s *Synth) SetFilter(typ FilterShape, freq, q float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.FilterType = typ
	s.params.FilterFreq = freq
	s.params.FilterQ = q
}

// SetVibrato sets the pitch-LFO depth (cents) and rate for future
// voices only. Zero depth or rate disables it.
func (s *Synth) SetVibrato(depthCents, rateHz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.VibratoCents = depthCents
	s.params.VibratoHz = rateHz
}

// SetMasterGain sets the output scalar applied after the voice mix.
func (s *Synth) SetMasterGain(gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.MasterGain = gain
}

// Params returns a copy of the current parameters.
func (s *Synth) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// HeldCount returns the number of held voices for note.
func (s *Synth) HeldCount(note int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.HeldCount(note)
}

// ReleasingCount returns the number of releasing voices for note.
func (s *Synth) ReleasingCount(note int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.ReleasingCount(note)
}

// ActiveVoiceCount returns the number of voices in either stack.
func (s *Synth) ActiveVoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.allVoices())
}

// ActiveNotes returns a textual summary of every sounding note, e.g.
// "C4 held=2 releasing=1, E4 held=1". Empty string when silent.
func (s *Synth) ActiveNotes() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := s.reg.Notes()
	parts := make([]string, 0, len(notes))
	for _, n := range notes {
		var b strings.Builder
		b.WriteString(noteName(n))
		if c := s.reg.HeldCount(n); c > 0 {
			fmt.Fprintf(&b, " held=%d", c)
		}
		if c := s.reg.ReleasingCount(n); c > 0 {
			fmt.Fprintf(&b, " releasing=%d", c)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ", ")
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(note int) string {
	if note < 0 || note > 127 {
		return fmt.Sprintf("#%d", note)
	}
	return fmt.Sprintf("%s%d", noteNames[note%12], note/12-1)
}

// Process renders len(dst)/2 frames of interleaved stereo float32,
// advancing engine time and firing due release timers. This is the
// cooperative event loop everything else schedules onto.
func (s *Synth) Process(dst []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	frames := len(dst) / 2
	if cap(s.mono) < frames {
		s.mono = make([]float64, frames)
	}
	mono := s.mono[:frames]
	s.ctx.Process(mono)
	for i := 0; i < frames; i++ {
		v := float32(mono[i] * s.params.MasterGain)
		dst[2*i] = v
		dst[2*i+1] = v
	}
}

// StartAudio begins streaming the engine to the sound card.
func (s *Synth) StartAudio() error {
	s.mu.Lock()
	if s.audio != nil {
		s.mu.Unlock()
		return errors.New("audio already started")
	}
	s.mu.Unlock()
	out, err := intaudio.NewOutput(s.sampleRate, s)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.audio != nil {
		// Lost the race to a concurrent StartAudio.
		s.mu.Unlock()
		out.Stop()
		return errors.New("audio already started")
	}
	s.audio = out
	s.mu.Unlock()
	out.Play()
	return nil
}

// StopAudio stops streaming. The engine state is left intact.
func (s *Synth) StopAudio() error {
	s.mu.Lock()
	out := s.audio
	s.audio = nil
	s.mu.Unlock()
	if out == nil {
		return nil
	}
	return out.Stop()
}
