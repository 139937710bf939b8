// Package audio bridges the engine's pull-based render loop to the
// sound card via the ebiten audio context.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Source produces interleaved stereo float32 frames on demand.
type Source interface {
	Process(dst []float32)
}

// stream adapts a Source to the io.Reader the ebiten player consumes:
// 8 bytes per frame, two little-endian float32 channels.
type stream struct {
	mu     sync.Mutex
	source Source
	buf    []float32
}

func (s *stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(s.buf) < need {
		s.buf = make([]float32, need)
	}
	s.buf = s.buf[:need]
	s.source.Process(s.buf)
	for i, v := range s.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return frames * 8, nil
}

var (
	ctxOnce sync.Once
	ctx     *ebitaudio.Context
	ctxRate int
)

// The ebiten audio context is process-global and fixed-rate; creating
// a second Output at a different rate is an error, not a new context.
func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	ctxOnce.Do(func() {
		ctxRate = sampleRate
		ctx = ebitaudio.NewContext(sampleRate)
	})
	if ctxRate != sampleRate {
		return nil, fmt.Errorf("audio context already running at %d Hz (requested %d Hz)", ctxRate, sampleRate)
	}
	return ctx, nil
}

// Output streams a Source to the default audio device.
type Output struct {
	player *ebitaudio.Player
}

func NewOutput(sampleRate int, source Source) (*Output, error) {
	c, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	pl, err := c.NewPlayerF32(&stream{source: source})
	if err != nil {
		return nil, err
	}
	return &Output{player: pl}, nil
}

func (o *Output) Play()  { o.player.Play() }
func (o *Output) Pause() { o.player.Pause() }

func (o *Output) Stop() error {
	o.player.Pause()
	return o.player.Close()
}
