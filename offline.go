package polyvox

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Render runs the engine forward for the given duration and returns
// the interleaved stereo float32 output. Release timers fire as the
// rendered time passes their deadline, so Render doubles as the
// deterministic clock for tests and offline bounces.
func (s *Synth) Render(seconds float64) []float32 {
	frames := int(float64(s.sampleRate) * seconds)
	if frames <= 0 {
		return nil
	}
	out := make([]float32, frames*2)
	s.Process(out)
	return out
}

// EncodeWAVFloat32LE wraps interleaved float32 samples in a RIFF/WAVE
// container (format 3, IEEE float).
func EncodeWAVFloat32LE(samples []float32, sampleRate, channels int) []byte {
	dataSize := len(samples) * 4
	var b bytes.Buffer
	b.Grow(44 + dataSize)
	b.WriteString("RIFF")
	le := binary.LittleEndian
	writeU32 := func(v uint32) {
		var tmp [4]byte
		le.PutUint32(tmp[:], v)
		b.Write(tmp[:])
	}
	writeU16 := func(v uint16) {
		var tmp [2]byte
		le.PutUint16(tmp[:], v)
		b.Write(tmp[:])
	}
	writeU32(uint32(36 + dataSize))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	writeU32(16)
	writeU16(3) // IEEE float
	writeU16(uint16(channels))
	writeU32(uint32(sampleRate))
	writeU32(uint32(sampleRate * channels * 4))
	writeU16(uint16(channels * 4))
	writeU16(32)
	b.WriteString("data")
	writeU32(uint32(dataSize))
	for _, v := range samples {
		writeU32(math.Float32bits(v))
	}
	return b.Bytes()
}
