// voxplay drives the polyvox engine from the command line: stream or
// bounce a Standard MIDI File, or run a small demo that exercises live
// envelope retuning.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	polyvox "github.com/dkral/polyvox-go"
)

var (
	flagSampleRate int
	flagAttack     float64
	flagDecay      float64
	flagSustain    float64
	flagRelease    float64
	flagUnison     int
	flagDetune     float64
	flagWave       string
)

var rootCmd = &cobra.Command{
	Use:   "voxplay",
	Short: "Play MIDI through the polyvox voice engine",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagSampleRate, "sample-rate", 48000, "render sample rate")
	pf.Float64Var(&flagAttack, "attack", 0.02, "attack time in seconds")
	pf.Float64Var(&flagDecay, "decay", 0.15, "decay time in seconds")
	pf.Float64Var(&flagSustain, "sustain", 0.65, "sustain level 0-1")
	pf.Float64Var(&flagRelease, "release", 0.3, "release time in seconds")
	pf.IntVar(&flagUnison, "unison", 3, "oscillators per voice")
	pf.Float64Var(&flagDetune, "detune", 7, "unison detune spread in cents")
	pf.StringVar(&flagWave, "wave", "sawtooth", "waveform: sine|square|sawtooth|triangle")
}

func newSynth() (*polyvox.Synth, error) {
	p := polyvox.DefaultParams()
	p.AttackSec = flagAttack
	p.DecaySec = flagDecay
	p.SustainLvl = flagSustain
	p.ReleaseSec = flagRelease
	p.Unison = flagUnison
	p.DetuneCents = flagDetune
	wave, err := parseWave(flagWave)
	if err != nil {
		return nil, err
	}
	p.Wave = wave
	return polyvox.New(flagSampleRate, polyvox.WithParams(p))
}

func parseWave(name string) (polyvox.Wave, error) {
	switch name {
	case "sine":
		return polyvox.WaveSine, nil
	case "square":
		return polyvox.WaveSquare, nil
	case "sawtooth", "saw":
		return polyvox.WaveSawtooth, nil
	case "triangle":
		return polyvox.WaveTriangle, nil
	default:
		return 0, fmt.Errorf("invalid --wave %q (expected sine|square|sawtooth|triangle)", name)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
