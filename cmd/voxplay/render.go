package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	polyvox "github.com/dkral/polyvox-go"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render <file.mid>",
	Short: "Bounce a Standard MIDI File to a float32 WAV",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRender(args[0]); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "out.wav", "output WAV path")
	rootCmd.AddCommand(renderCmd)
}

func runRender(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := newSynth()
	if err != nil {
		return err
	}
	samples, err := s.RenderSMF(f, flagRelease+0.2)
	if err != nil {
		return err
	}
	wav := polyvox.EncodeWAVFloat32LE(samples, flagSampleRate, 2)
	if err := os.WriteFile(renderOut, wav, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames)\n", renderOut, len(samples)/2)
	return nil
}
