package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	polyvox "github.com/dkral/polyvox-go"
)

var playCmd = &cobra.Command{
	Use:   "play <file.mid>",
	Short: "Stream a Standard MIDI File to the sound card",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runPlay(args[0]); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	events, err := polyvox.ReadSMFNotes(f)
	f.Close()
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("%s contains no note events", path)
	}

	s, err := newSynth()
	if err != nil {
		return err
	}
	if err := s.StartAudio(); err != nil {
		return err
	}
	defer s.StopAudio()

	start := time.Now()
	for _, ev := range events {
		at := time.Duration(ev.At * float64(time.Second))
		if d := at - time.Since(start); d > 0 {
			time.Sleep(d)
		}
		if ev.On {
			s.NoteOn(ev.Note)
		} else {
			s.NoteOff(ev.Note)
		}
	}
	// Let release tails ring out before tearing the stream down.
	time.Sleep(time.Duration((flagRelease + 0.2) * float64(time.Second)))
	fmt.Println("playback completed")
	return nil
}
