package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Hold a chord and retune the envelope while it sounds",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDemo(); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

// runDemo holds a C minor chord, stretches the attack mid-swell, then
// releases and stretches the release mid-tail. The printed counts are
// the voices each retune touched.
func runDemo() error {
	s, err := newSynth()
	if err != nil {
		return err
	}
	if err := s.StartAudio(); err != nil {
		return err
	}
	defer s.StopAudio()

	s.SetAttack(1.5)
	for _, note := range []int{48, 55, 60, 63} {
		s.NoteOn(note)
	}
	time.Sleep(500 * time.Millisecond)
	n := s.SetAttack(4)
	fmt.Printf("stretched attack mid-swell (%d voices), sounding: %s\n", n, s.ActiveNotes())

	time.Sleep(4 * time.Second)
	for _, note := range []int{48, 55, 60, 63} {
		s.NoteOff(note)
	}
	time.Sleep(100 * time.Millisecond)
	n = s.SetRelease(3)
	fmt.Printf("stretched release mid-tail (%d voices)\n", n)

	time.Sleep(3500 * time.Millisecond)
	s.Panic()
	return nil
}
