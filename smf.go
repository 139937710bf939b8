package polyvox

import (
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// NoteEvent is a note-on or note-off at an absolute time in seconds.
type NoteEvent struct {
	At   float64
	Note int
	On   bool
}

// ReadSMFNotes extracts the note events from a Standard MIDI File,
// merged across tracks and sorted by time (offs before ons at equal
// times). Channels are ignored: the engine is a single instrument.
// Tempo is taken from the file's first tempo change, 120 BPM default.
func ReadSMFNotes(r io.Reader) ([]NoteEvent, error) {
	sm, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("read smf: %w", err)
	}
	mt, ok := sm.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported SMF time format %v", sm.TimeFormat)
	}
	bpm := 120.0
	if tc := sm.TempoChanges(); len(tc) > 0 {
		bpm = tc[0].BPM
	}

	var events []NoteEvent
	for _, track := range sm.Tracks {
		var absTicks uint32
		for _, ev := range track {
			absTicks += ev.Delta
			var ch, key, vel uint8
			switch {
			case ev.Message.GetNoteStart(&ch, &key, &vel):
				events = append(events, NoteEvent{
					At:   mt.Duration(bpm, absTicks).Seconds(),
					Note: int(key),
					On:   true,
				})
			case ev.Message.GetNoteEnd(&ch, &key):
				events = append(events, NoteEvent{
					At:   mt.Duration(bpm, absTicks).Seconds(),
					Note: int(key),
				})
			}
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].At != events[j].At {
			return events[i].At < events[j].At
		}
		return !events[i].On && events[j].On
	})
	return events, nil
}

// RenderSMF plays a Standard MIDI File through the engine offline and
// returns the interleaved stereo output, including tail seconds of
// rendering after the last event so release tails ring out.
func (s *Synth) RenderSMF(r io.Reader, tail float64) ([]float32, error) {
	events, err := ReadSMFNotes(r)
	if err != nil {
		return nil, err
	}
	var out []float32
	cursor := 0.0
	for _, ev := range events {
		if ev.At > cursor {
			out = append(out, s.Render(ev.At-cursor)...)
			cursor = ev.At
		}
		if ev.On {
			s.NoteOn(ev.Note)
		} else {
			s.NoteOff(ev.Note)
		}
	}
	out = append(out, s.Render(tail)...)
	return out, nil
}
