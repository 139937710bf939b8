package engine

import (
	"sort"

	"github.com/dkral/polyvox-go/internal/graph"
)

// Registry tracks which voices are sounding for each note, split into
// held (key down) and releasing (key up, tail still audible) stacks.
// A voice lives in exactly one stack at a time, or in neither once
// cleaned up. Stacks are LIFO: the most recently triggered voice on a
// note is the first one released.
type Registry struct {
	ctx       *graph.Context
	dest      *graph.Destination
	held      map[int][]*Voice
	releasing map[int][]*Voice
}

func NewRegistry(ctx *graph.Context) *Registry {
	return &Registry{
		ctx:       ctx,
		dest:      ctx.Destination(),
		held:      make(map[int][]*Voice),
		releasing: make(map[int][]*Voice),
	}
}

// NoteOn records v under held[note] and connects its filter output to
// the destination. The connection happens here, once, and is never
// redone.
func (r *Registry) NoteOn(note int, v *Voice) {
	r.held[note] = append(r.held[note], v)
	r.ctx.Connect(v.Output(), r.dest)
}

// NoteOff pops the most recent held voice for note onto the releasing
// stack and returns it so the caller can start its release. Returns
// nil when no voice is held for the note; that is a defined no-op,
// not an error.
func (r *Registry) NoteOff(note int) *Voice {
	stack := r.held[note]
	if len(stack) == 0 {
		return nil
	}
	v := stack[len(stack)-1]
	r.held[note] = stack[:len(stack)-1]
	r.releasing[note] = append(r.releasing[note], v)
	return v
}

// Remove drops v from its note's releasing stack and disconnects it
// from the destination. No-op if the voice is not there (already
// cleaned up or panicked away).
func (r *Registry) Remove(v *Voice) {
	stack := r.releasing[v.note]
	for i, cand := range stack {
		if cand == v {
			r.releasing[v.note] = append(stack[:i], stack[i+1:]...)
			r.ctx.Disconnect(v.Output(), r.dest)
			return
		}
	}
}

// AllHeld returns a snapshot of every held voice, for retune passes.
func (r *Registry) AllHeld() []*Voice {
	var out []*Voice
	for _, stack := range r.held {
		out = append(out, stack...)
	}
	return out
}

// AllReleasing returns a snapshot of every releasing voice.
func (r *Registry) AllReleasing() []*Voice {
	var out []*Voice
	for _, stack := range r.releasing {
		out = append(out, stack...)
	}
	return out
}

// HeldCount returns the number of held voices for note.
func (r *Registry) HeldCount(note int) int { return len(r.held[note]) }

// ReleasingCount returns the number of releasing voices for note.
func (r *Registry) ReleasingCount(note int) int { return len(r.releasing[note]) }

// Notes returns every note with at least one voice in either stack,
// in ascending order.
func (r *Registry) Notes() []int {
	seen := make(map[int]bool)
	for note, stack := range r.held {
		if len(stack) > 0 {
			seen[note] = true
		}
	}
	for note, stack := range r.releasing {
		if len(stack) > 0 {
			seen[note] = true
		}
	}
	notes := make([]int, 0, len(seen))
	for note := range seen {
		notes = append(notes, note)
	}
	sort.Ints(notes)
	return notes
}

// Clear empties both stacks, disconnecting every voice, and returns
// the voices that were removed so the caller can stop them.
func (r *Registry) Clear() []*Voice {
	var all []*Voice
	for _, stack := range r.held {
		all = append(all, stack...)
	}
	for _, stack := range r.releasing {
		all = append(all, stack...)
	}
	for _, v := range all {
		r.ctx.Disconnect(v.Output(), r.dest)
	}
	r.held = make(map[int][]*Voice)
	r.releasing = make(map[int][]*Voice)
	return all
}
