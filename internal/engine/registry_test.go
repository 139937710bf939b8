package engine

import (
	"testing"

	"github.com/dkral/polyvox-go/internal/graph"
)

func newTestRegistry() (*graph.Context, *Registry) {
	ctx := graph.NewContext(8000)
	return ctx, NewRegistry(ctx)
}

func addVoice(ctx *graph.Context, r *Registry, id, note int) *Voice {
	v := NewVoice(ctx, testConfig(), id, note, 261.63)
	r.NoteOn(note, v)
	return v
}

func TestRegistryLIFOOrdering(t *testing.T) {
	ctx, r := newTestRegistry()
	first := addVoice(ctx, r, 1, 60)
	second := addVoice(ctx, r, 2, 60)

	if got := r.HeldCount(60); got != 2 {
		t.Fatalf("held count = %d, want 2", got)
	}
	v := r.NoteOff(60)
	if v != second {
		t.Fatalf("NoteOff returned voice %d, want the most recent (%d)", v.ID(), second.ID())
	}
	if got := r.HeldCount(60); got != 1 {
		t.Fatalf("held count after noteOff = %d, want 1", got)
	}
	if got := r.ReleasingCount(60); got != 1 {
		t.Fatalf("releasing count = %d, want 1", got)
	}
	if v := r.NoteOff(60); v != first {
		t.Fatalf("second NoteOff returned %v, want the first voice", v)
	}
}

func TestRegistryNoteOffEmptyIsNoop(t *testing.T) {
	_, r := newTestRegistry()
	if v := r.NoteOff(72); v != nil {
		t.Fatalf("NoteOff on empty note returned %v, want nil", v)
	}
	if r.HeldCount(72) != 0 || r.ReleasingCount(72) != 0 {
		t.Fatalf("no-op NoteOff altered the registry")
	}
}

func TestRegistryRemove(t *testing.T) {
	ctx, r := newTestRegistry()
	addVoice(ctx, r, 1, 60)
	v := r.NoteOff(60)
	r.Remove(v)
	if got := r.ReleasingCount(60); got != 0 {
		t.Fatalf("releasing count after remove = %d, want 0", got)
	}
	// Removing again is harmless.
	r.Remove(v)
}

func TestRegistryRemoveDisconnectsFromDestination(t *testing.T) {
	ctx, r := newTestRegistry()
	v := addVoice(ctx, r, 1, 60)
	v.GainParam().SetValueAtTime(0.3, 0)

	buf := make([]float64, 800)
	ctx.Process(buf)
	var loud bool
	for _, s := range buf {
		if s != 0 {
			loud = true
			break
		}
	}
	if !loud {
		t.Fatalf("connected voice produced no output")
	}

	r.NoteOff(60)
	r.Remove(v)
	ctx.Process(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %v after remove, want silence", i, s)
		}
	}
}

func TestRegistrySnapshots(t *testing.T) {
	ctx, r := newTestRegistry()
	addVoice(ctx, r, 1, 60)
	addVoice(ctx, r, 2, 64)
	addVoice(ctx, r, 3, 64)
	r.NoteOff(64)

	if got := len(r.AllHeld()); got != 2 {
		t.Fatalf("AllHeld = %d voices, want 2", got)
	}
	if got := len(r.AllReleasing()); got != 1 {
		t.Fatalf("AllReleasing = %d voices, want 1", got)
	}
	notes := r.Notes()
	if len(notes) != 2 || notes[0] != 60 || notes[1] != 64 {
		t.Fatalf("Notes = %v, want [60 64]", notes)
	}
}

func TestRegistryClear(t *testing.T) {
	ctx, r := newTestRegistry()
	addVoice(ctx, r, 1, 60)
	addVoice(ctx, r, 2, 64)
	r.NoteOff(64)

	all := r.Clear()
	if len(all) != 2 {
		t.Fatalf("Clear returned %d voices, want 2", len(all))
	}
	if r.HeldCount(60) != 0 || r.HeldCount(64) != 0 || r.ReleasingCount(64) != 0 {
		t.Fatalf("registry not empty after Clear")
	}
	if len(r.Notes()) != 0 {
		t.Fatalf("Notes after Clear = %v, want none", r.Notes())
	}
}
