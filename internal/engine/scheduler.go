package engine

import "github.com/dkral/polyvox-go/internal/graph"

// Scheduler owns the pending release-cleanup timers, keyed by voice id
// so a single voice's timer can be cancelled or replaced in O(1) and a
// stale timer can never fire twice for the same voice.
type Scheduler struct {
	ctx     *graph.Context
	pending map[int]*graph.Timer
}

func NewScheduler(ctx *graph.Context) *Scheduler {
	return &Scheduler{
		ctx:     ctx,
		pending: make(map[int]*graph.Timer),
	}
}

// Arm schedules onFire after delay seconds of rendering for v,
// replacing (and cancelling) any timer already pending for it.
func (s *Scheduler) Arm(v *Voice, delay float64, onFire func()) {
	s.Cancel(v)
	id := v.ID()
	s.pending[id] = s.ctx.ScheduleAfter(delay, func() {
		delete(s.pending, id)
		onFire()
	})
}

// Cancel removes v's pending timer, if any. A cancelled timer never
// fires.
func (s *Scheduler) Cancel(v *Voice) {
	if t, ok := s.pending[v.ID()]; ok {
		t.Cancel()
		delete(s.pending, v.ID())
	}
}

// CancelAll clears every pending timer. Used by panic.
func (s *Scheduler) CancelAll() {
	for id, t := range s.pending {
		t.Cancel()
		delete(s.pending, id)
	}
}

// PendingCount returns the number of armed timers.
func (s *Scheduler) PendingCount() int { return len(s.pending) }
