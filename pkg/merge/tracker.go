package merge

import (
	"sort"

	"github.com/google/uuid"
)

// Tracker indexes jobs by slot for the controls that start them. It is owned
// by a single event loop and does no locking.
type Tracker struct {
	jobs   map[uuid.UUID]Job
	bySlot map[Slot]uuid.UUID
	order  []uuid.UUID
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		jobs:   map[uuid.UUID]Job{},
		bySlot: map[Slot]uuid.UUID{},
	}
}

// Busy reports whether a job for slot is still in flight.
func (t *Tracker) Busy(slot Slot) bool {
	id, ok := t.bySlot[slot]
	if !ok {
		return false
	}
	return !t.jobs[id].State.Terminal()
}

// Track records a new job. It returns false when the slot is already busy.
func (t *Tracker) Track(j Job) bool {
	if t.Busy(j.Slot()) {
		return false
	}
	if _, ok := t.jobs[j.ID]; !ok {
		t.order = append(t.order, j.ID)
	}
	t.jobs[j.ID] = j
	t.bySlot[j.Slot()] = j.ID
	return true
}

// Update replaces the snapshot for j.ID. Snapshots for unknown jobs and
// snapshots that would move a terminal job backwards are ignored.
func (t *Tracker) Update(j Job) bool {
	cur, ok := t.jobs[j.ID]
	if !ok {
		return false
	}
	if cur.State.Terminal() {
		return false
	}
	if !j.State.Terminal() && j.Progress < cur.Progress {
		j.Progress = cur.Progress
	}
	t.jobs[j.ID] = j
	return true
}

// Get returns the snapshot for id.
func (t *Tracker) Get(id uuid.UUID) (Job, bool) {
	j, ok := t.jobs[id]
	return j, ok
}

// Jobs returns every tracked job, oldest first.
func (t *Tracker) Jobs() []Job {
	out := make([]Job, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.jobs[id])
	}
	return out
}

// Active returns in-flight jobs, oldest first.
func (t *Tracker) Active() []Job {
	var out []Job
	for _, id := range t.order {
		if j := t.jobs[id]; !j.State.Terminal() {
			out = append(out, j)
		}
	}
	return out
}

// Prune drops finished jobs, keeping the newest keep of them.
func (t *Tracker) Prune(keep int) {
	var finished []uuid.UUID
	for _, id := range t.order {
		if t.jobs[id].State.Terminal() {
			finished = append(finished, id)
		}
	}
	if len(finished) <= keep {
		return
	}
	sort.SliceStable(finished, func(i, k int) bool {
		return t.jobs[finished[i]].FinishedAt.Before(t.jobs[finished[k]].FinishedAt)
	})
	drop := map[uuid.UUID]bool{}
	for _, id := range finished[:len(finished)-keep] {
		drop[id] = true
		j := t.jobs[id]
		if t.bySlot[j.Slot()] == id {
			delete(t.bySlot, j.Slot())
		}
		delete(t.jobs, id)
	}
	order := t.order[:0]
	for _, id := range t.order {
		if !drop[id] {
			order = append(order, id)
		}
	}
	t.order = order
}
