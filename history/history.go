// Package history implements a bounded undo/redo stack over full PageModel
// snapshots.
//
// Entries are whole models, not diffs: typical page trees are small enough
// that snapshot copies are cheap relative to user think-time, and full
// snapshots cannot accumulate patch-application bugs. The timeline invariant
// is past ++ [present] ++ future in chronological order; recording a new
// edit truncates future entirely (no branching history).
package history

import (
	"time"

	"github.com/hazyhaar/pagecraft/pagemodel"
)

// DefaultMaxDepth bounds the past stack when no explicit depth is given.
const DefaultMaxDepth = 50

// Entry is one recorded editor state.
type Entry struct {
	Snapshot *pagemodel.PageModel
	Label    string // human-readable description of the edit, diagnostic only
	At       time.Time
}

// Manager is the undo/redo state machine. It is not safe for concurrent
// use; the owning session serialises access.
type Manager struct {
	past     []Entry
	present  Entry
	future   []Entry
	maxDepth int
}

// NewManager seeds the manager with the freshly loaded model. The load
// itself is never undoable: past and future start empty.
func NewManager(initial *pagemodel.PageModel, maxDepth int) *Manager {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Manager{
		present:  Entry{Snapshot: initial, Label: "loaded", At: time.Now()},
		maxDepth: maxDepth,
	}
}

// Record accepts a new model as the present state. The previous present is
// pushed onto past and the redo stack is cleared — this is the only path by
// which future is ever cleared. When past exceeds the configured depth the
// oldest entry is evicted, strict FIFO.
func (h *Manager) Record(m *pagemodel.PageModel, label string) {
	h.past = append(h.past, h.present)
	if len(h.past) > h.maxDepth {
		h.past = append(h.past[:0:0], h.past[1:]...)
	}
	h.present = Entry{Snapshot: m, Label: label, At: time.Now()}
	h.future = nil
}

// Undo steps back one entry. At the boundary (empty past) it is a silent
// no-op returning (nil, false).
func (h *Manager) Undo() (*pagemodel.PageModel, bool) {
	if len(h.past) == 0 {
		return nil, false
	}
	last := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append([]Entry{h.present}, h.future...)
	h.present = last
	return last.Snapshot, true
}

// Redo steps forward one entry, symmetric to Undo.
func (h *Manager) Redo() (*pagemodel.PageModel, bool) {
	if len(h.future) == 0 {
		return nil, false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, h.present)
	h.present = next
	return next.Snapshot, true
}

// CanUndo reports whether an undo step is available.
func (h *Manager) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether a redo step is available.
func (h *Manager) CanRedo() bool { return len(h.future) > 0 }

// Present returns the current entry.
func (h *Manager) Present() Entry { return h.present }

// Depth returns the number of undoable entries.
func (h *Manager) Depth() int { return len(h.past) }
