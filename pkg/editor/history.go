package editor

import (
	"time"

	"github.com/google/uuid"

	"github.com/menta2k/canvas-geometry/pkg/types"
)

// Entry is one committed edit.
type Entry struct {
	ID    string           `json:"id"`
	Label string           `json:"label"`
	Image types.Dimensions `json:"image"`
	// Crop is the rectangle cut from the previous image, or the full frame.
	Crop      types.Rect            `json:"crop"`
	Extension types.ExtensionResult `json:"extension"`
	Time      time.Time             `json:"time"`
}

// History is a linear undo/redo stack of committed edits. Pushing after an
// undo drops the entries that could have been redone.
type History struct {
	entries []Entry
	cursor  int
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{cursor: -1}
}

// Push records a new edit and makes it current.
func (h *History) Push(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	h.entries = append(h.entries[:h.cursor+1], e)
	h.cursor = len(h.entries) - 1
	return e
}

// Undo steps back one entry and returns the new current entry.
func (h *History) Undo() (Entry, bool) {
	if !h.CanUndo() {
		return Entry{}, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Redo steps forward one entry and returns the new current entry.
func (h *History) Redo() (Entry, bool) {
	if !h.CanRedo() {
		return Entry{}, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// Current returns the entry the editor is showing.
func (h *History) Current() (Entry, bool) {
	if h.cursor < 0 {
		return Entry{}, false
	}
	return h.entries[h.cursor], true
}

// First returns the entry the history started with.
func (h *History) First() (Entry, bool) {
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[0], true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }
func (h *History) Len() int      { return len(h.entries) }
func (h *History) Cursor() int   { return h.cursor }

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []Entry {
	return append([]Entry(nil), h.entries...)
}

// Page returns page index (0-based) of the entries, newest first, and the
// number of pages. Out-of-range indexes are clamped.
func (h *History) Page(index, perPage int) ([]Entry, int) {
	if perPage <= 0 || len(h.entries) == 0 {
		return nil, 0
	}
	pages := (len(h.entries) + perPage - 1) / perPage
	index = max(0, min(index, pages-1))

	newest := make([]Entry, len(h.entries))
	for i, e := range h.entries {
		newest[len(h.entries)-1-i] = e
	}
	start := index * perPage
	end := min(start+perPage, len(newest))
	return newest[start:end], pages
}

// Reset drops every entry.
func (h *History) Reset() {
	h.entries = nil
	h.cursor = -1
}
