package history

import (
	"sync"

	"github.com/GriffinCanCode/formfill/internal/shared/id"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// DefaultCapacity bounds the ledger when no capacity is configured
const DefaultCapacity = 64

// FieldSnapshot is a field's state captured right before a fill wrote it
type FieldSnapshot struct {
	FieldID types.FieldGlobalID `json:"field_id"`
	Value   string              `json:"value"`
	State   types.AutofillState `json:"state"`
}

// Entry is one undoable fill operation
type Entry struct {
	FormID       types.FormGlobalID   `json:"form_id"`
	TriggerField types.FieldGlobalID  `json:"trigger_field"`
	Fields       []FieldSnapshot      `json:"fields"`
	Product      types.FillingProduct `json:"product"`
	Method       types.FillingMethod  `json:"method"`
	FillEventID  id.FillEventID       `json:"fill_event_id"`
}

// affects reports whether the entry was triggered from or wrote the field
func (e *Entry) affects(field types.FieldGlobalID) bool {
	if e.TriggerField == field {
		return true
	}
	for _, s := range e.Fields {
		if s.FieldID == field {
			return true
		}
	}
	return false
}

// Ledger is a bounded stack of fill operations, newest last
type Ledger struct {
	entries  []Entry
	capacity int
	mu       sync.Mutex
}

// NewLedger creates a ledger holding at most capacity entries
func NewLedger(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ledger{capacity: capacity}
}

// RecordFill pushes an entry. The oldest entry is evicted when full.
func (l *Ledger) RecordFill(entry Entry) {
	if len(entry.Fields) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.Fields = append([]FieldSnapshot(nil), entry.Fields...)
	l.entries = append(l.entries, entry)
	if over := len(l.entries) - l.capacity; over > 0 {
		l.entries = append([]Entry(nil), l.entries[over:]...)
	}
}

// MergeRefill folds the snapshots of a refill into the form's most recent
// entry so one undo reverts both passes. Fields the entry already captured
// keep their original pre-fill snapshot. Without a prior entry the refill is
// recorded as a new one.
func (l *Ledger) MergeRefill(entry Entry) {
	if len(entry.Fields) == 0 {
		return
	}
	l.mu.Lock()
	target := -1
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].FormID == entry.FormID {
			target = i
			break
		}
	}
	if target >= 0 {
		last := &l.entries[target]
		for _, snap := range entry.Fields {
			if !last.captured(snap.FieldID) {
				last.Fields = append(last.Fields, snap)
			}
		}
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	l.RecordFill(entry)
}

func (e *Entry) captured(field types.FieldGlobalID) bool {
	for _, s := range e.Fields {
		if s.FieldID == field {
			return true
		}
	}
	return false
}

// Peek returns the most recent entry of the form touching the field
func (l *Ledger) Peek(form types.FormGlobalID, field types.FieldGlobalID) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.find(form, field); i >= 0 {
		return l.entries[i], true
	}
	return Entry{}, false
}

// Pop removes and returns the most recent entry of the form touching the field
func (l *Ledger) Pop(form types.FormGlobalID, field types.FieldGlobalID) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.find(form, field)
	if i < 0 {
		return Entry{}, false
	}
	entry := l.entries[i]
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return entry, true
}

func (l *Ledger) find(form types.FormGlobalID, field types.FieldGlobalID) int {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].FormID == form && l.entries[i].affects(field) {
			return i
		}
	}
	return -1
}

// Forget drops every entry of a form
func (l *Ledger) Forget(form types.FormGlobalID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.FormID != form {
			kept = append(kept, e)
		}
	}
	l.entries = kept
}

// Len returns the number of entries
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
