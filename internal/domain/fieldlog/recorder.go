package fieldlog

import (
	"sync"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// Recorder keeps an append-only event log per field. It never aggregates;
// Flush hands the events to whoever aggregates them.
type Recorder struct {
	logs map[types.FieldGlobalID][]Event
	mu   sync.Mutex
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{logs: make(map[types.FieldGlobalID][]Event)}
}

// Append adds an event to a field's log
func (r *Recorder) Append(field types.FieldGlobalID, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[field] = append(r.logs[field], ev)
}

// AppendIfNotRepeated adds the event unless it equals the field's last entry.
// Returns true when the event was appended.
func (r *Recorder) AppendIfNotRepeated(field types.FieldGlobalID, ev Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.logs[field]
	if n := len(log); n > 0 && log[n-1] == ev {
		return false
	}
	r.logs[field] = append(log, ev)
	return true
}

// Events returns a copy of a field's log
func (r *Recorder) Events(field types.FieldGlobalID) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.logs[field]...)
}

// Len returns the number of events logged for a field
func (r *Recorder) Len(field types.FieldGlobalID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.logs[field])
}

// Batch is the flushed log of a form
type Batch struct {
	Events map[types.FieldGlobalID][]Event
	Counts map[EventKind]int
}

// Flush removes and returns the logs of the form's fields. Called when the
// form is submitted or destroyed; the logs live no longer than the form.
func (r *Recorder) Flush(form *types.Form) Batch {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := Batch{
		Events: make(map[types.FieldGlobalID][]Event, len(form.Fields)),
		Counts: make(map[EventKind]int),
	}
	for i := range form.Fields {
		fid := form.Fields[i].GlobalID
		log, ok := r.logs[fid]
		if !ok {
			continue
		}
		delete(r.logs, fid)
		batch.Events[fid] = log
		for _, ev := range log {
			batch.Counts[ev.Kind()]++
		}
	}
	return batch
}

// CountsByName converts kind counts to string keys for metrics labels
func (b Batch) CountsByName() map[string]int {
	out := make(map[string]int, len(b.Counts))
	for k, n := range b.Counts {
		out[string(k)] = n
	}
	return out
}
