package history

import (
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// UndoResult describes what an undo restored
type UndoResult struct {
	Entry   Entry
	Writes  []types.FieldWrite
	Product types.FillingProduct
	// FullForm is set when the undone fill covered the whole section
	FullForm bool
}

// Undo restores the fields of the most recent fill touching the trigger
// field. A Fill pops the entry and mutates form in place; a Preview only
// reports what would be restored. Returns false when there is nothing to undo.
func (l *Ledger) Undo(action types.ActionPersistence, form *types.Form, trigger types.FieldGlobalID) (UndoResult, bool) {
	var (
		entry Entry
		ok    bool
	)
	if action == types.ActionPreview {
		entry, ok = l.Peek(form.GlobalID, trigger)
	} else {
		entry, ok = l.Pop(form.GlobalID, trigger)
	}
	if !ok {
		return UndoResult{}, false
	}

	result := UndoResult{
		Entry:    entry,
		Product:  entry.Product,
		FullForm: entry.Method == types.MethodFullForm || entry.Method == "",
	}
	for _, snap := range entry.Fields {
		field := form.Field(snap.FieldID)
		if field == nil {
			continue
		}
		result.Writes = append(result.Writes, types.FieldWrite{FieldID: snap.FieldID, Value: snap.Value})
		if action == types.ActionFill {
			field.Value = snap.Value
			field.State = snap.State
			field.ForceOverride = false
		}
	}
	return result, true
}
