package http

import (
	"fmt"
	"slices"

	"github.com/GriffinCanCode/formfill/internal/domain/fieldlog"
	"github.com/GriffinCanCode/formfill/internal/domain/manager"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// FormsSeenRequest carries forms the driver found on the page
type FormsSeenRequest struct {
	Forms []*types.Form `json:"forms" binding:"required"`
}

// FormsRemovedRequest names forms that left the page
type FormsRemovedRequest struct {
	Forms []types.FormGlobalID `json:"forms" binding:"required"`
}

// SuggestionsRequest asks for suggestions on a focused field
type SuggestionsRequest struct {
	Form   *types.Form         `json:"form" binding:"required"`
	Field  types.FieldGlobalID `json:"field"`
	Source types.TriggerSource `json:"source"`
}

// FillRequest is the user's choice of a suggestion
type FillRequest struct {
	Form       *types.Form         `json:"form" binding:"required"`
	Field      types.FieldGlobalID `json:"field"`
	Action     string              `json:"action"`
	RecordGUID string              `json:"record_guid" binding:"required"`
	CVC        string              `json:"cvc,omitempty"`
	// UnmaskedNumber completes a masked or virtual card
	UnmaskedNumber string              `json:"unmasked_number,omitempty"`
	Source         types.TriggerSource `json:"source"`
	Method         types.FillingMethod `json:"method"`
	// FieldTypes restricts the fill; empty means all types
	FieldTypes []types.FieldType `json:"field_types,omitempty"`
}

// UndoRequest reverts the last fill touching a field
type UndoRequest struct {
	Form   *types.Form         `json:"form" binding:"required"`
	Field  types.FieldGlobalID `json:"field"`
	Action string              `json:"action"`
}

// RemoveRecordRequest deletes the record behind a suggestion
type RemoveRecordRequest struct {
	RecordGUID string `json:"record_guid" binding:"required"`
}

// FieldEventRequest reports a value change on a field. Value is the new
// value for user edits and the value before the change for script edits.
type FieldEventRequest struct {
	Form  *types.Form         `json:"form" binding:"required"`
	Field types.FieldGlobalID `json:"field"`
	Value string              `json:"value"`
}

// FormRequest carries a single form snapshot
type FormRequest struct {
	Form *types.Form `json:"form" binding:"required"`
}

// FillResponse is a fill outcome with the applied fields listed
type FillResponse struct {
	manager.FillOutcome
	Applied []types.FieldGlobalID `json:"applied"`
}

// UndoResponse is an undo outcome with the applied fields listed
type UndoResponse struct {
	manager.UndoOutcome
	Applied []types.FieldGlobalID `json:"applied"`
}

// ScriptChangeResponse reports how a script edit was judged
type ScriptChangeResponse struct {
	WithinWindow    bool   `json:"within_window"`
	ClearedFirst    bool   `json:"cleared_first"`
	RepairedValue   string `json:"repaired_value,omitempty"`
	RefillScheduled bool   `json:"refill_scheduled"`
}

// LoggedEvent is a field log entry tagged with its kind
type LoggedEvent struct {
	Kind  fieldlog.EventKind `json:"kind"`
	Event fieldlog.Event     `json:"event"`
}

// FieldLog is the log of one field
type FieldLog struct {
	Field  types.FieldGlobalID `json:"field"`
	Events []LoggedEvent       `json:"events"`
}

// SubmitResponse is the flushed field log of a submitted form
type SubmitResponse struct {
	Counts map[fieldlog.EventKind]int `json:"counts"`
	Fields []FieldLog                 `json:"fields"`
}

func parseAction(s string) (types.ActionPersistence, error) {
	switch s {
	case "", "fill":
		return types.ActionFill, nil
	case "preview":
		return types.ActionPreview, nil
	}
	return types.ActionFill, fmt.Errorf("unknown action %q", s)
}

func loggedEvents(events []fieldlog.Event) []LoggedEvent {
	out := make([]LoggedEvent, len(events))
	for i, ev := range events {
		out[i] = LoggedEvent{Kind: ev.Kind(), Event: ev}
	}
	return out
}

func submitResponse(batch fieldlog.Batch) SubmitResponse {
	resp := SubmitResponse{Counts: batch.Counts, Fields: make([]FieldLog, 0, len(batch.Events))}
	if resp.Counts == nil {
		resp.Counts = map[fieldlog.EventKind]int{}
	}
	for field, events := range batch.Events {
		resp.Fields = append(resp.Fields, FieldLog{Field: field, Events: loggedEvents(events)})
	}
	slices.SortFunc(resp.Fields, func(a, b FieldLog) int {
		return compareFieldIDs(a.Field, b.Field)
	})
	return resp
}

// sortedIDs lists a set in a stable order
func sortedIDs(set types.FieldIDSet) []types.FieldGlobalID {
	ids := make([]types.FieldGlobalID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareFieldIDs)
	return ids
}

func compareFieldIDs(a, b types.FieldGlobalID) int {
	if a.FrameToken != b.FrameToken {
		if a.FrameToken < b.FrameToken {
			return -1
		}
		return 1
	}
	switch {
	case a.RendererID < b.RendererID:
		return -1
	case a.RendererID > b.RendererID:
		return 1
	}
	return 0
}
