package fieldlog

import (
	"time"

	"github.com/GriffinCanCode/formfill/internal/shared/id"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// EventKind names the category of a field log event
type EventKind string

const (
	KindAskForValuesToFill    EventKind = "ask_for_values_to_fill"
	KindTriggerFill           EventKind = "trigger_fill"
	KindFill                  EventKind = "fill"
	KindTyping                EventKind = "typing"
	KindHeuristicPrediction   EventKind = "heuristic_prediction"
	KindAutocompleteAttribute EventKind = "autocomplete_attribute"
	KindServerPrediction      EventKind = "server_prediction"
	KindRationalization       EventKind = "rationalization"
)

// Event is one entry of a field's log. Implementations are comparable
// values so repeated entries can be detected with ==.
type Event interface {
	Kind() EventKind
}

// AskForValuesToFillEvent records a suggestion request on the field
type AskForValuesToFillEvent struct {
	HadSuggestions bool                 `json:"had_suggestions"`
	Shown          bool                 `json:"shown"`
	Source         types.TriggerSource  `json:"source"`
	Product        types.FillingProduct `json:"product"`
}

// TriggerFillEvent is logged on the trigger field when a fill starts
type TriggerFillEvent struct {
	FillEventID id.FillEventID       `json:"fill_event_id"`
	Product     types.FillingProduct `json:"product"`
	CountryCode string               `json:"country_code,omitempty"`
	Method      types.FillingMethod  `json:"method"`
	IsRefill    bool                 `json:"is_refill"`
	Timestamp   time.Time            `json:"timestamp"`
}

// FillEvent is logged on every section field a fill considered
type FillEvent struct {
	FillEventID           id.FillEventID      `json:"fill_event_id"`
	HadValueBefore        bool                `json:"had_value_before"`
	HasValueAfter         bool                `json:"has_value_after"`
	AutofillStateAfter    types.AutofillState `json:"autofill_state_after"`
	SkipReason            types.SkipReason    `json:"skip_reason"`
	Method                types.FillingMethod `json:"method"`
	BlockedByIframePolicy bool                `json:"blocked_by_iframe_policy"`
	// Digest of the value that would have been written into a prefilled field
	SkippedValueHash string `json:"skipped_value_hash,omitempty"`
}

// TypingEvent is logged when the user edits the field
type TypingEvent struct {
	HasValueAfter bool `json:"has_value_after"`
}

// PredictionEvent is shared by the three prediction sources
type PredictionEvent struct {
	Source EventKind       `json:"source"`
	Type   types.FieldType `json:"type"`
	Rank   int             `json:"rank"`
}

// RationalizationEvent records the final type decision for a field
type RationalizationEvent struct {
	Type           types.FieldType `json:"type"`
	Section        string          `json:"section"`
	DiffersFromRaw bool            `json:"differs_from_raw"`
	Rule           string          `json:"rule,omitempty"`
}

func (AskForValuesToFillEvent) Kind() EventKind { return KindAskForValuesToFill }
func (TriggerFillEvent) Kind() EventKind        { return KindTriggerFill }
func (FillEvent) Kind() EventKind               { return KindFill }
func (TypingEvent) Kind() EventKind             { return KindTyping }
func (RationalizationEvent) Kind() EventKind    { return KindRationalization }

// Kind returns the prediction source
func (e PredictionEvent) Kind() EventKind { return e.Source }

// HeuristicPrediction builds a heuristic prediction event
func HeuristicPrediction(t types.FieldType, rank int) PredictionEvent {
	return PredictionEvent{Source: KindHeuristicPrediction, Type: t, Rank: rank}
}

// AutocompletePrediction builds an autocomplete attribute event
func AutocompletePrediction(t types.FieldType) PredictionEvent {
	return PredictionEvent{Source: KindAutocompleteAttribute, Type: t}
}

// ServerPrediction builds a server prediction event
func ServerPrediction(t types.FieldType, rank int) PredictionEvent {
	return PredictionEvent{Source: KindServerPrediction, Type: t, Rank: rank}
}
