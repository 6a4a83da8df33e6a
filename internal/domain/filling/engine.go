package filling

import (
	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/shared/utils"
)

// Options tune the engine
type Options struct {
	// SkipPrefilled leaves fields holding a non-placeholder value alone
	SkipPrefilled bool
	// FillPhone enables writing phone fields from address profiles
	FillPhone bool
	Hasher    *utils.Hasher
}

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{SkipPrefilled: true, FillPhone: true, Hasher: utils.DefaultHasher()}
}

// Request is everything one fill computation needs. The engine never
// touches the store, the driver or the ledger; the caller applies the
// Result.
type Request struct {
	Action  types.ActionPersistence
	Form    *types.Form // cached, classified form
	Live    *types.Form // form as re-observed by the driver; nil when unchanged
	Trigger types.FieldGlobalID
	Record  types.Record
	CVC     string
	Details types.TriggerDetails

	IsRefill       bool
	ForcedValues   map[types.FieldGlobalID]string
	OriginalGroups types.GroupSet
	// FilledBy maps fields autofilled earlier in the session to the record GUID used
	FilledBy map[types.FieldGlobalID]string
}

// PriorState is a field's value and state before the fill
type PriorState struct {
	FieldID types.FieldGlobalID
	Value   string
	State   types.AutofillState
}

// FieldOutcome is the engine's verdict for one section field
type FieldOutcome struct {
	FieldID        types.FieldGlobalID
	Type           types.FieldType
	Skip           types.SkipReason
	HadValueBefore bool
	HasValueAfter  bool
	StateAfter     types.AutofillState
	// Digest of the value withheld from a prefilled field
	SkippedValueHash string
}

// Result is the outcome of a fill computation
type Result struct {
	Status   types.FillStatus
	Form     *types.Form        // snapshot with values written
	Writes   []types.FieldWrite // intended writes in document order
	Filled   types.FieldIDSet
	Prior    []PriorState
	Outcomes []FieldOutcome
	Groups   types.GroupSet
	Section  string
}

// Engine computes fills
type Engine struct {
	opts Options
}

// NewEngine creates an engine
func NewEngine(opts Options) *Engine {
	if opts.Hasher == nil {
		opts.Hasher = utils.DefaultHasher()
	}
	return &Engine{opts: opts}
}

// Fill computes which fields of the trigger's section receive which value.
// A live form that drifted at or before the trigger aborts with no writes.
func (e *Engine) Fill(req Request) Result {
	triggerIdx := req.Form.FieldIndex(req.Trigger)
	if triggerIdx < 0 {
		return Result{Status: types.FillStatusNothingToFill}
	}
	if IsStale(req.Form, req.Live, triggerIdx) {
		return Result{Status: types.FillStatusStaleForm}
	}

	working := workingCopy(req.Form, req.Live)
	trigger := &working.Fields[triggerIdx]
	applyFallbackType(trigger, req.Details)

	res := Result{
		Status:  types.FillStatusNothingToFill,
		Form:    working,
		Filled:  make(types.FieldIDSet),
		Groups:  make(types.GroupSet),
		Section: trigger.Section,
	}

	triggerPhoneGroup := -1
	if trigger.Type.Group() == types.GroupPhone {
		triggerPhoneGroup = trigger.PhoneGroup
	}

	counts := make(map[types.FieldType]int)
	for i := range working.Fields {
		field := &working.Fields[i]
		if field.Section != trigger.Section {
			continue
		}
		if i != triggerIdx && req.Details.Method == types.MethodFieldByField {
			continue
		}

		isTrigger := i == triggerIdx
		forced, hasForced := req.ForcedValues[field.GlobalID]
		outcome := FieldOutcome{
			FieldID:        field.GlobalID,
			Type:           field.Type,
			HadValueBefore: field.Value != "",
		}

		skip := e.precheck(field, &req, isTrigger, hasForced, triggerPhoneGroup)
		value := ""
		if skip == types.NotSkipped {
			if hasForced {
				value = forced
			} else {
				value = FieldValue(field, req.Record, req.CVC, req.Action, e.opts.FillPhone)
			}
			skip = e.valueCheck(field, value, isTrigger, hasForced, counts)
			if skip == types.SkipValuePrefilled {
				outcome.SkippedValueHash = e.opts.Hasher.HashValue(value)
			}
		}

		if skip == types.NotSkipped {
			res.Prior = append(res.Prior, PriorState{FieldID: field.GlobalID, Value: field.Value, State: field.State})
			field.Value = value
			field.ForceOverride = hasForced
			if req.Action == types.ActionFill {
				field.State = types.StateFilled
				field.Properties |= types.PropAutofilledOnce
			} else {
				field.State = types.StatePreviewed
			}
			res.Writes = append(res.Writes, types.FieldWrite{FieldID: field.GlobalID, Value: value, ForceOverride: hasForced})
			res.Filled.Add(field.GlobalID)
			res.Groups.Add(field.Type.Group())
		}

		outcome.Skip = skip
		outcome.HasValueAfter = field.Value != ""
		outcome.StateAfter = field.State
		res.Outcomes = append(res.Outcomes, outcome)
	}

	if len(res.Writes) > 0 {
		res.Status = types.FillStatusFilled
	}
	return res
}

// precheck applies the skip rules that do not depend on the derived value,
// in priority order.
func (e *Engine) precheck(field *types.Field, req *Request, isTrigger, forced bool, triggerPhoneGroup int) types.SkipReason {
	if !field.IsFocusableOrSelect() {
		return types.SkipNotFocusable
	}
	if field.IsUserTyped() && !isTrigger && !forced {
		return types.SkipUserFilled
	}
	if req.Details.FieldTypesToFill != nil && !req.Details.FieldTypesToFill.Contains(field.Type) {
		return types.SkipNotInFieldTypesToFill
	}
	if field.Type == types.UnknownType || field.Type.Product() != req.Record.Kind.Product() {
		return types.SkipUnrelatedType
	}
	if field.OnlyFillWhenFocused && field.PhoneGroup != triggerPhoneGroup {
		return types.SkipOnlyFillWhenFocused
	}
	if req.IsRefill && req.OriginalGroups != nil && !req.OriginalGroups.Contains(field.Type.Group()) {
		return types.SkipRefillNotInGroup
	}
	if guid, ok := req.FilledBy[field.GlobalID]; ok && guid != req.Record.GUID() && !req.IsRefill && !isTrigger {
		return types.SkipAutofilledByOther
	}
	return types.NotSkipped
}

// valueCheck applies the skip rules that need the derived value
func (e *Engine) valueCheck(field *types.Field, value string, isTrigger, forced bool, counts map[types.FieldType]int) types.SkipReason {
	if e.opts.SkipPrefilled && !isTrigger && !forced && isMeaningfullyPrefilled(field) {
		return types.SkipValuePrefilled
	}
	if value == "" {
		return types.SkipNoValueToFill
	}
	if value != field.Value {
		counts[field.Type]++
		if counts[field.Type] > FillingLimit(field.Type) {
			return types.SkipFillingLimitReached
		}
	}
	return types.NotSkipped
}

// isMeaningfullyPrefilled reports a non-empty value the page or user put
// there that is not just the placeholder. Selects always hold a value and
// autofilled values are ours, so neither counts.
func isMeaningfullyPrefilled(field *types.Field) bool {
	if field.Control.IsSelectLike() || field.State != types.StateNotFilled {
		return false
	}
	return field.Value != "" && field.Value != field.Placeholder
}

// applyFallbackType lets a field-by-field fill from a manual fallback write
// an unclassified trigger field with the single requested type.
func applyFallbackType(trigger *types.Field, details types.TriggerDetails) {
	if trigger.Type != types.UnknownType || len(details.FieldTypesToFill) != 1 {
		return
	}
	for t := range details.FieldTypesToFill {
		trigger.Type = t
	}
}

// workingCopy clones the live form when given, carrying over the cached
// classification by field id.
func workingCopy(cached, live *types.Form) *types.Form {
	if live == nil {
		return cached.Clone()
	}
	out := live.Clone()
	for i := range out.Fields {
		c := cached.Field(out.Fields[i].GlobalID)
		if c == nil {
			continue
		}
		f := &out.Fields[i]
		f.Section = c.Section
		f.Type = c.Type
		f.OnlyFillWhenFocused = c.OnlyFillWhenFocused
		f.PhoneGroup = c.PhoneGroup
		f.CardNumberOffset = c.CardNumberOffset
	}
	return out
}
