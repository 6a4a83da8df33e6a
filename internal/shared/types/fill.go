package types

// ActionPersistence distinguishes committing fills from previews
type ActionPersistence int

const (
	ActionFill ActionPersistence = iota
	ActionPreview
)

// String returns the action name
func (a ActionPersistence) String() string {
	if a == ActionPreview {
		return "preview"
	}
	return "fill"
}

// TriggerSource is what caused suggestions to be requested or a fill to run
type TriggerSource string

const (
	SourceFormControlElementClicked TriggerSource = "form_control_element_clicked"
	SourceTextFieldDidChange        TriggerSource = "text_field_did_change"
	SourceTextFieldDidReceiveKey    TriggerSource = "text_field_did_receive_key"
	SourceKeyboardAccessory         TriggerSource = "keyboard_accessory"
	SourceTouchToFill               TriggerSource = "touch_to_fill"
	SourceManualFallbackAddress     TriggerSource = "manual_fallback_address"
	SourceManualFallbackPayments    TriggerSource = "manual_fallback_payments"
	SourcePopup                     TriggerSource = "popup"
	SourceRefill                    TriggerSource = "refill"
)

// IsManualFallback reports whether the source is an explicit context-menu fallback
func (s TriggerSource) IsManualFallback() bool {
	return s == SourceManualFallbackAddress || s == SourceManualFallbackPayments
}

// FallbackProduct returns the product requested by a manual fallback source
func (s TriggerSource) FallbackProduct() FillingProduct {
	switch s {
	case SourceManualFallbackAddress:
		return ProductAddress
	case SourceManualFallbackPayments:
		return ProductCreditCard
	}
	return ProductNone
}

// FillingMethod is the granularity of a fill operation
type FillingMethod string

const (
	MethodFullForm     FillingMethod = "full_form"
	MethodGroup        FillingMethod = "group"
	MethodFieldByField FillingMethod = "field_by_field"
)

// TriggerDetails describes how a fill was requested
type TriggerDetails struct {
	Source           TriggerSource `json:"source"`
	Method           FillingMethod `json:"method,omitempty"`
	FieldTypesToFill FieldTypeSet  `json:"-"`
}

// FillStatus is the outcome of a fill request
type FillStatus string

const (
	FillStatusFilled         FillStatus = "filled"
	FillStatusStaleForm      FillStatus = "stale_form"
	FillStatusRecordNotFound FillStatus = "record_not_found"
	FillStatusDisabled       FillStatus = "disabled"
	FillStatusNothingToFill  FillStatus = "nothing_to_fill"
	// FillStatusUnmaskRequired: a masked or virtual card was chosen without
	// its full number
	FillStatusUnmaskRequired FillStatus = "unmask_required"
)

// SkipReason is why a candidate field was not written
type SkipReason string

const (
	NotSkipped                SkipReason = "not_skipped"
	SkipNotFocusable          SkipReason = "not_focusable"
	SkipUserFilled            SkipReason = "user_filled"
	SkipNotInFieldTypesToFill SkipReason = "not_in_field_types_to_fill"
	SkipUnrelatedType         SkipReason = "unrelated_type"
	SkipOnlyFillWhenFocused   SkipReason = "only_fill_when_focused"
	SkipRefillNotInGroup      SkipReason = "refill_not_in_initial_fill"
	SkipAutofilledByOther     SkipReason = "autofilled_by_other_record"
	SkipValuePrefilled        SkipReason = "value_prefilled"
	SkipFillingLimitReached   SkipReason = "filling_limit_reached"
	SkipNoValueToFill         SkipReason = "no_value_to_fill"
	SkipNotInFilledSection    SkipReason = "not_in_filled_section"
)

// FieldWrite is a single value the engine intends the driver to write
type FieldWrite struct {
	FieldID       FieldGlobalID `json:"field_id"`
	Value         string        `json:"value"`
	ForceOverride bool          `json:"force_override,omitempty"`
}
