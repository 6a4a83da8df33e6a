package manager

import (
	"strings"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// SessionState is the interaction history of one form's lifetime
type SessionState struct {
	DidShowSuggestions        bool `json:"did_show_suggestions"`
	UserDidType               bool `json:"user_did_type"`
	UserDidAutofill           bool `json:"user_did_autofill"`
	UserEditedAutofilledField bool `json:"user_edited_autofilled_field"`
	ObservedPhone             bool `json:"observed_phone"`
	ObservedOneTimeCode       bool `json:"observed_one_time_code"`
}

// observe records what kinds of fields the form collects
func (s *SessionState) observe(form *types.Form) {
	for i := range form.Fields {
		f := &form.Fields[i]
		if f.Type.Group() == types.GroupPhone {
			s.ObservedPhone = true
		}
		if f.Type == types.OneTimeCode || strings.Contains(strings.ToLower(f.Autocomplete), "one-time-code") {
			s.ObservedOneTimeCode = true
		}
	}
}

// formState is everything the manager remembers about one form
type formState struct {
	form    *types.Form
	session SessionState
	// filledBy maps autofilled fields to the GUID of the record used
	filledBy map[types.FieldGlobalID]string
}

func newFormState(form *types.Form) *formState {
	return &formState{form: form, filledBy: make(map[types.FieldGlobalID]string)}
}
