package types

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// ============================================================================
// Identifiers
// ============================================================================

// FormGlobalID identifies a form across same-page mutations
type FormGlobalID struct {
	FrameToken string `json:"frame_token" yaml:"frame_token"`
	RendererID uint64 `json:"renderer_id" yaml:"renderer_id"`
}

// String returns a compact representation used in logs and map keys
func (id FormGlobalID) String() string {
	return fmt.Sprintf("%s#%d", id.FrameToken, id.RendererID)
}

// FieldGlobalID identifies a field across same-page mutations
type FieldGlobalID struct {
	FrameToken string `json:"frame_token" yaml:"frame_token"`
	RendererID uint64 `json:"renderer_id" yaml:"renderer_id"`
}

// String returns a compact representation used in logs and map keys
func (id FieldGlobalID) String() string {
	return fmt.Sprintf("%s#%d", id.FrameToken, id.RendererID)
}

// FieldIDSet is a set of field ids
type FieldIDSet map[FieldGlobalID]struct{}

// NewFieldIDSet builds a set from the given ids
func NewFieldIDSet(ids ...FieldGlobalID) FieldIDSet {
	s := make(FieldIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set
func (s FieldIDSet) Add(id FieldGlobalID) {
	s[id] = struct{}{}
}

// Contains reports whether id is in the set
func (s FieldIDSet) Contains(id FieldGlobalID) bool {
	_, ok := s[id]
	return ok
}

// ============================================================================
// Field attributes
// ============================================================================

// FormControlType is the kind of DOM control backing a field
type FormControlType string

const (
	ControlText            FormControlType = "text"
	ControlTelephone       FormControlType = "tel"
	ControlEmail           FormControlType = "email"
	ControlMonth           FormControlType = "month"
	ControlNumber          FormControlType = "number"
	ControlPassword        FormControlType = "password"
	ControlTextArea        FormControlType = "textarea"
	ControlSelect          FormControlType = "select"
	ControlContentEditable FormControlType = "contenteditable"
)

// IsSelectLike reports whether the control picks from an option list
func (c FormControlType) IsSelectLike() bool {
	return c == ControlSelect
}

// AutofillState is the fill state of a field as rendered
type AutofillState int

const (
	StateNotFilled AutofillState = iota
	StatePreviewed
	StateFilled
)

// String returns the state name
func (s AutofillState) String() string {
	switch s {
	case StatePreviewed:
		return "previewed"
	case StateFilled:
		return "filled"
	default:
		return "not_filled"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s AutofillState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty state means
// not filled.
func (s *AutofillState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "not_filled":
		*s = StateNotFilled
	case "previewed":
		*s = StatePreviewed
	case "filled":
		*s = StateFilled
	default:
		return fmt.Errorf("unknown autofill state %q", text)
	}
	return nil
}

// FieldRole marks fields that are present but not meant for input
type FieldRole string

const (
	RoleNone         FieldRole = ""
	RolePresentation FieldRole = "presentation"
)

// FieldProperties is the bitmask of interaction history on a field
type FieldProperties uint32

const (
	PropUserTyped FieldProperties = 1 << iota
	PropAutofilledOnce
	PropHadFocus
	PropAutofilledOnUserTrigger
)

// Has reports whether all bits in p are set
func (m FieldProperties) Has(p FieldProperties) bool {
	return m&p == p
}

// SelectOption is one entry of a select control
type SelectOption struct {
	Value string `json:"value" yaml:"value"`
	Text  string `json:"text" yaml:"text"`
}

// ============================================================================
// Field & Form
// ============================================================================

// Field represents one form control as observed by the driver
type Field struct {
	GlobalID     FieldGlobalID   `json:"global_id"`
	Name         string          `json:"name"`
	IDAttribute  string          `json:"id_attribute,omitempty"`
	Label        string          `json:"label,omitempty"`
	Placeholder  string          `json:"placeholder,omitempty"`
	Autocomplete string          `json:"autocomplete,omitempty"`
	Origin       string          `json:"origin,omitempty"`
	Control      FormControlType `json:"control"`
	Value        string          `json:"value"`
	State        AutofillState   `json:"state"`
	Focusable    bool            `json:"focusable"`
	Visible      bool            `json:"visible"`
	Role         FieldRole       `json:"role,omitempty"`
	MaxLength    int             `json:"max_length,omitempty"`
	Options      []SelectOption  `json:"options,omitempty"`
	Properties   FieldProperties `json:"properties,omitempty"`

	// Assigned after classification
	Section             string    `json:"section,omitempty"`
	Type                FieldType `json:"type"`
	OnlyFillWhenFocused bool      `json:"only_fill_when_focused,omitempty"`
	PhoneGroup          int       `json:"phone_group,omitempty"`
	CardNumberOffset    int       `json:"card_number_offset,omitempty"`

	// Set by the filling engine when a refill forces the value
	ForceOverride bool `json:"force_override,omitempty"`
}

// IsFocusableOrSelect reports whether the engine may consider writing the field
func (f *Field) IsFocusableOrSelect() bool {
	return f.Focusable || f.Control.IsSelectLike()
}

// IsUserTyped reports whether the current value came from the user
func (f *Field) IsUserTyped() bool {
	return f.Properties.Has(PropUserTyped)
}

// IsAutofilled reports whether the field currently holds an autofilled value
func (f *Field) IsAutofilled() bool {
	return f.State == StateFilled
}

// Form represents an ordered set of fields with a stable identity
type Form struct {
	GlobalID        FormGlobalID `json:"global_id"`
	Name            string       `json:"name"`
	URL             string       `json:"url"`
	Action          string       `json:"action"`
	MainFrameOrigin string       `json:"main_frame_origin"`
	Fields          []Field      `json:"fields"`
}

// Signature hashes name, action and each field's name and control kind.
// Two snapshots with equal signatures are structurally identical.
func (f *Form) Signature() uint64 {
	h := fnv.New64a()
	write := func(s string) {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
		_, _ = h.Write(n[:])
		_, _ = h.Write([]byte(s))
	}
	write(f.Name)
	write(f.Action)
	for i := range f.Fields {
		write(f.Fields[i].Name)
		write(string(f.Fields[i].Control))
	}
	return h.Sum64()
}

// FieldIndex returns the position of the field, or -1
func (f *Form) FieldIndex(id FieldGlobalID) int {
	for i := range f.Fields {
		if f.Fields[i].GlobalID == id {
			return i
		}
	}
	return -1
}

// Field returns a pointer into the form's fields, or nil
func (f *Form) Field(id FieldGlobalID) *Field {
	if i := f.FieldIndex(id); i >= 0 {
		return &f.Fields[i]
	}
	return nil
}

// Clone returns a deep copy of the form
func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	out := *f
	out.Fields = make([]Field, len(f.Fields))
	for i := range f.Fields {
		out.Fields[i] = f.Fields[i]
		if f.Fields[i].Options != nil {
			out.Fields[i].Options = append([]SelectOption(nil), f.Fields[i].Options...)
		}
	}
	return &out
}

// SectionFields returns the indices of fields in the given section
func (f *Form) SectionFields(section string) []int {
	var out []int
	for i := range f.Fields {
		if f.Fields[i].Section == section {
			out = append(out, i)
		}
	}
	return out
}
