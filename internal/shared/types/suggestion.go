package types

// SuggestionKind distinguishes actionable entries from separators and warnings
type SuggestionKind string

const (
	SuggestionAddressEntry     SuggestionKind = "address_entry"
	SuggestionCardEntry        SuggestionKind = "credit_card_entry"
	SuggestionSeparator        SuggestionKind = "separator"
	SuggestionInsecureWarning  SuggestionKind = "insecure_context_warning"
	SuggestionMixedFormWarning SuggestionKind = "mixed_form_warning"
	SuggestionPlusAddress      SuggestionKind = "plus_address"
)

// IsActionable reports whether choosing the entry triggers a fill
func (k SuggestionKind) IsActionable() bool {
	switch k {
	case SuggestionAddressEntry, SuggestionCardEntry, SuggestionPlusAddress:
		return true
	}
	return false
}

// Suggestion represents one entry shown to the user
type Suggestion struct {
	Kind       SuggestionKind `json:"kind"`
	Value      string         `json:"value"`
	Label      string         `json:"label,omitempty"`
	RecordGUID string         `json:"record_guid,omitempty"`
	Product    FillingProduct `json:"product"`
}
