package filling

import (
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// Rationalization rules
const (
	RuleExpirationYear     = "expiration_year_length"
	RuleExpirationDate     = "expiration_date_length"
	RuleCardNumberOffset   = "card_number_offset"
	RulePhoneFirstGroup    = "phone_first_group"
	RulePhoneOnlyOnFocus   = "phone_only_fill_when_focused"
	RuleUnchanged          = ""
	cardNumberSplitMaxSize = 8
)

// Decision is one per-field outcome of rationalization
type Decision struct {
	FieldID types.FieldGlobalID
	Before  types.FieldType
	After   types.FieldType
	Rule    string
}

// Changed reports whether rationalization altered the field's type
func (d Decision) Changed() bool {
	return d.Before != d.After
}

// Rationalize adjusts classifier output to the form's actual shape. It
// mutates types and fill flags in place and returns one decision per field.
func Rationalize(form *types.Form) []Decision {
	decisions := make([]Decision, len(form.Fields))
	for i := range form.Fields {
		f := &form.Fields[i]
		decisions[i] = Decision{FieldID: f.GlobalID, Before: f.Type}
		f.OnlyFillWhenFocused = false
		f.PhoneGroup = 0
		f.CardNumberOffset = 0
	}

	for i := range form.Fields {
		if rule := rationalizeExpiration(&form.Fields[i]); rule != RuleUnchanged {
			decisions[i].Rule = rule
		}
	}

	for _, section := range sections(form) {
		idx := form.SectionFields(section)
		rationalizeCardNumberOffsets(form, idx, decisions)
		rationalizePhoneNumbers(form, idx, decisions)
	}

	for i := range form.Fields {
		decisions[i].After = form.Fields[i].Type
	}
	return decisions
}

// sections lists distinct section ids in document order
func sections(form *types.Form) []string {
	var out []string
	seen := make(map[string]struct{})
	for i := range form.Fields {
		s := form.Fields[i].Section
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// rationalizeExpiration picks 2- vs 4-digit year variants from max length
func rationalizeExpiration(f *types.Field) string {
	ml := f.MaxLength
	if ml <= 0 || f.Control.IsSelectLike() {
		return RuleUnchanged
	}
	switch f.Type {
	case types.CreditCardExp4DigitYear:
		if ml == 2 {
			f.Type = types.CreditCardExp2DigitYear
			return RuleExpirationYear
		}
	case types.CreditCardExp2DigitYear:
		if ml == 4 {
			f.Type = types.CreditCardExp4DigitYear
			return RuleExpirationYear
		}
	case types.CreditCardExpDate4DigitYear:
		// "MM/YY" and "MMYY" hold only two year digits
		if ml == 4 || ml == 5 {
			f.Type = types.CreditCardExpDate2DigitYear
			return RuleExpirationDate
		}
	case types.CreditCardExpDate2DigitYear:
		if ml == 6 || ml == 7 {
			f.Type = types.CreditCardExpDate4DigitYear
			return RuleExpirationDate
		}
	}
	return RuleUnchanged
}

// rationalizeCardNumberOffsets assigns offsets to runs of short consecutive
// card number fields, e.g. four inputs of length four.
func rationalizeCardNumberOffsets(form *types.Form, idx []int, decisions []Decision) {
	run := make([]int, 0, 4)
	flush := func() {
		if len(run) >= 2 {
			offset := 0
			for _, i := range run {
				form.Fields[i].CardNumberOffset = offset
				decisions[i].Rule = RuleCardNumberOffset
				offset += form.Fields[i].MaxLength
			}
		}
		run = run[:0]
	}
	for _, i := range idx {
		f := &form.Fields[i]
		if f.Type == types.CreditCardNumber && f.MaxLength > 0 && f.MaxLength <= cardNumberSplitMaxSize {
			run = append(run, i)
			continue
		}
		flush()
	}
	flush()
}

// rationalizePhoneNumbers keeps only the first complete phone group of a
// section fillable without focus. Later groups are numbered and flagged
// so they fill only when one of their fields triggers the fill.
func rationalizePhoneNumbers(form *types.Form, idx []int, decisions []Decision) {
	group := 0
	completed := false
	lastCompleted := -1
	for _, i := range idx {
		f := &form.Fields[i]
		if f.Type.Group() != types.GroupPhone {
			continue
		}
		if f.Type == types.PhoneHomeExtension && lastCompleted >= 0 {
			// Extensions belong to the group they follow
			f.PhoneGroup = lastCompleted
			f.OnlyFillWhenFocused = lastCompleted > 0
		} else {
			f.PhoneGroup = group
			f.OnlyFillWhenFocused = completed && group > 0
		}
		if f.OnlyFillWhenFocused {
			decisions[i].Rule = RulePhoneOnlyOnFocus
		} else {
			decisions[i].Rule = RulePhoneFirstGroup
		}

		if f.Type != types.PhoneHomeExtension && completesPhoneGroup(f) {
			lastCompleted = group
			completed = true
			group++
		}
	}
}
