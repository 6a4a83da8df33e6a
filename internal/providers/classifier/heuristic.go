package classifier

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/GriffinCanCode/formfill/internal/domain/fieldlog"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// rule matches a field attribute to a type. Rules are tried in order, so
// more specific patterns come first.
type rule struct {
	fieldType types.FieldType
	pattern   string
}

var defaultRules = []rule{
	{types.CreditCardVerificationCode, `(?i)cvc|cvv|csc|security.?code|card.?verification`},
	{types.CreditCardNameFull, `(?i)name.?on.?card|card.?holder|cc.?name|card.?name`},
	{types.CreditCardNumber, `(?i)card.?(number|no\b|num|#)|cc.?num|credit.?card`},
	{types.CreditCardExpMonth, `(?i)(exp|card|cc).*mon(th)?\b|exp.?mm\b`},
	{types.CreditCardExp4DigitYear, `(?i)(exp|card|cc).*(year|yy)`},
	{types.CreditCardExpDate4DigitYear, `(?i)expir|exp.?date|\bexp\b|cc.?exp|valid.?thru|mm.?/.?yy`},
	{types.CreditCardType, `(?i)card.?type|card.?brand`},
	{types.OneTimeCode, `(?i)one.?time.?code|\botp\b|verification.?code|2fa`},
	{types.EmailAddress, `(?i)e.?mail`},
	{types.CompanyName, `(?i)company|organi[sz]ation|business.?name`},
	{types.PhoneHomeExtension, `(?i)phone.?ext|extension|\bext\b`},
	{types.PhoneHomeCountryCode, `(?i)country.?code|dial.?code|phone.?country`},
	{types.PhoneHomeCityCode, `(?i)area.?code|city.?code`},
	{types.PhoneHomeNumberPrefix, `(?i)phone.?prefix|exchange`},
	{types.PhoneHomeNumberSuffix, `(?i)phone.?suffix|line.?number`},
	{types.PhoneHomeWholeNumber, `(?i)phone|tel(ephone)?\b|mobile|cell`},
	{types.NameFull, `(?i)full.?name|^name$|your.?name|recipient`},
	{types.NameFirst, `(?i)first.?name|given.?name|fname|forename|^first$`},
	{types.NameMiddle, `(?i)middle.?name|mname|^middle$|middle.?initial`},
	{types.NameLast, `(?i)last.?name|surname|family.?name|lname|^last$`},
	{types.AddressHomeLine2, `(?i)address.?(line)?.?2|addr.?2|\bapt\b|apartment|suite|unit\b`},
	{types.AddressHomeLine1, `(?i)address.?(line)?.?1|addr.?1|street|address`},
	{types.AddressHomeCity, `(?i)city|town|locality`},
	{types.AddressHomeCountry, `(?i)country`},
	{types.AddressHomeState, `(?i)state|province|region|county`},
	{types.AddressHomeZip, `(?i)zip|postal|post.?code`},
}

// splittable types may repeat on consecutive fields without opening a new
// section, as in a card number typed into four boxes
var splittable = types.NewFieldTypeSet(
	types.CreditCardNumber,
	types.PhoneHomeNumber,
	types.PhoneHomeNumberPrefix,
	types.PhoneHomeNumberSuffix,
)

// Heuristic classifies fields without a server. It is safe for concurrent
// use.
type Heuristic struct {
	rules      []rule
	regexCache sync.Map
}

// NewHeuristic creates a classifier with the built-in rules
func NewHeuristic() *Heuristic {
	return &Heuristic{rules: defaultRules}
}

// cachedRegex returns the compiled pattern, compiling it once
func (h *Heuristic) cachedRegex(pattern string) (*regexp.Regexp, error) {
	if cached, ok := h.regexCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	h.regexCache.Store(pattern, re)
	return re, nil
}

// ClassifyFields assigns each field the autocomplete type when the
// attribute names one, otherwise the heuristic type.
func (h *Heuristic) ClassifyFields(form *types.Form) map[types.FieldGlobalID]types.FieldType {
	out := make(map[types.FieldGlobalID]types.FieldType, len(form.Fields))
	for i := range form.Fields {
		f := &form.Fields[i]
		auto, heuristic := h.predict(f)
		if auto != types.UnknownType {
			out[f.GlobalID] = auto
		} else {
			out[f.GlobalID] = heuristic
		}
	}
	return out
}

// Predictions reports both prediction sources per field for the field log
func (h *Heuristic) Predictions(form *types.Form) map[types.FieldGlobalID][]fieldlog.PredictionEvent {
	out := make(map[types.FieldGlobalID][]fieldlog.PredictionEvent, len(form.Fields))
	for i := range form.Fields {
		f := &form.Fields[i]
		auto, heuristic := h.predict(f)
		out[f.GlobalID] = append(out[f.GlobalID], fieldlog.HeuristicPrediction(heuristic, 0))
		if f.Autocomplete != "" {
			out[f.GlobalID] = append(out[f.GlobalID], fieldlog.AutocompletePrediction(auto))
		}
	}
	return out
}

func (h *Heuristic) predict(f *types.Field) (auto, heuristic types.FieldType) {
	auto = resolveExpiration(parseAutocomplete(f.Autocomplete).Type, f)
	heuristic = resolveExpiration(h.match(f), f)
	return auto, heuristic
}

// match runs the rules over name, id, label and placeholder
func (h *Heuristic) match(f *types.Field) types.FieldType {
	attrs := []string{f.Name, f.IDAttribute, f.Label, f.Placeholder}
	for _, r := range h.rules {
		re, err := h.cachedRegex(r.pattern)
		if err != nil {
			continue
		}
		for _, attr := range attrs {
			if attr != "" && re.MatchString(strings.TrimSpace(attr)) {
				return r.fieldType
			}
		}
	}
	switch f.Control {
	case types.ControlEmail:
		return types.EmailAddress
	case types.ControlTelephone:
		return types.PhoneHomeWholeNumber
	}
	return types.UnknownType
}

// resolveExpiration picks the two- or four-digit year variant from the
// field's placeholder and max length
func resolveExpiration(t types.FieldType, f *types.Field) types.FieldType {
	placeholder := strings.ToLower(f.Placeholder)
	shortYear := !strings.Contains(placeholder, "yyyy") && strings.Contains(placeholder, "yy")
	switch t {
	case types.CreditCardExpDate4DigitYear:
		if shortYear || f.MaxLength == 5 {
			return types.CreditCardExpDate2DigitYear
		}
	case types.CreditCardExp4DigitYear:
		if shortYear || f.MaxLength == 2 {
			return types.CreditCardExp2DigitYear
		}
	}
	return t
}

// AssignSections groups fields into fillable sections. Fields with an
// autocomplete section or mode form their own section per product. Other
// fields are grouped per product, and a repeated type starts a new
// section. Unclassified fields join the section of the field before them.
func (h *Heuristic) AssignSections(form *types.Form, fieldTypes map[types.FieldGlobalID]types.FieldType) map[types.FieldGlobalID]string {
	out := make(map[types.FieldGlobalID]string, len(form.Fields))

	type running struct {
		index int
		seen  types.FieldTypeSet
		last  types.FieldType
	}
	current := make(map[types.FillingProduct]*running)
	previous := ""

	for i := range form.Fields {
		f := &form.Fields[i]
		t := fieldTypes[f.GlobalID]
		product := t.Product()
		if product == types.ProductNone {
			if previous == "" {
				previous = "default"
			}
			out[f.GlobalID] = previous
			continue
		}

		if ac := parseAutocomplete(f.Autocomplete); ac.hasSection() {
			parts := make([]string, 0, 3)
			for _, p := range []string{ac.Section, ac.Mode, product.String()} {
				if p != "" {
					parts = append(parts, p)
				}
			}
			name := strings.Join(parts, "-")
			out[f.GlobalID] = name
			previous = name
			continue
		}

		r, ok := current[product]
		if !ok {
			r = &running{index: 1, seen: types.NewFieldTypeSet()}
			current[product] = r
		} else if r.seen.Contains(t) && !(splittable.Contains(t) && r.last == t) {
			r.index++
			r.seen = types.NewFieldTypeSet()
		}
		r.seen[t] = struct{}{}
		r.last = t

		name := fmt.Sprintf("%s-%d", product, r.index)
		out[f.GlobalID] = name
		previous = name
	}
	return out
}
