package filling

import (
	"strconv"
	"strings"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/shared/utils"
)

// matchOption returns the value of the first option whose value or text
// equals one of the candidates, ignoring case and diacritics. Exact
// matches win over normalized ones.
func matchOption(options []types.SelectOption, candidates ...string) (string, bool) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		for _, o := range options {
			if utils.EqualFold(o.Value, c) || utils.EqualFold(o.Text, c) {
				return o.Value, true
			}
		}
	}
	for _, c := range candidates {
		want := utils.NormalizeForMatch(c)
		if want == "" {
			continue
		}
		for _, o := range options {
			if utils.NormalizeForMatch(o.Value) == want || utils.NormalizeForMatch(o.Text) == want {
				return o.Value, true
			}
		}
	}
	return "", false
}

// matchNumericOption matches options holding the number n with or without
// leading zeros, e.g. "4" and "04" for April.
func matchNumericOption(options []types.SelectOption, n int) (string, bool) {
	for _, o := range options {
		for _, s := range []string{o.Value, o.Text} {
			if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v == n {
				return o.Value, true
			}
		}
	}
	return "", false
}

// selectValue picks the option for a select-like field given the derived
// text value. Returns "" when no option matches.
func selectValue(field *types.Field, value string, rec types.Record) string {
	if len(field.Options) == 0 || value == "" {
		return ""
	}
	switch field.Type {
	case types.AddressHomeState:
		country := rec.Address.CountryCode
		v, _ := matchOption(field.Options,
			value,
			utils.RegionAbbreviation(country, value),
			utils.RegionName(country, value))
		return v
	case types.AddressHomeCountry:
		v, _ := matchOption(field.Options, rec.Address.CountryCode, utils.CountryName(rec.Address.CountryCode), value)
		return v
	case types.CreditCardExpMonth:
		if v, ok := matchNumericOption(field.Options, rec.Card.ExpMonth); ok {
			return v
		}
		v, _ := matchOption(field.Options, utils.MonthName(rec.Card.ExpMonth))
		return v
	case types.CreditCardExp2DigitYear, types.CreditCardExp4DigitYear:
		if v, ok := matchNumericOption(field.Options, rec.Card.ExpYear); ok {
			return v
		}
		if v, ok := matchNumericOption(field.Options, rec.Card.ExpYear%100); ok {
			return v
		}
		return ""
	case types.CreditCardType:
		v, _ := matchOption(field.Options, value)
		return v
	}
	v, _ := matchOption(field.Options, value)
	return v
}
