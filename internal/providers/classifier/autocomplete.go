package classifier

import (
	"strings"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// autocompleteTypes maps autocomplete field tokens to types. Expiration
// tokens are resolved against the field's shape in resolveExpiration.
var autocompleteTypes = map[string]types.FieldType{
	"name":             types.NameFull,
	"given-name":       types.NameFirst,
	"additional-name":  types.NameMiddle,
	"family-name":      types.NameLast,
	"email":            types.EmailAddress,
	"organization":     types.CompanyName,
	"street-address":   types.AddressHomeStreetAddress,
	"address-line1":    types.AddressHomeLine1,
	"address-line2":    types.AddressHomeLine2,
	"address-level2":   types.AddressHomeCity,
	"address-level1":   types.AddressHomeState,
	"postal-code":      types.AddressHomeZip,
	"country":          types.AddressHomeCountry,
	"country-name":     types.AddressHomeCountry,
	"tel":              types.PhoneHomeWholeNumber,
	"tel-country-code": types.PhoneHomeCountryCode,
	"tel-area-code":    types.PhoneHomeCityCode,
	"tel-national":     types.PhoneHomeCityAndNumber,
	"tel-local":        types.PhoneHomeNumber,
	"tel-local-prefix": types.PhoneHomeNumberPrefix,
	"tel-local-suffix": types.PhoneHomeNumberSuffix,
	"tel-extension":    types.PhoneHomeExtension,
	"cc-name":          types.CreditCardNameFull,
	"cc-number":        types.CreditCardNumber,
	"cc-exp-month":     types.CreditCardExpMonth,
	"cc-exp-year":      types.CreditCardExp4DigitYear,
	"cc-exp":           types.CreditCardExpDate4DigitYear,
	"cc-type":          types.CreditCardType,
	"cc-csc":           types.CreditCardVerificationCode,
	"one-time-code":    types.OneTimeCode,
}

// autocomplete is a parsed autocomplete attribute
type autocomplete struct {
	Section string
	Mode    string
	Type    types.FieldType
}

// hasSection reports whether the attribute names a section or mode
func (a autocomplete) hasSection() bool {
	return a.Section != "" || a.Mode != ""
}

// parseAutocomplete splits an attribute like
// "section-gift shipping address-line1" into its parts. Unrecognized or
// "off" field tokens leave Type unknown.
func parseAutocomplete(attr string) autocomplete {
	var out autocomplete
	tokens := strings.Fields(strings.ToLower(attr))
	if len(tokens) == 0 {
		return out
	}
	for _, tok := range tokens[:len(tokens)-1] {
		switch {
		case strings.HasPrefix(tok, "section-"):
			out.Section = strings.TrimPrefix(tok, "section-")
		case tok == "shipping" || tok == "billing":
			out.Mode = tok
		}
	}
	out.Type = autocompleteTypes[tokens[len(tokens)-1]]
	return out
}
