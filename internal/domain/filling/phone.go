package filling

import (
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/shared/utils"
)

// PhoneParts is a stored phone number split into its components
type PhoneParts struct {
	Whole       string
	CountryCode string
	CityCode    string
	Prefix      string
	Suffix      string
}

// National returns city code plus local number
func (p PhoneParts) National() string {
	return p.CityCode + p.Prefix + p.Suffix
}

// Number returns the local number without city code
func (p PhoneParts) Number() string {
	return p.Prefix + p.Suffix
}

// defaultPhoneRegion is assumed for profiles without a country
const defaultPhoneRegion = "US"

// SplitPhone decomposes a stored number with the numbering plan of the
// profile's country. The country code is only reported when the stored
// number carries one; the city code is the geographical area code, so
// mobile and non-geographic numbers have none. Numbers that do not parse
// keep only their whole form.
func SplitPhone(stored, countryCode string) PhoneParts {
	trimmed := strings.TrimSpace(stored)
	digits := utils.DigitsOnly(trimmed)
	parts := PhoneParts{Whole: trimmed}
	if digits == "" {
		return parts
	}
	if strings.HasPrefix(trimmed, "+") {
		parts.Whole = "+" + digits
	} else {
		parts.Whole = digits
	}

	region := strings.ToUpper(strings.TrimSpace(countryCode))
	if region == "" {
		region = defaultPhoneRegion
	}
	num, err := phonenumbers.ParseAndKeepRawInput(trimmed, region)
	if err != nil {
		return parts
	}
	if num.GetCountryCodeSource() != phonenumbers.PhoneNumber_FROM_DEFAULT_COUNTRY {
		parts.CountryCode = strconv.Itoa(int(num.GetCountryCode()))
	}

	national := phonenumbers.GetNationalSignificantNumber(num)
	if n := phonenumbers.GetLengthOfGeographicalAreaCode(num); n > 0 && n < len(national) {
		parts.CityCode = national[:n]
		national = national[n:]
	}
	if len(national) > 3 {
		parts.Prefix = national[:3]
		parts.Suffix = national[3:]
	} else {
		parts.Prefix = national
	}
	return parts
}

// phoneValue picks the component of parts that fits the field
func phoneValue(field *types.Field, parts PhoneParts) string {
	ml := field.MaxLength
	switch field.Type {
	case types.PhoneHomeCountryCode:
		return parts.CountryCode
	case types.PhoneHomeCityCode:
		return parts.CityCode
	case types.PhoneHomeNumberPrefix:
		return parts.Prefix
	case types.PhoneHomeNumberSuffix:
		return parts.Suffix
	case types.PhoneHomeNumber:
		switch {
		case ml > 0 && ml <= 3:
			return parts.Prefix
		case ml == 4:
			return parts.Suffix
		}
		return parts.Number()
	case types.PhoneHomeCityAndNumber:
		return parts.National()
	case types.PhoneHomeExtension:
		return ""
	case types.PhoneHomeWholeNumber:
		// Fall back to shorter renditions when the field cannot hold the full number
		for _, candidate := range []string{parts.Whole, parts.CountryCode + parts.National(), parts.National(), parts.Number()} {
			if candidate != "" && (ml <= 0 || len(candidate) <= ml) {
				return candidate
			}
		}
		return ""
	}
	return ""
}

// completesPhoneGroup reports whether the field closes a phone group: it
// carries the local number or its final part.
func completesPhoneGroup(field *types.Field) bool {
	switch field.Type {
	case types.PhoneHomeWholeNumber, types.PhoneHomeCityAndNumber, types.PhoneHomeNumberSuffix:
		return true
	case types.PhoneHomeNumber:
		return !(field.MaxLength > 0 && field.MaxLength <= 3)
	}
	return false
}
