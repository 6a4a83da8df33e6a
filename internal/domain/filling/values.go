package filling

import (
	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/shared/utils"
)

// addressValue derives the text value of an address field
func addressValue(field *types.Field, addr *types.AddressProfile, fillPhone bool) string {
	switch field.Type {
	case types.AddressHomeState:
		name := utils.RegionName(addr.CountryCode, addr.State)
		if field.MaxLength > 0 && len(name) > field.MaxLength {
			if abbr := utils.RegionAbbreviation(addr.CountryCode, addr.State); abbr != "" {
				return abbr
			}
		}
		return name
	case types.AddressHomeCountry:
		if name := utils.CountryName(addr.CountryCode); name != "" &&
			(field.MaxLength <= 0 || len(name) <= field.MaxLength) {
			return name
		}
		return addr.CountryCode
	}
	if field.Type.Group() == types.GroupPhone {
		if !fillPhone {
			return ""
		}
		return phoneValue(field, SplitPhone(addr.Phone, addr.CountryCode))
	}
	return addr.Raw(field.Type)
}

// FieldValue derives what the record would write into the field. Select
// controls resolve to an option value; "" means nothing fits.
func FieldValue(field *types.Field, rec types.Record, cvc string, action types.ActionPersistence, fillPhone bool) string {
	var value string
	switch rec.Kind {
	case types.RecordAddress:
		if rec.Address == nil || field.Type.Product() != types.ProductAddress {
			return ""
		}
		value = addressValue(field, rec.Address, fillPhone)
	case types.RecordCreditCard:
		if rec.Card == nil || field.Type.Product() != types.ProductCreditCard {
			return ""
		}
		value = cardValue(field, rec.Card, cvc, action == types.ActionPreview)
	default:
		return ""
	}

	if field.Control.IsSelectLike() {
		return selectValue(field, value, rec)
	}
	if field.MaxLength > 0 && field.Type != types.CreditCardNumber {
		if r := []rune(value); len(r) > field.MaxLength {
			value = string(r[:field.MaxLength])
		}
	}
	return value
}
