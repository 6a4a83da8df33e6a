package types

import "strings"

// FieldType is the semantic category assigned to a form field by the classifier
type FieldType int

const (
	UnknownType FieldType = iota
	NameFirst
	NameMiddle
	NameLast
	NameFull
	EmailAddress
	CompanyName
	AddressHomeLine1
	AddressHomeLine2
	AddressHomeStreetAddress
	AddressHomeCity
	AddressHomeState
	AddressHomeZip
	AddressHomeCountry
	PhoneHomeWholeNumber
	PhoneHomeCountryCode
	PhoneHomeCityCode
	PhoneHomeNumber
	PhoneHomeNumberPrefix
	PhoneHomeNumberSuffix
	PhoneHomeCityAndNumber
	PhoneHomeExtension
	CreditCardNameFull
	CreditCardNumber
	CreditCardExpMonth
	CreditCardExp2DigitYear
	CreditCardExp4DigitYear
	CreditCardExpDate2DigitYear
	CreditCardExpDate4DigitYear
	CreditCardType
	CreditCardVerificationCode
	OneTimeCode
)

var fieldTypeNames = map[FieldType]string{
	UnknownType:                 "UNKNOWN_TYPE",
	NameFirst:                   "NAME_FIRST",
	NameMiddle:                  "NAME_MIDDLE",
	NameLast:                    "NAME_LAST",
	NameFull:                    "NAME_FULL",
	EmailAddress:                "EMAIL_ADDRESS",
	CompanyName:                 "COMPANY_NAME",
	AddressHomeLine1:            "ADDRESS_HOME_LINE1",
	AddressHomeLine2:            "ADDRESS_HOME_LINE2",
	AddressHomeStreetAddress:    "ADDRESS_HOME_STREET_ADDRESS",
	AddressHomeCity:             "ADDRESS_HOME_CITY",
	AddressHomeState:            "ADDRESS_HOME_STATE",
	AddressHomeZip:              "ADDRESS_HOME_ZIP",
	AddressHomeCountry:          "ADDRESS_HOME_COUNTRY",
	PhoneHomeWholeNumber:        "PHONE_HOME_WHOLE_NUMBER",
	PhoneHomeCountryCode:        "PHONE_HOME_COUNTRY_CODE",
	PhoneHomeCityCode:           "PHONE_HOME_CITY_CODE",
	PhoneHomeNumber:             "PHONE_HOME_NUMBER",
	PhoneHomeNumberPrefix:       "PHONE_HOME_NUMBER_PREFIX",
	PhoneHomeNumberSuffix:       "PHONE_HOME_NUMBER_SUFFIX",
	PhoneHomeCityAndNumber:      "PHONE_HOME_CITY_AND_NUMBER",
	PhoneHomeExtension:          "PHONE_HOME_EXTENSION",
	CreditCardNameFull:          "CREDIT_CARD_NAME_FULL",
	CreditCardNumber:            "CREDIT_CARD_NUMBER",
	CreditCardExpMonth:          "CREDIT_CARD_EXP_MONTH",
	CreditCardExp2DigitYear:     "CREDIT_CARD_EXP_2_DIGIT_YEAR",
	CreditCardExp4DigitYear:     "CREDIT_CARD_EXP_4_DIGIT_YEAR",
	CreditCardExpDate2DigitYear: "CREDIT_CARD_EXP_DATE_2_DIGIT_YEAR",
	CreditCardExpDate4DigitYear: "CREDIT_CARD_EXP_DATE_4_DIGIT_YEAR",
	CreditCardType:              "CREDIT_CARD_TYPE",
	CreditCardVerificationCode:  "CREDIT_CARD_VERIFICATION_CODE",
	OneTimeCode:                 "ONE_TIME_CODE",
}

var fieldTypesByName = func() map[string]FieldType {
	m := make(map[string]FieldType, len(fieldTypeNames))
	for t, name := range fieldTypeNames {
		m[name] = t
	}
	return m
}()

// String returns the canonical upper-case name of the type
func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fieldTypeNames[UnknownType]
}

// MarshalText implements encoding.TextMarshaler
func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *FieldType) UnmarshalText(text []byte) error {
	*t = ParseFieldType(string(text))
	return nil
}

// ParseFieldType maps a canonical name back to a FieldType. Unknown names map to UnknownType.
func ParseFieldType(name string) FieldType {
	if t, ok := fieldTypesByName[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return t
	}
	return UnknownType
}

// FieldTypeGroup clusters field types that are filled together
type FieldTypeGroup int

const (
	GroupNoGroup FieldTypeGroup = iota
	GroupName
	GroupEmail
	GroupCompany
	GroupAddress
	GroupPhone
	GroupCreditCard
)

// String returns the group name
func (g FieldTypeGroup) String() string {
	switch g {
	case GroupName:
		return "name"
	case GroupEmail:
		return "email"
	case GroupCompany:
		return "company"
	case GroupAddress:
		return "address"
	case GroupPhone:
		return "phone"
	case GroupCreditCard:
		return "credit_card"
	default:
		return "no_group"
	}
}

// Group returns the FieldTypeGroup of the type
func (t FieldType) Group() FieldTypeGroup {
	switch t {
	case NameFirst, NameMiddle, NameLast, NameFull:
		return GroupName
	case EmailAddress:
		return GroupEmail
	case CompanyName:
		return GroupCompany
	case AddressHomeLine1, AddressHomeLine2, AddressHomeStreetAddress, AddressHomeCity,
		AddressHomeState, AddressHomeZip, AddressHomeCountry:
		return GroupAddress
	case PhoneHomeWholeNumber, PhoneHomeCountryCode, PhoneHomeCityCode, PhoneHomeNumber,
		PhoneHomeNumberPrefix, PhoneHomeNumberSuffix, PhoneHomeCityAndNumber, PhoneHomeExtension:
		return GroupPhone
	case CreditCardNameFull, CreditCardNumber, CreditCardExpMonth, CreditCardExp2DigitYear,
		CreditCardExp4DigitYear, CreditCardExpDate2DigitYear, CreditCardExpDate4DigitYear,
		CreditCardType, CreditCardVerificationCode:
		return GroupCreditCard
	default:
		return GroupNoGroup
	}
}

// Product returns the filling product the type belongs to
func (t FieldType) Product() FillingProduct {
	return t.Group().Product()
}

// Product returns the filling product the group belongs to
func (g FieldTypeGroup) Product() FillingProduct {
	switch g {
	case GroupName, GroupEmail, GroupCompany, GroupAddress, GroupPhone:
		return ProductAddress
	case GroupCreditCard:
		return ProductCreditCard
	default:
		return ProductNone
	}
}

// IsExpirationDate reports whether the type holds a combined or partial card expiration
func (t FieldType) IsExpirationDate() bool {
	switch t {
	case CreditCardExpMonth, CreditCardExp2DigitYear, CreditCardExp4DigitYear,
		CreditCardExpDate2DigitYear, CreditCardExpDate4DigitYear:
		return true
	}
	return false
}

// IsSensitive reports whether the type may only be written into same-origin frames
func (t FieldType) IsSensitive() bool {
	return t == CreditCardNumber || t == CreditCardVerificationCode
}

// FillingProduct is the category of data being filled
type FillingProduct int

const (
	ProductNone FillingProduct = iota
	ProductAddress
	ProductCreditCard
	ProductPlusAddress
)

// String returns the product name
func (p FillingProduct) String() string {
	switch p {
	case ProductAddress:
		return "address"
	case ProductCreditCard:
		return "credit_card"
	case ProductPlusAddress:
		return "plus_address"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler
func (p FillingProduct) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *FillingProduct) UnmarshalText(text []byte) error {
	switch string(text) {
	case "address":
		*p = ProductAddress
	case "credit_card":
		*p = ProductCreditCard
	case "plus_address":
		*p = ProductPlusAddress
	default:
		*p = ProductNone
	}
	return nil
}

// FieldTypeSet is a set of field types. A nil set means "all types".
type FieldTypeSet map[FieldType]struct{}

// NewFieldTypeSet builds a set from the given types
func NewFieldTypeSet(types ...FieldType) FieldTypeSet {
	s := make(FieldTypeSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

// Contains reports whether t is in the set; a nil set contains everything
func (s FieldTypeSet) Contains(t FieldType) bool {
	if s == nil {
		return true
	}
	_, ok := s[t]
	return ok
}

// GroupSet is a set of field type groups
type GroupSet map[FieldTypeGroup]struct{}

// Add inserts g into the set
func (s GroupSet) Add(g FieldTypeGroup) {
	s[g] = struct{}{}
}

// Contains reports whether g is in the set
func (s GroupSet) Contains(g FieldTypeGroup) bool {
	_, ok := s[g]
	return ok
}

// Clone returns an independent copy
func (s GroupSet) Clone() GroupSet {
	out := make(GroupSet, len(s))
	for g := range s {
		out[g] = struct{}{}
	}
	return out
}
