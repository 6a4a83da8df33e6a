package types

import (
	"strings"
	"time"
)

// RecordKind discriminates the Record union
type RecordKind string

const (
	RecordAddress    RecordKind = "address"
	RecordCreditCard RecordKind = "credit_card"
)

// Product returns the filling product for the kind
func (k RecordKind) Product() FillingProduct {
	switch k {
	case RecordAddress:
		return ProductAddress
	case RecordCreditCard:
		return ProductCreditCard
	default:
		return ProductNone
	}
}

// RecordKindFor maps a filling product back to the record kind that serves it
func RecordKindFor(p FillingProduct) (RecordKind, bool) {
	switch p {
	case ProductAddress:
		return RecordAddress, true
	case ProductCreditCard:
		return RecordCreditCard, true
	}
	return "", false
}

// AddressProfile represents a stored address
type AddressProfile struct {
	GUID        string    `json:"guid" yaml:"guid"`
	FirstName   string    `json:"first_name" yaml:"first_name"`
	MiddleName  string    `json:"middle_name,omitempty" yaml:"middle_name,omitempty"`
	LastName    string    `json:"last_name" yaml:"last_name"`
	Company     string    `json:"company,omitempty" yaml:"company,omitempty"`
	Line1       string    `json:"line1" yaml:"line1"`
	Line2       string    `json:"line2,omitempty" yaml:"line2,omitempty"`
	City        string    `json:"city" yaml:"city"`
	State       string    `json:"state" yaml:"state"`
	Zip         string    `json:"zip" yaml:"zip"`
	CountryCode string    `json:"country_code" yaml:"country_code"`
	Phone       string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email       string    `json:"email,omitempty" yaml:"email,omitempty"`
	UseCount    int       `json:"use_count" yaml:"use_count"`
	UseDate     time.Time `json:"use_date" yaml:"use_date"`
}

// FullName joins the non-empty name parts
func (a *AddressProfile) FullName() string {
	return joinNonEmpty(" ", a.FirstName, a.MiddleName, a.LastName)
}

// StreetAddress joins both address lines with a newline
func (a *AddressProfile) StreetAddress() string {
	return joinNonEmpty("\n", a.Line1, a.Line2)
}

// Raw returns the stored value for an address field type without locale
// formatting. Phone sub-types and country names are derived by the filling engine.
func (a *AddressProfile) Raw(t FieldType) string {
	switch t {
	case NameFirst:
		return a.FirstName
	case NameMiddle:
		return a.MiddleName
	case NameLast:
		return a.LastName
	case NameFull:
		return a.FullName()
	case EmailAddress:
		return a.Email
	case CompanyName:
		return a.Company
	case AddressHomeLine1:
		return a.Line1
	case AddressHomeLine2:
		return a.Line2
	case AddressHomeStreetAddress:
		return a.StreetAddress()
	case AddressHomeCity:
		return a.City
	case AddressHomeState:
		return a.State
	case AddressHomeZip:
		return a.Zip
	case AddressHomeCountry:
		return a.CountryCode
	}
	if t.Group() == GroupPhone {
		return a.Phone
	}
	return ""
}

// CardRecordType is the enrollment/masking state of a card
type CardRecordType string

const (
	CardLocal        CardRecordType = "local"
	CardFullServer   CardRecordType = "full_server"
	CardMaskedServer CardRecordType = "masked_server"
	CardVirtual      CardRecordType = "virtual"
)

// CreditCard represents a stored payment card
type CreditCard struct {
	GUID       string         `json:"guid" yaml:"guid"`
	NameOnCard string         `json:"name_on_card" yaml:"name_on_card"`
	Number     string         `json:"number,omitempty" yaml:"number,omitempty"`
	LastFour   string         `json:"last_four,omitempty" yaml:"last_four,omitempty"`
	ExpMonth   int            `json:"exp_month" yaml:"exp_month"`
	ExpYear    int            `json:"exp_year" yaml:"exp_year"`
	CVC        string         `json:"cvc,omitempty" yaml:"cvc,omitempty"`
	Network    string         `json:"network,omitempty" yaml:"network,omitempty"`
	Nickname   string         `json:"nickname,omitempty" yaml:"nickname,omitempty"`
	RecordType CardRecordType `json:"record_type" yaml:"record_type"`
	UseCount   int            `json:"use_count" yaml:"use_count"`
	UseDate    time.Time      `json:"use_date" yaml:"use_date"`
}

// IsExpired reports whether the card expired before the month of now
func (c *CreditCard) IsExpired(now time.Time) bool {
	if c.ExpYear == 0 || c.ExpMonth == 0 {
		return false
	}
	y, m, _ := now.Date()
	if c.ExpYear != y {
		return c.ExpYear < y
	}
	return c.ExpMonth < int(m)
}

// LastFourDigits returns the last four digits of the number, falling back to LastFour
func (c *CreditCard) LastFourDigits() string {
	digits := StripCardNumber(c.Number)
	if len(digits) >= 4 {
		return digits[len(digits)-4:]
	}
	return c.LastFour
}

// IsMasked reports whether the real number is not locally known
func (c *CreditCard) IsMasked() bool {
	return c.RecordType == CardMaskedServer || c.RecordType == CardVirtual
}

// StripCardNumber removes separators and whitespace from a card number
func StripCardNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Record is the tagged union of storable records
type Record struct {
	Kind    RecordKind      `json:"kind"`
	Address *AddressProfile `json:"address,omitempty"`
	Card    *CreditCard     `json:"card,omitempty"`
}

// AddressRecord wraps a profile
func AddressRecord(a *AddressProfile) Record {
	return Record{Kind: RecordAddress, Address: a}
}

// CardRecord wraps a card
func CardRecord(c *CreditCard) Record {
	return Record{Kind: RecordCreditCard, Card: c}
}

// GUID returns the stable identifier of the wrapped record
func (r Record) GUID() string {
	switch r.Kind {
	case RecordAddress:
		if r.Address != nil {
			return r.Address.GUID
		}
	case RecordCreditCard:
		if r.Card != nil {
			return r.Card.GUID
		}
	}
	return ""
}

// UseStats returns use count and last use date of the wrapped record
func (r Record) UseStats() (int, time.Time) {
	switch {
	case r.Kind == RecordAddress && r.Address != nil:
		return r.Address.UseCount, r.Address.UseDate
	case r.Kind == RecordCreditCard && r.Card != nil:
		return r.Card.UseCount, r.Card.UseDate
	}
	return 0, time.Time{}
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
