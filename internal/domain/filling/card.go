package filling

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// MidlineDot obfuscates digits in previews and labels
const MidlineDot = "•"

// separatorPattern finds the separator in hints such as "MM / YY" or "mm-yyyy"
var separatorPattern = regexp.MustCompile(`(?i)mm(\s*[-/.]?\s*)(?:yy|jj|aa)`)

// ObfuscatedDigits renders "•••• 1234" style text for the last digits
func ObfuscatedDigits(lastFour string, dots int) string {
	if dots <= 0 {
		dots = 4
	}
	return strings.Repeat(MidlineDot, dots) + " " + lastFour
}

// cardNumberValue returns the number or, for split fields, the slice at the field's offset
func cardNumberValue(field *types.Field, card *types.CreditCard, preview bool) string {
	digits := types.StripCardNumber(card.Number)
	if preview && (card.IsMasked() || digits == "") {
		obfuscated := ObfuscatedDigits(card.LastFourDigits(), 4)
		if field.MaxLength > 0 && len([]rune(obfuscated)) > field.MaxLength {
			return string([]rune(obfuscated)[:field.MaxLength])
		}
		return obfuscated
	}
	if digits == "" {
		return ""
	}
	if field.CardNumberOffset > 0 || (field.MaxLength > 0 && field.MaxLength < len(digits)) {
		start := field.CardNumberOffset
		if start >= len(digits) {
			return ""
		}
		end := len(digits)
		if field.MaxLength > 0 && start+field.MaxLength < end {
			end = start + field.MaxLength
		}
		return digits[start:end]
	}
	return digits
}

// expirationSeparator reads the separator from placeholder or label
func expirationSeparator(field *types.Field) string {
	for _, hint := range []string{field.Placeholder, field.Label} {
		if m := separatorPattern.FindStringSubmatch(hint); m != nil {
			return m[1]
		}
	}
	return "/"
}

// expirationValue formats the card's expiration for the field's type
func expirationValue(field *types.Field, card *types.CreditCard) string {
	if card.ExpMonth == 0 || card.ExpYear == 0 {
		return ""
	}
	month := fmt.Sprintf("%02d", card.ExpMonth)
	year4 := fmt.Sprintf("%04d", card.ExpYear)
	year2 := fmt.Sprintf("%02d", card.ExpYear%100)

	if field.Control == types.ControlMonth {
		return year4 + "-" + month
	}
	switch field.Type {
	case types.CreditCardExpMonth:
		return month
	case types.CreditCardExp2DigitYear:
		return year2
	case types.CreditCardExp4DigitYear:
		return year4
	case types.CreditCardExpDate2DigitYear:
		return month + expirationSeparator(field) + year2
	case types.CreditCardExpDate4DigitYear:
		return month + expirationSeparator(field) + year4
	}
	return ""
}

// cardValue derives the value of a credit card field
func cardValue(field *types.Field, card *types.CreditCard, cvc string, preview bool) string {
	switch field.Type {
	case types.CreditCardNameFull:
		return card.NameOnCard
	case types.CreditCardNumber:
		return cardNumberValue(field, card, preview)
	case types.CreditCardType:
		return card.Network
	case types.CreditCardVerificationCode:
		if cvc == "" {
			cvc = card.CVC
		}
		if preview && cvc != "" {
			return strings.Repeat(MidlineDot, len(cvc))
		}
		return cvc
	}
	if field.Type.IsExpirationDate() {
		return expirationValue(field, card)
	}
	return ""
}
