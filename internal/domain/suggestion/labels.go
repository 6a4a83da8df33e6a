package suggestion

import (
	"fmt"

	"github.com/GriffinCanCode/formfill/internal/domain/filling"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/shared/utils"
)

// addressValue is what an address entry displays for a field of type t
func addressValue(addr *types.AddressProfile, t types.FieldType) string {
	switch {
	case t == types.UnknownType:
		if name := addr.FullName(); name != "" {
			return name
		}
		return addr.Line1
	case t == types.AddressHomeCountry:
		return utils.CountryName(addr.CountryCode)
	case t == types.AddressHomeStreetAddress:
		return addr.Line1
	}
	return addr.Raw(t)
}

// addressLabel picks the secondary line shown under an address entry
func addressLabel(addr *types.AddressProfile, t types.FieldType) string {
	switch t {
	case types.AddressHomeLine1, types.AddressHomeStreetAddress:
		return addr.City
	case types.UnknownType:
		return addr.Line1
	}
	if addr.Line1 != "" {
		return addr.Line1
	}
	return addr.FullName()
}

// cardName is the nickname, falling back to the network
func cardName(card *types.CreditCard) string {
	if card.Nickname != "" {
		return card.Nickname
	}
	if card.Network != "" {
		return card.Network
	}
	return "Card"
}

// cardIdentity renders the name and obfuscated last four in the configured order
func (g *Generator) cardIdentity(card *types.CreditCard) string {
	digits := filling.ObfuscatedDigits(card.LastFourDigits(), g.opts.ObfuscationLength)
	if g.opts.NameBeforeDigits {
		return cardName(card) + "  " + digits
	}
	return digits + ", " + cardName(card)
}

// cardExpiration renders "MM/YY"
func cardExpiration(card *types.CreditCard) string {
	if card.ExpMonth == 0 || card.ExpYear == 0 {
		return ""
	}
	return fmt.Sprintf("%02d/%02d", card.ExpMonth, card.ExpYear%100)
}

// cardValueAndLabel returns what a card entry displays for a field of type t
func (g *Generator) cardValueAndLabel(card *types.CreditCard, t types.FieldType) (string, string) {
	identity := g.cardIdentity(card)
	switch {
	case t == types.CreditCardNameFull:
		return card.NameOnCard, identity
	case t.IsExpirationDate():
		return cardExpiration(card), identity
	}
	return identity, cardExpiration(card)
}
