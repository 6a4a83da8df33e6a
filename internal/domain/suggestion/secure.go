package suggestion

import (
	"net/url"
	"strings"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// isSecureURL treats https and loopback hosts as secure
func isSecureURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "https", "wss", "file":
		return true
	case "http":
		host := u.Hostname()
		return host == "localhost" || host == "127.0.0.1" || host == "::1"
	}
	return false
}

// IsMixedForm reports a secure page submitting to a plain-http action
func IsMixedForm(form *types.Form) bool {
	if form.Action == "" || !isSecureURL(form.URL) {
		return false
	}
	u, err := url.Parse(form.Action)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, "http") && !isSecureURL(form.Action)
}

// IsSecureForCards reports whether card data may be offered on the form
func IsSecureForCards(form *types.Form) bool {
	return isSecureURL(form.URL) && !IsMixedForm(form)
}

// warningFor returns the substitute entry for a form that must not receive
// the product's suggestions, if any.
func warningFor(form *types.Form, product types.FillingProduct) (types.Suggestion, bool) {
	switch {
	case product == types.ProductCreditCard && !IsSecureForCards(form):
		return types.Suggestion{Kind: types.SuggestionInsecureWarning, Product: product}, true
	case product == types.ProductAddress && IsMixedForm(form):
		return types.Suggestion{Kind: types.SuggestionMixedFormWarning, Product: product}, true
	}
	return types.Suggestion{}, false
}
