package filling

import "github.com/GriffinCanCode/formfill/internal/shared/types"

// Per-type caps on how many fields of one storable type a single fill may
// change. Forms that repeat a type more often than this are usually
// honeypots or stacked hidden copies.
const (
	DefaultFillingLimit    = 9
	CardNumberFillingLimit = 19
	StateFillingLimit      = 1000
)

// FillingLimit returns the cap for a field type
func FillingLimit(t types.FieldType) int {
	switch t {
	case types.CreditCardNumber:
		return CardNumberFillingLimit
	case types.AddressHomeState:
		return StateFillingLimit
	default:
		return DefaultFillingLimit
	}
}

// IsStale reports whether the live form drifted from the cached one at or
// before the trigger position. Only ids and control kinds are compared;
// values and labels may change freely.
func IsStale(cached, live *types.Form, triggerIndex int) bool {
	if live == nil {
		return false
	}
	if triggerIndex < 0 || len(live.Fields) <= triggerIndex || len(cached.Fields) <= triggerIndex {
		return true
	}
	for i := 0; i <= triggerIndex; i++ {
		c, l := &cached.Fields[i], &live.Fields[i]
		if c.GlobalID != l.GlobalID || c.Control != l.Control {
			return true
		}
	}
	return false
}
