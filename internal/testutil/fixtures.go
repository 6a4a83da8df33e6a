package testutil

import (
	"time"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// Elvis returns the canonical address profile.
func Elvis() *types.AddressProfile {
	return &types.AddressProfile{
		GUID:        "00000000-0000-0000-0000-000000000001",
		FirstName:   "Elvis",
		MiddleName:  "Aaron",
		LastName:    "Presley",
		Line1:       "3734 Elvis Presley Blvd.",
		Line2:       "Apt. 10",
		City:        "Memphis",
		State:       "Tennessee",
		Zip:         "38116",
		CountryCode: "US",
		Phone:       "12345678901",
		Email:       "theking@gmail.com",
		UseCount:    1,
		UseDate:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Visa returns a local card expiring far in the future.
func Visa() *types.CreditCard {
	return &types.CreditCard{
		GUID:       "00000000-0000-0000-0000-000000000004",
		NameOnCard: "Elvis Presley",
		Number:     "4234567890123456",
		ExpMonth:   4,
		ExpYear:    2999,
		Network:    "Visa",
		RecordType: types.CardLocal,
	}
}

// Mastercard returns a second local card.
func Mastercard() *types.CreditCard {
	return &types.CreditCard{
		GUID:       "00000000-0000-0000-0000-000000000005",
		NameOnCard: "Buddy Holly",
		Number:     "5187654321098765",
		ExpMonth:   10,
		ExpYear:    2998,
		Network:    "Mastercard",
		RecordType: types.CardLocal,
	}
}

// FieldSpec describes one field of a test form.
type FieldSpec struct {
	Name    string
	Control types.FormControlType
	Value   string
	Options []types.SelectOption
}

// Text returns a text field spec.
func Text(name string) FieldSpec {
	return FieldSpec{Name: name, Control: types.ControlText}
}

// Select returns a select field spec.
func Select(name string, options ...types.SelectOption) FieldSpec {
	return FieldSpec{Name: name, Control: types.ControlSelect, Options: options}
}

// BuildForm creates a named form on a secure page. Renderer ids start at
// rendererBase+1 so tests can build distinct forms.
func BuildForm(name string, rendererBase uint64, specs ...FieldSpec) *types.Form {
	form := &types.Form{
		GlobalID:        types.FormGlobalID{FrameToken: "main", RendererID: rendererBase},
		Name:            name,
		URL:             "https://shop.example/checkout",
		Action:          "https://shop.example/submit",
		MainFrameOrigin: "https://shop.example",
	}
	for i, s := range specs {
		control := s.Control
		if control == "" {
			control = types.ControlText
		}
		form.Fields = append(form.Fields, types.Field{
			GlobalID:  types.FieldGlobalID{FrameToken: "main", RendererID: rendererBase + uint64(i) + 1},
			Name:      s.Name,
			Control:   control,
			Value:     s.Value,
			Focusable: true,
			Visible:   true,
			Origin:    "https://shop.example",
			Options:   s.Options,
		})
	}
	return form
}
