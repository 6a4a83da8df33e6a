package filling

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// ============================================================================
// Fixtures
// ============================================================================

func elvis() *types.AddressProfile {
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

func visa() *types.CreditCard {
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

type fieldSpec struct {
	t         types.FieldType
	control   types.FormControlType
	maxLength int
}

func text(t types.FieldType) fieldSpec { return fieldSpec{t: t, control: types.ControlText} }

func buildForm(section string, specs ...fieldSpec) *types.Form {
	form := &types.Form{
		GlobalID: types.FormGlobalID{FrameToken: "main", RendererID: 1},
		Name:     "form",
		URL:      "https://example.test/checkout",
		Action:   "https://example.test/submit",
	}
	for i, s := range specs {
		form.Fields = append(form.Fields, types.Field{
			GlobalID:  types.FieldGlobalID{FrameToken: "main", RendererID: uint64(i + 1)},
			Name:      fmt.Sprintf("field%d", i),
			Control:   s.control,
			Focusable: true,
			Visible:   true,
			MaxLength: s.maxLength,
			Section:   section,
			Type:      s.t,
		})
	}
	return form
}

func values(form *types.Form) []string {
	out := make([]string, len(form.Fields))
	for i := range form.Fields {
		out[i] = form.Fields[i].Value
	}
	return out
}

func fillRequest(form *types.Form, trigger int, rec types.Record) Request {
	return Request{
		Action:  types.ActionFill,
		Form:    form,
		Trigger: form.Fields[trigger].GlobalID,
		Record:  rec,
		Details: types.TriggerDetails{Source: types.SourcePopup, Method: types.MethodFullForm},
	}
}

// ============================================================================
// Scenarios
// ============================================================================

func TestFillSimpleAddress(t *testing.T) {
	form := buildForm("address",
		text(types.NameFirst), text(types.NameMiddle), text(types.NameLast),
		text(types.AddressHomeLine1), text(types.AddressHomeLine2), text(types.AddressHomeCity),
		text(types.AddressHomeState), text(types.AddressHomeZip), text(types.AddressHomeCountry),
		text(types.PhoneHomeWholeNumber), text(types.EmailAddress),
	)

	res := NewEngine(DefaultOptions()).Fill(fillRequest(form, 0, types.AddressRecord(elvis())))

	require.Equal(t, types.FillStatusFilled, res.Status)
	want := []string{
		"Elvis", "Aaron", "Presley", "3734 Elvis Presley Blvd.", "Apt. 10",
		"Memphis", "Tennessee", "38116", "United States", "12345678901", "theking@gmail.com",
	}
	if diff := cmp.Diff(want, values(res.Form)); diff != "" {
		t.Errorf("filled values mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, res.Filled, 11)
	assert.Len(t, res.Outcomes, 11)
	for _, o := range res.Outcomes {
		assert.Equal(t, types.NotSkipped, o.Skip)
	}
	assert.True(t, res.Groups.Contains(types.GroupName))
	assert.True(t, res.Groups.Contains(types.GroupPhone))

	// Input form is untouched
	assert.Equal(t, "", form.Fields[0].Value)
	assert.Equal(t, types.StateFilled, res.Form.Fields[0].State)
}

func TestFillWithoutPhone(t *testing.T) {
	form := buildForm("address", text(types.NameFirst), text(types.PhoneHomeWholeNumber))
	opts := DefaultOptions()
	opts.FillPhone = false

	res := NewEngine(opts).Fill(fillRequest(form, 0, types.AddressRecord(elvis())))

	assert.Equal(t, []string{"Elvis", ""}, values(res.Form))
	assert.Equal(t, types.SkipNoValueToFill, res.Outcomes[1].Skip)
}

func TestFillOnlyTriggerSection(t *testing.T) {
	billing := buildForm("billing", text(types.NameFirst), text(types.AddressHomeCity))
	shipping := buildForm("shipping", text(types.NameFirst), text(types.AddressHomeCity))
	for i := range shipping.Fields {
		shipping.Fields[i].GlobalID.RendererID += 10
	}
	billing.Fields = append(billing.Fields, shipping.Fields...)

	res := NewEngine(DefaultOptions()).Fill(fillRequest(billing, 2, types.AddressRecord(elvis())))

	assert.Equal(t, []string{"", "", "Elvis", "Memphis"}, values(res.Form))
	assert.Equal(t, "shipping", res.Section)
	assert.Len(t, res.Outcomes, 2)
}

// ============================================================================
// Filling limits
// ============================================================================

func TestCardNumberLimit(t *testing.T) {
	specs := make([]fieldSpec, 21)
	for i := range specs {
		specs[i] = text(types.CreditCardNumber)
	}
	form := buildForm("card", specs...)

	res := NewEngine(DefaultOptions()).Fill(fillRequest(form, 0, types.CardRecord(visa())))

	for i, f := range res.Form.Fields {
		if i < CardNumberFillingLimit {
			assert.Equal(t, "4234567890123456", f.Value, "field %d", i)
		} else {
			assert.Equal(t, "", f.Value, "field %d", i)
			assert.Equal(t, types.SkipFillingLimitReached, res.Outcomes[i].Skip)
		}
	}
}

func TestCountrySelectLimit(t *testing.T) {
	specs := make([]fieldSpec, 12)
	for i := range specs {
		specs[i] = fieldSpec{t: types.AddressHomeCountry, control: types.ControlSelect}
	}
	form := buildForm("address", specs...)
	for i := range form.Fields {
		form.Fields[i].Options = []types.SelectOption{
			{Value: "", Text: "Select"},
			{Value: "CA", Text: "Canada"},
			{Value: "US", Text: "United States"},
		}
	}

	res := NewEngine(DefaultOptions()).Fill(fillRequest(form, 0, types.AddressRecord(elvis())))

	filled := 0
	for i, f := range res.Form.Fields {
		if i < DefaultFillingLimit {
			assert.Equal(t, "US", f.Value, "field %d", i)
			filled++
		} else {
			assert.Equal(t, "", f.Value, "field %d", i)
		}
	}
	assert.Equal(t, DefaultFillingLimit, filled)
}

func TestStateIsEffectivelyUncapped(t *testing.T) {
	specs := make([]fieldSpec, 30)
	for i := range specs {
		specs[i] = text(types.AddressHomeState)
	}
	form := buildForm("address", specs...)

	res := NewEngine(DefaultOptions()).Fill(fillRequest(form, 0, types.AddressRecord(elvis())))

	assert.Len(t, res.Filled, 30)
}

func TestLimitCountsOnlyChangingFields(t *testing.T) {
	specs := make([]fieldSpec, 11)
	for i := range specs {
		specs[i] = text(types.AddressHomeCity)
	}
	form := buildForm("address", specs...)
	// Two fields already hold the value and are previously autofilled
	for _, i := range []int{1, 2} {
		form.Fields[i].Value = "Memphis"
		form.Fields[i].State = types.StateFilled
	}

	res := NewEngine(DefaultOptions()).Fill(fillRequest(form, 0, types.AddressRecord(elvis())))

	assert.Len(t, res.Filled, 11)
}

// ============================================================================
// Phone groups
// ============================================================================

func phoneGroupForm() *types.Form {
	form := buildForm("address",
		text(types.NameFirst),
		fieldSpec{t: types.PhoneHomeCountryCode, control: types.ControlTelephone, maxLength: 1},
		fieldSpec{t: types.PhoneHomeCityCode, control: types.ControlTelephone, maxLength: 3},
		fieldSpec{t: types.PhoneHomeNumber, control: types.ControlTelephone, maxLength: 3},
		fieldSpec{t: types.PhoneHomeNumber, control: types.ControlTelephone, maxLength: 4},
		fieldSpec{t: types.PhoneHomeCountryCode, control: types.ControlTelephone, maxLength: 1},
		fieldSpec{t: types.PhoneHomeCityCode, control: types.ControlTelephone, maxLength: 3},
		fieldSpec{t: types.PhoneHomeNumber, control: types.ControlTelephone, maxLength: 3},
		fieldSpec{t: types.PhoneHomeNumber, control: types.ControlTelephone, maxLength: 4},
	)
	Rationalize(form)
	return form
}

func TestPhoneFillsOnlyFirstGroup(t *testing.T) {
	form := phoneGroupForm()

	res := NewEngine(DefaultOptions()).Fill(fillRequest(form, 0, types.AddressRecord(elvis())))

	assert.Equal(t, []string{"Elvis", "1", "234", "567", "8901", "", "", "", ""}, values(res.Form))
	for _, o := range res.Outcomes[5:] {
		assert.Equal(t, types.SkipOnlyFillWhenFocused, o.Skip)
	}
}

func TestPhoneFocusedSecondGroup(t *testing.T) {
	form := phoneGroupForm()

	res := NewEngine(DefaultOptions()).Fill(fillRequest(form, 6, types.AddressRecord(elvis())))

	assert.Equal(t, []string{"Elvis", "1", "234", "567", "8901", "1", "234", "567", "8901"}, values(res.Form))
}

// ============================================================================
// Stale structure
// ============================================================================

func TestStaleFormAborts(t *testing.T) {
	form := buildForm("address", text(types.NameFirst), text(types.NameLast), text(types.AddressHomeCity))
	live := form.Clone()
	live.Fields = live.Fields[1:]

	req := fillRequest(form, 1, types.AddressRecord(elvis()))
	req.Live = live
	res := NewEngine(DefaultOptions()).Fill(req)

	assert.Equal(t, types.FillStatusStaleForm, res.Status)
	assert.Empty(t, res.Writes)
	assert.Nil(t, res.Form)
}

func TestStaleControlKindAborts(t *testing.T) {
	form := buildForm("address", text(types.NameFirst), text(types.NameLast))
	live := form.Clone()
	live.Fields[0].Control = types.ControlSelect

	req := fillRequest(form, 1, types.AddressRecord(elvis()))
	req.Live = live

	assert.Equal(t, types.FillStatusStaleForm, NewEngine(DefaultOptions()).Fill(req).Status)
}

func TestDriftAfterTriggerStillFills(t *testing.T) {
	form := buildForm("address", text(types.NameFirst), text(types.NameLast), text(types.AddressHomeCity))
	live := form.Clone()
	live.Fields = live.Fields[:2]
	live.Fields[1].Value = "P"

	req := fillRequest(form, 0, types.AddressRecord(elvis()))
	req.Live = live
	res := NewEngine(DefaultOptions()).Fill(req)

	require.Equal(t, types.FillStatusFilled, res.Status)
	assert.Len(t, res.Form.Fields, 2)
	assert.Equal(t, "Elvis", res.Form.Fields[0].Value)
	// The live value "P" is prefilled by the page
	assert.Equal(t, types.SkipValuePrefilled, res.Outcomes[1].Skip)
}

// ============================================================================
// Skip reasons
// ============================================================================

func TestSkipReasons(t *testing.T) {
	form := buildForm("address",
		text(types.NameFirst), text(types.NameMiddle), text(types.NameLast),
		text(types.AddressHomeCity), text(types.AddressHomeZip), text(types.CreditCardNumber),
		text(types.UnknownType),
	)
	form.Fields[1].Focusable = false
	form.Fields[2].Value = "Presly"
	form.Fields[2].Properties = types.PropUserTyped
	form.Fields[3].Value = "Nashville"
	form.Fields[4].State = types.StateFilled
	form.Fields[4].Value = "99999"

	req := fillRequest(form, 0, types.AddressRecord(elvis()))
	req.FilledBy = map[types.FieldGlobalID]string{form.Fields[4].GlobalID: "other-guid"}
	res := NewEngine(DefaultOptions()).Fill(req)

	reasons := make([]types.SkipReason, len(res.Outcomes))
	for i, o := range res.Outcomes {
		reasons[i] = o.Skip
	}
	assert.Equal(t, []types.SkipReason{
		types.NotSkipped,
		types.SkipNotFocusable,
		types.SkipUserFilled,
		types.SkipValuePrefilled,
		types.SkipAutofilledByOther,
		types.SkipUnrelatedType,
		types.SkipUnrelatedType,
	}, reasons)
	assert.NotEmpty(t, res.Outcomes[3].SkippedValueHash)
	assert.Equal(t, "Nashville", res.Form.Fields[3].Value)
}

func TestPlaceholderIsNotPrefilled(t *testing.T) {
	form := buildForm("address", text(types.NameFirst), text(types.AddressHomeCity))
	form.Fields[1].Placeholder = "City"
	form.Fields[1].Value = "City"

	res := NewEngine(DefaultOptions()).Fill(fillRequest(form, 0, types.AddressRecord(elvis())))

	assert.Equal(t, "Memphis", res.Form.Fields[1].Value)
}

func TestPrefilledOverwrittenWhenAllowed(t *testing.T) {
	form := buildForm("address", text(types.NameFirst), text(types.AddressHomeCity))
	form.Fields[1].Value = "Nashville"
	opts := DefaultOptions()
	opts.SkipPrefilled = false

	res := NewEngine(opts).Fill(fillRequest(form, 0, types.AddressRecord(elvis())))

	assert.Equal(t, "Memphis", res.Form.Fields[1].Value)
	require.Len(t, res.Prior, 2)
	assert.Equal(t, "Nashville", res.Prior[1].Value)
}

func TestUserTypedTriggerIsFilled(t *testing.T) {
	form := buildForm("address", text(types.NameFirst))
	form.Fields[0].Value = "El"
	form.Fields[0].Properties = types.PropUserTyped

	res := NewEngine(DefaultOptions()).Fill(fillRequest(form, 0, types.AddressRecord(elvis())))

	assert.Equal(t, "Elvis", res.Form.Fields[0].Value)
}

func TestFieldTypesToFill(t *testing.T) {
	form := buildForm("address", text(types.NameFirst), text(types.NameLast), text(types.AddressHomeCity))
	req := fillRequest(form, 0, types.AddressRecord(elvis()))
	req.Details.Method = types.MethodGroup
	req.Details.FieldTypesToFill = types.NewFieldTypeSet(types.NameFirst, types.NameLast)

	res := NewEngine(DefaultOptions()).Fill(req)

	assert.Equal(t, []string{"Elvis", "Presley", ""}, values(res.Form))
	assert.Equal(t, types.SkipNotInFieldTypesToFill, res.Outcomes[2].Skip)
}

func TestFieldByFieldWithFallbackType(t *testing.T) {
	form := buildForm("", text(types.UnknownType), text(types.UnknownType))
	req := fillRequest(form, 0, types.CardRecord(visa()))
	req.Details = types.TriggerDetails{
		Source:           types.SourceManualFallbackPayments,
		Method:           types.MethodFieldByField,
		FieldTypesToFill: types.NewFieldTypeSet(types.CreditCardNumber),
	}

	res := NewEngine(DefaultOptions()).Fill(req)

	assert.Equal(t, []string{"4234567890123456", ""}, values(res.Form))
	assert.Len(t, res.Outcomes, 1)
}

func TestRefillSkipsGroupsNotOriginallyFilled(t *testing.T) {
	form := buildForm("address", text(types.NameFirst), text(types.AddressHomeCity))
	req := fillRequest(form, 0, types.AddressRecord(elvis()))
	req.IsRefill = true
	req.OriginalGroups = types.GroupSet{types.GroupName: {}}

	res := NewEngine(DefaultOptions()).Fill(req)

	assert.Equal(t, []string{"Elvis", ""}, values(res.Form))
	assert.Equal(t, types.SkipRefillNotInGroup, res.Outcomes[1].Skip)
}

func TestForcedValueOverridesUserEdit(t *testing.T) {
	form := buildForm("card",
		text(types.CreditCardNameFull), text(types.CreditCardNumber), text(types.CreditCardExpDate4DigitYear))
	form.Fields[2].Value = "04 / 20"
	form.Fields[2].Properties = types.PropUserTyped

	req := fillRequest(form, 0, types.CardRecord(visa()))
	req.IsRefill = true
	req.ForcedValues = map[types.FieldGlobalID]string{form.Fields[2].GlobalID: "04 / 99"}
	res := NewEngine(DefaultOptions()).Fill(req)

	assert.Equal(t, []string{"Elvis Presley", "4234567890123456", "04 / 99"}, values(res.Form))
	assert.False(t, res.Form.Fields[0].ForceOverride)
	assert.False(t, res.Form.Fields[1].ForceOverride)
	assert.True(t, res.Form.Fields[2].ForceOverride)
	assert.True(t, res.Writes[2].ForceOverride)
}

func TestPreviewDoesNotCommitState(t *testing.T) {
	form := buildForm("address", text(types.NameFirst))
	req := fillRequest(form, 0, types.AddressRecord(elvis()))
	req.Action = types.ActionPreview

	res := NewEngine(DefaultOptions()).Fill(req)

	assert.Equal(t, types.StatePreviewed, res.Form.Fields[0].State)
	assert.False(t, res.Form.Fields[0].Properties.Has(types.PropAutofilledOnce))
}

func TestUnknownTriggerNothingToFill(t *testing.T) {
	form := buildForm("address", text(types.NameFirst))
	req := fillRequest(form, 0, types.AddressRecord(elvis()))
	req.Trigger = types.FieldGlobalID{FrameToken: "other", RendererID: 5}

	assert.Equal(t, types.FillStatusNothingToFill, NewEngine(DefaultOptions()).Fill(req).Status)
}
