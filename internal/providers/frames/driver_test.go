package frames

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/testutil"
)

type mockPage struct {
	mock.Mock
}

func (m *mockPage) WriteFields(ctx context.Context, form types.FormGlobalID, writes []types.FieldWrite, action types.ActionPersistence) error {
	return m.Called(ctx, form, writes, action).Error(0)
}

// paymentForm has a main-frame name field and a card number and CVC hosted
// in a payment provider's frame.
func paymentForm() *types.Form {
	form := testutil.BuildForm("pay", 10,
		testutil.Text("cc-name"), testutil.Text("cc-number"), testutil.Text("cc-csc"), testutil.Text("cc-exp"),
	)
	form.Fields[0].Type = types.CreditCardNameFull
	form.Fields[1].Type = types.CreditCardNumber
	form.Fields[2].Type = types.CreditCardVerificationCode
	form.Fields[3].Type = types.CreditCardExpDate4DigitYear
	form.Fields[1].Origin = "https://pay.example/frame"
	form.Fields[2].Origin = "https://pay.example"
	form.Fields[3].Origin = "https://other.example"
	return form
}

func writesFor(form *types.Form) []types.FieldWrite {
	writes := make([]types.FieldWrite, len(form.Fields))
	for i := range form.Fields {
		writes[i] = types.FieldWrite{FieldID: form.Fields[i].GlobalID, Value: "v"}
	}
	return writes
}

func TestSafeFieldsFromMainFrame(t *testing.T) {
	form := paymentForm()
	safe := SafeFields(form, form.Fields[0].GlobalID)

	assert.True(t, safe.Contains(form.Fields[0].GlobalID))
	assert.False(t, safe.Contains(form.Fields[1].GlobalID), "card number in another origin")
	assert.False(t, safe.Contains(form.Fields[2].GlobalID), "cvc in another origin")
	assert.False(t, safe.Contains(form.Fields[3].GlobalID), "third origin")
}

func TestSafeFieldsFromPaymentFrame(t *testing.T) {
	form := paymentForm()
	safe := SafeFields(form, form.Fields[1].GlobalID)

	assert.True(t, safe.Contains(form.Fields[0].GlobalID), "main frame, not sensitive")
	assert.True(t, safe.Contains(form.Fields[1].GlobalID))
	assert.True(t, safe.Contains(form.Fields[2].GlobalID), "same origin as trigger")
	assert.False(t, safe.Contains(form.Fields[3].GlobalID))
}

func TestSensitiveMainFrameFieldNeedsSameOrigin(t *testing.T) {
	form := testutil.BuildForm("pay", 10, testutil.Text("cc-name"), testutil.Text("cc-number"))
	form.Fields[0].Origin = "https://pay.example"
	form.Fields[1].Type = types.CreditCardNumber

	safe := SafeFields(form, form.Fields[0].GlobalID)
	assert.False(t, safe.Contains(form.Fields[1].GlobalID))
}

func TestApplyFieldWritesWritesSafeSubset(t *testing.T) {
	form := paymentForm()
	page := new(mockPage)
	page.On("WriteFields", mock.Anything, form.GlobalID, mock.MatchedBy(func(w []types.FieldWrite) bool {
		return len(w) == 3
	}), types.ActionFill).Return(nil).Once()

	d := NewPolicyDriver(page, nil)
	applied, err := d.ApplyFieldWrites(context.Background(), form, form.Fields[1].GlobalID, writesFor(form), types.ActionFill)
	require.NoError(t, err)
	page.AssertExpectations(t)

	assert.Len(t, applied, 3)
	assert.False(t, applied.Contains(form.Fields[3].GlobalID))

	last, ok := d.LastWrites(form.GlobalID)
	require.True(t, ok)
	assert.Len(t, last, 3)

	d.Forget(form.GlobalID)
	_, ok = d.LastWrites(form.GlobalID)
	assert.False(t, ok)
}

func TestApplyFieldWritesPageError(t *testing.T) {
	form := paymentForm()
	page := new(mockPage)
	page.On("WriteFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("frame detached"))

	d := NewPolicyDriver(page, nil)
	_, err := d.ApplyFieldWrites(context.Background(), form, form.Fields[0].GlobalID, writesFor(form), types.ActionFill)
	assert.ErrorContains(t, err, "frame detached")
}

func TestApplyFieldWritesWithoutPage(t *testing.T) {
	form := testutil.BuildForm("f", 0, testutil.Text("a"), testutil.Text("b"))
	d := NewPolicyDriver(nil, nil)

	applied, err := d.ApplyFieldWrites(context.Background(), form, form.Fields[0].GlobalID, writesFor(form), types.ActionPreview)
	require.NoError(t, err)
	assert.Len(t, applied, 2)
}

func TestNormalizeOrigin(t *testing.T) {
	assert.Equal(t, "https://shop.example", normalizeOrigin("HTTPS://Shop.Example/checkout?x=1"))
	assert.Equal(t, "https://shop.example:8443", normalizeOrigin("https://shop.example:8443"))
	assert.Equal(t, "opaque", normalizeOrigin("opaque"))
}
