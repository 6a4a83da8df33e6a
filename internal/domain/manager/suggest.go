package manager

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formfill/internal/domain/fieldlog"
	"github.com/GriffinCanCode/formfill/internal/domain/suggestion"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// SuggestOutcome is the answer to a suggestion request
type SuggestOutcome struct {
	Suggestions []types.Suggestion   `json:"suggestions"`
	Product     types.FillingProduct `json:"product"`
	// Handler names the surface that took the suggestions; only "popup"
	// leaves showing them to the caller
	Handler string `json:"handler"`
	Shown   bool   `json:"shown"`
}

// OnAskForValuesToFill returns the suggestions for a focused field
func (m *Manager) OnAskForValuesToFill(ctx context.Context, form *types.Form, field types.FieldGlobalID, source types.TriggerSource) (SuggestOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.lookup(form, true)
	if err != nil {
		return SuggestOutcome{}, err
	}
	syncValues(st.form, form)
	f := st.form.Field(field)
	if f == nil {
		return SuggestOutcome{}, fmt.Errorf("%w: %s", ErrFieldNotInForm, field)
	}

	product := f.Type.Product()
	if source.IsManualFallback() {
		product = source.FallbackProduct()
	}
	out := SuggestOutcome{Product: product}

	suggestions := m.suggestionsFor(ctx, st.form, f, product, source)
	if len(suggestions) > 0 {
		outcome := m.chain.Dispatch(suggestion.Context{
			Form:    st.form,
			Field:   f,
			Source:  source,
			Product: product,
		}, suggestions)
		out.Handler = outcome.Handler
		out.Shown = outcome.Shown
		if outcome.Popup {
			out.Suggestions = suggestions
		}
	}

	m.recorder.AppendIfNotRepeated(field, fieldlog.AskForValuesToFillEvent{
		HadSuggestions: len(suggestions) > 0,
		Shown:          out.Shown,
		Source:         source,
		Product:        product,
	})
	if out.Shown {
		st.session.DidShowSuggestions = true
	}

	result := "empty"
	if out.Shown {
		result = "shown"
	}
	m.metrics.RecordSuggestions(product.String(), result)
	m.log.Debug("suggestions generated",
		logging.Form(form.GlobalID),
		logging.Field(field),
		logging.Product(product),
		zap.Int("count", len(suggestions)),
		zap.String("handler", out.Handler))
	return out, nil
}

// suggestionsFor queries the store and the generator. A separator closes
// the list whenever it offers something to fill.
func (m *Manager) suggestionsFor(ctx context.Context, form *types.Form, field *types.Field, product types.FillingProduct, source types.TriggerSource) []types.Suggestion {
	if !m.enabled(product) {
		return nil
	}
	kind, ok := types.RecordKindFor(product)
	if !ok {
		return nil
	}
	records, err := m.store.ListRecords(ctx, kind)
	if err != nil {
		m.log.Warn("failed to list records",
			logging.Product(product),
			zap.Error(err))
		return nil
	}

	suggestions := m.generator.GetSuggestions(ctx, suggestion.Request{
		Form:    form,
		Trigger: field.GlobalID,
		Kind:    kind,
		Source:  source,
		Records: records,
	})
	for _, s := range suggestions {
		if s.Kind.IsActionable() {
			return append(suggestions, types.Suggestion{Kind: types.SuggestionSeparator, Product: product})
		}
	}
	return suggestions
}
