package manager

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formfill/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// UndoOutcome reports what an undo restored
type UndoOutcome struct {
	Undone  bool                 `json:"undone"`
	Product types.FillingProduct `json:"product"`
	Writes  []types.FieldWrite   `json:"writes"`
	Applied types.FieldIDSet     `json:"-"`
}

// OnUndo reverts the most recent fill touching the field. Nothing to undo
// is not an error. Undoing a full-form fill also drops the form's filling
// context, so the next fill starts fresh.
func (m *Manager) OnUndo(ctx context.Context, form *types.Form, field types.FieldGlobalID, action types.ActionPersistence) (UndoOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.lookup(form, false)
	if err != nil {
		return UndoOutcome{}, err
	}
	if !m.cfg.UndoEnabled {
		return UndoOutcome{}, nil
	}

	res, ok := m.ledger.Undo(action, st.form, field)
	if !ok {
		return UndoOutcome{}, nil
	}
	applied := m.apply(ctx, st.form, field, res.Writes, action)
	out := UndoOutcome{
		Undone:  true,
		Product: res.Product,
		Writes:  res.Writes,
		Applied: applied,
	}
	if action == types.ActionPreview {
		return out, nil
	}

	for _, snap := range res.Entry.Fields {
		delete(st.filledBy, snap.FieldID)
	}
	if res.FullForm {
		m.refills.Forget(st.form.GlobalID)
	}
	m.metrics.RecordUndo(res.Product.String())
	m.log.Info("fill undone",
		logging.Form(st.form.GlobalID),
		logging.Field(field),
		logging.Product(res.Product),
		zap.Int("restored", len(res.Writes)),
		zap.Bool("full_form", res.FullForm))
	return out, nil
}
