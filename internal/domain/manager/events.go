package manager

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formfill/internal/domain/fieldlog"
	"github.com/GriffinCanCode/formfill/internal/domain/refill"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// OnTextFieldDidChange records a user edit of a field
func (m *Manager) OnTextFieldDidChange(ctx context.Context, form *types.Form, field types.FieldGlobalID, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.lookup(form, false)
	if err != nil {
		return err
	}
	f := st.form.Field(field)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrFieldNotInForm, field)
	}

	f.Value = value
	f.Properties |= types.PropUserTyped
	if f.IsAutofilled() {
		f.State = types.StateNotFilled
		st.session.UserEditedAutofilledField = true
		delete(st.filledBy, field)
	}
	st.session.UserDidType = true
	m.recorder.AppendIfNotRepeated(field, fieldlog.TypingEvent{HasValueAfter: value != ""})
	return nil
}

// OnJavaScriptChangedAutofilledValue inspects a change the page's script
// made to an autofilled field. The new value is read from the snapshot.
func (m *Manager) OnJavaScriptChangedAutofilledValue(ctx context.Context, form *types.Form, field types.FieldGlobalID, oldValue string) (refill.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.lookup(form, false)
	if err != nil {
		return refill.Analysis{}, err
	}
	f := st.form.Field(field)
	if f == nil {
		return refill.Analysis{}, fmt.Errorf("%w: %s", ErrFieldNotInForm, field)
	}
	if live := form.Field(field); live != nil {
		f.Value = live.Value
	}

	analysis := m.refills.AnalyzeJavaScriptChangedAutofilledValue(st.form, f, oldValue)
	if analysis.ClearedFirst {
		m.metrics.IncClearedByScript()
	}
	if analysis.Task != nil {
		m.metrics.RecordRefill(string(analysis.Task.Reason), "scheduled")
		m.log.Info("expiration date repair scheduled",
			logging.Form(st.form.GlobalID),
			logging.Field(field),
			zap.Stringer("task", analysis.Task.ID))
	}
	return analysis, nil
}

// OnSelectOptionsDidChange re-reads a form whose select options were
// replaced and refills it if it was just filled
func (m *Manager) OnSelectOptionsDidChange(ctx context.Context, form *types.Form) error {
	if err := validate(form); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.parse(form)
	if task, ok := m.refills.ScheduleRefill(st.form, refill.ReasonSelectOptionsChanged); ok {
		m.metrics.RecordRefill(string(task.Reason), "scheduled")
		m.log.Info("refill scheduled",
			logging.Form(st.form.GlobalID),
			zap.String("reason", string(task.Reason)),
			zap.Stringer("task", task.ID))
	}
	return nil
}

// OnFormSubmitted flushes the form's field logs and ends its fill history.
// The flushed batch is returned for aggregation.
func (m *Manager) OnFormSubmitted(ctx context.Context, form *types.Form) (fieldlog.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.lookup(form, false)
	if err != nil {
		return fieldlog.Batch{}, err
	}
	syncValues(st.form, form)

	batch := m.recorder.Flush(st.form)
	m.metrics.RecordFieldLogEvents(batch.CountsByName())
	m.refills.Forget(st.form.GlobalID)
	m.ledger.Forget(st.form.GlobalID)
	st.filledBy = make(map[types.FieldGlobalID]string)

	m.log.WithForm(st.form.GlobalID).Info("form submitted",
		zap.Int("fields_logged", len(batch.Events)),
		zap.Bool("autofilled", st.session.UserDidAutofill))
	st.session = SessionState{}
	st.session.observe(st.form)
	return batch, nil
}
